package application

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yklymenko/contacthub/internal/domain/entity"
	"github.com/yklymenko/contacthub/internal/domain/repository"
	"github.com/yklymenko/contacthub/pkg/gravatar"
	"github.com/yklymenko/contacthub/pkg/hasher"
)

type fakeAccountRepo struct {
	byID map[string]*entity.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{byID: make(map[string]*entity.Account)}
}

func cloneAccount(a *entity.Account) *entity.Account {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

func (r *fakeAccountRepo) Create(_ context.Context, a *entity.Account) error {
	for _, existing := range r.byID {
		if existing.Email == a.Email || existing.Username == a.Username {
			return repository.ErrConflict
		}
	}
	a.ID = uuid.NewString()
	r.byID[a.ID] = cloneAccount(a)
	return nil
}

func (r *fakeAccountRepo) GetByID(_ context.Context, id string) (*entity.Account, error) {
	return cloneAccount(r.byID[id]), nil
}

func (r *fakeAccountRepo) GetByEmail(_ context.Context, email string) (*entity.Account, error) {
	for _, a := range r.byID {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, nil
}

func (r *fakeAccountRepo) GetByUsername(_ context.Context, username string) (*entity.Account, error) {
	for _, a := range r.byID {
		if a.Username == username {
			return cloneAccount(a), nil
		}
	}
	return nil, nil
}

func (r *fakeAccountRepo) Update(_ context.Context, a *entity.Account) error {
	if _, ok := r.byID[a.ID]; !ok {
		return repository.ErrNotFound
	}
	r.byID[a.ID] = cloneAccount(a)
	return nil
}

type fakeRoleRepo struct {
	roles map[entity.RoleName]*entity.Role
}

func newFakeRoleRepo(seeded bool) *fakeRoleRepo {
	r := &fakeRoleRepo{roles: make(map[entity.RoleName]*entity.Role)}
	if seeded {
		r.roles[entity.RoleUser] = &entity.Role{ID: uuid.NewString(), Name: entity.RoleUser}
		r.roles[entity.RoleAdmin] = &entity.Role{ID: uuid.NewString(), Name: entity.RoleAdmin}
	}
	return r
}

func (r *fakeRoleRepo) GetByName(_ context.Context, name entity.RoleName) (*entity.Role, error) {
	role, ok := r.roles[name]
	if !ok {
		return nil, nil
	}
	c := *role
	return &c, nil
}

// avatarMiss serves 404 for every probe so registration falls back to the
// default avatar URL.
func avatarMiss(t *testing.T) *gravatar.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)
	c := gravatar.New("https://example.com/default_avatar.png")
	c.BaseURL = srv.URL
	return c
}

func newTestService(roles *fakeRoleRepo, av *gravatar.Client, t *testing.T) (*AccountService, *fakeAccountRepo) {
	repo := newFakeAccountRepo()
	if av == nil {
		av = avatarMiss(t)
	}
	svc := NewAccountService(repo, roles, hasher.New(0), av, nil, nil, nil, nil, "")
	return svc, repo
}

func TestRegister_CreatesInactiveAccountWithHashAndRole(t *testing.T) {
	svc, _ := newTestService(newFakeRoleRepo(true), nil, t)

	a, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cretpass",
	})
	require.NoError(t, err)
	require.NotNil(t, a)

	assert.NotEmpty(t, a.ID)
	assert.False(t, a.IsActive)
	assert.NotEmpty(t, a.RoleID)
	assert.Equal(t, "https://example.com/default_avatar.png", a.AvatarURL)

	// Password is stored as a digest that verifies against the original.
	assert.NotEqual(t, "s3cretpass", a.HashedPassword)
	ok, err := hasher.New(0).Verify("s3cretpass", a.HashedPassword)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegister_ResolvedAvatarURLStored(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	av := gravatar.New("https://example.com/default_avatar.png")
	av.BaseURL = srv.URL

	svc, _ := newTestService(newFakeRoleRepo(true), av, t)

	a, err := svc.Register(context.Background(), RegisterInput{
		Username: "bob", Email: "bob@example.com", Password: "s3cretpass",
	})
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/avatar/"+gravatar.Hash("bob@example.com"), a.AvatarURL)
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	svc, _ := newTestService(newFakeRoleRepo(true), nil, t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "s3cretpass"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Username: "alice2", Email: "alice@example.com", Password: "s3cretpass"})
	require.ErrorIs(t, err, repository.ErrConflict)
}

func TestRegister_MissingDefaultRoleFails(t *testing.T) {
	svc, repo := newTestService(newFakeRoleRepo(false), nil, t)

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "s3cretpass",
	})
	require.ErrorIs(t, err, ErrRoleNotSeeded)
	assert.Empty(t, repo.byID)
}

func TestFindByEmail_MissIsNilNil(t *testing.T) {
	svc, _ := newTestService(newFakeRoleRepo(true), nil, t)

	a, err := svc.FindByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestFindByUsername_MissIsNilNil(t *testing.T) {
	svc, _ := newTestService(newFakeRoleRepo(true), nil, t)

	a, err := svc.FindByUsername(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestUpdateAvatar_GravatarURLStoredVerbatim(t *testing.T) {
	svc, _ := newTestService(newFakeRoleRepo(true), nil, t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "s3cretpass"})
	require.NoError(t, err)

	verbatim := "https://www.gravatar.com/avatar/abcdef0123456789"
	a, err := svc.UpdateAvatar(ctx, "alice@example.com", verbatim)
	require.NoError(t, err)
	assert.Equal(t, verbatim, a.AvatarURL)
}

func TestUpdateAvatar_ForeignURLRewritten(t *testing.T) {
	svc, _ := newTestService(newFakeRoleRepo(true), nil, t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "s3cretpass"})
	require.NoError(t, err)

	a, err := svc.UpdateAvatar(ctx, "alice@example.com", "https://evil.example.com/avatar.png")
	require.NoError(t, err)
	assert.Equal(t, gravatar.URL("alice@example.com"), a.AvatarURL)
}

func TestUpdateAvatar_UnknownEmail(t *testing.T) {
	svc, _ := newTestService(newFakeRoleRepo(true), nil, t)

	_, err := svc.UpdateAvatar(context.Background(), "nobody@example.com", "https://www.gravatar.com/avatar/x")
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestActivate_Idempotent(t *testing.T) {
	svc, repo := newTestService(newFakeRoleRepo(true), nil, t)
	ctx := context.Background()

	created, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "s3cretpass"})
	require.NoError(t, err)
	require.False(t, created.IsActive)

	a, err := svc.ActivateByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, a.IsActive)
	assert.True(t, repo.byID[created.ID].IsActive)

	// Second activation is a no-op, not an error.
	a, err = svc.ActivateByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, a.IsActive)
}

func TestActivateByEmail_UnknownEmail(t *testing.T) {
	svc, _ := newTestService(newFakeRoleRepo(true), nil, t)

	_, err := svc.ActivateByEmail(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService(newFakeRoleRepo(true), nil, t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "s3cretpass"})
	require.NoError(t, err)

	a, err := svc.Authenticate(ctx, "alice", "s3cretpass")
	require.NoError(t, err)
	assert.Equal(t, "alice", a.Username)

	_, err = svc.Authenticate(ctx, "alice", "wrongpass")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody", "s3cretpass")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
