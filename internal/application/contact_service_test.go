package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yklymenko/contacthub/internal/domain/entity"
	"github.com/yklymenko/contacthub/internal/domain/repository"
)

type fakeContactRepo struct {
	byID map[string]*entity.Contact
}

func newFakeContactRepo() *fakeContactRepo {
	return &fakeContactRepo{byID: make(map[string]*entity.Contact)}
}

func cloneContact(c *entity.Contact) *entity.Contact {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

func (r *fakeContactRepo) Create(_ context.Context, c *entity.Contact) error {
	c.ID = uuid.NewString()
	r.byID[c.ID] = cloneContact(c)
	return nil
}

func (r *fakeContactRepo) GetByID(_ context.Context, id, ownerID string) (*entity.Contact, error) {
	c := r.byID[id]
	if c == nil || c.OwnerID != ownerID {
		return nil, nil
	}
	return cloneContact(c), nil
}

func (r *fakeContactRepo) ListByOwner(_ context.Context, ownerID string) ([]entity.Contact, error) {
	out := make([]entity.Contact, 0)
	for _, c := range r.byID {
		if c.OwnerID == ownerID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeContactRepo) Update(_ context.Context, c *entity.Contact) error {
	old := r.byID[c.ID]
	if old == nil || old.OwnerID != c.OwnerID {
		return repository.ErrNotFound
	}
	r.byID[c.ID] = cloneContact(c)
	return nil
}

func (r *fakeContactRepo) Delete(_ context.Context, id, ownerID string) error {
	c := r.byID[id]
	if c == nil || c.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *fakeContactRepo) Search(_ context.Context, ownerID string, f repository.ContactFilter) ([]entity.Contact, error) {
	out := make([]entity.Contact, 0)
	for _, c := range r.byID {
		if c.OwnerID != ownerID {
			continue
		}
		if f.FirstName != "" && c.FirstName != f.FirstName {
			continue
		}
		if f.LastName != "" && c.LastName != f.LastName {
			continue
		}
		if f.Email != "" && c.Email != f.Email {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeContactRepo) ListWithBirthdays(_ context.Context, ownerID string) ([]entity.Contact, error) {
	out := make([]entity.Contact, 0)
	for _, c := range r.byID {
		if c.OwnerID == ownerID && !c.Birthday.IsZero() {
			out = append(out, *c)
		}
	}
	return out, nil
}

func newContactTestService() (*ContactService, *fakeContactRepo) {
	repo := newFakeContactRepo()
	return NewContactService(repo, nil, nil, ""), repo
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestContactCRUDIsOwnerScoped(t *testing.T) {
	svc, _ := newContactTestService()
	ctx := context.Background()
	owner := uuid.NewString()
	stranger := uuid.NewString()

	c, err := svc.Create(ctx, owner, ContactInput{FirstName: "Grace", LastName: "Hopper"})
	require.NoError(t, err)
	require.NotEmpty(t, c.ID)

	got, err := svc.Get(ctx, c.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, "Grace", got.FirstName)

	_, err = svc.Get(ctx, c.ID, stranger)
	require.ErrorIs(t, err, ErrContactNotFound)

	_, err = svc.Update(ctx, c.ID, stranger, ContactInput{FirstName: "Mallory"})
	require.ErrorIs(t, err, ErrContactNotFound)

	err = svc.Delete(ctx, c.ID, stranger)
	require.ErrorIs(t, err, ErrContactNotFound)

	updated, err := svc.Update(ctx, c.ID, owner, ContactInput{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", updated.Email)

	require.NoError(t, svc.Delete(ctx, c.ID, owner))
	_, err = svc.Get(ctx, c.ID, owner)
	require.ErrorIs(t, err, ErrContactNotFound)
}

func TestCelebrationDate_InsideWindow(t *testing.T) {
	// Wednesday 2024-06-12; birthday on Friday the 14th.
	today := date(2024, time.June, 12)
	on, ok := celebrationDate(date(1990, time.June, 14), today)
	require.True(t, ok)
	assert.Equal(t, date(2024, time.June, 14), on)
}

func TestCelebrationDate_Today(t *testing.T) {
	today := date(2024, time.June, 12)
	on, ok := celebrationDate(date(1990, time.June, 12), today)
	require.True(t, ok)
	assert.Equal(t, today, on)
}

func TestCelebrationDate_OutsideWindow(t *testing.T) {
	today := date(2024, time.June, 12)
	_, ok := celebrationDate(date(1990, time.June, 25), today)
	assert.False(t, ok)
}

func TestCelebrationDate_YearWrap(t *testing.T) {
	// Dec 30 today, birthday Jan 2: next occurrence is next year and
	// still inside the seven-day window.
	today := date(2024, time.December, 30)
	on, ok := celebrationDate(date(1985, time.January, 2), today)
	require.True(t, ok)
	assert.Equal(t, date(2025, time.January, 2), on)
}

func TestCelebrationDate_WeekendShiftsToMonday(t *testing.T) {
	today := date(2024, time.June, 12) // Wednesday

	// 2024-06-15 is a Saturday; celebrate Monday the 17th.
	on, ok := celebrationDate(date(1990, time.June, 15), today)
	require.True(t, ok)
	assert.Equal(t, time.Monday, on.Weekday())
	assert.Equal(t, date(2024, time.June, 17), on)

	// 2024-06-16 is a Sunday; also Monday the 17th.
	on, ok = celebrationDate(date(1990, time.June, 16), today)
	require.True(t, ok)
	assert.Equal(t, date(2024, time.June, 17), on)
}

func TestCelebrationDate_UnknownBirthday(t *testing.T) {
	_, ok := celebrationDate(time.Time{}, date(2024, time.June, 12))
	assert.False(t, ok)
}

func TestUpcomingBirthdays(t *testing.T) {
	svc, _ := newContactTestService()
	ctx := context.Background()
	owner := uuid.NewString()

	_, err := svc.Create(ctx, owner, ContactInput{FirstName: "Soon", LastName: "B", Birthday: date(1990, time.June, 14)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, owner, ContactInput{FirstName: "Later", LastName: "B", Birthday: date(1990, time.September, 1)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, owner, ContactInput{FirstName: "Unknown", LastName: "B"})
	require.NoError(t, err)

	out, err := svc.UpcomingBirthdays(ctx, owner, date(2024, time.June, 12))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Soon", out[0].Contact.FirstName)
	assert.Equal(t, date(2024, time.June, 14), out[0].CelebrateOn)
}
