package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/yklymenko/contacthub/internal/domain/entity"
	"github.com/yklymenko/contacthub/internal/domain/repository"
	"github.com/yklymenko/contacthub/pkg/gravatar"
	"github.com/yklymenko/contacthub/pkg/hasher"
	"github.com/yklymenko/contacthub/pkg/helpers"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountNotFound    = errors.New("account not found")
	// ErrRoleNotSeeded means the default role lookup came back empty.
	// Account creation fails outright rather than inserting a dangling
	// role reference.
	ErrRoleNotSeeded = errors.New("default role not seeded")
)

// AccountService implements the account operations: registration with
// password hashing, avatar resolution and default-role assignment, the
// lookup operations, avatar updates and activation.
type AccountService struct {
	Accounts  repository.AccountRepository
	Roles     repository.RoleRepository
	Hasher    *hasher.Hasher
	Avatars   *gravatar.Client
	JWT       *helpers.JWTManager
	Redis     *redis.Client
	Logger    *logrus.Logger
	GCS       *storage.Client
	GCSBucket string
}

func NewAccountService(
	accounts repository.AccountRepository,
	roles repository.RoleRepository,
	h *hasher.Hasher,
	avatars *gravatar.Client,
	jwt *helpers.JWTManager,
	rdb *redis.Client,
	logger *logrus.Logger,
	gcs *storage.Client,
	gcsBucket string,
) *AccountService {
	return &AccountService{
		Accounts:  accounts,
		Roles:     roles,
		Hasher:    h,
		Avatars:   avatars,
		JWT:       jwt,
		Redis:     rdb,
		Logger:    logger,
		GCS:       gcs,
		GCSBucket: gcsBucket,
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register creates a new inactive account. The avatar lookup may fail for
// any reason; the fixed default URL is substituted and the failure never
// surfaces. A missing default role aborts the registration.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*entity.Account, error) {
	digest, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	avatarURL := s.Avatars.Resolve(ctx, in.Email)

	role, err := s.Roles.GetByName(ctx, entity.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("resolve default role: %w", err)
	}
	if role == nil {
		return nil, ErrRoleNotSeeded
	}

	a := &entity.Account{
		Username:       in.Username,
		Email:          in.Email,
		HashedPassword: digest,
		RoleID:         role.ID,
		AvatarURL:      avatarURL,
		IsActive:       false,
	}
	if err := s.Accounts.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// FindByEmail returns (nil, nil) when no account matches.
func (s *AccountService) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	return s.Accounts.GetByEmail(ctx, email)
}

// FindByUsername returns (nil, nil) when no account matches.
func (s *AccountService) FindByUsername(ctx context.Context, username string) (*entity.Account, error) {
	return s.Accounts.GetByUsername(ctx, username)
}

// UpdateAvatar rewrites the avatar of the account matching email. URLs
// already pointing at the canonical avatar service are stored verbatim;
// anything else is replaced with the canonical URL derived from the email.
func (s *AccountService) UpdateAvatar(ctx context.Context, email, url string) (*entity.Account, error) {
	a, err := s.Accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrAccountNotFound
	}

	if gravatar.IsAvatarURL(url) {
		a.AvatarURL = url
	} else {
		a.AvatarURL = gravatar.URL(email)
	}
	if err := s.Accounts.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Activate flips the account to active. Activating an already-active
// account is a no-op.
func (s *AccountService) Activate(ctx context.Context, a *entity.Account) error {
	if a == nil {
		return ErrAccountNotFound
	}
	if a.IsActive {
		return nil
	}
	a.IsActive = true
	if err := s.Accounts.Update(ctx, a); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	return nil
}

// ActivateByEmail looks the account up first and fails with
// ErrAccountNotFound on absence, never assuming presence.
func (s *AccountService) ActivateByEmail(ctx context.Context, email string) (*entity.Account, error) {
	a, err := s.Accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrAccountNotFound
	}
	if err := s.Activate(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Authenticate validates username/password and returns the account
// without issuing tokens.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*entity.Account, error) {
	a, err := s.Accounts.GetByUsername(ctx, username)
	if err != nil || a == nil {
		return nil, ErrInvalidCredentials
	}
	ok, err := s.Hasher.Verify(password, a.HashedPassword)
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}
	return a, nil
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

func sessionKey(accountID string) string {
	return "account:session:" + accountID
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// IssueTokens generates an access/refresh pair and records a session in Redis.
func (s *AccountService) IssueTokens(ctx context.Context, a *entity.Account) (TokenPair, error) {
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(a.ID, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("account_id", a.ID).Error("generate access token failed")
		}
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(a.ID, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("account_id", a.ID).Error("generate refresh token failed")
		}
		return TokenPair{}, err
	}

	if s.Redis != nil {
		fields := map[string]any{
			"account_id": a.ID,
			"username":   a.Username,
			"email":      a.Email,
			"avatar_url": a.AvatarURL,
			"sid":        sid,
			"logged_in":  true,
			"created_at": nowRFC3339(),
		}
		key := sessionKey(a.ID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, 24*time.Hour)
		if _, rErr := pipe.Exec(ctx); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}

	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// Login authenticates and issues tokens in one step.
func (s *AccountService) Login(ctx context.Context, username, password string) (*entity.Account, TokenPair, error) {
	a, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, a)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return a, pair, nil
}

// Refresh rotates the session and token pair for a valid refresh token.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (TokenPair, string, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	a, err := s.Accounts.GetByID(ctx, claims.UserID)
	if err != nil || a == nil {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	// Validate current session id matches the token's sid
	if s.Redis != nil {
		key := sessionKey(a.ID)
		data, rErr := s.Redis.HGetAll(ctx, key).Result()
		if rErr != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			return TokenPair{}, "", ErrInvalidCredentials
		}
	}
	pair, err := s.IssueTokens(ctx, a)
	if err != nil {
		return TokenPair{}, "", err
	}
	return pair, a.ID, nil
}

// GetProfile returns the account for an id, ErrAccountNotFound on absence.
func (s *AccountService) GetProfile(ctx context.Context, accountID string) (*entity.Account, error) {
	a, err := s.Accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrAccountNotFound
	}
	return a, nil
}

// UploadAvatar stores an uploaded image in GCS and points the account's
// avatar at it. Uploaded URLs are ours, so the gravatar rewrite does not
// apply here.
func (s *AccountService) UploadAvatar(ctx context.Context, accountID string, r io.Reader, filename, contentType string) (*entity.Account, error) {
	a, err := s.Accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrAccountNotFound
	}
	if s.GCS == nil || s.GCSBucket == "" {
		return nil, errors.New("gcs not configured")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", accountID, uuid.NewString()+ext))
	url, err := helpers.UploadImageToGCS(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return nil, err
	}

	a.AvatarURL = url
	if err := s.Accounts.Update(ctx, a); err != nil {
		return nil, err
	}
	if s.Redis != nil {
		s.Redis.HSet(ctx, sessionKey(a.ID), map[string]any{
			"avatar_url": a.AvatarURL,
			"updated_at": nowRFC3339(),
		})
	}
	return a, nil
}
