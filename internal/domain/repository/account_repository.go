package repository

import (
	"context"

	"github.com/yklymenko/contacthub/internal/domain/entity"
)

// AccountRepository defines the persistence operations for accounts.
// Lookups return (nil, nil) when no row matches; absence is a value,
// not an error.
type AccountRepository interface {
	// Create inserts the account and populates ID, CreatedAt and UpdatedAt
	// from the generated row. Unique violations surface as ErrConflict.
	Create(ctx context.Context, a *entity.Account) error
	GetByID(ctx context.Context, id string) (*entity.Account, error)
	GetByEmail(ctx context.Context, email string) (*entity.Account, error)
	GetByUsername(ctx context.Context, username string) (*entity.Account, error)
	// Update persists the mutable fields (avatar_url, is_active) and
	// returns ErrNotFound when the row is gone.
	Update(ctx context.Context, a *entity.Account) error
}

// RoleRepository resolves role records by symbolic name.
type RoleRepository interface {
	GetByName(ctx context.Context, name entity.RoleName) (*entity.Role, error)
}
