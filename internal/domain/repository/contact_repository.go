package repository

import (
	"context"

	"github.com/yklymenko/contacthub/internal/domain/entity"
)

// ContactFilter narrows a contact search. Empty fields are ignored;
// non-empty ones match case-insensitively as substrings.
type ContactFilter struct {
	FirstName string
	LastName  string
	Email     string
}

// ContactRepository defines persistence operations for contacts. Every
// operation is scoped to an owner so accounts can never see each other's
// entries.
type ContactRepository interface {
	Create(ctx context.Context, c *entity.Contact) error
	GetByID(ctx context.Context, id, ownerID string) (*entity.Contact, error)
	ListByOwner(ctx context.Context, ownerID string) ([]entity.Contact, error)
	Update(ctx context.Context, c *entity.Contact) error
	Delete(ctx context.Context, id, ownerID string) error
	Search(ctx context.Context, ownerID string, f ContactFilter) ([]entity.Contact, error)
	// ListWithBirthdays returns the owner's contacts that have a birthday set.
	ListWithBirthdays(ctx context.Context, ownerID string) ([]entity.Contact, error)
}
