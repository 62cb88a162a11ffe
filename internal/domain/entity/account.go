package entity

import (
	"time"
)

// Account is the aggregate root for the account domain.
// Passwords are stored as bcrypt digests in HashedPassword.
//
// An account starts inactive and becomes active exactly once, via email
// verification. There is no reverse transition.
type Account struct {
	ID             string
	Username       string
	Email          string
	HashedPassword string
	RoleID         string
	AvatarURL      string // empty until first resolved
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
