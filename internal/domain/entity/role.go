package entity

import "time"

// RoleName is the fixed enumeration of permission tiers.
type RoleName string

const (
	RoleUser  RoleName = "user"
	RoleAdmin RoleName = "admin"
)

// Role represents an authorization role referenced by accounts.
// Read-only from the application's perspective; seeded by migration.
type Role struct {
	ID        string
	Name      RoleName
	CreatedAt time.Time
	UpdatedAt time.Time
}
