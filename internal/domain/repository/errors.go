package repository

import "errors"

var (
	// ErrNotFound is returned by mutating operations whose target row does
	// not exist. Plain lookups report a miss as (nil, nil) instead.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when an insert or update violates a unique
	// constraint (username, email).
	ErrConflict = errors.New("record already exists")
)
