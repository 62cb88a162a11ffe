package entity

import "time"

// Contact is an address-book entry owned by one account.
type Contact struct {
	ID             string
	OwnerID        string
	FirstName      string
	LastName       string
	Email          string
	PhoneNumber    string
	Birthday       time.Time // zero value means unknown
	AdditionalInfo string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
