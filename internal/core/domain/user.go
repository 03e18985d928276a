package domain

import "time"

// User is the local replica of the auth service's user, kept in sync by
// relayed lifecycle events. The ID is owned by the auth service, so it is
// an opaque string rather than a UUID of ours.
type User struct {
	ID                 string
	PhoneNumber        *string // encrypted at rest
	Email              *string
	SignedUp           bool
	IsBlocked          bool
	FaceIDVerified     bool
	FaceVerificationID *string
	FirstName          *string
	LastName           *string
	Online             bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// UserUpdate carries the partial fields of an AUTH_USER_UPDATED event.
// Nil means "leave unchanged".
type UserUpdate struct {
	PhoneNumber    *string
	Email          *string
	SignedUp       *bool
	IsBlocked      *bool
	FaceIDVerified *bool
	FirstName      *string
	LastName       *string
	Online         *bool
}
