package ports

import (
	"context"

	"faceverify/internal/core/domain"
)

// UserRepository defines the persistence operations for the local user
// replica. GetByID returns (nil, nil) when the user does not exist.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// ApplyUpdate applies a partial update by ID. Updating a missing
	// user is a no-op, which keeps redelivered update events harmless.
	ApplyUpdate(ctx context.Context, id string, upd domain.UserUpdate) error
}

// TokenDenylistRepository records revoked access tokens. Insert is
// idempotent: re-inserting a known token is not an error.
type TokenDenylistRepository interface {
	Insert(ctx context.Context, token string) error
	Contains(ctx context.Context, token string) (bool, error)
}
