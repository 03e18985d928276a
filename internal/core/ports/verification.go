package ports

import (
	"context"

	"github.com/google/uuid"

	"faceverify/internal/core/domain"
)

// VerificationRepository defines the persistence operations for
// verification records. Lookups return (nil, nil) when no record exists.
type VerificationRepository interface {
	// Create saves a new record; the caller supplies the ID and the
	// status (always Started at creation time).
	Create(ctx context.Context, v *domain.Verification) error

	// GetByID finds a record by its UUID.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Verification, error)

	// FindActiveByUser finds the user's record still in Started, if any.
	// The ingress layer uses it to reject concurrent verification requests.
	FindActiveByUser(ctx context.Context, userID string) (*domain.Verification, error)

	// CompleteFromStarted conditionally transitions a record out of
	// Started into the given terminal status, recording the raw oracle
	// response and failure reason. It reports whether a row actually
	// transitioned, so a record already in a terminal state is left
	// untouched (optimistic concurrency at the store).
	CompleteFromStarted(ctx context.Context, id uuid.UUID, status domain.VerificationStatus, rawResponse, failedReason string) (bool, error)
}
