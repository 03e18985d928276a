package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"faceverify/internal/core/domain"
	"faceverify/internal/core/ports"
)

type verificationRepository struct {
	db  *DB
	log zerolog.Logger
}

var _ ports.VerificationRepository = (*verificationRepository)(nil) // Ensure compliance

// NewVerificationRepository creates a new repository for verification records.
func NewVerificationRepository(db *DB, baseLogger *zerolog.Logger) ports.VerificationRepository {
	return &verificationRepository{
		db:  db,
		log: baseLogger.With().Str("component", "verification_repo").Logger(),
	}
}

const verificationQueryCols = `
	id, user_id, selfie_s3_uri, selfie_object_url, photo_id_s3_uri, photo_id_object_url,
	status, raw_compare_response, failed_reason, created_at, updated_at
`

// Create saves a new verification record. The ID comes from the caller so
// the record can be referenced (queued, uploaded against) before it exists.
func (r *verificationRepository) Create(ctx context.Context, v *domain.Verification) error {
	query := `
		INSERT INTO verifications (
			id, user_id, selfie_s3_uri, selfie_object_url,
			photo_id_s3_uri, photo_id_object_url, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.pool.Exec(ctx, query,
		v.ID,
		v.UserID,
		v.Selfie.S3URI,
		v.Selfie.ObjectURL,
		v.PhotoID.S3URI,
		v.PhotoID.ObjectURL,
		v.Status,
	)
	if err != nil {
		r.log.Error().Err(err).Str("verification_id", v.ID.String()).Msg("Failed to insert verification")
	}
	return err
}

func (r *verificationRepository) scanVerification(row pgx.Row) (*domain.Verification, error) {
	var v domain.Verification
	err := row.Scan(
		&v.ID,
		&v.UserID,
		&v.Selfie.S3URI,
		&v.Selfie.ObjectURL,
		&v.PhotoID.S3URI,
		&v.PhotoID.ObjectURL,
		&v.Status,
		&v.RawCompareResponse,
		&v.FailedReason,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		r.log.Error().Err(err).Msg("Failed to scan verification row")
		return nil, err
	}
	return &v, nil
}

// GetByID finds a verification by its UUID.
func (r *verificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Verification, error) {
	query := `SELECT ` + verificationQueryCols + ` FROM verifications WHERE id = $1`

	row := r.db.pool.QueryRow(ctx, query, id)
	v, err := r.scanVerification(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.log.Info().Str("verification_id", id.String()).Msg("Verification not found")
			return nil, nil // Return nil, nil for "not found"
		}
		return nil, err
	}
	return v, nil
}

// FindActiveByUser finds the user's verification still in Started, if any.
func (r *verificationRepository) FindActiveByUser(ctx context.Context, userID string) (*domain.Verification, error) {
	query := `SELECT ` + verificationQueryCols + ` FROM verifications WHERE user_id = $1 AND status = $2`

	row := r.db.pool.QueryRow(ctx, query, userID, domain.StatusStarted)
	v, err := r.scanVerification(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return v, nil
}

// CompleteFromStarted transitions a record out of Started. The WHERE clause
// on the current status is the enforcement point of the state machine: a
// record already in a terminal state matches no row and stays untouched.
func (r *verificationRepository) CompleteFromStarted(ctx context.Context, id uuid.UUID, status domain.VerificationStatus, rawResponse, failedReason string) (bool, error) {
	query := `
		UPDATE verifications
		SET status = $2, raw_compare_response = $3, failed_reason = $4, updated_at = now()
		WHERE id = $1 AND status = $5
	`
	tag, err := r.db.pool.Exec(ctx, query, id, status, rawResponse, failedReason, domain.StatusStarted)
	if err != nil {
		r.log.Error().Err(err).Str("verification_id", id.String()).Msg("Failed to update verification status")
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
