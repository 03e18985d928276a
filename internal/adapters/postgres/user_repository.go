package postgres

import (
	"context"
	"encoding/base64"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"faceverify/internal/core/domain"
	"faceverify/internal/core/ports"
)

type userRepository struct {
	db     *DB
	secSvc ports.SecurityPort // encrypts/decrypts the phone number
	log    zerolog.Logger
}

var _ ports.UserRepository = (*userRepository)(nil) // Ensure compliance

// NewUserRepository creates a new repository for user operations.
func NewUserRepository(db *DB, secSvc ports.SecurityPort, baseLogger *zerolog.Logger) ports.UserRepository {
	return &userRepository{
		db:     db,
		secSvc: secSvc,
		log:    baseLogger.With().Str("component", "user_repo").Logger(),
	}
}

const userQueryCols = `
	id, phone_number, email, signed_up, is_blocked, face_id_verified,
	face_verification_id, first_name, last_name, online, created_at, updated_at
`

// Create encrypts sensitive data and saves a new user.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	encPhone, err := r.encryptPhone(user.PhoneNumber)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO users (
			id, phone_number, email, signed_up, is_blocked, face_id_verified,
			face_verification_id, first_name, last_name, online
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.db.pool.Exec(ctx, query,
		user.ID,
		encPhone,
		user.Email,
		user.SignedUp,
		user.IsBlocked,
		user.FaceIDVerified,
		user.FaceVerificationID,
		user.FirstName,
		user.LastName,
		user.Online,
	)
	if err != nil {
		r.log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to insert new user")
	}
	return err
}

// GetByID finds and decrypts a user by the auth service's ID.
func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userQueryCols + ` FROM users WHERE id = $1`

	row := r.db.pool.QueryRow(ctx, query, id)
	user, err := r.scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.log.Info().Str("user_id", id).Msg("User not found")
			return nil, nil // Return nil, nil for "not found"
		}
		return nil, err
	}
	return user, nil
}

// ApplyUpdate applies the non-nil fields of upd to the user row.
// A missing user matches no row; the update is a harmless no-op so that
// redelivered AUTH_USER_UPDATED events stay idempotent.
func (r *userRepository) ApplyUpdate(ctx context.Context, id string, upd domain.UserUpdate) error {
	encPhone, err := r.encryptPhone(upd.PhoneNumber)
	if err != nil {
		return err
	}

	// COALESCE keeps the stored value wherever the event carried nothing.
	// Setting an email implies the user completed sign-up (producer rule).
	query := `
		UPDATE users SET
			phone_number     = COALESCE($2, phone_number),
			email            = COALESCE($3, email),
			signed_up        = CASE WHEN $3::text IS NOT NULL THEN TRUE ELSE COALESCE($4, signed_up) END,
			is_blocked       = COALESCE($5, is_blocked),
			face_id_verified = COALESCE($6, face_id_verified),
			first_name       = COALESCE($7, first_name),
			last_name        = COALESCE($8, last_name),
			online           = COALESCE($9, online),
			updated_at       = now()
		WHERE id = $1
	`
	_, err = r.db.pool.Exec(ctx, query,
		id,
		encPhone,
		upd.Email,
		upd.SignedUp,
		upd.IsBlocked,
		upd.FaceIDVerified,
		upd.FirstName,
		upd.LastName,
		upd.Online,
	)
	if err != nil {
		r.log.Error().Err(err).Str("user_id", id).Msg("Failed to apply user update")
	}
	return err
}

// encryptPhone encrypts a nullable phone number for storage.
func (r *userRepository) encryptPhone(phone *string) (*string, error) {
	if phone == nil {
		return nil, nil
	}
	encBytes, err := r.secSvc.Encrypt([]byte(*phone))
	if err != nil {
		r.log.Error().Err(err).Msg("Failed to encrypt phone number")
		return nil, err
	}
	encStr := base64.StdEncoding.EncodeToString(encBytes)
	return &encStr, nil
}

// scanUser is a helper to scan a row into a User struct.
// It handles decryption internally.
func (r *userRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	var encPhone *string // Read encrypted data first

	err := row.Scan(
		&user.ID,
		&encPhone,
		&user.Email,
		&user.SignedUp,
		&user.IsBlocked,
		&user.FaceIDVerified,
		&user.FaceVerificationID,
		&user.FirstName,
		&user.LastName,
		&user.Online,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		r.log.Error().Err(err).Msg("Failed to scan user row")
		return nil, err
	}

	if encPhone != nil {
		decBytes, err := base64.StdEncoding.DecodeString(*encPhone)
		if err != nil {
			r.log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to base64-decode phone number")
			return nil, err
		}
		dec, err := r.secSvc.Decrypt(decBytes)
		if err != nil {
			r.log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to decrypt phone number (tampered?)")
			return nil, err
		}
		decStr := string(dec)
		user.PhoneNumber = &decStr
	}

	return &user, nil
}
