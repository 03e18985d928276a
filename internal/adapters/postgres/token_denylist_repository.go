package postgres

import (
	"context"

	"github.com/rs/zerolog"

	"faceverify/internal/core/ports"
)

type tokenDenylistRepository struct {
	db  *DB
	log zerolog.Logger
}

var _ ports.TokenDenylistRepository = (*tokenDenylistRepository)(nil) // Ensure compliance

// NewTokenDenylistRepository creates a new repository for revoked tokens.
func NewTokenDenylistRepository(db *DB, baseLogger *zerolog.Logger) ports.TokenDenylistRepository {
	return &tokenDenylistRepository{
		db:  db,
		log: baseLogger.With().Str("component", "token_denylist_repo").Logger(),
	}
}

// Insert records a revoked token. Token revocation events are delivered
// at-least-once, so a duplicate insert is silently ignored.
func (r *tokenDenylistRepository) Insert(ctx context.Context, token string) error {
	query := `INSERT INTO user_token_denylist (token) VALUES ($1) ON CONFLICT (token) DO NOTHING`

	_, err := r.db.pool.Exec(ctx, query, token)
	if err != nil {
		r.log.Error().Err(err).Msg("Failed to insert denylist token")
	}
	return err
}

// Contains reports whether the token has been revoked.
func (r *tokenDenylistRepository) Contains(ctx context.Context, token string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM user_token_denylist WHERE token = $1)`

	var exists bool
	if err := r.db.pool.QueryRow(ctx, query, token).Scan(&exists); err != nil {
		r.log.Error().Err(err).Msg("Failed to query denylist token")
		return false, err
	}
	return exists, nil
}
