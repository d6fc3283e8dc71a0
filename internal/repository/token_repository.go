package repository

import (
	"context"
	"database/sql"
	"time"
)

// TokenRepo persists refresh-token hashes in the `refresh_tokens`
// table.  Only the SHA-256 digest of a token ever reaches this layer;
// the plain value lives in the client cookie and nowhere else.  A
// token is usable while it is unexpired and unrevoked, and rotation
// on refresh revokes the presented hash before a new one is stored.
type TokenRepo struct {
	db *sql.DB
}

// NewTokenRepo returns a TokenRepo bound to the given database.
func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{db: db} }

// StoreRefresh records a refresh-token hash for the user with its
// expiry timestamp.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, expiresAt time.Time) error {
	const q = `INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, userID, tokenHash, expiresAt)
	return err
}

// ValidateRefresh resolves a token hash to its owning user.  Expired
// and revoked tokens are filtered in SQL, so every failure mode
// surfaces uniformly as sql.ErrNoRows and the caller cannot tell an
// unknown token from a dead one.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	const q = `SELECT user_id FROM refresh_tokens
			   WHERE token_hash = ? AND revoked_at IS NULL AND expires_at > UTC_TIMESTAMP()
			   LIMIT 1`
	var userID uint64
	if err := r.db.QueryRowContext(ctx, q, tokenHash).Scan(&userID); err != nil {
		return 0, err
	}
	return userID, nil
}

// RevokeByHash marks one token as revoked.  Revoking an unknown or
// already-revoked hash is a no-op, which keeps logout idempotent.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	const q = `UPDATE refresh_tokens SET revoked_at = NOW()
			   WHERE token_hash = ? AND revoked_at IS NULL`
	_, err := r.db.ExecContext(ctx, q, tokenHash)
	return err
}
