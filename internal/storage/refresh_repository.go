package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/openmeet/openmeet/libs/auth"
	"github.com/openmeet/openmeet/libs/db"
)

type RefreshToken struct {
	ID        uuid.UUID
	HostID    uuid.UUID
	Hash      string
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// Usable reports whether the token can still mint access tokens.
func (t RefreshToken) Usable(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}

type RefreshRepository struct {
	pool *db.Pool
}

func NewRefreshRepository(pool *db.Pool) *RefreshRepository {
	return &RefreshRepository{pool: pool}
}

func (r *RefreshRepository) Create(ctx context.Context, hostID uuid.UUID, rawToken string, expiresAt time.Time) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO refresh_tokens (id, host_id, token_hash, expires_at)
		VALUES ($1, $2, $3, $4)
	`, id, hostID, auth.HashRefreshToken(rawToken), expiresAt)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (r *RefreshRepository) GetByToken(ctx context.Context, rawToken string) (RefreshToken, error) {
	var token RefreshToken
	err := r.pool.QueryRow(ctx, `
		SELECT id, host_id, token_hash, expires_at, revoked_at
		FROM refresh_tokens
		WHERE token_hash = $1
	`, auth.HashRefreshToken(rawToken)).Scan(&token.ID, &token.HostID, &token.Hash, &token.ExpiresAt, &token.RevokedAt)
	if err != nil {
		return RefreshToken{}, err
	}
	return token, nil
}

func (r *RefreshRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE refresh_tokens
		SET revoked_at = now()
		WHERE id = $1
	`, id)
	return err
}
