// Package storage holds the pgx repositories behind the HTTP handlers.
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/openmeet/openmeet/internal/availability"
	"github.com/openmeet/openmeet/internal/model"
	"github.com/openmeet/openmeet/libs/db"
)

type HostRepository struct {
	pool *db.Pool
}

func NewHostRepository(pool *db.Pool) *HostRepository {
	return &HostRepository{pool: pool}
}

const hostColumns = `
	id, email, name, slug, time_zone, password_hash,
	COALESCE(google_refresh_token, ''), COALESCE(google_access_token, ''),
	COALESCE(google_token_expires_at, 'epoch'::timestamptz),
	created_at, updated_at`

func scanHost(row pgx.Row) (model.Host, error) {
	var h model.Host
	err := row.Scan(
		&h.ID,
		&h.Email,
		&h.Name,
		&h.Slug,
		&h.TimeZone,
		&h.PasswordHash,
		&h.GoogleRefreshToken,
		&h.GoogleAccessToken,
		&h.GoogleTokenExpiresAt,
		&h.CreatedAt,
		&h.UpdatedAt,
	)
	if err != nil {
		return model.Host{}, err
	}
	return h, nil
}

// Create inserts a new host with defaults. The slug defaults to the
// local part of the email; callers resolve collisions by retrying with
// a suffix.
func (r *HostRepository) Create(ctx context.Context, email, passwordHash, name, slug, timeZone string) (model.Host, error) {
	id := uuid.New()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO hosts (id, email, name, slug, time_zone, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+hostColumns+`
	`, id, email, name, slug, timeZone, passwordHash)
	return scanHost(row)
}

func (r *HostRepository) GetByEmail(ctx context.Context, email string) (model.Host, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+hostColumns+`
		FROM hosts
		WHERE email = $1
	`, email)
	return scanHost(row)
}

func (r *HostRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Host, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+hostColumns+`
		FROM hosts
		WHERE id = $1
	`, id)
	return scanHost(row)
}

func (r *HostRepository) GetBySlug(ctx context.Context, slug string) (model.Host, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+hostColumns+`
		FROM hosts
		WHERE slug = $1
	`, slug)
	return scanHost(row)
}

// LoadAvailability reads the host's weekly rules.
func (r *HostRepository) LoadAvailability(ctx context.Context, hostID uuid.UUID) ([]availability.WeeklyRange, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT weekday, start_time, end_time
		FROM host_availability
		WHERE host_id = $1
		ORDER BY weekday, start_time
	`, hostID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []availability.WeeklyRange
	for rows.Next() {
		var wr availability.WeeklyRange
		var weekday string
		if err := rows.Scan(&weekday, &wr.StartTime, &wr.EndTime); err != nil {
			return nil, err
		}
		wr.Weekday = availability.Weekday(weekday)
		out = append(out, wr)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// ReplaceAvailability swaps the host's weekly rules atomically.
func (r *HostRepository) ReplaceAvailability(ctx context.Context, tx pgx.Tx, hostID uuid.UUID, rules []availability.WeeklyRange) error {
	if _, err := tx.Exec(ctx, `
		DELETE FROM host_availability WHERE host_id = $1
	`, hostID); err != nil {
		return err
	}
	for _, wr := range rules {
		if _, err := tx.Exec(ctx, `
			INSERT INTO host_availability (host_id, weekday, start_time, end_time)
			VALUES ($1, $2, $3, $4)
		`, hostID, string(wr.Weekday), wr.StartTime, wr.EndTime); err != nil {
			return err
		}
	}
	return nil
}

// UpdateSettings writes the mutable profile fields inside tx.
func (r *HostRepository) UpdateSettings(ctx context.Context, tx pgx.Tx, hostID uuid.UUID, name, slug, timeZone string) error {
	_, err := tx.Exec(ctx, `
		UPDATE hosts
		SET name = $2,
			slug = $3,
			time_zone = $4,
			updated_at = now()
		WHERE id = $1
	`, hostID, name, slug, timeZone)
	return err
}

// UpdateGoogleTokens persists refreshed calendar credentials.
func (r *HostRepository) UpdateGoogleTokens(ctx context.Context, hostID uuid.UUID, accessToken string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE hosts
		SET google_access_token = $2,
			google_token_expires_at = $3,
			updated_at = now()
		WHERE id = $1
	`, hostID, accessToken, expiresAt)
	return err
}

func (r *HostRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}
