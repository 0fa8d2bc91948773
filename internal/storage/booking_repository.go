package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/openmeet/openmeet/internal/availability"
	"github.com/openmeet/openmeet/internal/model"
	"github.com/openmeet/openmeet/libs/db"
)

type BookingRepository struct {
	pool *db.Pool
}

// IdempotencyRecord is the stored outcome of a prior request with the
// same key, replayed verbatim on retries.
type IdempotencyRecord struct {
	HostID          uuid.UUID
	IdempotencyKey  string
	BookingID       uuid.UUID
	StatusCode      int
	ResponsePayload []byte
}

func NewBookingRepository(pool *db.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

func (r *BookingRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// LockIdempotencyKey returns the existing record under FOR UPDATE when
// the key was seen before, or inserts and locks a fresh one. The bool
// reports whether the key already existed.
func (r *BookingRepository) LockIdempotencyKey(ctx context.Context, tx pgx.Tx, hostID uuid.UUID, key string) (IdempotencyRecord, bool, error) {
	rec, err := r.selectIdempotencyForUpdate(ctx, tx, hostID, key)
	if err == nil {
		return rec, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return IdempotencyRecord{}, false, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO booking_idempotency_keys (host_id, idempotency_key)
		VALUES ($1, $2)
		ON CONFLICT (host_id, idempotency_key) DO NOTHING
	`, hostID, key)
	if err != nil {
		return IdempotencyRecord{}, false, err
	}

	rec, err = r.selectIdempotencyForUpdate(ctx, tx, hostID, key)
	if err != nil {
		return IdempotencyRecord{}, false, err
	}
	return rec, false, nil
}

func (r *BookingRepository) FinalizeIdempotency(ctx context.Context, tx pgx.Tx, hostID uuid.UUID, key string, bookingID uuid.UUID, statusCode int, response []byte) error {
	_, err := tx.Exec(ctx, `
		UPDATE booking_idempotency_keys
		SET booking_id = $3,
			status_code = $4,
			response_payload = $5,
			updated_at = now()
		WHERE host_id = $1 AND idempotency_key = $2
	`, hostID, key, bookingID, statusCode, response)
	return err
}

func (r *BookingRepository) Create(ctx context.Context, tx pgx.Tx, b *model.Booking) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRow(ctx, `
		INSERT INTO bookings
			(id, host_id, event_type_id, customer_name, customer_email, notes, start_at, end_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, uuid.New(), b.HostID, b.EventTypeID, b.CustomerName, b.CustomerEmail, b.Notes,
		b.StartAt, b.EndAt, b.Status).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (r *BookingRepository) SetCalendarEventID(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID, calendarEventID string) error {
	_, err := tx.Exec(ctx, `
		UPDATE bookings
		SET calendar_event_id = $2
		WHERE id = $1
	`, bookingID, calendarEventID)
	return err
}

func (r *BookingRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, hostID, bookingID uuid.UUID) (model.Booking, error) {
	var b model.Booking
	err := tx.QueryRow(ctx, `
		SELECT id, host_id, event_type_id, customer_name, customer_email, COALESCE(notes, ''),
			start_at, end_at, status, COALESCE(calendar_event_id, ''),
			cancelled_at, COALESCE(cancellation_reason, ''), created_at
		FROM bookings
		WHERE id = $1 AND host_id = $2
		FOR UPDATE
	`, bookingID, hostID).Scan(
		&b.ID,
		&b.HostID,
		&b.EventTypeID,
		&b.CustomerName,
		&b.CustomerEmail,
		&b.Notes,
		&b.StartAt,
		&b.EndAt,
		&b.Status,
		&b.CalendarEventID,
		&b.CancelledAt,
		&b.CancellationReason,
		&b.CreatedAt,
	)
	if err != nil {
		return model.Booking{}, err
	}
	return b, nil
}

func (r *BookingRepository) Cancel(ctx context.Context, tx pgx.Tx, hostID, bookingID uuid.UUID, reason string) (time.Time, error) {
	var cancelledAt time.Time
	err := tx.QueryRow(ctx, `
		UPDATE bookings
		SET status = 'cancelled',
			cancelled_at = now(),
			cancellation_reason = $3
		WHERE id = $1 AND host_id = $2
		RETURNING cancelled_at
	`, bookingID, hostID, reason).Scan(&cancelledAt)
	return cancelledAt, err
}

// ListBookedIntervals returns the host's confirmed bookings overlapping
// [start, end) as intervals for subtraction from availability.
func (r *BookingRepository) ListBookedIntervals(ctx context.Context, hostID uuid.UUID, start, end time.Time) ([]availability.Interval, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT start_at, end_at
		FROM bookings
		WHERE host_id = $1
			AND status = 'confirmed'
			AND start_at < $3
			AND end_at > $2
		ORDER BY start_at ASC
	`, hostID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []availability.Interval
	for rows.Next() {
		var iv availability.Interval
		if err := rows.Scan(&iv.Start, &iv.End); err != nil {
			return nil, err
		}
		out = append(out, iv)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// ListUpcoming returns the host's bookings starting at or after now.
func (r *BookingRepository) ListUpcoming(ctx context.Context, hostID uuid.UUID, now time.Time, limit int) ([]model.Booking, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, host_id, event_type_id, customer_name, customer_email, COALESCE(notes, ''),
			start_at, end_at, status, COALESCE(calendar_event_id, ''),
			cancelled_at, COALESCE(cancellation_reason, ''), created_at
		FROM bookings
		WHERE host_id = $1 AND start_at >= $2
		ORDER BY start_at ASC
		LIMIT $3
	`, hostID, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(
			&b.ID,
			&b.HostID,
			&b.EventTypeID,
			&b.CustomerName,
			&b.CustomerEmail,
			&b.Notes,
			&b.StartAt,
			&b.EndAt,
			&b.Status,
			&b.CalendarEventID,
			&b.CancelledAt,
			&b.CancellationReason,
			&b.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *BookingRepository) selectIdempotencyForUpdate(ctx context.Context, tx pgx.Tx, hostID uuid.UUID, key string) (IdempotencyRecord, error) {
	var rec IdempotencyRecord
	var bookingID *uuid.UUID
	var responseText string
	err := tx.QueryRow(ctx, `
		SELECT host_id,
			idempotency_key,
			booking_id,
			COALESCE(status_code, 0),
			COALESCE(response_payload::text, '')
		FROM booking_idempotency_keys
		WHERE host_id = $1 AND idempotency_key = $2
		FOR UPDATE
	`, hostID, key).Scan(
		&rec.HostID,
		&rec.IdempotencyKey,
		&bookingID,
		&rec.StatusCode,
		&responseText,
	)
	if err != nil {
		return IdempotencyRecord{}, err
	}
	if bookingID != nil {
		rec.BookingID = *bookingID
	}
	if responseText != "" {
		rec.ResponsePayload = []byte(responseText)
	}
	return rec, nil
}
