package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/openmeet/openmeet/internal/model"
	"github.com/openmeet/openmeet/libs/db"
)

type EventTypeRepository struct {
	pool *db.Pool
}

func NewEventTypeRepository(pool *db.Pool) *EventTypeRepository {
	return &EventTypeRepository{pool: pool}
}

func (r *EventTypeRepository) ListByHost(ctx context.Context, hostID uuid.UUID) ([]model.EventType, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, host_id, slug, title, description, duration_minutes
		FROM event_types
		WHERE host_id = $1
		ORDER BY title
	`, hostID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.EventType
	for rows.Next() {
		var et model.EventType
		if err := rows.Scan(&et.ID, &et.HostID, &et.Slug, &et.Title, &et.Description, &et.DurationMinutes); err != nil {
			return nil, err
		}
		out = append(out, et)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *EventTypeRepository) GetByHostAndSlug(ctx context.Context, hostID uuid.UUID, slug string) (model.EventType, error) {
	var et model.EventType
	err := r.pool.QueryRow(ctx, `
		SELECT id, host_id, slug, title, description, duration_minutes
		FROM event_types
		WHERE host_id = $1 AND slug = $2
	`, hostID, slug).Scan(&et.ID, &et.HostID, &et.Slug, &et.Title, &et.Description, &et.DurationMinutes)
	if err != nil {
		return model.EventType{}, err
	}
	return et, nil
}

// Replace swaps the host's event types atomically. Bookings keep their
// event_type_id; rows referenced by bookings are updated in place when
// the incoming set carries their ID, otherwise replaced.
func (r *EventTypeRepository) Replace(ctx context.Context, tx pgx.Tx, hostID uuid.UUID, eventTypes []model.EventType) error {
	keep := make([]uuid.UUID, 0, len(eventTypes))
	for i := range eventTypes {
		if eventTypes[i].ID == uuid.Nil {
			eventTypes[i].ID = uuid.New()
		}
		keep = append(keep, eventTypes[i].ID)
	}
	if _, err := tx.Exec(ctx, `
		DELETE FROM event_types
		WHERE host_id = $1 AND NOT (id = ANY($2))
	`, hostID, keep); err != nil {
		return err
	}
	for _, et := range eventTypes {
		if _, err := tx.Exec(ctx, `
			INSERT INTO event_types (id, host_id, slug, title, description, duration_minutes)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE
			SET slug = EXCLUDED.slug,
				title = EXCLUDED.title,
				description = EXCLUDED.description,
				duration_minutes = EXCLUDED.duration_minutes
		`, et.ID, hostID, et.Slug, et.Title, et.Description, et.DurationMinutes); err != nil {
			return err
		}
	}
	return nil
}
