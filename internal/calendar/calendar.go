// Package calendar fetches a host's external busy intervals and mirrors
// bookings into their calendar. The availability engine itself never
// talks to this package; handlers fetch busy intervals and pass them in.
package calendar

import (
	"context"
	"time"

	"github.com/openmeet/openmeet/internal/availability"
	"github.com/openmeet/openmeet/internal/model"
)

// BusyProvider is the external-calendar surface the handlers depend on.
type BusyProvider interface {
	// FreeBusy returns the host's busy intervals within [start, end).
	FreeBusy(ctx context.Context, host model.Host, start, end time.Time) ([]availability.Interval, error)
	// CreateEvent mirrors a booking into the host's calendar and
	// returns the created event's ID.
	CreateEvent(ctx context.Context, host model.Host, b model.Booking, title string) (string, error)
	// DeleteEvent removes a previously mirrored event.
	DeleteEvent(ctx context.Context, host model.Host, eventID string) error
}

// None is the provider for hosts without a linked calendar.
type None struct{}

func (None) FreeBusy(context.Context, model.Host, time.Time, time.Time) ([]availability.Interval, error) {
	return nil, nil
}

func (None) CreateEvent(context.Context, model.Host, model.Booking, string) (string, error) {
	return "", nil
}

func (None) DeleteEvent(context.Context, model.Host, string) error {
	return nil
}
