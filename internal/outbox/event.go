// Package outbox implements the transactional outbox: domain events are
// committed with the booking row and published to Kafka afterwards.
package outbox

import (
	"encoding/json"
	"time"

	"github.com/openmeet/openmeet/internal/model"
)

const (
	TopicBookingCreated   = "booking.created.v1"
	TopicBookingCancelled = "booking.cancelled.v1"
)

// Event is the envelope written to the outbox table. The Kafka topic
// name equals EventType.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

type bookingPayload struct {
	BookingID          string    `json:"bookingId"`
	HostID             string    `json:"hostId"`
	EventTypeID        string    `json:"eventTypeId"`
	CustomerName       string    `json:"customerName"`
	CustomerEmail      string    `json:"customerEmail"`
	StartAt            time.Time `json:"startAt"`
	EndAt              time.Time `json:"endAt"`
	CancellationReason string    `json:"cancellationReason,omitempty"`
}

func NewBookingCreated(b model.Booking) (Event, error) {
	return newBookingEvent(TopicBookingCreated, b)
}

func NewBookingCancelled(b model.Booking) (Event, error) {
	return newBookingEvent(TopicBookingCancelled, b)
}

func newBookingEvent(eventType string, b model.Booking) (Event, error) {
	payload, err := json.Marshal(bookingPayload{
		BookingID:          b.ID.String(),
		HostID:             b.HostID.String(),
		EventTypeID:        b.EventTypeID.String(),
		CustomerName:       b.CustomerName,
		CustomerEmail:      b.CustomerEmail,
		StartAt:            b.StartAt,
		EndAt:              b.EndAt,
		CancellationReason: b.CancellationReason,
	})
	if err != nil {
		return Event{}, err
	}
	return Event{
		AggregateType: "booking",
		AggregateID:   b.ID.String(),
		EventType:     eventType,
		Payload:       payload,
	}, nil
}
