// Package model holds the domain entities shared by storage, handlers,
// and the outbox.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/openmeet/openmeet/internal/availability"
)

// Host is an account that publishes availability and receives bookings.
type Host struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	TimeZone     string    `json:"timeZone"`
	PasswordHash string    `json:"-"`

	// Google Calendar credentials. Empty when the host has not linked
	// a calendar; availability then uses bookings only.
	GoogleRefreshToken   string    `json:"-"`
	GoogleAccessToken    string    `json:"-"`
	GoogleTokenExpiresAt time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasCalendar reports whether external busy intervals can be fetched.
func (h Host) HasCalendar() bool {
	return h.GoogleRefreshToken != ""
}

// EventType is a bookable meeting kind a host offers.
type EventType struct {
	ID              uuid.UUID `json:"id"`
	HostID          uuid.UUID `json:"-"`
	Slug            string    `json:"slug"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	DurationMinutes int       `json:"durationMinutes"`
}

// Duration returns the meeting length as a time.Duration.
func (et EventType) Duration() time.Duration {
	return time.Duration(et.DurationMinutes) * time.Minute
}

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking is a confirmed slot reservation.
type Booking struct {
	ID                 uuid.UUID     `json:"id"`
	HostID             uuid.UUID     `json:"-"`
	EventTypeID        uuid.UUID     `json:"eventTypeId"`
	CustomerName       string        `json:"customerName"`
	CustomerEmail      string        `json:"customerEmail"`
	Notes              string        `json:"notes,omitempty"`
	StartAt            time.Time     `json:"startAt"`
	EndAt              time.Time     `json:"endAt"`
	Status             BookingStatus `json:"status"`
	CalendarEventID    string        `json:"-"`
	CancelledAt        *time.Time    `json:"cancelledAt,omitempty"`
	CancellationReason string        `json:"cancellationReason,omitempty"`
	CreatedAt          time.Time     `json:"createdAt"`
}

// Interval returns the booked range for subtraction from availability.
func (b Booking) Interval() availability.Interval {
	return availability.Interval{Start: b.StartAt, End: b.EndAt}
}
