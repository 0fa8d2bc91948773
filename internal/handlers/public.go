package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/openmeet/openmeet/internal/availability"
	"github.com/openmeet/openmeet/internal/calendar"
	"github.com/openmeet/openmeet/internal/model"
	"github.com/openmeet/openmeet/internal/outbox"
	"github.com/openmeet/openmeet/internal/storage"
)

// PublicHandler serves the unauthenticated booking-page API: host
// profiles, availability queries, and slot booking.
type PublicHandler struct {
	hosts      *storage.HostRepository
	eventTypes *storage.EventTypeRepository
	bookings   *storage.BookingRepository
	outboxRepo *outbox.Repository
	busy       calendar.BusyProvider
	logger     *slog.Logger
}

func NewPublicHandler(
	hosts *storage.HostRepository,
	eventTypes *storage.EventTypeRepository,
	bookings *storage.BookingRepository,
	outboxRepo *outbox.Repository,
	busy calendar.BusyProvider,
	logger *slog.Logger,
) *PublicHandler {
	return &PublicHandler{
		hosts:      hosts,
		eventTypes: eventTypes,
		bookings:   bookings,
		outboxRepo: outboxRepo,
		busy:       busy,
		logger:     logger,
	}
}

type publicHostResponse struct {
	Name       string            `json:"name"`
	Slug       string            `json:"slug"`
	TimeZone   string            `json:"timeZone"`
	EventTypes []model.EventType `json:"eventTypes"`
}

// GetHost returns the public booking-page profile. Credentials and
// email are never included.
func (h *PublicHandler) GetHost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()
	host, err := h.hosts.GetBySlug(ctx, r.PathValue("slug"))
	if err != nil {
		http.Error(w, "host not found", http.StatusNotFound)
		return
	}
	eventTypes, err := h.eventTypes.ListByHost(ctx, host.ID)
	if err != nil {
		h.logger.Error("list event types failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	if eventTypes == nil {
		eventTypes = []model.EventType{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(publicHostResponse{
		Name:       host.Name,
		Slug:       host.Slug,
		TimeZone:   host.TimeZone,
		EventTypes: eventTypes,
	})
}

type slotResponse struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type availabilityResponse struct {
	Name            string                    `json:"name"`
	EventType       model.EventType           `json:"eventType"`
	AvailableRanges []availability.Interval   `json:"availableRanges"`
	Slots           []slotResponse            `json:"slots"`
	Days            map[string][]slotResponse `json:"days"`
}

// Availability returns bookable slots for an event type over the
// requested window, grouped by local date.
func (h *PublicHandler) Availability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()

	host, eventType, ok := h.resolveTarget(w, r)
	if !ok {
		return
	}

	start, end, ok := parseWindow(w, r.URL.Query().Get("start"), r.URL.Query().Get("end"))
	if !ok {
		return
	}

	loc, err := availability.LoadZone(host.TimeZone)
	if err != nil {
		h.logger.Error("host has invalid time zone", "host", host.ID, "zone", host.TimeZone)
		http.Error(w, "host time zone misconfigured", http.StatusInternalServerError)
		return
	}
	if tz := r.URL.Query().Get("timeZone"); tz != "" {
		viewerLoc, err := availability.LoadZone(tz)
		if err != nil {
			http.Error(w, fmt.Sprintf("the given timeZone is invalid: %s", tz), http.StatusBadRequest)
			return
		}
		loc = viewerLoc
	}

	available, slots, err := h.bookableSlots(ctx, host, eventType, start, end)
	if err != nil {
		h.logger.Error("availability query failed", "host", host.ID, "err", err)
		http.Error(w, "failed to compute availability", http.StatusBadGateway)
		return
	}

	days := make(map[string][]slotResponse)
	for key, ivs := range availability.GroupByLocalDate(slots, loc) {
		group := make([]slotResponse, 0, len(ivs))
		for _, iv := range ivs {
			group = append(group, slotResponse{Start: iv.Start, End: iv.End})
		}
		days[key] = group
	}

	out := make([]slotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, slotResponse{Start: s.Start, End: s.End})
	}
	if available == nil {
		available = []availability.Interval{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(availabilityResponse{
		Name:            host.Name,
		EventType:       eventType,
		AvailableRanges: available,
		Slots:           out,
		Days:            days,
	})
}

// bookableSlots composes the pure engine with stored rules, confirmed
// bookings, and external calendar busy intervals.
func (h *PublicHandler) bookableSlots(ctx context.Context, host model.Host, eventType model.EventType, start, end time.Time) ([]availability.Interval, []availability.Interval, error) {
	rules, err := h.hosts.LoadAvailability(ctx, host.ID)
	if err != nil {
		return nil, nil, err
	}
	loc, err := availability.LoadZone(host.TimeZone)
	if err != nil {
		return nil, nil, err
	}

	busy, err := h.bookings.ListBookedIntervals(ctx, host.ID, start, end)
	if err != nil {
		return nil, nil, err
	}
	if host.HasCalendar() {
		external, err := h.busy.FreeBusy(ctx, host, start, end)
		if err != nil {
			return nil, nil, err
		}
		busy = append(busy, external...)
	}

	available := availability.AvailableRanges(start, end, rules, loc, busy)
	slots := availability.BookableSlots(available, eventType.Duration(), eventType.Duration())
	return available, slots, nil
}

func (h *PublicHandler) resolveTarget(w http.ResponseWriter, r *http.Request) (model.Host, model.EventType, bool) {
	ctx := r.Context()
	host, err := h.hosts.GetBySlug(ctx, r.PathValue("slug"))
	if err != nil {
		http.Error(w, "host not found", http.StatusNotFound)
		return model.Host{}, model.EventType{}, false
	}
	etSlug := r.PathValue("eventType")
	eventType, err := h.eventTypes.GetByHostAndSlug(ctx, host.ID, etSlug)
	if err != nil {
		if !storage.IsNotFound(err) {
			http.Error(w, "db error", http.StatusInternalServerError)
			return model.Host{}, model.EventType{}, false
		}
		// Event types are addressable by ID as well as by slug.
		id, parseErr := parseUUID(etSlug)
		if parseErr != nil {
			http.Error(w, "event type not found", http.StatusNotFound)
			return model.Host{}, model.EventType{}, false
		}
		eventTypes, listErr := h.eventTypes.ListByHost(ctx, host.ID)
		if listErr != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return model.Host{}, model.EventType{}, false
		}
		found := false
		for _, et := range eventTypes {
			if et.ID == id {
				eventType = et
				found = true
				break
			}
		}
		if !found {
			http.Error(w, "event type not found", http.StatusNotFound)
			return model.Host{}, model.EventType{}, false
		}
	}
	return host, eventType, true
}

// parseWindow parses the start/end query params. A start in the past is
// clamped to now so stale booking pages cannot offer past slots.
func parseWindow(w http.ResponseWriter, startStr, endStr string) (time.Time, time.Time, bool) {
	if startStr == "" || endStr == "" {
		http.Error(w, "start and end query params required", http.StatusBadRequest)
		return time.Time{}, time.Time{}, false
	}
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		http.Error(w, "invalid start", http.StatusBadRequest)
		return time.Time{}, time.Time{}, false
	}
	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		http.Error(w, "invalid end", http.StatusBadRequest)
		return time.Time{}, time.Time{}, false
	}
	if now := time.Now(); start.Before(now) {
		start = now
	}
	if !end.After(start) {
		http.Error(w, "end must be after start", http.StatusBadRequest)
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}
