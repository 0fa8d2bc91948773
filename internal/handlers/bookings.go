package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openmeet/openmeet/internal/calendar"
	"github.com/openmeet/openmeet/internal/model"
	"github.com/openmeet/openmeet/internal/outbox"
	"github.com/openmeet/openmeet/internal/storage"
)

type createBookingRequest struct {
	Start         string `json:"start"`
	End           string `json:"end"`
	CustomerName  string `json:"name"`
	CustomerEmail string `json:"email"`
	Notes         string `json:"description"`
}

type createBookingResponse struct {
	BookingID string    `json:"bookingId"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Status    string    `json:"status"`
}

// CreateBooking books an exact slot. Availability is re-derived on the
// server; the requested range must equal a currently bookable slot.
func (h *PublicHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()

	host, eventType, ok := h.resolveTarget(w, r)
	if !ok {
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerEmail = strings.TrimSpace(req.CustomerEmail)
	if req.CustomerName == "" || req.CustomerEmail == "" {
		http.Error(w, "name and email required", http.StatusBadRequest)
		return
	}
	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		http.Error(w, "invalid start", http.StatusBadRequest)
		return
	}
	end, err := time.Parse(time.RFC3339, req.End)
	if err != nil {
		http.Error(w, "invalid end", http.StatusBadRequest)
		return
	}
	if !end.After(start) {
		http.Error(w, "end must be after start", http.StatusBadRequest)
		return
	}
	if start.Before(time.Now()) {
		http.Error(w, "the given range is in the past", http.StatusBadRequest)
		return
	}

	_, slots, err := h.bookableSlots(ctx, host, eventType, start, end)
	if err != nil {
		h.logger.Error("availability check failed", "host", host.ID, "err", err)
		http.Error(w, "failed to verify availability", http.StatusBadGateway)
		return
	}
	matched := false
	for _, s := range slots {
		if s.Start.Equal(start) && s.End.Equal(end) {
			matched = true
			break
		}
	}
	if !matched {
		http.Error(w, "the given range is not available", http.StatusBadRequest)
		return
	}

	booking := &model.Booking{
		HostID:        host.ID,
		EventTypeID:   eventType.ID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Notes:         strings.TrimSpace(req.Notes),
		StartAt:       start,
		EndAt:         end,
		Status:        model.BookingConfirmed,
	}

	tx, err := h.bookings.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if idempotencyKey != "" {
		rec, exists, err := h.bookings.LockIdempotencyKey(ctx, tx, host.ID, idempotencyKey)
		if err != nil {
			http.Error(w, "failed to lock idempotency key", http.StatusInternalServerError)
			return
		}
		if exists && rec.StatusCode > 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(rec.StatusCode)
			_, _ = w.Write(rec.ResponsePayload)
			return
		}
	}

	id, err := h.bookings.Create(ctx, tx, booking)
	if err != nil {
		if storage.IsConflict(err) {
			http.Error(w, "the given range is not available", http.StatusConflict)
			return
		}
		h.logger.Error("create booking failed", "err", err)
		http.Error(w, "failed to create booking", http.StatusInternalServerError)
		return
	}
	booking.ID = id

	evt, err := outbox.NewBookingCreated(*booking)
	if err != nil {
		http.Error(w, "failed to build event payload", http.StatusInternalServerError)
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, evt); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	// Calendar mirroring is best effort; the booking row is the source
	// of truth and a failed mirror must not lose the reservation.
	if host.HasCalendar() {
		eventID, err := h.busy.CreateEvent(ctx, host, *booking, eventType.Title)
		if err != nil {
			h.logger.Warn("calendar event creation failed", "booking", id, "err", err)
		} else if eventID != "" {
			if err := h.bookings.SetCalendarEventID(ctx, tx, id, eventID); err != nil {
				h.logger.Warn("store calendar event id failed", "booking", id, "err", err)
			}
		}
	}

	respBody, err := json.Marshal(createBookingResponse{
		BookingID: id.String(),
		Start:     start,
		End:       end,
		Status:    string(model.BookingConfirmed),
	})
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	if idempotencyKey != "" {
		if err := h.bookings.FinalizeIdempotency(ctx, tx, host.ID, idempotencyKey, id, http.StatusCreated, respBody); err != nil {
			http.Error(w, "failed to finalize idempotency key", http.StatusInternalServerError)
			return
		}
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(respBody)
}

// HostBookingsHandler serves the authenticated host's booking list and
// cancellation.
type HostBookingsHandler struct {
	hosts    *storage.HostRepository
	bookings *storage.BookingRepository
	outbox   *outbox.Repository
	busy     calendar.BusyProvider
	logger   *slog.Logger
}

func NewHostBookingsHandler(
	hosts *storage.HostRepository,
	bookings *storage.BookingRepository,
	outboxRepo *outbox.Repository,
	busy calendar.BusyProvider,
	logger *slog.Logger,
) *HostBookingsHandler {
	return &HostBookingsHandler{
		hosts:    hosts,
		bookings: bookings,
		outbox:   outboxRepo,
		busy:     busy,
		logger:   logger,
	}
}

// List returns the host's upcoming bookings in start order.
func (h *HostBookingsHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()
	bookings, err := h.bookings.ListUpcoming(ctx, HostID(ctx), time.Now(), 100)
	if err != nil {
		h.logger.Error("list bookings failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	if bookings == nil {
		bookings = []model.Booking{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"bookings": bookings})
}

type cancelBookingRequest struct {
	BookingID string `json:"bookingId"`
	Reason    string `json:"reason"`
}

type cancelBookingResponse struct {
	BookingID   string `json:"bookingId"`
	Status      string `json:"status"`
	CancelledAt string `json:"cancelledAt"`
}

// Cancel cancels one of the host's bookings. Cancelling an already
// cancelled booking succeeds with the original cancellation time.
func (h *HostBookingsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req cancelBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	bookingID, err := parseUUID(strings.TrimSpace(req.BookingID))
	if err != nil {
		http.Error(w, "bookingId required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	hostID := HostID(ctx)
	tx, err := h.bookings.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	booking, err := h.bookings.GetForUpdate(ctx, tx, hostID, bookingID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "booking not found", http.StatusNotFound)
			return
		}
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	if booking.Status == model.BookingCancelled {
		cancelledAt := ""
		if booking.CancelledAt != nil {
			cancelledAt = booking.CancelledAt.Format(time.RFC3339)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(cancelBookingResponse{
			BookingID:   booking.ID.String(),
			Status:      string(model.BookingCancelled),
			CancelledAt: cancelledAt,
		})
		return
	}

	reason := strings.TrimSpace(req.Reason)
	cancelledAt, err := h.bookings.Cancel(ctx, tx, hostID, bookingID, reason)
	if err != nil {
		h.logger.Error("cancel booking failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	booking.Status = model.BookingCancelled
	booking.CancellationReason = reason

	evt, err := outbox.NewBookingCancelled(booking)
	if err != nil {
		http.Error(w, "failed to build event payload", http.StatusInternalServerError)
		return
	}
	if err := h.outbox.Insert(ctx, tx, evt); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}

	if booking.CalendarEventID != "" {
		host, err := h.hosts.GetByID(ctx, hostID)
		if err == nil && host.HasCalendar() {
			if err := h.busy.DeleteEvent(ctx, host, booking.CalendarEventID); err != nil {
				h.logger.Warn("calendar event deletion failed", "booking", bookingID, "err", err)
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(cancelBookingResponse{
		BookingID:   bookingID.String(),
		Status:      string(model.BookingCancelled),
		CancelledAt: cancelledAt.Format(time.RFC3339),
	})
}
