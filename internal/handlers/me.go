package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/openmeet/openmeet/internal/availability"
	"github.com/openmeet/openmeet/internal/model"
	"github.com/openmeet/openmeet/internal/storage"
)

var slugPattern = regexp.MustCompile(`^[0-9A-Za-z-_]+$`)

// reservedSlugs are path segments the router owns; hosts cannot claim
// them as booking-page slugs.
var reservedSlugs = map[string]bool{
	"api":     true,
	"auth":    true,
	"healthz": true,
	"readyz":  true,
	"hosts":   true,
	"me":      true,
	"static":  true,
	"login":   true,
	"logout":  true,
	"signin":  true,
	"signout": true,
	"index":   true,
}

type MeHandler struct {
	hosts      *storage.HostRepository
	eventTypes *storage.EventTypeRepository
	logger     *slog.Logger
}

func NewMeHandler(hosts *storage.HostRepository, eventTypes *storage.EventTypeRepository, logger *slog.Logger) *MeHandler {
	return &MeHandler{hosts: hosts, eventTypes: eventTypes, logger: logger}
}

type hostProfile struct {
	ID           string                     `json:"id"`
	Email        string                     `json:"email"`
	Name         string                     `json:"name"`
	Slug         string                     `json:"slug"`
	TimeZone     string                     `json:"timeZone"`
	Availability []availability.WeeklyRange `json:"availability"`
	EventTypes   []model.EventType          `json:"eventTypes"`
	HasCalendar  bool                       `json:"hasCalendar"`
}

func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPatch:
		h.patch(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *MeHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	host, err := h.hosts.GetByID(ctx, HostID(ctx))
	if err != nil {
		http.Error(w, "host not found", http.StatusNotFound)
		return
	}
	profile, err := h.buildProfile(r, host)
	if err != nil {
		h.logger.Error("load profile failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(profile)
}

type patchRequest struct {
	Name         *string                     `json:"name"`
	Slug         *string                     `json:"slug"`
	TimeZone     *string                     `json:"timeZone"`
	Availability *[]availability.WeeklyRange `json:"availability"`
	EventTypes   *[]model.EventType          `json:"eventTypes"`
}

func (h *MeHandler) patch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	host, err := h.hosts.GetByID(ctx, HostID(ctx))
	if err != nil {
		http.Error(w, "host not found", http.StatusNotFound)
		return
	}

	var req patchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	name := host.Name
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
		if name == "" {
			http.Error(w, "name must not be empty", http.StatusBadRequest)
			return
		}
	}

	slug := host.Slug
	if req.Slug != nil {
		slug = *req.Slug
		if !slugPattern.MatchString(slug) {
			http.Error(w, fmt.Sprintf("the given slug %q includes invalid characters; only alphabets, numbers, -, and _ are allowed", slug), http.StatusBadRequest)
			return
		}
		if reservedSlugs[strings.ToLower(slug)] {
			http.Error(w, fmt.Sprintf("the given slug %q is not available", slug), http.StatusBadRequest)
			return
		}
		if other, err := h.hosts.GetBySlug(ctx, slug); err == nil && other.ID != host.ID {
			http.Error(w, fmt.Sprintf("the given slug %q is not available", slug), http.StatusBadRequest)
			return
		} else if err != nil && !storage.IsNotFound(err) {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
	}

	timeZone := host.TimeZone
	if req.TimeZone != nil {
		timeZone = *req.TimeZone
		if !availability.IsValidTimeZone(timeZone) {
			http.Error(w, fmt.Sprintf("the given timeZone is invalid: %s", timeZone), http.StatusBadRequest)
			return
		}
	}

	if req.Availability != nil {
		for _, wr := range *req.Availability {
			if err := wr.Validate(); err != nil {
				http.Error(w, fmt.Sprintf("the given range is invalid: %s %s-%s", wr.Weekday, wr.StartTime, wr.EndTime), http.StatusBadRequest)
				return
			}
		}
	}

	if req.EventTypes != nil {
		seen := make(map[string]bool)
		for _, et := range *req.EventTypes {
			if strings.TrimSpace(et.Title) == "" || et.DurationMinutes <= 0 {
				http.Error(w, "event types need a title and a positive duration", http.StatusBadRequest)
				return
			}
			if et.Slug == "" {
				continue
			}
			if !slugPattern.MatchString(et.Slug) {
				http.Error(w, fmt.Sprintf("the given event type slug %q includes invalid characters", et.Slug), http.StatusBadRequest)
				return
			}
			if seen[et.Slug] {
				http.Error(w, fmt.Sprintf("more than 1 event type have the same url slug: %s", et.Slug), http.StatusBadRequest)
				return
			}
			seen[et.Slug] = true
		}
	}

	tx, err := h.hosts.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := h.hosts.UpdateSettings(ctx, tx, host.ID, name, slug, timeZone); err != nil {
		if storage.IsUniqueViolation(err) {
			http.Error(w, fmt.Sprintf("the given slug %q is not available", slug), http.StatusBadRequest)
			return
		}
		h.logger.Error("update settings failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	if req.Availability != nil {
		if err := h.hosts.ReplaceAvailability(ctx, tx, host.ID, *req.Availability); err != nil {
			h.logger.Error("replace availability failed", "err", err)
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
	}
	if req.EventTypes != nil {
		if err := h.eventTypes.Replace(ctx, tx, host.ID, *req.EventTypes); err != nil {
			h.logger.Error("replace event types failed", "err", err)
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
	}
	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{})
}

func (h *MeHandler) buildProfile(r *http.Request, host model.Host) (hostProfile, error) {
	ctx := r.Context()
	rules, err := h.hosts.LoadAvailability(ctx, host.ID)
	if err != nil {
		return hostProfile{}, err
	}
	eventTypes, err := h.eventTypes.ListByHost(ctx, host.ID)
	if err != nil {
		return hostProfile{}, err
	}
	if eventTypes == nil {
		eventTypes = []model.EventType{}
	}
	if rules == nil {
		rules = []availability.WeeklyRange{}
	}
	return hostProfile{
		ID:           host.ID.String(),
		Email:        host.Email,
		Name:         host.Name,
		Slug:         host.Slug,
		TimeZone:     host.TimeZone,
		Availability: rules,
		EventTypes:   eventTypes,
		HasCalendar:  host.HasCalendar(),
	}, nil
}
