package calendar

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/openmeet/openmeet/internal/model"
)

type memTokenStore struct {
	mu      sync.Mutex
	updated map[uuid.UUID]string
}

func (s *memTokenStore) UpdateGoogleTokens(_ context.Context, hostID uuid.UUID, accessToken string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updated == nil {
		s.updated = make(map[uuid.UUID]string)
	}
	s.updated[hostID] = accessToken
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testHost(accessExpiry time.Time) model.Host {
	return model.Host{
		ID:                   uuid.New(),
		Name:                 "Jane",
		GoogleRefreshToken:   "refresh-1",
		GoogleAccessToken:    "access-1",
		GoogleTokenExpiresAt: accessExpiry,
	}
}

func TestFreeBusyUsesFreshToken(t *testing.T) {
	var gotAuth string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"calendars": map[string]any{
				"primary": map[string]any{
					"busy": []map[string]string{
						{"start": "2026-09-07T09:00:00Z", "end": "2026-09-07T10:00:00Z"},
					},
				},
			},
		})
	}))
	defer api.Close()

	g := NewGoogle(GoogleConfig{
		FreeBusyEndpoint: api.URL,
		TokenEndpoint:    "http://invalid.invalid",
	}, &memTokenStore{}, testLogger())

	host := testHost(time.Now().Add(time.Hour))
	busy, err := g.FreeBusy(context.Background(), host,
		time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("FreeBusy failed: %v", err)
	}
	if gotAuth != "Bearer access-1" {
		t.Fatalf("expected the stored access token, got %q", gotAuth)
	}
	if len(busy) != 1 {
		t.Fatalf("got %d busy intervals, want 1", len(busy))
	}
	if !busy[0].Start.Equal(time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected busy start %v", busy[0].Start)
	}
}

func TestFreeBusyRefreshesExpiringToken(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.Form.Get("grant_type") != "refresh_token" || r.Form.Get("refresh_token") != "refresh-1" {
			t.Fatalf("unexpected token request: %v", r.Form)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "access-2",
			"expires_in":   3600,
		})
	}))
	defer tokenServer.Close()

	var gotAuth string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{"calendars": map[string]any{}})
	}))
	defer api.Close()

	store := &memTokenStore{}
	g := NewGoogle(GoogleConfig{
		ClientID:         "client-1",
		ClientSecret:     "secret-1",
		TokenEndpoint:    tokenServer.URL,
		FreeBusyEndpoint: api.URL,
	}, store, testLogger())

	// Expires within the freshness margin, so a refresh is forced.
	host := testHost(time.Now().Add(5 * time.Minute))
	if _, err := g.FreeBusy(context.Background(), host, time.Now(), time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("FreeBusy failed: %v", err)
	}
	if gotAuth != "Bearer access-2" {
		t.Fatalf("expected the refreshed token, got %q", gotAuth)
	}
	if store.updated[host.ID] != "access-2" {
		t.Fatal("refreshed token should be persisted")
	}
}

func TestCreateEventReturnsID(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var evt map[string]any
		if err := json.NewDecoder(r.Body).Decode(&evt); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		if evt["summary"] != "Jane Doe and Jane" {
			t.Fatalf("unexpected summary %v", evt["summary"])
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "evt-123"})
	}))
	defer api.Close()

	g := NewGoogle(GoogleConfig{EventsEndpoint: api.URL}, &memTokenStore{}, testLogger())
	host := testHost(time.Now().Add(time.Hour))
	booking := model.Booking{
		CustomerName:  "Jane Doe",
		CustomerEmail: "jane@example.com",
		StartAt:       time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC),
		EndAt:         time.Date(2026, 9, 7, 9, 30, 0, 0, time.UTC),
	}
	id, err := g.CreateEvent(context.Background(), host, booking, "Intro call")
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	if id != "evt-123" {
		t.Fatalf("event id = %q, want evt-123", id)
	}
}

func TestNoneProviderIsInert(t *testing.T) {
	var p None
	busy, err := p.FreeBusy(context.Background(), model.Host{}, time.Now(), time.Now().Add(time.Hour))
	if err != nil || busy != nil {
		t.Fatalf("None.FreeBusy = %v, %v", busy, err)
	}
	id, err := p.CreateEvent(context.Background(), model.Host{}, model.Booking{}, "")
	if err != nil || id != "" {
		t.Fatalf("None.CreateEvent = %q, %v", id, err)
	}
	if err := p.DeleteEvent(context.Background(), model.Host{}, "x"); err != nil {
		t.Fatalf("None.DeleteEvent = %v", err)
	}
}
