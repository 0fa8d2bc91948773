package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openmeet/openmeet/internal/availability"
	"github.com/openmeet/openmeet/internal/model"
)

const (
	defaultTokenEndpoint    = "https://oauth2.googleapis.com/token"
	defaultFreeBusyEndpoint = "https://www.googleapis.com/calendar/v3/freeBusy"
	defaultEventsEndpoint   = "https://www.googleapis.com/calendar/v3/calendars/primary/events"

	// Tokens are refreshed when this close to expiry so a long
	// availability query does not outlive its credential.
	tokenFreshness = 10 * time.Minute
)

// TokenStore persists refreshed access tokens back to the host record.
type TokenStore interface {
	UpdateGoogleTokens(ctx context.Context, hostID uuid.UUID, accessToken string, expiresAt time.Time) error
}

// GoogleConfig carries the OAuth client credentials and endpoint
// overrides used in tests.
type GoogleConfig struct {
	ClientID         string
	ClientSecret     string
	TokenEndpoint    string
	FreeBusyEndpoint string
	EventsEndpoint   string
}

// Google talks to the Google Calendar API over plain HTTP.
type Google struct {
	cfg    GoogleConfig
	client *http.Client
	tokens TokenStore
	logger *slog.Logger
}

func NewGoogle(cfg GoogleConfig, tokens TokenStore, logger *slog.Logger) *Google {
	if cfg.TokenEndpoint == "" {
		cfg.TokenEndpoint = defaultTokenEndpoint
	}
	if cfg.FreeBusyEndpoint == "" {
		cfg.FreeBusyEndpoint = defaultFreeBusyEndpoint
	}
	if cfg.EventsEndpoint == "" {
		cfg.EventsEndpoint = defaultEventsEndpoint
	}
	return &Google{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		tokens: tokens,
		logger: logger,
	}
}

type freeBusyRequest struct {
	TimeMin string             `json:"timeMin"`
	TimeMax string             `json:"timeMax"`
	Items   []freeBusyCalendar `json:"items"`
}

type freeBusyCalendar struct {
	ID string `json:"id"`
}

type freeBusyResponse struct {
	Calendars map[string]struct {
		Busy []struct {
			Start time.Time `json:"start"`
			End   time.Time `json:"end"`
		} `json:"busy"`
	} `json:"calendars"`
}

func (g *Google) FreeBusy(ctx context.Context, host model.Host, start, end time.Time) ([]availability.Interval, error) {
	token, err := g.freshAccessToken(ctx, host)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(freeBusyRequest{
		TimeMin: start.Format(time.RFC3339),
		TimeMax: end.Format(time.RFC3339),
		Items:   []freeBusyCalendar{{ID: "primary"}},
	})
	if err != nil {
		return nil, err
	}

	respBody, err := g.do(ctx, http.MethodPost, g.cfg.FreeBusyEndpoint, token, body)
	if err != nil {
		return nil, fmt.Errorf("freebusy query: %w", err)
	}

	var parsed freeBusyResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode freebusy response: %w", err)
	}

	var busy []availability.Interval
	for _, cal := range parsed.Calendars {
		for _, b := range cal.Busy {
			busy = append(busy, availability.Interval{Start: b.Start, End: b.End})
		}
	}
	return busy, nil
}

type calendarEvent struct {
	Summary     string        `json:"summary"`
	Description string        `json:"description,omitempty"`
	Start       eventDateTime `json:"start"`
	End         eventDateTime `json:"end"`
	Attendees   []attendee    `json:"attendees,omitempty"`
}

type eventDateTime struct {
	DateTime string `json:"dateTime"`
}

type attendee struct {
	Email string `json:"email"`
}

func (g *Google) CreateEvent(ctx context.Context, host model.Host, b model.Booking, title string) (string, error) {
	token, err := g.freshAccessToken(ctx, host)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(calendarEvent{
		Summary:     b.CustomerName + " and " + host.Name,
		Description: "Event type: " + title + "\n\n" + b.Notes,
		Start:       eventDateTime{DateTime: b.StartAt.Format(time.RFC3339)},
		End:         eventDateTime{DateTime: b.EndAt.Format(time.RFC3339)},
		Attendees:   []attendee{{Email: b.CustomerEmail}},
	})
	if err != nil {
		return "", err
	}

	respBody, err := g.do(ctx, http.MethodPost, g.cfg.EventsEndpoint+"?sendUpdates=all", token, body)
	if err != nil {
		return "", fmt.Errorf("create calendar event: %w", err)
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(respBody, &created); err != nil {
		return "", fmt.Errorf("decode event response: %w", err)
	}
	return created.ID, nil
}

func (g *Google) DeleteEvent(ctx context.Context, host model.Host, eventID string) error {
	token, err := g.freshAccessToken(ctx, host)
	if err != nil {
		return err
	}
	_, err = g.do(ctx, http.MethodDelete, g.cfg.EventsEndpoint+"/"+url.PathEscape(eventID)+"?sendUpdates=all", token, nil)
	if err != nil {
		return fmt.Errorf("delete calendar event: %w", err)
	}
	return nil
}

// freshAccessToken returns a usable access token, exchanging the refresh
// token when the stored one is expired or about to expire.
func (g *Google) freshAccessToken(ctx context.Context, host model.Host) (string, error) {
	if host.GoogleAccessToken != "" && time.Until(host.GoogleTokenExpiresAt) > tokenFreshness {
		return host.GoogleAccessToken, nil
	}
	if host.GoogleRefreshToken == "" {
		return "", fmt.Errorf("host %s has no calendar credentials", host.ID)
	}

	form := url.Values{
		"client_id":     {g.cfg.ClientID},
		"client_secret": {g.cfg.ClientSecret},
		"refresh_token": {host.GoogleRefreshToken},
		"grant_type":    {"refresh_token"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.TokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token refresh: %w", err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token refresh: status %d: %s", resp.StatusCode, respBody)
	}

	var token struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(respBody, &token); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	expiresAt := time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	if err := g.tokens.UpdateGoogleTokens(ctx, host.ID, token.AccessToken, expiresAt); err != nil {
		g.logger.Warn("persist refreshed token failed", "host", host.ID, "err", err)
	}
	return token.AccessToken, nil
}

func (g *Google) do(ctx context.Context, method, endpoint, token string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, respBody)
	}
	return respBody, nil
}
