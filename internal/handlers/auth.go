package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openmeet/openmeet/internal/storage"
	"github.com/openmeet/openmeet/libs/auth"
)

type AuthHandler struct {
	hosts       *storage.HostRepository
	refreshRepo *storage.RefreshRepository
	logger      *slog.Logger
	secret      []byte
	accessTTL   time.Duration
	refreshTTL  time.Duration
}

func NewAuthHandler(hosts *storage.HostRepository, refreshRepo *storage.RefreshRepository, logger *slog.Logger, secret []byte, accessTTL, refreshTTL time.Duration) *AuthHandler {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &AuthHandler{
		hosts:       hosts,
		refreshRepo: refreshRepo,
		logger:      logger,
		secret:      secret,
		accessTTL:   accessTTL,
		refreshTTL:  refreshTTL,
	}
}

type sessionRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type sessionResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Sessions signs a host in, creating the account on first login.
func (h *AuthHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		http.Error(w, "valid email required", http.StatusBadRequest)
		return
	}
	if req.Password == "" {
		http.Error(w, "password required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	host, err := h.hosts.GetByEmail(ctx, req.Email)
	switch {
	case err == nil:
		if !auth.CheckPassword(host.PasswordHash, req.Password) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
	case storage.IsNotFound(err):
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			http.Error(w, "failed to hash password", http.StatusInternalServerError)
			return
		}
		name := strings.TrimSpace(req.Name)
		if name == "" {
			name = localPart(req.Email)
		}
		host, err = h.hosts.Create(ctx, req.Email, hash, name, defaultSlug(req.Email), "UTC")
		if err != nil && storage.IsUniqueViolation(err) {
			// Slug collision on first login; retry with a random suffix.
			host, err = h.hosts.Create(ctx, req.Email, hash, name, defaultSlug(req.Email)+"-"+randomSuffix(), "UTC")
		}
		if err != nil {
			h.logger.Error("create host failed", "err", err)
			http.Error(w, "failed to create account", http.StatusInternalServerError)
			return
		}
	default:
		h.logger.Error("lookup host failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	h.issueTokens(w, r, host.ID.String(), host.Email)
}

// Refresh exchanges a refresh token for a new token pair. The used
// token is revoked so each refresh token works exactly once.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		http.Error(w, "refreshToken required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	token, err := h.refreshRepo.GetByToken(ctx, req.RefreshToken)
	if err != nil {
		http.Error(w, "invalid refresh token", http.StatusUnauthorized)
		return
	}
	if !token.Usable(time.Now()) {
		http.Error(w, "invalid refresh token", http.StatusUnauthorized)
		return
	}
	if err := h.refreshRepo.Revoke(ctx, token.ID); err != nil {
		h.logger.Error("revoke refresh token failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	host, err := h.hosts.GetByID(ctx, token.HostID)
	if err != nil {
		http.Error(w, "invalid refresh token", http.StatusUnauthorized)
		return
	}
	h.issueTokens(w, r, host.ID.String(), host.Email)
}

// Logout revokes the presented refresh token. Unknown tokens succeed so
// logout is idempotent.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		http.Error(w, "refreshToken required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	token, err := h.refreshRepo.GetByToken(ctx, req.RefreshToken)
	if err == nil {
		if err := h.refreshRepo.Revoke(ctx, token.ID); err != nil {
			h.logger.Error("revoke refresh token failed", "err", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) issueTokens(w http.ResponseWriter, r *http.Request, hostID, email string) {
	now := time.Now()
	access, err := auth.SignHS256(auth.Claims{
		Sub:   hostID,
		Email: email,
		Iat:   now.Unix(),
		Exp:   now.Add(h.accessTTL).Unix(),
	}, h.secret)
	if err != nil {
		http.Error(w, "failed to sign token", http.StatusInternalServerError)
		return
	}

	refresh, err := auth.NewRefreshToken()
	if err != nil {
		http.Error(w, "failed to create refresh token", http.StatusInternalServerError)
		return
	}
	hostUUID, err := parseUUID(hostID)
	if err != nil {
		http.Error(w, "invalid host id", http.StatusInternalServerError)
		return
	}
	if _, err := h.refreshRepo.Create(r.Context(), hostUUID, refresh, now.Add(h.refreshTTL)); err != nil {
		h.logger.Error("store refresh token failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(sessionResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
	})
}

func localPart(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}

func defaultSlug(email string) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, localPart(email))
	return strings.Trim(slug, "-")
}
