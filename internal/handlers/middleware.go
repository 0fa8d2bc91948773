// Package handlers implements the HTTP API surface.
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openmeet/openmeet/libs/auth"
)

type hostIDKey struct{}

// RequireHost verifies the Bearer access token and stores the host ID
// in the request context.
func RequireHost(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			claims, err := auth.ParseAndVerifyHS256(token, secret, time.Now())
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}
			hostID, err := uuid.Parse(claims.Sub)
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), hostIDKey{}, hostID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// HostID returns the authenticated host's ID, or uuid.Nil outside
// RequireHost.
func HostID(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(hostIDKey{}).(uuid.UUID)
	return id
}
