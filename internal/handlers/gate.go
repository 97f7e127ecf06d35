package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/autocarehq/autocare/internal/identity"
)

// AuthedHandler receives the identity resolved by the provider. It is the
// only source of the caller's email; nothing from the request body is
// trusted for ownership.
type AuthedHandler func(w http.ResponseWriter, r *http.Request, user identity.User)

// RequireAuth resolves the Authorization credential via the identity
// provider before invoking next. The credential is the opaque access token;
// a "Bearer " prefix is accepted and stripped.
func RequireAuth(ids IdentityService, logger *slog.Logger, next AuthedHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "No authorization header"})
			return
		}

		user, err := ids.Resolve(r.Context(), token)
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		next(w, r, user)
	})
}

// BearerToken extracts the credential from the Authorization header.
func BearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if after, ok := strings.CutPrefix(raw, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return raw
}
