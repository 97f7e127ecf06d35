// Package handlers implements the HTTP API surface. External collaborators
// enter through narrow interfaces so tests can run without cloud access.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/autocarehq/autocare/internal/apperr"
	"github.com/autocarehq/autocare/internal/httpx"
	"github.com/autocarehq/autocare/internal/identity"
	"github.com/autocarehq/autocare/internal/model"
)

// IdentityService is the identity-provider surface the handlers need.
type IdentityService interface {
	SignUp(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) (string, error)
	Resolve(ctx context.Context, accessToken string) (identity.User, error)
	SignOut(ctx context.Context, accessToken string) error
}

// AppointmentStore is the document-store surface the handlers need.
type AppointmentStore interface {
	Create(ctx context.Context, appt *model.Appointment) error
	ListByOwner(ctx context.Context, email string) ([]model.Appointment, error)
	SlotTaken(ctx context.Context, date, slot string) (bool, error)
}

// UploadIssuer hands out pre-signed upload URLs.
type UploadIssuer interface {
	IssueUploadURL(ctx context.Context, fileName, contentType string) (uploadURL, publicURL string, err error)
}

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err through the taxonomy. Clients get the safe message;
// the raw chain goes to the log, keyed by request id.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			"request_id", httpx.RequestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"err", err,
		)
	} else {
		logger.Debug("request rejected",
			"request_id", httpx.RequestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"err", err,
		)
	}
	writeJSON(w, status, errorResponse{Error: apperr.Message(err)})
}

// decodeJSON decodes the body into v, answering 400 itself on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		badRequest(w, "Invalid JSON body")
		return false
	}
	return true
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: message})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}
