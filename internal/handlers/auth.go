package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/autocarehq/autocare/internal/identity"
)

const minPasswordLength = 8

type AuthHandler struct {
	ids    IdentityService
	logger *slog.Logger
}

func NewAuthHandler(ids IdentityService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{ids: ids, logger: logger}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string    `json:"token"`
	User  loginUser `json:"user"`
}

type loginUser struct {
	Email string `json:"email"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}
	// Local gate before the provider round-trip; the pool policy enforces
	// the rest (upper/lower/number/symbol).
	if len(req.Password) < minPasswordLength {
		badRequest(w, "Password must be at least 8 characters long")
		return
	}

	if err := h.ids.SignUp(r.Context(), req.Email, req.Password); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, messageResponse{Message: "User registered and confirmed successfully"})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	token, err := h.ids.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		Token: token,
		User:  loginUser{Email: req.Email},
	})
}

// Logout invalidates the caller's sessions at the provider. Auth-gated, so
// the token has already resolved.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request, _ identity.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	if err := h.ids.SignOut(r.Context(), BearerToken(r)); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return credentialsRequest{}, false
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		badRequest(w, "Email is required")
		return credentialsRequest{}, false
	}
	if req.Password == "" {
		badRequest(w, "Password is required")
		return credentialsRequest{}, false
	}
	return req, true
}
