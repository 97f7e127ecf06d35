package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/autocarehq/autocare/internal/apperr"
	"github.com/autocarehq/autocare/internal/identity"
)

type fakeIdentity struct {
	signUpErr  error
	loginToken string
	loginErr   error
	resolved   identity.User
	resolveErr error
	signedOut  bool
}

func (f *fakeIdentity) SignUp(context.Context, string, string) error { return f.signUpErr }

func (f *fakeIdentity) Login(context.Context, string, string) (string, error) {
	return f.loginToken, f.loginErr
}

func (f *fakeIdentity) Resolve(context.Context, string) (identity.User, error) {
	return f.resolved, f.resolveErr
}

func (f *fakeIdentity) SignOut(context.Context, string) error {
	f.signedOut = true
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error
}

func TestSignup_ShortPassword(t *testing.T) {
	h := NewAuthHandler(&fakeIdentity{}, testLogger())
	rec := postJSON(t, h.Signup, `{"email":"a@b.com","password":"short"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := decodeError(t, rec); got != "Password must be at least 8 characters long" {
		t.Fatalf("unexpected error %q", got)
	}
}

func TestSignup_MissingFields(t *testing.T) {
	h := NewAuthHandler(&fakeIdentity{}, testLogger())
	rec := postJSON(t, h.Signup, `{"password":"longenough1!"}`)
	if rec.Code != http.StatusBadRequest || decodeError(t, rec) != "Email is required" {
		t.Fatalf("expected missing-email rejection, got %d", rec.Code)
	}
	rec = postJSON(t, h.Signup, `{"email":"a@b.com"}`)
	if rec.Code != http.StatusBadRequest || decodeError(t, rec) != "Password is required" {
		t.Fatalf("expected missing-password rejection, got %d", rec.Code)
	}
}

func TestSignup_Success(t *testing.T) {
	h := NewAuthHandler(&fakeIdentity{}, testLogger())
	rec := postJSON(t, h.Signup, `{"email":"a@b.com","password":"Sup3rSecret!"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSignup_ProviderErrorIsClassified(t *testing.T) {
	h := NewAuthHandler(&fakeIdentity{
		signUpErr: apperr.New(apperr.Invalid, "User already exists"),
	}, testLogger())
	rec := postJSON(t, h.Signup, `{"email":"a@b.com","password":"Sup3rSecret!"}`)
	if rec.Code != http.StatusBadRequest || decodeError(t, rec) != "User already exists" {
		t.Fatalf("expected 400 user-exists, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestLogin_StatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{apperr.New(apperr.NotFound, "User not found. Please sign up first."), http.StatusNotFound},
		{apperr.New(apperr.Unauthenticated, "Incorrect username or password"), http.StatusUnauthorized},
		{apperr.New(apperr.Forbidden, "Please verify your email before logging in"), http.StatusForbidden},
	}
	for _, tc := range cases {
		h := NewAuthHandler(&fakeIdentity{loginErr: tc.err}, testLogger())
		rec := postJSON(t, h.Login, `{"email":"a@b.com","password":"whatever1"}`)
		if rec.Code != tc.status {
			t.Fatalf("error %v: expected %d, got %d", tc.err, tc.status, rec.Code)
		}
	}
}

func TestLogin_Success(t *testing.T) {
	h := NewAuthHandler(&fakeIdentity{loginToken: "access-token"}, testLogger())
	rec := postJSON(t, h.Login, `{"email":"a@b.com","password":"Sup3rSecret!"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body loginResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Token != "access-token" || body.User.Email != "a@b.com" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestRequireAuth(t *testing.T) {
	ids := &fakeIdentity{resolved: identity.User{Email: "a@b.com"}}
	var seen identity.User
	gate := RequireAuth(ids, testLogger(), func(w http.ResponseWriter, _ *http.Request, user identity.User) {
		seen = user
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/appointments", nil)
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no header: expected 401, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/appointments", nil)
	req.Header.Set("Authorization", "Bearer token-123")
	rec = httptest.NewRecorder()
	gate.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || seen.Email != "a@b.com" {
		t.Fatalf("expected resolved identity to reach the handler, got %d / %+v", rec.Code, seen)
	}

	ids.resolveErr = apperr.New(apperr.Unauthenticated, "Invalid token")
	req = httptest.NewRequest(http.MethodGet, "/api/appointments", nil)
	req.Header.Set("Authorization", "expired")
	rec = httptest.NewRecorder()
	gate.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized || decodeError(t, rec) != "Invalid token" {
		t.Fatalf("bad token: expected 401 Invalid token, got %d", rec.Code)
	}
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc")
	if got := BearerToken(req); got != "abc" {
		t.Fatalf("expected stripped token, got %q", got)
	}
	// The original frontend sends the raw token with no scheme.
	req.Header.Set("Authorization", "rawtoken")
	if got := BearerToken(req); got != "rawtoken" {
		t.Fatalf("expected raw token, got %q", got)
	}
}
