package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiter_BlocksAfterLimit(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/appointments", nil)
		req.RemoteAddr = "10.0.0.1:4321"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		statuses = append(statuses, rec.Code)
	}

	if statuses[0] != http.StatusOK || statuses[1] != http.StatusOK {
		t.Fatalf("first two requests should pass, got %v", statuses)
	}
	if statuses[2] != http.StatusTooManyRequests {
		t.Fatalf("third request should be limited, got %v", statuses)
	}
}

func TestRateLimiter_SeparateClients(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	if !rl.allow("10.0.0.1") || !rl.allow("10.0.0.2") {
		t.Fatal("distinct clients must not share a window")
	}
	if rl.allow("10.0.0.1") {
		t.Fatal("second request from the same client should be limited")
	}
}
