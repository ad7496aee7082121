package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func fixedClock(t *time.Time) func() time.Time {
	return func() time.Time { return *t }
}

func TestAllowWindow(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	l := NewLimiter(Config{RequestsPerMinute: 2})
	defer l.Stop()
	l.now = fixedClock(&now)

	for i, want := range []bool{true, true, false, false} {
		if got := l.Allow("a"); got != want {
			t.Fatalf("request %d: Allow = %v, want %v", i, got, want)
		}
	}
	if !l.Allow("b") {
		t.Fatal("other clients have their own window")
	}

	now = now.Add(time.Minute)
	if !l.Allow("a") {
		t.Fatal("a new window should admit the client again")
	}
}

func TestForgetIdle(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	l := NewLimiter(Config{RequestsPerMinute: 5})
	defer l.Stop()
	l.now = fixedClock(&now)

	l.Allow("old")
	now = now.Add(11 * time.Minute)
	l.Allow("fresh")
	l.forgetIdle()

	if got := l.ActiveClients(); got != 1 {
		t.Fatalf("ActiveClients = %d, want 1", got)
	}
}

func TestMiddleware(t *testing.T) {
	l := NewLimiter(Config{RequestsPerMinute: 1})
	defer l.Stop()

	limited := 0
	h := l.Middleware(
		func(*http.Request) string { return "client" },
		func(*http.Request) { limited++ },
	)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/charts", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("first request status=%d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/charts", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status=%d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q", rec.Header().Get("Retry-After"))
	}
	if limited != 1 {
		t.Errorf("onLimit called %d times", limited)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	l := NewLimiter(Config{RequestsPerMinute: 1, CleanupInterval: time.Millisecond})
	l.Stop()
	l.Stop()
}
