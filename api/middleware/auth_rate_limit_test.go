package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gymdeskhq/gymdesk-backend/pkg/config"
)

type stubRateLimiter struct {
	counts map[string]int64
}

func newStubRateLimiter() *stubRateLimiter {
	return &stubRateLimiter{counts: map[string]int64{}}
}

func (s *stubRateLimiter) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	s.counts[key]++
	return s.counts[key], nil
}

func (s *stubRateLimiter) RateLimitKey(scope string) string {
	return "rl:" + scope
}

func loginRequest(email, ip string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"`+email+`","password":"secret"}`))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = ip + ":51234"
	return req
}

func TestAuthRateLimitAllowsUnderLimit(t *testing.T) {
	store := newStubRateLimiter()
	cfg := config.AuthRateLimitConfig{LoginWindow: time.Minute, LoginEmailLimit: 5, LoginIPLimit: 20}

	var bodySeen string
	handler := AuthRateLimit(store, cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 256)
		n, _ := r.Body.Read(buf)
		bodySeen = string(buf[:n])
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("ana@example.com", "10.0.0.1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(bodySeen, "ana@example.com") {
		t.Fatalf("body was not preserved for the handler: %q", bodySeen)
	}
}

func TestAuthRateLimitBlocksEmailAbuse(t *testing.T) {
	store := newStubRateLimiter()
	cfg := config.AuthRateLimitConfig{LoginWindow: time.Minute, LoginEmailLimit: 2, LoginIPLimit: 100}

	handler := AuthRateLimit(store, cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Same email from rotating IPs still trips the email counter.
	for i, ip := range []string{"10.0.0.1", "10.0.0.2"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, loginRequest("ana@example.com", ip))
		if rec.Code != http.StatusOK {
			t.Fatalf("attempt %d: expected 200, got %d", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("ana@example.com", "10.0.0.9"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestAuthRateLimitBlocksIPAbuse(t *testing.T) {
	store := newStubRateLimiter()
	cfg := config.AuthRateLimitConfig{LoginWindow: time.Minute, LoginEmailLimit: 100, LoginIPLimit: 3}

	handler := AuthRateLimit(store, cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	emails := []string{"a@example.com", "b@example.com", "c@example.com", "d@example.com"}
	var last int
	for _, email := range emails {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, loginRequest(email, "10.0.0.1"))
		last = rec.Code
	}

	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on fourth attempt, got %d", last)
	}
}

func TestAuthRateLimitUsesForwardedFor(t *testing.T) {
	req := loginRequest("x@example.com", "10.0.0.1")
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	if got := clientIP(req); got != "203.0.113.7" {
		t.Fatalf("expected forwarded ip, got %s", got)
	}
}
