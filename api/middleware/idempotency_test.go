package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type stubIdempotencyStore struct {
	values map[string]string
}

func newStubIdempotencyStore() *stubIdempotencyStore {
	return &stubIdempotencyStore{values: map[string]string{}}
}

func (s *stubIdempotencyStore) Get(ctx context.Context, key string) (string, error) {
	value, ok := s.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return value, nil
}

func (s *stubIdempotencyStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, exists := s.values[key]; exists {
		return false, nil
	}
	s.values[key] = value.(string)
	return true, nil
}

func (s *stubIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "idem:" + scope + ":" + id
}

func (s *stubIdempotencyStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newStubIdempotencyStore()
	var invocations int32

	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&invocations, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":"pay-1"}}`))
	}))

	body := `{"amount":"100.00"}`

	first := httptest.NewRecorder()
	req1 := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(body))
	req1.Header.Set(idempotencyHeader, "key-123")
	handler.ServeHTTP(first, req1)

	second := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(body))
	req2.Header.Set(idempotencyHeader, "key-123")
	handler.ServeHTTP(second, req2)

	if invocations != 1 {
		t.Fatalf("expected handler to run once, ran %d times", invocations)
	}
	if second.Code != http.StatusCreated {
		t.Fatalf("expected replayed 201, got %d", second.Code)
	}
	if second.Body.String() != first.Body.String() {
		t.Fatalf("replayed body differs: %q vs %q", second.Body.String(), first.Body.String())
	}
}

func TestIdempotencyRejectsKeyReuseWithDifferentBody(t *testing.T) {
	store := newStubIdempotencyStore()

	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{}}`))
	}))

	req1 := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(`{"amount":"100.00"}`))
	req1.Header.Set(idempotencyHeader, "key-123")
	handler.ServeHTTP(httptest.NewRecorder(), req1)

	rec := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(`{"amount":"999.00"}`))
	req2.Header.Set(idempotencyHeader, "key-123")
	handler.ServeHTTP(rec, req2)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "IDEMPOTENCY_KEY_REUSED") {
		t.Fatalf("expected idempotency error code, got %s", rec.Body.String())
	}
}

func TestIdempotencySkipsErrorResponses(t *testing.T) {
	store := newStubIdempotencyStore()
	var invocations int32

	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&invocations, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(`{}`))
		req.Header.Set(idempotencyHeader, "key-err")
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	// Failures are not replayed; the client may retry.
	if invocations != 2 {
		t.Fatalf("expected handler to run twice, ran %d times", invocations)
	}
}

func TestIdempotencyIgnoresUnmatchedRoutes(t *testing.T) {
	store := newStubIdempotencyStore()
	var invocations int32

	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&invocations, 1)
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
		req.Header.Set(idempotencyHeader, "key-get")
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	if invocations != 2 {
		t.Fatalf("expected handler to run twice, ran %d times", invocations)
	}
	if len(store.values) != 0 {
		t.Fatalf("expected nothing stored, got %d entries", len(store.values))
	}
}

func TestIdempotencyMatchesMoneyRoutes(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/memberships/3c6f/renewals", nil)
	if !ruleApplies(req) {
		t.Fatal("renewal route should be idempotency-guarded")
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/clients/3c6f/memberships", nil)
	if !ruleApplies(req) {
		t.Fatal("registration route should be idempotency-guarded")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/memberships/3c6f", nil)
	if ruleApplies(req) {
		t.Fatal("read route should not be idempotency-guarded")
	}
}
