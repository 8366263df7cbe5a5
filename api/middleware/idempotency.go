package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	redislib "github.com/redis/go-redis/v9"

	"github.com/gymdeskhq/gymdesk-backend/api/responses"
	pkgerrors "github.com/gymdeskhq/gymdesk-backend/pkg/errors"
	"github.com/gymdeskhq/gymdesk-backend/pkg/logger"
	pkgredis "github.com/gymdeskhq/gymdesk-backend/pkg/redis"
)

const (
	idempotencyHeader = "Idempotency-Key"
	idempotencyTTL    = 24 * time.Hour
)

type matchKind int

const (
	matchExact matchKind = iota
	matchPrefix
	matchPrefixSuffix
)

type idempotencyRule struct {
	method  string
	kind    matchKind
	pattern string
	suffix  string
}

// Mutating money and registration routes replay stored responses when the
// same Idempotency-Key arrives twice.
var idempotencyRules = []idempotencyRule{
	{method: http.MethodPost, kind: matchPrefixSuffix, pattern: "/api/v1/clients/", suffix: "/memberships"},
	{method: http.MethodPost, kind: matchPrefixSuffix, pattern: "/api/v1/memberships/", suffix: "/renewals"},
	{method: http.MethodPost, kind: matchExact, pattern: "/api/v1/payments"},
	{method: http.MethodPost, kind: matchPrefixSuffix, pattern: "/api/v1/clients/", suffix: "/attachments"},
}

type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        string `json:"body"`
	RequestHash string `json:"request_hash"`
}

type responseCapture struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (rc *responseCapture) WriteHeader(status int) {
	rc.status = status
	rc.ResponseWriter.WriteHeader(status)
}

func (rc *responseCapture) Write(b []byte) (int, error) {
	rc.body.Write(b)
	return rc.ResponseWriter.Write(b)
}

// Idempotency replays stored responses for repeated mutating requests that
// carry the same Idempotency-Key, and rejects key reuse across different
// payloads.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if store == nil || !ruleApplies(r) {
				next.ServeHTTP(w, r)
				return
			}

			key := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()

			body, err := io.ReadAll(io.LimitReader(r.Body, 4<<20))
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "failed to read request body"))
				return
			}
			r.Body.Close()
			r.Body = io.NopCloser(bytes.NewReader(body))

			requestHash := hashRequest(r.Method, routePattern(r), body)
			storeKey := store.IdempotencyKey(routeScope(r), key)

			if raw, err := store.Get(ctx, storeKey); err == nil && raw != "" {
				replayStored(ctx, logg, w, raw, requestHash)
				return
			} else if err != nil && err != redislib.Nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "idempotency lookup failed"))
				return
			}

			capture := &responseCapture{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(capture, r)

			// Only successful outcomes are worth replaying.
			if capture.status < 200 || capture.status >= 300 {
				return
			}

			record := storedResponse{
				Status:      capture.status,
				ContentType: capture.Header().Get("Content-Type"),
				Body:        base64.StdEncoding.EncodeToString(capture.body.Bytes()),
				RequestHash: requestHash,
			}
			encoded, err := json.Marshal(record)
			if err != nil {
				return
			}
			if _, err := store.SetNX(ctx, storeKey, string(encoded), idempotencyTTL); err != nil && logg != nil {
				logg.Warn(ctx, "failed to store idempotency record")
			}
		})
	}
}

func replayStored(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, raw, requestHash string) {
	var record storedResponse
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "corrupt idempotency record"))
		return
	}
	if record.RequestHash != requestHash {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with a different request"))
		return
	}

	body, err := base64.StdEncoding.DecodeString(record.Body)
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "corrupt idempotency record"))
		return
	}
	if record.ContentType != "" {
		w.Header().Set("Content-Type", record.ContentType)
	}
	w.WriteHeader(record.Status)
	w.Write(body)
}

func ruleApplies(r *http.Request) bool {
	path := r.URL.Path
	for _, rule := range idempotencyRules {
		if rule.method != r.Method {
			continue
		}
		switch rule.kind {
		case matchExact:
			if path == rule.pattern {
				return true
			}
		case matchPrefix:
			if strings.HasPrefix(path, rule.pattern) {
				return true
			}
		case matchPrefixSuffix:
			if strings.HasPrefix(path, rule.pattern) && strings.HasSuffix(path, rule.suffix) {
				return true
			}
		}
	}
	return false
}

func routeScope(r *http.Request) string {
	return strings.ToLower(r.Method) + ":" + routePattern(r)
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

func hashRequest(method, route string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write([]byte(route))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
