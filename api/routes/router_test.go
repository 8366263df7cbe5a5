package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gymdeskhq/gymdesk-backend/api/controllers"
	"github.com/gymdeskhq/gymdesk-backend/pkg/auth"
	"github.com/gymdeskhq/gymdesk-backend/pkg/config"
	"github.com/gymdeskhq/gymdesk-backend/pkg/enums"
	"github.com/gymdeskhq/gymdesk-backend/pkg/metrics"
)

type openSessions struct{}

func (openSessions) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

func testRouter() http.Handler {
	cfg := &config.Config{}
	cfg.App.CORSOrigins = []string{"http://localhost:3000"}
	cfg.JWT = config.JWTConfig{Secret: "test-secret", Issuer: "gymdesk-test", ExpirationMinutes: 15}

	return New(Deps{
		Cfg:      cfg,
		Metrics:  metrics.NewHTTPMetrics(nil),
		Sessions: openSessions{},

		Health:      controllers.NewHealthController(nil, nil, nil),
		Auth:        controllers.NewAuthController(nil, nil),
		Clients:     controllers.NewClientsController(nil, nil, nil),
		Plans:       controllers.NewPlansController(nil, nil),
		Memberships: controllers.NewMembershipsController(nil, nil),
		Payments:    controllers.NewPaymentsController(nil, nil),
		Pathologies: controllers.NewPathologiesController(nil, nil),
		Documents:   controllers.NewDocumentsController(nil, nil),
		Attachments: controllers.NewAttachmentsController(nil, nil),
	})
}

func TestLivenessIsPublic(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected request id header")
	}
}

func TestMetricsEndpointIsMounted(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/clients"},
		{http.MethodPost, "/api/v1/clients/" + uuid.NewString() + "/memberships"},
		{http.MethodGet, "/api/v1/plans"},
		{http.MethodPost, "/api/v1/payments"},
	}

	router := testRouter()
	for _, tc := range paths {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestReceptionistCannotDeleteClients(t *testing.T) {
	cfg := config.JWTConfig{Secret: "test-secret", Issuer: "gymdesk-test", ExpirationMinutes: 15}
	token, err := auth.MintAccessToken(cfg, time.Now(), auth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleReceptionist,
	})
	if err != nil {
		t.Fatalf("minting token: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/clients/"+uuid.NewString(), nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/clients", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("expected allowed origin echoed back, got %q", got)
	}
}
