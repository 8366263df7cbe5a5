package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gymdeskhq/gymdesk-backend/internal/clients"
	"github.com/gymdeskhq/gymdesk-backend/pkg/db/models"
	pkgerrors "github.com/gymdeskhq/gymdesk-backend/pkg/errors"
	"github.com/gymdeskhq/gymdesk-backend/pkg/pagination"
)

type stubClientsService struct {
	created    *clients.CreateClientInput
	deleted    []uuid.UUID
	listParams *pagination.Params
	searchQ    string
	err        error
}

func (s *stubClientsService) Create(ctx context.Context, input clients.CreateClientInput) (*models.Client, error) {
	s.created = &input
	if s.err != nil {
		return nil, s.err
	}
	return &models.Client{ID: uuid.New(), FirstName: input.FirstName, LastName: input.LastName}, nil
}

func (s *stubClientsService) Get(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Client{ID: id}, nil
}

func (s *stubClientsService) Update(ctx context.Context, id uuid.UUID, input clients.UpdateClientInput) (*models.Client, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Client{ID: id}, nil
}

func (s *stubClientsService) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	return s.err
}

func (s *stubClientsService) List(ctx context.Context, params pagination.Params) (*clients.ClientList, error) {
	s.listParams = &params
	if s.err != nil {
		return nil, s.err
	}
	return &clients.ClientList{Items: []models.Client{{ID: uuid.New()}}, NextCursor: "next"}, nil
}

func (s *stubClientsService) Search(ctx context.Context, query string, limit int) ([]models.Client, error) {
	s.searchQ = query
	return []models.Client{}, s.err
}

type stubPurger struct {
	purged []uuid.UUID
	err    error
}

func (s *stubPurger) PurgeClient(ctx context.Context, clientID uuid.UUID) error {
	s.purged = append(s.purged, clientID)
	return s.err
}

func clientRoute(req *http.Request, id uuid.UUID) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("clientID", id.String())
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestCreateClientRejectsUnknownFields(t *testing.T) {
	svc := &stubClientsService{}
	controller := NewClientsController(svc, nil, nil)

	body := `{"first_name":"Ana","last_name":"Gomez","identification":"V-123","favorite_color":"red"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/clients", strings.NewReader(body))
	rec := httptest.NewRecorder()
	controller.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.created != nil {
		t.Fatal("service should not have been called")
	}
}

func TestCreateClientHappyPath(t *testing.T) {
	svc := &stubClientsService{}
	controller := NewClientsController(svc, nil, nil)

	body := `{"first_name":"Ana","last_name":"Gomez","identification":"V-123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/clients", strings.NewReader(body))
	rec := httptest.NewRecorder()
	controller.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.created == nil || svc.created.FirstName != "Ana" {
		t.Fatalf("unexpected decoded input: %+v", svc.created)
	}
}

func TestDeleteClientPurgesAttachmentsFirst(t *testing.T) {
	svc := &stubClientsService{}
	purger := &stubPurger{}
	controller := NewClientsController(svc, purger, nil)

	id := uuid.New()
	req := clientRoute(httptest.NewRequest(http.MethodDelete, "/api/v1/clients/"+id.String(), nil), id)
	rec := httptest.NewRecorder()
	controller.Delete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(purger.purged) != 1 || purger.purged[0] != id {
		t.Fatalf("expected purge for %s, got %v", id, purger.purged)
	}
	if len(svc.deleted) != 1 {
		t.Fatal("client row was not deleted")
	}
}

func TestDeleteClientKeepsRowWhenPurgeFails(t *testing.T) {
	svc := &stubClientsService{}
	purger := &stubPurger{err: pkgerrors.New(pkgerrors.CodeDependency, "storage unavailable")}
	controller := NewClientsController(svc, purger, nil)

	id := uuid.New()
	req := clientRoute(httptest.NewRequest(http.MethodDelete, "/api/v1/clients/"+id.String(), nil), id)
	rec := httptest.NewRecorder()
	controller.Delete(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if len(svc.deleted) != 0 {
		t.Fatal("client row should not have been deleted")
	}
}

func TestListClientsPassesPagination(t *testing.T) {
	svc := &stubClientsService{}
	controller := NewClientsController(svc, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients?limit=10&cursor=abc", nil)
	rec := httptest.NewRecorder()
	controller.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.listParams == nil || svc.listParams.Limit != 10 || svc.listParams.Cursor != "abc" {
		t.Fatalf("unexpected params: %+v", svc.listParams)
	}

	var envelope struct {
		Data struct {
			NextCursor string `json:"next_cursor"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if envelope.Data.NextCursor != "next" {
		t.Fatalf("expected next cursor in payload, got %q", envelope.Data.NextCursor)
	}
}

func TestListClientsRejectsBadLimit(t *testing.T) {
	controller := NewClientsController(&stubClientsService{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients?limit=ten", nil)
	rec := httptest.NewRecorder()
	controller.List(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
