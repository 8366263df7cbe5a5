package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/gymdeskhq/gymdesk-backend/api/responses"
	"github.com/gymdeskhq/gymdesk-backend/api/validators"
	"github.com/gymdeskhq/gymdesk-backend/internal/clients"
	"github.com/gymdeskhq/gymdesk-backend/pkg/logger"
	"github.com/gymdeskhq/gymdesk-backend/pkg/pagination"
)

type attachmentPurger interface {
	PurgeClient(ctx context.Context, clientID uuid.UUID) error
}

// ClientsController manages the gym's client records.
type ClientsController struct {
	svc         clients.Service
	attachments attachmentPurger
	logg        *logger.Logger
}

func NewClientsController(svc clients.Service, attachments attachmentPurger, logg *logger.Logger) *ClientsController {
	return &ClientsController{svc: svc, attachments: attachments, logg: logg}
}

func (c *ClientsController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var input clients.CreateClientInput
	if err := validators.DecodeJSONBody(r, &input); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	client, err := c.svc.Create(ctx, input)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, client)
}

func (c *ClientsController) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuidParam(r, "clientID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	client, err := c.svc.Get(ctx, id)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, client)
}

func (c *ClientsController) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuidParam(r, "clientID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	var input clients.UpdateClientInput
	if err := validators.DecodeJSONBody(r, &input); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	client, err := c.svc.Update(ctx, id, input)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, client)
}

func (c *ClientsController) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuidParam(r, "clientID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	// Stored files go first so a half-failed delete leaves the client
	// record intact and retryable.
	if c.attachments != nil {
		if err := c.attachments.PurgeClient(ctx, id); err != nil {
			responses.WriteError(ctx, c.logg, w, err)
			return
		}
	}

	if err := c.svc.Delete(ctx, id); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, map[string]string{"status": "deleted"})
}

func (c *ClientsController) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	page, err := c.svc.List(ctx, pagination.Params{
		Limit:  limit,
		Cursor: r.URL.Query().Get("cursor"),
	})
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, map[string]any{
		"items":       page.Items,
		"next_cursor": page.NextCursor,
	})
}

func (c *ClientsController) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := validators.SanitizeString(r.URL.Query().Get("q"), 120)
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	results, err := c.svc.Search(ctx, query, limit)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, results)
}
