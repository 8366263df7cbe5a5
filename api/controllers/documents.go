package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/gymdeskhq/gymdesk-backend/api/responses"
	"github.com/gymdeskhq/gymdesk-backend/api/validators"
	"github.com/gymdeskhq/gymdesk-backend/internal/documents"
	"github.com/gymdeskhq/gymdesk-backend/pkg/logger"
)

// DocumentsController manages document templates and rendering.
type DocumentsController struct {
	svc  documents.Service
	logg *logger.Logger
}

func NewDocumentsController(svc documents.Service, logg *logger.Logger) *DocumentsController {
	return &DocumentsController{svc: svc, logg: logg}
}

func (c *DocumentsController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var input documents.TemplateInput
	if err := validators.DecodeJSONBody(r, &input); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	template, err := c.svc.Create(ctx, input)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, template)
}

func (c *DocumentsController) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuidParam(r, "templateID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	template, err := c.svc.Get(ctx, id)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, template)
}

func (c *DocumentsController) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuidParam(r, "templateID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	var input documents.TemplateInput
	if err := validators.DecodeJSONBody(r, &input); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	template, err := c.svc.Update(ctx, id, input)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, template)
}

func (c *DocumentsController) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuidParam(r, "templateID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	if err := c.svc.Delete(ctx, id); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, map[string]string{"status": "deleted"})
}

func (c *DocumentsController) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	items, err := c.svc.List(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, items)
}

type renderRequest struct {
	ClientID uuid.UUID `json:"client_id" validate:"required"`
}

// Render fills a template with one client's data.
func (c *DocumentsController) Render(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	templateID, err := uuidParam(r, "templateID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	var req renderRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	rendered, err := c.svc.Render(ctx, templateID, req.ClientID)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, rendered)
}
