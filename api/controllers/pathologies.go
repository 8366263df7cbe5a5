package controllers

import (
	"net/http"

	"github.com/gymdeskhq/gymdesk-backend/api/responses"
	"github.com/gymdeskhq/gymdesk-backend/api/validators"
	"github.com/gymdeskhq/gymdesk-backend/internal/pathologies"
	"github.com/gymdeskhq/gymdesk-backend/pkg/logger"
)

// PathologiesController manages the pathology catalog and per-client records.
type PathologiesController struct {
	svc  pathologies.Service
	logg *logger.Logger
}

func NewPathologiesController(svc pathologies.Service, logg *logger.Logger) *PathologiesController {
	return &PathologiesController{svc: svc, logg: logg}
}

func (c *PathologiesController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var input pathologies.CreatePathologyInput
	if err := validators.DecodeJSONBody(r, &input); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	pathology, err := c.svc.Create(ctx, input)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, pathology)
}

func (c *PathologiesController) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuidParam(r, "pathologyID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	pathology, err := c.svc.Get(ctx, id)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, pathology)
}

func (c *PathologiesController) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuidParam(r, "pathologyID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	var input pathologies.CreatePathologyInput
	if err := validators.DecodeJSONBody(r, &input); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	pathology, err := c.svc.Update(ctx, id, input)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, pathology)
}

func (c *PathologiesController) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuidParam(r, "pathologyID")
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

func (c *PathologiesController) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	items, err := c.svc.List(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, items)
}

func (c *PathologiesController) Attach(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	clientID, err := uuidParam(r, "clientID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	var input pathologies.AttachInput
	if err := validators.DecodeJSONBody(r, &input); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	record, err := c.svc.Attach(ctx, clientID, input)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, record)
}

func (c *PathologiesController) Detach(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	clientID, err := uuidParam(r, "clientID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	pathologyID, err := uuidParam(r, "pathologyID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	if err := c.svc.Detach(ctx, clientID, pathologyID); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, map[string]string{"status": "detached"})
}

func (c *PathologiesController) ListByClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	clientID, err := uuidParam(r, "clientID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	items, err := c.svc.ListByClient(ctx, clientID)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, items)
}
