package controllers

import (
	"net/http"

	"github.com/gymdeskhq/gymdesk-backend/api/responses"
	"github.com/gymdeskhq/gymdesk-backend/api/validators"
	"github.com/gymdeskhq/gymdesk-backend/internal/plans"
	"github.com/gymdeskhq/gymdesk-backend/pkg/logger"
)

// PlansController manages the membership plan catalog.
type PlansController struct {
	svc  plans.Service
	logg *logger.Logger
}

func NewPlansController(svc plans.Service, logg *logger.Logger) *PlansController {
	return &PlansController{svc: svc, logg: logg}
}

func (c *PlansController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var input plans.CreatePlanInput
	if err := validators.DecodeJSONBody(r, &input); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	plan, err := c.svc.Create(ctx, input)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, plan)
}

func (c *PlansController) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuidParam(r, "planID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	plan, err := c.svc.Get(ctx, id)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, plan)
}

func (c *PlansController) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuidParam(r, "planID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	var input plans.UpdatePlanInput
	if err := validators.DecodeJSONBody(r, &input); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	plan, err := c.svc.Update(ctx, id, input)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, plan)
}

func (c *PlansController) Deactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuidParam(r, "planID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	plan, err := c.svc.Deactivate(ctx, id)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, plan)
}

func (c *PlansController) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	items, err := c.svc.List(ctx, includeInactive)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, items)
}
