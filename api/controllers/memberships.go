package controllers

import (
	"net/http"

	"github.com/gymdeskhq/gymdesk-backend/api/responses"
	"github.com/gymdeskhq/gymdesk-backend/api/validators"
	"github.com/gymdeskhq/gymdesk-backend/internal/memberships"
	"github.com/gymdeskhq/gymdesk-backend/pkg/logger"
)

// MembershipsController handles registrations, renewals, and membership reads.
type MembershipsController struct {
	svc  memberships.Service
	logg *logger.Logger
}

func NewMembershipsController(svc memberships.Service, logg *logger.Logger) *MembershipsController {
	return &MembershipsController{svc: svc, logg: logg}
}

// Register creates a membership for the client in the path, taking the
// registration payment atomically.
func (c *MembershipsController) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	clientID, err := uuidParam(r, "clientID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	var input memberships.RegisterInput
	if err := validators.DecodeJSONBody(r, &input); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	input.ClientID = clientID

	userID, err := actingUserID(r)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	input.ProcessedByUserID = userID

	membership, err := c.svc.Register(ctx, input)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, membership)
}

func (c *MembershipsController) Renew(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuidParam(r, "membershipID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	var input memberships.RenewInput
	if err := validators.DecodeJSONBody(r, &input); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	userID, err := actingUserID(r)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	input.ProcessedByUserID = userID

	renewal, err := c.svc.Renew(ctx, id, input)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, renewal)
}

// PreviewRenewal quotes the dates a renewal would produce without committing
// anything.
func (c *MembershipsController) PreviewRenewal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuidParam(r, "membershipID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	quote, err := c.svc.PreviewRenewal(ctx, id)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, quote)
}

func (c *MembershipsController) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuidParam(r, "membershipID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	membership, err := c.svc.Get(ctx, id)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, membership)
}

func (c *MembershipsController) ListByClient(w http.ResponseWriter, r *http.Request) {
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
