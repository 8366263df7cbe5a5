package controllers

import (
	"net/http"

	"github.com/gymdeskhq/gymdesk-backend/api/middleware"
	"github.com/gymdeskhq/gymdesk-backend/api/responses"
	"github.com/gymdeskhq/gymdesk-backend/api/validators"
	"github.com/gymdeskhq/gymdesk-backend/internal/auth"
	pkgerrors "github.com/gymdeskhq/gymdesk-backend/pkg/errors"
	"github.com/gymdeskhq/gymdesk-backend/pkg/logger"
)

// AuthController exposes staff login, token refresh, and logout.
type AuthController struct {
	svc  auth.Service
	logg *logger.Logger
}

func NewAuthController(svc auth.Service, logg *logger.Logger) *AuthController {
	return &AuthController{svc: svc, logg: logg}
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req auth.LoginRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	resp, err := c.svc.Login(ctx, req)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, resp)
}

func (c *AuthController) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req auth.RefreshRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	resp, err := c.svc.Refresh(ctx, req)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, resp)
}

func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accessID, ok := middleware.AccessIDFromContext(ctx)
	if !ok {
		responses.WriteError(ctx, c.logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return
	}

	if err := c.svc.Logout(ctx, accessID); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
}
