package controllers

import (
	"context"
	"net/http"

	"github.com/gymdeskhq/gymdesk-backend/api/responses"
	pkgerrors "github.com/gymdeskhq/gymdesk-backend/pkg/errors"
	"github.com/gymdeskhq/gymdesk-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// HealthController reports process liveness and dependency readiness.
type HealthController struct {
	db    pinger
	redis pinger
	logg  *logger.Logger
}

func NewHealthController(db, redis pinger, logg *logger.Logger) *HealthController {
	return &HealthController{db: db, redis: redis, logg: logg}
}

func (c *HealthController) Live(w http.ResponseWriter, r *http.Request) {
	responses.WriteSuccess(w, map[string]string{"status": "ok"})
}

func (c *HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	checks := map[string]string{}
	healthy := true

	if c.db != nil {
		if err := c.db.Ping(ctx); err != nil {
			checks["database"] = err.Error()
			healthy = false
		} else {
			checks["database"] = "ok"
		}
	}
	if c.redis != nil {
		if err := c.redis.Ping(ctx); err != nil {
			checks["redis"] = err.Error()
			healthy = false
		} else {
			checks["redis"] = "ok"
		}
	}

	if !healthy {
		responses.WriteError(ctx, c.logg, w, pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(checks))
		return
	}
	responses.WriteSuccess(w, checks)
}
