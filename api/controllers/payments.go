package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/gymdeskhq/gymdesk-backend/api/responses"
	"github.com/gymdeskhq/gymdesk-backend/api/validators"
	"github.com/gymdeskhq/gymdesk-backend/internal/payments"
	"github.com/gymdeskhq/gymdesk-backend/pkg/enums"
	pkgerrors "github.com/gymdeskhq/gymdesk-backend/pkg/errors"
	"github.com/gymdeskhq/gymdesk-backend/pkg/logger"
)

// PaymentsController records and reads payments.
type PaymentsController struct {
	svc  payments.Service
	logg *logger.Logger
}

func NewPaymentsController(svc payments.Service, logg *logger.Logger) *PaymentsController {
	return &PaymentsController{svc: svc, logg: logg}
}

func (c *PaymentsController) Record(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var input payments.RecordPaymentInput
	if err := validators.DecodeJSONBody(r, &input); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	userID, err := actingUserID(r)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	input.RegisteredByUserID = userID

	payment, err := c.svc.Record(ctx, input)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, payment)
}

func (c *PaymentsController) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuidParam(r, "paymentID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	payment, err := c.svc.Get(ctx, id)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, payment)
}

// ListForMembership returns the payment history of one membership: the
// registration payment plus every renewal payment.
func (c *PaymentsController) ListForMembership(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	membershipID, err := uuidParam(r, "membershipID")
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	items, err := c.svc.ListForMembership(ctx, membershipID)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, items)
}

// ListForTarget returns the payment history for one membership or renewal.
func (c *PaymentsController) ListForTarget(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	targetType := enums.PaymentTargetType(r.URL.Query().Get("target_type"))
	if !targetType.IsValid() {
		responses.WriteError(ctx, c.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment target type"))
		return
	}

	targetID, err := uuid.Parse(r.URL.Query().Get("target_id"))
	if err != nil {
		responses.WriteError(ctx, c.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid identifier").WithDetails(map[string]string{"target_id": "must be a uuid"}))
		return
	}

	items, err := c.svc.ListForTarget(ctx, targetType, targetID)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, items)
}
