package memberships

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gymdeskhq/gymdesk-backend/internal/payments"
	"github.com/gymdeskhq/gymdesk-backend/pkg/enums"
	"github.com/gymdeskhq/gymdesk-backend/pkg/types"
)

// RegisterInput starts a new membership for a client and records its
// registration payment in the same transaction.
type RegisterInput struct {
	// ClientID comes from the route, not the request body.
	ClientID  uuid.UUID  `json:"-"`
	PlanID    uuid.UUID  `json:"plan_id" validate:"required"`
	StartDate types.Date `json:"start_date"`
	// Currency selects which of the plan's price columns the client is
	// charged in.
	Currency          enums.Currency         `json:"currency" validate:"required"`
	ExchangeRate      decimal.Decimal        `json:"exchange_rate"`
	Methods           []payments.MethodEntry `json:"methods" validate:"required"`
	Reference         *string                `json:"reference"`
	Notes             *string                `json:"notes"`
	ProcessedByUserID uuid.UUID              `json:"-"`
}

// RenewInput renews an existing membership.
type RenewInput struct {
	Currency          enums.Currency         `json:"currency" validate:"required"`
	ExchangeRate      decimal.Decimal        `json:"exchange_rate"`
	Methods           []payments.MethodEntry `json:"methods" validate:"required"`
	Reference         *string                `json:"reference"`
	Notes             *string                `json:"notes"`
	ProcessedByUserID uuid.UUID              `json:"-"`
}
