package plans

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gymdeskhq/gymdesk-backend/pkg/db/models"
	"github.com/gymdeskhq/gymdesk-backend/pkg/enums"
)

// CreatePlanInput carries the fields needed to create a plan.
type CreatePlanInput struct {
	Name                 string          `json:"name" validate:"required"`
	RenewalPeriodDays    int             `json:"renewal_period_days" validate:"required"`
	Price                decimal.Decimal `json:"price"`
	PriceUSD             decimal.Decimal `json:"price_usd"`
	SubscriptionPrice    decimal.Decimal `json:"subscription_price"`
	SubscriptionPriceUSD decimal.Decimal `json:"subscription_price_usd"`
}

// UpdatePlanInput applies partial updates. Nil fields are left untouched.
type UpdatePlanInput struct {
	Name                 *string           `json:"name"`
	Status               *enums.PlanStatus `json:"status"`
	RenewalPeriodDays    *int              `json:"renewal_period_days"`
	Price                *decimal.Decimal  `json:"price"`
	PriceUSD             *decimal.Decimal  `json:"price_usd"`
	SubscriptionPrice    *decimal.Decimal  `json:"subscription_price"`
	SubscriptionPriceUSD *decimal.Decimal  `json:"subscription_price_usd"`
}

func (in CreatePlanInput) toModel() *models.Plan {
	return &models.Plan{
		Name:                 strings.TrimSpace(in.Name),
		Status:               enums.PlanStatusActive,
		RenewalPeriodDays:    in.RenewalPeriodDays,
		Price:                in.Price,
		PriceUSD:             in.PriceUSD,
		SubscriptionPrice:    in.SubscriptionPrice,
		SubscriptionPriceUSD: in.SubscriptionPriceUSD,
	}
}
