package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gymdeskhq/gymdesk-backend/pkg/enums"
)

// Plan is a membership product. Prices are the amounts charged going forward;
// memberships snapshot them at purchase so later edits never rewrite history.
type Plan struct {
	ID                     uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name                   string           `gorm:"column:name;not null;uniqueIndex"`
	Status                 enums.PlanStatus `gorm:"column:status;type:plan_status;not null;default:'active'"`
	RenewalPeriodDays      int              `gorm:"column:renewal_period_days;not null"`
	Price                  decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null"`
	PriceUSD               decimal.Decimal  `gorm:"column:price_usd;type:numeric(12,2);not null"`
	SubscriptionPrice      decimal.Decimal  `gorm:"column:subscription_price;type:numeric(12,2);not null;default:0"`
	SubscriptionPriceUSD   decimal.Decimal  `gorm:"column:subscription_price_usd;type:numeric(12,2);not null;default:0"`
	CreatedAt              time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// PriceIn returns the plan price in the requested denomination.
func (p *Plan) PriceIn(currency enums.Currency) decimal.Decimal {
	if currency == enums.CurrencyUSD {
		return p.PriceUSD
	}
	return p.Price
}

// SubscriptionPriceIn returns the one-time subscription fee in the requested
// denomination.
func (p *Plan) SubscriptionPriceIn(currency enums.Currency) decimal.Decimal {
	if currency == enums.CurrencyUSD {
		return p.SubscriptionPriceUSD
	}
	return p.SubscriptionPrice
}

// RegistrationTotalIn is the amount owed on initial registration: plan price
// plus subscription fee.
func (p *Plan) RegistrationTotalIn(currency enums.Currency) decimal.Decimal {
	return p.PriceIn(currency).Add(p.SubscriptionPriceIn(currency))
}
