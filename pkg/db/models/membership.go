package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gymdeskhq/gymdesk-backend/pkg/enums"
	"github.com/gymdeskhq/gymdesk-backend/pkg/types"
)

// Membership ties a client to a plan for one purchased period. The nominal
// EndDate never changes after creation; the effective end date is derived
// from the latest renewal.
type Membership struct {
	ID                    uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ClientID              uuid.UUID              `gorm:"column:client_id;type:uuid;not null;index"`
	PlanID                uuid.UUID              `gorm:"column:plan_id;type:uuid;not null;index"`
	StartDate             types.Date             `gorm:"column:start_date;type:date;not null"`
	EndDate               types.Date             `gorm:"column:end_date;type:date;not null"`
	Status                enums.MembershipStatus `gorm:"column:status;type:membership_status;not null;default:'active'"`
	AmountPaid            decimal.Decimal        `gorm:"column:amount_paid;type:numeric(12,2);not null"`
	Currency              enums.Currency         `gorm:"column:currency;type:currency;not null"`
	PlanPricePaid         decimal.Decimal        `gorm:"column:plan_price_paid;type:numeric(12,2);not null"`
	SubscriptionPricePaid decimal.Decimal        `gorm:"column:subscription_price_paid;type:numeric(12,2);not null;default:0"`
	CreatedAt             time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time              `gorm:"column:updated_at;autoUpdateTime"`

	Client *Client `gorm:"foreignKey:ClientID"`
	Plan   *Plan   `gorm:"foreignKey:PlanID"`
	// Renewals must be loaded ordered by creation; the last one wins.
	Renewals []MembershipRenewal `gorm:"foreignKey:MembershipID;constraint:OnDelete:CASCADE"`
}
