package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gymdeskhq/gymdesk-backend/pkg/enums"
	"github.com/gymdeskhq/gymdesk-backend/pkg/types"
)

// MembershipRenewal is one successful renewal transaction. Renewals form an
// append-only ledger per membership; they are never mutated or deleted in
// normal operation.
type MembershipRenewal struct {
	ID                uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	MembershipID      uuid.UUID       `gorm:"column:membership_id;type:uuid;not null;index"`
	PreviousEndDate   types.Date      `gorm:"column:previous_end_date;type:date;not null"`
	NewEndDate        types.Date      `gorm:"column:new_end_date;type:date;not null"`
	AmountPaid        decimal.Decimal `gorm:"column:amount_paid;type:numeric(12,2);not null"`
	Currency          enums.Currency  `gorm:"column:currency;type:currency;not null"`
	ProcessedByUserID uuid.UUID       `gorm:"column:processed_by_user_id;type:uuid;not null"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`

	Membership *Membership `gorm:"foreignKey:MembershipID"`
}
