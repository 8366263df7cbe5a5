package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gymdeskhq/gymdesk-backend/pkg/enums"
)

// PaymentMethod is one line of a split payment: an amount taken through one
// settlement channel in one currency. Position preserves the order the desk
// entered the lines in.
type PaymentMethod struct {
	ID        uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PaymentID uuid.UUID               `gorm:"column:payment_id;type:uuid;not null;index"`
	Kind      enums.PaymentMethodKind `gorm:"column:kind;type:payment_method_kind;not null"`
	Amount    decimal.Decimal         `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency  enums.Currency          `gorm:"column:currency;type:currency;not null"`
	// ExchangeRate is set only when this line's currency differs from the
	// payment's book-keeping currency.
	ExchangeRate *decimal.Decimal `gorm:"column:exchange_rate;type:numeric(18,6)"`
	Position     int              `gorm:"column:position;not null"`
	Reference    *string          `gorm:"column:reference"`
	Notes        *string          `gorm:"column:notes"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
}
