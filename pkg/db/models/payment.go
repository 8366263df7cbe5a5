package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gymdeskhq/gymdesk-backend/pkg/enums"
	"github.com/gymdeskhq/gymdesk-backend/pkg/types"
)

// Payment is the canonical record of money received. It belongs to exactly
// one owner, discriminated by TargetType: the membership it registered or the
// renewal it paid for.
type Payment struct {
	ID           uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	TargetType   enums.PaymentTargetType `gorm:"column:target_type;type:payment_target_type;not null;index:idx_payments_target"`
	TargetID     uuid.UUID               `gorm:"column:target_id;type:uuid;not null;index:idx_payments_target"`
	Amount       decimal.Decimal         `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency     enums.Currency          `gorm:"column:currency;type:currency;not null"`
	ExchangeRate decimal.Decimal         `gorm:"column:exchange_rate;type:numeric(18,6);not null;default:1"`

	// SelectedPrice and SelectedCurrency record what the client was quoted,
	// which may differ from the settlement currency above.
	SelectedPrice    decimal.Decimal `gorm:"column:selected_price;type:numeric(12,2);not null"`
	SelectedCurrency enums.Currency  `gorm:"column:selected_currency;type:currency;not null"`

	PaymentDate types.Date `gorm:"column:payment_date;type:date;not null"`
	// LegacyMethod is the old single-method tag, superseded by Methods.
	LegacyMethod       *string   `gorm:"column:payment_method"`
	Reference          *string   `gorm:"column:reference"`
	Notes              *string   `gorm:"column:notes"`
	RegisteredByUserID uuid.UUID `gorm:"column:registered_by_user_id;type:uuid;not null"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`

	Methods []PaymentMethod `gorm:"foreignKey:PaymentID;constraint:OnDelete:CASCADE"`
}

// ValidateTarget enforces the polymorphic invariant at construction time: a
// payment references exactly one owner, never none.
func (p *Payment) ValidateTarget() error {
	if !p.TargetType.IsValid() {
		return fmt.Errorf("payment target type %q is not valid", p.TargetType)
	}
	if p.TargetID == uuid.Nil {
		return fmt.Errorf("payment target id is required")
	}
	return nil
}
