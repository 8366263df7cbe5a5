package payments

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/gymdeskhq/gymdesk-backend/pkg/db/models"
	"github.com/gymdeskhq/gymdesk-backend/pkg/enums"
	pkgerrors "github.com/gymdeskhq/gymdesk-backend/pkg/errors"
	"github.com/gymdeskhq/gymdesk-backend/pkg/money"
)

// MethodEntry is one line of a split payment as entered at the front desk.
// Currency is implied by the kind suffix for most kinds; crypto and other
// must state it explicitly.
type MethodEntry struct {
	Kind         enums.PaymentMethodKind `json:"kind" validate:"required"`
	Amount       decimal.Decimal         `json:"amount" validate:"required"`
	Currency     *enums.Currency         `json:"currency"`
	ExchangeRate *decimal.Decimal        `json:"exchange_rate"`
	Reference    *string                 `json:"reference"`
	Notes        *string                 `json:"notes"`
}

// AllocationInput is the pure-computation half of recording a payment: a
// target total in a book-keeping currency plus the method lines meant to
// cover it.
type AllocationInput struct {
	TargetAmount   decimal.Decimal
	TargetCurrency enums.Currency
	// ExchangeRate is the payment-level local-per-usd rate, used for any
	// entry that does not carry its own.
	ExchangeRate decimal.Decimal
	Methods      []MethodEntry
	// Tolerance is the largest allowed gap between the target and the
	// normalized sum. Zero means the configured default applies upstream.
	Tolerance decimal.Decimal
}

// Allocation is a validated breakdown ready to persist.
type Allocation struct {
	Amount   decimal.Decimal
	Currency enums.Currency
	Methods  []models.PaymentMethod
}

// MissingRateDetails pinpoints the method line that needed a conversion but
// had no rate to use.
type MissingRateDetails struct {
	MethodIndex int `json:"method_index"`
}

// MismatchDetails carries both totals so the caller can correct the input.
type MismatchDetails struct {
	Expected string `json:"expected"`
	Computed string `json:"computed"`
}

// Allocate normalizes every method line into the target currency and checks
// that the lines sum to the target within tolerance. It never persists
// anything; persistence happens only after allocation succeeds.
func Allocate(input AllocationInput) (*Allocation, error) {
	if len(input.Methods) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one payment method is required")
	}
	if !input.TargetCurrency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid currency %q", input.TargetCurrency))
	}
	if input.TargetAmount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "target amount cannot be negative")
	}

	sum := decimal.Zero
	methods := make([]models.PaymentMethod, 0, len(input.Methods))
	for i, entry := range input.Methods {
		if !entry.Kind.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("method %d: unknown payment method %q", i, entry.Kind))
		}
		if !entry.Amount.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("method %d: amount must be positive", i))
		}

		currency, err := entryCurrency(i, entry)
		if err != nil {
			return nil, err
		}

		method := models.PaymentMethod{
			Kind:      entry.Kind,
			Amount:    entry.Amount,
			Currency:  currency,
			Position:  i,
			Reference: entry.Reference,
			Notes:     entry.Notes,
		}

		normalized := entry.Amount
		if currency != input.TargetCurrency {
			rate, err := resolveRate(i, entry, input.ExchangeRate)
			if err != nil {
				return nil, err
			}
			normalized, err = money.Convert(entry.Amount, currency, input.TargetCurrency, rate)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("method %d", i))
			}
			method.ExchangeRate = &rate
		}

		sum = sum.Add(normalized)
		methods = append(methods, method)
	}

	tolerance := input.Tolerance
	if !tolerance.IsPositive() {
		tolerance = decimal.NewFromFloat(0.01)
	}

	expected := money.Round2(input.TargetAmount)
	computed := money.Round2(sum)
	if !money.WithinTolerance(expected, computed, tolerance) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment methods do not sum to the target amount").
			WithDetails(MismatchDetails{
				Expected: expected.StringFixed(2),
				Computed: computed.StringFixed(2),
			})
	}

	return &Allocation{
		Amount:   expected,
		Currency: input.TargetCurrency,
		Methods:  methods,
	}, nil
}

func entryCurrency(index int, entry MethodEntry) (enums.Currency, error) {
	if currency, ok := entry.Kind.Currency(); ok {
		return currency, nil
	}
	if entry.Currency == nil || !entry.Currency.IsValid() {
		return "", pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("method %d: %s requires an explicit currency", index, entry.Kind))
	}
	return *entry.Currency, nil
}

func resolveRate(index int, entry MethodEntry, paymentRate decimal.Decimal) (decimal.Decimal, error) {
	if entry.ExchangeRate != nil {
		if !entry.ExchangeRate.IsPositive() {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("method %d: exchange rate must be positive", index))
		}
		return *entry.ExchangeRate, nil
	}
	if paymentRate.IsPositive() {
		return paymentRate, nil
	}
	return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "missing exchange rate for cross-currency payment method").
		WithDetails(MissingRateDetails{MethodIndex: index})
}
