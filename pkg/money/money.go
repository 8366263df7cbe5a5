package money

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/gymdeskhq/gymdesk-backend/pkg/enums"
)

// Exchange rates are always expressed as local units per one US dollar.
// Converting local to usd divides by the rate; usd to local multiplies.
// Every amount in the system goes through this package so the direction is
// fixed in exactly one place.

// IdentityRate is the rate used when no conversion is involved.
var IdentityRate = decimal.NewFromInt(1)

// Convert moves an amount between the two supported denominations using the
// provided local-per-usd rate. Same-currency conversions return the amount
// untouched regardless of the rate.
func Convert(amount decimal.Decimal, from, to enums.Currency, rate decimal.Decimal) (decimal.Decimal, error) {
	if !from.IsValid() {
		return decimal.Zero, fmt.Errorf("invalid source currency %q", from)
	}
	if !to.IsValid() {
		return decimal.Zero, fmt.Errorf("invalid target currency %q", to)
	}
	if from == to {
		return amount, nil
	}
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("exchange rate must be positive, got %s", rate)
	}

	switch {
	case from == enums.CurrencyLocal && to == enums.CurrencyUSD:
		return amount.Div(rate), nil
	case from == enums.CurrencyUSD && to == enums.CurrencyLocal:
		return amount.Mul(rate), nil
	default:
		return decimal.Zero, fmt.Errorf("unsupported conversion %s -> %s", from, to)
	}
}

// Round2 rounds to two decimal places, the smallest unit either currency is
// booked in.
func Round2(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// WithinTolerance reports whether two amounts differ by at most tolerance.
func WithinTolerance(a, b, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}
