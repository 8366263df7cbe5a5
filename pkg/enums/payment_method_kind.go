package enums

import "fmt"

// PaymentMethodKind identifies one line of a split payment. Most kinds carry
// their currency in the suffix; crypto and other declare it explicitly on the
// method entry.
type PaymentMethodKind string

const (
	PaymentMethodCashUSD       PaymentMethodKind = "cash_usd"
	PaymentMethodCashLocal     PaymentMethodKind = "cash_local"
	PaymentMethodCardUSD       PaymentMethodKind = "card_usd"
	PaymentMethodCardLocal     PaymentMethodKind = "card_local"
	PaymentMethodTransferUSD   PaymentMethodKind = "transfer_usd"
	PaymentMethodTransferLocal PaymentMethodKind = "transfer_local"
	PaymentMethodCrypto        PaymentMethodKind = "crypto"
	PaymentMethodOther         PaymentMethodKind = "other"
)

var validPaymentMethodKinds = []PaymentMethodKind{
	PaymentMethodCashUSD,
	PaymentMethodCashLocal,
	PaymentMethodCardUSD,
	PaymentMethodCardLocal,
	PaymentMethodTransferUSD,
	PaymentMethodTransferLocal,
	PaymentMethodCrypto,
	PaymentMethodOther,
}

// String implements fmt.Stringer.
func (p PaymentMethodKind) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethodKind.
func (p PaymentMethodKind) IsValid() bool {
	for _, candidate := range validPaymentMethodKinds {
		if candidate == p {
			return true
		}
	}
	return false
}

// Currency returns the denomination implied by the kind suffix. The second
// return is false for crypto/other, whose currency must be supplied on the
// method entry itself.
func (p PaymentMethodKind) Currency() (Currency, bool) {
	switch p {
	case PaymentMethodCashUSD, PaymentMethodCardUSD, PaymentMethodTransferUSD:
		return CurrencyUSD, true
	case PaymentMethodCashLocal, PaymentMethodCardLocal, PaymentMethodTransferLocal:
		return CurrencyLocal, true
	default:
		return "", false
	}
}

// ParsePaymentMethodKind converts raw input into a PaymentMethodKind.
func ParsePaymentMethodKind(value string) (PaymentMethodKind, error) {
	for _, candidate := range validPaymentMethodKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
