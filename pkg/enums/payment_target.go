package enums

import "fmt"

// PaymentTargetType is the discriminant of a payment's polymorphic owner: the
// registration payment of a membership, or the payment of a single renewal.
type PaymentTargetType string

const (
	PaymentTargetMembership PaymentTargetType = "membership"
	PaymentTargetRenewal    PaymentTargetType = "membership_renewal"
)

var validPaymentTargetTypes = []PaymentTargetType{
	PaymentTargetMembership,
	PaymentTargetRenewal,
}

// String implements fmt.Stringer.
func (p PaymentTargetType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentTargetType.
func (p PaymentTargetType) IsValid() bool {
	for _, candidate := range validPaymentTargetTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentTargetType converts raw input into a PaymentTargetType.
func ParsePaymentTargetType(value string) (PaymentTargetType, error) {
	for _, candidate := range validPaymentTargetTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment target type %q", value)
}
