package enums

import "fmt"

// Currency is a book-keeping denomination. The gym operates in exactly two:
// US dollars and the local currency of the branch.
type Currency string

const (
	CurrencyUSD   Currency = "usd"
	CurrencyLocal Currency = "local"
)

var validCurrencies = []Currency{
	CurrencyUSD,
	CurrencyLocal,
}

// String implements fmt.Stringer.
func (c Currency) String() string {
	return string(c)
}

// IsValid reports whether the currency is recognized.
func (c Currency) IsValid() bool {
	for _, candidate := range validCurrencies {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCurrency converts a raw string into a Currency.
func ParseCurrency(value string) (Currency, error) {
	for _, candidate := range validCurrencies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid currency %q", value)
}
