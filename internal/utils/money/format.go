package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// zeroDecimal lists ISO 4217 currencies without a minor unit.
var zeroDecimal = map[string]bool{
	"BIF": true, "CLP": true, "DJF": true, "GNF": true, "JPY": true, "KMF": true,
	"KRW": true, "MGA": true, "PYG": true, "RWF": true, "UGX": true, "VND": true,
	"VUV": true, "XAF": true, "XOF": true, "XPF": true,
}

// Precision returns the number of minor-unit digits of a currency.
func Precision(currency string) int32 {
	if zeroDecimal[strings.ToUpper(currency)] {
		return 0
	}
	return 2
}

// FromMinor converts an integer minor-unit amount to a decimal major-unit amount.
// Example: 5000 USD returns 50.00
func FromMinor(minor int64, currency string) decimal.Decimal {
	return decimal.New(minor, -Precision(currency))
}

// FormatMinor formats a minor-unit amount with the precision of its currency.
// Example: 5000 USD returns "50.00"; 5000 JPY returns "5000"
func FormatMinor(minor int64, currency string) string {
	return FromMinor(minor, currency).StringFixed(Precision(currency))
}

// ParseMajor converts a decimal major-unit string such as "12.50" into minor
// units. Amounts with more precision than the currency allows are rejected.
func ParseMajor(amount string, currency string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	minor := d.Shift(Precision(currency))
	if !minor.Equal(minor.Truncate(0)) {
		return 0, fmt.Errorf("amount %q has more precision than %s allows", amount, currency)
	}
	return minor.IntPart(), nil
}

// ProRata returns floor(part * numerator / denominator) for non-negative
// inputs with numerator <= denominator. The product is computed in arbitrary
// precision so large minor-unit amounts do not wrap.
// Example: ProRata(200, 500, 1000) returns 100
func ProRata(part, numerator, denominator int64) int64 {
	if denominator <= 0 {
		return 0
	}
	q, _ := decimal.NewFromInt(part).Mul(decimal.NewFromInt(numerator)).QuoRem(decimal.NewFromInt(denominator), 0)
	return q.IntPart()
}
