// Package money renders integer minor-unit amounts for display.
package money

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// zeroDecimal lists ISO 4217 currencies that have no minor unit.
var zeroDecimal = map[string]bool{
	"JPY": true,
	"KRW": true,
	"VND": true,
	"CLP": true,
	"ISK": true,
}

var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"INR": "₹",
	"KRW": "₩",
	"CHF": "CHF ",
}

// Symbol returns a display symbol for a currency code, falling back to the
// code followed by a space.
func Symbol(currency string) string {
	code := strings.ToUpper(currency)
	if s, ok := symbols[code]; ok {
		return s
	}
	return code + " "
}

// Exponent returns the number of minor-unit digits for a currency code.
func Exponent(currency string) int32 {
	if zeroDecimal[strings.ToUpper(currency)] {
		return 0
	}
	return 2
}

// Decimal converts minor units to a major-unit decimal, 1234 USD -> 12.34.
func Decimal(amount int64, currency string) decimal.Decimal {
	return decimal.New(amount, -Exponent(currency))
}

// String renders an amount without a symbol, e.g. "12.34" or "-0.05".
func String(amount int64, currency string) string {
	return Decimal(amount, currency).StringFixed(Exponent(currency))
}

// Format renders an amount with a currency symbol, e.g. "$12.34" or "-$0.05".
func Format(amount int64, currency, symbol string) string {
	s := Decimal(amount, currency).Abs().StringFixed(Exponent(currency))
	if amount < 0 {
		return "-" + symbol + s
	}
	return symbol + s
}

// ErrOutOfRange means a parsed amount does not fit in int64 minor units.
var ErrOutOfRange = errors.New("amount out of range")

var (
	minMinor = decimal.NewFromInt(math.MinInt64)
	maxMinor = decimal.NewFromInt(math.MaxInt64)
)

// Parse converts a major-unit string such as "12.34" into minor units,
// rounding half away from zero beyond the currency's precision.
func Parse(s, currency string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	minor := d.Shift(Exponent(currency)).Round(0)
	if minor.LessThan(minMinor) || minor.GreaterThan(maxMinor) {
		return 0, ErrOutOfRange
	}
	return minor.IntPart(), nil
}
