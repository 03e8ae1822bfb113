package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an exact currency amount. Arithmetic never goes through float64.
type Money = decimal.Decimal

var (
	// Zero is the additive identity.
	Zero    = decimal.Zero
	hundred = decimal.NewFromInt(100)
)

// New returns an amount of whole currency units.
func New(units int64) Money {
	return decimal.NewFromInt(units)
}

// Parse converts a decimal string such as "12500" or "19.99" into Money.
func Parse(value string) (Money, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return Zero, fmt.Errorf("money: empty amount")
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return Zero, fmt.Errorf("money: parse %q: %w", value, err)
	}
	return d, nil
}

// MustParse is Parse for constants and tests.
func MustParse(value string) Money {
	d, err := Parse(value)
	if err != nil {
		panic(err)
	}
	return d
}

// Sum adds the provided amounts.
func Sum(values ...Money) Money {
	total := Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Min returns the smaller amount.
func Min(a, b Money) Money {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Max returns the larger amount.
func Max(a, b Money) Money {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// ClampZero floors negative amounts at zero.
func ClampZero(m Money) Money {
	if m.IsNegative() {
		return Zero
	}
	return m
}

// Clamp bounds m into [lo, hi].
func Clamp(m, lo, hi Money) Money {
	return Min(Max(m, lo), hi)
}

// Times multiplies a unit amount by an integer quantity.
func Times(unit Money, qty int) Money {
	return unit.Mul(decimal.NewFromInt(int64(qty)))
}

// Percent returns amount × pct / 100 truncated to the given number of minor-unit places.
// Truncation keeps a percentage discount from ever rounding above the exact value.
func Percent(amount, pct Money, places int32) Money {
	return amount.Mul(pct).Div(hundred).Truncate(places)
}

// Equal reports whether two amounts are numerically identical regardless of scale.
func Equal(a, b Money) bool {
	return a.Equal(b)
}
