package enums

import (
	"fmt"
	"strings"
)

// Currency is the ISO 4217 code checkout totals are expressed in.
type Currency string

const (
	CurrencyVND Currency = "VND"
	CurrencyUSD Currency = "USD"
)

// minorUnits maps each supported currency to its ISO 4217 exponent.
var minorUnits = map[Currency]int32{
	CurrencyVND: 0,
	CurrencyUSD: 2,
}

func (c Currency) String() string { return string(c) }

func (c Currency) IsValid() bool {
	_, ok := minorUnits[c]
	return ok
}

// Places returns the number of decimal places amounts are truncated to.
// Unknown currencies report 0.
func (c Currency) Places() int32 {
	return minorUnits[c]
}

// ParseCurrency accepts any casing and surrounding whitespace.
func ParseCurrency(value string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(value)))
	if !c.IsValid() {
		return "", fmt.Errorf("invalid currency %q", value)
	}
	return c, nil
}
