package enums

import "fmt"

// VoucherScope describes which part of a vendor order a voucher discounts.
type VoucherScope string

const (
	VoucherScopeShop     VoucherScope = "SHOP"
	VoucherScopeProducts VoucherScope = "PRODUCTS"
)

var validVoucherScopes = []VoucherScope{
	VoucherScopeShop,
	VoucherScopeProducts,
}

// String implements fmt.Stringer.
func (s VoucherScope) String() string {
	return string(s)
}

// IsValid reports whether the value is a known VoucherScope.
func (s VoucherScope) IsValid() bool {
	for _, candidate := range validVoucherScopes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseVoucherScope converts raw input into a VoucherScope.
func ParseVoucherScope(value string) (VoucherScope, error) {
	for _, candidate := range validVoucherScopes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid voucher scope %q", value)
}
