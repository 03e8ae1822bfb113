package enums

import (
	"fmt"
	"strings"
)

// PaymentMethod is how the buyer settles a checkout. WALLET is the only method that
// draws on a stored balance and can therefore require a top-up before submission.
type PaymentMethod string

const (
	PaymentMethodCOD    PaymentMethod = "COD"
	PaymentMethodOnline PaymentMethod = "ONLINE"
	PaymentMethodWallet PaymentMethod = "WALLET"
)

func (p PaymentMethod) String() string { return string(p) }

func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentMethodCOD, PaymentMethodOnline, PaymentMethodWallet:
		return true
	}
	return false
}

// SettlesFromWallet reports whether the order total is debited from the buyer's wallet.
func (p PaymentMethod) SettlesFromWallet() bool {
	return p == PaymentMethodWallet
}

// ParsePaymentMethod accepts any casing and surrounding whitespace.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	method := PaymentMethod(strings.ToUpper(strings.TrimSpace(value)))
	if !method.IsValid() {
		return "", fmt.Errorf("invalid payment method %q", value)
	}
	return method, nil
}
