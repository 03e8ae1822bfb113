package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEligibility(t *testing.T) {
	base := order("s1", 0, item("a", "5", 3, 8000), item("b", "7", 2, 5000)) // 34000

	withMin := func(v Voucher, min int64) Voucher {
		v.MinOrderAmount = m(min)
		return v
	}

	cases := []struct {
		name    string
		voucher Voucher
		ok      bool
		reason  Reason
	}{
		{"shop no minimum", shopFixed("v1", 1000), true, ReasonNone},
		{"minimum equal to order amount", withMin(shopFixed("v2", 1000), 34000), true, ReasonNone},
		{"minimum above order amount", withMin(shopFixed("v3", 1000), 34001), false, ReasonBelowMinOrderAmount},
		{"products empty scope", productsFixed("v4", 1000), false, ReasonEmptyProductScope},
		{"products no match", productsFixed("v5", 1000, "99"), false, ReasonNoMatchingProducts},
		{"products match", productsFixed("v6", 1000, "7"), true, ReasonNone},
		{"minimum checked before scope", withMin(productsFixed("v7", 1000), 50000), false, ReasonBelowMinOrderAmount},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, reason := Eligibility(tc.voucher, base)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.reason, reason)
			assert.Equal(t, tc.ok, IsApplicable(tc.voucher, base))
		})
	}
}

func TestEligibilityUsesWholeOrderAmountForProductScope(t *testing.T) {
	// Scoped item is only 20000 of a 120000 order; the minimum is met by the whole order.
	o := order("s1", 0, item("a", "5", 1, 20000), item("b", "7", 1, 100000))
	v := productsFixed("v1", 5000, "5")
	v.MinOrderAmount = m(100000)

	assert.True(t, IsApplicable(v, o))
	assert.True(t, m(20000).Equal(ApplicableAmount(v, o)))
}

func TestEligibilityIgnoresDatesAndUsage(t *testing.T) {
	o := order("s1", 0, item("a", "5", 1, 20000))
	v := shopFixed("v1", 1000)
	maxUses := 1
	v.MaxUses = &maxUses
	v.UsedCount = 5

	assert.True(t, IsApplicable(v, o))
}
