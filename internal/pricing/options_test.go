package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoucherOptions(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	expired := shopFixed("expired", 1000)
	expired.Code = "A-EXPIRED"
	expired.EndDate = &past

	upcoming := shopFixed("upcoming", 1000)
	upcoming.Code = "B-UPCOMING"
	upcoming.StartDate = &future

	maxUses := 10
	exhausted := shopPercent("exhausted", 20, mp(50000))
	exhausted.Code = "C-EXHAUSTED"
	exhausted.MaxUses = &maxUses
	exhausted.UsedCount = 10

	belowMin := shopFixed("below", 99999)
	belowMin.Code = "D-BELOW"
	belowMin.MinOrderAmount = m(1000000)

	o := order("s1", 15000, item("a", "1", 1, 300000))
	o.AvailableVouchers = []Voucher{belowMin, expired, upcoming, exhausted}

	opts := vnd().VoucherOptions(o, selectionWith("s1", exhausted), now)
	require.Len(t, opts, 4)

	assert.Equal(t, "exhausted", opts[0].Voucher.ID)
	assert.True(t, m(50000).Equal(opts[0].Discount))
	assert.True(t, opts[0].Exhausted)
	assert.True(t, opts[0].Selected)
	assert.True(t, opts[0].Applicable)

	// equal discounts fall back to code order
	assert.Equal(t, "expired", opts[1].Voucher.ID)
	assert.True(t, opts[1].Expired)
	assert.Equal(t, "upcoming", opts[2].Voucher.ID)
	assert.True(t, opts[2].NotStarted)

	assert.Equal(t, "below", opts[3].Voucher.ID)
	assert.False(t, opts[3].Applicable)
	assert.Equal(t, ReasonBelowMinOrderAmount, opts[3].Reason)
	assert.True(t, opts[3].Discount.IsZero())
}

func TestVoucherOptionsMatchSummaryDiscount(t *testing.T) {
	engine := vnd()
	v := productsFixed("v", 10000, "5")
	o := order("s1", 0, item("a", "5", 3, 8000), item("b", "7", 2, 5000))
	o.AvailableVouchers = []Voucher{v}

	opts := engine.VoucherOptions(o, NewSelection(), time.Now())
	summary := engine.AggregateVendor(o, selectionWith("s1", v))
	grand := engine.AggregateCheckout([]VendorOrder{o}, selectionWith("s1", v), SubmissionInput{})

	require.Len(t, opts, 1)
	assert.Equal(t, opts[0].Discount.String(), summary.Discount.String())
	assert.Equal(t, summary.Discount.String(), grand.TotalVoucherDiscount.String())
}
