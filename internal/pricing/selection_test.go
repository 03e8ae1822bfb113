package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectionSelectReplacesVoucher(t *testing.T) {
	sel := NewSelection()
	sel.Select("s1", shopFixed("v1", 1000))
	sel.Select("s1", shopFixed("v2", 2000))

	assert.Len(t, sel.Vouchers, 1)
	assert.Equal(t, "v2", sel.VoucherFor("s1").ID)
	assert.Nil(t, sel.VoucherFor("s2"))

	sel.Clear("s1")
	assert.Nil(t, sel.VoucherFor("s1"))
}

func TestSelectionNotes(t *testing.T) {
	var sel Selection
	sel.SetNote("s1", "ring twice")
	assert.Equal(t, "ring twice", sel.NoteFor("s1"))

	sel.SetNote("s1", "")
	assert.Equal(t, "", sel.NoteFor("s1"))
	assert.NotContains(t, sel.Notes, "s1")
}

func TestSelectionClearStale(t *testing.T) {
	stale := shopFixed("v-stale", 1000)
	stale.MinOrderAmount = m(1000000)

	v1 := shopFixed("v1", 1000)
	sel := NewSelection()
	sel.Select("s1", v1)
	sel.Select("s2", stale)
	sel.Select("gone", shopFixed("v3", 1000))

	orders := []VendorOrder{
		withVouchers(order("s1", 0, item("a", "1", 1, 50000)), v1),
		withVouchers(order("s2", 0, item("b", "1", 1, 50000)), stale),
	}
	cleared := sel.ClearStale(orders)

	assert.Equal(t, []string{"gone", "s2"}, cleared)
	assert.NotNil(t, sel.VoucherFor("s1"))
	assert.Nil(t, sel.VoucherFor("s2"))
	assert.Empty(t, sel.ClearStale(orders))
}

func TestSelectionClearStaleResolvesAgainstPreview(t *testing.T) {
	sel := NewSelection()
	sel.Select("s1", shopFixed("v1", 10000))
	sel.Select("s2", shopFixed("v2", 10000))

	orders := []VendorOrder{
		withVouchers(order("s1", 0, item("a", "1", 1, 50000)), shopFixed("v1", 1000)),
		withVouchers(order("s2", 0, item("b", "1", 1, 50000)), shopFixed("v-other", 1000)),
	}
	cleared := sel.ClearStale(orders)

	assert.Equal(t, []string{"s2"}, cleared)
	require.NotNil(t, sel.VoucherFor("s1"))
	assert.True(t, m(1000).Equal(sel.VoucherFor("s1").DiscountValue))
	assert.Nil(t, sel.VoucherFor("s2"))
}

func TestSelectionCurrent(t *testing.T) {
	o := withVouchers(order("s1", 0, item("a", "1", 1, 50000)), shopFixed("v1", 2000))

	_, selected, ok := NewSelection().Current(o)
	assert.False(t, selected)
	assert.False(t, ok)

	v, selected, ok := selectionWith("s1", shopFixed("v1", 9999)).Current(o)
	assert.True(t, selected)
	assert.True(t, ok)
	assert.True(t, m(2000).Equal(v.DiscountValue))

	_, selected, ok = selectionWith("s1", shopFixed("gone", 1)).Current(o)
	assert.True(t, selected)
	assert.False(t, ok)
}
