package pricing

import (
	"github.com/angelmondragon/vendorcart-backend/pkg/enums"
	"github.com/angelmondragon/vendorcart-backend/pkg/money"
)

// Reason explains why a voucher cannot be applied to a vendor order.
type Reason string

const (
	ReasonNone                Reason = ""
	ReasonBelowMinOrderAmount Reason = "below_min_order_amount"
	ReasonEmptyProductScope   Reason = "empty_product_scope"
	ReasonNoMatchingProducts  Reason = "no_matching_products"
)

// OrderAmount sums TotalItemPrice over every line item of the order.
func OrderAmount(o VendorOrder) Money {
	total := money.Zero
	for _, item := range o.Items {
		total = total.Add(item.TotalItemPrice)
	}
	return total
}

// IsApplicable reports whether v may be applied to o. Date windows and usage
// budgets are not considered.
func IsApplicable(v Voucher, o VendorOrder) bool {
	ok, _ := Eligibility(v, o)
	return ok
}

// Eligibility is IsApplicable with the rejection reason.
//
// The minimum order amount is compared against the whole vendor order, including
// for PRODUCTS vouchers whose discount only covers a subset of the items.
func Eligibility(v Voucher, o VendorOrder) (bool, Reason) {
	if OrderAmount(o).LessThan(v.MinOrderAmount) {
		return false, ReasonBelowMinOrderAmount
	}
	if v.AppliesTo != enums.VoucherScopeProducts {
		return true, ReasonNone
	}
	if len(v.ApplicableProductIDs) == 0 {
		return false, ReasonEmptyProductScope
	}
	if len(scopedItems(v, o)) == 0 {
		return false, ReasonNoMatchingProducts
	}
	return true, ReasonNone
}

// scopedItems returns the line items a voucher discounts. SHOP vouchers cover all items.
func scopedItems(v Voucher, o VendorOrder) []LineItem {
	if v.AppliesTo != enums.VoucherScopeProducts {
		return o.Items
	}
	ids := make(map[string]struct{}, len(v.ApplicableProductIDs))
	for _, id := range v.ApplicableProductIDs {
		ids[id] = struct{}{}
	}
	var out []LineItem
	for _, item := range o.Items {
		if _, ok := ids[item.ProductID]; ok {
			out = append(out, item)
		}
	}
	return out
}

// ApplicableAmount is the base a voucher discounts: the whole order for SHOP,
// the matching items for PRODUCTS.
func ApplicableAmount(v Voucher, o VendorOrder) Money {
	total := money.Zero
	for _, item := range scopedItems(v, o) {
		total = total.Add(item.TotalItemPrice)
	}
	return total
}
