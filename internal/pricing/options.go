package pricing

import (
	"sort"
	"time"
)

// VoucherOption is one row of the voucher picker for a vendor order. Discount is
// what the voucher would remove if selected, computed by the same Engine used for
// the order summary and the grand total.
type VoucherOption struct {
	Voucher    Voucher `json:"voucher"`
	Applicable bool    `json:"applicable"`
	Reason     Reason  `json:"reason,omitempty"`
	Discount   Money   `json:"discount"`
	Selected   bool    `json:"selected"`
	Expired    bool    `json:"expired"`
	NotStarted bool    `json:"not_started"`
	Exhausted  bool    `json:"exhausted"`
}

// VoucherOptions lists every available voucher of o, largest discount first and
// then by code. The date and usage flags are advisory and do not affect Applicable.
func (e *Engine) VoucherOptions(o VendorOrder, sel Selection, now time.Time) []VoucherOption {
	selected := sel.VoucherFor(o.StoreID)
	out := make([]VoucherOption, 0, len(o.AvailableVouchers))
	for _, v := range o.AvailableVouchers {
		ok, reason := Eligibility(v, o)
		out = append(out, VoucherOption{
			Voucher:    v,
			Applicable: ok,
			Reason:     reason,
			Discount:   e.ComputeDiscount(v, o),
			Selected:   selected != nil && selected.ID == v.ID,
			Expired:    v.EndDate != nil && now.After(*v.EndDate),
			NotStarted: v.StartDate != nil && now.Before(*v.StartDate),
			Exhausted:  v.MaxUses != nil && v.UsedCount >= *v.MaxUses,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Discount.Cmp(out[j].Discount); c != 0 {
			return c > 0
		}
		return out[i].Voucher.Code < out[j].Voucher.Code
	})
	return out
}
