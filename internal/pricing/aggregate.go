package pricing

import (
	"github.com/angelmondragon/vendorcart-backend/pkg/enums"
	"github.com/angelmondragon/vendorcart-backend/pkg/money"
)

// VendorTotals is the priced breakdown of one vendor order.
type VendorTotals struct {
	OrderID      string   `json:"order_id"`
	StoreID      string   `json:"store_id"`
	StoreName    string   `json:"store_name"`
	ProductTotal Money    `json:"product_total"`
	ShippingCost Money    `json:"shipping_cost"`
	Discount     Money    `json:"discount"`
	FinalTotal   Money    `json:"final_total"`
	FlashSavings Money    `json:"flash_savings"`
	Voucher      *Voucher `json:"voucher,omitempty"`
	// Stale is set when the selected voucher no longer applies to the order.
	Stale bool   `json:"stale"`
	Note  string `json:"note,omitempty"`
}

// CheckoutTotals folds every vendor order into the amounts shown to the buyer
// and the submission sent to the order service.
type CheckoutTotals struct {
	Currency             enums.Currency `json:"currency"`
	GrandTotal           Money          `json:"grand_total"`
	TotalVoucherDiscount Money          `json:"total_voucher_discount"`
	TotalFlashSavings    Money          `json:"total_flash_savings"`
	TotalSavings         Money          `json:"total_savings"`
	Vendors              []VendorTotals `json:"vendors"`
	Submission           Submission     `json:"submission"`
}

// StaleStores lists the stores whose selected voucher no longer applies.
func (t CheckoutTotals) StaleStores() []string {
	var out []string
	for _, v := range t.Vendors {
		if v.Stale {
			out = append(out, v.StoreID)
		}
	}
	return out
}

// AggregateVendor prices o with the voucher sel holds for its store, using the terms
// currently offered in o.AvailableVouchers. A withdrawn or inapplicable voucher is
// stale and contributes nothing.
func (e *Engine) AggregateVendor(o VendorOrder, sel Selection) VendorTotals {
	totals := VendorTotals{
		OrderID:      o.ID,
		StoreID:      o.StoreID,
		StoreName:    o.StoreName,
		ProductTotal: OrderAmount(o),
		ShippingCost: o.ShippingCost,
		Discount:     money.Zero,
		FlashSavings: money.Zero,
		Note:         sel.NoteFor(o.StoreID),
	}
	for _, item := range o.Items {
		totals.FlashSavings = totals.FlashSavings.Add(FlashSavings(item))
	}
	if v, selected, ok := sel.Current(o); selected {
		if ok && IsApplicable(v, o) {
			totals.Voucher = &v
			totals.Discount = e.ComputeDiscount(v, o)
		} else {
			totals.Stale = true
		}
	}
	totals.FinalTotal = money.ClampZero(totals.ProductTotal.Add(totals.ShippingCost).Sub(totals.Discount))
	return totals
}

// AggregateCheckout prices every order and builds the submission. Stale
// vouchers are left out of the submission's voucher map.
func (e *Engine) AggregateCheckout(orders []VendorOrder, sel Selection, in SubmissionInput) CheckoutTotals {
	totals := CheckoutTotals{
		Currency:             e.currency,
		GrandTotal:           money.Zero,
		TotalVoucherDiscount: money.Zero,
		TotalFlashSavings:    money.Zero,
		Vendors:              make([]VendorTotals, 0, len(orders)),
		Submission: Submission{
			AddressID:      in.AddressID,
			ShippingMethod: in.ShippingMethod,
			PaymentMethod:  in.PaymentMethod,
			OrderIDs:       make([]string, 0, len(orders)),
			VoucherIDs:     map[string]string{},
			Notes:          map[string]string{},
		},
	}
	for _, o := range orders {
		vendor := e.AggregateVendor(o, sel)
		totals.Vendors = append(totals.Vendors, vendor)
		totals.GrandTotal = totals.GrandTotal.Add(vendor.FinalTotal)
		totals.TotalVoucherDiscount = totals.TotalVoucherDiscount.Add(vendor.Discount)
		totals.TotalFlashSavings = totals.TotalFlashSavings.Add(vendor.FlashSavings)

		totals.Submission.OrderIDs = append(totals.Submission.OrderIDs, o.ID)
		if vendor.Voucher != nil {
			totals.Submission.VoucherIDs[o.StoreID] = vendor.Voucher.ID
		}
		if vendor.Note != "" {
			totals.Submission.Notes[o.StoreID] = vendor.Note
		}
	}
	totals.TotalSavings = totals.TotalVoucherDiscount.Add(totals.TotalFlashSavings)
	return totals
}

// PaymentPlan says whether a wallet payment must first be topped up.
type PaymentPlan struct {
	Method        enums.PaymentMethod `json:"method"`
	GrandTotal    Money               `json:"grand_total"`
	WalletBalance Money               `json:"wallet_balance"`
	TopUpRequired bool                `json:"top_up_required"`
	Shortfall     Money               `json:"shortfall"`
}

// PlanPayment requires a top-up of exactly the shortfall when a WALLET payment
// exceeds the balance. Other methods never need one.
func PlanPayment(method enums.PaymentMethod, grandTotal, walletBalance Money) PaymentPlan {
	plan := PaymentPlan{
		Method:        method,
		GrandTotal:    grandTotal,
		WalletBalance: walletBalance,
		Shortfall:     money.Zero,
	}
	if method.SettlesFromWallet() && grandTotal.GreaterThan(walletBalance) {
		plan.TopUpRequired = true
		plan.Shortfall = grandTotal.Sub(walletBalance)
	}
	return plan
}
