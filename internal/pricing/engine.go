package pricing

import (
	"github.com/angelmondragon/vendorcart-backend/pkg/enums"
	"github.com/angelmondragon/vendorcart-backend/pkg/money"
)

// Engine computes discounts and totals for one currency. It holds no mutable
// state, so a single Engine is shared by every checkout surface.
type Engine struct {
	currency enums.Currency
	places   int32
}

// NewEngine returns an Engine that truncates percentage results to the
// currency's minor unit.
func NewEngine(currency enums.Currency) *Engine {
	return &Engine{currency: currency, places: currency.Places()}
}

func (e *Engine) Currency() enums.Currency {
	return e.currency
}

// ComputeDiscount returns the amount v removes from o, always within
// [0, ApplicableAmount(v, o)]. Inapplicable vouchers and unknown
// scope/type combinations yield zero.
func (e *Engine) ComputeDiscount(v Voucher, o VendorOrder) Money {
	if !IsApplicable(v, o) {
		return money.Zero
	}
	base := money.ClampZero(ApplicableAmount(v, o))

	var raw Money
	switch v.AppliesTo {
	case enums.VoucherScopeShop:
		switch v.DiscountType {
		case enums.DiscountTypePercentage:
			raw = e.percentage(v, base)
		case enums.DiscountTypeFixed:
			raw = v.DiscountValue
		default:
			return money.Zero
		}
	case enums.VoucherScopeProducts:
		switch v.DiscountType {
		case enums.DiscountTypePercentage:
			raw = e.percentage(v, base)
		case enums.DiscountTypeFixed:
			raw = prorateFixed(v, o)
		default:
			return money.Zero
		}
	default:
		return money.Zero
	}
	return money.Clamp(raw, money.Zero, base)
}

func (e *Engine) percentage(v Voucher, base Money) Money {
	raw := money.Percent(base, v.DiscountValue, e.places)
	if v.MaxDiscountValue != nil {
		raw = money.Min(raw, *v.MaxDiscountValue)
	}
	return raw
}

// prorateFixed applies the fixed value to every qualifying unit, never more than
// the unit's own price.
func prorateFixed(v Voucher, o VendorOrder) Money {
	total := money.Zero
	for _, item := range scopedItems(v, o) {
		perUnit := money.ClampZero(money.Min(v.DiscountValue, item.PriceAtTime))
		total = total.Add(money.Times(perUnit, item.Quantity))
	}
	return total
}

// FlashSavings reports the display-only saving baked into a flash-sale line item.
func FlashSavings(item LineItem) Money {
	if item.FlashSale == nil || item.OriginalPrice == nil {
		return money.Zero
	}
	return money.ClampZero(money.Times(*item.OriginalPrice, item.Quantity).Sub(item.TotalItemPrice))
}
