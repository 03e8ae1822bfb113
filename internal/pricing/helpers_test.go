package pricing

import (
	"github.com/angelmondragon/vendorcart-backend/pkg/enums"
	"github.com/angelmondragon/vendorcart-backend/pkg/money"
)

func m(v int64) Money {
	return money.New(v)
}

func mp(v int64) *Money {
	out := money.New(v)
	return &out
}

func item(id, productID string, qty int, unit int64) LineItem {
	return LineItem{
		ID:             id,
		ProductID:      productID,
		Quantity:       qty,
		PriceAtTime:    m(unit),
		TotalItemPrice: money.Times(m(unit), qty),
	}
}

func order(storeID string, shipping int64, items ...LineItem) VendorOrder {
	return VendorOrder{
		ID:           "order-" + storeID,
		StoreID:      storeID,
		StoreName:    "Store " + storeID,
		Items:        items,
		ShippingCost: m(shipping),
	}
}

func shopPercent(id string, pct int64, maxCap *Money) Voucher {
	return Voucher{
		ID:               id,
		Code:             "CODE-" + id,
		DiscountType:     enums.DiscountTypePercentage,
		AppliesTo:        enums.VoucherScopeShop,
		DiscountValue:    m(pct),
		MaxDiscountValue: maxCap,
		MinOrderAmount:   money.Zero,
	}
}

func shopFixed(id string, value int64) Voucher {
	return Voucher{
		ID:             id,
		Code:           "CODE-" + id,
		DiscountType:   enums.DiscountTypeFixed,
		AppliesTo:      enums.VoucherScopeShop,
		DiscountValue:  m(value),
		MinOrderAmount: money.Zero,
	}
}

func productsFixed(id string, value int64, productIDs ...string) Voucher {
	return Voucher{
		ID:                   id,
		Code:                 "CODE-" + id,
		DiscountType:         enums.DiscountTypeFixed,
		AppliesTo:            enums.VoucherScopeProducts,
		DiscountValue:        m(value),
		MinOrderAmount:       money.Zero,
		ApplicableProductIDs: productIDs,
	}
}

func productsPercent(id string, pct int64, maxCap *Money, productIDs ...string) Voucher {
	return Voucher{
		ID:                   id,
		Code:                 "CODE-" + id,
		DiscountType:         enums.DiscountTypePercentage,
		AppliesTo:            enums.VoucherScopeProducts,
		DiscountValue:        m(pct),
		MaxDiscountValue:     maxCap,
		MinOrderAmount:       money.Zero,
		ApplicableProductIDs: productIDs,
	}
}

func withVouchers(o VendorOrder, vs ...Voucher) VendorOrder {
	o.AvailableVouchers = append(o.AvailableVouchers, vs...)
	return o
}

func selectionWith(storeID string, v Voucher) Selection {
	sel := NewSelection()
	sel.Select(storeID, v)
	return sel
}

func vnd() *Engine {
	return NewEngine(enums.CurrencyVND)
}
