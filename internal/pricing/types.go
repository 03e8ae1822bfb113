package pricing

import (
	"time"

	"github.com/angelmondragon/vendorcart-backend/pkg/enums"
	"github.com/angelmondragon/vendorcart-backend/pkg/money"
)

// Money is the exact decimal currency amount used throughout pricing.
type Money = money.Money

// Addon is a server-supplied price adjustment attached to a line item.
type Addon struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price Money  `json:"price"`
}

// FlashSale marks a line item whose PriceAtTime already reflects a flash-sale price.
type FlashSale struct {
	ID     string     `json:"id"`
	EndsAt *time.Time `json:"ends_at,omitempty"`
}

// LineItem is one purchased product-variant instance. TotalItemPrice is the
// authoritative charge and is never derived from PriceAtTime here.
type LineItem struct {
	ID             string     `json:"id" validate:"required"`
	ProductID      string     `json:"product_id" validate:"required"`
	Quantity       int        `json:"quantity" validate:"min=1"`
	PriceAtTime    Money      `json:"price_at_time"`
	TotalItemPrice Money      `json:"total_item_price"`
	FlashSale      *FlashSale `json:"flash_sale,omitempty"`
	OriginalPrice  *Money     `json:"original_price,omitempty"`
	Addons         []Addon    `json:"addons,omitempty"`
}

// VendorOrder is one store's slice of a checkout.
type VendorOrder struct {
	ID                string     `json:"id" validate:"required"`
	StoreID           string     `json:"store_id" validate:"required"`
	StoreName         string     `json:"store_name"`
	Items             []LineItem `json:"items" validate:"min=1,dive"`
	ShippingCost      Money      `json:"shipping_cost"`
	AvailableVouchers []Voucher  `json:"available_vouchers"`
}

// Voucher is a vendor-issued discount rule. Usage and date fields are advisory.
type Voucher struct {
	ID                   string             `json:"id" validate:"required"`
	Code                 string             `json:"code" validate:"required"`
	DiscountType         enums.DiscountType `json:"discount_type"`
	AppliesTo            enums.VoucherScope `json:"applies_to"`
	DiscountValue        Money              `json:"discount_value"`
	MaxDiscountValue     *Money             `json:"max_discount_value,omitempty"`
	MinOrderAmount       Money              `json:"min_order_amount"`
	ApplicableProductIDs []string           `json:"applicable_product_ids,omitempty"`
	MaxUses              *int               `json:"max_uses,omitempty"`
	UsedCount            int                `json:"used_count"`
	StartDate            *time.Time         `json:"start_date,omitempty"`
	EndDate              *time.Time         `json:"end_date,omitempty"`
}

// FindVoucher returns the available voucher with the given id.
func (o VendorOrder) FindVoucher(id string) (Voucher, bool) {
	for _, v := range o.AvailableVouchers {
		if v.ID == id {
			return v, true
		}
	}
	return Voucher{}, false
}

// Submission is the payload handed to the order-creation service.
type Submission struct {
	AddressID      string              `json:"address_id"`
	ShippingMethod string              `json:"shipping_method"`
	PaymentMethod  enums.PaymentMethod `json:"payment_method"`
	OrderIDs       []string            `json:"order_ids"`
	VoucherIDs     map[string]string   `json:"voucher_ids"`
	Notes          map[string]string   `json:"notes"`
}

// SubmissionInput carries the buyer's delivery and payment choices.
type SubmissionInput struct {
	AddressID      string
	ShippingMethod string
	PaymentMethod  enums.PaymentMethod
}
