package checkout

import (
	checkoutsvc "github.com/angelmondragon/vendorcart-backend/internal/checkout"
)

type selectVoucherRequest struct {
	VoucherID string `json:"voucher_id" validate:"required,max=128"`
}

type noteRequest struct {
	Note string `json:"note"`
}

// submitRequest leaves field checks to the service so a missing address
// surfaces as MISSING_ADDRESS rather than a generic validation error.
type submitRequest struct {
	AddressID      string `json:"address_id"`
	ShippingMethod string `json:"shipping_method"`
	PaymentMethod  string `json:"payment_method"`
}

func (r submitRequest) toInput() checkoutsvc.SubmitInput {
	return checkoutsvc.SubmitInput{
		AddressID:      r.AddressID,
		ShippingMethod: r.ShippingMethod,
		PaymentMethod:  r.PaymentMethod,
	}
}
