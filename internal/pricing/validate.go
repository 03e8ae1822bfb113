package pricing

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"

	"github.com/angelmondragon/vendorcart-backend/pkg/enums"
	"github.com/angelmondragon/vendorcart-backend/pkg/money"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// Validate reports every structural problem with a voucher received from the
// order service, including scope/type combinations the Engine cannot price.
func (v Voucher) Validate() error {
	var err error
	if structErr := validate.Struct(v); structErr != nil {
		err = multierr.Append(err, structErr)
	}
	if !v.DiscountType.IsValid() {
		err = multierr.Append(err, fmt.Errorf("voucher %s: unknown discount_type %q", v.Code, v.DiscountType))
	}
	if !v.AppliesTo.IsValid() {
		err = multierr.Append(err, fmt.Errorf("voucher %s: unknown applies_to %q", v.Code, v.AppliesTo))
	}
	if !v.DiscountValue.IsPositive() {
		err = multierr.Append(err, fmt.Errorf("voucher %s: discount_value must be positive", v.Code))
	}
	if v.DiscountType == enums.DiscountTypePercentage && v.DiscountValue.GreaterThan(money.New(100)) {
		err = multierr.Append(err, fmt.Errorf("voucher %s: percentage above 100", v.Code))
	}
	if v.MaxDiscountValue != nil && v.MaxDiscountValue.IsNegative() {
		err = multierr.Append(err, fmt.Errorf("voucher %s: max_discount_value is negative", v.Code))
	}
	if v.MinOrderAmount.IsNegative() {
		err = multierr.Append(err, fmt.Errorf("voucher %s: min_order_amount is negative", v.Code))
	}
	if v.AppliesTo == enums.VoucherScopeProducts && len(v.ApplicableProductIDs) == 0 {
		err = multierr.Append(err, fmt.Errorf("voucher %s: PRODUCTS scope without applicable_product_ids", v.Code))
	}
	return err
}

// Validate checks the line items and shipping cost of a vendor order.
func (o VendorOrder) Validate() error {
	var err error
	if structErr := validate.Struct(o); structErr != nil {
		err = multierr.Append(err, structErr)
	}
	if o.ShippingCost.IsNegative() {
		err = multierr.Append(err, fmt.Errorf("order %s: shipping_cost is negative", o.ID))
	}
	for _, item := range o.Items {
		if item.TotalItemPrice.IsNegative() || item.PriceAtTime.IsNegative() {
			err = multierr.Append(err, fmt.Errorf("order %s item %s: negative price", o.ID, item.ID))
		}
	}
	return err
}

// SanitizeVouchers splits o's available vouchers into the valid ones and a
// combined error describing every rejected voucher.
func SanitizeVouchers(o VendorOrder) (VendorOrder, error) {
	var errs error
	valid := make([]Voucher, 0, len(o.AvailableVouchers))
	for _, v := range o.AvailableVouchers {
		if err := v.Validate(); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		valid = append(valid, v)
	}
	o.AvailableVouchers = valid
	return o, errs
}
