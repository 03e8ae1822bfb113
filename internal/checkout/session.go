package checkout

import (
	"time"

	"github.com/angelmondragon/vendorcart-backend/internal/pricing"
)

// Session is one buyer's checkout in progress. Revision increases on every write
// and guards against merging a preview fetched for an older revision.
type Session struct {
	ID        string                `json:"id"`
	BuyerID   string                `json:"buyer_id"`
	Revision  int64                 `json:"revision"`
	Orders    []pricing.VendorOrder `json:"orders"`
	Selection pricing.Selection     `json:"selection"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
	ExpiresAt time.Time             `json:"expires_at"`
}

func (s *Session) order(storeID string) (pricing.VendorOrder, bool) {
	for _, o := range s.Orders {
		if o.StoreID == storeID {
			return o, true
		}
	}
	return pricing.VendorOrder{}, false
}

// SessionView is what the API returns for a session: its priced totals.
type SessionView struct {
	ID            string                 `json:"id"`
	Revision      int64                  `json:"revision"`
	ExpiresAt     time.Time              `json:"expires_at"`
	Totals        pricing.CheckoutTotals `json:"totals"`
	ClearedStores []string               `json:"cleared_stores,omitempty"`
}

// SubmitInput carries the delivery and payment choices made at submit time.
type SubmitInput struct {
	AddressID      string
	ShippingMethod string
	PaymentMethod  string
}

// SubmitResult describes a checkout accepted by the order service.
type SubmitResult struct {
	OrderIDs []string               `json:"order_ids"`
	Totals   pricing.CheckoutTotals `json:"totals"`
}
