package controllers

import (
	"net/http"

	"github.com/angelmondragon/vendorcart-backend/api/middleware"
	"github.com/angelmondragon/vendorcart-backend/api/responses"
)

type whoamiResponse struct {
	BuyerID   string `json:"buyer_id"`
	RequestID string `json:"request_id,omitempty"`
}

// Whoami echoes the buyer identity the gateway forwarded, letting clients verify
// their X-Buyer-Id wiring before starting a checkout.
func Whoami() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		responses.WriteSuccess(w, whoamiResponse{
			BuyerID:   middleware.BuyerIDFromContext(ctx),
			RequestID: middleware.RequestIDFromContext(ctx),
		})
	}
}
