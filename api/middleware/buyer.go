package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/vendorcart-backend/api/responses"
	pkgerrors "github.com/angelmondragon/vendorcart-backend/pkg/errors"
	"github.com/angelmondragon/vendorcart-backend/pkg/logger"
)

// BuyerHeader carries the buyer id resolved by the upstream gateway.
const BuyerHeader = "X-Buyer-Id"

// BuyerContext rejects requests without a buyer and scopes the context to it.
func BuyerContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			buyerID := strings.TrimSpace(r.Header.Get(BuyerHeader))
			if buyerID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "buyer context missing"))
				return
			}

			ctx := WithBuyerID(r.Context(), buyerID)
			if logg != nil {
				ctx = logg.WithBuyerID(ctx, buyerID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
