package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS admits the storefront origins. With no origins configured only the local
// storefront dev server is allowed.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	opts := cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Content-Type", BuyerHeader, IdempotencyKeyHeader, RequestIDHeader},
		// browsers hide response headers unless listed here
		ExposedHeaders:   []string{RequestIDHeader, IdempotentReplayHeader},
		AllowCredentials: true,
		MaxAge:           600,
	}
	return cors.Handler(opts)
}
