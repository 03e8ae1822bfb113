package middleware

import "context"

type contextKey uint8

const (
	buyerIDKey contextKey = iota
	requestIDKey
)

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}

// BuyerIDFromContext returns the buyer set by BuyerContext, or "".
func BuyerIDFromContext(ctx context.Context) string { return stringValue(ctx, buyerIDKey) }

func RequestIDFromContext(ctx context.Context) string { return stringValue(ctx, requestIDKey) }

// WithBuyerID scopes ctx to buyerID. Services and the idempotency middleware read it back.
func WithBuyerID(ctx context.Context, buyerID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, buyerIDKey, buyerID)
}

func withRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}
