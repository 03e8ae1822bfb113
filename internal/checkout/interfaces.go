package checkout

import (
	"context"

	"github.com/angelmondragon/vendorcart-backend/internal/orderapi"
	"github.com/angelmondragon/vendorcart-backend/internal/pricing"
	"github.com/angelmondragon/vendorcart-backend/internal/topup"
)

// SessionStore defines the persistence surface required by the checkout service.
type SessionStore interface {
	Create(ctx context.Context, sess *Session) error
	Get(ctx context.Context, buyerID, sessionID string) (*Session, error)
	Update(ctx context.Context, buyerID, sessionID string, fn func(*Session) error) (*Session, error)
	Delete(ctx context.Context, buyerID, sessionID string) error
}

type orderService interface {
	FetchPreview(ctx context.Context, buyerID string) (*orderapi.Preview, error)
	CreateOrders(ctx context.Context, buyerID string, submission pricing.Submission) (*orderapi.CreateOrdersResult, error)
	GetWalletBalance(ctx context.Context, buyerID string) (*orderapi.WalletBalance, error)
}

type topUpCreator interface {
	Create(ctx context.Context, input topup.CreateInput) (*topup.TopUp, error)
}

type metricsRecorder interface {
	IncPreview(outcome string)
	IncSelection(outcome string)
	AddStale(source string, n int)
	IncSubmission(outcome string)
}

type noopMetrics struct{}

func (noopMetrics) IncPreview(string)    {}
func (noopMetrics) IncSelection(string)  {}
func (noopMetrics) AddStale(string, int) {}
func (noopMetrics) IncSubmission(string) {}
