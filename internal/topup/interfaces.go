package topup

import (
	"context"

	"github.com/google/uuid"

	"github.com/angelmondragon/vendorcart-backend/internal/orderapi"
	"github.com/angelmondragon/vendorcart-backend/internal/pricing"
	"github.com/angelmondragon/vendorcart-backend/pkg/db/models"
	"github.com/angelmondragon/vendorcart-backend/pkg/enums"
)

// TopUpRepository defines the persistence surface required by the top-up service.
type TopUpRepository interface {
	Create(ctx context.Context, record *models.PendingTopUp) (*models.PendingTopUp, error)
	FindByIDAndBuyer(ctx context.Context, id uuid.UUID, buyerID string) (*models.PendingTopUp, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.TopUpStatus) (bool, error)
	MarkReplayed(ctx context.Context, id uuid.UUID, orderIDs []string) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

type orderCreator interface {
	CreateOrders(ctx context.Context, buyerID string, submission pricing.Submission) (*orderapi.CreateOrdersResult, error)
}
