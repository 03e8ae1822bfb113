package topup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/vendorcart-backend/internal/pricing"
	"github.com/angelmondragon/vendorcart-backend/pkg/db/models"
	"github.com/angelmondragon/vendorcart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/vendorcart-backend/pkg/errors"
	"github.com/angelmondragon/vendorcart-backend/pkg/logger"
)

// Service stores wallet submissions that wait on a deposit and replays them once funded.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*TopUp, error)
	Get(ctx context.Context, buyerID string, id uuid.UUID) (*TopUp, error)
	Complete(ctx context.Context, buyerID string, id uuid.UUID) (*TopUp, error)
}

// CreateInput describes a submission deferred for a wallet top-up.
type CreateInput struct {
	BuyerID    string
	SessionID  string
	Currency   enums.Currency
	Plan       pricing.PaymentPlan
	Submission pricing.Submission
}

// TopUp is the API view of a pending top-up.
type TopUp struct {
	ID            uuid.UUID          `json:"id"`
	BuyerID       string             `json:"buyer_id"`
	SessionID     string             `json:"session_id"`
	Shortfall     pricing.Money      `json:"shortfall"`
	GrandTotal    pricing.Money      `json:"grand_total"`
	Currency      enums.Currency     `json:"currency"`
	Status        enums.TopUpStatus  `json:"status"`
	Submission    pricing.Submission `json:"submission"`
	OrderIDs      []string           `json:"order_ids,omitempty"`
	FailureReason *string            `json:"failure_reason,omitempty"`
}

type service struct {
	repo   TopUpRepository
	orders orderCreator
	logg   *logger.Logger
}

// NewService builds a top-up service backed by the provided stack.
func NewService(repo TopUpRepository, orders orderCreator, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("top-up repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order creator required")
	}
	return &service{repo: repo, orders: orders, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*TopUp, error) {
	if strings.TrimSpace(input.BuyerID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	if !input.Plan.TopUpRequired || !input.Plan.Shortfall.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "top-up requires a positive shortfall")
	}
	payload, err := json.Marshal(input.Submission)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode submission")
	}

	record, err := s.repo.Create(ctx, &models.PendingTopUp{
		BuyerID:    input.BuyerID,
		SessionID:  input.SessionID,
		Shortfall:  input.Plan.Shortfall,
		GrandTotal: input.Plan.GrandTotal,
		Currency:   input.Currency,
		Submission: string(payload),
		Status:     enums.TopUpStatusPending,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist pending top-up")
	}
	return toTopUp(record)
}

func (s *service) Get(ctx context.Context, buyerID string, id uuid.UUID) (*TopUp, error) {
	record, err := s.load(ctx, buyerID, id)
	if err != nil {
		return nil, err
	}
	return toTopUp(record)
}

// Complete replays the stored submission once the deposit has landed. The
// pending → processing claim guarantees a single replay; a completed top-up is
// returned as is.
func (s *service) Complete(ctx context.Context, buyerID string, id uuid.UUID) (*TopUp, error) {
	record, err := s.load(ctx, buyerID, id)
	if err != nil {
		return nil, err
	}
	switch record.Status {
	case enums.TopUpStatusReplayed, enums.TopUpStatusFailed:
		return toTopUp(record)
	case enums.TopUpStatusProcessing:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "top-up replay already in progress")
	}

	claimed, err := s.repo.TransitionStatus(ctx, id, enums.TopUpStatusPending, enums.TopUpStatusProcessing)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim pending top-up")
	}
	if !claimed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "top-up replay already in progress")
	}

	var submission pricing.Submission
	if err := json.Unmarshal([]byte(record.Submission), &submission); err != nil {
		return nil, s.fail(ctx, record, "stored submission is unreadable", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode stored submission"))
	}

	ctx = s.withFields(ctx, record)
	result, err := s.orders.CreateOrders(ctx, record.BuyerID, submission)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeSubmissionRejected) {
			return nil, s.fail(ctx, record, pkgerrors.As(err).Message(), err)
		}
		if _, revertErr := s.repo.TransitionStatus(ctx, id, enums.TopUpStatusProcessing, enums.TopUpStatusPending); revertErr != nil && s.logg != nil {
			s.logg.Error(ctx, "topup.revert_claim_failed", revertErr)
		}
		return nil, err
	}

	if err := s.repo.MarkReplayed(ctx, id, result.OrderIDs); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark top-up replayed")
	}
	if s.logg != nil {
		s.logg.Info(ctx, "topup.replayed")
	}
	record.Status = enums.TopUpStatusReplayed
	record.OrderIDs = result.OrderIDs
	return toTopUp(record)
}

func (s *service) load(ctx context.Context, buyerID string, id uuid.UUID) (*models.PendingTopUp, error) {
	if strings.TrimSpace(buyerID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	record, err := s.repo.FindByIDAndBuyer(ctx, id, buyerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "top-up not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load top-up")
	}
	return record, nil
}

func (s *service) fail(ctx context.Context, record *models.PendingTopUp, reason string, cause error) error {
	if err := s.repo.MarkFailed(ctx, record.ID, reason); err != nil && s.logg != nil {
		s.logg.Error(ctx, "topup.mark_failed", err)
	}
	if s.logg != nil {
		s.logg.Warn(ctx, "topup.replay_rejected: "+reason)
	}
	return cause
}

func (s *service) withFields(ctx context.Context, record *models.PendingTopUp) context.Context {
	if s.logg == nil {
		return ctx
	}
	ctx = s.logg.WithBuyerID(ctx, record.BuyerID)
	ctx = s.logg.WithSessionID(ctx, record.SessionID)
	return s.logg.WithField(ctx, "topup_id", record.ID.String())
}

func toTopUp(record *models.PendingTopUp) (*TopUp, error) {
	var submission pricing.Submission
	if record.Submission != "" {
		if err := json.Unmarshal([]byte(record.Submission), &submission); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode stored submission")
		}
	}
	return &TopUp{
		ID:            record.ID,
		BuyerID:       record.BuyerID,
		SessionID:     record.SessionID,
		Shortfall:     record.Shortfall,
		GrandTotal:    record.GrandTotal,
		Currency:      record.Currency,
		Status:        record.Status,
		Submission:    submission,
		OrderIDs:      []string(record.OrderIDs),
		FailureReason: record.FailureReason,
	}, nil
}
