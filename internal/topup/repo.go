package topup

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/angelmondragon/vendorcart-backend/pkg/db/models"
	"github.com/angelmondragon/vendorcart-backend/pkg/enums"
)

// Repository persists deferred wallet submissions.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a pending top-up, assigning an id when none is set.
func (r *Repository) Create(ctx context.Context, record *models.PendingTopUp) (*models.PendingTopUp, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.Status == "" {
		record.Status = enums.TopUpStatusPending
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// FindByIDAndBuyer loads a top-up owned by buyerID.
func (r *Repository) FindByIDAndBuyer(ctx context.Context, id uuid.UUID, buyerID string) (*models.PendingTopUp, error) {
	var record models.PendingTopUp
	err := r.db.WithContext(ctx).
		Where("id = ? AND buyer_id = ?", id, buyerID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// TransitionStatus moves a top-up from one status to another and reports whether
// this call performed the move.
func (r *Repository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.TopUpStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PendingTopUp{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// MarkReplayed records the orders created by a successful replay.
func (r *Repository) MarkReplayed(ctx context.Context, id uuid.UUID, orderIDs []string) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&models.PendingTopUp{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":      enums.TopUpStatusReplayed,
			"order_ids":   pq.StringArray(orderIDs),
			"replayed_at": now,
			"updated_at":  now,
		}).Error
}

// MarkFailed stores the rejection reason of a replay the order service refused.
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return r.db.WithContext(ctx).
		Model(&models.PendingTopUp{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":         enums.TopUpStatusFailed,
			"failure_reason": reason,
			"updated_at":     time.Now().UTC(),
		}).Error
}

// ReleaseStaleClaims returns top-ups left in processing since before cutoff to
// pending so a later completion can claim them again.
func (r *Repository) ReleaseStaleClaims(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PendingTopUp{}).
		Where("status = ? AND updated_at < ?", enums.TopUpStatusProcessing, cutoff).
		Updates(map[string]any{"status": enums.TopUpStatusPending, "updated_at": time.Now().UTC()})
	return res.RowsAffected, res.Error
}

// ExpirePending fails pending top-ups created before cutoff.
func (r *Repository) ExpirePending(ctx context.Context, cutoff time.Time, reason string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PendingTopUp{}).
		Where("status = ? AND created_at < ?", enums.TopUpStatusPending, cutoff).
		Updates(map[string]any{
			"status":         enums.TopUpStatusFailed,
			"failure_reason": reason,
			"updated_at":     time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}
