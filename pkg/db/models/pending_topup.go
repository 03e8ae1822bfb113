package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/vendorcart-backend/pkg/enums"
)

// PendingTopUp holds a checkout submission deferred until the buyer's wallet is funded.
type PendingTopUp struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	BuyerID       string            `gorm:"column:buyer_id;not null"`
	SessionID     string            `gorm:"column:session_id;not null"`
	Shortfall     decimal.Decimal   `gorm:"column:shortfall;type:numeric(20,4);not null"`
	GrandTotal    decimal.Decimal   `gorm:"column:grand_total;type:numeric(20,4);not null"`
	Currency      enums.Currency    `gorm:"column:currency;not null"`
	Submission    string            `gorm:"column:submission;type:jsonb;not null"`
	Status        enums.TopUpStatus `gorm:"column:status;not null;default:'pending'"`
	OrderIDs      pq.StringArray    `gorm:"column:order_ids;type:text[]"`
	FailureReason *string           `gorm:"column:failure_reason"`
	ReplayedAt    *time.Time        `gorm:"column:replayed_at"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (PendingTopUp) TableName() string {
	return "pending_topups"
}
