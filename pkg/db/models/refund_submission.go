package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gastrohub/console-backend/pkg/enums"
)

// RefundSubmission journals every submission attempt before it leaves the
// console. After a timeout with unknown outcome, the journal row answers
// whether the attempt ever completed.
type RefundSubmission struct {
	ID             uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	IssueID        string           `gorm:"column:issue_id;not null;index"`
	RestaurantID   string           `gorm:"column:restaurant_id;not null;index"`
	RefundType     enums.RefundType `gorm:"column:refund_type;not null"`
	AmountCents    *int64           `gorm:"column:amount_cents"`
	IdempotencyKey string           `gorm:"column:idempotency_key;not null;uniqueIndex"`
	Completed      bool             `gorm:"column:completed;not null;default:false"`
	Succeeded      bool             `gorm:"column:succeeded;not null;default:false"`
	FailureMessage *string          `gorm:"column:failure_message"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	CompletedAt    *time.Time       `gorm:"column:completed_at"`
}
