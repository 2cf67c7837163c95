package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/gastrohub/console-backend/pkg/enums"
)

// RefundAuditEntry records the outcome of every refund attempt. Manual and
// cash refunds exist only here; they never reach the payment processor.
type RefundAuditEntry struct {
	ID             uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	IssueID        string              `gorm:"column:issue_id;not null;index"`
	OrderID        string              `gorm:"column:order_id;not null;index"`
	RestaurantID   string              `gorm:"column:restaurant_id;not null;index"`
	Outcome        enums.RefundOutcome `gorm:"column:outcome;not null"`
	RefundType     enums.RefundType    `gorm:"column:refund_type;not null"`
	AmountCents    int64               `gorm:"column:amount_cents;not null"`
	Currency       string              `gorm:"column:currency;not null;default:'eur'"`
	Reason         string              `gorm:"column:reason;not null"`
	ProcessorRef   *string             `gorm:"column:processor_ref"`
	IdempotencyKey string              `gorm:"column:idempotency_key;not null;uniqueIndex"`
	Metadata       json.RawMessage     `gorm:"column:metadata;type:jsonb"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
}
