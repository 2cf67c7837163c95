package platform

import (
	"fmt"
	"time"

	"github.com/gastrohub/console-backend/pkg/enums"
	"github.com/gastrohub/console-backend/pkg/money"
)

// OrderIssue is a customer complaint attached to a paid order, as served by
// the order-issue platform. The console never creates or deletes issues.
type OrderIssue struct {
	ID           string              `json:"id"`
	OrderID      string              `json:"order_id"`
	RestaurantID string              `json:"restaurant_id"`
	Reason       enums.IssueReason   `json:"reason"`
	Description  string              `json:"description"`
	AdminNotes   *string             `json:"admin_notes,omitempty"`
	ManagerNotes *string             `json:"restaurant_manager_notes,omitempty"`
	Status       enums.IssueStatus   `json:"status"`
	Priority     enums.IssuePriority `json:"priority"`

	AssignedToManager bool       `json:"assigned_to_restaurant_manager"`
	AssignedAt        *time.Time `json:"assigned_at,omitempty"`

	OrderType          enums.OrderType          `json:"order_type"`
	OrderPaymentStatus enums.OrderPaymentStatus `json:"order_payment_status"`
	// PaymentMethod and Provider stay raw strings: unrecognized values must
	// classify as "unknown", never fail the decode.
	PaymentMethod string `json:"payment_method,omitempty"`
	Provider      string `json:"provider,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Validate enforces the strict boundary schema on a decoded issue.
func (i OrderIssue) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("issue id missing")
	}
	if i.OrderID == "" {
		return fmt.Errorf("issue %s: order id missing", i.ID)
	}
	if !i.Status.IsValid() {
		return fmt.Errorf("issue %s: invalid status %q", i.ID, i.Status)
	}
	if !i.Priority.IsValid() {
		return fmt.Errorf("issue %s: invalid priority %q", i.ID, i.Priority)
	}
	if !i.Reason.IsValid() {
		return fmt.Errorf("issue %s: invalid reason %q", i.ID, i.Reason)
	}
	return nil
}

// OrderItem is an immutable line item of the order underlying an issue.
type OrderItem struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	UnitPrice money.Cents `json:"unit_price"`
	Quantity  int         `json:"quantity"`
	Category  string      `json:"category,omitempty"`
	Unit      string      `json:"unit,omitempty"`
}

// Validate enforces the strict boundary schema on a decoded order item.
func (o OrderItem) Validate() error {
	if o.ID == "" {
		return fmt.Errorf("order item id missing")
	}
	if o.UnitPrice < 0 {
		return fmt.Errorf("order item %s: negative unit price", o.ID)
	}
	if o.Quantity <= 0 {
		return fmt.Errorf("order item %s: non-positive quantity %d", o.ID, o.Quantity)
	}
	return nil
}

// RefundItem is one refunded line of a partial refund request.
type RefundItem struct {
	OrderItemID string `json:"order_item_id"`
	Quantity    int    `json:"quantity"`
	Reason      string `json:"reason"`
}

// RefundRequest is the wire shape of POST /order-issues/{id}/refund.
// A nil Items slice signals a full refund; the field must then be absent
// from the serialized body.
type RefundRequest struct {
	Items        []RefundItem `json:"refund_items,omitempty"`
	RefundReason string       `json:"refund_reason"`
}

// IsFull reports whether the request asks for a full-order refund.
func (r RefundRequest) IsFull() bool {
	return len(r.Items) == 0
}

// RefundResult is the processor-authoritative outcome of a refund call.
type RefundResult struct {
	Amount   money.Cents      `json:"refund_amount"`
	Type     enums.RefundType `json:"refund_type"`
	RefundID *string          `json:"refund_id,omitempty"`
	Items    []RefundItem     `json:"refunded_items,omitempty"`
}
