package refunds

import (
	"github.com/gastrohub/console-backend/internal/platform"
	"github.com/gastrohub/console-backend/pkg/money"
)

// SelectedItem is one manager-chosen line of a partial refund.
type SelectedItem struct {
	OrderItemID string `json:"order_item_id" validate:"required"`
	Quantity    int    `json:"quantity" validate:"gte=0"`
}

// ClampQuantity bounds a requested quantity to what the order actually
// contains. Negative requests clamp to zero.
func ClampQuantity(requested, ordered int) int {
	if requested < 0 {
		return 0
	}
	if requested > ordered {
		return ordered
	}
	return requested
}

// ComputeTotal sums unit price times clamped quantity over the selection.
// Items selected with quantity zero contribute nothing; selections referencing
// items the order does not contain are ignored.
func ComputeTotal(items []platform.OrderItem, selection []SelectedItem) money.Cents {
	byID := make(map[string]platform.OrderItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	var total money.Cents
	for _, sel := range selection {
		item, ok := byID[sel.OrderItemID]
		if !ok {
			continue
		}
		qty := ClampQuantity(sel.Quantity, item.Quantity)
		if qty == 0 {
			continue
		}
		total += item.UnitPrice.Mul(qty)
	}
	return total
}

// OrderTotal is the full value of the order's line items.
func OrderTotal(items []platform.OrderItem) money.Cents {
	var total money.Cents
	for _, item := range items {
		total += item.UnitPrice.Mul(item.Quantity)
	}
	return total
}
