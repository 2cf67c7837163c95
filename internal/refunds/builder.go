package refunds

import (
	"fmt"

	"github.com/gastrohub/console-backend/internal/platform"
	"github.com/gastrohub/console-backend/pkg/enums"
	pkgerrors "github.com/gastrohub/console-backend/pkg/errors"
)

// BuildPartial turns a manager selection into the wire request for a partial
// refund. It fails before any network traffic when nothing is selected with a
// positive quantity.
func BuildPartial(items []platform.OrderItem, selection []SelectedItem, reason enums.IssueReason) (platform.RefundRequest, error) {
	byID := make(map[string]platform.OrderItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	refundItems := make([]platform.RefundItem, 0, len(selection))
	for _, sel := range selection {
		item, ok := byID[sel.OrderItemID]
		if !ok {
			return platform.RefundRequest{}, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("selected item %s is not part of the order", sel.OrderItemID))
		}
		qty := ClampQuantity(sel.Quantity, item.Quantity)
		if qty == 0 {
			continue
		}
		refundItems = append(refundItems, platform.RefundItem{
			OrderItemID: sel.OrderItemID,
			Quantity:    qty,
			Reason:      reasonText(reason),
		})
	}

	if len(refundItems) == 0 {
		return platform.RefundRequest{}, pkgerrors.New(pkgerrors.CodeValidation, "no items selected for refund")
	}

	return platform.RefundRequest{
		Items:        refundItems,
		RefundReason: reasonText(reason),
	}, nil
}

// BuildFull builds the wire request for a full-order refund. The items field
// stays absent; the platform computes the amount.
func BuildFull(reason enums.IssueReason) platform.RefundRequest {
	return platform.RefundRequest{RefundReason: reasonText(reason)}
}

func reasonText(reason enums.IssueReason) string {
	return "Reklamation: " + reason.Label()
}
