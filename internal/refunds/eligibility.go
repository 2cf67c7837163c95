package refunds

import (
	"github.com/gastrohub/console-backend/internal/payments"
	"github.com/gastrohub/console-backend/internal/platform"
	"github.com/gastrohub/console-backend/pkg/enums"
)

// Eligibility is the explicit refund policy decision for an issue.
type Eligibility struct {
	// Eligible reports whether any refund action is possible at all.
	Eligible bool
	// ViaProcessor reports whether the refund goes through the payment
	// processor. False with Eligible true means a manual record-only refund.
	ViaProcessor bool
	Method       enums.PaymentMethod
	Reason       string
}

// Evaluate applies the refund eligibility policy: processor refunds require a
// paid order on a processor-backed method; other paid orders allow a manual
// audit-only refund; unpaid orders allow nothing.
func Evaluate(issue platform.OrderIssue) Eligibility {
	if issue.OrderPaymentStatus != enums.OrderPaymentStatusPaid {
		return Eligibility{
			Eligible: false,
			Reason:   "order is not paid",
		}
	}

	method, known := payments.Method(issue)
	if !known {
		return Eligibility{
			Eligible:     true,
			ViaProcessor: false,
			Reason:       "payment method unknown, manual refund only",
		}
	}

	switch method {
	case enums.PaymentMethodStripe, enums.PaymentMethodPayPal:
		return Eligibility{
			Eligible:     true,
			ViaProcessor: true,
			Method:       method,
		}
	default:
		return Eligibility{
			Eligible:     true,
			ViaProcessor: false,
			Method:       method,
			Reason:       "cash orders are refunded at the counter",
		}
	}
}
