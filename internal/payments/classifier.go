package payments

import (
	"strings"

	"github.com/gastrohub/console-backend/internal/platform"
	"github.com/gastrohub/console-backend/pkg/enums"
)

// Display is the console-facing rendering of how an order was paid.
type Display struct {
	Label    string                `json:"label"`
	Category enums.PaymentCategory `json:"category"`
	Icon     string                `json:"icon"`
}

const (
	iconCard    = "credit-card"
	iconWallet  = "wallet"
	iconCash    = "banknote"
	iconNeutral = "circle-help"
)

// Classify maps an issue's payment fields to a display descriptor. The
// payment_method field wins over provider; a dine-in order that is still
// pending counts as cash at the table. Unknown values produce the neutral
// descriptor, never an error.
func Classify(issue platform.OrderIssue) Display {
	if d, ok := classifyValue(issue.PaymentMethod); ok {
		return d
	}
	if d, ok := classifyValue(issue.Provider); ok {
		return d
	}
	if issue.OrderType == enums.OrderTypeDineIn && issue.OrderPaymentStatus == enums.OrderPaymentStatusPending {
		return Display{Label: "cash, pending", Category: enums.PaymentCategoryCash, Icon: iconCash}
	}
	return Display{Label: "unknown", Category: enums.PaymentCategoryUnknown, Icon: iconNeutral}
}

func classifyValue(value string) (Display, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(enums.PaymentMethodStripe):
		return Display{Label: "Stripe", Category: enums.PaymentCategoryCard, Icon: iconCard}, true
	case string(enums.PaymentMethodPayPal):
		return Display{Label: "PayPal", Category: enums.PaymentCategoryWallet, Icon: iconWallet}, true
	case string(enums.PaymentMethodCash):
		return Display{Label: "cash", Category: enums.PaymentCategoryCash, Icon: iconCash}, true
	}
	return Display{}, false
}

// Method parses the effective payment method of an issue, if it is one the
// console recognizes. The second return is false for unknown methods.
func Method(issue platform.OrderIssue) (enums.PaymentMethod, bool) {
	for _, candidate := range []string{issue.PaymentMethod, issue.Provider} {
		method := enums.PaymentMethod(strings.ToLower(strings.TrimSpace(candidate)))
		if method.IsValid() {
			return method, true
		}
	}
	if issue.OrderType == enums.OrderTypeDineIn && issue.OrderPaymentStatus == enums.OrderPaymentStatusPending {
		return enums.PaymentMethodCash, true
	}
	return "", false
}
