package enums

import "fmt"

// PaymentCategory is the coarse bucket the classifier assigns to an issue's
// payment context. It drives the icon and the refund path (processor vs manual).
type PaymentCategory string

const (
	PaymentCategoryCard    PaymentCategory = "card"
	PaymentCategoryWallet  PaymentCategory = "wallet"
	PaymentCategoryCash    PaymentCategory = "cash"
	PaymentCategoryUnknown PaymentCategory = "unknown"
)

var validPaymentCategories = []PaymentCategory{
	PaymentCategoryCard,
	PaymentCategoryWallet,
	PaymentCategoryCash,
	PaymentCategoryUnknown,
}

// String implements fmt.Stringer.
func (p PaymentCategory) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentCategory.
func (p PaymentCategory) IsValid() bool {
	for _, candidate := range validPaymentCategories {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentCategory converts raw input into a PaymentCategory.
func ParsePaymentCategory(value string) (PaymentCategory, error) {
	for _, candidate := range validPaymentCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment category %q", value)
}
