package enums

import "fmt"

// RefundOutcome records how a refund attempt ended in the audit trail.
type RefundOutcome string

const (
	RefundOutcomeProcessed RefundOutcome = "processed"
	RefundOutcomeManual    RefundOutcome = "manual"
	RefundOutcomeFailed    RefundOutcome = "failed"
)

var validRefundOutcomes = []RefundOutcome{
	RefundOutcomeProcessed,
	RefundOutcomeManual,
	RefundOutcomeFailed,
}

// String implements fmt.Stringer.
func (r RefundOutcome) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RefundOutcome.
func (r RefundOutcome) IsValid() bool {
	for _, candidate := range validRefundOutcomes {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRefundOutcome converts raw input into a RefundOutcome.
func ParseRefundOutcome(value string) (RefundOutcome, error) {
	for _, candidate := range validRefundOutcomes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid refund outcome %q", value)
}
