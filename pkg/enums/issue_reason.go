package enums

import "fmt"

// IssueReason categorizes why a customer filed a complaint.
type IssueReason string

const (
	IssueReasonColdFood     IssueReason = "cold_food"
	IssueReasonWrongOrder   IssueReason = "wrong_order"
	IssueReasonMissingItems IssueReason = "missing_items"
	IssueReasonLateDelivery IssueReason = "late_delivery"
	IssueReasonPoorQuality  IssueReason = "poor_quality"
	IssueReasonOther        IssueReason = "other"
)

var validIssueReasons = []IssueReason{
	IssueReasonColdFood,
	IssueReasonWrongOrder,
	IssueReasonMissingItems,
	IssueReasonLateDelivery,
	IssueReasonPoorQuality,
	IssueReasonOther,
}

var issueReasonLabels = map[IssueReason]string{
	IssueReasonColdFood:     "Kaltes Essen",
	IssueReasonWrongOrder:   "Falsche Bestellung",
	IssueReasonMissingItems: "Fehlende Artikel",
	IssueReasonLateDelivery: "Verspätete Lieferung",
	IssueReasonPoorQuality:  "Mangelhafte Qualität",
	IssueReasonOther:        "Sonstiges",
}

// String implements fmt.Stringer.
func (r IssueReason) String() string {
	return string(r)
}

// Label returns the human-readable label used in refund reasons and audit text.
func (r IssueReason) Label() string {
	if label, ok := issueReasonLabels[r]; ok {
		return label
	}
	return issueReasonLabels[IssueReasonOther]
}

// IsValid reports whether the value is a known IssueReason.
func (r IssueReason) IsValid() bool {
	for _, candidate := range validIssueReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseIssueReason converts raw input into an IssueReason.
func ParseIssueReason(value string) (IssueReason, error) {
	for _, candidate := range validIssueReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid issue reason %q", value)
}
