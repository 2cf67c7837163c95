package enums

import "fmt"

// IssuePriority ranks how urgently an issue needs attention.
type IssuePriority string

const (
	IssuePriorityLow    IssuePriority = "low"
	IssuePriorityNormal IssuePriority = "normal"
	IssuePriorityHigh   IssuePriority = "high"
)

var validIssuePriorities = []IssuePriority{
	IssuePriorityLow,
	IssuePriorityNormal,
	IssuePriorityHigh,
}

// String implements fmt.Stringer.
func (p IssuePriority) String() string {
	return string(p)
}

// IsValid reports whether the value is a known IssuePriority.
func (p IssuePriority) IsValid() bool {
	for _, candidate := range validIssuePriorities {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseIssuePriority converts raw input into an IssuePriority.
func ParseIssuePriority(value string) (IssuePriority, error) {
	for _, candidate := range validIssuePriorities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid issue priority %q", value)
}
