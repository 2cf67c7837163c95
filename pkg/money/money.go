package money

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Cents is a monetary amount in integer minor units. All arithmetic in the
// refund core happens on this type so repeated quantity edits cannot
// accumulate floating-point drift.
type Cents int64

// FromDecimal converts a wire-format decimal (e.g. "5.00") into Cents.
// More than two fractional digits is rejected rather than rounded; the
// platform contract fixes the wire precision at two decimal places.
func FromDecimal(d decimal.Decimal) (Cents, error) {
	scaled := d.Mul(decimal.NewFromInt(100))
	if !scaled.IsInteger() {
		return 0, fmt.Errorf("amount %s has more than two decimal places", d.String())
	}
	return Cents(scaled.IntPart()), nil
}

// FromString parses a decimal string into Cents.
func FromString(value string) (Cents, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("parsing amount %q: %w", value, err)
	}
	return FromDecimal(d)
}

// Decimal returns the amount as a decimal scaled to two places.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// String renders the amount with exactly two decimal places.
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// Mul scales the amount by an integer quantity.
func (c Cents) Mul(qty int) Cents {
	return c * Cents(qty)
}

// MarshalJSON emits the amount as a JSON number with two decimal places.
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(c.Decimal().StringFixed(2)), nil
}

// UnmarshalJSON accepts a JSON number or decimal string.
func (c *Cents) UnmarshalJSON(data []byte) error {
	var raw json.Number
	if err := json.Unmarshal(data, &raw); err != nil {
		// fall back to quoted decimals ("5.00")
		var s string
		if strErr := json.Unmarshal(data, &s); strErr != nil {
			return err
		}
		raw = json.Number(s)
	}
	parsed, err := FromString(raw.String())
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
