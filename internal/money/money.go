// Package money represents monetary amounts as integer cents.
//
// Amounts are stored and summed as int64 cents so that aggregating many
// small transactions never accumulates floating-point drift. Floats only
// appear at the JSON boundary, rounded to two decimal places.
package money

import (
	"errors"
	"math"
	"strconv"
)

// ErrInvalidAmount is returned for amounts that are not positive finite numbers.
var ErrInvalidAmount = errors.New("amount must be a positive number")

// Cents is a monetary amount in cents (kuruş).
type Cents int64

// maxAmount guards against overflow when converting from float64.
const maxAmount = float64(1<<62) / 100

// FromFloat converts a decimal amount to Cents, rounding half away from
// zero at the third decimal place. It rejects zero, negative and
// non-finite values.
func FromFloat(v float64) (Cents, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidAmount
	}
	if v <= 0 || v > maxAmount {
		return 0, ErrInvalidAmount
	}
	c := Cents(math.Round(v * 100))
	if c <= 0 {
		return 0, ErrInvalidAmount
	}
	return c, nil
}

// Float64 returns the amount as a float for display purposes.
// Use Cents for arithmetic, never the float form.
func (c Cents) Float64() float64 {
	return float64(c) / 100.0
}

// MarshalJSON renders the amount as a JSON number with two decimals.
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(c.Float64(), 'f', 2, 64)), nil
}

// UnmarshalJSON parses a JSON number into Cents. Unlike FromFloat it
// accepts zero, so that zero-valued fields round-trip; validation of
// request amounts stays with FromFloat.
func (c *Cents) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ErrInvalidAmount
	}
	*c = Cents(math.Round(v * 100))
	return nil
}
