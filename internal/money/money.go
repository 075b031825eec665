// Package money represents currency values in integer minor units (cents).
// All arithmetic on Amount is plain integer arithmetic; decimal values only
// appear at the boundaries (request parsing, share values, display).
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is a currency value in minor units: Amount(1234) = 12.34 in major
// units. Signed, so it can carry net balances as well as expense totals.
type Amount int64

// Zero is the zero amount.
const Zero Amount = 0

// FromDecimal converts a major-unit decimal value (e.g. "12.34") to minor
// units. It fails if the value carries precision finer than the minor unit:
// a share of 0.005 has no exact representation and silently rounding it would
// break the reconciliation guarantees downstream.
func FromDecimal(d decimal.Decimal) (Amount, error) {
	shifted := d.Shift(2)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("amount %s has sub-cent precision", d.String())
	}
	return Amount(shifted.IntPart()), nil
}

// MustFromDecimal is FromDecimal for values known to be exact, such as
// literals in tests. It panics on sub-cent precision.
func MustFromDecimal(d decimal.Decimal) Amount {
	a, err := FromDecimal(d)
	if err != nil {
		panic(err)
	}
	return a
}

// Decimal returns the amount in major units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -2)
}

// Abs returns the absolute value.
func (a Amount) Abs() Amount {
	if a < 0 {
		return -a
	}
	return a
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool { return a == 0 }

// IsPositive reports whether the amount is greater than zero.
func (a Amount) IsPositive() bool { return a > 0 }

// IsNegative reports whether the amount is less than zero.
func (a Amount) IsNegative() bool { return a < 0 }

// String formats the amount in major units: Amount(1500) -> "15.00".
func (a Amount) String() string {
	return a.Decimal().StringFixed(2)
}

// MarshalJSON encodes the amount as a major-unit decimal string ("15.00"),
// which is how amounts cross the HTTP boundary.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON accepts either a JSON string ("15.00") or a bare number.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", s, err)
	}
	parsed, err := FromDecimal(d)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
