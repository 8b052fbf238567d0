// Package money provides exact fixed-point amounts with two fractional
// digits. All ledger arithmetic goes through this type; float64 never touches
// a monetary value.
package money

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrPrecision is returned when a value carries more than two decimal places.
	ErrPrecision = errors.New("amount must have at most two decimal places")
	// ErrInvalid is returned when a value cannot be parsed as a decimal amount.
	ErrInvalid = errors.New("invalid amount")
)

// Money is an exact decimal amount with two fractional digits.
// The zero value is 0.00.
type Money struct {
	d decimal.Decimal
}

// Zero is the 0.00 amount.
var Zero = Money{}

// Parse converts a decimal string like "12.34" into a Money value.
// Values with more than two fractional digits are rejected rather than
// rounded.
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	if d.Exponent() < -2 {
		return Money{}, fmt.Errorf("%w: %q", ErrPrecision, s)
	}
	return Money{d: d}, nil
}

// MustParse is Parse for statically known values; it panics on error.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// FromCents builds a Money value from an integer number of cents.
func FromCents(cents int64) Money {
	return Money{d: decimal.New(cents, -2)}
}

// Cents returns the amount as an integer number of cents.
func (m Money) Cents() int64 {
	return m.d.Shift(2).IntPart()
}

func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }
func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d)} }
func (m Money) Neg() Money        { return Money{d: m.d.Neg()} }

// Equal reports exact decimal equality, ignoring representation.
func (m Money) Equal(o Money) bool { return m.d.Equal(o.d) }

func (m Money) IsZero() bool     { return m.d.IsZero() }
func (m Money) IsPositive() bool { return m.d.IsPositive() }
func (m Money) IsNegative() bool { return m.d.IsNegative() }

// Cmp returns -1, 0 or 1 comparing m to o.
func (m Money) Cmp(o Money) int { return m.d.Cmp(o.d) }

// SplitEven divides the amount into n shares that sum exactly to the
// original value. The division is done in cents; leftover cents are handed
// out one each to the earliest shares, so shares differ by at most one cent
// and the first shares carry the remainder.
func (m Money) SplitEven(n int) ([]Money, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: cannot split among %d", ErrInvalid, n)
	}
	cents := m.Cents()
	base := cents / int64(n)
	remainder := cents % int64(n)
	if remainder < 0 {
		// Keep the remainder non-negative for negative amounts.
		base--
		remainder += int64(n)
	}
	shares := make([]Money, n)
	for i := range shares {
		c := base
		if int64(i) < remainder {
			c++
		}
		shares[i] = FromCents(c)
	}
	return shares, nil
}

// Sum adds a sequence of amounts, returning 0.00 for an empty sequence.
func Sum(ms []Money) Money {
	total := Zero
	for _, m := range ms {
		total = total.Add(m)
	}
	return total
}

// String renders the amount with exactly two decimal places, e.g. "50.00".
func (m Money) String() string {
	return m.d.StringFixed(2)
}

// MarshalJSON encodes the amount as a JSON string to avoid float coercion.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts both "12.34" and 12.34 for convenience; precision
// rules are the same as Parse.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value implements driver.Valuer; amounts are stored as fixed-point text so
// the database never sees a float.
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

// Scan implements sql.Scanner for TEXT and NUMERIC columns.
func (m *Money) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = Zero
		return nil
	case string:
		parsed, err := Parse(v)
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	case []byte:
		parsed, err := Parse(string(v))
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalid, src)
	}
}
