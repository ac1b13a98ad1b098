// Package types provides common types used across Streampay.
package types

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Amount represents a token quantity in the smallest indivisible unit.
// All arithmetic is unsigned integer-only — no floating point — and every
// operation saturates at the representable bounds instead of wrapping.
//
// Saturation on credit is an accepted lossy edge case at MaxAmount, not a
// silent bug: a credit that would overflow clamps to MaxAmount. Debits must
// never rely on SaturatingSub clamping to zero; callers check sufficiency
// first (see account ledger).
type Amount uint64

// Amount bounds.
const (
	ZeroAmount Amount = 0
	MaxAmount  Amount = math.MaxUint64
)

// NewAmount creates an Amount from a raw unit count.
func NewAmount(units uint64) Amount { return Amount(units) }

// ParseAmount parses a decimal unit string (e.g. "2500000") into an Amount.
// It is the lexical boundary for textual amounts: malformed or non-numeric
// input returns an error and text never reaches ledger arithmetic.
func ParseAmount(s string) (Amount, error) {
	if s == "" {
		return 0, fmt.Errorf("types: parse amount: empty string")
	}
	u, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("types: parse amount %q: %w", s, err)
	}
	return Amount(u), nil
}

// MustParseAmount is like ParseAmount but panics on error. Use for
// hardcoded values.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(fmt.Sprintf("types: must parse amount %q: %v", s, err))
	}
	return a
}

// Arithmetic operations

// SaturatingAdd returns a+b, clamping to MaxAmount on overflow.
func (a Amount) SaturatingAdd(b Amount) Amount {
	sum := a + b
	if sum < a {
		return MaxAmount
	}
	return sum
}

// SaturatingSub returns a-b, clamping to zero when b exceeds a.
func (a Amount) SaturatingSub(b Amount) Amount {
	if b > a {
		return ZeroAmount
	}
	return a - b
}

// SaturatingMul returns a*n, clamping to MaxAmount on overflow.
func (a Amount) SaturatingMul(n uint64) Amount {
	if a == 0 || n == 0 {
		return ZeroAmount
	}
	prod := uint64(a) * n
	if prod/n != uint64(a) {
		return MaxAmount
	}
	return Amount(prod)
}

// Comparison methods

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool { return a == 0 }

// IsPositive returns true if the amount is greater than zero.
func (a Amount) IsPositive() bool { return a > 0 }

// LessThan returns true if a < b.
func (a Amount) LessThan(b Amount) bool { return a < b }

// GreaterThan returns true if a > b.
func (a Amount) GreaterThan(b Amount) bool { return a > b }

// Min returns the smaller of two amounts.
func (a Amount) Min(b Amount) Amount {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of two amounts.
func (a Amount) Max(b Amount) Amount {
	if a > b {
		return a
	}
	return b
}

// Units returns the raw unit count.
func (a Amount) Units() uint64 { return uint64(a) }

// String returns the decimal unit representation. This is the canonical
// wire form for the query surface.
func (a Amount) String() string { return strconv.FormatUint(uint64(a), 10) }

// MarshalJSON encodes the amount as a decimal string so that values above
// 2^53 survive JSON consumers with float64 number handling.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts either a decimal string or a bare number.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, perr := ParseAmount(s)
		if perr != nil {
			return perr
		}
		*a = parsed
		return nil
	}
	var u uint64
	if err := json.Unmarshal(data, &u); err != nil {
		return fmt.Errorf("types: unmarshal amount: %w", err)
	}
	*a = Amount(u)
	return nil
}

// SumAmounts calculates the saturating sum of multiple amounts.
func SumAmounts(values ...Amount) Amount {
	var result Amount
	for _, v := range values {
		result = result.SaturatingAdd(v)
	}
	return result
}
