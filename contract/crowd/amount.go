package crowd

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// AmountScale is the fixed-point precision: 1 token == 1000 raw units.
const AmountScale = 1000

// Amount is a scaled token quantity. All balances, targets and vote powers use it.
type Amount int64

// AmountToInt64 exposes the raw scaled int64 for ledger transfers.
func AmountToInt64(v Amount) int64 {
	return int64(v)
}

// ParseAmount reads decimal text ("30", "1.4", "0.125") without going through floats.
// More than three decimals is rejected rather than silently rounded.
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	scaled := d.Shift(3)
	if !scaled.IsInteger() {
		return 0, fmt.Errorf("invalid amount %q: more than 3 decimals", s)
	}
	if scaled.GreaterThan(decimal.NewFromInt(math.MaxInt64)) || scaled.LessThan(decimal.NewFromInt(math.MinInt64)) {
		return 0, fmt.Errorf("invalid amount %q: out of range", s)
	}
	return Amount(scaled.IntPart()), nil
}

// MustAmount is ParseAmount for literals in tests and fixtures.
func MustAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// String prints the amount with its three fixed decimals, e.g. 1.400.
func (a Amount) String() string {
	return decimal.New(int64(a), -3).StringFixed(3)
}

// MulDiv returns floor(a*b/c) without overflowing int64 on the intermediate product.
// c must be positive; a and b are expected to be non-negative.
func MulDiv(a, b, c Amount) Amount {
	if c <= 0 {
		panic("crowd: MulDiv by non-positive divisor")
	}
	q, _ := decimal.NewFromInt(int64(a)).Mul(decimal.NewFromInt(int64(b))).QuoRem(decimal.NewFromInt(int64(c)), 0)
	return Amount(q.IntPart())
}

// MinAmount returns the smaller of two amounts.
func MinAmount(a, b Amount) Amount {
	if a < b {
		return a
	}
	return b
}
