package pricing

import "math"

// Money represents a monetary value stored in minor units.
type Money = int64

const (
	// BasisPointsScale is the denominator for values expressed in basis points.
	BasisPointsScale int64 = 10000
	// PercentScale is the denominator for whole-number percentages.
	PercentScale int64 = 100
)

// RoundHalfUp divides num by den rounding halves away from zero. den must be positive.
func RoundHalfUp(num, den int64) int64 {
	if den <= 0 {
		panic("pricing: RoundHalfUp requires a positive denominator")
	}
	q := num / den
	r := num % den
	if r < 0 {
		r = -r
	}
	if 2*r >= den {
		if num < 0 {
			q--
		} else {
			q++
		}
	}
	return q
}

// PercentOf returns amount*value/scale rounded half up. It fails with ErrAmountOverflow
// when amount*value does not fit in int64.
func PercentOf(amount Money, value, scale int64) (Money, error) {
	product, err := mulMoney(amount, value)
	if err != nil {
		return 0, err
	}
	return RoundHalfUp(product, scale), nil
}

func mulMoney(a, b int64) (Money, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, ErrAmountOverflow
	}
	c := a * b
	if c/b != a {
		return 0, ErrAmountOverflow
	}
	return c, nil
}

func addMoney(a, b Money) (Money, error) {
	c := a + b
	if (b > 0 && c < a) || (b < 0 && c > a) {
		return 0, ErrAmountOverflow
	}
	return c, nil
}

func clampNonNegative(v Money) Money {
	if v < 0 {
		return 0
	}
	return v
}
