package evaluator

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Number is an arbitrary precision decimal. A Number can also be in the NaN
// state, produced by parsing text that is not a number. NaN is unrelated to
// every value and propagates through arithmetic.
type Number struct {
	Value decimal.Decimal
	nan   bool
}

// NaN is the not-a-number value.
var NaN = &Number{nan: true}

const (
	// MaxExponent bounds the magnitude of numbers: the adjusted exponent
	// (the power of ten of the leading digit) must lie within
	// [-MaxExponent, MaxExponent]. Literals outside are NaN and arithmetic
	// leaving the range is a MathError.
	MaxExponent = 10000

	// DivisionDigits is the number of significant digits kept when a
	// quotient does not terminate, so 1 / 3 is 0.333… with 34 threes.
	// Terminating quotients within that many digits are exact.
	DivisionDigits = 34
)

// adjustedExponent is the power of ten of the leading digit of d.
func adjustedExponent(d decimal.Decimal) int {
	if d.IsZero() {
		return 0
	}
	return d.NumDigits() + int(d.Exponent()) - 1
}

func inRange(d decimal.Decimal) bool {
	e := adjustedExponent(d)
	return e >= -MaxExponent && e <= MaxExponent
}

func NewNumber(d decimal.Decimal) *Number { return &Number{Value: d} }

func NumberFromInt(i int64) *Number { return &Number{Value: decimal.NewFromInt(i)} }

// NumberFromFloat converts a float. The result is the shortest decimal that
// round-trips the float, so 0.1 becomes exactly 0.1.
func NumberFromFloat(f float64) *Number { return &Number{Value: decimal.NewFromFloat(f)} }

// ParseNumber parses decimal text such as "12", "3.", ".25" or "1e3". An
// empty string is absent (ok is false). Text that is not a number yields NaN.
func ParseNumber(s string) (n *Number, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}

	text := s
	sign := ""
	if text[0] == '-' || text[0] == '+' {
		sign, text = text[:1], text[1:]
	}
	if strings.HasPrefix(text, ".") {
		text = "0" + text
	}
	if mantissa, exp, found := strings.Cut(text, "e"); found {
		text = strings.TrimSuffix(mantissa, ".") + "e" + exp
	} else if mantissa, exp, found := strings.Cut(text, "E"); found {
		text = strings.TrimSuffix(mantissa, ".") + "e" + exp
	} else {
		text = strings.TrimSuffix(text, ".")
	}
	if text == "" || !startsWithDigit(text) {
		return NaN, true
	}

	d, err := decimal.NewFromString(sign + text)
	if err != nil {
		return NaN, true
	}
	if d.IsZero() {
		// 0e999999999 would rescale into a huge coefficient later
		return &Number{Value: decimal.Zero}, true
	}
	if !inRange(d) {
		return NaN, true
	}
	return &Number{Value: d}, true
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

// IsNaN reports whether n is the not-a-number value.
func (n *Number) IsNaN() bool { return n.nan }

// String is the canonical form: no exponent and no trailing fractional zeros.
func (n *Number) String() string {
	if n.nan {
		return "NaN"
	}
	return n.Value.String()
}

func (n *Number) TypeString() string { return NUMBER_TYPE }
func (n *Number) Inspect() string    { return n.String() }

func (n *Number) Negate() Value {
	if n.nan {
		return NaN
	}
	return &Number{Value: n.Value.Neg()}
}

// arithmetic applies op when other is a Number. NaN on either side yields NaN.
// A result whose magnitude leaves the MaxExponent range is a MathError.
func (n *Number) arithmetic(other Value, op func(a, b decimal.Decimal) Value) Value {
	o, ok := other.(*Number)
	if !ok {
		return nil
	}
	if n.nan || o.nan {
		return NaN
	}
	result := op(n.Value, o.Value)
	if r, ok := result.(*Number); ok && !inRange(r.Value) {
		return newError("MATH-0003", map[string]any{"Limit": MaxExponent})
	}
	return result
}

func (n *Number) Add(other Value) Value {
	return n.arithmetic(other, func(a, b decimal.Decimal) Value { return &Number{Value: a.Add(b)} })
}

func (n *Number) Subtract(other Value) Value {
	return n.arithmetic(other, func(a, b decimal.Decimal) Value { return &Number{Value: a.Sub(b)} })
}

func (n *Number) Multiply(other Value) Value {
	return n.arithmetic(other, func(a, b decimal.Decimal) Value { return &Number{Value: a.Mul(b)} })
}

func (n *Number) Divide(other Value) Value {
	return n.arithmetic(other, func(a, b decimal.Decimal) Value {
		if b.IsZero() {
			return newError("MATH-0001", nil)
		}
		return &Number{Value: a.DivRound(b, divisionPlaces(a, b))}
	})
}

// divisionPlaces is the number of fractional digits that keeps
// DivisionDigits significant digits of a / b, but never fewer than
// decimal.DivisionPrecision.
func divisionPlaces(a, b decimal.Decimal) int32 {
	places := DivisionDigits - (adjustedExponent(a) - adjustedExponent(b))
	return int32(max(places, decimal.DivisionPrecision))
}

func (n *Number) Mod(other Value) Value {
	return n.arithmetic(other, func(a, b decimal.Decimal) Value {
		if b.IsZero() {
			return newError("MATH-0001", nil)
		}
		return &Number{Value: a.Mod(b)}
	})
}

func (n *Number) Compare(other Value) Ordering {
	o, ok := other.(*Number)
	if !ok || n.nan || o.nan {
		return Unrelated
	}
	switch n.Value.Cmp(o.Value) {
	case -1:
		return Ascending
	case 1:
		return Descending
	}
	return Same
}
