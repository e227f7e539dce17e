package evaluator

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxRangeLength is the largest list range(…) builds. Natives run to
// completion without consulting the time budget, so their work is capped.
const MaxRangeLength = 100_000

var (
	minInt64 = decimal.NewFromInt(math.MinInt64)
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
)

// DefaultGlobalScope returns a global scope seeded with the built-in
// natives.
func DefaultGlobalScope() *Scope {
	scope := NewScope()
	for name, native := range getBuiltins() {
		scope.Set(name, native)
	}
	return scope
}

// BuiltinNames returns the names of the built-in natives, sorted.
func BuiltinNames() []string {
	builtins := getBuiltins()
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func getBuiltins() map[string]*Native {
	natives := []*Native{
		NewNative("count", 1, builtinCount),
		NewNative("len", 1, builtinLen),
		NewNative("str", 1, func(args []Value) Value { return NewString(args[0].Inspect()) }),
		NewNative("number", 1, builtinNumber),
		NewNative("type", 1, func(args []Value) Value { return NewString(args[0].TypeString()) }),
		NewNative("keys", 1, builtinKeys),
		NewNative("values", 1, builtinValues),
		NewNative("append", 2, builtinAppend),
		NewNative("join", -1, builtinJoin),
		NewNative("split", 2, builtinSplit),
		NewNative("range", -1, builtinRange),
		NewNative("abs", 1, numericNative("abs", decimal.Decimal.Abs)),
		NewNative("floor", 1, numericNative("floor", decimal.Decimal.Floor)),
		NewNative("ceil", 1, numericNative("ceil", decimal.Decimal.Ceil)),
		NewNative("round", -1, builtinRound),
		NewNative("min", -1, extremeNative("min", Ascending)),
		NewNative("max", -1, extremeNative("max", Descending)),
		NewNative("now", 0, builtinNow),
		NewNative("date", 1, builtinDate),
		NewNative("formatDate", -1, builtinFormatDate),
		NewNative("formatNumber", -1, builtinFormatNumber),
		NewNative("upper", -1, caseNative("upper")),
		NewNative("lower", -1, caseNative("lower")),
		NewNative("title", -1, caseNative("title")),
		NewNative("normalize", -1, builtinNormalize),
		NewNative("markdown", 1, builtinMarkdown),
	}

	builtins := make(map[string]*Native, len(natives))
	for _, n := range natives {
		builtins[n.Name] = n
	}
	return builtins
}

// Argument helpers

func argString(function string, v Value) (string, *Error) {
	s, ok := v.(*String)
	if !ok {
		return "", newArgumentTypeError(function, "a String", v)
	}
	return s.Value, nil
}

func argNumber(function string, v Value) (*Number, *Error) {
	n, ok := v.(*Number)
	if !ok {
		return nil, newArgumentTypeError(function, "a Number", v)
	}
	return n, nil
}

func argList(function string, v Value) (*List, *Error) {
	l, ok := v.(*List)
	if !ok {
		return nil, newArgumentTypeError(function, "a List", v)
	}
	return l, nil
}

func argInteger(function string, v Value) (int64, *Error) {
	n, err := argNumber(function, v)
	if err != nil {
		return 0, err
	}
	if n.IsNaN() || !n.Value.IsInteger() {
		return 0, newArgumentError(function, "expected an integer, got "+n.String())
	}
	if n.Value.LessThan(minInt64) || n.Value.GreaterThan(maxInt64) {
		return 0, newArgumentError(function, "integer "+n.String()+" out of range")
	}
	return n.Value.IntPart(), nil
}

func checkArity(function string, args []Value, min, max int) *Error {
	if len(args) < min || len(args) > max {
		want := any(min)
		if min != max {
			want = fmt.Sprintf("%d to %d", min, max)
		}
		return newArityError(function, want, len(args))
	}
	return nil
}

// Natives

func builtinCount(args []Value) Value {
	switch arg := args[0].(type) {
	case *List:
		return NumberFromInt(int64(len(arg.Elements)))
	case *Dictionary:
		return NumberFromInt(int64(arg.Len()))
	case *String:
		return NumberFromInt(int64(len([]rune(arg.Value))))
	}
	return newArgumentTypeError("count", "a List, Dictionary or String", args[0])
}

func builtinLen(args []Value) Value {
	switch arg := args[0].(type) {
	case *String:
		return NumberFromInt(int64(len([]rune(arg.Value))))
	case *List:
		return NumberFromInt(int64(len(arg.Elements)))
	}
	return newArgumentTypeError("len", "a String or List", args[0])
}

// builtinNumber converts text to a Number. Empty text gives null and text
// that is not a number gives NaN.
func builtinNumber(args []Value) Value {
	switch arg := args[0].(type) {
	case *Number:
		return arg
	case *Boolean:
		if arg.Value {
			return NumberFromInt(1)
		}
		return NumberFromInt(0)
	case *String:
		n, ok := ParseNumber(arg.Value)
		if !ok {
			return NULL
		}
		return n
	}
	return newArgumentTypeError("number", "a String, Number or Boolean", args[0])
}

func builtinKeys(args []Value) Value {
	d, ok := args[0].(*Dictionary)
	if !ok {
		return newArgumentTypeError("keys", "a Dictionary", args[0])
	}
	keys := d.Keys()
	elements := make([]Value, len(keys))
	for i, k := range keys {
		elements[i] = NewString(k)
	}
	return NewList(elements...)
}

func builtinValues(args []Value) Value {
	d, ok := args[0].(*Dictionary)
	if !ok {
		return newArgumentTypeError("values", "a Dictionary", args[0])
	}
	elements := make([]Value, 0, d.Len())
	for _, k := range d.Keys() {
		v, _ := d.Get(k)
		elements = append(elements, v)
	}
	return NewList(elements...)
}

// builtinAppend appends to the list in place and returns it.
func builtinAppend(args []Value) Value {
	l, err := argList("append", args[0])
	if err != nil {
		return err
	}
	l.Elements = append(l.Elements, args[1])
	return l
}

func builtinJoin(args []Value) Value {
	if err := checkArity("join", args, 1, 2); err != nil {
		return err
	}
	l, err := argList("join", args[0])
	if err != nil {
		return err
	}
	sep := ""
	if len(args) == 2 {
		if sep, err = argString("join", args[1]); err != nil {
			return err
		}
	}
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = e.Inspect()
	}
	return NewString(strings.Join(parts, sep))
}

func builtinSplit(args []Value) Value {
	s, err := argString("split", args[0])
	if err != nil {
		return err
	}
	sep, err := argString("split", args[1])
	if err != nil {
		return err
	}
	parts := strings.Split(s, sep)
	elements := make([]Value, len(parts))
	for i, p := range parts {
		elements[i] = NewString(p)
	}
	return NewList(elements...)
}

// builtinRange returns [0, n) for range(n) and [a, b) for range(a, b).
func builtinRange(args []Value) Value {
	if err := checkArity("range", args, 1, 2); err != nil {
		return err
	}
	var from, to int64
	var err *Error
	if len(args) == 1 {
		if to, err = argInteger("range", args[0]); err != nil {
			return err
		}
	} else {
		if from, err = argInteger("range", args[0]); err != nil {
			return err
		}
		if to, err = argInteger("range", args[1]); err != nil {
			return err
		}
	}
	if to <= from {
		return NewList()
	}
	// the difference fits in a uint64 even when to-from overflows int64
	if count := uint64(to - from); count > MaxRangeLength {
		return newArgumentError("range", fmt.Sprintf("%d elements exceed the limit of %d", count, MaxRangeLength))
	}
	elements := make([]Value, 0, to-from)
	for i := from; i < to; i++ {
		elements = append(elements, NumberFromInt(i))
	}
	return NewList(elements...)
}

func numericNative(name string, op func(decimal.Decimal) decimal.Decimal) NativeFunction {
	return func(args []Value) Value {
		n, err := argNumber(name, args[0])
		if err != nil {
			return err
		}
		if n.IsNaN() {
			return NaN
		}
		return NewNumber(op(n.Value))
	}
}

// builtinRound rounds half away from zero to the given number of places.
func builtinRound(args []Value) Value {
	if err := checkArity("round", args, 1, 2); err != nil {
		return err
	}
	n, err := argNumber("round", args[0])
	if err != nil {
		return err
	}
	var places int64
	if len(args) == 2 {
		if places, err = argInteger("round", args[1]); err != nil {
			return err
		}
	}
	if places < -MaxExponent || places > MaxExponent {
		return newArgumentError("round", fmt.Sprintf("places must be within ±%d, got %d", MaxExponent, places))
	}
	if n.IsNaN() {
		return NaN
	}
	return NewNumber(n.Value.Round(int32(places)))
}

// extremeNative returns the first argument that no other argument is
// ordered before (min) or after (max). A single List argument is spread.
func extremeNative(name string, want Ordering) NativeFunction {
	return func(args []Value) Value {
		if len(args) == 1 {
			if l, ok := args[0].(*List); ok {
				args = l.Elements
			}
		}
		if len(args) == 0 {
			return newArgumentError(name, "no values given")
		}
		best := args[0]
		for _, v := range args[1:] {
			order := Compare(v, best)
			if order == Unrelated {
				return newError("MATH-0002", map[string]any{"Left": v.TypeString(), "Right": best.TypeString()})
			}
			if order == want {
				best = v
			}
		}
		return best
	}
}
