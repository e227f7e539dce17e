package evaluator

import (
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// FromGo converts a Go value into a Value. It understands nil, booleans,
// integers, floats, decimals, strings, byte slices, time.Time, slices of any
// and string-keyed maps (keys sorted for a stable order). Values that already
// are Values pass through; anything else becomes a HostObject.
func FromGo(v any) Value {
	switch x := v.(type) {
	case nil:
		return NULL
	case Value:
		return x
	case bool:
		return NativeBool(x)
	case int:
		return NumberFromInt(int64(x))
	case int32:
		return NumberFromInt(int64(x))
	case int64:
		return NumberFromInt(x)
	case uint:
		return NewNumber(decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(x)), 0))
	case uint64:
		return NewNumber(decimal.NewFromBigInt(new(big.Int).SetUint64(x), 0))
	case float32:
		return NewNumber(decimal.NewFromFloat32(x))
	case float64:
		return NumberFromFloat(x)
	case decimal.Decimal:
		return NewNumber(x)
	case string:
		return NewString(x)
	case []byte:
		return NewString(string(x))
	case time.Time:
		return NewDate(x)
	case []any:
		elements := make([]Value, len(x))
		for i, e := range x {
			elements[i] = FromGo(e)
		}
		return NewList(elements...)
	case []string:
		elements := make([]Value, len(x))
		for i, e := range x {
			elements[i] = NewString(e)
		}
		return NewList(elements...)
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		d := NewDictionary()
		for _, k := range keys {
			d.Set(k, FromGo(x[k]))
		}
		return d
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[fmt.Sprint(k)] = e
		}
		return FromGo(m)
	}
	return NewHostObject(v)
}

// ToGo converts a Value into plain Go data: nil, bool, string, time.Time,
// int64 for integral numbers that fit, decimal.Decimal otherwise, []any and
// map[string]any. Host objects yield their target.
func ToGo(v Value) any {
	switch x := v.(type) {
	case nil, *Null:
		return nil
	case *Boolean:
		return x.Value
	case *Number:
		if x.IsNaN() {
			return x.String()
		}
		if x.Value.IsInteger() && x.Value.Equal(decimal.NewFromInt(x.Value.IntPart())) {
			return x.Value.IntPart()
		}
		return x.Value
	case *String:
		return x.Value
	case *Date:
		return x.Time
	case *List:
		result := make([]any, len(x.Elements))
		for i, e := range x.Elements {
			result[i] = ToGo(e)
		}
		return result
	case *Dictionary:
		result := make(map[string]any, x.Len())
		for _, k := range x.Keys() {
			e, _ := x.Get(k)
			result[k] = ToGo(e)
		}
		return result
	case *HostObject:
		return x.Target
	}
	return v.Inspect()
}
