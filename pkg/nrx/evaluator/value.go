package evaluator

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/NikolaiRuhe/NRExpressions/pkg/nrx/ast"
	"github.com/shopspring/decimal"
)

// Type names reported by TypeString
const (
	NULL_TYPE       = "Null"
	BOOLEAN_TYPE    = "Boolean"
	NUMBER_TYPE     = "Number"
	STRING_TYPE     = "String"
	LIST_TYPE       = "List"
	DICTIONARY_TYPE = "Dictionary"
	FUNCTION_TYPE   = "Function"
	DATE_TYPE       = "Date"
	OBJECT_TYPE     = "Object"
)

// TypeStringer names the type of a value in error messages.
type TypeStringer interface {
	TypeString() string
}

// Value is any runtime value, including the internal interrupt signals.
type Value interface {
	TypeStringer
	Inspect() string
}

// Ordering is the result of a comparison. Unrelated means the two values
// cannot be compared, for example because they have different types.
type Ordering int

const (
	Unrelated Ordering = iota
	Ascending
	Same
	Descending
)

func (o Ordering) String() string {
	switch o {
	case Ascending:
		return "ascending"
	case Same:
		return "same"
	case Descending:
		return "descending"
	}
	return "unrelated"
}

// Capability interfaces. A value supports an operation by implementing the
// matching interface; the interpreter raises a TypeError otherwise. Binary
// operations are dispatched on the left operand and return nil when the right
// operand is not supported.

// Promoter converts a host value into a core value before it is used.
type Promoter interface {
	PromoteToValue() Value
}

type Negater interface {
	Negate() Value
}

type Adder interface {
	Add(other Value) Value
}

type Subtracter interface {
	Subtract(other Value) Value
}

type Multiplier interface {
	Multiply(other Value) Value
}

type Divider interface {
	Divide(other Value) Value
}

type Modder interface {
	Mod(other Value) Value
}

type Comparer interface {
	Compare(other Value) Ordering
}

// PropertyGetter implements 'obj.name'. Returning nil means the property
// does not exist.
type PropertyGetter interface {
	ValueForProperty(name string) Value
}

// PropertySetter implements 'obj.name = v'. It returns nil or an *Error.
type PropertySetter interface {
	SetValueForProperty(name string, value Value) Value
}

// Subscripter implements 'obj[index]'.
type Subscripter interface {
	SubscriptValue(index Value) Value
}

// SubscriptSetter implements 'obj[index] = v'. It returns nil or an *Error.
type SubscriptSetter interface {
	SetSubscriptValue(index Value, value Value) Value
}

// Caller is implemented by callable values.
type Caller interface {
	Call(in *Interpreter, args []Value) Value
}

// capability looks up capability T on v. Host objects are asked through
// their target.
func capability[T any](v Value) (T, bool) {
	if h, ok := v.(*HostObject); ok {
		c, ok := h.Target.(T)
		return c, ok
	}
	c, ok := v.(T)
	return c, ok
}

// Canonical singletons
var (
	NULL  = &Null{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

// Null is the absence of a value.
type Null struct{}

func (n *Null) TypeString() string { return NULL_TYPE }
func (n *Null) Inspect() string    { return "null" }

func (n *Null) Compare(other Value) Ordering {
	if _, ok := other.(*Null); ok {
		return Same
	}
	return Unrelated
}

// Boolean is true or false. Use TRUE, FALSE or NativeBool.
type Boolean struct {
	Value bool
}

func (b *Boolean) TypeString() string { return BOOLEAN_TYPE }
func (b *Boolean) Inspect() string    { return strconv.FormatBool(b.Value) }

func (b *Boolean) Compare(other Value) Ordering {
	if o, ok := other.(*Boolean); ok && o.Value == b.Value {
		return Same
	}
	return Unrelated
}

// NativeBool returns the canonical Boolean for b.
func NativeBool(b bool) *Boolean {
	if b {
		return TRUE
	}
	return FALSE
}

// String is an immutable string value.
type String struct {
	Value string
}

func NewString(s string) *String { return &String{Value: s} }

func (s *String) TypeString() string { return STRING_TYPE }
func (s *String) Inspect() string    { return s.Value }

func (s *String) Add(other Value) Value {
	if o, ok := other.(*String); ok {
		return &String{Value: s.Value + o.Value}
	}
	return nil
}

func (s *String) Compare(other Value) Ordering {
	o, ok := other.(*String)
	if !ok {
		return Unrelated
	}
	switch strings.Compare(s.Value, o.Value) {
	case -1:
		return Ascending
	case 1:
		return Descending
	}
	return Same
}

// SubscriptValue returns the character at a zero-based rune index.
func (s *String) SubscriptValue(index Value) Value {
	runes := []rune(s.Value)
	i, err := integerIndex(index, len(runes), s)
	if err != nil {
		return err
	}
	return &String{Value: string(runes[i])}
}

func (s *String) ValueForProperty(name string) Value {
	if name == "len" {
		return NumberFromInt(int64(utf8.RuneCountInString(s.Value)))
	}
	return nil
}

// List is an ordered, mutable sequence shared by reference.
type List struct {
	Elements []Value
}

func NewList(elements ...Value) *List {
	if elements == nil {
		elements = []Value{}
	}
	return &List{Elements: elements}
}

func (l *List) TypeString() string { return LIST_TYPE }
func (l *List) Inspect() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = inspectNested(e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Add concatenates two lists into a new list.
func (l *List) Add(other Value) Value {
	o, ok := other.(*List)
	if !ok {
		return nil
	}
	elements := make([]Value, 0, len(l.Elements)+len(o.Elements))
	elements = append(elements, l.Elements...)
	elements = append(elements, o.Elements...)
	return &List{Elements: elements}
}

func (l *List) Compare(other Value) Ordering {
	if o, ok := other.(*List); ok && o == l {
		return Same
	}
	return Unrelated
}

func (l *List) SubscriptValue(index Value) Value {
	i, err := integerIndex(index, len(l.Elements), l)
	if err != nil {
		return err
	}
	return l.Elements[i]
}

func (l *List) SetSubscriptValue(index Value, value Value) Value {
	i, err := integerIndex(index, len(l.Elements), l)
	if err != nil {
		return err
	}
	l.Elements[i] = value
	return nil
}

func (l *List) ValueForProperty(name string) Value {
	if name == "count" {
		return NumberFromInt(int64(len(l.Elements)))
	}
	return nil
}

// Snapshot returns a copy of the current elements.
func (l *List) Snapshot() []Value {
	return append([]Value(nil), l.Elements...)
}

// Dictionary maps string keys to values and remembers insertion order.
// It is shared by reference.
type Dictionary struct {
	keys  []string
	store map[string]Value
}

func NewDictionary() *Dictionary {
	return &Dictionary{store: make(map[string]Value)}
}

func (d *Dictionary) TypeString() string { return DICTIONARY_TYPE }
func (d *Dictionary) Inspect() string {
	parts := make([]string, len(d.keys))
	for i, k := range d.keys {
		parts[i] = strconv.Quote(k) + ": " + inspectNested(d.store[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Get returns the entry for key.
func (d *Dictionary) Get(key string) (Value, bool) {
	v, ok := d.store[key]
	return v, ok
}

// Set stores an entry, appending new keys to the enumeration order.
func (d *Dictionary) Set(key string, value Value) {
	if _, exists := d.store[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.store[key] = value
}

// Keys returns the keys in insertion order.
func (d *Dictionary) Keys() []string {
	return append([]string(nil), d.keys...)
}

func (d *Dictionary) Len() int { return len(d.keys) }

func (d *Dictionary) Compare(other Value) Ordering {
	if o, ok := other.(*Dictionary); ok && o == d {
		return Same
	}
	return Unrelated
}

func (d *Dictionary) SubscriptValue(index Value) Value {
	key, ok := index.(*String)
	if !ok {
		return newError("LOOKUP-0003", map[string]any{"Index": index.Inspect(), "Got": DICTIONARY_TYPE})
	}
	v, ok := d.store[key.Value]
	if !ok {
		return newError("LOOKUP-0002", map[string]any{"Key": key.Value})
	}
	return v
}

func (d *Dictionary) SetSubscriptValue(index Value, value Value) Value {
	key, ok := index.(*String)
	if !ok {
		return newError("LOOKUP-0003", map[string]any{"Index": index.Inspect(), "Got": DICTIONARY_TYPE})
	}
	d.Set(key.Value, value)
	return nil
}

// ValueForProperty returns the entry or NULL. 'count' is the number of
// entries unless an entry of that name exists.
func (d *Dictionary) ValueForProperty(name string) Value {
	if v, ok := d.store[name]; ok {
		return v
	}
	if name == "count" {
		return NumberFromInt(int64(len(d.keys)))
	}
	return NULL
}

func (d *Dictionary) SetValueForProperty(name string, value Value) Value {
	d.Set(name, value)
	return nil
}

// Function is a user-defined function. Its body runs in a scope whose
// parent is the global scope.
type Function struct {
	Name       string
	Parameters []string
	Body       *ast.Block
}

func (f *Function) TypeString() string { return FUNCTION_TYPE }
func (f *Function) Inspect() string {
	return fmt.Sprintf("function %s(%s)", f.Name, strings.Join(f.Parameters, ", "))
}

func (f *Function) Compare(other Value) Ordering {
	if o, ok := other.(*Function); ok && o == f {
		return Same
	}
	return Unrelated
}

func (f *Function) Call(in *Interpreter, args []Value) Value {
	return in.callFunction(f, args)
}

// NativeFunction is the Go side of a Native.
type NativeFunction func(args []Value) Value

// Native is a host callback. Arity -1 accepts any number of arguments.
type Native struct {
	Name  string
	Arity int
	Fn    NativeFunction
}

func NewNative(name string, arity int, fn NativeFunction) *Native {
	return &Native{Name: name, Arity: arity, Fn: fn}
}

func (n *Native) TypeString() string { return FUNCTION_TYPE }
func (n *Native) Inspect() string    { return "native function " + n.Name }

func (n *Native) Compare(other Value) Ordering {
	if o, ok := other.(*Native); ok && o == n {
		return Same
	}
	return Unrelated
}

func (n *Native) Call(in *Interpreter, args []Value) Value {
	if n.Arity >= 0 && len(args) != n.Arity {
		return newError("ARG-0001", map[string]any{"Function": n.Name, "Want": n.Arity, "Got": len(args)})
	}
	result := n.Fn(args)
	if result == nil {
		return NULL
	}
	return result
}

// HostObject wraps a Go value. The interpreter only talks to it through the
// capability interfaces the target implements.
type HostObject struct {
	Target any
}

func NewHostObject(target any) *HostObject {
	return &HostObject{Target: target}
}

func (h *HostObject) TypeString() string {
	if ts, ok := h.Target.(TypeStringer); ok {
		return ts.TypeString()
	}
	return OBJECT_TYPE
}

func (h *HostObject) Inspect() string {
	if s, ok := h.Target.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("<%s>", h.TypeString())
}

// integerIndex validates a zero-based index into a sequence of length n.
func integerIndex(index Value, n int, receiver Value) (int, *Error) {
	num, ok := index.(*Number)
	if !ok || num.IsNaN() || !num.Value.IsInteger() {
		return 0, newError("LOOKUP-0003", map[string]any{"Index": index.Inspect(), "Got": receiver.TypeString()})
	}
	// compare as decimals, IntPart wraps outside the int64 range
	if num.Value.Sign() < 0 || num.Value.Cmp(decimal.NewFromInt(int64(n))) >= 0 {
		return 0, newError("LOOKUP-0001", map[string]any{"Index": num.String(), "Length": n})
	}
	return int(num.Value.IntPart()), nil
}

// inspectNested renders a value inside a container, quoting strings.
func inspectNested(v Value) string {
	if s, ok := v.(*String); ok {
		return strconv.Quote(s.Value)
	}
	if v == nil {
		return "null"
	}
	return v.Inspect()
}
