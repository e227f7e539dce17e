package evaluator

import (
	"strings"

	"github.com/NikolaiRuhe/NRExpressions/pkg/nrx/ast"
)

// Compare orders a against b. A left operand without a Comparer is
// unrelated to everything.
func Compare(a, b Value) Ordering {
	if c, ok := capability[Comparer](a); ok {
		return c.Compare(b)
	}
	return Unrelated
}

// Equal reports whether a and b compare Same.
func Equal(a, b Value) bool {
	return Compare(a, b) == Same
}

func (in *Interpreter) evalPrefixExpression(node *ast.PrefixExpression) Value {
	right := in.evalExpression(node.Right)
	if isFailure(right) {
		return right
	}

	switch node.Operator {
	case "!":
		b, ok := right.(*Boolean)
		if !ok {
			return newBooleanExpectedError(right)
		}
		return NativeBool(!b.Value)
	case "-":
		n, ok := capability[Negater](right)
		if !ok {
			return newError("TYPE-0002", map[string]any{"Got": right.TypeString()})
		}
		return n.Negate()
	}
	return newError("SYNTAX-0002", map[string]any{"Token": node.Operator})
}

func (in *Interpreter) evalInfixExpression(node *ast.InfixExpression) Value {
	if node.Operator == "&&" || node.Operator == "||" {
		return in.evalLogicalExpression(node)
	}

	left := in.evalExpression(node.Left)
	if isFailure(left) {
		return left
	}
	right := in.evalExpression(node.Right)
	if isFailure(right) {
		return right
	}

	switch node.Operator {
	case "+":
		return arithmetic[Adder]("add", left, right, Adder.Add)
	case "-":
		return arithmetic[Subtracter]("subtract", left, right, Subtracter.Subtract)
	case "*":
		return arithmetic[Multiplier]("multiply", left, right, Multiplier.Multiply)
	case "/":
		return arithmetic[Divider]("divide", left, right, Divider.Divide)
	case "%":
		return arithmetic[Modder]("mod", left, right, Modder.Mod)
	case "==":
		return NativeBool(Compare(left, right) == Same)
	case "!=":
		return NativeBool(Compare(left, right) != Same)
	case "<", ">", "<=", ">=":
		return evalOrdering(node.Operator, left, right)
	case "contains":
		return evalContains(left, right)
	}
	return newError("SYNTAX-0002", map[string]any{"Token": node.Operator})
}

// arithmetic dispatches a binary operator on the left operand.
func arithmetic[T any](operation string, left, right Value, op func(T, Value) Value) Value {
	c, ok := capability[T](left)
	if !ok {
		return newOperandError(operation, left, right)
	}
	result := op(c, right)
	if result == nil {
		return newOperandError(operation, left, right)
	}
	return result
}

func evalOrdering(operator string, left, right Value) Value {
	order := Compare(left, right)
	if order == Unrelated {
		return newError("MATH-0002", map[string]any{"Left": left.TypeString(), "Right": right.TypeString()})
	}
	switch operator {
	case "<":
		return NativeBool(order == Ascending)
	case ">":
		return NativeBool(order == Descending)
	case "<=":
		return NativeBool(order != Descending)
	default:
		return NativeBool(order != Ascending)
	}
}

// evalContains tests list membership, substrings and dictionary keys.
func evalContains(left, right Value) Value {
	switch l := left.(type) {
	case *List:
		for _, e := range l.Elements {
			if Equal(e, right) {
				return TRUE
			}
		}
		return FALSE
	case *String:
		if r, ok := right.(*String); ok {
			return NativeBool(strings.Contains(l.Value, r.Value))
		}
	case *Dictionary:
		if r, ok := right.(*String); ok {
			_, found := l.Get(r.Value)
			return NativeBool(found)
		}
	}
	return newError("TYPE-0009", map[string]any{"Left": left.TypeString(), "Right": right.TypeString()})
}

// evalLogicalExpression short-circuits && and ||. Both operands must be
// booleans.
func (in *Interpreter) evalLogicalExpression(node *ast.InfixExpression) Value {
	left := in.evalExpression(node.Left)
	if isFailure(left) {
		return left
	}
	l, ok := left.(*Boolean)
	if !ok {
		return newBooleanExpectedError(left)
	}
	if node.Operator == "&&" && !l.Value {
		return FALSE
	}
	if node.Operator == "||" && l.Value {
		return TRUE
	}

	right := in.evalExpression(node.Right)
	if isFailure(right) {
		return right
	}
	r, ok := right.(*Boolean)
	if !ok {
		return newBooleanExpectedError(right)
	}
	return r
}

// evalComprehension evaluates 'list where x: cond' and 'list map x: expr'.
// Each element is bound in its own nested scope.
func (in *Interpreter) evalComprehension(node *ast.ComprehensionExpression) Value {
	source := in.evalExpression(node.List)
	if isFailure(source) {
		return source
	}
	list, ok := source.(*List)
	if !ok {
		return newError("TYPE-0005", map[string]any{"Got": source.TypeString()})
	}

	result := []Value{}
	for _, element := range list.Snapshot() {
		val := in.withNestedScope(func(scope *Scope) Value {
			scope.Set(node.Variable, element)
			return in.evalExpression(node.Body)
		})
		if isFailure(val) {
			return val
		}

		if !node.IsFilter() {
			result = append(result, val)
			continue
		}
		keep, ok := val.(*Boolean)
		if !ok {
			line, column := node.Body.Position()
			return withPosition(newBooleanExpectedError(val), line, column)
		}
		if keep.Value {
			result = append(result, element)
		}
	}
	return &List{Elements: result}
}

func (in *Interpreter) evalCallExpression(node *ast.CallExpression) Value {
	function := in.evalExpression(node.Function)
	if isFailure(function) {
		return function
	}

	args := in.evalExpressions(node.Arguments)
	if len(args) == 1 && isFailure(args[0]) {
		return args[0]
	}

	caller, ok := capability[Caller](function)
	if !ok {
		return newError("TYPE-0004", map[string]any{"Got": function.TypeString()})
	}
	return caller.Call(in, args)
}

func (in *Interpreter) evalSubscriptExpression(node *ast.SubscriptExpression) Value {
	left := in.evalExpression(node.Left)
	if isFailure(left) {
		return left
	}
	index := in.evalExpression(node.Index)
	if isFailure(index) {
		return index
	}

	s, ok := capability[Subscripter](left)
	if !ok {
		return newError("TYPE-0006", map[string]any{"Got": left.TypeString()})
	}
	return s.SubscriptValue(index)
}

func (in *Interpreter) evalPropertyExpression(node *ast.PropertyExpression) Value {
	object := in.evalExpression(node.Object)
	if isFailure(object) {
		return object
	}

	g, ok := capability[PropertyGetter](object)
	if !ok {
		return newError("TYPE-0007", map[string]any{"Got": object.TypeString()})
	}
	val := g.ValueForProperty(node.Property)
	if val == nil {
		return newError("LOOKUP-0005", map[string]any{"Got": object.TypeString(), "Property": node.Property})
	}
	return val
}

// evalLookup resolves a lookup path through the delegate. Each token is
// looked up on the previous result, starting from NULL. A multi token
// applied to a list fans the rest of the path out over its elements. A miss
// anywhere yields NULL for that branch.
func (in *Interpreter) evalLookup(node *ast.Lookup) Value {
	lookuper, ok := in.Delegate.(TokenLookuper)
	if !ok {
		return NULL
	}
	return in.lookupPath(lookuper, NULL, node.Tokens, true)
}

func (in *Interpreter) lookupPath(lookuper TokenLookuper, base Value, tokens []ast.LookupToken, first bool) Value {
	current := base
	for i, token := range tokens {
		if !first || i > 0 {
			if _, isNull := current.(*Null); isNull {
				return NULL
			}
		}
		if t := in.checkTime(); t != nil {
			return t
		}

		next, found := lookuper.LookupToken(current, token.Name)
		if !found || next == nil {
			return NULL
		}
		if p, ok := capability[Promoter](next); ok {
			if promoted := p.PromoteToValue(); promoted != nil {
				next = promoted
			}
		}
		if isFailure(next) {
			return next
		}

		rest := tokens[i+1:]
		if list, ok := next.(*List); ok && token.Multi && len(rest) > 0 {
			results := make([]Value, 0, len(list.Elements))
			for _, element := range list.Snapshot() {
				val := in.lookupPath(lookuper, element, rest, false)
				if isFailure(val) {
					return val
				}
				results = append(results, val)
			}
			return &List{Elements: results}
		}
		current = next
	}
	return current
}
