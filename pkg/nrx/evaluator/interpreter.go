// Package evaluator implements the NRX value model and tree-walking
// interpreter.
//
// Every evaluation returns a Value. Control flow (return, break, continue),
// runtime errors and the timeout are returned as interrupt values rather than
// panics; composite nodes forward them after each child evaluation.
package evaluator

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/NikolaiRuhe/NRExpressions/pkg/nrx/ast"
	nrxerrors "github.com/NikolaiRuhe/NRExpressions/pkg/nrx/errors"
)

// Default budgets
const (
	DefaultMaxEvaluationTime = 10 * time.Second
	DefaultMaxCallDepth      = 500
)

// SymbolResolver is the delegate hook for symbols the scope chain does not
// bind.
type SymbolResolver interface {
	ResolveSymbol(name string) (Value, bool)
}

// TokenLookuper resolves one token of a lookup path such as $orders.*items.
// base is NULL for the first token.
type TokenLookuper interface {
	LookupToken(base Value, token string) (Value, bool)
}

// Interpreter runs parsed programs. It is not safe for concurrent use; a
// second Run while one is in progress fails with an InterpreterError.
type Interpreter struct {
	// Delegate may implement SymbolResolver and TokenLookuper.
	Delegate any
	// Print receives the values of print statements. Nil discards them.
	Print func(Value)
	// Globals is the global scope. It persists across runs.
	Globals *Scope
	// MaxEvaluationTime bounds the wall-clock time of one Run. Zero disables
	// the check.
	MaxEvaluationTime time.Duration
	// MaxCallDepth bounds nested function calls. Zero disables the check.
	MaxCallDepth int
	// StrictSymbols makes reading an unbound symbol a LookupError instead
	// of null.
	StrictSymbols bool

	scope   *Scope
	depth   int
	start   time.Time
	timeout *TimeoutSignal
	running atomic.Bool
}

// New creates an interpreter with the default global scope and budgets.
func New() *Interpreter {
	return &Interpreter{
		Globals:           DefaultGlobalScope(),
		MaxEvaluationTime: DefaultMaxEvaluationTime,
		MaxCallDepth:      DefaultMaxCallDepth,
	}
}

// SetGlobal binds name in the global scope. Hosts use it to inject values
// and natives before Run.
func (in *Interpreter) SetGlobal(name string, v Value) {
	in.AssignGlobal(name, v)
}

// AssignGlobal writes name to the global frame regardless of the current
// frame. It backs 'global x = ...'.
func (in *Interpreter) AssignGlobal(name string, v Value) {
	in.globals().Set(name, v)
}

func (in *Interpreter) globals() *Scope {
	if in.Globals == nil {
		in.Globals = DefaultGlobalScope()
	}
	return in.Globals
}

// Run evaluates root in the global scope. It returns the value of the last
// statement (or of a top-level return), a terminal *Error, or the
// *TimeoutSignal.
func (in *Interpreter) Run(root *ast.Block) Value {
	if !in.running.CompareAndSwap(false, true) {
		return newError("INTERP-0003", nil)
	}
	defer in.running.Store(false)

	in.scope = in.globals()
	in.depth = 0
	in.start = time.Now()
	in.timeout = nil
	defer func() { in.scope = nil }()

	result := in.evalStatements(root.Statements)
	switch r := result.(type) {
	case *ReturnSignal:
		return r.Value
	case *BreakSignal:
		return misplacedSignalError("break", "a loop", r.Line, r.Column)
	case *ContinueSignal:
		return misplacedSignalError("continue", "a loop", r.Line, r.Column)
	}
	return result
}

// Running reports whether a Run is in progress.
func (in *Interpreter) Running() bool {
	return in.running.Load()
}

func misplacedSignalError(statement, context string, line, column int) *Error {
	err := newError("INTERP-0002", map[string]any{"Statement": statement, "Context": context})
	err.Line, err.Column = line, column
	return err
}

// checkTime returns the timeout signal once the budget is spent.
func (in *Interpreter) checkTime() *TimeoutSignal {
	if in.timeout != nil {
		return in.timeout
	}
	if in.MaxEvaluationTime > 0 && time.Since(in.start) > in.MaxEvaluationTime {
		in.timeout = &TimeoutSignal{Limit: in.MaxEvaluationTime}
		return in.timeout
	}
	return nil
}

// eval evaluates one node. Errors without a position get the node's.
func (in *Interpreter) eval(node ast.Node) Value {
	if t := in.checkTime(); t != nil {
		return t
	}
	result := in.evalNode(node)
	if result == nil {
		return NULL
	}
	line, column := node.Position()
	return withPosition(result, line, column)
}

func (in *Interpreter) evalNode(node ast.Node) Value {
	switch node := node.(type) {

	// Statements
	case *ast.Block:
		return in.withNestedScope(func(*Scope) Value {
			return in.evalStatements(node.Statements)
		})

	case *ast.ExpressionStatement:
		return in.evalExpression(node.Expression)

	case *ast.NoOpStatement:
		return NULL

	case *ast.AssignmentStatement:
		val := in.evalExpression(node.Value)
		if isFailure(val) {
			return val
		}
		if node.Global {
			in.AssignGlobal(node.Name, val)
		} else {
			in.scope.Assign(node.Name, val)
		}
		return NULL

	case *ast.PropertyAssignmentStatement:
		return in.evalPropertyAssignment(node)

	case *ast.SubscriptAssignmentStatement:
		return in.evalSubscriptAssignment(node)

	case *ast.IfStatement:
		return in.evalIfStatement(node)

	case *ast.WhileStatement:
		return in.evalWhileStatement(node)

	case *ast.ForInStatement:
		return in.evalForInStatement(node)

	case *ast.TryCatchStatement:
		return in.evalTryCatchStatement(node)

	case *ast.PrintStatement:
		val := in.evalExpression(node.Value)
		if isFailure(val) {
			return val
		}
		if in.Print != nil {
			in.Print(val)
		}
		return NULL

	case *ast.AssertStatement:
		val := in.evalExpression(node.Value)
		if isFailure(val) {
			return val
		}
		b, ok := val.(*Boolean)
		if !ok {
			return newBooleanExpectedError(val)
		}
		if !b.Value {
			return newError("ASSERT-0001", map[string]any{"Expression": node.Value.String()})
		}
		return NULL

	case *ast.ErrorStatement:
		val := in.evalExpression(node.Value)
		if isFailure(val) {
			return val
		}
		err := newError("CUSTOM-0001", map[string]any{"Message": val.Inspect()})
		err.Value = val
		return err

	case *ast.ReturnStatement:
		if node.Value == nil {
			return &ReturnSignal{Value: NULL}
		}
		val := in.evalExpression(node.Value)
		if isFailure(val) {
			return val
		}
		return &ReturnSignal{Value: val}

	case *ast.BreakStatement:
		return &BreakSignal{Line: node.Token.Line, Column: node.Token.Column}

	case *ast.ContinueStatement:
		return &ContinueSignal{Line: node.Token.Line, Column: node.Token.Column}

	// Expressions
	case *ast.Symbol:
		return in.resolveSymbol(node.Name)

	case *ast.Lookup:
		return in.evalLookup(node)

	case *ast.NumberLiteral:
		n, ok := ParseNumber(node.Value)
		if !ok || n.IsNaN() {
			return newError("SYNTAX-0003", map[string]any{"Literal": node.Value})
		}
		return n

	case *ast.StringLiteral:
		return &String{Value: node.Value}

	case *ast.BooleanLiteral:
		return NativeBool(node.Value)

	case *ast.NullLiteral:
		return NULL

	case *ast.ListLiteral:
		elements := in.evalExpressions(node.Elements)
		if len(elements) == 1 && isFailure(elements[0]) {
			return elements[0]
		}
		return &List{Elements: elements}

	case *ast.DictionaryLiteral:
		dict := NewDictionary()
		for _, entry := range node.Entries {
			val := in.evalExpression(entry.Value)
			if isFailure(val) {
				return val
			}
			dict.Set(entry.Key, val)
		}
		return dict

	case *ast.PrefixExpression:
		return in.evalPrefixExpression(node)

	case *ast.InfixExpression:
		return in.evalInfixExpression(node)

	case *ast.TernaryExpression:
		cond := in.evalExpression(node.Condition)
		if isFailure(cond) {
			return cond
		}
		b, ok := cond.(*Boolean)
		if !ok {
			return newBooleanExpectedError(cond)
		}
		if b.Value {
			return in.evalExpression(node.Consequence)
		}
		return in.evalExpression(node.Alternative)

	case *ast.ComprehensionExpression:
		return in.evalComprehension(node)

	case *ast.CallExpression:
		return in.evalCallExpression(node)

	case *ast.SubscriptExpression:
		return in.evalSubscriptExpression(node)

	case *ast.PropertyExpression:
		return in.evalPropertyExpression(node)

	case *ast.FunctionLiteral:
		fn := &Function{Name: node.Name, Parameters: node.Parameters, Body: node.Body}
		if node.Name != "" {
			in.scope.Set(node.Name, fn)
		}
		return fn
	}

	return newError("INTERP-0004", map[string]any{"Node": node.String()})
}

// evalStatements runs statements in the current frame and returns the value
// of the last one, or the first interrupt.
func (in *Interpreter) evalStatements(stmts []ast.Statement) Value {
	var result Value = NULL
	for _, stmt := range stmts {
		result = in.eval(stmt)
		if isInterrupt(result) {
			return result
		}
	}
	return result
}

// evalExpression evaluates node in expression position. Only errors and the
// timeout may escape; the result is promoted when the value supports it.
func (in *Interpreter) evalExpression(node ast.Expression) Value {
	val := in.eval(node)
	switch v := val.(type) {
	case *TimeoutSignal, *Error:
		return v
	case *ReturnSignal, *BreakSignal, *ContinueSignal:
		line, column := node.Position()
		return misplacedSignalError(strings.ToLower(v.TypeString()), "statement position", line, column)
	}
	if p, ok := capability[Promoter](val); ok {
		if promoted := p.PromoteToValue(); promoted != nil {
			return promoted
		}
	}
	return val
}

// evalExpressions evaluates nodes left to right. On failure it returns a
// single-element slice holding the interrupt.
func (in *Interpreter) evalExpressions(nodes []ast.Expression) []Value {
	result := make([]Value, 0, len(nodes))
	for _, node := range nodes {
		val := in.evalExpression(node)
		if isFailure(val) {
			return []Value{val}
		}
		result = append(result, val)
	}
	return result
}

// resolveSymbol walks the scope chain, then asks the delegate. Unbound
// symbols read as NULL unless StrictSymbols is set.
func (in *Interpreter) resolveSymbol(name string) Value {
	if v, ok := in.scope.Get(name); ok {
		return v
	}
	if r, ok := in.Delegate.(SymbolResolver); ok {
		if v, ok := r.ResolveSymbol(name); ok && v != nil {
			return v
		}
	}
	if in.StrictSymbols {
		nerr := nrxerrors.NewUndefinedSymbol(name, in.scope.Names())
		return &Error{Kind: nerr.Class, Code: nerr.Code, Message: nerr.Message, Hints: nerr.Hints, Data: nerr.Data}
	}
	return NULL
}

// callFunction invokes a user function in a fresh function scope.
func (in *Interpreter) callFunction(fn *Function, args []Value) Value {
	if len(args) != len(fn.Parameters) {
		name := fn.Name
		if name == "" {
			name = "function"
		}
		return newArityError(name, len(fn.Parameters), len(args))
	}
	if in.MaxCallDepth > 0 && in.depth >= in.MaxCallDepth {
		return newError("INTERP-0001", map[string]any{"Depth": in.MaxCallDepth})
	}
	in.depth++
	defer func() { in.depth-- }()

	return in.withFunctionScope(func(scope *Scope) Value {
		for i, param := range fn.Parameters {
			scope.Set(param, args[i])
		}
		result := in.evalStatements(fn.Body.Statements)
		switch r := result.(type) {
		case *ReturnSignal:
			return r.Value
		case *BreakSignal:
			return misplacedSignalError("break", "a loop", r.Line, r.Column)
		case *ContinueSignal:
			return misplacedSignalError("continue", "a loop", r.Line, r.Column)
		case *Error, *TimeoutSignal:
			return r
		}
		return NULL
	})
}

// Call invokes a callable value with arguments. Natives use it to call back
// into script functions during a Run.
func (in *Interpreter) Call(fn Value, args []Value) Value {
	caller, ok := capability[Caller](fn)
	if !ok {
		return newError("TYPE-0004", map[string]any{"Got": fn.TypeString()})
	}
	if in.scope == nil {
		in.scope = in.globals()
		in.start = time.Now()
		in.timeout = nil
		defer func() { in.scope = nil }()
	}
	return caller.Call(in, args)
}
