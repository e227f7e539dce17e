// Package nrx provides a public API for embedding the NRX interpreter.
//
// The simplest entry point is Evaluate, which parses and runs a program:
//
//	v, err := nrx.Evaluate(`x = 2; x * 21`)
//
// Programs that run repeatedly are parsed once with Parse and evaluated
// through the returned Expression.
package nrx

import (
	"time"

	"github.com/NikolaiRuhe/NRExpressions/pkg/nrx/ast"
	nrxerrors "github.com/NikolaiRuhe/NRExpressions/pkg/nrx/errors"
	"github.com/NikolaiRuhe/NRExpressions/pkg/nrx/evaluator"
	"github.com/NikolaiRuhe/NRExpressions/pkg/nrx/parser"
)

// Value is an NRX value.
type Value = evaluator.Value

// Error is the structured error returned for syntax and runtime errors.
type Error = nrxerrors.NRXError

// TimeoutError is returned when a run exceeds its evaluation time budget.
// Scripts cannot catch it.
type TimeoutError = evaluator.TimeoutSignal

// Option configures an evaluation.
type Option func(*options)

type options struct {
	logger   Logger
	delegate any
	timeout  *time.Duration
	maxDepth *int
	strict   bool
	globals  map[string]any
	natives  []*evaluator.Native
	filename string
}

// WithLogger sends print output to l. Without it print output is discarded.
func WithLogger(l Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithDelegate installs a host delegate. It may implement
// evaluator.SymbolResolver and evaluator.TokenLookuper.
func WithDelegate(d any) Option {
	return func(o *options) { o.delegate = d }
}

// WithTimeout sets the wall-clock budget of a run. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = &d }
}

// WithMaxDepth sets the maximum call depth. Zero disables it.
func WithMaxDepth(n int) Option {
	return func(o *options) { o.maxDepth = &n }
}

// WithStrictSymbols makes reading an unbound symbol a LookupError.
func WithStrictSymbols(strict bool) Option {
	return func(o *options) { o.strict = strict }
}

// WithGlobals seeds the global scope. Go values are converted with
// evaluator.FromGo.
func WithGlobals(globals map[string]any) Option {
	return func(o *options) {
		if o.globals == nil {
			o.globals = make(map[string]any, len(globals))
		}
		for k, v := range globals {
			o.globals[k] = v
		}
	}
}

// WithNative registers a Go function callable from scripts. arity < 0
// accepts any number of arguments.
func WithNative(name string, arity int, fn evaluator.NativeFunction) Option {
	return func(o *options) {
		o.natives = append(o.natives, evaluator.NewNative(name, arity, fn))
	}
}

// WithFilename attaches a file name to reported errors.
func WithFilename(name string) Option {
	return func(o *options) { o.filename = name }
}

func buildOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NewInterpreter creates an interpreter configured by opts.
func NewInterpreter(opts ...Option) *evaluator.Interpreter {
	return buildOptions(opts).interpreter()
}

func (o *options) interpreter() *evaluator.Interpreter {
	in := evaluator.New()
	in.Delegate = o.delegate
	in.Print = PrintSink(o.logger)
	in.StrictSymbols = o.strict
	if o.timeout != nil {
		in.MaxEvaluationTime = *o.timeout
	}
	if o.maxDepth != nil {
		in.MaxCallDepth = *o.maxDepth
	}
	for name, v := range o.globals {
		in.SetGlobal(name, evaluator.FromGo(v))
	}
	for _, n := range o.natives {
		in.SetGlobal(n.Name, n)
	}
	return in
}

// Expression is a parsed program that can be evaluated many times.
type Expression struct {
	Source string
	Root   *ast.Block
}

// Parse parses source. The error is a SyntaxError *Error.
func Parse(source string, opts ...Option) (*Expression, error) {
	o := buildOptions(opts)
	root, err := parser.ParseFile(source, o.filename)
	if err != nil {
		return nil, err
	}
	return &Expression{Source: source, Root: root}, nil
}

// MustParse is like Parse but panics on a syntax error. It simplifies
// initialization of package-level expressions.
func MustParse(source string) *Expression {
	expr, err := Parse(source)
	if err != nil {
		panic("nrx: Parse(" + source + "): " + err.Error())
	}
	return expr
}

// Evaluate runs the expression in a fresh interpreter configured by opts.
func (e *Expression) Evaluate(opts ...Option) (Value, error) {
	o := buildOptions(opts)
	return runResult(o.interpreter().Run(e.Root), o.filename)
}

// EvaluateWith runs the expression in an existing interpreter, keeping its
// globals.
func (e *Expression) EvaluateWith(in *evaluator.Interpreter) (Value, error) {
	return runResult(in.Run(e.Root), "")
}

// Evaluate parses and runs source.
func Evaluate(source string, opts ...Option) (Value, error) {
	expr, err := Parse(source, opts...)
	if err != nil {
		return nil, err
	}
	return expr.Evaluate(opts...)
}

// EvaluateFile reads a script with ReadSource and runs it.
func EvaluateFile(path string, opts ...Option) (Value, error) {
	source, err := ReadSource(path)
	if err != nil {
		return nil, err
	}
	return Evaluate(source, append([]Option{WithFilename(path)}, opts...)...)
}

// runResult splits a run result into a value and a Go error.
func runResult(v Value, filename string) (Value, error) {
	switch r := v.(type) {
	case *evaluator.Error:
		nerr := r.ToNRXError()
		if filename != "" {
			nerr = nerr.WithFile(filename)
		}
		return nil, nerr
	case *evaluator.TimeoutSignal:
		return nil, r
	}
	return v, nil
}
