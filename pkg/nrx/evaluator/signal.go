package evaluator

import (
	"fmt"
	"time"

	nrxerrors "github.com/NikolaiRuhe/NRExpressions/pkg/nrx/errors"
)

// Interrupt signals travel through the same return slot as values. Composite
// nodes check for them after every child evaluation and forward them.

// ReturnSignal carries the value of a return statement up to the call site.
type ReturnSignal struct {
	Value Value
}

func (r *ReturnSignal) TypeString() string { return "Return" }
func (r *ReturnSignal) Inspect() string    { return r.Value.Inspect() }

// BreakSignal leaves the nearest enclosing loop.
type BreakSignal struct {
	Line, Column int
}

func (b *BreakSignal) TypeString() string { return "Break" }
func (b *BreakSignal) Inspect() string    { return "break" }

// ContinueSignal skips to the next iteration of the nearest enclosing loop.
type ContinueSignal struct {
	Line, Column int
}

func (c *ContinueSignal) TypeString() string { return "Continue" }
func (c *ContinueSignal) Inspect() string    { return "continue" }

// TimeoutSignal reports that the evaluation time budget ran out. It cannot
// be caught by try/catch.
type TimeoutSignal struct {
	Limit time.Duration
}

func (t *TimeoutSignal) TypeString() string { return "Timeout" }
func (t *TimeoutSignal) Inspect() string {
	return fmt.Sprintf("evaluation timed out after %s", t.Limit)
}

func (t *TimeoutSignal) Error() string { return t.Inspect() }

// ErrorClass is the kind of a runtime error.
type ErrorClass = nrxerrors.ErrorClass

// Error is a runtime error raised as a value. Value carries the payload of
// an 'error' statement.
type Error struct {
	Kind    ErrorClass
	Code    string
	Message string
	Hints   []string
	Line    int
	Column  int
	Value   Value
	Data    map[string]any
}

func (e *Error) TypeString() string { return string(e.Kind) }
func (e *Error) Inspect() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", e.Kind, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Error() string { return e.Inspect() }

// ToNRXError converts the error for reporting to the host.
func (e *Error) ToNRXError() *nrxerrors.NRXError {
	return &nrxerrors.NRXError{
		Class:   e.Kind,
		Code:    e.Code,
		Message: e.Message,
		Hints:   e.Hints,
		Line:    e.Line,
		Column:  e.Column,
		Data:    e.Data,
	}
}

// AsDictionary is the value bound to the symbol of a catch clause.
func (e *Error) AsDictionary() *Dictionary {
	d := NewDictionary()
	d.Set("kind", NewString(string(e.Kind)))
	d.Set("message", NewString(e.Message))
	d.Set("line", NumberFromInt(int64(e.Line)))
	if e.Value != nil {
		d.Set("value", e.Value)
	} else {
		d.Set("value", NULL)
	}
	return d
}

func isInterrupt(v Value) bool {
	switch v.(type) {
	case *ReturnSignal, *BreakSignal, *ContinueSignal, *TimeoutSignal, *Error:
		return true
	}
	return false
}

// isFailure reports errors and timeouts, the only interrupts an expression
// may produce.
func isFailure(v Value) bool {
	switch v.(type) {
	case *TimeoutSignal, *Error:
		return true
	}
	return false
}

// IsError reports whether v is a runtime error.
func IsError(v Value) bool {
	_, ok := v.(*Error)
	return ok
}

// IsTimeout reports whether v is the timeout signal.
func IsTimeout(v Value) bool {
	_, ok := v.(*TimeoutSignal)
	return ok
}
