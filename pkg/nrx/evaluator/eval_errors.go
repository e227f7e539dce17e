// eval_errors.go - Error creation helpers for the evaluator

package evaluator

import (
	"fmt"

	nrxerrors "github.com/NikolaiRuhe/NRExpressions/pkg/nrx/errors"
)

// newError creates a runtime error from the catalog. The interpreter fills
// in the position of the node that produced it.
func newError(code string, data map[string]any) *Error {
	nerr := nrxerrors.New(code, data)
	return &Error{
		Kind:    nerr.Class,
		Code:    nerr.Code,
		Message: nerr.Message,
		Hints:   nerr.Hints,
		Data:    nerr.Data,
	}
}

// NewError creates a runtime error of the given kind for use by natives and
// host objects.
func NewError(kind ErrorClass, format string, a ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, a...),
	}
}

// newOperandError reports a binary operation the left operand does not
// support for the right operand.
func newOperandError(operation string, left, right Value) *Error {
	return newError("TYPE-0001", map[string]any{
		"Operation": operation,
		"Left":      left.TypeString(),
		"Right":     right.TypeString(),
	})
}

func newBooleanExpectedError(got Value) *Error {
	return newError("TYPE-0003", map[string]any{"Got": got.TypeString()})
}

// newArgumentTypeError reports a native argument of the wrong type.
func newArgumentTypeError(function, expected string, got Value) *Error {
	return newError("TYPE-0010", map[string]any{
		"Function": function,
		"Expected": expected,
		"Got":      got.TypeString(),
	})
}

func newArgumentError(function, reason string) *Error {
	return newError("ARG-0002", map[string]any{"Function": function, "Reason": reason})
}

func newArityError(function string, want any, got int) *Error {
	return newError("ARG-0001", map[string]any{"Function": function, "Want": want, "Got": got})
}

// withPosition stamps a position on errors that do not have one yet.
func withPosition(v Value, line, column int) Value {
	if err, ok := v.(*Error); ok && err.Line == 0 {
		err.Line = line
		err.Column = column
	}
	return v
}
