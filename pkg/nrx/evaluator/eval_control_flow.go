// eval_control_flow.go - Conditionals, loops, try/catch and assignments
// through properties and subscripts.

package evaluator

import (
	"github.com/NikolaiRuhe/NRExpressions/pkg/nrx/ast"
)

func (in *Interpreter) evalCondition(node ast.Expression) (bool, Value) {
	cond := in.evalExpression(node)
	if isFailure(cond) {
		return false, cond
	}
	b, ok := cond.(*Boolean)
	if !ok {
		line, column := node.Position()
		return false, withPosition(newBooleanExpectedError(cond), line, column)
	}
	return b.Value, nil
}

func (in *Interpreter) evalIfStatement(node *ast.IfStatement) Value {
	truth, failure := in.evalCondition(node.Condition)
	if failure != nil {
		return failure
	}
	if truth {
		return in.eval(node.Consequence)
	}
	if node.Alternative != nil {
		return in.eval(node.Alternative)
	}
	return NULL
}

// loopControl interprets the result of a loop body. stop reports that the
// loop ends; result is what the loop forwards.
func loopControl(result Value) (stop bool, forward Value) {
	switch result.(type) {
	case *BreakSignal:
		return true, nil
	case *ContinueSignal:
		return false, nil
	case *ReturnSignal, *Error, *TimeoutSignal:
		return true, result
	}
	return false, nil
}

func (in *Interpreter) evalWhileStatement(node *ast.WhileStatement) Value {
	for {
		truth, failure := in.evalCondition(node.Condition)
		if failure != nil {
			return failure
		}
		if !truth {
			return NULL
		}

		if stop, forward := loopControl(in.eval(node.Body)); stop {
			if forward != nil {
				return forward
			}
			return NULL
		}
	}
}

// evalForInStatement iterates over a snapshot of the list taken when the
// loop starts.
func (in *Interpreter) evalForInStatement(node *ast.ForInStatement) Value {
	source := in.evalExpression(node.List)
	if isFailure(source) {
		return source
	}
	list, ok := source.(*List)
	if !ok {
		return newError("TYPE-0005", map[string]any{"Got": source.TypeString()})
	}

	for _, element := range list.Snapshot() {
		result := in.withNestedScope(func(scope *Scope) Value {
			scope.Set(node.Variable, element)
			return in.eval(node.Body)
		})
		if stop, forward := loopControl(result); stop {
			if forward != nil {
				return forward
			}
			return NULL
		}
	}
	return NULL
}

// evalTryCatchStatement catches runtime errors only. The timeout and
// control flow signals pass through.
func (in *Interpreter) evalTryCatchStatement(node *ast.TryCatchStatement) Value {
	result := in.eval(node.Try)
	err, ok := result.(*Error)
	if !ok {
		return result
	}
	return in.withNestedScope(func(scope *Scope) Value {
		scope.Set(node.Symbol, err.AsDictionary())
		return in.eval(node.Catch)
	})
}

func (in *Interpreter) evalPropertyAssignment(node *ast.PropertyAssignmentStatement) Value {
	object := in.evalExpression(node.Object)
	if isFailure(object) {
		return object
	}
	val := in.evalExpression(node.Value)
	if isFailure(val) {
		return val
	}

	s, ok := capability[PropertySetter](object)
	if !ok {
		return newError("TYPE-0008", map[string]any{"Property": node.Property, "Got": object.TypeString()})
	}
	if result := s.SetValueForProperty(node.Property, val); result != nil {
		return result
	}
	return NULL
}

func (in *Interpreter) evalSubscriptAssignment(node *ast.SubscriptAssignmentStatement) Value {
	object := in.evalExpression(node.Object)
	if isFailure(object) {
		return object
	}
	index := in.evalExpression(node.Index)
	if isFailure(index) {
		return index
	}
	val := in.evalExpression(node.Value)
	if isFailure(val) {
		return val
	}

	s, ok := capability[SubscriptSetter](object)
	if !ok {
		return newError("TYPE-0006", map[string]any{"Got": object.TypeString()})
	}
	if result := s.SetSubscriptValue(index, val); result != nil {
		return result
	}
	return NULL
}
