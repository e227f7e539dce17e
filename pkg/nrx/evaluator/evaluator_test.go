package evaluator

import (
	"strings"
	"testing"
	"time"

	nrxerrors "github.com/NikolaiRuhe/NRExpressions/pkg/nrx/errors"
	"github.com/NikolaiRuhe/NRExpressions/pkg/nrx/parser"
)

// Helper to parse and evaluate NRX code with a fresh interpreter
func testEval(t *testing.T, input string) Value {
	t.Helper()
	return testEvalWith(t, New(), input)
}

func testEvalWith(t *testing.T, in *Interpreter, input string) Value {
	t.Helper()
	program, err := parser.Parse(input)
	if err != nil {
		t.Fatalf("parse error for %q: %s", input, err)
	}
	return in.Run(program)
}

func expectInspect(t *testing.T, input, expected string) {
	t.Helper()
	result := testEval(t, input)
	if isInterrupt(result) {
		t.Fatalf("%q: unexpected %s", input, result.Inspect())
	}
	if got := result.Inspect(); got != expected {
		t.Errorf("%q: expected %s, got %s", input, expected, got)
	}
}

func expectError(t *testing.T, input string, kind ErrorClass, contains string) *Error {
	t.Helper()
	result := testEval(t, input)
	err, ok := result.(*Error)
	if !ok {
		t.Fatalf("%q: expected %s, got %T (%s)", input, kind, result, result.Inspect())
	}
	if err.Kind != kind {
		t.Errorf("%q: expected %s, got %s: %s", input, kind, err.Kind, err.Message)
	}
	if !strings.Contains(err.Message, contains) {
		t.Errorf("%q: expected message containing %q, got %q", input, contains, err.Message)
	}
	return err
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 1", "2"},
		{"0.1 + 0.2", "0.3"},
		{"10 / 4", "2.5"},
		{"7 % 3", "1"},
		{"-3 * 2", "-6"},
		{"1e3", "1000"},
		{"3.", "3"},
		{".5 + .25", "0.75"},
		{"2 * (3 + 4)", "14"},
		{"1.50", "1.5"},
		{"1 - 0.9", "0.1"},
		{`"a" + "b"`, "ab"},
		{"[1] + [2, 3]", "[1, 2, 3]"},
		{"1 / 8", "0.125"},
		{"1e-20 / 1", "0.00000000000000000001"},
		{"1 / 1e30", "0.000000000000000000000000000001"},
		{"1 / 3", "0.3333333333333333333333333333333333"},
		{"2 / 3", "0.6666666666666666666666666666666667"},
		{"1e9999 * 10", "10000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expectInspect(t, tt.input, tt.expected)
		})
	}
}

func TestDecimalEqualityIsExact(t *testing.T) {
	for _, input := range []string{"0.1 + 0.2 == 0.3", "1e-20 / 1 == 1e-20", "1e-20 / 4 == 0.25e-20", "6 / 3 == 2"} {
		if result := testEval(t, input); result != TRUE {
			t.Errorf("%s: expected true, got %s", input, result.Inspect())
		}
	}
}

func TestArithmeticErrors(t *testing.T) {
	err := expectError(t, `"a" + 1`, nrxerrors.ClassType, "cannot add String and Number")
	if err.Line != 1 {
		t.Errorf("expected line 1, got %d", err.Line)
	}
	expectError(t, "1 / 0", nrxerrors.ClassMath, "division by zero")
	expectError(t, "1 % 0", nrxerrors.ClassMath, "division by zero")
	expectError(t, "true * 2", nrxerrors.ClassType, "cannot multiply Boolean and Number")
	expectError(t, `-"a"`, nrxerrors.ClassType, "cannot negate String")
	expectError(t, "!1", nrxerrors.ClassType, "boolean expression expected, got Number")
	expectError(t, "1e9999 * 1e9999", nrxerrors.ClassMath, "number out of range")
	expectError(t, "1e-9999 / 1e9999", nrxerrors.ClassMath, "number out of range")
	expectError(t, "1e999999999", nrxerrors.ClassSyntax, "invalid number literal")
}

func TestComparisons(t *testing.T) {
	tests := []struct {
		input    string
		expected Value
	}{
		{"1 < 2", TRUE},
		{"2 <= 2", TRUE},
		{"3 >= 4", FALSE},
		{`"a" < "b"`, TRUE},
		{`1 == "1"`, FALSE},
		{`1 != "1"`, TRUE},
		{"null == null", TRUE},
		{"null == false", FALSE},
		{"true == true", TRUE},
		{"[1] == [1]", FALSE},
		{"x = [1]; x == x", TRUE},
		{"d = {}; d == d", TRUE},
		{"1.0 == 1", TRUE},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if result := testEval(t, tt.input); result != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected.Inspect(), result.Inspect())
			}
		})
	}

	expectError(t, `1 < "a"`, nrxerrors.ClassMath, "cannot order Number and String")
	expectError(t, "true < false", nrxerrors.ClassMath, "cannot order Boolean and Boolean")
	if result := testEval(t, "null <= null"); result != TRUE {
		t.Errorf("null orders the same as null, got %s", result.Inspect())
	}
}

func TestCompareIsTotal(t *testing.T) {
	values := []Value{NULL, TRUE, NumberFromInt(1), NewString("1"), NewList(), NewDictionary(), NaN}
	for i, a := range values {
		for j, b := range values {
			order := Compare(a, b)
			if i != j && order != Unrelated {
				t.Errorf("Compare(%s, %s) = %s, want unrelated", a.Inspect(), b.Inspect(), order)
			}
		}
	}
	if Compare(NaN, NaN) != Unrelated {
		t.Error("NaN must be unrelated to itself")
	}
	if Compare(NewHostObject(struct{}{}), NULL) != Unrelated {
		t.Error("values without a comparer are unrelated")
	}
}

func TestLogicalOperators(t *testing.T) {
	tests := []struct {
		input    string
		expected Value
	}{
		{"true && false", FALSE},
		{"true || false", TRUE},
		{"false && (1 / 0 == 1)", FALSE},
		{"true || (1 / 0 == 1)", TRUE},
		{"not true", FALSE},
		{"true and not false", TRUE},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if result := testEval(t, tt.input); result != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected.Inspect(), result.Inspect())
			}
		})
	}
	expectError(t, "1 && true", nrxerrors.ClassType, "boolean expression expected")
	expectError(t, "true && 1", nrxerrors.ClassType, "boolean expression expected")
}

func TestScopeShadowing(t *testing.T) {
	expectInspect(t, "x = 1; { x = 2 }; x", "2")
	expectInspect(t, "{ y = 1 }; y", "null")
	expectInspect(t, "x = 1; { x = 2; { x = 3 } }; x", "3")
	expectInspect(t, "x = 1; { y = x + 1; x = y }; x", "2")
}

func TestFunctionIsolation(t *testing.T) {
	expectInspect(t, "f = null; { a = 1; f = function() { return a } }; f()", "null")
	expectInspect(t, "a = 1; f = function() { return a }; f()", "1")
	expectInspect(t, "function f(x) { x = x + 1; return x }; x = 10; f(1) + x", "12")
	expectInspect(t, "function setl() { l = 5 }; setl(); l", "null")
	expectInspect(t, "function setg() { global g = 5 }; setg(); g", "5")
}

func TestFunctions(t *testing.T) {
	expectInspect(t, "f = function(n) { if (n <= 1) { return 1 } return n * f(n - 1) }; f(5)", "120")
	expectInspect(t, "function sq(x) { return x * x }; sq(4)", "16")
	expectInspect(t, "f = function() { }; f()", "null")
	expectInspect(t, "f = function() { return }; f()", "null")
	expectInspect(t, "apply = function(g, v) { return g(v) }; apply(function(x) { return x + 1 }, 1)", "2")

	expectError(t, "f = function(a) { return a }; f(1, 2)", nrxerrors.ClassArgument, "expects 1 argument(s), got 2")
	expectError(t, "x = 1; x()", nrxerrors.ClassType, "cannot call Number as a function")
	expectError(t, "f = function() { break }; f()", nrxerrors.ClassInterpreter, "'break' outside of a loop")
}

func TestCallDepthLimit(t *testing.T) {
	in := New()
	in.MaxCallDepth = 50
	result := testEvalWith(t, in, "f = function(n) { return f(n + 1) }; f(0)")
	err, ok := result.(*Error)
	if !ok || err.Kind != nrxerrors.ClassInterpreter {
		t.Fatalf("expected InterpreterError, got %s", result.Inspect())
	}
	if !strings.Contains(err.Message, "maximum call depth of 50") {
		t.Errorf("unexpected message %q", err.Message)
	}

	// the counter unwinds, so the interpreter stays usable
	expectInspectWith(t, in, "g = function(n) { if (n == 0) { return 0 } return g(n - 1) }; g(40)", "0")
}

func expectInspectWith(t *testing.T, in *Interpreter, input, expected string) {
	t.Helper()
	result := testEvalWith(t, in, input)
	if got := result.Inspect(); got != expected {
		t.Errorf("%q: expected %s, got %s", input, expected, got)
	}
}

func TestLoopControl(t *testing.T) {
	input := `
out = []
for i in [1, 2, 3] {
  if (i == 2) continue
  j = 0
  while (true) {
    j = j + 1
    if (j > 2) break
    append(out, i * 10 + j)
  }
}
out`
	expectInspect(t, input, "[11, 12, 31, 32]")

	expectInspect(t, "n = 0; while (n < 10) { n = n + 1; if (n == 3) { break } }; n", "3")
	expectInspect(t, "s = 0; for x in range(5) { if (x % 2 == 0) continue; s = s + x }; s", "4")
}

func TestForInIteratesSnapshot(t *testing.T) {
	expectInspect(t, "l = [1, 2, 3]; n = 0; for x in l { append(l, x); n = n + 1 }; n", "3")
	expectError(t, "for x in 5 { }", nrxerrors.ClassType, "cannot iterate over Number")
}

func TestStrayControlFlowAtTopLevel(t *testing.T) {
	expectInspect(t, "return 5; 6", "5")
	expectError(t, "break", nrxerrors.ClassInterpreter, "'break' outside of a loop")
	expectError(t, "x = 1\ncontinue", nrxerrors.ClassInterpreter, "'continue' outside of a loop")
}

func TestTryCatch(t *testing.T) {
	expectInspect(t, `try { error "boom" } catch (e) { e.message }`, "boom")
	expectInspect(t, `try { error 42 } catch (e) { e.value + 1 }`, "43")
	expectInspect(t, `try { 1 / 0 } catch (e) { e.kind }`, "MathError")
	expectInspect(t, "try {\n  x = 1\n  y = x / 0\n} catch (e) { e.line }", "3")
	expectInspect(t, `x = 0; try { x = 1 } catch (e) { x = 2 }; x`, "1")
	expectInspect(t, `try { assert false } catch e e.kind`, "AssertionError")
	expectInspect(t, `f = function() { error "inner" }; try { f() } catch (e) { e.message }`, "inner")
	expectInspect(t, `r = 0; for i in [1, 2] { try { break } catch (e) { r = 99 } }; r`, "0")
}

func TestTimeoutIsNotCaught(t *testing.T) {
	in := New()
	in.MaxEvaluationTime = 20 * time.Millisecond

	start := time.Now()
	result := testEvalWith(t, in, `try { while (true) { } } catch (e) { "caught" }`)
	if !IsTimeout(result) {
		t.Fatalf("expected timeout, got %s", result.Inspect())
	}
	if time.Since(start) > 5*time.Second {
		t.Errorf("timeout took too long: %s", time.Since(start))
	}

	// the next run gets a fresh budget
	expectInspectWith(t, in, "1 + 1", "2")
}

func TestRuntimeErrorsCarryLines(t *testing.T) {
	result := testEval(t, "x = 1\ny = 2\nz = x + \"a\"")
	err, ok := result.(*Error)
	if !ok {
		t.Fatalf("expected error, got %s", result.Inspect())
	}
	if err.Line != 3 {
		t.Errorf("expected line 3, got %d", err.Line)
	}

	nerr := err.ToNRXError()
	if nerr.Class != nrxerrors.ClassType || nerr.Line != 3 || nerr.Code != "TYPE-0001" {
		t.Errorf("unexpected NRXError %+v", nerr)
	}
}

func TestPrintSink(t *testing.T) {
	var printed []string
	in := New()
	in.Print = func(v Value) { printed = append(printed, v.Inspect()) }

	result := testEvalWith(t, in, "x = 0; while (x < 3) { print x; x = x + 1 }")
	if result != NULL {
		t.Errorf("expected null, got %s", result.Inspect())
	}
	if strings.Join(printed, ",") != "0,1,2" {
		t.Errorf("expected 0,1,2, got %v", printed)
	}
}

func TestAssertAndError(t *testing.T) {
	expectError(t, "assert 1 == 2", nrxerrors.ClassAssertion, "assertion failed: (1 == 2)")
	expectError(t, "assert 1", nrxerrors.ClassType, "boolean expression expected")
	expectInspect(t, "assert 1 == 1", "null")

	err := expectError(t, `error {code: 7}`, nrxerrors.ClassCustom, "code")
	d, ok := err.Value.(*Dictionary)
	if !ok {
		t.Fatalf("expected dictionary payload, got %T", err.Value)
	}
	if v, _ := d.Get("code"); v.Inspect() != "7" {
		t.Errorf("unexpected payload %s", d.Inspect())
	}
}

func TestStrictSymbols(t *testing.T) {
	expectInspect(t, "undefinedThing", "null")

	in := New()
	in.StrictSymbols = true
	result := testEvalWith(t, in, "cout([1])")
	err, ok := result.(*Error)
	if !ok || err.Kind != nrxerrors.ClassLookup {
		t.Fatalf("expected LookupError, got %s", result.Inspect())
	}
	if len(err.Hints) == 0 || !strings.Contains(err.Hints[0], "count") {
		t.Errorf("expected hint for count, got %v", err.Hints)
	}
}

func TestPropertiesAndSubscripts(t *testing.T) {
	expectInspect(t, `d = {}; d.name = "x"; d.name`, "x")
	expectInspect(t, `d = {a: 1}; d["a"]`, "1")
	expectInspect(t, `d = {a: 1}; d.zz`, "null")
	expectInspect(t, `d = {a: 1}; d["b"] = 2; d`, `{"a": 1, "b": 2}`)
	expectInspect(t, `d = {a: 1, b: 2}; d.count`, "2")
	expectInspect(t, `d = {count: "mine"}; d.count`, "mine")
	expectInspect(t, "l = [1, 2, 3]; l[1] = 20; l", "[1, 20, 3]")
	expectInspect(t, `"abc"[1]`, "b")
	expectInspect(t, `"héllo".len`, "5")
	expectInspect(t, "[1, 2].count", "2")

	expectError(t, `d = {a: 1}; d["zz"]`, nrxerrors.ClassLookup, "key 'zz' not found")
	expectError(t, "l = [1]; l[5]", nrxerrors.ClassLookup, "index 5 out of range")
	expectError(t, "l = [1]; l[-1]", nrxerrors.ClassLookup, "out of range")
	expectError(t, "l = [7, 8]; l[18446744073709551616]", nrxerrors.ClassLookup, "index 18446744073709551616 out of range")
	expectError(t, "l = [7, 8]; l[-18446744073709551616]", nrxerrors.ClassLookup, "out of range")
	expectError(t, "l = [7, 8]; l[18446744073709551616] = 1", nrxerrors.ClassLookup, "out of range")
	expectError(t, `"ab"[18446744073709551617]`, nrxerrors.ClassLookup, "out of range")
	expectError(t, "l = [1]; l[0.5]", nrxerrors.ClassLookup, "invalid index")
	expectError(t, `l = [1]; l["a"]`, nrxerrors.ClassLookup, "invalid index")
	expectError(t, "x = 5; x.foo", nrxerrors.ClassType, "Number has no properties")
	expectError(t, `"s".foo`, nrxerrors.ClassLookup, "String has no property 'foo'")
	expectError(t, "x = 5; x[0]", nrxerrors.ClassType, "Number does not support subscripts")
	expectError(t, "x = 5; x.y = 1", nrxerrors.ClassType, "cannot set property 'y' on Number")
}

func TestSharedReferences(t *testing.T) {
	expectInspect(t, "a = [1]; b = a; append(b, 2); a", "[1, 2]")
	expectInspect(t, "a = {}; b = a; b.k = 1; a.k", "1")
	expectInspect(t, `a = "x"; b = a; b = b + "y"; a`, "x")
}

func TestComprehensions(t *testing.T) {
	expectInspect(t, "[1, 2, 3, 4] where x: x > 2", "[3, 4]")
	expectInspect(t, "[1, 2, 3] map x: x * x", "[1, 4, 9]")
	expectInspect(t, "[1, 2, 3] where x: x > 1 map y: y * 10", "[20, 30]")
	expectInspect(t, "x = 5; r = [1] map x: x; x", "5")
	expectInspect(t, "[] map x: x", "[]")
	expectError(t, "[1, 2] where x: x", nrxerrors.ClassType, "boolean expression expected")
	expectError(t, "[1, 0] map x: 1 / x", nrxerrors.ClassMath, "division by zero")
	expectError(t, "5 map x: x", nrxerrors.ClassType, "cannot iterate over Number")
}

func TestContainsAndTernary(t *testing.T) {
	tests := []struct {
		input    string
		expected Value
	}{
		{"[1, 2] contains 2", TRUE},
		{"[1, 2] contains 3", FALSE},
		{`"hello" contains "ell"`, TRUE},
		{`d = {a: 1}; d contains "a"`, TRUE},
		{`d = {a: 1}; d contains "b"`, FALSE},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if result := testEval(t, tt.input); result != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected.Inspect(), result.Inspect())
			}
		})
	}
	expectError(t, "1 contains 1", nrxerrors.ClassType, "cannot test whether Number contains Number")

	expectInspect(t, `1 < 2 ? "yes" : "no"`, "yes")
	expectInspect(t, `false ? 1 / 0 : 2`, "2")
	expectError(t, "1 ? 2 : 3", nrxerrors.ClassType, "boolean expression expected")
}

// Host objects used by the capability tests

type lazyNumber struct{ n int64 }

func (l lazyNumber) PromoteToValue() Value { return NumberFromInt(l.n) }

type vector struct{ x, y int64 }

func (v vector) TypeString() string { return "Vector" }

func (v vector) Add(other Value) Value {
	h, ok := other.(*HostObject)
	if !ok {
		return nil
	}
	o, ok := h.Target.(vector)
	if !ok {
		return nil
	}
	return NewHostObject(vector{v.x + o.x, v.y + o.y})
}

func (v vector) ValueForProperty(name string) Value {
	switch name {
	case "x":
		return NumberFromInt(v.x)
	case "y":
		return NumberFromInt(v.y)
	}
	return nil
}

func TestHostObjects(t *testing.T) {
	in := New()
	in.SetGlobal("lazy", NewHostObject(lazyNumber{41}))
	in.SetGlobal("v", NewHostObject(vector{1, 2}))

	expectInspectWith(t, in, "lazy + 1", "42")
	expectInspectWith(t, in, "w = v + v; w.y", "4")

	result := testEvalWith(t, in, "v + 1")
	err, ok := result.(*Error)
	if !ok || !strings.Contains(err.Message, "cannot add Vector and Number") {
		t.Errorf("expected type error naming Vector, got %s", result.Inspect())
	}
	result = testEvalWith(t, in, "v * v")
	if !IsError(result) {
		t.Errorf("expected type error for missing capability, got %s", result.Inspect())
	}
}

type testDelegate struct {
	symbols map[string]Value
	root    *Dictionary
	lookups int
}

func (d *testDelegate) ResolveSymbol(name string) (Value, bool) {
	v, ok := d.symbols[name]
	return v, ok
}

func (d *testDelegate) LookupToken(base Value, token string) (Value, bool) {
	d.lookups++
	switch b := base.(type) {
	case *Null:
		return d.root.Get(token)
	case *Dictionary:
		return b.Get(token)
	}
	return nil, false
}

func newTestDelegate() *testDelegate {
	item := func(price int64) Value {
		d := NewDictionary()
		d.Set("price", NumberFromInt(price))
		return d
	}
	order := NewDictionary()
	order.Set("items", NewList(item(3), item(4)))
	order.Set("customer", NULL)
	root := NewDictionary()
	root.Set("order", order)
	root.Set("orders", NewList(order, order))
	return &testDelegate{
		symbols: map[string]Value{"answer": NumberFromInt(42)},
		root:    root,
	}
}

func TestDelegateSymbols(t *testing.T) {
	in := New()
	in.Delegate = newTestDelegate()
	expectInspectWith(t, in, "answer + 1", "43")
	expectInspectWith(t, in, "answer = 1; answer", "1")
	expectInspectWith(t, in, "missing", "null")
}

func TestLookupPaths(t *testing.T) {
	in := New()
	delegate := newTestDelegate()
	in.Delegate = delegate

	expectInspectWith(t, in, "$order.*items.price", "[3, 4]")
	expectInspectWith(t, in, "$order.*items", `[{"price": 3}, {"price": 4}]`)
	expectInspectWith(t, in, "$orders.items", "null")
	expectInspectWith(t, in, "$order.items.price", "null")
	expectInspectWith(t, in, "$order.missing.price", "null")
	expectInspectWith(t, in, "$nothing", "null")

	delegate.lookups = 0
	expectInspectWith(t, in, "$order.customer.name.first", "null")
	if delegate.lookups != 2 {
		t.Errorf("lookup must stop at the first null, made %d lookups", delegate.lookups)
	}

	// lookups never fall back to properties
	plain := New()
	expectInspectWith(t, plain, "$order.items", "null")
}

func TestReentrantRunFails(t *testing.T) {
	in := New()
	program, _ := parser.Parse("1")
	in.SetGlobal("reenter", NewNative("reenter", 0, func(args []Value) Value {
		return in.Run(program)
	}))

	result := testEvalWith(t, in, "reenter()")
	err, ok := result.(*Error)
	if !ok || err.Kind != nrxerrors.ClassInterpreter || !strings.Contains(err.Message, "already running") {
		t.Fatalf("expected InterpreterError, got %s", result.Inspect())
	}
	if in.Running() {
		t.Error("interpreter should be idle after Run returns")
	}
}

func TestCallFromHost(t *testing.T) {
	in := New()
	testEvalWith(t, in, "function double(x) { return x * 2 }")
	fn, ok := in.Globals.Get("double")
	if !ok {
		t.Fatal("double not defined")
	}
	if result := in.Call(fn, []Value{NumberFromInt(21)}); result.Inspect() != "42" {
		t.Errorf("expected 42, got %s", result.Inspect())
	}
	if result := in.Call(NumberFromInt(1), nil); !IsError(result) {
		t.Errorf("expected error calling a number, got %s", result.Inspect())
	}
}

func TestEvaluationDoesNotMutateTree(t *testing.T) {
	program, _ := parser.Parse("x = [1, 2]; y = x map v: v * 2; y")
	before := program.String()
	in := New()
	first := in.Run(program).Inspect()
	second := in.Run(program).Inspect()
	if first != second || program.String() != before {
		t.Errorf("running twice changed results or tree: %s / %s", first, second)
	}
}
