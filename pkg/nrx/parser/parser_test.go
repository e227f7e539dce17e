package parser

import (
	"strings"
	"testing"

	"github.com/NikolaiRuhe/NRExpressions/pkg/nrx/ast"
	nrxerrors "github.com/NikolaiRuhe/NRExpressions/pkg/nrx/errors"
	"github.com/NikolaiRuhe/NRExpressions/pkg/nrx/lexer"
)

func parse(t *testing.T, input string) *ast.Block {
	t.Helper()
	program, err := Parse(input)
	if err != nil {
		t.Fatalf("parse(%q) failed: %s", input, err)
	}
	return program
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"-a * b", "((-a) * b)"},
		{"!true == false", "((!true) == false)"},
		{"a && b || c", "((a && b) || c)"},
		{"a and not b or c", "((a && (!b)) || c)"},
		{"a < b == c > d", "((a < b) == (c > d))"},
		{"a % b - c / d", "((a % b) - (c / d))"},
		{"f(1, 2)[0].x", "(f(1, 2)[0]).x"},
		{"c ? 1 : 2", "(c ? 1 : 2)"},
		{"a ? b ? 1 : 2 : 3", "(a ? (b ? 1 : 2) : 3)"},
		{"a contains 1 + 2", "(a contains (1 + 2))"},
		{"xs where x: x > 1 map y: y * 2", "((xs where x: (x > 1)) map y: (y * 2))"},
		{"xs where x: x > 1 && x < 5", "(xs where x: ((x > 1) && (x < 5)))"},
		{"$orders.*items.price", "$orders.*items.price"},
		{"3. * x / width - 1.5", "(((3. * x) / width) - 1.5)"},
		{`{"a": 1, b: [1, 2]}`, `{"a": 1, "b": [1, 2]}`},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			program := parse(t, "x = "+tt.input)
			if len(program.Statements) != 1 {
				t.Fatalf("expected 1 statement, got %d", len(program.Statements))
			}
			assign, ok := program.Statements[0].(*ast.AssignmentStatement)
			if !ok {
				t.Fatalf("expected assignment, got %T", program.Statements[0])
			}
			if got := assign.Value.String(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestStatements(t *testing.T) {
	program := parse(t, `x = 0; while (x < 3) { print x; x = x + 1 }`)
	if len(program.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(program.Statements))
	}
	loop, ok := program.Statements[1].(*ast.WhileStatement)
	if !ok {
		t.Fatalf("expected while statement, got %T", program.Statements[1])
	}
	body, ok := loop.Body.(*ast.Block)
	if !ok || len(body.Statements) != 2 {
		t.Fatalf("expected block body with 2 statements, got %s", loop.Body)
	}
	if _, ok := body.Statements[0].(*ast.PrintStatement); !ok {
		t.Errorf("expected print statement, got %T", body.Statements[0])
	}
}

func TestStatementKinds(t *testing.T) {
	tests := []struct {
		input    string
		expected any
	}{
		{"if (a) b = 1 else b = 2", &ast.IfStatement{}},
		{"for x in xs { print x }", &ast.ForInStatement{}},
		{"for (x in xs) print x", &ast.ForInStatement{}},
		{"try { error 1 } catch (e) { print e }", &ast.TryCatchStatement{}},
		{"try error 1 catch e print e", &ast.TryCatchStatement{}},
		{"assert 1 == 1", &ast.AssertStatement{}},
		{"error \"boom\"", &ast.ErrorStatement{}},
		{"global g = 1", &ast.AssignmentStatement{}},
		{"o.name = 1", &ast.PropertyAssignmentStatement{}},
		{"xs[0] = 1", &ast.SubscriptAssignmentStatement{}},
		{"function f(a, b) { return a + b }", &ast.ExpressionStatement{}},
		{";", &ast.NoOpStatement{}},
		{"{ x = 1 }", &ast.Block{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			program := parse(t, tt.input)
			if len(program.Statements) != 1 {
				t.Fatalf("expected 1 statement, got %d: %s", len(program.Statements), program)
			}
			got := program.Statements[0]
			if gotType, wantType := typeName(got), typeName(tt.expected); gotType != wantType {
				t.Errorf("expected %s, got %s", wantType, gotType)
			}
		})
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *ast.IfStatement:
		return "if"
	case *ast.ForInStatement:
		return "for"
	case *ast.TryCatchStatement:
		return "try"
	case *ast.AssertStatement:
		return "assert"
	case *ast.ErrorStatement:
		return "error"
	case *ast.AssignmentStatement:
		return "assign"
	case *ast.PropertyAssignmentStatement:
		return "property-assign"
	case *ast.SubscriptAssignmentStatement:
		return "subscript-assign"
	case *ast.ExpressionStatement:
		return "expression"
	case *ast.NoOpStatement:
		return "noop"
	case *ast.Block:
		return "block"
	}
	return "unknown"
}

func TestGlobalAssignment(t *testing.T) {
	program := parse(t, "global counter = 1")
	assign := program.Statements[0].(*ast.AssignmentStatement)
	if !assign.Global || assign.Name != "counter" {
		t.Errorf("unexpected assignment %+v", assign)
	}
}

func TestFunctionLiteral(t *testing.T) {
	program := parse(t, "function add(a, b) { return a + b }")
	stmt := program.Statements[0].(*ast.ExpressionStatement)
	fn, ok := stmt.Expression.(*ast.FunctionLiteral)
	if !ok {
		t.Fatalf("expected function literal, got %T", stmt.Expression)
	}
	if fn.Name != "add" {
		t.Errorf("expected name add, got %q", fn.Name)
	}
	if strings.Join(fn.Parameters, ",") != "a,b" {
		t.Errorf("unexpected parameters %v", fn.Parameters)
	}
	if len(fn.Body.Statements) != 1 {
		t.Errorf("expected 1 body statement, got %d", len(fn.Body.Statements))
	}
}

func TestReturnValueMustStartOnSameLine(t *testing.T) {
	program := parse(t, "f = function() {\n  return\n}")
	fn := program.Statements[0].(*ast.AssignmentStatement).Value.(*ast.FunctionLiteral)
	ret := fn.Body.Statements[0].(*ast.ReturnStatement)
	if ret.Value != nil {
		t.Errorf("expected bare return, got %s", ret.Value)
	}

	program = parse(t, "f = function() { return 1 }")
	fn = program.Statements[0].(*ast.AssignmentStatement).Value.(*ast.FunctionLiteral)
	ret = fn.Body.Statements[0].(*ast.ReturnStatement)
	if ret.Value == nil || ret.Value.String() != "1" {
		t.Errorf("expected return 1, got %s", ret)
	}
}

func TestNewlineEndsCallsAndSubscripts(t *testing.T) {
	program := parse(t, "a = b\n(c)")
	if len(program.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(program.Statements))
	}

	program = parse(t, "a = b\n[1, 2]")
	if len(program.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(program.Statements))
	}
}

func TestLookupTokens(t *testing.T) {
	program := parse(t, "x = $orders.*items.price")
	lookup := program.Statements[0].(*ast.AssignmentStatement).Value.(*ast.Lookup)
	expected := []ast.LookupToken{{Name: "orders"}, {Name: "items", Multi: true}, {Name: "price"}}
	if len(lookup.Tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(lookup.Tokens))
	}
	for i, tok := range expected {
		if lookup.Tokens[i] != tok {
			t.Errorf("token %d: expected %+v, got %+v", i, tok, lookup.Tokens[i])
		}
	}
}

func TestComprehensionKind(t *testing.T) {
	program := parse(t, "x = xs where v: v")
	c := program.Statements[0].(*ast.AssignmentStatement).Value.(*ast.ComprehensionExpression)
	if !c.IsFilter() {
		t.Error("where should be a filter")
	}
	program = parse(t, "x = xs map v: v")
	c = program.Statements[0].(*ast.AssignmentStatement).Value.(*ast.ComprehensionExpression)
	if c.IsFilter() {
		t.Error("map should not be a filter")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		line     int
		contains string
	}{
		{"missing value", "x = ", 1, "expected expression"},
		{"unclosed paren", "x = (1 + 2", 1, "expected ')'"},
		{"error on second line", "x = 1\ny = )", 2, "unexpected token ')'"},
		{"invalid target", "1 = 2", 1, "invalid assignment target"},
		{"keyword typo", "pritn x", 1, "Did you mean 'print'"},
		{"unterminated string", `x = "abc`, 1, "unterminated string"},
		{"unclosed block", "while (true) {\n  x = 1\n", 3, "expected '}'"},
		{"missing catch", "try { x = 1 } y = 2", 1, "expected 'catch'"},
		{"bad lookup", "x = $", 1, "$"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program, err := Parse(tt.input)
			if err == nil {
				t.Fatalf("expected error, got program %s", program)
			}
			if err.Class != nrxerrors.ClassSyntax {
				t.Errorf("expected SyntaxError, got %s", err.Class)
			}
			if err.Line != tt.line {
				t.Errorf("expected line %d, got %d (%s)", tt.line, err.Line, err)
			}
			if !strings.Contains(err.Message, tt.contains) {
				t.Errorf("expected message containing %q, got %q", tt.contains, err.Message)
			}
		})
	}
}

func TestOnlyFirstErrorIsKept(t *testing.T) {
	p := New(lexer.New("x = )\ny = )"))
	p.ParseProgram()
	if len(p.Errors()) != 1 {
		t.Errorf("expected exactly one error, got %v", p.Errors())
	}
}

func TestParseFileAttachesFilename(t *testing.T) {
	_, err := ParseFile("x = )", "script.nrx")
	if err == nil || err.File != "script.nrx" {
		t.Fatalf("expected error with file name, got %v", err)
	}
}
