package errors

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNRXError_String(t *testing.T) {
	tests := []struct {
		name     string
		err      *NRXError
		expected string
	}{
		{
			name:     "message only",
			err:      &NRXError{Message: "something went wrong"},
			expected: "something went wrong",
		},
		{
			name:     "with line and column",
			err:      &NRXError{Message: "unexpected token", Line: 5, Column: 10},
			expected: "line 5, column 10: unexpected token",
		},
		{
			name:     "with file",
			err:      &NRXError{Message: "parse error", File: "test.nrx", Line: 3, Column: 1},
			expected: "test.nrx: line 3, column 1: parse error",
		},
		{
			name: "with hints",
			err: &NRXError{
				Message: "undefined symbol: fo",
				Line:    1,
				Column:  1,
				Hints:   []string{"Did you mean `for`?"},
			},
			expected: "line 1, column 1: undefined symbol: fo\n  Did you mean `for`?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.String(); got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestNRXError_PrettyString(t *testing.T) {
	err := &NRXError{Class: ClassMath, Message: "division by zero", Line: 2, Column: 7}
	got := err.PrettyString()
	for _, want := range []string{"MathError", "line 2, column 7", "division by zero"} {
		if !strings.Contains(got, want) {
			t.Errorf("PrettyString() = %q, missing %q", got, want)
		}
	}
}

func TestNew_FromCatalog(t *testing.T) {
	tests := []struct {
		code     string
		data     map[string]any
		class    ErrorClass
		expected string
	}{
		{"TYPE-0001", map[string]any{"Operation": "add", "Left": "String", "Right": "Number"}, ClassType, "cannot add String and Number"},
		{"MATH-0001", nil, ClassMath, "division by zero"},
		{"MATH-0002", map[string]any{"Left": "String", "Right": "Number"}, ClassMath, "cannot order String and Number"},
		{"MATH-0003", map[string]any{"Limit": 10000}, ClassMath, "number out of range (magnitude beyond 1e10000)"},
		{"ARG-0001", map[string]any{"Function": "f", "Want": 2, "Got": 1}, ClassArgument, "`f` expects 2 argument(s), got 1"},
		{"INTERP-0001", map[string]any{"Depth": 500}, ClassInterpreter, "maximum call depth of 500 exceeded"},
		{"CUSTOM-0001", map[string]any{"Message": "boom"}, ClassCustom, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, tt.data)
			if err.Class != tt.class {
				t.Errorf("Class = %q, want %q", err.Class, tt.class)
			}
			if err.Message != tt.expected {
				t.Errorf("Message = %q, want %q", err.Message, tt.expected)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNew_UnknownCode(t *testing.T) {
	err := New("NOPE-9999", map[string]any{"message": "custom text"})
	if err.Message != "custom text" {
		t.Errorf("expected fallback message, got %q", err.Message)
	}
}

func TestNew_RendersHints(t *testing.T) {
	err := New("SYNTAX-0006", map[string]any{"Path": "1x"})
	if len(err.Hints) != 2 {
		t.Fatalf("expected 2 hints, got %v", err.Hints)
	}
	if err.Message != "invalid lookup path: $1x" {
		t.Errorf("unexpected message %q", err.Message)
	}
}

func TestWithPositionCopies(t *testing.T) {
	orig := NewSimple(ClassType, "x")
	moved := orig.WithPosition(4, 2)
	if orig.Line != 0 {
		t.Error("WithPosition must not modify the receiver")
	}
	if moved.Line != 4 || moved.Column != 2 {
		t.Errorf("unexpected position %d:%d", moved.Line, moved.Column)
	}
}

func TestClassPredicates(t *testing.T) {
	if !NewSimple(ClassSyntax, "").IsParseError() {
		t.Error("SyntaxError should be a parse error")
	}
	if !NewSimple(ClassCustom, "").IsRuntimeError() {
		t.Error("CustomError should be a runtime error")
	}
}

func TestToJSON(t *testing.T) {
	err := NewWithPosition("MATH-0001", 3, 9, nil)
	data, jerr := err.ToJSON()
	if jerr != nil {
		t.Fatalf("ToJSON failed: %v", jerr)
	}

	var decoded map[string]any
	if jerr := json.Unmarshal(data, &decoded); jerr != nil {
		t.Fatalf("invalid JSON: %v", jerr)
	}
	if decoded["class"] != "MathError" || decoded["line"] != float64(3) {
		t.Errorf("unexpected JSON %s", data)
	}
}

func TestFindClosestMatch(t *testing.T) {
	candidates := []string{"while", "print", "return", "function"}
	tests := []struct {
		input    string
		expected string
	}{
		{"whle", "while"},
		{"pritn", "print"},
		{"retrun", "return"},
		{"functon", "function"},
		{"while", ""},
		{"xyzzy", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := FindClosestMatch(tt.input, candidates); got != tt.expected {
				t.Errorf("FindClosestMatch(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFindTopMatches(t *testing.T) {
	got := FindTopMatches("cout", []string{"count", "court", "keys", "cat"}, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %v", got)
	}
	if got[0] != "count" && got[0] != "court" {
		t.Errorf("unexpected first match %q", got[0])
	}
}

func TestNewUndefinedSymbol(t *testing.T) {
	err := NewUndefinedSymbol("cout", []string{"count", "keys"})
	if err.Class != ClassLookup {
		t.Errorf("expected LookupError, got %s", err.Class)
	}
	if len(err.Hints) != 1 || !strings.Contains(err.Hints[0], "count") {
		t.Errorf("expected hint for count, got %v", err.Hints)
	}
}
