// Package errors provides structured error types for the NRX language.
//
// NRXError represents both parse-time and runtime errors. Runtime errors are
// raised inside the interpreter as values and converted to NRXError when they
// reach the host.
package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/template"
)

// ErrorClass is the kind of an error. Every class except ClassSyntax is a
// runtime error that scripts can catch with try/catch.
type ErrorClass string

const (
	ClassSyntax      ErrorClass = "SyntaxError"
	ClassType        ErrorClass = "TypeError"
	ClassMath        ErrorClass = "MathError"
	ClassLookup      ErrorClass = "LookupError"
	ClassArgument    ErrorClass = "ArgumentError"
	ClassAssertion   ErrorClass = "AssertionError"
	ClassCustom      ErrorClass = "CustomError"
	ClassInterpreter ErrorClass = "InterpreterError"
)

// NRXError represents any error from parsing or evaluation.
type NRXError struct {
	Class   ErrorClass     `json:"class"`
	Code    string         `json:"code"`            // e.g. "TYPE-0001"
	Message string         `json:"message"`         // Human-readable message
	Hints   []string       `json:"hints,omitempty"` // Suggestions for fixing
	Line    int            `json:"line"`            // 1-based line (0 if unknown)
	Column  int            `json:"column"`          // 1-based column (0 if unknown)
	File    string         `json:"file,omitempty"`
	Data    map[string]any `json:"data,omitempty"` // Template variables
}

// Error implements the error interface.
func (e *NRXError) Error() string {
	return e.String()
}

// String returns a formatted string representation of the error.
func (e *NRXError) String() string {
	var sb strings.Builder

	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(": ")
	}
	if e.Line > 0 {
		sb.WriteString(fmt.Sprintf("line %d, column %d: ", e.Line, e.Column))
	}

	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// PrettyString returns a multi-line formatted string for display.
func (e *NRXError) PrettyString() string {
	var sb strings.Builder

	if e.Class == "" {
		sb.WriteString("Error")
	} else {
		sb.WriteString(string(e.Class))
	}

	if e.File != "" {
		sb.WriteString(":\n  in: ")
		sb.WriteString(e.File)
		if e.Line > 0 {
			sb.WriteString(fmt.Sprintf("\n  at: line %d, column %d", e.Line, e.Column))
		}
		sb.WriteString("\n  ")
	} else if e.Line > 0 {
		sb.WriteString(fmt.Sprintf(": line %d, column %d\n  ", e.Line, e.Column))
	} else {
		sb.WriteString(":\n  ")
	}

	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// ToJSON returns the error as JSON bytes.
func (e *NRXError) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// WithFile returns a copy of the error with the file path set.
func (e *NRXError) WithFile(file string) *NRXError {
	copy := *e
	copy.File = file
	return &copy
}

// WithPosition returns a copy of the error with line and column set.
func (e *NRXError) WithPosition(line, column int) *NRXError {
	copy := *e
	copy.Line = line
	copy.Column = column
	return &copy
}

// IsParseError returns true if this is a syntax error.
func (e *NRXError) IsParseError() bool {
	return e.Class == ClassSyntax
}

// IsRuntimeError returns true if the error was raised during evaluation.
func (e *NRXError) IsRuntimeError() bool {
	return e.Class != ClassSyntax
}

// ErrorDef defines an error in the catalog.
type ErrorDef struct {
	Class    ErrorClass
	Template string   // Message template with {{.placeholders}}
	Hints    []string // Hint templates (may use {{.placeholders}})
}

// ErrorCatalog maps error codes to their definitions.
var ErrorCatalog = map[string]ErrorDef{
	// Syntax errors
	"SYNTAX-0001": {
		Class:    ClassSyntax,
		Template: "expected {{.Expected}}, got '{{.Got}}'",
	},
	"SYNTAX-0002": {
		Class:    ClassSyntax,
		Template: "unexpected token '{{.Token}}'",
	},
	"SYNTAX-0003": {
		Class:    ClassSyntax,
		Template: "invalid number literal: {{.Literal}}",
	},
	"SYNTAX-0004": {
		Class:    ClassSyntax,
		Template: "invalid assignment target: {{.Target}}",
		Hints:    []string{"assign to a name, a property (obj.name = v) or a subscript (list[i] = v)"},
	},
	"SYNTAX-0005": {
		Class:    ClassSyntax,
		Template: "{{.Token}}",
	},
	"SYNTAX-0006": {
		Class:    ClassSyntax,
		Template: "invalid lookup path: ${{.Path}}",
		Hints:    []string{"$table.column", "$orders.*items.price"},
	},

	// Type errors
	"TYPE-0001": {
		Class:    ClassType,
		Template: "cannot {{.Operation}} {{.Left}} and {{.Right}}",
	},
	"TYPE-0002": {
		Class:    ClassType,
		Template: "cannot negate {{.Got}}",
	},
	"TYPE-0003": {
		Class:    ClassType,
		Template: "boolean expression expected, got {{.Got}}",
	},
	"TYPE-0004": {
		Class:    ClassType,
		Template: "cannot call {{.Got}} as a function",
	},
	"TYPE-0005": {
		Class:    ClassType,
		Template: "cannot iterate over {{.Got}}",
		Hints:    []string{"for x in list { ... }"},
	},
	"TYPE-0006": {
		Class:    ClassType,
		Template: "{{.Got}} does not support subscripts",
	},
	"TYPE-0007": {
		Class:    ClassType,
		Template: "{{.Got}} has no properties",
	},
	"TYPE-0008": {
		Class:    ClassType,
		Template: "cannot set property '{{.Property}}' on {{.Got}}",
	},
	"TYPE-0009": {
		Class:    ClassType,
		Template: "cannot test whether {{.Left}} contains {{.Right}}",
	},
	"TYPE-0010": {
		Class:    ClassType,
		Template: "argument to `{{.Function}}` must be {{.Expected}}, got {{.Got}}",
	},

	// Math errors
	"MATH-0001": {
		Class:    ClassMath,
		Template: "division by zero",
	},
	"MATH-0002": {
		Class:    ClassMath,
		Template: "cannot order {{.Left}} and {{.Right}}",
		Hints:    []string{"only == and != compare values of different types"},
	},
	"MATH-0003": {
		Class:    ClassMath,
		Template: "number out of range (magnitude beyond 1e{{.Limit}})",
	},

	// Lookup errors
	"LOOKUP-0001": {
		Class:    ClassLookup,
		Template: "index {{.Index}} out of range (length {{.Length}})",
	},
	"LOOKUP-0002": {
		Class:    ClassLookup,
		Template: "key '{{.Key}}' not found",
	},
	"LOOKUP-0003": {
		Class:    ClassLookup,
		Template: "invalid index {{.Index}} for {{.Got}}",
	},
	"LOOKUP-0004": {
		Class:    ClassLookup,
		Template: "undefined symbol: {{.Name}}",
	},
	"LOOKUP-0005": {
		Class:    ClassLookup,
		Template: "{{.Got}} has no property '{{.Property}}'",
	},

	// Argument errors
	"ARG-0001": {
		Class:    ClassArgument,
		Template: "`{{.Function}}` expects {{.Want}} argument(s), got {{.Got}}",
	},
	"ARG-0002": {
		Class:    ClassArgument,
		Template: "invalid argument to `{{.Function}}`: {{.Reason}}",
	},

	// Assertion errors
	"ASSERT-0001": {
		Class:    ClassAssertion,
		Template: "assertion failed: {{.Expression}}",
	},

	// Custom errors
	"CUSTOM-0001": {
		Class:    ClassCustom,
		Template: "{{.Message}}",
	},

	// Interpreter errors
	"INTERP-0001": {
		Class:    ClassInterpreter,
		Template: "maximum call depth of {{.Depth}} exceeded",
	},
	"INTERP-0002": {
		Class:    ClassInterpreter,
		Template: "'{{.Statement}}' outside of {{.Context}}",
	},
	"INTERP-0003": {
		Class:    ClassInterpreter,
		Template: "interpreter is already running",
	},
	"INTERP-0004": {
		Class:    ClassInterpreter,
		Template: "cannot evaluate {{.Node}}",
	},
}

// New creates an NRXError from the catalog.
// If the code is not found, creates a generic error with the message.
func New(code string, data map[string]any) *NRXError {
	def, ok := ErrorCatalog[code]
	if !ok {
		msg := code
		if data != nil {
			if m, ok := data["message"].(string); ok {
				msg = m
			}
		}
		return &NRXError{
			Class:   ClassInterpreter,
			Code:    code,
			Message: msg,
			Data:    data,
		}
	}

	msg := renderTemplate(def.Template, data)

	var hints []string
	for _, hintTmpl := range def.Hints {
		rendered := renderTemplate(hintTmpl, data)
		if rendered != "" {
			hints = append(hints, rendered)
		}
	}

	return &NRXError{
		Class:   def.Class,
		Code:    code,
		Message: msg,
		Hints:   hints,
		Data:    data,
	}
}

// NewWithPosition creates an NRXError with position information.
func NewWithPosition(code string, line, column int, data map[string]any) *NRXError {
	err := New(code, data)
	err.Line = line
	err.Column = column
	return err
}

// NewSimple creates a simple error without using the catalog.
func NewSimple(class ErrorClass, message string) *NRXError {
	return &NRXError{
		Class:   class,
		Message: message,
	}
}

// renderTemplate renders a Go template with the given data.
func renderTemplate(tmplStr string, data map[string]any) string {
	if data == nil {
		return tmplStr
	}

	tmpl, err := template.New("").Parse(tmplStr)
	if err != nil {
		return tmplStr
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return tmplStr
	}

	return buf.String()
}

// levenshteinDistance computes the edit distance between two strings.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(a)][len(b)]
}

// matchThreshold is the largest edit distance still offered as a suggestion.
func matchThreshold(input string) int {
	switch {
	case len(input) >= 7:
		return 3
	case len(input) >= 4:
		return 2
	default:
		return 1
	}
}

// FindClosestMatch finds the closest match to input among candidates.
// Returns "" when nothing is close enough or the input matches exactly.
func FindClosestMatch(input string, candidates []string) string {
	if len(input) == 0 || len(candidates) == 0 {
		return ""
	}

	inputLower := strings.ToLower(input)

	var bestMatch string
	bestDistance := -1

	for _, candidate := range candidates {
		dist := levenshteinDistance(inputLower, strings.ToLower(candidate))
		if bestDistance == -1 || dist < bestDistance {
			bestDistance = dist
			bestMatch = candidate
		}
	}

	if bestDistance <= 0 || bestDistance > matchThreshold(input) {
		return ""
	}

	return bestMatch
}

// FindTopMatches returns up to n candidates within the suggestion threshold,
// closest first.
func FindTopMatches(input string, candidates []string, n int) []string {
	if len(input) == 0 || len(candidates) == 0 || n <= 0 {
		return nil
	}

	type fuzzyMatch struct {
		value    string
		distance int
	}

	inputLower := strings.ToLower(input)
	var matches []fuzzyMatch
	for _, candidate := range candidates {
		dist := levenshteinDistance(inputLower, strings.ToLower(candidate))
		if dist > 0 {
			matches = append(matches, fuzzyMatch{value: candidate, distance: dist})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})

	threshold := matchThreshold(input)
	var result []string
	for i := 0; i < len(matches) && len(result) < n; i++ {
		if matches[i].distance <= threshold {
			result = append(result, matches[i].value)
		}
	}

	return result
}

// NewUndefinedSymbol creates a LookupError for an unresolved name with an
// optional "did you mean" hint.
func NewUndefinedSymbol(name string, available []string) *NRXError {
	err := New("LOOKUP-0004", map[string]any{"Name": name})
	if suggestion := FindClosestMatch(name, available); suggestion != "" {
		err.Hints = append(err.Hints, "Did you mean `"+suggestion+"`?")
	}
	return err
}
