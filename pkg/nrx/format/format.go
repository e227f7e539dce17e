package format

import (
	"strings"

	"github.com/NikolaiRuhe/NRExpressions/pkg/nrx/ast"
	nrxerrors "github.com/NikolaiRuhe/NRExpressions/pkg/nrx/errors"
	"github.com/NikolaiRuhe/NRExpressions/pkg/nrx/lexer"
	"github.com/NikolaiRuhe/NRExpressions/pkg/nrx/parser"
)

// Source parses and formats a program. Comments are not part of the syntax
// tree and are not preserved; see HasComments.
func Source(source string) (string, *nrxerrors.NRXError) {
	program, err := parser.Parse(source)
	if err != nil {
		return "", err
	}
	return FormatProgram(program), nil
}

// FormatProgram formats a parsed program, one statement per line.
func FormatProgram(program *ast.Block) string {
	p := NewPrinter()
	p.statements(program.Statements)
	return p.String()
}

// FormatExpression returns the single-line form of an expression with the
// fewest parentheses that preserve its meaning. Function bodies are laid
// out on several lines.
func FormatExpression(e ast.Expression) string {
	if s, ok := inline(e, parser.LOWEST); ok {
		return s
	}
	p := NewPrinter()
	p.expr(e, parser.LOWEST)
	return p.String()
}

// HasComments reports whether source contains a line comment outside
// string literals.
func HasComments(source string) bool {
	inString := false
	for i := 0; i < len(source); i++ {
		ch := source[i]
		if inString {
			switch ch {
			case '\\':
				i++
			case '"', '\n':
				inString = false
			}
			continue
		}
		switch {
		case ch == '"':
			inString = true
		case ch == '#':
			return true
		case ch == '/' && i+1 < len(source) && source[i+1] == '/':
			return true
		}
	}
	return false
}

func (p *Printer) statements(stmts []ast.Statement) {
	for _, s := range stmts {
		if _, ok := s.(*ast.NoOpStatement); ok {
			continue
		}
		p.writeIndent()
		p.statement(s)
		p.newline()
	}
}

func (p *Printer) statement(s ast.Statement) {
	switch n := s.(type) {
	case *ast.Block:
		p.block(n)

	case *ast.ExpressionStatement:
		p.expressionStatement(n.Expression)

	case *ast.AssignmentStatement:
		if n.Global {
			p.write("global ")
		}
		p.write(n.Name + " = ")
		p.expr(n.Value, parser.LOWEST)

	case *ast.PropertyAssignmentStatement:
		p.expr(n.Object, parser.INDEX)
		p.write("." + n.Property + " = ")
		p.expr(n.Value, parser.LOWEST)

	case *ast.SubscriptAssignmentStatement:
		p.expr(n.Object, parser.INDEX)
		p.write("[")
		p.expr(n.Index, parser.LOWEST)
		p.write("] = ")
		p.expr(n.Value, parser.LOWEST)

	case *ast.IfStatement:
		p.write("if ")
		p.expr(n.Condition, parser.LOWEST)
		p.body(n.Consequence)
		if n.Alternative != nil {
			if _, isBlock := n.Consequence.(*ast.Block); isBlock {
				p.write(" ")
			} else {
				p.newline()
				p.writeIndent()
			}
			p.write("else")
			if elseIf, ok := n.Alternative.(*ast.IfStatement); ok {
				p.write(" ")
				p.statement(elseIf)
			} else {
				p.body(n.Alternative)
			}
		}

	case *ast.WhileStatement:
		p.write("while ")
		p.expr(n.Condition, parser.LOWEST)
		p.body(n.Body)

	case *ast.ForInStatement:
		p.write("for " + n.Variable + " in ")
		p.expr(n.List, parser.LOWEST)
		p.body(n.Body)

	case *ast.TryCatchStatement:
		p.write("try")
		p.body(n.Try)
		if _, isBlock := n.Try.(*ast.Block); isBlock {
			p.write(" ")
		} else {
			p.newline()
			p.writeIndent()
		}
		p.write("catch (" + n.Symbol + ")")
		p.body(n.Catch)

	case *ast.PrintStatement:
		p.write("print ")
		p.expr(n.Value, parser.LOWEST)

	case *ast.AssertStatement:
		p.write("assert ")
		p.expr(n.Value, parser.LOWEST)

	case *ast.ErrorStatement:
		p.write("error ")
		p.expr(n.Value, parser.LOWEST)

	case *ast.ReturnStatement:
		p.write("return")
		if n.Value != nil {
			p.write(" ")
			p.expr(n.Value, parser.LOWEST)
		}

	case *ast.BreakStatement:
		p.write("break")

	case *ast.ContinueStatement:
		p.write("continue")

	default:
		p.write(s.String())
	}
}

// expressionStatement guards the two statement forms that would otherwise
// parse differently: a leading '{' opens a block, and a leading '-' joins
// the previous line as a subtraction.
func (p *Printer) expressionStatement(e ast.Expression) {
	if first := leftmost(e); first == "-" || first == "{" {
		p.write("(")
		p.expr(e, parser.LOWEST)
		p.write(")")
		return
	}
	p.expr(e, parser.LOWEST)
}

// leftmost returns the text of the first operand of e.
func leftmost(e ast.Expression) string {
	for {
		switch n := e.(type) {
		case *ast.InfixExpression:
			e = n.Left
		case *ast.TernaryExpression:
			e = n.Condition
		case *ast.ComprehensionExpression:
			e = n.List
		case *ast.CallExpression:
			e = n.Function
		case *ast.SubscriptExpression:
			e = n.Left
		case *ast.PropertyExpression:
			e = n.Object
		case *ast.PrefixExpression:
			return n.Operator
		case *ast.DictionaryLiteral:
			return "{"
		default:
			return e.String()
		}
	}
}

// body writes the statement controlled by if/while/for/try. Blocks stay on
// the same line; any other statement goes on its own indented line, since
// wrapping it in braces would give it a scope of its own.
func (p *Printer) body(s ast.Statement) {
	if b, ok := s.(*ast.Block); ok {
		p.write(" ")
		p.block(b)
		return
	}
	p.newline()
	p.indentInc()
	p.writeIndent()
	if es, ok := s.(*ast.ExpressionStatement); ok {
		// A body on its own line must not continue the condition
		p.write("(")
		p.expr(es.Expression, parser.LOWEST)
		p.write(")")
	} else {
		p.statement(s)
	}
	p.indentDec()
}

func (p *Printer) block(b *ast.Block) {
	if len(b.Statements) == 0 {
		p.write("{}")
		return
	}
	p.write("{")
	p.newline()
	p.indentInc()
	p.statements(b.Statements)
	p.indentDec()
	p.writeIndent()
	p.write("}")
}

// precedence returns the binding strength of e's outermost operator.
// Literals and symbols bind tightest.
func precedence(e ast.Expression) int {
	switch n := e.(type) {
	case *ast.InfixExpression:
		return operatorPrecedence[n.Operator]
	case *ast.TernaryExpression:
		return parser.TERNARY
	case *ast.ComprehensionExpression:
		return parser.COMPREHENSION
	case *ast.PrefixExpression:
		return parser.PREFIX
	case *ast.CallExpression, *ast.SubscriptExpression, *ast.PropertyExpression:
		return parser.INDEX
	}
	return parser.CALL + 1
}

var operatorPrecedence = map[string]int{
	lexer.OR.String():       parser.LOGIC_OR,
	lexer.AND.String():      parser.LOGIC_AND,
	lexer.EQ.String():       parser.EQUALS,
	lexer.NOT_EQ.String():   parser.EQUALS,
	lexer.LT.String():       parser.LESSGREATER,
	lexer.GT.String():       parser.LESSGREATER,
	lexer.LTE.String():      parser.LESSGREATER,
	lexer.GTE.String():      parser.LESSGREATER,
	lexer.CONTAINS.String(): parser.CONTAINS,
	lexer.PLUS.String():     parser.SUM,
	lexer.MINUS.String():    parser.SUM,
	lexer.ASTERISK.String(): parser.PRODUCT,
	lexer.SLASH.String():    parser.PRODUCT,
	lexer.PERCENT.String():  parser.PRODUCT,
}

// expr writes e so that it parses back at the given minimum precedence.
func (p *Printer) expr(e ast.Expression, min int) {
	if precedence(e) < min {
		p.write("(")
		p.expr(e, parser.LOWEST)
		p.write(")")
		return
	}

	switch n := e.(type) {
	case *ast.StringLiteral:
		p.write(quote(n.Value))

	case *ast.PrefixExpression:
		p.write(n.Operator)
		p.expr(n.Right, parser.PREFIX)

	case *ast.InfixExpression:
		prec := operatorPrecedence[n.Operator]
		p.expr(n.Left, prec)
		p.write(" " + n.Operator + " ")
		p.expr(n.Right, prec+1)

	case *ast.TernaryExpression:
		p.expr(n.Condition, parser.TERNARY+1)
		p.write(" ? ")
		p.expr(n.Consequence, parser.LOWEST)
		p.write(" : ")
		p.expr(n.Alternative, parser.LOWEST)

	case *ast.ComprehensionExpression:
		p.expr(n.List, parser.COMPREHENSION)
		p.write(" " + n.Token.Literal + " " + n.Variable + ": ")
		p.expr(n.Body, parser.COMPREHENSION+1)

	case *ast.CallExpression:
		p.expr(n.Function, parser.INDEX)
		p.list("(", ")", n.Arguments, MaxLineWidth, false)

	case *ast.SubscriptExpression:
		p.expr(n.Left, parser.INDEX)
		p.write("[")
		p.expr(n.Index, parser.LOWEST)
		p.write("]")

	case *ast.PropertyExpression:
		p.expr(n.Object, parser.INDEX)
		p.write("." + n.Property)

	case *ast.ListLiteral:
		p.list("[", "]", n.Elements, ListThreshold, TrailingCommaMultiline)

	case *ast.DictionaryLiteral:
		p.dictionary(n)

	case *ast.FunctionLiteral:
		p.write("function")
		if n.Name != "" {
			p.write(" " + n.Name)
		}
		p.write("(" + strings.Join(n.Parameters, ", ") + ") ")
		p.block(n.Body)

	default:
		// Symbols, numbers, booleans, null and lookups print as written
		p.write(e.String())
	}
}

// list writes a bracketed, comma-separated list of expressions inline when
// it fits, one element per line otherwise.
func (p *Printer) list(open, close string, elements []ast.Expression, threshold int, trailingComma bool) {
	if len(elements) == 0 {
		p.write(open + close)
		return
	}

	var parts []string
	flat := true
	for _, el := range elements {
		s, ok := inline(el, parser.LOWEST)
		if !ok {
			flat = false
			break
		}
		parts = append(parts, s)
	}
	if flat {
		joined := open + strings.Join(parts, ", ") + close
		if p.flat || (fitsInThreshold(joined, threshold) && p.fitsOnLine(joined, MaxLineWidth)) {
			p.write(joined)
			return
		}
	}

	p.write(open)
	p.newline()
	p.indentInc()
	for i, el := range elements {
		p.writeIndent()
		p.expr(el, parser.LOWEST)
		if trailingComma || i < len(elements)-1 {
			p.write(",")
		}
		p.newline()
	}
	p.indentDec()
	p.writeIndent()
	p.write(close)
}

func (p *Printer) dictionary(d *ast.DictionaryLiteral) {
	if len(d.Entries) == 0 {
		p.write("{}")
		return
	}

	parts := make([]string, 0, len(d.Entries))
	flat := true
	for _, entry := range d.Entries {
		s, ok := inline(entry.Value, parser.LOWEST)
		if !ok {
			flat = false
			break
		}
		parts = append(parts, dictKey(entry.Key)+": "+s)
	}
	if flat {
		joined := "{" + strings.Join(parts, ", ") + "}"
		if p.flat || (fitsInThreshold(joined, DictThreshold) && p.fitsOnLine(joined, MaxLineWidth)) {
			p.write(joined)
			return
		}
	}

	p.write("{")
	p.newline()
	p.indentInc()
	for i, entry := range d.Entries {
		p.writeIndent()
		p.write(dictKey(entry.Key) + ": ")
		p.expr(entry.Value, parser.LOWEST)
		if TrailingCommaMultiline || i < len(d.Entries)-1 {
			p.write(",")
		}
		p.newline()
	}
	p.indentDec()
	p.writeIndent()
	p.write("}")
}

// inline renders e on a single line. It fails for function literals, whose
// bodies always span lines.
func inline(e ast.Expression, min int) (string, bool) {
	if containsFunction(e) {
		return "", false
	}
	p := &Printer{flat: true}
	p.expr(e, min)
	return p.String(), true
}

func containsFunction(e ast.Expression) bool {
	switch n := e.(type) {
	case *ast.FunctionLiteral:
		return true
	case *ast.PrefixExpression:
		return containsFunction(n.Right)
	case *ast.InfixExpression:
		return containsFunction(n.Left) || containsFunction(n.Right)
	case *ast.TernaryExpression:
		return containsFunction(n.Condition) || containsFunction(n.Consequence) || containsFunction(n.Alternative)
	case *ast.ComprehensionExpression:
		return containsFunction(n.List) || containsFunction(n.Body)
	case *ast.CallExpression:
		if containsFunction(n.Function) {
			return true
		}
		for _, a := range n.Arguments {
			if containsFunction(a) {
				return true
			}
		}
	case *ast.SubscriptExpression:
		return containsFunction(n.Left) || containsFunction(n.Index)
	case *ast.PropertyExpression:
		return containsFunction(n.Object)
	case *ast.ListLiteral:
		for _, el := range n.Elements {
			if containsFunction(el) {
				return true
			}
		}
	case *ast.DictionaryLiteral:
		for _, entry := range n.Entries {
			if containsFunction(entry.Value) {
				return true
			}
		}
	}
	return false
}

// dictKey writes a key bare when it lexes as a plain identifier.
func dictKey(key string) string {
	if isIdentifier(key) && lexer.LookupIdent(key) == lexer.IDENT {
		return key
	}
	return quote(key)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z'):
		case i > 0 && '0' <= r && r <= '9':
		default:
			return false
		}
	}
	return true
}

// quote writes a string literal using the escapes the lexer understands.
func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
