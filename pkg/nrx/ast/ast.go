package ast

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/NikolaiRuhe/NRExpressions/pkg/nrx/lexer"
)

// Node represents any node in the AST. Nodes are immutable once the parser
// has built them.
type Node interface {
	TokenLiteral() string
	String() string
	Position() (line, column int)
}

// Statement represents statement nodes
type Statement interface {
	Node
	statementNode()
}

// Expression represents expression nodes
type Expression interface {
	Node
	expressionNode()
}

// Block is a sequence of statements. The root of every parsed program is a Block.
type Block struct {
	Token      lexer.Token // the '{' token, or the first token of a program
	Statements []Statement
}

func (b *Block) statementNode()       {}
func (b *Block) TokenLiteral() string { return b.Token.Literal }
func (b *Block) Position() (int, int) { return b.Token.Line, b.Token.Column }
func (b *Block) String() string {
	var out bytes.Buffer
	out.WriteString("{ ")
	for i, s := range b.Statements {
		if i > 0 {
			out.WriteString("; ")
		}
		out.WriteString(s.String())
	}
	out.WriteString(" }")
	return out.String()
}

// ExpressionStatement wraps an expression used in statement position
type ExpressionStatement struct {
	Token      lexer.Token
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) Position() (int, int) { return es.Token.Line, es.Token.Column }
func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String()
	}
	return ""
}

// NoOpStatement is an empty statement (a lone ';')
type NoOpStatement struct {
	Token lexer.Token
}

func (ns *NoOpStatement) statementNode()       {}
func (ns *NoOpStatement) TokenLiteral() string { return ns.Token.Literal }
func (ns *NoOpStatement) Position() (int, int) { return ns.Token.Line, ns.Token.Column }
func (ns *NoOpStatement) String() string       { return ";" }

// AssignmentStatement represents 'x = 5' or 'global x = 5'
type AssignmentStatement struct {
	Token  lexer.Token // the identifier token
	Name   string
	Value  Expression
	Global bool
}

func (as *AssignmentStatement) statementNode()       {}
func (as *AssignmentStatement) TokenLiteral() string { return as.Token.Literal }
func (as *AssignmentStatement) Position() (int, int) { return as.Token.Line, as.Token.Column }
func (as *AssignmentStatement) String() string {
	prefix := ""
	if as.Global {
		prefix = "global "
	}
	return prefix + as.Name + " = " + as.Value.String()
}

// PropertyAssignmentStatement represents 'obj.prop = value'
type PropertyAssignmentStatement struct {
	Token    lexer.Token // the '=' token
	Object   Expression
	Property string
	Value    Expression
}

func (pa *PropertyAssignmentStatement) statementNode()       {}
func (pa *PropertyAssignmentStatement) TokenLiteral() string { return pa.Token.Literal }
func (pa *PropertyAssignmentStatement) Position() (int, int) { return pa.Token.Line, pa.Token.Column }
func (pa *PropertyAssignmentStatement) String() string {
	return pa.Object.String() + "." + pa.Property + " = " + pa.Value.String()
}

// SubscriptAssignmentStatement represents 'list[i] = value' or 'dict["k"] = value'
type SubscriptAssignmentStatement struct {
	Token  lexer.Token // the '=' token
	Object Expression
	Index  Expression
	Value  Expression
}

func (sa *SubscriptAssignmentStatement) statementNode()       {}
func (sa *SubscriptAssignmentStatement) TokenLiteral() string { return sa.Token.Literal }
func (sa *SubscriptAssignmentStatement) Position() (int, int) { return sa.Token.Line, sa.Token.Column }
func (sa *SubscriptAssignmentStatement) String() string {
	return sa.Object.String() + "[" + sa.Index.String() + "] = " + sa.Value.String()
}

// IfStatement represents 'if (cond) stmt else stmt'
type IfStatement struct {
	Token       lexer.Token
	Condition   Expression
	Consequence Statement
	Alternative Statement // may be nil
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Literal }
func (is *IfStatement) Position() (int, int) { return is.Token.Line, is.Token.Column }
func (is *IfStatement) String() string {
	out := "if (" + is.Condition.String() + ") " + is.Consequence.String()
	if is.Alternative != nil {
		out += " else " + is.Alternative.String()
	}
	return out
}

// WhileStatement represents 'while (cond) stmt'
type WhileStatement struct {
	Token     lexer.Token
	Condition Expression
	Body      Statement
}

func (ws *WhileStatement) statementNode()       {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Literal }
func (ws *WhileStatement) Position() (int, int) { return ws.Token.Line, ws.Token.Column }
func (ws *WhileStatement) String() string {
	return "while (" + ws.Condition.String() + ") " + ws.Body.String()
}

// ForInStatement represents 'for x in list stmt'
type ForInStatement struct {
	Token    lexer.Token
	Variable string
	List     Expression
	Body     Statement
}

func (fs *ForInStatement) statementNode()       {}
func (fs *ForInStatement) TokenLiteral() string { return fs.Token.Literal }
func (fs *ForInStatement) Position() (int, int) { return fs.Token.Line, fs.Token.Column }
func (fs *ForInStatement) String() string {
	return "for " + fs.Variable + " in " + fs.List.String() + " " + fs.Body.String()
}

// TryCatchStatement represents 'try stmt catch (e) stmt'
type TryCatchStatement struct {
	Token  lexer.Token
	Try    Statement
	Symbol string
	Catch  Statement
}

func (tc *TryCatchStatement) statementNode()       {}
func (tc *TryCatchStatement) TokenLiteral() string { return tc.Token.Literal }
func (tc *TryCatchStatement) Position() (int, int) { return tc.Token.Line, tc.Token.Column }
func (tc *TryCatchStatement) String() string {
	return "try " + tc.Try.String() + " catch (" + tc.Symbol + ") " + tc.Catch.String()
}

// PrintStatement represents 'print expr'
type PrintStatement struct {
	Token lexer.Token
	Value Expression
}

func (ps *PrintStatement) statementNode()       {}
func (ps *PrintStatement) TokenLiteral() string { return ps.Token.Literal }
func (ps *PrintStatement) Position() (int, int) { return ps.Token.Line, ps.Token.Column }
func (ps *PrintStatement) String() string       { return "print " + ps.Value.String() }

// AssertStatement represents 'assert expr'
type AssertStatement struct {
	Token lexer.Token
	Value Expression
}

func (as *AssertStatement) statementNode()       {}
func (as *AssertStatement) TokenLiteral() string { return as.Token.Literal }
func (as *AssertStatement) Position() (int, int) { return as.Token.Line, as.Token.Column }
func (as *AssertStatement) String() string       { return "assert " + as.Value.String() }

// ErrorStatement represents 'error expr'
type ErrorStatement struct {
	Token lexer.Token
	Value Expression
}

func (es *ErrorStatement) statementNode()       {}
func (es *ErrorStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ErrorStatement) Position() (int, int) { return es.Token.Line, es.Token.Column }
func (es *ErrorStatement) String() string       { return "error " + es.Value.String() }

// ReturnStatement represents 'return' with an optional value
type ReturnStatement struct {
	Token lexer.Token
	Value Expression // nil for a bare return
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStatement) Position() (int, int) { return rs.Token.Line, rs.Token.Column }
func (rs *ReturnStatement) String() string {
	if rs.Value == nil {
		return "return"
	}
	return "return " + rs.Value.String()
}

// BreakStatement represents 'break'
type BreakStatement struct {
	Token lexer.Token
}

func (bs *BreakStatement) statementNode()       {}
func (bs *BreakStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BreakStatement) Position() (int, int) { return bs.Token.Line, bs.Token.Column }
func (bs *BreakStatement) String() string       { return "break" }

// ContinueStatement represents 'continue'
type ContinueStatement struct {
	Token lexer.Token
}

func (cs *ContinueStatement) statementNode()       {}
func (cs *ContinueStatement) TokenLiteral() string { return cs.Token.Literal }
func (cs *ContinueStatement) Position() (int, int) { return cs.Token.Line, cs.Token.Column }
func (cs *ContinueStatement) String() string       { return "continue" }

// Symbol is a reference to a name in the scope chain
type Symbol struct {
	Token lexer.Token
	Name  string
}

func (s *Symbol) expressionNode()      {}
func (s *Symbol) TokenLiteral() string { return s.Token.Literal }
func (s *Symbol) Position() (int, int) { return s.Token.Line, s.Token.Column }
func (s *Symbol) String() string       { return s.Name }

// LookupToken is one element of a lookup path. Multi tokens fan out over lists.
type LookupToken struct {
	Name  string
	Multi bool
}

// Lookup is a host-resolved path such as $orders.*items.price
type Lookup struct {
	Token  lexer.Token
	Tokens []LookupToken
}

func (l *Lookup) expressionNode()      {}
func (l *Lookup) TokenLiteral() string { return l.Token.Literal }
func (l *Lookup) Position() (int, int) { return l.Token.Line, l.Token.Column }
func (l *Lookup) String() string {
	parts := make([]string, len(l.Tokens))
	for i, t := range l.Tokens {
		if t.Multi {
			parts[i] = "*" + t.Name
		} else {
			parts[i] = t.Name
		}
	}
	return "$" + strings.Join(parts, ".")
}

// NumberLiteral keeps the source text; the evaluator parses it as a decimal.
type NumberLiteral struct {
	Token lexer.Token
	Value string
}

func (nl *NumberLiteral) expressionNode()      {}
func (nl *NumberLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NumberLiteral) Position() (int, int) { return nl.Token.Line, nl.Token.Column }
func (nl *NumberLiteral) String() string       { return nl.Value }

// StringLiteral represents string literals
type StringLiteral struct {
	Token lexer.Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) Position() (int, int) { return sl.Token.Line, sl.Token.Column }
func (sl *StringLiteral) String() string       { return strconv.Quote(sl.Value) }

// BooleanLiteral represents true and false
type BooleanLiteral struct {
	Token lexer.Token
	Value bool
}

func (bl *BooleanLiteral) expressionNode()      {}
func (bl *BooleanLiteral) TokenLiteral() string { return bl.Token.Literal }
func (bl *BooleanLiteral) Position() (int, int) { return bl.Token.Line, bl.Token.Column }
func (bl *BooleanLiteral) String() string       { return bl.Token.Literal }

// NullLiteral represents null
type NullLiteral struct {
	Token lexer.Token
}

func (nl *NullLiteral) expressionNode()      {}
func (nl *NullLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NullLiteral) Position() (int, int) { return nl.Token.Line, nl.Token.Column }
func (nl *NullLiteral) String() string       { return "null" }

// ListLiteral represents [a, b, c]
type ListLiteral struct {
	Token    lexer.Token
	Elements []Expression
}

func (ll *ListLiteral) expressionNode()      {}
func (ll *ListLiteral) TokenLiteral() string { return ll.Token.Literal }
func (ll *ListLiteral) Position() (int, int) { return ll.Token.Line, ll.Token.Column }
func (ll *ListLiteral) String() string {
	elements := make([]string, len(ll.Elements))
	for i, el := range ll.Elements {
		elements[i] = el.String()
	}
	return "[" + strings.Join(elements, ", ") + "]"
}

// DictionaryEntry is one key/value pair of a dictionary literal
type DictionaryEntry struct {
	Key   string
	Value Expression
}

// DictionaryLiteral represents {"key": value, other: value}. Entries keep
// source order.
type DictionaryLiteral struct {
	Token   lexer.Token
	Entries []DictionaryEntry
}

func (dl *DictionaryLiteral) expressionNode()      {}
func (dl *DictionaryLiteral) TokenLiteral() string { return dl.Token.Literal }
func (dl *DictionaryLiteral) Position() (int, int) { return dl.Token.Line, dl.Token.Column }
func (dl *DictionaryLiteral) String() string {
	entries := make([]string, len(dl.Entries))
	for i, e := range dl.Entries {
		entries[i] = strconv.Quote(e.Key) + ": " + e.Value.String()
	}
	return "{" + strings.Join(entries, ", ") + "}"
}

// PrefixExpression represents '!x' and '-x'
type PrefixExpression struct {
	Token    lexer.Token
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()      {}
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PrefixExpression) Position() (int, int) { return pe.Token.Line, pe.Token.Column }
func (pe *PrefixExpression) String() string {
	return "(" + pe.Operator + pe.Right.String() + ")"
}

// InfixExpression represents binary operators like 'x + y'
type InfixExpression struct {
	Token    lexer.Token // the operator token
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) Position() (int, int) { return ie.Token.Line, ie.Token.Column }
func (ie *InfixExpression) String() string {
	return "(" + ie.Left.String() + " " + ie.Operator + " " + ie.Right.String() + ")"
}

// TernaryExpression represents 'cond ? a : b'
type TernaryExpression struct {
	Token       lexer.Token
	Condition   Expression
	Consequence Expression
	Alternative Expression
}

func (te *TernaryExpression) expressionNode()      {}
func (te *TernaryExpression) TokenLiteral() string { return te.Token.Literal }
func (te *TernaryExpression) Position() (int, int) { return te.Token.Line, te.Token.Column }
func (te *TernaryExpression) String() string {
	return "(" + te.Condition.String() + " ? " + te.Consequence.String() + " : " + te.Alternative.String() + ")"
}

// ComprehensionExpression represents 'list where x: cond' and 'list map x: expr'
type ComprehensionExpression struct {
	Token    lexer.Token // WHERE or MAP
	List     Expression
	Variable string
	Body     Expression
}

func (ce *ComprehensionExpression) expressionNode()      {}
func (ce *ComprehensionExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *ComprehensionExpression) Position() (int, int) { return ce.Token.Line, ce.Token.Column }
func (ce *ComprehensionExpression) String() string {
	return "(" + ce.List.String() + " " + ce.Token.Literal + " " + ce.Variable + ": " + ce.Body.String() + ")"
}

// IsFilter reports whether the comprehension keeps elements (where) rather
// than projecting them (map).
func (ce *ComprehensionExpression) IsFilter() bool {
	return ce.Token.Type == lexer.WHERE
}

// CallExpression represents 'f(a, b)'
type CallExpression struct {
	Token     lexer.Token // the '(' token
	Function  Expression
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) Position() (int, int) { return ce.Token.Line, ce.Token.Column }
func (ce *CallExpression) String() string {
	args := make([]string, len(ce.Arguments))
	for i, a := range ce.Arguments {
		args[i] = a.String()
	}
	return ce.Function.String() + "(" + strings.Join(args, ", ") + ")"
}

// SubscriptExpression represents 'list[i]'
type SubscriptExpression struct {
	Token lexer.Token // the '[' token
	Left  Expression
	Index Expression
}

func (se *SubscriptExpression) expressionNode()      {}
func (se *SubscriptExpression) TokenLiteral() string { return se.Token.Literal }
func (se *SubscriptExpression) Position() (int, int) { return se.Token.Line, se.Token.Column }
func (se *SubscriptExpression) String() string {
	return "(" + se.Left.String() + "[" + se.Index.String() + "])"
}

// PropertyExpression represents 'obj.name'
type PropertyExpression struct {
	Token    lexer.Token // the '.' token
	Object   Expression
	Property string
}

func (pe *PropertyExpression) expressionNode()      {}
func (pe *PropertyExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PropertyExpression) Position() (int, int) { return pe.Token.Line, pe.Token.Column }
func (pe *PropertyExpression) String() string {
	return pe.Object.String() + "." + pe.Property
}

// FunctionLiteral represents 'function name(a, b) { ... }'. Name is empty
// for anonymous functions.
type FunctionLiteral struct {
	Token      lexer.Token
	Name       string
	Parameters []string
	Body       *Block
}

func (fl *FunctionLiteral) expressionNode()      {}
func (fl *FunctionLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FunctionLiteral) Position() (int, int) { return fl.Token.Line, fl.Token.Column }
func (fl *FunctionLiteral) String() string {
	var out bytes.Buffer
	out.WriteString("function")
	if fl.Name != "" {
		out.WriteString(" " + fl.Name)
	}
	out.WriteString("(" + strings.Join(fl.Parameters, ", ") + ") ")
	out.WriteString(fl.Body.String())
	return out.String()
}
