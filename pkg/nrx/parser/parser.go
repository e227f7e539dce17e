package parser

import (
	"fmt"
	"strings"

	"github.com/NikolaiRuhe/NRExpressions/pkg/nrx/ast"
	nrxerrors "github.com/NikolaiRuhe/NRExpressions/pkg/nrx/errors"
	"github.com/NikolaiRuhe/NRExpressions/pkg/nrx/lexer"
)

// Precedence levels for operators
const (
	_ int = iota
	LOWEST
	TERNARY       // c ? a : b
	COMPREHENSION // where, map
	LOGIC_OR      // ||, or
	LOGIC_AND     // &&, and
	EQUALS        // ==
	LESSGREATER   // > or <
	CONTAINS      // contains
	SUM           // +
	PRODUCT       // *
	PREFIX        // -X or !X
	INDEX         // list[index], obj.prop
	CALL          // myFunction(X)
)

// precedences maps tokens to their precedence
var precedences = map[lexer.TokenType]int{
	lexer.QUESTION: TERNARY,
	lexer.WHERE:    COMPREHENSION,
	lexer.MAP:      COMPREHENSION,
	lexer.OR:       LOGIC_OR,
	lexer.AND:      LOGIC_AND,
	lexer.EQ:       EQUALS,
	lexer.NOT_EQ:   EQUALS,
	lexer.LT:       LESSGREATER,
	lexer.GT:       LESSGREATER,
	lexer.LTE:      LESSGREATER,
	lexer.GTE:      LESSGREATER,
	lexer.CONTAINS: CONTAINS,
	lexer.PLUS:     SUM,
	lexer.MINUS:    SUM,
	lexer.SLASH:    PRODUCT,
	lexer.ASTERISK: PRODUCT,
	lexer.PERCENT:  PRODUCT,
	lexer.LBRACKET: INDEX,
	lexer.DOT:      INDEX,
	lexer.LPAREN:   CALL,
}

// Parser represents the parser
type Parser struct {
	l *lexer.Lexer

	structuredErrors []*nrxerrors.NRXError

	prevToken lexer.Token
	curToken  lexer.Token
	peekToken lexer.Token

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Parse parses source into a root block. On failure it returns the first
// syntax error, which carries the message and 1-based line.
func Parse(source string) (*ast.Block, *nrxerrors.NRXError) {
	return ParseFile(source, "")
}

// ParseFile is Parse with a file name attached to reported errors.
func ParseFile(source, filename string) (*ast.Block, *nrxerrors.NRXError) {
	var l *lexer.Lexer
	if filename == "" {
		l = lexer.New(source)
	} else {
		l = lexer.NewWithFilename(source, filename)
	}
	p := New(l)
	program := p.ParseProgram()
	if errs := p.StructuredErrors(); len(errs) > 0 {
		if filename != "" {
			return nil, errs[0].WithFile(filename)
		}
		return nil, errs[0]
	}
	return program, nil
}

// New creates a parser reading tokens from l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		l: l,
	}

	p.prefixParseFns = make(map[lexer.TokenType]prefixParseFn)
	p.registerPrefix(lexer.IDENT, p.parseSymbol)
	p.registerPrefix(lexer.NUMBER, p.parseNumberLiteral)
	p.registerPrefix(lexer.STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.LOOKUP, p.parseLookup)
	p.registerPrefix(lexer.TRUE, p.parseBoolean)
	p.registerPrefix(lexer.FALSE, p.parseBoolean)
	p.registerPrefix(lexer.NULL, p.parseNull)
	p.registerPrefix(lexer.BANG, p.parsePrefixExpression)
	p.registerPrefix(lexer.MINUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(lexer.LBRACKET, p.parseListLiteral)
	p.registerPrefix(lexer.LBRACE, p.parseDictionaryLiteral)
	p.registerPrefix(lexer.FUNCTION, p.parseFunctionLiteral)

	p.infixParseFns = make(map[lexer.TokenType]infixParseFn)
	for _, tt := range []lexer.TokenType{
		lexer.PLUS, lexer.MINUS, lexer.SLASH, lexer.ASTERISK, lexer.PERCENT,
		lexer.EQ, lexer.NOT_EQ, lexer.LT, lexer.GT, lexer.LTE, lexer.GTE,
		lexer.AND, lexer.OR, lexer.CONTAINS,
	} {
		p.registerInfix(tt, p.parseInfixExpression)
	}
	p.registerInfix(lexer.QUESTION, p.parseTernaryExpression)
	p.registerInfix(lexer.WHERE, p.parseComprehension)
	p.registerInfix(lexer.MAP, p.parseComprehension)
	p.registerInfix(lexer.LPAREN, p.parseCallExpression)
	p.registerInfix(lexer.LBRACKET, p.parseSubscriptExpression)
	p.registerInfix(lexer.DOT, p.parsePropertyExpression)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

// Errors returns parser errors as strings (convenience method for tests).
func (p *Parser) Errors() []string {
	result := make([]string, len(p.structuredErrors))
	for i, err := range p.structuredErrors {
		if err.Line > 0 {
			result[i] = fmt.Sprintf("line %d, column %d: %s", err.Line, err.Column, err.Message)
		} else {
			result[i] = err.Message
		}
	}
	return result
}

// StructuredErrors returns parser errors as structured NRXError objects.
func (p *Parser) StructuredErrors() []*nrxerrors.NRXError {
	return p.structuredErrors
}

// addError records a syntax error. Only the first error is kept; later ones
// are usually cascading noise.
func (p *Parser) addError(msg string, line, column int, hints ...string) {
	if len(p.structuredErrors) > 0 {
		return
	}
	p.structuredErrors = append(p.structuredErrors, &nrxerrors.NRXError{
		Class:   nrxerrors.ClassSyntax,
		Message: msg,
		Hints:   hints,
		Line:    line,
		Column:  column,
	})
}

// addStructuredError records a catalog error. Only the first error is kept.
func (p *Parser) addStructuredError(code string, line, column int, data map[string]any) {
	if len(p.structuredErrors) > 0 {
		return
	}
	p.structuredErrors = append(p.structuredErrors, nrxerrors.NewWithPosition(code, line, column, data))
}

func (p *Parser) registerPrefix(tokenType lexer.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType lexer.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

// nextToken advances prevToken, curToken, and peekToken
func (p *Parser) nextToken() {
	p.prevToken = p.curToken
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

// ParseProgram parses the whole input into a root block.
func (p *Parser) ParseProgram() *ast.Block {
	program := &ast.Block{Token: p.curToken}
	program.Statements = []ast.Statement{}

	for !p.curTokenIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		if len(p.structuredErrors) > 0 {
			break
		}
		p.nextToken()
	}

	return program
}

// parseStatement parses one statement and leaves curToken on its last token.
func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case lexer.SEMICOLON:
		return &ast.NoOpStatement{Token: p.curToken}
	case lexer.LBRACE:
		if block := p.parseBlock(); block != nil {
			return block
		}
		return nil
	case lexer.IF:
		return p.parseIfStatement()
	case lexer.WHILE:
		return p.parseWhileStatement()
	case lexer.FOR:
		return p.parseForInStatement()
	case lexer.TRY:
		return p.parseTryCatchStatement()
	case lexer.RETURN:
		return p.parseReturnStatement()
	case lexer.BREAK:
		return p.endStatement(&ast.BreakStatement{Token: p.curToken})
	case lexer.CONTINUE:
		return p.endStatement(&ast.ContinueStatement{Token: p.curToken})
	case lexer.PRINT:
		tok := p.curToken
		p.nextToken()
		return p.endStatement(&ast.PrintStatement{Token: tok, Value: p.parseExpression(LOWEST)})
	case lexer.ASSERT:
		tok := p.curToken
		p.nextToken()
		return p.endStatement(&ast.AssertStatement{Token: tok, Value: p.parseExpression(LOWEST)})
	case lexer.ERROR:
		tok := p.curToken
		p.nextToken()
		return p.endStatement(&ast.ErrorStatement{Token: tok, Value: p.parseExpression(LOWEST)})
	case lexer.GLOBAL:
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}
		return p.parseAssignmentStatement(true)
	case lexer.IDENT:
		// An identifier directly followed by another operand is almost always
		// a misspelt keyword.
		sameLine := p.peekToken.Line == p.curToken.Line
		if sameLine && (p.peekTokenIs(lexer.IDENT) || p.peekTokenIs(lexer.NUMBER) || p.peekTokenIs(lexer.STRING)) {
			if hint := p.checkKeywordTypo(p.curToken.Literal); hint != "" {
				p.addError(hint, p.curToken.Line, p.curToken.Column)
				return nil
			}
		}
		if p.peekTokenIs(lexer.ASSIGN) {
			return p.parseAssignmentStatement(false)
		}
		return p.parseExpressionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

// endStatement consumes an optional trailing semicolon.
func (p *Parser) endStatement(stmt ast.Statement) ast.Statement {
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseAssignmentStatement(global bool) ast.Statement {
	stmt := &ast.AssignmentStatement{Token: p.curToken, Name: p.curToken.Literal, Global: global}

	if !p.expectPeek(lexer.ASSIGN) {
		return nil
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	return p.endStatement(stmt)
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	firstToken := p.curToken

	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}

	if p.peekTokenIs(lexer.ASSIGN) {
		p.nextToken()
		assignToken := p.curToken
		p.nextToken()
		value := p.parseExpression(LOWEST)
		if value == nil {
			return nil
		}

		switch target := expr.(type) {
		case *ast.PropertyExpression:
			return p.endStatement(&ast.PropertyAssignmentStatement{
				Token:    assignToken,
				Object:   target.Object,
				Property: target.Property,
				Value:    value,
			})
		case *ast.SubscriptExpression:
			return p.endStatement(&ast.SubscriptAssignmentStatement{
				Token:  assignToken,
				Object: target.Left,
				Index:  target.Index,
				Value:  value,
			})
		default:
			p.addStructuredError("SYNTAX-0004", assignToken.Line, assignToken.Column,
				map[string]any{"Target": expr.String()})
			return nil
		}
	}

	return p.endStatement(&ast.ExpressionStatement{Token: firstToken, Expression: expr})
}

func (p *Parser) parseBlock() *ast.Block {
	block := &ast.Block{Token: p.curToken}
	block.Statements = []ast.Statement{}

	p.nextToken()

	for !p.curTokenIs(lexer.RBRACE) {
		if p.curTokenIs(lexer.EOF) {
			p.addStructuredError("SYNTAX-0001", p.curToken.Line, p.curToken.Column,
				map[string]any{"Expected": "'}'", "Got": "end of file"})
			return nil
		}
		stmt := p.parseStatement()
		if stmt == nil || len(p.structuredErrors) > 0 {
			return nil
		}
		block.Statements = append(block.Statements, stmt)
		p.nextToken()
	}

	return block
}

// parseBody parses the statement controlled by if/while/for/try.
func (p *Parser) parseBody() ast.Statement {
	p.nextToken()
	if p.curTokenIs(lexer.EOF) {
		p.addStructuredError("SYNTAX-0001", p.curToken.Line, p.curToken.Column,
			map[string]any{"Expected": "statement", "Got": "end of file"})
		return nil
	}
	return p.parseStatement()
}

func (p *Parser) parseIfStatement() ast.Statement {
	stmt := &ast.IfStatement{Token: p.curToken}

	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}

	if stmt.Consequence = p.parseBody(); stmt.Consequence == nil {
		return nil
	}

	if p.peekTokenIs(lexer.ELSE) {
		p.nextToken()
		if stmt.Alternative = p.parseBody(); stmt.Alternative == nil {
			return nil
		}
	}

	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	stmt := &ast.WhileStatement{Token: p.curToken}

	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}

	if stmt.Body = p.parseBody(); stmt.Body == nil {
		return nil
	}
	return stmt
}

// parseForInStatement parses 'for x in list stmt' and 'for (x in list) stmt'.
func (p *Parser) parseForInStatement() ast.Statement {
	stmt := &ast.ForInStatement{Token: p.curToken}

	parenthesized := p.peekTokenIs(lexer.LPAREN)
	if parenthesized {
		p.nextToken()
	}
	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	stmt.Variable = p.curToken.Literal
	if !p.expectPeek(lexer.IN) {
		return nil
	}

	p.nextToken()
	stmt.List = p.parseExpression(LOWEST)
	if stmt.List == nil {
		return nil
	}
	if parenthesized && !p.expectPeek(lexer.RPAREN) {
		return nil
	}

	if stmt.Body = p.parseBody(); stmt.Body == nil {
		return nil
	}
	return stmt
}

// parseTryCatchStatement parses 'try stmt catch (e) stmt'. The parentheses
// around the catch symbol are optional.
func (p *Parser) parseTryCatchStatement() ast.Statement {
	stmt := &ast.TryCatchStatement{Token: p.curToken}

	if stmt.Try = p.parseBody(); stmt.Try == nil {
		return nil
	}
	if !p.expectPeek(lexer.CATCH) {
		return nil
	}

	parenthesized := p.peekTokenIs(lexer.LPAREN)
	if parenthesized {
		p.nextToken()
	}
	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	stmt.Symbol = p.curToken.Literal
	if parenthesized && !p.expectPeek(lexer.RPAREN) {
		return nil
	}

	if stmt.Catch = p.parseBody(); stmt.Catch == nil {
		return nil
	}
	return stmt
}

// parseReturnStatement parses 'return' with an optional value. The value must
// start on the same line as the keyword.
func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.ReturnStatement{Token: p.curToken}

	if p.peekToken.Line == p.curToken.Line &&
		!p.peekTokenIs(lexer.SEMICOLON) && !p.peekTokenIs(lexer.RBRACE) && !p.peekTokenIs(lexer.EOF) {
		p.nextToken()
		stmt.Value = p.parseExpression(LOWEST)
		if stmt.Value == nil {
			return nil
		}
	}

	return p.endStatement(stmt)
}

// parseExpression parses expressions using Pratt parsing
func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken.Type)
		return nil
	}

	leftExp := prefix()
	if leftExp == nil {
		return nil
	}

	for !p.peekTokenIs(lexer.SEMICOLON) && precedence < p.peekPrecedence() {
		// '(' and '[' on a new line start a new statement rather than a
		// call or subscript.
		if (p.peekTokenIs(lexer.LPAREN) || p.peekTokenIs(lexer.LBRACKET)) && p.peekToken.Line > p.curToken.Line {
			return leftExp
		}

		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()

		leftExp = infix(leftExp)
		if leftExp == nil {
			return nil
		}
	}

	return leftExp
}

func (p *Parser) parseSymbol() ast.Expression {
	return &ast.Symbol{Token: p.curToken, Name: p.curToken.Literal}
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	return &ast.NumberLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBoolean() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(lexer.TRUE)}
}

func (p *Parser) parseNull() ast.Expression {
	return &ast.NullLiteral{Token: p.curToken}
}

// parseLookup splits a lookup literal into its tokens. The lexer has already
// validated the path shape.
func (p *Parser) parseLookup() ast.Expression {
	lookup := &ast.Lookup{Token: p.curToken}
	for _, part := range strings.Split(p.curToken.Literal, ".") {
		multi := strings.HasPrefix(part, "*")
		name := strings.TrimPrefix(part, "*")
		if name == "" {
			p.addStructuredError("SYNTAX-0006", p.curToken.Line, p.curToken.Column,
				map[string]any{"Path": p.curToken.Literal})
			return nil
		}
		lookup.Tokens = append(lookup.Tokens, ast.LookupToken{Name: name, Multi: multi})
	}
	return lookup
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
	}
	if p.curTokenIs(lexer.BANG) {
		expression.Operator = "!"
	}

	p.nextToken()

	expression.Right = p.parseExpression(PREFIX)
	if expression.Right == nil {
		return nil
	}

	return expression
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Left:     left,
		Operator: p.curToken.Type.String(),
	}

	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}

	return expression
}

// parseTernaryExpression parses 'cond ? a : b'. It is right associative.
func (p *Parser) parseTernaryExpression(condition ast.Expression) ast.Expression {
	expression := &ast.TernaryExpression{Token: p.curToken, Condition: condition}

	p.nextToken()
	expression.Consequence = p.parseExpression(LOWEST)
	if expression.Consequence == nil {
		return nil
	}
	if !p.expectPeek(lexer.COLON) {
		return nil
	}
	p.nextToken()
	expression.Alternative = p.parseExpression(LOWEST)
	if expression.Alternative == nil {
		return nil
	}
	return expression
}

// parseComprehension parses 'list where x: cond' and 'list map x: expr'.
// The body binds tighter than a following where/map, so they chain left to right.
func (p *Parser) parseComprehension(list ast.Expression) ast.Expression {
	expression := &ast.ComprehensionExpression{Token: p.curToken, List: list}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	expression.Variable = p.curToken.Literal
	if !p.expectPeek(lexer.COLON) {
		return nil
	}
	p.nextToken()
	expression.Body = p.parseExpression(COMPREHENSION)
	if expression.Body == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()

	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}

	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}

	return exp
}

func (p *Parser) parseListLiteral() ast.Expression {
	list := &ast.ListLiteral{Token: p.curToken}
	list.Elements = p.parseExpressionList(lexer.RBRACKET)
	if list.Elements == nil {
		return nil
	}
	return list
}

// parseDictionaryLiteral parses {"key": value, name: value}. Keys are string
// literals or bare identifiers.
func (p *Parser) parseDictionaryLiteral() ast.Expression {
	dict := &ast.DictionaryLiteral{Token: p.curToken}
	dict.Entries = []ast.DictionaryEntry{}

	for !p.peekTokenIs(lexer.RBRACE) {
		p.nextToken()
		if !p.curTokenIs(lexer.STRING) && !p.curTokenIs(lexer.IDENT) {
			p.addStructuredError("SYNTAX-0001", p.curToken.Line, p.curToken.Column,
				map[string]any{"Expected": "dictionary key", "Got": p.curToken.Literal})
			return nil
		}
		key := p.curToken.Literal

		if !p.expectPeek(lexer.COLON) {
			return nil
		}
		p.nextToken()
		value := p.parseExpression(LOWEST)
		if value == nil {
			return nil
		}
		dict.Entries = append(dict.Entries, ast.DictionaryEntry{Key: key, Value: value})

		if !p.peekTokenIs(lexer.RBRACE) && !p.expectPeek(lexer.COMMA) {
			return nil
		}
	}

	p.nextToken()
	return dict
}

// parseFunctionLiteral parses 'function name(a, b) { ... }'. The name is
// optional.
func (p *Parser) parseFunctionLiteral() ast.Expression {
	lit := &ast.FunctionLiteral{Token: p.curToken}

	if p.peekTokenIs(lexer.IDENT) {
		p.nextToken()
		lit.Name = p.curToken.Literal
	}

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	params, ok := p.parseFunctionParameters()
	if !ok {
		return nil
	}
	lit.Parameters = params

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	lit.Body = p.parseBlock()
	if lit.Body == nil {
		return nil
	}

	return lit
}

func (p *Parser) parseFunctionParameters() ([]string, bool) {
	params := []string{}

	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return params, true
	}

	for {
		if !p.expectPeek(lexer.IDENT) {
			return nil, false
		}
		params = append(params, p.curToken.Literal)
		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(lexer.RPAREN) {
		return nil, false
	}
	return params, true
}

func (p *Parser) parseCallExpression(function ast.Expression) ast.Expression {
	exp := &ast.CallExpression{Token: p.curToken, Function: function}
	exp.Arguments = p.parseExpressionList(lexer.RPAREN)
	if exp.Arguments == nil {
		return nil
	}
	return exp
}

func (p *Parser) parseSubscriptExpression(left ast.Expression) ast.Expression {
	exp := &ast.SubscriptExpression{Token: p.curToken, Left: left}

	p.nextToken()
	exp.Index = p.parseExpression(LOWEST)
	if exp.Index == nil {
		return nil
	}

	if !p.expectPeek(lexer.RBRACKET) {
		return nil
	}
	return exp
}

// parsePropertyExpression parses 'obj.name'. Keywords are accepted as
// property names.
func (p *Parser) parsePropertyExpression(object ast.Expression) ast.Expression {
	exp := &ast.PropertyExpression{Token: p.curToken, Object: object}

	p.nextToken()
	if !isNameToken(p.curToken) {
		p.addStructuredError("SYNTAX-0001", p.curToken.Line, p.curToken.Column,
			map[string]any{"Expected": "property name", "Got": p.curToken.Literal})
		return nil
	}
	exp.Property = p.curToken.Literal
	return exp
}

// parseExpressionList parses comma separated expressions up to end. A
// trailing comma is allowed. Returns nil on error.
func (p *Parser) parseExpressionList(end lexer.TokenType) []ast.Expression {
	args := []ast.Expression{}

	if p.peekTokenIs(end) {
		p.nextToken()
		return args
	}

	p.nextToken()
	arg := p.parseExpression(LOWEST)
	if arg == nil {
		return nil
	}
	args = append(args, arg)

	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		if p.peekTokenIs(end) {
			break
		}
		p.nextToken()
		arg := p.parseExpression(LOWEST)
		if arg == nil {
			return nil
		}
		args = append(args, arg)
	}

	if !p.expectPeek(end) {
		return nil
	}

	return args
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t lexer.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t lexer.TokenType) {
	gotLiteral := p.peekToken.Literal
	if p.peekToken.Type == lexer.EOF {
		gotLiteral = "end of file"
	} else if p.peekToken.Type == lexer.ILLEGAL {
		p.addStructuredError("SYNTAX-0005", p.peekToken.Line, p.peekToken.Column,
			map[string]any{"Token": gotLiteral})
		return
	}

	// Report at the position after the last successfully parsed token
	line := p.curToken.Line
	column := p.curToken.Column + len(p.curToken.Literal)

	p.addStructuredError("SYNTAX-0001", line, column,
		map[string]any{"Expected": tokenTypeToReadableName(t), "Got": gotLiteral})
}

func (p *Parser) noPrefixParseFnError(t lexer.TokenType) {
	if t == lexer.ILLEGAL {
		p.addStructuredError("SYNTAX-0005", p.curToken.Line, p.curToken.Column,
			map[string]any{"Token": p.curToken.Literal})
		return
	}
	if t == lexer.EOF {
		p.addStructuredError("SYNTAX-0001", p.prevToken.Line, p.prevToken.Column+len(p.prevToken.Literal),
			map[string]any{"Expected": "expression", "Got": "end of file"})
		return
	}
	p.addStructuredError("SYNTAX-0002", p.curToken.Line, p.curToken.Column,
		map[string]any{"Token": p.curToken.Literal})
}

// checkKeywordTypo returns an error message when ident looks like a
// misspelt statement keyword, or "" otherwise.
func (p *Parser) checkKeywordTypo(ident string) string {
	if suggestion := nrxerrors.FindClosestMatch(ident, lexer.Keywords()); suggestion != "" {
		return fmt.Sprintf("unknown keyword '%s'. Did you mean '%s'?", ident, suggestion)
	}
	return ""
}

func tokenTypeToReadableName(t lexer.TokenType) string {
	switch t {
	case lexer.IDENT:
		return "identifier"
	case lexer.EOF:
		return "end of file"
	case lexer.NUMBER:
		return "number"
	case lexer.STRING:
		return "string"
	default:
		return "'" + t.String() + "'"
	}
}

// isNameToken reports whether tok can serve as a property name.
func isNameToken(tok lexer.Token) bool {
	if tok.Type == lexer.IDENT {
		return true
	}
	return lexer.LookupIdent(tok.Literal) != lexer.IDENT && tok.Literal != "" &&
		(tok.Literal[0] >= 'a' && tok.Literal[0] <= 'z')
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}
	return LOWEST
}
