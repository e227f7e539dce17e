package lexer

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// TokenType represents different types of tokens
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF

	// Identifiers and literals
	IDENT  // add, foobar, x, y, ...
	NUMBER // 1343456, 3.14159, 3., 1e3
	STRING // "foobar"
	LOOKUP // $orders.*items.price

	// Operators
	ASSIGN   // =
	PLUS     // +
	MINUS    // -
	BANG     // ! or not
	ASTERISK // *
	SLASH    // /
	PERCENT  // %
	LT       // <
	GT       // >
	LTE      // <=
	GTE      // >=
	EQ       // ==
	NOT_EQ   // !=
	AND      // && or and
	OR       // || or or
	QUESTION // ?

	// Delimiters
	COMMA     // ,
	SEMICOLON // ;
	COLON     // :
	DOT       // .
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	LBRACKET  // [
	RBRACKET  // ]

	// Keywords
	FUNCTION // "function"
	IF       // "if"
	ELSE     // "else"
	WHILE    // "while"
	FOR      // "for"
	IN       // "in"
	RETURN   // "return"
	BREAK    // "break"
	CONTINUE // "continue"
	PRINT    // "print"
	ASSERT   // "assert"
	ERROR    // "error"
	TRY      // "try"
	CATCH    // "catch"
	GLOBAL   // "global"
	TRUE     // "true"
	FALSE    // "false"
	NULL     // "null"
	CONTAINS // "contains"
	WHERE    // "where"
	MAP      // "map"
)

// Token represents a single token
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("{Type: %s, Literal: %s, Line: %d, Column: %d}",
		t.Type.String(), t.Literal, t.Line, t.Column)
}

var tokenNames = map[TokenType]string{
	ILLEGAL:   "ILLEGAL",
	EOF:       "EOF",
	IDENT:     "IDENT",
	NUMBER:    "NUMBER",
	STRING:    "STRING",
	LOOKUP:    "LOOKUP",
	ASSIGN:    "=",
	PLUS:      "+",
	MINUS:     "-",
	BANG:      "!",
	ASTERISK:  "*",
	SLASH:     "/",
	PERCENT:   "%",
	LT:        "<",
	GT:        ">",
	LTE:       "<=",
	GTE:       ">=",
	EQ:        "==",
	NOT_EQ:    "!=",
	AND:       "&&",
	OR:        "||",
	QUESTION:  "?",
	COMMA:     ",",
	SEMICOLON: ";",
	COLON:     ":",
	DOT:       ".",
	LPAREN:    "(",
	RPAREN:    ")",
	LBRACE:    "{",
	RBRACE:    "}",
	LBRACKET:  "[",
	RBRACKET:  "]",
	FUNCTION:  "function",
	IF:        "if",
	ELSE:      "else",
	WHILE:     "while",
	FOR:       "for",
	IN:        "in",
	RETURN:    "return",
	BREAK:     "break",
	CONTINUE:  "continue",
	PRINT:     "print",
	ASSERT:    "assert",
	ERROR:     "error",
	TRY:       "try",
	CATCH:     "catch",
	GLOBAL:    "global",
	TRUE:      "true",
	FALSE:     "false",
	NULL:      "null",
	CONTAINS:  "contains",
	WHERE:     "where",
	MAP:       "map",
}

// String returns a string representation of the token type
func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	return "UNKNOWN"
}

// keywords maps keyword strings to their token types
var keywords = map[string]TokenType{
	"function": FUNCTION,
	"if":       IF,
	"else":     ELSE,
	"while":    WHILE,
	"for":      FOR,
	"in":       IN,
	"return":   RETURN,
	"break":    BREAK,
	"continue": CONTINUE,
	"print":    PRINT,
	"assert":   ASSERT,
	"error":    ERROR,
	"try":      TRY,
	"catch":    CATCH,
	"global":   GLOBAL,
	"true":     TRUE,
	"false":    FALSE,
	"null":     NULL,
	"contains": CONTAINS,
	"where":    WHERE,
	"map":      MAP,
	"and":      AND,
	"or":       OR,
	"not":      BANG,
}

// LookupIdent checks if an identifier is a keyword
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// Keywords returns the statement keywords, used for typo suggestions.
func Keywords() []string {
	return []string{"function", "if", "else", "while", "for", "return", "break",
		"continue", "print", "assert", "error", "try", "catch", "global"}
}

// Lexer represents the lexical analyzer
type Lexer struct {
	filename     string
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination (first byte)
	chRune       rune // current character as a rune
	chSize       int  // byte size of current character
	line         int
	column       int
}

// New creates a new lexer instance
func New(input string) *Lexer {
	return NewWithFilename(input, "<input>")
}

// NewWithFilename creates a new lexer instance with a specific filename
func NewWithFilename(input string, filename string) *Lexer {
	l := &Lexer{
		filename: filename,
		input:    input,
		line:     1,
		column:   0,
	}
	l.readChar()
	return l
}

// Filename returns the name used in error messages.
func (l *Lexer) Filename() string {
	return l.filename
}

// LexerState holds the state of a lexer for save/restore
type LexerState struct {
	position     int
	readPosition int
	ch           byte
	chRune       rune
	chSize       int
	line         int
	column       int
}

// SaveState saves the current lexer state for potential restoration
func (l *Lexer) SaveState() LexerState {
	return LexerState{
		position:     l.position,
		readPosition: l.readPosition,
		ch:           l.ch,
		chRune:       l.chRune,
		chSize:       l.chSize,
		line:         l.line,
		column:       l.column,
	}
}

// RestoreState restores the lexer to a previously saved state
func (l *Lexer) RestoreState(state LexerState) {
	l.position = state.position
	l.readPosition = state.readPosition
	l.ch = state.ch
	l.chRune = state.chRune
	l.chSize = state.chSize
	l.line = state.line
	l.column = state.column
}

// PeekToken returns the next token without consuming it
func (l *Lexer) PeekToken() Token {
	state := l.SaveState()
	tok := l.NextToken()
	l.RestoreState(state)
	return tok
}

// readChar reads the next character and advances position.
// ASCII takes a fast path; other bytes are decoded as UTF-8.
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.chRune = 0
		l.chSize = 0
		l.position = l.readPosition
		return
	}

	b := l.input[l.readPosition]
	if b < utf8.RuneSelf {
		l.ch = b
		l.chRune = rune(b)
		l.chSize = 1
		l.position = l.readPosition
		l.readPosition++

		if l.ch == '\n' {
			l.line++
			l.column = 0
		} else {
			l.column++
		}
		return
	}

	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = b
	l.chRune = r
	l.chSize = size
	l.position = l.readPosition
	l.readPosition += size
	l.column++
}

// appendCurrentChar appends all bytes of the current character to result.
func (l *Lexer) appendCurrentChar(result []byte) []byte {
	if l.chSize == 1 {
		return append(result, l.ch)
	}
	return append(result, l.input[l.position:l.position+l.chSize]...)
}

// peekChar returns the next character without advancing position
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// peekCharN returns the character n positions ahead without advancing position
func (l *Lexer) peekCharN(n int) byte {
	pos := l.readPosition + n - 1
	if pos >= len(l.input) {
		return 0
	}
	return l.input[pos]
}

// NextToken scans the input and returns the next token
func (l *Lexer) NextToken() Token {
	var tok Token

	l.skipWhitespaceAndComments()

	line, column := l.line, l.column

	switch l.ch {
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: EQ, Literal: "==", Line: line, Column: column}
		} else {
			tok = newToken(ASSIGN, l.ch, line, column)
		}
	case '+':
		tok = newToken(PLUS, l.ch, line, column)
	case '-':
		tok = newToken(MINUS, l.ch, line, column)
	case '*':
		tok = newToken(ASTERISK, l.ch, line, column)
	case '/':
		tok = newToken(SLASH, l.ch, line, column)
	case '%':
		tok = newToken(PERCENT, l.ch, line, column)
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: NOT_EQ, Literal: "!=", Line: line, Column: column}
		} else {
			tok = newToken(BANG, l.ch, line, column)
		}
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: LTE, Literal: "<=", Line: line, Column: column}
		} else {
			tok = newToken(LT, l.ch, line, column)
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: GTE, Literal: ">=", Line: line, Column: column}
		} else {
			tok = newToken(GT, l.ch, line, column)
		}
	case '&':
		if l.peekChar() == '&' {
			l.readChar()
			tok = Token{Type: AND, Literal: "&&", Line: line, Column: column}
		} else {
			tok = newToken(ILLEGAL, l.ch, line, column)
		}
	case '|':
		if l.peekChar() == '|' {
			l.readChar()
			tok = Token{Type: OR, Literal: "||", Line: line, Column: column}
		} else {
			tok = newToken(ILLEGAL, l.ch, line, column)
		}
	case '?':
		tok = newToken(QUESTION, l.ch, line, column)
	case ',':
		tok = newToken(COMMA, l.ch, line, column)
	case ';':
		tok = newToken(SEMICOLON, l.ch, line, column)
	case ':':
		tok = newToken(COLON, l.ch, line, column)
	case '.':
		if isDigit(l.peekChar()) {
			tok = Token{Type: NUMBER, Literal: l.readNumber(), Line: line, Column: column}
			return tok
		}
		tok = newToken(DOT, l.ch, line, column)
	case '(':
		tok = newToken(LPAREN, l.ch, line, column)
	case ')':
		tok = newToken(RPAREN, l.ch, line, column)
	case '{':
		tok = newToken(LBRACE, l.ch, line, column)
	case '}':
		tok = newToken(RBRACE, l.ch, line, column)
	case '[':
		tok = newToken(LBRACKET, l.ch, line, column)
	case ']':
		tok = newToken(RBRACKET, l.ch, line, column)
	case '"':
		str, terminated := l.readString()
		if !terminated {
			return Token{Type: ILLEGAL, Literal: "unterminated string", Line: line, Column: column}
		}
		tok = Token{Type: STRING, Literal: str, Line: line, Column: column}
	case '$':
		path, ok := l.readLookupPath()
		if !ok {
			return Token{Type: ILLEGAL, Literal: "$" + path, Line: line, Column: column}
		}
		return Token{Type: LOOKUP, Literal: path, Line: line, Column: column}
	case 0:
		tok = Token{Type: EOF, Literal: "", Line: line, Column: column}
	default:
		if isLetterRune(l.chRune) {
			literal := l.readIdentifier()
			return Token{Type: LookupIdent(literal), Literal: literal, Line: line, Column: column}
		} else if isDigit(l.ch) {
			return Token{Type: NUMBER, Literal: l.readNumber(), Line: line, Column: column}
		}
		tok = Token{Type: ILLEGAL, Literal: string(l.chRune), Line: line, Column: column}
	}

	l.readChar()
	return tok
}

// newToken creates a new token with the given parameters
func newToken(tokenType TokenType, ch byte, line, column int) Token {
	return Token{Type: tokenType, Literal: string(ch), Line: line, Column: column}
}

// readIdentifier reads an identifier or keyword.
// Unicode letters are accepted (π, α, 日本語).
func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetterRune(l.chRune) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber reads a decimal number. A trailing dot ("3.") is allowed as long
// as it is not followed by a property name.
func (l *Lexer) readNumber() string {
	position := l.position
	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && !isLetter(l.peekChar()) && l.peekChar() != '.' {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peekCharN(2))) {
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}

	return l.input[position:l.position]
}

// readString reads a string literal with escape sequence support.
// Returns the string content and whether it was terminated properly.
func (l *Lexer) readString() (string, bool) {
	var result []byte
	l.readChar() // skip opening quote

	for l.ch != '"' && l.ch != 0 && l.ch != '\n' {
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				result = append(result, '\n')
			case 't':
				result = append(result, '\t')
			case '\\':
				result = append(result, '\\')
			case '"':
				result = append(result, '"')
			default:
				result = append(result, '\\')
				result = l.appendCurrentChar(result)
			}
		} else {
			result = l.appendCurrentChar(result)
		}
		l.readChar()
	}

	return string(result), l.ch == '"'
}

// readLookupPath reads the path following '$': identifiers separated by dots,
// each optionally prefixed with '*'. The returned literal excludes the '$'.
func (l *Lexer) readLookupPath() (string, bool) {
	l.readChar() // skip '$'
	position := l.position
	for {
		if l.ch == '*' {
			l.readChar()
		}
		if !isLetterRune(l.chRune) {
			return l.input[position:l.position], false
		}
		for isLetterRune(l.chRune) || isDigit(l.ch) {
			l.readChar()
		}
		if l.ch != '.' || !(isLetter(l.peekChar()) || l.peekChar() == '*' || l.peekChar() >= utf8.RuneSelf) {
			break
		}
		l.readChar() // consume '.'
	}
	return l.input[position:l.position], true
}

// skipWhitespaceAndComments skips blanks, newlines and line comments
// introduced by '#' or '//'.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
			l.readChar()
		case l.ch == '#' || (l.ch == '/' && l.peekChar() == '/'):
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		default:
			return
		}
	}
}

// isLetter checks if a byte represents an ASCII letter or underscore.
func isLetter(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// isLetterRune checks if a rune is a valid identifier character (letter or underscore).
func isLetterRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

// isDigit checks if the character is a digit
func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
