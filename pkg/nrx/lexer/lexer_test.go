package lexer

import (
	"strings"
	"testing"
)

func TestNextToken(t *testing.T) {
	input := `five = 5;
add = function(x, y) {
  return x + y
}

result = add(five, 10)
!-/*5;
5 < 10 > 5;

if (5 <= 10) {
	print true
} else {
	assert false
}

10 == 10 && 10 != 9 || null
"foobar"
"foo \"bar\""
`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{IDENT, "five"},
		{ASSIGN, "="},
		{NUMBER, "5"},
		{SEMICOLON, ";"},
		{IDENT, "add"},
		{ASSIGN, "="},
		{FUNCTION, "function"},
		{LPAREN, "("},
		{IDENT, "x"},
		{COMMA, ","},
		{IDENT, "y"},
		{RPAREN, ")"},
		{LBRACE, "{"},
		{RETURN, "return"},
		{IDENT, "x"},
		{PLUS, "+"},
		{IDENT, "y"},
		{RBRACE, "}"},
		{IDENT, "result"},
		{ASSIGN, "="},
		{IDENT, "add"},
		{LPAREN, "("},
		{IDENT, "five"},
		{COMMA, ","},
		{NUMBER, "10"},
		{RPAREN, ")"},
		{BANG, "!"},
		{MINUS, "-"},
		{SLASH, "/"},
		{ASTERISK, "*"},
		{NUMBER, "5"},
		{SEMICOLON, ";"},
		{NUMBER, "5"},
		{LT, "<"},
		{NUMBER, "10"},
		{GT, ">"},
		{NUMBER, "5"},
		{SEMICOLON, ";"},
		{IF, "if"},
		{LPAREN, "("},
		{NUMBER, "5"},
		{LTE, "<="},
		{NUMBER, "10"},
		{RPAREN, ")"},
		{LBRACE, "{"},
		{PRINT, "print"},
		{TRUE, "true"},
		{RBRACE, "}"},
		{ELSE, "else"},
		{LBRACE, "{"},
		{ASSERT, "assert"},
		{FALSE, "false"},
		{RBRACE, "}"},
		{NUMBER, "10"},
		{EQ, "=="},
		{NUMBER, "10"},
		{AND, "&&"},
		{NUMBER, "10"},
		{NOT_EQ, "!="},
		{NUMBER, "9"},
		{OR, "||"},
		{NULL, "null"},
		{STRING, "foobar"},
		{STRING, `foo "bar"`},
		{EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"3.14159", []string{"3.14159"}},
		{"3. * x", []string{"3.", "*", "x"}},
		{".5", []string{".5"}},
		{"1e3 2.5E-2", []string{"1e3", "2.5E-2"}},
		{"list.count", []string{"list", ".", "count"}},
		{"12.count", []string{"12", ".", "count"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l := New(tt.input)
			for i, want := range tt.expected {
				tok := l.NextToken()
				if tok.Literal != want {
					t.Fatalf("token %d: expected %q, got %q", i, want, tok.Literal)
				}
			}
			if tok := l.NextToken(); tok.Type != EOF {
				t.Fatalf("expected EOF, got %s", tok)
			}
		})
	}
}

func TestKeywordAliasesAndComments(t *testing.T) {
	input := `# leading comment
a and b // trailing
not c or d`

	expected := []TokenType{IDENT, AND, IDENT, BANG, IDENT, OR, IDENT, EOF}
	l := New(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("token %d: expected %s, got %s", i, want, tok.Type)
		}
	}
}

func TestLookupPath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		ok       bool
	}{
		{"$orders", "orders", true},
		{"$orders.*items.price", "orders.*items.price", true},
		{"$*all", "*all", true},
		{"$", "", false},
		{"$1abc", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok := New(tt.input).NextToken()
			if tt.ok {
				if tok.Type != LOOKUP || tok.Literal != tt.expected {
					t.Fatalf("expected LOOKUP %q, got %s", tt.expected, tok)
				}
				return
			}
			if tok.Type != ILLEGAL {
				t.Fatalf("expected ILLEGAL, got %s", tok)
			}
		})
	}
}

func TestLineAndColumn(t *testing.T) {
	l := New("x = 1\n  y = \"unterminated")

	tok := l.NextToken()
	if tok.Line != 1 || tok.Column != 1 {
		t.Errorf("expected x at 1:1, got %d:%d", tok.Line, tok.Column)
	}
	l.NextToken()
	l.NextToken()

	tok = l.NextToken()
	if tok.Literal != "y" || tok.Line != 2 || tok.Column != 3 {
		t.Errorf("expected y at 2:3, got %s", tok)
	}
	l.NextToken()

	tok = l.NextToken()
	if tok.Type != ILLEGAL || !strings.Contains(tok.Literal, "unterminated") {
		t.Errorf("expected unterminated string error, got %s", tok)
	}
}

func TestPeekTokenDoesNotConsume(t *testing.T) {
	l := New("a b")
	if got := l.PeekToken(); got.Literal != "a" {
		t.Fatalf("expected peek a, got %q", got.Literal)
	}
	if got := l.NextToken(); got.Literal != "a" {
		t.Fatalf("expected a, got %q", got.Literal)
	}
}
