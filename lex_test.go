package main

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

// lexAll returns every token up to and including the first EOF.
func lexAll(input string) ([]Token, *Lexer) {
	l := NewLexer([]byte(input))
	var tokens []Token
	for {
		tok := l.Next()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, l
		}
	}
}

func tokenTypes(tokens []Token) []TokenType {
	types := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.Type
	}
	return types
}

func TestIntLiteral(t *testing.T) {
	tokens, l := lexAll("12345")
	be.Equal(t, tokens[0].Type, INT)
	be.Equal(t, tokens[0].Literal, "12345")
	be.True(t, l.Err() == nil)
}

func TestIdentifier(t *testing.T) {
	for _, name := range []string{"foobar", "_x", "a1", "letter", "fnord", "int2"} {
		tokens, _ := lexAll(name)
		be.Equal(t, tokens[0].Type, IDENT)
		be.Equal(t, tokens[0].Literal, name)
	}
}

func TestKeywords(t *testing.T) {
	tokens, _ := lexAll("fn return let call if else while int string print malloc free")
	be.Equal(t, tokenTypes(tokens), []TokenType{
		FN, RETURN, LET, CALL, IF, ELSE, WHILE, INT_TYPE, STR_TYPE, PRINT, MALLOC, FREE, EOF,
	})
}

func TestStringLiteral(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`"hello"`, "hello"},
		{`""`, ""},
		{`"say \"hi\""`, `say \"hi\"`},
		{`"line\n"`, `line\n`},
		{`"back\\"`, `back\\`},
		{"\"two\nlines\"", "two\nlines"},
	}

	for _, test := range tests {
		tokens, l := lexAll(test.input)
		be.True(t, l.Err() == nil)
		be.Equal(t, tokens[0].Type, STRING)
		be.Equal(t, tokens[0].Literal, test.expected)
		be.Equal(t, tokens[1].Type, EOF)
	}
}

func TestOperators(t *testing.T) {
	tests := []struct {
		input string
		typ   TokenType
	}{
		{"+", PLUS},
		{"-", MINUS},
		{"*", ASTERISK},
		{"/", SLASH},
		{"=", ASSIGN},
		{"->", ARROW},
		{"==", EQ},
		{"!=", NOT_EQ},
		{"<", LT},
		{">", GT},
		{"<=", LE},
		{">=", GE},
		{"(", LPAREN},
		{")", RPAREN},
		{"{", LBRACE},
		{"}", RBRACE},
		{":", COLON},
		{";", SEMICOLON},
		{",", COMMA},
	}

	for _, test := range tests {
		tokens, _ := lexAll(test.input)
		be.Equal(t, len(tokens), 2)
		be.Equal(t, tokens[0].Type, test.typ)
		be.Equal(t, tokens[0].Literal, test.input)
	}
}

func TestOperatorLookahead(t *testing.T) {
	tokens, _ := lexAll("a-b->c==d=e<=f<g>=h>i!=j")
	be.Equal(t, tokenTypes(tokens), []TokenType{
		IDENT, MINUS, IDENT, ARROW, IDENT, EQ, IDENT, ASSIGN, IDENT, LE, IDENT,
		LT, IDENT, GE, IDENT, GT, IDENT, NOT_EQ, IDENT, EOF,
	})

	// "- >" is two tokens, not an arrow.
	tokens, _ = lexAll("- >")
	be.Equal(t, tokenTypes(tokens), []TokenType{MINUS, GT, EOF})
}

func TestCommentsAndWhitespace(t *testing.T) {
	tokens, _ := lexAll("// leading comment\n  x // trailing\n\t/ / y")
	be.Equal(t, tokenTypes(tokens), []TokenType{IDENT, SLASH, SLASH, IDENT, EOF})

	tokens, _ = lexAll("// only a comment")
	be.Equal(t, tokenTypes(tokens), []TokenType{EOF})
}

func TestTokenPositions(t *testing.T) {
	tokens, _ := lexAll("let x\n  = 10;\n")
	expected := []Pos{{1, 1}, {1, 5}, {2, 3}, {2, 5}, {2, 7}, {3, 1}}
	be.Equal(t, len(tokens), len(expected))
	for i, tok := range tokens {
		be.Equal(t, tok.Pos, expected[i])
	}
}

func TestTokenPositionsMonotonic(t *testing.T) {
	src := `fn add(a: int, b: int) -> int {
    // sum
    return a + b;
}
let s: string = "multi
line";
while (add(1, 2) >= 3) { print(s); }
`
	tokens, l := lexAll(src)
	be.True(t, l.Err() == nil)
	for i := 1; i < len(tokens); i++ {
		prev, cur := tokens[i-1].Pos, tokens[i].Pos
		be.True(t, !cur.Before(prev))
	}
}

func TestLexicalErrors(t *testing.T) {
	tests := []struct {
		input   string
		pos     Pos
		message string
	}{
		{`print("oops`, Pos{1, 7}, "unterminated string literal"},
		{"x = !y", Pos{1, 5}, "unexpected '!'"},
		{"x\n  @", Pos{2, 3}, `unexpected character '@'`},
		{"let s = 'a';", Pos{1, 9}, `unexpected character '\''`},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			tokens, l := lexAll(test.input)
			last := tokens[len(tokens)-1]
			be.Equal(t, last.Type, EOF)
			be.Equal(t, last.Pos, test.pos)

			err := l.Err()
			be.True(t, err != nil)
			be.Equal(t, err.Kind, ErrLexical)
			be.Equal(t, err.Pos, test.pos)
			be.True(t, strings.Contains(err.Msg, test.message))
		})
	}
}

func TestEOFIsSticky(t *testing.T) {
	l := NewLexer([]byte("x"))
	be.Equal(t, l.Next().Type, IDENT)
	for i := 0; i < 3; i++ {
		be.Equal(t, l.Next().Type, EOF)
	}

	// After an error the rest of the input is never scanned.
	l = NewLexer([]byte("# a b c"))
	be.Equal(t, l.Next().Type, EOF)
	be.Equal(t, l.Next().Type, EOF)
	be.Equal(t, l.Err().Pos, Pos{1, 1})
}

func TestTokenString(t *testing.T) {
	be.Equal(t, Token{Type: IDENT, Literal: "x"}.String(), `IDENT "x"`)
	be.Equal(t, Token{Type: INT, Literal: "42"}.String(), `INT "42"`)
	be.Equal(t, Token{Type: STRING, Literal: "hi"}.String(), `STRING "hi"`)
	be.Equal(t, Token{Type: FN, Literal: "fn"}.String(), "'fn'")
	be.Equal(t, Token{Type: ARROW, Literal: "->"}.String(), "'->'")
	be.Equal(t, Token{Type: EOF}.String(), "EOF")
}
