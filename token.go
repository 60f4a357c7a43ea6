package main

import "fmt"

// TokenType is the type of token (identifier, operator, literal, etc.).
type TokenType string

// Definition of token types
const (
	EOF TokenType = "EOF"

	// Identifiers + literals
	IDENT  TokenType = "IDENT"  // main, foo, _bar
	INT    TokenType = "INT"    // 12345
	STRING TokenType = "STRING" // "hello"

	// Keywords
	FN       TokenType = "FN"
	RETURN   TokenType = "RETURN"
	LET      TokenType = "LET"
	CALL     TokenType = "CALL"
	IF       TokenType = "IF"
	ELSE     TokenType = "ELSE"
	WHILE    TokenType = "WHILE"
	INT_TYPE TokenType = "INT_TYPE"
	STR_TYPE TokenType = "STR_TYPE"
	PRINT    TokenType = "PRINT"
	MALLOC   TokenType = "MALLOC"
	FREE     TokenType = "FREE"

	// Operators
	PLUS     TokenType = "+"
	MINUS    TokenType = "-"
	ASTERISK TokenType = "*"
	SLASH    TokenType = "/"
	ASSIGN   TokenType = "="
	ARROW    TokenType = "->"

	EQ     TokenType = "=="
	NOT_EQ TokenType = "!="
	LT     TokenType = "<"
	GT     TokenType = ">"
	LE     TokenType = "<="
	GE     TokenType = ">="

	// Delimiters
	LPAREN    TokenType = "("
	RPAREN    TokenType = ")"
	LBRACE    TokenType = "{"
	RBRACE    TokenType = "}"
	COLON     TokenType = ":"
	SEMICOLON TokenType = ";"
	COMMA     TokenType = ","
)

var keywords = map[string]TokenType{
	"fn":     FN,
	"return": RETURN,
	"let":    LET,
	"call":   CALL,
	"if":     IF,
	"else":   ELSE,
	"while":  WHILE,
	"int":    INT_TYPE,
	"string": STR_TYPE,
	"print":  PRINT,
	"malloc": MALLOC,
	"free":   FREE,
}

// Pos is a 1-based line/column location in the source.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Before reports whether p comes strictly before q in the source.
func (p Pos) Before(q Pos) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Col < q.Col
}

// Token is a single lexeme. Literal holds the raw text for identifiers,
// integers and strings (without the surrounding quotes).
type Token struct {
	Type    TokenType
	Literal string
	Pos     Pos
}

func (t Token) String() string {
	switch t.Type {
	case IDENT, INT:
		return fmt.Sprintf("%s %q", t.Type, t.Literal)
	case STRING:
		return fmt.Sprintf("STRING \"%s\"", t.Literal)
	case EOF:
		return string(EOF)
	default:
		return "'" + t.Literal + "'"
	}
}
