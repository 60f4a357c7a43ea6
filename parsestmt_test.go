package main

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func parseToSExpr(t *testing.T, input string) string {
	t.Helper()
	prog, err := Parse([]byte(input))
	be.Err(t, err, nil)
	return ToSExpr(prog)
}

func TestParseStatements(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{
			input:    "let x: int = 2 + 3 * 4;",
			expected: `(program (let "x" int (binary "+" (integer 2) (binary "*" (integer 3) (integer 4)))))`,
		},
		{
			input:    `let s: string = "hi";`,
			expected: `(program (let "s" string (string "hi")))`,
		},
		{
			input:    "x = x + 1;",
			expected: `(program (assign "x" (binary "+" (var "x") (integer 1))))`,
		},
		{
			input:    "f(1, 2);",
			expected: `(program (call-stmt "f" (integer 1) (integer 2)))`,
		},
		{
			input:    "call f();",
			expected: `(program (call-stmt "f"))`,
		},
		{
			input:    "return 0;",
			expected: `(program (return (integer 0)))`,
		},
		{
			input:    "print(1); free(p);",
			expected: `(program (print (integer 1)) (free (var "p")))`,
		},
		{
			input:    "{ print(1); { } }",
			expected: `(program (block (print (integer 1)) (block)))`,
		},
		{
			input:    "",
			expected: `(program)`,
		},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			be.Equal(t, parseToSExpr(t, test.input), test.expected)
		})
	}
}

func TestParseIfStatement(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{
			input:    "if (x) { print(1); }",
			expected: `(program (if (var "x") (block (print (integer 1)))))`,
		},
		{
			input:    "if (1 == 1) { print(1); } else { print(0); }",
			expected: `(program (if (compare "==" (integer 1) (integer 1)) (block (print (integer 1))) (block (print (integer 0)))))`,
		},
		{
			input:    "if (a) { } else if (b) { } else { print(3); }",
			expected: `(program (if (var "a") (block) (block (if (var "b") (block) (block (print (integer 3)))))))`,
		},
	}

	for _, test := range tests {
		be.Equal(t, parseToSExpr(t, test.input), test.expected)
	}
}

func TestParseWhileStatement(t *testing.T) {
	actual := parseToSExpr(t, "while (i < 10) { i = i + 1; }")
	be.Equal(t, actual, `(program (while (compare "<" (var "i") (integer 10)) (block (assign "i" (binary "+" (var "i") (integer 1))))))`)
}

func TestParseFunctionDefinition(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{
			input:    "fn main() -> int { }",
			expected: `(program (fn "main" (params) int (block)))`,
		},
		{
			input:    "fn f(a: int, b: string) -> string { return b; }",
			expected: `(program (fn "f" (params (param "a" int) (param "b" string)) string (block (return (var "b")))))`,
		},
		{
			input: "fn add(a: int, b: int) -> int { return a + b; }\nprint(add(3, 4));",
			expected: `(program (fn "add" (params (param "a" int) (param "b" int)) int (block (return (binary "+" (var "a") (var "b")))))` +
				` (print (call "add" (integer 3) (integer 4))))`,
		},
	}

	for _, test := range tests {
		be.Equal(t, parseToSExpr(t, test.input), test.expected)
	}
}

func TestParseFunctionParams(t *testing.T) {
	prog, err := Parse([]byte("fn f(a: int, s: string) -> int { return a; }"))
	be.Err(t, err, nil)

	fn := prog.Stmts[0].(*FnDef)
	be.Equal(t, fn.Name, "f")
	be.Equal(t, fn.Result, TypeInt)
	be.Equal(t, fn.Params, []Param{
		{Pos: Pos{1, 6}, Name: "a", Type: TypeInt},
		{Pos: Pos{1, 14}, Name: "s", Type: TypeString},
	})
}

func TestParseStatementErrors(t *testing.T) {
	tests := []struct {
		input   string
		kind    ErrorKind
		message string
	}{
		{"let x int = 1;", ErrSyntax, "1:7: syntax error: expected ':', got 'int'"},
		{"let x: bool = 1;", ErrSyntax, `1:8: syntax error: expected type 'int' or 'string', got IDENT "bool"`},
		{"x + 1;", ErrSyntax, `1:3: syntax error: expected '=' or '(' after "x", got '+'`},
		{"5;", ErrSyntax, `1:1: syntax error: unexpected INT "5" at start of statement`},
		{"print(1)", ErrSyntax, "1:9: syntax error: unexpected end of input: expected ';', got EOF"},
		{"if (1) { print(1);", ErrSyntax, "unexpected end of input: expected '}' to close block opened at 1:8"},
		{"if 1 { }", ErrSyntax, "1:4: syntax error: expected '(', got INT \"1\""},
		{"fn f() -> int { fn g() -> int { } }", ErrSyntax, "1:17: syntax error: function definitions are only allowed at the top level"},
		{"fn f(a) -> int { }", ErrSyntax, "1:7: syntax error: expected ':', got ')'"},
		{"fn f() { }", ErrSyntax, "1:8: syntax error: expected '->', got '{'"},
		{"fn (a: int) -> int { }", ErrSyntax, "1:4: syntax error: expected identifier, got '('"},
		{"call 1();", ErrSyntax, "expected identifier, got INT \"1\""},
		{"else { }", ErrSyntax, "unexpected 'else' at start of statement"},
		{`print("unterminated);`, ErrLexical, "1:7: lexical error: unterminated string literal"},
		{"let x: int = 1 ! 2;", ErrLexical, "1:16: lexical error: unexpected '!'"},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			prog, err := Parse([]byte(test.input))
			be.True(t, prog == nil)
			be.True(t, IsKind(err, test.kind))
			if !strings.Contains(err.Error(), test.message) {
				t.Errorf("error %q does not contain %q", err.Error(), test.message)
			}
		})
	}
}
