package sexy

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func TestParseSymbol(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hello", "hello"},
		{"test_var", "test_var"},
		{"call-stmt", "call-stmt"},
		{"x", "x"},
		{"+", "+"},
		{"<=", "<="},
		{"_", "_"},
	}

	for _, test := range tests {
		result, err := Parse(test.input)
		be.Err(t, err, nil)

		be.Equal(t, result.Type, NodeSymbol)
		be.Equal(t, result.Text, test.expected)
		be.Equal(t, result.String(), test.expected)
	}
}

func TestParseString(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		output   string
	}{
		{`"hello"`, "hello", `"hello"`},
		{`"hello world"`, "hello world", `"hello world"`},
		{`""`, "", `""`},
		{`"test\"quote"`, `test"quote`, `"test\"quote"`},
		{`"test\\backslash"`, `test\backslash`, `"test\\backslash"`},
		{`"a\\nb"`, `a\nb`, `"a\\nb"`},
	}

	for _, test := range tests {
		result, err := Parse(test.input)
		be.Err(t, err, nil)

		be.Equal(t, result.Type, NodeString)
		be.Equal(t, result.Text, test.expected)
		be.Equal(t, result.String(), test.output)
	}
}

func TestParseInteger(t *testing.T) {
	for _, input := range []string{"42", "0", "-123", "+456", "9223372036854775807"} {
		result, err := Parse(input)
		be.Err(t, err, nil)

		be.Equal(t, result.Type, NodeInteger)
		be.Equal(t, result.Text, input)
		be.Equal(t, result.String(), input)
	}
}

func TestParseEllipsis(t *testing.T) {
	result, err := Parse("...")
	be.Err(t, err, nil)

	be.Equal(t, result.Type, NodeEllipsis)
	be.Equal(t, result.String(), "...")
}

func TestParseList(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"()", "()"},
		{"(hello)", "(hello)"},
		{"(1 2 3)", "(1 2 3)"},
		{`(binary "+" (integer 1) (integer 2))`, `(binary "+" (integer 1) (integer 2))`},
		{"(nested   (list\n here))", "(nested (list here))"},
		{"(program ...)", "(program ...)"},
	}

	for _, test := range tests {
		result, err := Parse(test.input)
		be.Err(t, err, nil)

		be.Equal(t, result.Type, NodeList)
		be.Equal(t, result.String(), test.expected)
	}
}

func TestRoundTripParsing(t *testing.T) {
	tests := []string{
		"hello",
		`"world"`,
		"42",
		"...",
		"()",
		`(fn "f" (params (param "a" int)) int (block (return (var "a"))))`,
		`(string "say \"hi\"")`,
	}

	for _, test := range tests {
		t.Run(test, func(t *testing.T) {
			result1, err := Parse(test)
			be.Err(t, err, nil)

			output := result1.String()

			result2, err := Parse(output)
			be.Err(t, err, nil)
			be.Equal(t, result2.String(), output)
		})
	}
}

func TestParseComments(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"; comment\nhello", "hello"},
		{"hello ; trailing comment", "hello"},
		{"; AST for expression\n(binary \"+\" 1 2)", "(binary \"+\" 1 2)"},
		{"(test ; inline comment\n world)", "(test world)"},
	}

	for _, test := range tests {
		result, err := Parse(test.input)
		be.Err(t, err, nil)
		be.Equal(t, result.String(), test.expected)
	}
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`"unterminated string`, "unterminated string"},
		{`"invalid \escape"`, "invalid escape sequence"},
		{".", "unexpected character '.'"},
		{"(1 2 . 3)", "unexpected character '.'"},
		{"@", "unexpected character '@'"},
		{"$", "unexpected character '$'"},
		{"(", "expected ')'"},
		{"(hello", "expected ')'"},
		{")", "unexpected token: ')'"},
		{"", "unexpected token: EOF"},
		{"hello world", "expected EOF"},
		{"(test) more", "expected EOF"},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			result, err := Parse(test.input)
			be.True(t, err != nil)
			be.True(t, strings.Contains(err.Error(), test.expected))
			be.True(t, result == nil)
		})
	}
}

func TestNodeTypeHelpers(t *testing.T) {
	be.True(t, NewSymbol("test").IsAtom())
	be.True(t, NewString("hello").IsAtom())
	be.True(t, NewInteger("42").IsAtom())
	be.True(t, NewEllipsis().IsAtom())
	be.True(t, !NewList(nil).IsAtom())
}

func TestMatch(t *testing.T) {
	tests := []struct {
		pattern string
		actual  string
		want    bool
	}{
		{"x", "x", true},
		{"x", "y", false},
		{`"x"`, "x", false},
		{"1", "1", true},
		{"_", `(anything "at" all)`, true},
		{"(a _ c)", "(a b c)", true},
		{"(a _ c)", "(a c)", false},
		{"(a ...)", "(a)", true},
		{"(a ...)", "(a b c)", true},
		{"(... c)", "(a b c)", true},
		{"(... c)", "(a b)", false},
		{"(a ... d)", "(a b c d)", true},
		{"(a ... d ...)", "(a b d e)", true},
		{"(a (b ...))", "(a (b 1 2))", true},
		{"(a (b ...))", "(a (c 1 2))", false},
		{"(a b)", "(a b c)", false},
		{"(a b c)", "(a b)", false},
	}

	for _, test := range tests {
		t.Run(test.pattern+" ~ "+test.actual, func(t *testing.T) {
			pattern, err := Parse(test.pattern)
			be.Err(t, err, nil)
			actual, err := Parse(test.actual)
			be.Err(t, err, nil)
			be.Equal(t, Match(pattern, actual), test.want)
		})
	}
}
