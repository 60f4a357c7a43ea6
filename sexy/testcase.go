package sexy

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// InputType names the fence holding a test's jive source.
type InputType string

const (
	InputTypeJiveExpr    InputType = "jive-expr"
	InputTypeJiveProgram InputType = "jive-program"
)

// AssertionType names a fence checked against compiler output.
type AssertionType string

const (
	AssertionTypeAST          AssertionType = "ast"
	AssertionTypeIR           AssertionType = "ir"
	AssertionTypeAsm          AssertionType = "asm"
	AssertionTypeExecute      AssertionType = "execute"
	AssertionTypeCompileError AssertionType = "compile-error"
)

type Assertion struct {
	Type    AssertionType
	Content string
	// ParsedSexy is set for ast assertions only.
	ParsedSexy *Node
}

// TestCase is one "Test: name" heading with its input fence and the
// assertion fences that follow it.
type TestCase struct {
	Name       string
	Input      string
	InputType  InputType
	Line       int // line of the input fence
	Assertions []Assertion
}

const testHeadingPrefix = "Test: "

type fenceKind int

const (
	fenceUnknown fenceKind = iota
	fenceInput
	fenceAssertion
)

func classifyFence(language string) fenceKind {
	switch language {
	case string(InputTypeJiveExpr), string(InputTypeJiveProgram):
		return fenceInput
	case string(AssertionTypeAST), string(AssertionTypeIR), string(AssertionTypeAsm),
		string(AssertionTypeExecute), string(AssertionTypeCompileError):
		return fenceAssertion
	}
	return fenceUnknown
}

type extractor struct {
	source  []byte
	cases   []TestCase
	current *TestCase
}

// ExtractTestCases collects the test cases of a Markdown test suite.
// Fenced blocks without a language are ignored anywhere in the document.
func ExtractTestCases(markdownContent string) ([]TestCase, error) {
	x := &extractor{source: []byte(markdownContent)}
	doc := goldmark.New().Parser().Parse(text.NewReader(x.source))

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		var err error
		switch n := node.(type) {
		case *ast.Heading:
			err = x.heading(n)
		case *ast.FencedCodeBlock:
			err = x.fence(n)
		}
		if err != nil {
			return ast.WalkStop, err
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking markdown AST: %w", err)
	}
	if err := x.finish(); err != nil {
		return nil, err
	}
	return x.cases, nil
}

func (x *extractor) heading(n *ast.Heading) error {
	title := x.plainText(n)
	if !strings.HasPrefix(title, testHeadingPrefix) {
		return nil
	}
	if err := x.finish(); err != nil {
		return err
	}
	x.current = &TestCase{Name: strings.TrimPrefix(title, testHeadingPrefix)}
	return nil
}

func (x *extractor) fence(n *ast.FencedCodeBlock) error {
	language := string(n.Language(x.source))
	if language == "" {
		return nil
	}
	line := x.line(n)
	kind := classifyFence(language)

	tc := x.current
	if tc == nil {
		if kind == fenceUnknown {
			return fmt.Errorf("line %d: unknown fence language '%s' found outside of test case", line, language)
		}
		return fmt.Errorf("line %d: %s fence found outside of test case", line, language)
	}

	var body bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		body.Write(seg.Value(x.source))
	}
	content := strings.TrimRight(body.String(), "\n")

	switch kind {
	case fenceInput:
		if tc.Input != "" {
			return fmt.Errorf("line %d: multiple input fences found in test '%s'", line, tc.Name)
		}
		tc.Input = content
		tc.InputType = InputType(language)
		tc.Line = line
	case fenceAssertion:
		a := Assertion{Type: AssertionType(language), Content: content}
		if a.Type == AssertionTypeAST {
			parsed, err := Parse(content)
			if err != nil {
				return fmt.Errorf("line %d: failed to parse Sexy assertion in test '%s': %w", line, tc.Name, err)
			}
			a.ParsedSexy = parsed
		}
		tc.Assertions = append(tc.Assertions, a)
	default:
		return fmt.Errorf("line %d: unknown fence language '%s' in test '%s'", line, language, tc.Name)
	}
	return nil
}

// finish validates the open test case and moves it to the result.
func (x *extractor) finish() error {
	tc := x.current
	if tc == nil {
		return nil
	}
	if tc.Input == "" {
		return fmt.Errorf("test '%s' has no input fence", tc.Name)
	}
	if len(tc.Assertions) == 0 {
		return fmt.Errorf("test '%s' has no assertion fences", tc.Name)
	}
	x.cases = append(x.cases, *tc)
	x.current = nil
	return nil
}

func (x *extractor) plainText(node ast.Node) string {
	var buf bytes.Buffer
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); entering && ok {
			buf.Write(t.Segment.Value(x.source))
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

// line is the 1-based source line of the block's first content line.
func (x *extractor) line(n ast.Node) int {
	if n.Lines().Len() == 0 {
		return 1
	}
	start := n.Lines().At(0).Start
	if start > len(x.source) {
		start = len(x.source)
	}
	return bytes.Count(x.source[:start], []byte("\n")) + 1
}
