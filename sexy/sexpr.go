package sexy

import (
	"fmt"
	"strings"
	"unicode"
)

// NodeType represents the type of a Node
type NodeType int

const (
	NodeSymbol NodeType = iota
	NodeString
	NodeInteger
	NodeEllipsis
	NodeList
)

// Node represents any Sexy datum
type Node struct {
	Type  NodeType
	Text  string  // NodeSymbol, NodeString, NodeInteger
	Items []*Node // NodeList
}

func (n *Node) String() string {
	switch n.Type {
	case NodeSymbol, NodeInteger:
		return n.Text
	case NodeString:
		escaped := strings.ReplaceAll(n.Text, "\\", "\\\\")
		escaped = strings.ReplaceAll(escaped, "\"", "\\\"")
		return "\"" + escaped + "\""
	case NodeEllipsis:
		return "..."
	case NodeList:
		parts := make([]string, len(n.Items))
		for i, item := range n.Items {
			parts[i] = item.String()
		}
		return "(" + strings.Join(parts, " ") + ")"
	default:
		return fmt.Sprintf("UNKNOWN_NODE_TYPE_%d", n.Type)
	}
}

func NewSymbol(name string) *Node {
	return &Node{Type: NodeSymbol, Text: name}
}

func NewString(value string) *Node {
	return &Node{Type: NodeString, Text: value}
}

func NewInteger(text string) *Node {
	return &Node{Type: NodeInteger, Text: text}
}

func NewEllipsis() *Node {
	return &Node{Type: NodeEllipsis}
}

func NewList(items []*Node) *Node {
	return &Node{Type: NodeList, Items: items}
}

// IsAtom checks if the node is an atomic value
func (n *Node) IsAtom() bool {
	return n.Type != NodeList
}

// Match reports whether actual has the shape described by pattern. Inside a
// pattern list, "..." matches any run of items (including none), and the
// symbol _ matches any single datum. Everything else must be equal.
func Match(pattern, actual *Node) bool {
	switch {
	case pattern.Type == NodeSymbol && pattern.Text == "_":
		return true
	case pattern.Type != actual.Type:
		return false
	case pattern.Type == NodeList:
		return matchItems(pattern.Items, actual.Items)
	default:
		return pattern.Text == actual.Text
	}
}

func matchItems(patterns, items []*Node) bool {
	if len(patterns) == 0 {
		return len(items) == 0
	}
	if patterns[0].Type == NodeEllipsis {
		for skip := 0; skip <= len(items); skip++ {
			if matchItems(patterns[1:], items[skip:]) {
				return true
			}
		}
		return false
	}
	if len(items) == 0 || !Match(patterns[0], items[0]) {
		return false
	}
	return matchItems(patterns[1:], items[1:])
}

type parser struct {
	lexer        *lexer
	currentToken token
}

// Parse parses the entire input and returns the top-level datum
func Parse(input string) (*Node, error) {
	p := &parser{lexer: newLexer(input)}
	if err := p.nextToken(); err != nil {
		return nil, err
	}

	result, err := p.parseDatum()
	if err != nil {
		return nil, err
	}
	if p.currentToken.Type != tokenEOF {
		return nil, fmt.Errorf("offset %d: expected EOF but got %s", p.currentToken.Position, p.currentToken.Type)
	}
	return result, nil
}

func (p *parser) nextToken() error {
	tok, err := p.lexer.nextToken()
	if err != nil {
		return err
	}
	p.currentToken = tok
	return nil
}

func (p *parser) parseDatum() (*Node, error) {
	tok := p.currentToken
	var node *Node
	switch tok.Type {
	case tokenSymbol:
		node = NewSymbol(tok.Value)
	case tokenString:
		node = NewString(tok.Value)
	case tokenInteger:
		node = NewInteger(tok.Value)
	case tokenEllipsis:
		node = NewEllipsis()
	case tokenLParen:
		return p.parseList()
	default:
		return nil, fmt.Errorf("offset %d: unexpected token: %s", tok.Position, tok.Type)
	}
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	return node, nil
}

func (p *parser) parseList() (*Node, error) {
	open := p.currentToken.Position
	if err := p.nextToken(); err != nil { // consume '('
		return nil, err
	}

	items := []*Node{}
	for p.currentToken.Type != tokenRParen {
		if p.currentToken.Type == tokenEOF {
			return nil, fmt.Errorf("offset %d: expected ')' to close list but got EOF", open)
		}
		item, err := p.parseDatum()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := p.nextToken(); err != nil { // consume ')'
		return nil, err
	}
	return NewList(items), nil
}

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenSymbol
	tokenString
	tokenInteger
	tokenEllipsis
	tokenLParen
	tokenRParen
)

var tokenNames = [...]string{
	tokenEOF:      "EOF",
	tokenSymbol:   "symbol",
	tokenString:   "string",
	tokenInteger:  "integer",
	tokenEllipsis: "ellipsis",
	tokenLParen:   "'('",
	tokenRParen:   "')'",
}

func (t tokenType) String() string {
	if int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("unknown token %d", int(t))
}

type token struct {
	Type     tokenType
	Value    string
	Position int
}

// lexer reads bytes; symbols may contain any Unicode letter but the input
// is otherwise treated as ASCII.
type lexer struct {
	input string
	pos   int
}

func newLexer(input string) *lexer {
	return &lexer{input: input}
}

func (l *lexer) cur() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *lexer) peek() byte {
	if l.pos+1 >= len(l.input) {
		return 0
	}
	return l.input[l.pos+1]
}

func (l *lexer) skipSpaceAndComments() {
	for l.pos < len(l.input) {
		c := l.cur()
		switch {
		case c == ';':
			for l.pos < len(l.input) && l.cur() != '\n' {
				l.pos++
			}
		case unicode.IsSpace(rune(c)):
			l.pos++
		default:
			return
		}
	}
}

func (l *lexer) readWhile(pred func(byte) bool) string {
	start := l.pos
	for l.pos < len(l.input) && pred(l.cur()) {
		l.pos++
	}
	return l.input[start:l.pos]
}

func (l *lexer) readString() (string, error) {
	start := l.pos
	l.pos++ // skip opening quote

	var sb strings.Builder
	for {
		if l.pos >= len(l.input) {
			return "", fmt.Errorf("offset %d: unterminated string", start)
		}
		c := l.cur()
		l.pos++
		switch c {
		case '"':
			return sb.String(), nil
		case '\\':
			esc := l.cur()
			if esc != '"' && esc != '\\' {
				return "", fmt.Errorf("offset %d: invalid escape sequence: \\%c", l.pos-1, esc)
			}
			sb.WriteByte(esc)
			l.pos++
		default:
			sb.WriteByte(c)
		}
	}
}

func (l *lexer) nextToken() (token, error) {
	l.skipSpaceAndComments()
	pos := l.pos
	c := l.cur()

	switch {
	case l.pos >= len(l.input):
		return token{Type: tokenEOF, Position: pos}, nil
	case c == '(':
		l.pos++
		return token{Type: tokenLParen, Value: "(", Position: pos}, nil
	case c == ')':
		l.pos++
		return token{Type: tokenRParen, Value: ")", Position: pos}, nil
	case c == '"':
		str, err := l.readString()
		if err != nil {
			return token{}, err
		}
		return token{Type: tokenString, Value: str, Position: pos}, nil
	case strings.HasPrefix(l.input[l.pos:], "..."):
		l.pos += 3
		return token{Type: tokenEllipsis, Value: "...", Position: pos}, nil
	case isDigit(c) || ((c == '+' || c == '-') && isDigit(l.peek())):
		l.pos++
		text := string(c) + l.readWhile(isDigit)
		return token{Type: tokenInteger, Value: text, Position: pos}, nil
	case isSymbolChar(c):
		return token{Type: tokenSymbol, Value: l.readWhile(isSymbolChar), Position: pos}, nil
	default:
		return token{}, fmt.Errorf("offset %d: unexpected character '%c'", pos, c)
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// isSymbolChar accepts the operator characters so that symbols like +, <=
// and call-stmt need no quoting.
func isSymbolChar(c byte) bool {
	if c >= 0x80 || unicode.IsLetter(rune(c)) || isDigit(c) {
		return true
	}
	return strings.IndexByte("-_+*/<>=!?", c) >= 0
}
