package main

// Lexer turns source bytes into tokens one at a time. The source is never
// modified; pos/line/col describe the next unread byte.
type Lexer struct {
	input []byte
	pos   int
	line  int
	col   int

	err *CompileError // first lexical error, if any
}

// NewLexer creates a lexer positioned at the start of src.
func NewLexer(src []byte) *Lexer {
	return &Lexer{input: src, line: 1, col: 1}
}

// Err returns the first lexical error seen so far, or nil.
func (l *Lexer) Err() *CompileError {
	return l.err
}

// Next scans and returns the next token. Once the input is exhausted (or a
// lexical error occurred) every call returns an EOF token.
func (l *Lexer) Next() Token {
	if l.err != nil {
		return Token{Type: EOF, Pos: l.here()}
	}

	l.skipWhitespace()

	start := l.here()
	if l.pos >= len(l.input) {
		return Token{Type: EOF, Pos: start}
	}

	c := l.input[l.pos]

	if c == '"' {
		return l.readString(start)
	}

	if isDigit(c) {
		lit := l.readWhile(isDigit)
		return Token{Type: INT, Literal: lit, Pos: start}
	}

	if isLetter(c) {
		lit := l.readWhile(isIdentChar)
		if kw, ok := keywords[lit]; ok {
			return Token{Type: kw, Literal: lit, Pos: start}
		}
		return Token{Type: IDENT, Literal: lit, Pos: start}
	}

	l.advance()
	switch c {
	case '+':
		return Token{Type: PLUS, Literal: "+", Pos: start}
	case '-':
		if l.cur() == '>' {
			l.advance()
			return Token{Type: ARROW, Literal: "->", Pos: start}
		}
		return Token{Type: MINUS, Literal: "-", Pos: start}
	case '*':
		return Token{Type: ASTERISK, Literal: "*", Pos: start}
	case '/':
		return Token{Type: SLASH, Literal: "/", Pos: start}
	case '=':
		if l.cur() == '=' {
			l.advance()
			return Token{Type: EQ, Literal: "==", Pos: start}
		}
		return Token{Type: ASSIGN, Literal: "=", Pos: start}
	case '!':
		if l.cur() == '=' {
			l.advance()
			return Token{Type: NOT_EQ, Literal: "!=", Pos: start}
		}
		return l.errorf(start, "unexpected '!' (did you mean '!='?)")
	case '<':
		if l.cur() == '=' {
			l.advance()
			return Token{Type: LE, Literal: "<=", Pos: start}
		}
		return Token{Type: LT, Literal: "<", Pos: start}
	case '>':
		if l.cur() == '=' {
			l.advance()
			return Token{Type: GE, Literal: ">=", Pos: start}
		}
		return Token{Type: GT, Literal: ">", Pos: start}
	case '(':
		return Token{Type: LPAREN, Literal: "(", Pos: start}
	case ')':
		return Token{Type: RPAREN, Literal: ")", Pos: start}
	case '{':
		return Token{Type: LBRACE, Literal: "{", Pos: start}
	case '}':
		return Token{Type: RBRACE, Literal: "}", Pos: start}
	case ':':
		return Token{Type: COLON, Literal: ":", Pos: start}
	case ';':
		return Token{Type: SEMICOLON, Literal: ";", Pos: start}
	case ',':
		return Token{Type: COMMA, Literal: ",", Pos: start}
	}

	return l.errorf(start, "unexpected character %q", c)
}

// readString scans a "..." literal. Escapes are skipped over but not
// decoded: the literal keeps the backslashes exactly as written.
func (l *Lexer) readString(start Pos) Token {
	l.advance() // opening quote
	begin := l.pos
	for l.pos < len(l.input) && l.input[l.pos] != '"' {
		if l.input[l.pos] == '\\' && l.pos+1 < len(l.input) {
			l.advance()
		}
		l.advance()
	}
	if l.pos >= len(l.input) {
		return l.errorf(start, "unterminated string literal")
	}
	lit := string(l.input[begin:l.pos])
	l.advance() // closing quote
	return Token{Type: STRING, Literal: lit, Pos: start}
}

func (l *Lexer) errorf(pos Pos, format string, args ...any) Token {
	if l.err == nil {
		l.err = newError(ErrLexical, pos, format, args...)
	}
	return Token{Type: EOF, Pos: pos}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			l.advance()
		} else if c == '/' && l.peek() == '/' {
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.advance()
			}
		} else {
			return
		}
	}
}

func (l *Lexer) readWhile(ok func(byte) bool) string {
	begin := l.pos
	for l.pos < len(l.input) && ok(l.input[l.pos]) {
		l.advance()
	}
	return string(l.input[begin:l.pos])
}

// cur returns the next unread byte, or 0 at the end.
func (l *Lexer) cur() byte {
	if l.pos < len(l.input) {
		return l.input[l.pos]
	}
	return 0
}

// peek returns the byte after the next unread one, or 0 at the end.
func (l *Lexer) peek() byte {
	if l.pos+1 < len(l.input) {
		return l.input[l.pos+1]
	}
	return 0
}

func (l *Lexer) advance() {
	if l.input[l.pos] == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	l.pos++
}

func (l *Lexer) here() Pos {
	return Pos{Line: l.line, Col: l.col}
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c == '_'
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || isDigit(c)
}
