package main

import (
	"strconv"
)

// Parser is a recursive-descent parser with one token of lookahead. It
// registers declarations and parameters in the scope tree as it goes.
type Parser struct {
	lex   *Lexer
	cur   Token
	scope *Scope
}

// NewParser creates a parser reading from l and primes the first token.
// Declarations land in a fresh global scope.
func NewParser(l *Lexer) *Parser {
	p := &Parser{lex: l, scope: NewScope(nil)}
	p.next()
	return p
}

func (p *Parser) next() {
	p.cur = p.lex.Next()
}

// SkipToken advances past the current token, asserting it matches the
// expected type, and returns the skipped token.
//
// Panics with a syntax error if the current token doesn't match.
func (p *Parser) SkipToken(expected TokenType) Token {
	if p.cur.Type != expected {
		p.errorf("expected %s, got %s", describe(expected), p.cur)
	}
	tok := p.cur
	p.next()
	return tok
}

// errorf aborts parsing. A pending lexical error wins: the parser usually
// trips over the EOF token the lexer degraded to, and the lexer's message
// is the useful one.
func (p *Parser) errorf(format string, args ...any) {
	if err := p.lex.Err(); err != nil {
		panic(err)
	}
	if p.cur.Type == EOF {
		fail(ErrSyntax, p.cur.Pos, "unexpected end of input: "+format, args...)
	}
	fail(ErrSyntax, p.cur.Pos, format, args...)
}

func describe(tt TokenType) string {
	switch tt {
	case IDENT:
		return "identifier"
	case INT:
		return "integer literal"
	case STRING:
		return "string literal"
	case INT_TYPE:
		return "'int'"
	case STR_TYPE:
		return "'string'"
	}
	if kw := keywordText(tt); kw != "" {
		return "'" + kw + "'"
	}
	return "'" + string(tt) + "'"
}

func keywordText(tt TokenType) string {
	for text, kw := range keywords {
		if kw == tt {
			return text
		}
	}
	return ""
}

// ParseProgram parses function definitions and top-level statements until
// the end of input.
func (p *Parser) ParseProgram() *Program {
	prog := &Program{base: base{p.cur.Pos}, Scope: p.scope}
	for p.cur.Type != EOF {
		if p.cur.Type == FN {
			prog.Stmts = append(prog.Stmts, p.parseFnDef())
		} else {
			prog.Stmts = append(prog.Stmts, p.ParseStatement())
		}
	}
	if err := p.lex.Err(); err != nil {
		panic(err)
	}
	return prog
}

func (p *Parser) parseFnDef() *FnDef {
	pos := p.SkipToken(FN).Pos
	name := p.SkipToken(IDENT).Literal
	p.SkipToken(LPAREN)

	fn := &FnDef{base: base{pos}, Name: name, Scope: NewScope(p.scope)}
	enclosing := p.scope
	p.scope = fn.Scope

	if p.cur.Type != RPAREN {
		for {
			tok := p.SkipToken(IDENT)
			p.SkipToken(COLON)
			typ := p.parseType()
			fn.Scope.DeclareParam(tok.Literal, typ, tok.Pos)
			fn.Params = append(fn.Params, Param{Pos: tok.Pos, Name: tok.Literal, Type: typ})
			if p.cur.Type != COMMA {
				break
			}
			p.SkipToken(COMMA)
		}
	}
	p.SkipToken(RPAREN)
	p.SkipToken(ARROW)
	fn.Result = p.parseType()
	fn.Body = p.parseBlock()

	p.scope = enclosing
	return fn
}

func (p *Parser) parseType() Type {
	switch p.cur.Type {
	case INT_TYPE:
		p.next()
		return TypeInt
	case STR_TYPE:
		p.next()
		return TypeString
	}
	p.errorf("expected type 'int' or 'string', got %s", p.cur)
	return ""
}

func (p *Parser) parseBlock() *Block {
	pos := p.SkipToken(LBRACE).Pos
	block := &Block{base: base{pos}}
	for p.cur.Type != RBRACE {
		if p.cur.Type == EOF {
			p.errorf("expected '}' to close block opened at %s", pos)
		}
		block.Stmts = append(block.Stmts, p.ParseStatement())
	}
	p.SkipToken(RBRACE)
	return block
}

// ParseStatement parses a statement and returns an AST node
func (p *Parser) ParseStatement() Node {
	pos := p.cur.Pos

	switch p.cur.Type {
	case LET:
		p.SkipToken(LET)
		name := p.SkipToken(IDENT).Literal
		p.SkipToken(COLON)
		typ := p.parseType()
		// The name is visible from here on, including inside its own
		// initializer.
		p.scope.DeclareLocal(name, typ, pos)
		p.SkipToken(ASSIGN)
		value := p.ParseExpression()
		p.SkipToken(SEMICOLON)
		return &Decl{base: base{pos}, Name: name, Type: typ, Value: value}

	case IDENT:
		name := p.cur.Literal
		p.next()
		switch p.cur.Type {
		case ASSIGN:
			p.SkipToken(ASSIGN)
			value := p.ParseExpression()
			p.SkipToken(SEMICOLON)
			return &Assign{base: base{pos}, Name: name, Value: value}
		case LPAREN:
			args := p.parseArgs()
			p.SkipToken(SEMICOLON)
			return &CallStmt{base: base{pos}, Name: name, Args: args}
		}
		p.errorf("expected '=' or '(' after %q, got %s", name, p.cur)

	case CALL:
		p.SkipToken(CALL)
		name := p.SkipToken(IDENT).Literal
		args := p.parseArgs()
		p.SkipToken(SEMICOLON)
		return &CallStmt{base: base{pos}, Name: name, Args: args}

	case RETURN:
		p.SkipToken(RETURN)
		value := p.ParseExpression()
		p.SkipToken(SEMICOLON)
		return &Return{base: base{pos}, Value: value}

	case IF:
		return p.parseIf()

	case WHILE:
		p.SkipToken(WHILE)
		p.SkipToken(LPAREN)
		cond := p.ParseExpression()
		p.SkipToken(RPAREN)
		body := p.parseBlock()
		return &While{base: base{pos}, Cond: cond, Body: body}

	case PRINT:
		p.SkipToken(PRINT)
		p.SkipToken(LPAREN)
		value := p.ParseExpression()
		p.SkipToken(RPAREN)
		p.SkipToken(SEMICOLON)
		return &Print{base: base{pos}, Value: value}

	case FREE:
		p.SkipToken(FREE)
		p.SkipToken(LPAREN)
		value := p.ParseExpression()
		p.SkipToken(RPAREN)
		p.SkipToken(SEMICOLON)
		return &Free{base: base{pos}, Value: value}

	case LBRACE:
		return p.parseBlock()

	case FN:
		p.errorf("function definitions are only allowed at the top level")
	}

	p.errorf("unexpected %s at start of statement", p.cur)
	return nil
}

func (p *Parser) parseIf() *If {
	pos := p.SkipToken(IF).Pos
	p.SkipToken(LPAREN)
	cond := p.ParseExpression()
	p.SkipToken(RPAREN)
	node := &If{base: base{pos}, Cond: cond, Then: p.parseBlock()}

	if p.cur.Type == ELSE {
		p.SkipToken(ELSE)
		if p.cur.Type == IF {
			elsePos := p.cur.Pos
			nested := p.parseIf()
			node.Else = &Block{base: base{elsePos}, Stmts: []Node{nested}}
		} else {
			node.Else = p.parseBlock()
		}
	}
	return node
}

func (p *Parser) parseArgs() []Node {
	p.SkipToken(LPAREN)
	var args []Node
	if p.cur.Type != RPAREN {
		for {
			args = append(args, p.ParseExpression())
			if p.cur.Type != COMMA {
				break
			}
			p.SkipToken(COMMA)
		}
	}
	p.SkipToken(RPAREN)
	return args
}

// ParseExpression parses an expression and returns an AST node
func (p *Parser) ParseExpression() Node {
	return p.parseComparison()
}

// parseComparison allows at most one relational operator: a < b < c is a
// syntax error at the second '<'.
func (p *Parser) parseComparison() Node {
	left := p.parseAdditive()
	var op CompareOp
	switch p.cur.Type {
	case EQ:
		op = CmpEQ
	case NOT_EQ:
		op = CmpNE
	case LT:
		op = CmpLT
	case GT:
		op = CmpGT
	case LE:
		op = CmpLE
	case GE:
		op = CmpGE
	default:
		return left
	}
	pos := p.cur.Pos
	p.next()
	right := p.parseAdditive()
	return &Compare{base: base{pos}, Op: op, Left: left, Right: right}
}

func (p *Parser) parseAdditive() Node {
	left := p.parseMultiplicative()
	for p.cur.Type == PLUS || p.cur.Type == MINUS {
		op := BinPlus
		if p.cur.Type == MINUS {
			op = BinMinus
		}
		pos := p.cur.Pos
		p.next()
		right := p.parseMultiplicative()
		left = &Binary{base: base{pos}, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseMultiplicative() Node {
	left := p.parseUnary()
	for p.cur.Type == ASTERISK || p.cur.Type == SLASH {
		op := BinMul
		if p.cur.Type == SLASH {
			op = BinDiv
		}
		pos := p.cur.Pos
		p.next()
		right := p.parseUnary()
		left = &Binary{base: base{pos}, Op: op, Left: left, Right: right}
	}
	return left
}

// parseUnary desugars -x into 0 - x.
func (p *Parser) parseUnary() Node {
	if p.cur.Type == MINUS {
		pos := p.cur.Pos
		p.next()
		operand := p.parseUnary()
		zero := &IntLit{base: base{pos}, Value: 0}
		return &Binary{base: base{pos}, Op: BinMinus, Left: zero, Right: operand}
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() Node {
	tok := p.cur

	switch tok.Type {
	case INT:
		value, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			p.errorf("integer literal %s is out of range", tok.Literal)
		}
		p.next()
		return &IntLit{base: base{tok.Pos}, Value: value}

	case STRING:
		p.next()
		return &StrLit{base: base{tok.Pos}, Value: tok.Literal}

	case IDENT:
		p.next()
		if p.cur.Type == LPAREN {
			args := p.parseArgs()
			return &CallExpr{base: base{tok.Pos}, Name: tok.Literal, Args: args}
		}
		return &VarRef{base: base{tok.Pos}, Name: tok.Literal}

	case MALLOC:
		p.next()
		p.SkipToken(LPAREN)
		size := p.ParseExpression()
		p.SkipToken(RPAREN)
		return &Malloc{base: base{tok.Pos}, Size: size}

	case LPAREN:
		p.next()
		expr := p.ParseExpression()
		p.SkipToken(RPAREN)
		return expr
	}

	p.errorf("expected expression, got %s", tok)
	return nil
}
