package main

// Result holds every stage's output of a successful compilation.
type Result struct {
	AST *Program
	IR  *IRProgram
	Asm string
}

// Compile runs the whole pipeline on one source file. The first error of
// any stage ends the run and is returned as a *CompileError; no partial
// result is returned with it.
func Compile(src []byte, cfg Config) (*Result, error) {
	if cfg.Target == "" {
		cfg.Target = DefaultTarget()
	}

	prog, err := Parse(src)
	if err != nil {
		return nil, err
	}
	cfg.logf("parsed %d top-level items", len(prog.Stmts))

	ir, err := Generate(prog, cfg)
	if err != nil {
		return nil, err
	}
	cfg.logf("generated %d IR instructions", len(ir.Instrs))

	asm, err := EmitAssembly(ir, cfg.Target)
	if err != nil {
		return nil, err
	}
	cfg.logf("emitted %d bytes of %s assembly", len(asm), cfg.Target)

	return &Result{AST: prog, IR: ir, Asm: asm}, nil
}

// Parse parses a whole program.
func Parse(src []byte) (prog *Program, err error) {
	defer recoverError(&err)
	return NewParser(NewLexer(src)).ParseProgram(), nil
}

// ParseExpr parses src as a single expression spanning the whole input.
func ParseExpr(src []byte) (_ Node, err error) {
	defer recoverError(&err)
	p := NewParser(NewLexer(src))
	expr := p.ParseExpression()
	if p.cur.Type != EOF {
		p.errorf("unexpected %s after expression", p.cur)
	}
	if lexErr := p.lex.Err(); lexErr != nil {
		return nil, lexErr
	}
	return expr, nil
}

// recoverError turns a *CompileError panic raised by fail into an error
// return. Any other panic is a bug and keeps propagating.
func recoverError(err *error) {
	r := recover()
	if r == nil {
		return
	}
	ce, ok := r.(*CompileError)
	if !ok {
		panic(r)
	}
	*err = ce
}
