package main

import (
	"fmt"
	"io"
	"strings"
)

// Config controls a compilation run.
type Config struct {
	Target Target

	// PrintHeuristic makes print decide between integer and string at run
	// time by magnitude instead of by the static type of its argument.
	PrintHeuristic bool

	// Log receives progress messages. Nil means silent.
	Log io.Writer
}

func (c Config) logf(format string, args ...any) {
	if c.Log != nil {
		fmt.Fprintf(c.Log, format+"\n", args...)
	}
}

// runtimeNames may not be used as function names: after mangling they
// would clash with the C runtime or the entry label.
var runtimeNames = map[string]bool{
	"printf": true,
	"fflush": true,
	"malloc": true,
	"free":   true,
	"start":  true,
}

// mangle turns a function name into its assembly label.
func mangle(name string) string {
	return "_" + name
}

// codegen lowers one program. All state lives here, so independent
// compilations never share anything.
type codegen struct {
	cfg    Config
	out    *IRProgram
	labels int

	funcs map[string]*FnDef
	fn    *FnDef // nil while lowering top-level statements
	scope *Scope
}

// Generate lowers prog to stack-machine IR.
func Generate(prog *Program, cfg Config) (out *IRProgram, err error) {
	defer recoverError(&err)

	g := &codegen{
		cfg:   cfg,
		out:   &IRProgram{},
		funcs: map[string]*FnDef{},
		scope: prog.Scope,
	}
	g.program(prog)
	return g.out, nil
}

func (g *codegen) program(prog *Program) {
	var fns []*FnDef
	var topLevel []Node
	for _, stmt := range prog.Stmts {
		fn, ok := stmt.(*FnDef)
		if !ok {
			topLevel = append(topLevel, stmt)
			continue
		}
		if runtimeNames[fn.Name] {
			fail(ErrSemantic, fn.Position(), "function name %q is reserved", fn.Name)
		}
		if prev, dup := g.funcs[fn.Name]; dup {
			fail(ErrSemantic, fn.Position(), "function %q already defined at %s", fn.Name, prev.Position())
		}
		g.funcs[fn.Name] = fn
		fns = append(fns, fn)
	}

	mainFn, hasMain := g.funcs["main"]
	// The entry point calls main without arguments.
	if hasMain && len(mainFn.Params) > 0 {
		fail(ErrSemantic, mainFn.Position(), "fn main must not take parameters, got %d", len(mainFn.Params))
	}
	if hasMain && len(topLevel) > 0 {
		fail(ErrSemantic, topLevel[0].Position(), "top-level statements are not allowed when fn main is defined")
	}

	for _, fn := range fns {
		g.function(fn)
	}

	if !hasMain {
		g.fn = nil
		g.scope = prog.Scope
		g.out.emit(OpEntry, int64(prog.Scope.LocalCount()), "")
		for _, stmt := range topLevel {
			g.statement(stmt)
		}
		g.cfg.logf("lowered %d top-level statements, %d slots", len(topLevel), prog.Scope.LocalCount())
	}
}

func (g *codegen) function(fn *FnDef) {
	g.fn = fn
	g.scope = fn.Scope

	g.out.emit(OpLabel, 0, mangle(fn.Name))
	g.out.emit(OpEnter, int64(fn.Scope.LocalCount()), "")
	g.block(fn.Body)
	// Always present, even after an explicit return.
	g.out.emit(OpRet, 0, "")

	g.cfg.logf("lowered fn %s: %d params, %d locals", fn.Name, fn.Scope.ParamCount(), fn.Scope.LocalCount())
}

func (g *codegen) block(b *Block) {
	for _, stmt := range b.Stmts {
		g.statement(stmt)
	}
}

func (g *codegen) statement(node Node) {
	switch n := node.(type) {
	case *Decl:
		g.expression(n.Value)
		sym := g.scope.DeclareLocal(n.Name, n.Type, n.Position())
		g.out.emit(OpStore, int64(sym.Offset), "")

	case *Assign:
		g.expression(n.Value)
		sym := g.resolve(n.Name, n.Position())
		g.out.emit(OpStore, int64(sym.Offset), "")

	case *Return:
		if g.fn == nil {
			fail(ErrSemantic, n.Position(), "return outside of a function")
		}
		g.expression(n.Value)
		g.out.emit(OpRet, 1, "")

	case *CallStmt:
		g.call(n.Name, n.Args, n.Position())
		g.out.emit(OpPop, 0, "")

	case *If:
		elseLabel := g.newLabel("else")
		endLabel := g.newLabel("endif")
		g.expression(n.Cond)
		g.out.emit(OpJz, 0, elseLabel)
		g.block(n.Then)
		if n.Else != nil {
			g.out.emit(OpJmp, 0, endLabel)
			g.out.emit(OpLabel, 0, elseLabel)
			g.block(n.Else)
			g.out.emit(OpLabel, 0, endLabel)
		} else {
			g.out.emit(OpLabel, 0, elseLabel)
		}

	case *While:
		loopLabel := g.newLabel("loop")
		endLabel := g.newLabel("endloop")
		g.out.emit(OpLabel, 0, loopLabel)
		g.expression(n.Cond)
		g.out.emit(OpJz, 0, endLabel)
		g.block(n.Body)
		g.out.emit(OpJmp, 0, loopLabel)
		g.out.emit(OpLabel, 0, endLabel)

	case *Block:
		g.block(n)

	case *Print:
		g.expression(n.Value)
		mode := PrintInt
		if g.cfg.PrintHeuristic {
			mode = PrintDynamic
		} else if g.typeOf(n.Value) == TypeString {
			mode = PrintString
		}
		g.out.emit(OpPrint, int64(mode), "")

	case *Free:
		g.expression(n.Value)
		g.out.emit(OpFree, 0, "")

	default:
		fail(ErrSemantic, node.Position(), "unexpected %s in statement position", nodeName(node))
	}
}

func (g *codegen) expression(node Node) {
	switch n := node.(type) {
	case *IntLit:
		g.out.emit(OpPush, n.Value, "")

	case *StrLit:
		g.out.emit(OpPushStr, 0, n.Value)

	case *VarRef:
		sym := g.resolve(n.Name, n.Position())
		g.out.emit(OpLoad, int64(sym.Offset), "")

	case *Binary:
		g.expression(n.Left)
		g.expression(n.Right)
		switch n.Op {
		case BinPlus:
			g.out.emit(OpAdd, 0, "")
		case BinMinus:
			g.out.emit(OpSub, 0, "")
		case BinMul:
			g.out.emit(OpMul, 0, "")
		case BinDiv:
			g.out.emit(OpDiv, 0, "")
		default:
			fail(ErrSemantic, n.Position(), "unknown binary operator %q", n.Op)
		}

	case *Compare:
		g.expression(n.Left)
		g.expression(n.Right)
		g.out.emit(OpCmp, int64(relationFor(n.Op)), "")

	case *CallExpr:
		g.call(n.Name, n.Args, n.Position())

	case *Malloc:
		g.expression(n.Size)
		g.out.emit(OpMalloc, 0, "")

	default:
		fail(ErrSemantic, node.Position(), "unexpected %s in expression position", nodeName(node))
	}
}

func (g *codegen) call(name string, args []Node, pos Pos) {
	fn, ok := g.funcs[name]
	if !ok {
		fail(ErrSemantic, pos, "undefined function %q", name)
	}
	if len(args) != len(fn.Params) {
		fail(ErrSemantic, pos, "function %q takes %d arguments, got %d", name, len(fn.Params), len(args))
	}
	for _, arg := range args {
		g.expression(arg)
	}
	g.out.emit(OpCall, int64(len(args)), mangle(name))
}

// resolve finds the symbol a reference at pos names. A local is only
// visible after its declaration, and top-level variables live in the entry
// frame, so functions cannot reach them.
func (g *codegen) resolve(name string, pos Pos) *Symbol {
	sym := g.scope.Lookup(name)
	if sym == nil || (sym.Kind == SymLocal && pos.Before(sym.Pos)) {
		fail(ErrSemantic, pos, "undefined variable %q", name)
	}
	if g.fn != nil && sym.Scope.IsGlobal() {
		fail(ErrSemantic, pos, "top-level variable %q cannot be used inside fn %s", name, g.fn.Name)
	}
	return sym
}

// typeOf returns the static type of an expression. Everything except
// string literals, string variables and string-returning calls is an int.
func (g *codegen) typeOf(node Node) Type {
	switch n := node.(type) {
	case *StrLit:
		return TypeString
	case *VarRef:
		if sym := g.scope.Lookup(n.Name); sym != nil {
			return sym.Type
		}
	case *CallExpr:
		if fn, ok := g.funcs[n.Name]; ok {
			return fn.Result
		}
	}
	return TypeInt
}

func (g *codegen) newLabel(prefix string) string {
	label := fmt.Sprintf("%s_%d", prefix, g.labels)
	g.labels++
	return label
}

// nodeName is the bare type name of node, such as "IntLit".
func nodeName(node Node) string {
	name := fmt.Sprintf("%T", node)
	return name[strings.LastIndexByte(name, '.')+1:]
}
