package main

import (
	"strconv"
	"strings"
)

// Node is any AST node. The set of implementations is closed: every node
// type lives in this file and embeds base.
type Node interface {
	Position() Pos
	node()
}

type base struct {
	pos Pos
}

func (b base) Position() Pos { return b.pos }
func (base) node() {}

// BinaryOp is an arithmetic operator.
type BinaryOp string

const (
	BinPlus  BinaryOp = "+"
	BinMinus BinaryOp = "-"
	BinMul   BinaryOp = "*"
	BinDiv   BinaryOp = "/"
)

// CompareOp is a relational operator.
type CompareOp string

const (
	CmpEQ CompareOp = "=="
	CmpNE CompareOp = "!="
	CmpLT CompareOp = "<"
	CmpGT CompareOp = ">"
	CmpLE CompareOp = "<="
	CmpGE CompareOp = ">="
)

type IntLit struct {
	base
	Value int64
}

// StrLit holds the raw text between the quotes, escapes undecoded.
type StrLit struct {
	base
	Value string
}

type VarRef struct {
	base
	Name string
}

type Binary struct {
	base
	Op          BinaryOp
	Left, Right Node
}

type Compare struct {
	base
	Op          CompareOp
	Left, Right Node
}

type Assign struct {
	base
	Name  string
	Value Node
}

type Decl struct {
	base
	Name  string
	Type  Type
	Value Node
}

type Return struct {
	base
	Value Node
}

type CallExpr struct {
	base
	Name string
	Args []Node
}

// CallStmt is a call whose result is discarded.
type CallStmt struct {
	base
	Name string
	Args []Node
}

type Param struct {
	Pos  Pos
	Name string
	Type Type
}

// FnDef is a function definition. Scope holds the parameters and every
// local declared anywhere in the body.
type FnDef struct {
	base
	Name   string
	Params []Param
	Result Type
	Body   *Block
	Scope  *Scope
}

// Program is the root of the tree. Scope is the global scope.
type Program struct {
	base
	Stmts []Node
	Scope *Scope
}

type Block struct {
	base
	Stmts []Node
}

// If has a nil Else when there is no else branch. An "else if" chain is an
// Else block holding a single nested *If.
type If struct {
	base
	Cond Node
	Then *Block
	Else *Block
}

type While struct {
	base
	Cond Node
	Body *Block
}

type Print struct {
	base
	Value Node
}

type Free struct {
	base
	Value Node
}

type Malloc struct {
	base
	Size Node
}

// ToSExpr converts an AST node to s-expression string representation
func ToSExpr(node Node) string {
	var sb strings.Builder
	writeSExpr(&sb, node)
	return sb.String()
}

func writeSExpr(sb *strings.Builder, node Node) {
	switch n := node.(type) {
	case *IntLit:
		sb.WriteString("(integer " + strconv.FormatInt(n.Value, 10) + ")")
	case *StrLit:
		sb.WriteString("(string " + quote(n.Value) + ")")
	case *VarRef:
		sb.WriteString("(var " + quote(n.Name) + ")")
	case *Binary:
		sb.WriteString("(binary " + quote(string(n.Op)) + " ")
		writeSExpr(sb, n.Left)
		sb.WriteString(" ")
		writeSExpr(sb, n.Right)
		sb.WriteString(")")
	case *Compare:
		sb.WriteString("(compare " + quote(string(n.Op)) + " ")
		writeSExpr(sb, n.Left)
		sb.WriteString(" ")
		writeSExpr(sb, n.Right)
		sb.WriteString(")")
	case *Assign:
		sb.WriteString("(assign " + quote(n.Name) + " ")
		writeSExpr(sb, n.Value)
		sb.WriteString(")")
	case *Decl:
		sb.WriteString("(let " + quote(n.Name) + " " + string(n.Type) + " ")
		writeSExpr(sb, n.Value)
		sb.WriteString(")")
	case *Return:
		sb.WriteString("(return ")
		writeSExpr(sb, n.Value)
		sb.WriteString(")")
	case *CallExpr:
		sb.WriteString("(call " + quote(n.Name))
		writeList(sb, n.Args)
		sb.WriteString(")")
	case *CallStmt:
		sb.WriteString("(call-stmt " + quote(n.Name))
		writeList(sb, n.Args)
		sb.WriteString(")")
	case *FnDef:
		sb.WriteString("(fn " + quote(n.Name) + " (params")
		for _, p := range n.Params {
			sb.WriteString(" (param " + quote(p.Name) + " " + string(p.Type) + ")")
		}
		sb.WriteString(") " + string(n.Result) + " ")
		writeSExpr(sb, n.Body)
		sb.WriteString(")")
	case *Program:
		sb.WriteString("(program")
		writeList(sb, n.Stmts)
		sb.WriteString(")")
	case *Block:
		sb.WriteString("(block")
		writeList(sb, n.Stmts)
		sb.WriteString(")")
	case *If:
		sb.WriteString("(if ")
		writeSExpr(sb, n.Cond)
		sb.WriteString(" ")
		writeSExpr(sb, n.Then)
		if n.Else != nil {
			sb.WriteString(" ")
			writeSExpr(sb, n.Else)
		}
		sb.WriteString(")")
	case *While:
		sb.WriteString("(while ")
		writeSExpr(sb, n.Cond)
		sb.WriteString(" ")
		writeSExpr(sb, n.Body)
		sb.WriteString(")")
	case *Print:
		sb.WriteString("(print ")
		writeSExpr(sb, n.Value)
		sb.WriteString(")")
	case *Free:
		sb.WriteString("(free ")
		writeSExpr(sb, n.Value)
		sb.WriteString(")")
	case *Malloc:
		sb.WriteString("(malloc ")
		writeSExpr(sb, n.Size)
		sb.WriteString(")")
	default:
		sb.WriteString("(unknown)")
	}
}

func writeList(sb *strings.Builder, nodes []Node) {
	for _, n := range nodes {
		sb.WriteString(" ")
		writeSExpr(sb, n)
	}
}

// quote renders s as an s-expression string: only '"' and '\' are escaped.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
