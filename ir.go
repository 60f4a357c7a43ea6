package main

import (
	"fmt"
	"strings"
)

// Op is a stack-machine opcode.
type Op int

const (
	OpPush    Op = iota // push Operand
	OpPushStr           // push address of string literal Label
	OpPop               // discard top of stack
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpLoad   // push [rbp+Operand]
	OpStore  // pop into [rbp+Operand]
	OpCall   // call Label with Operand arguments on the stack, push result
	OpRet    // return; Operand 1 pops the return value, 0 returns 0
	OpJmp    // jump to Label
	OpJz     // pop, jump to Label if zero
	OpJnz    // pop, jump to Label if not zero
	OpLabel  // define Label
	OpCmp    // pop two, push 1 if Relation(Operand) holds, else 0
	OpPrint  // pop and print; Operand is a PrintMode
	OpMalloc // pop size, push pointer
	OpFree   // pop pointer
	OpEnter  // function prologue reserving Operand local slots
	OpEntry  // program entry point reserving Operand local slots
)

var opNames = [...]string{
	OpPush:    "push",
	OpPushStr: "push_str",
	OpPop:     "pop",
	OpAdd:     "add",
	OpSub:     "sub",
	OpMul:     "mul",
	OpDiv:     "div",
	OpLoad:    "load",
	OpStore:   "store",
	OpCall:    "call",
	OpRet:     "ret",
	OpJmp:     "jmp",
	OpJz:      "jz",
	OpJnz:     "jnz",
	OpLabel:   "label",
	OpCmp:     "cmp",
	OpPrint:   "print",
	OpMalloc:  "malloc",
	OpFree:    "free",
	OpEnter:   "enter",
	OpEntry:   "entry",
}

func (op Op) String() string {
	if op >= 0 && int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("op(%d)", int(op))
}

// Relation is the Operand of OpCmp.
type Relation int64

const (
	RelEQ Relation = iota
	RelNE
	RelLT
	RelGT
	RelLE
	RelGE
)

var relationNames = [...]string{"eq", "ne", "lt", "gt", "le", "ge"}

func (r Relation) String() string {
	if r >= 0 && int(r) < len(relationNames) {
		return relationNames[r]
	}
	return fmt.Sprintf("rel(%d)", int64(r))
}

func relationFor(op CompareOp) Relation {
	switch op {
	case CmpEQ:
		return RelEQ
	case CmpNE:
		return RelNE
	case CmpLT:
		return RelLT
	case CmpGT:
		return RelGT
	case CmpLE:
		return RelLE
	default:
		return RelGE
	}
}

// PrintMode is the Operand of OpPrint.
type PrintMode int64

const (
	PrintInt PrintMode = iota
	PrintString
	// PrintDynamic decides at run time: values below stringThreshold are
	// printed as integers, anything else as a string pointer.
	PrintDynamic
)

var printModeNames = [...]string{"int", "string", "dynamic"}

func (m PrintMode) String() string {
	if m >= 0 && int(m) < len(printModeNames) {
		return printModeNames[m]
	}
	return fmt.Sprintf("mode(%d)", int64(m))
}

// Instr is one IR instruction. The meaning of Operand and Label depends on
// Op; see the Op constants.
type Instr struct {
	Op      Op
	Operand int64
	Label   string
}

func (in Instr) String() string {
	switch in.Op {
	case OpPush, OpLoad, OpStore, OpRet, OpEnter, OpEntry:
		return fmt.Sprintf("%s %d", in.Op, in.Operand)
	case OpPushStr:
		return fmt.Sprintf("%s %s", in.Op, quote(in.Label))
	case OpCall:
		return fmt.Sprintf("%s %s %d", in.Op, in.Label, in.Operand)
	case OpJmp, OpJz, OpJnz:
		return fmt.Sprintf("%s %s", in.Op, in.Label)
	case OpLabel:
		return in.Label + ":"
	case OpCmp:
		return fmt.Sprintf("%s %s", in.Op, Relation(in.Operand))
	case OpPrint:
		return fmt.Sprintf("%s %s", in.Op, PrintMode(in.Operand))
	default:
		return in.Op.String()
	}
}

// IRProgram is a flat, ordered instruction list. Control flow exists only as
// labels and jump targets.
type IRProgram struct {
	Instrs []Instr
}

func (p *IRProgram) emit(op Op, operand int64, label string) {
	p.Instrs = append(p.Instrs, Instr{Op: op, Operand: operand, Label: label})
}

// HasLabel reports whether the program defines label.
func (p *IRProgram) HasLabel(label string) bool {
	for _, in := range p.Instrs {
		if in.Op == OpLabel && in.Label == label {
			return true
		}
	}
	return false
}

// String renders one instruction per line; labels are flush left and
// everything else is indented.
func (p *IRProgram) String() string {
	var sb strings.Builder
	for _, in := range p.Instrs {
		if in.Op != OpLabel {
			sb.WriteString("  ")
		}
		sb.WriteString(in.String())
		sb.WriteString("\n")
	}
	return sb.String()
}
