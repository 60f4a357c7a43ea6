package main

import (
	"fmt"
	"math"
	"runtime"
	"strconv"
	"strings"
)

// Target selects the object-format and symbol conventions of the emitted
// assembly.
type Target string

const (
	// TargetLinux uses bare C symbol names and a _start trampoline.
	TargetLinux Target = "linux"
	// TargetMacOS uses underscore-prefixed C symbols, enters at _main and
	// exits through the BSD syscall.
	TargetMacOS Target = "macos"
)

// ParseTarget validates a target name given on the command line.
func ParseTarget(s string) (Target, error) {
	switch t := Target(s); t {
	case TargetLinux, TargetMacOS:
		return t, nil
	}
	return "", fmt.Errorf("unknown target %q (want %s or %s)", s, TargetLinux, TargetMacOS)
}

// DefaultTarget returns the target matching the host.
func DefaultTarget() Target {
	if runtime.GOOS == "darwin" {
		return TargetMacOS
	}
	return TargetLinux
}

// csym names a C runtime routine the way t's linker expects.
func (t Target) csym(name string) string {
	if t == TargetMacOS {
		return "_" + name
	}
	return name
}

func (t Target) exitSyscall() string {
	if t == TargetMacOS {
		return "0x2000001"
	}
	return "60"
}

func (t Target) entryLabel() string {
	if t == TargetMacOS {
		return "_main"
	}
	return "_start"
}

// stringThreshold separates integers from string pointers for PrintDynamic.
const stringThreshold = 0x1000

var jumpForRelation = map[Relation]string{
	RelEQ: "je",
	RelNE: "jne",
	RelLT: "jl",
	RelGT: "jg",
	RelLE: "jle",
	RelGE: "jge",
}

// assembler translates one IR program. The evaluation stack is the machine
// stack; rax and rbx are scratch.
type assembler struct {
	target Target
	sb     strings.Builder

	strtab  []string // in order of appearance
	nextStr int

	// slots is the local slot count of the frame being translated, or -1
	// outside any frame.
	slots int
}

// EmitAssembly translates p into a NASM x86-64 translation unit for t.
func EmitAssembly(p *IRProgram, t Target) (string, error) {
	if _, err := ParseTarget(string(t)); err != nil {
		return "", err
	}
	a := &assembler{target: t, slots: -1}
	a.collectStrings(p)

	hasMain := p.HasLabel(mangle("main"))
	hasEntry := false
	for _, in := range p.Instrs {
		if in.Op == OpEntry {
			if hasEntry || hasMain {
				return "", newError(ErrSemantic, Pos{}, "program has more than one entry point")
			}
			hasEntry = true
		}
	}

	a.dataSection()
	a.textHeader()
	if t == TargetLinux && hasMain {
		a.line("%s:", t.entryLabel())
		a.ins("call %s", mangle("main"))
		a.exit()
		a.line("")
	}

	for i, in := range p.Instrs {
		if err := a.translate(i, in); err != nil {
			return "", err
		}
	}

	if !hasMain {
		a.line("")
		a.exit()
	}
	return a.sb.String(), nil
}

func (a *assembler) collectStrings(p *IRProgram) {
	for _, in := range p.Instrs {
		if in.Op == OpPushStr {
			a.strtab = append(a.strtab, in.Label)
		}
	}
}

func (a *assembler) line(format string, args ...any) {
	fmt.Fprintf(&a.sb, format, args...)
	a.sb.WriteByte('\n')
}

func (a *assembler) ins(format string, args ...any) {
	a.sb.WriteString("    ")
	a.line(format, args...)
}

func (a *assembler) dataSection() {
	a.line("section .data")
	for i, s := range a.strtab {
		a.line("str_%d: db %s", i, dbOperands(s))
	}
	a.line(`fmt_int: db "%%d", 10, 0`)
	a.line(`fmt_str: db "%%s", 0`)
	a.line("")
}

func (a *assembler) textHeader() {
	t := a.target
	a.line("section .text")
	a.line("global %s", t.entryLabel())
	for _, name := range []string{"printf", "malloc", "free", "fflush"} {
		a.line("extern %s", t.csym(name))
	}
	a.line("")
}

// dbOperands renders s as the operand list of a NASM db directive, NUL
// terminated. Bytes that cannot appear inside a NASM string literal are
// written as numbers.
func dbOperands(s string) string {
	var parts []string
	var run strings.Builder
	flush := func() {
		if run.Len() > 0 {
			parts = append(parts, `"`+run.String()+`"`)
			run.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= ' ' && c <= '~' && c != '"' {
			run.WriteByte(c)
			continue
		}
		flush()
		parts = append(parts, strconv.Itoa(int(c)))
	}
	flush()
	parts = append(parts, "0")
	return strings.Join(parts, ", ")
}

func frameOperand(offset int64) string {
	if offset < 0 {
		return fmt.Sprintf("[rbp - %d]", -offset)
	}
	return fmt.Sprintf("[rbp + %d]", offset)
}

// prologue sets up a frame with slots locals plus one slot for the
// caller's rbx, which the stack code uses as scratch.
func (a *assembler) prologue(slots int64) {
	save := wordSize * (slots + 1)
	a.ins("push rbp")
	a.ins("mov rbp, rsp")
	a.ins("sub rsp, %d", save)
	a.ins("mov [rbp - %d], rbx", save)
	a.slots = int(slots)
}

func (a *assembler) epilogue() {
	a.ins("mov rbx, [rbp - %d]", wordSize*(a.slots+1))
	a.ins("mov rsp, rbp")
	a.ins("pop rbp")
	a.ins("ret")
}

// ccall calls a C routine with rsp aligned to 16 bytes, as the SysV ABI
// requires. Arguments must already be in registers.
func (a *assembler) ccall(name string) {
	a.ins("mov rbx, rsp")
	a.ins("and rsp, -16")
	a.ins("call %s", a.target.csym(name))
	a.ins("mov rsp, rbx")
}

// exit flushes stdio and terminates the process with status 0.
func (a *assembler) exit() {
	a.ins("xor edi, edi")
	a.ccall("fflush")
	a.ins("mov rax, %s", a.target.exitSyscall())
	a.ins("xor edi, edi")
	a.ins("syscall")
}

func (a *assembler) binary(op string) {
	a.ins("pop rbx")
	a.ins("pop rax")
	a.ins("%s rax, rbx", op)
	a.ins("push rax")
}

func (a *assembler) translate(i int, in Instr) error {
	switch in.Op {
	case OpLabel:
		a.line("%s:", in.Label)

	case OpEnter:
		a.prologue(in.Operand)

	case OpEntry:
		a.line("%s:", a.target.entryLabel())
		a.prologue(in.Operand)

	case OpPush:
		if in.Operand >= math.MinInt32 && in.Operand <= math.MaxInt32 {
			a.ins("push %d", in.Operand)
		} else {
			a.ins("mov rax, %d", in.Operand)
			a.ins("push rax")
		}

	case OpPushStr:
		a.ins("lea rax, [rel str_%d]", a.nextStr)
		a.ins("push rax")
		a.nextStr++

	case OpPop:
		a.ins("pop rax")

	case OpAdd:
		a.binary("add")
	case OpSub:
		a.binary("sub")
	case OpMul:
		a.binary("imul")
	case OpDiv:
		a.ins("pop rbx")
		a.ins("pop rax")
		a.ins("cqo")
		a.ins("idiv rbx")
		a.ins("push rax")

	case OpLoad:
		a.ins("mov rax, %s", frameOperand(in.Operand))
		a.ins("push rax")

	case OpStore:
		a.ins("pop rax")
		a.ins("mov %s, rax", frameOperand(in.Operand))

	case OpCall:
		// Arguments were pushed first to last; reverse them so the first
		// one sits closest to the return address, at [rbp + 16].
		n := in.Operand
		for lo, hi := int64(0), n-1; lo < hi; lo, hi = lo+1, hi-1 {
			a.ins("mov rax, [rsp + %d]", wordSize*lo)
			a.ins("mov rbx, [rsp + %d]", wordSize*hi)
			a.ins("mov [rsp + %d], rbx", wordSize*lo)
			a.ins("mov [rsp + %d], rax", wordSize*hi)
		}
		a.ins("call %s", in.Label)
		if n > 0 {
			a.ins("add rsp, %d", wordSize*n)
		}
		a.ins("push rax")

	case OpRet:
		if a.slots < 0 {
			return newError(ErrSemantic, Pos{}, "ret outside of a function frame (instruction %d)", i)
		}
		if in.Operand != 0 {
			a.ins("pop rax")
		} else {
			a.ins("xor eax, eax")
		}
		a.epilogue()

	case OpCmp:
		jump, ok := jumpForRelation[Relation(in.Operand)]
		if !ok {
			return newError(ErrSemantic, Pos{}, "unknown relation %d (instruction %d)", in.Operand, i)
		}
		a.ins("pop rbx")
		a.ins("pop rax")
		a.ins("cmp rax, rbx")
		a.ins("%s .cmp_true_%d", jump, i)
		a.ins("push 0")
		a.ins("jmp .cmp_end_%d", i)
		a.line(".cmp_true_%d:", i)
		a.ins("push 1")
		a.line(".cmp_end_%d:", i)

	case OpJmp:
		a.ins("jmp %s", in.Label)

	case OpJz, OpJnz:
		a.ins("pop rax")
		a.ins("test rax, rax")
		a.ins("%s %s", in.Op, in.Label)

	case OpPrint:
		a.ins("pop rsi")
		switch PrintMode(in.Operand) {
		case PrintInt:
			a.ins("lea rdi, [rel fmt_int]")
		case PrintString:
			a.ins("lea rdi, [rel fmt_str]")
		case PrintDynamic:
			a.ins("cmp rsi, 0x%x", stringThreshold)
			a.ins("jge .print_str_%d", i)
			a.ins("lea rdi, [rel fmt_int]")
			a.ins("jmp .print_call_%d", i)
			a.line(".print_str_%d:", i)
			a.ins("lea rdi, [rel fmt_str]")
			a.line(".print_call_%d:", i)
		default:
			return newError(ErrSemantic, Pos{}, "unknown print mode %d (instruction %d)", in.Operand, i)
		}
		a.ins("xor eax, eax")
		a.ccall("printf")

	case OpMalloc:
		a.ins("pop rdi")
		a.ccall("malloc")
		a.ins("push rax")

	case OpFree:
		a.ins("pop rdi")
		a.ccall("free")

	default:
		return newError(ErrSemantic, Pos{}, "unknown IR instruction %s (instruction %d)", in.Op, i)
	}
	return nil
}
