package main

// Type is the static type of a value on the evaluation stack.
type Type string

const (
	TypeInt    Type = "int"
	TypeString Type = "string"
)

// SymbolKind distinguishes stack slots below the frame base (locals) from
// caller-pushed arguments above it (parameters).
type SymbolKind string

const (
	SymLocal SymbolKind = "local"
	SymParam SymbolKind = "param"
)

// wordSize is the size in bytes of one stack slot.
const wordSize = 8

// paramBase is the offset of the first parameter: it clears the saved
// frame pointer and the return address.
const paramBase = 16

// Symbol is a named stack slot. Offset is relative to the frame base (rbp).
type Symbol struct {
	Name   string
	Kind   SymbolKind
	Type   Type
	Offset int
	Pos    Pos // first declaration
	Scope  *Scope
}

// Scope is one level of the lexical scope tree. Symbols are kept most
// recently declared first, so lookups see the newest binding.
type Scope struct {
	Parent  *Scope
	symbols []*Symbol

	localCount int
	paramCount int
}

// NewScope creates a scope nested under parent (nil for the global scope).
func NewScope(parent *Scope) *Scope {
	return &Scope{Parent: parent}
}

// Lookup searches this scope and then each enclosing scope for name. It
// returns nil if the name is not declared anywhere on the chain.
func (s *Scope) Lookup(name string) *Symbol {
	for scope := s; scope != nil; scope = scope.Parent {
		if sym := scope.lookupLocal(name); sym != nil {
			return sym
		}
	}
	return nil
}

func (s *Scope) lookupLocal(name string) *Symbol {
	for _, sym := range s.symbols {
		if sym.Name == name {
			return sym
		}
	}
	return nil
}

// DeclareLocal declares a local variable in this scope. Declaring a name
// that already exists in this same scope returns the existing symbol: the
// second declaration shares the first one's slot.
func (s *Scope) DeclareLocal(name string, typ Type, pos Pos) *Symbol {
	if sym := s.lookupLocal(name); sym != nil {
		return sym
	}
	s.localCount++
	sym := &Symbol{
		Name:   name,
		Kind:   SymLocal,
		Type:   typ,
		Offset: -wordSize * s.localCount,
		Pos:    pos,
		Scope:  s,
	}
	s.push(sym)
	return sym
}

// DeclareParam declares the next parameter of a function. Parameters always
// get a fresh slot, in declaration order starting at [rbp+16].
func (s *Scope) DeclareParam(name string, typ Type, pos Pos) *Symbol {
	sym := &Symbol{
		Name:   name,
		Kind:   SymParam,
		Type:   typ,
		Offset: paramBase + wordSize*s.paramCount,
		Pos:    pos,
		Scope:  s,
	}
	s.paramCount++
	s.push(sym)
	return sym
}

func (s *Scope) push(sym *Symbol) {
	s.symbols = append([]*Symbol{sym}, s.symbols...)
}

// LocalCount returns how many local slots this scope needs in its frame.
func (s *Scope) LocalCount() int {
	return s.localCount
}

func (s *Scope) ParamCount() int {
	return s.paramCount
}

// IsGlobal reports whether s is the root scope.
func (s *Scope) IsGlobal() bool {
	return s.Parent == nil
}

// Symbols returns the symbols of this scope only, most recent first.
func (s *Scope) Symbols() []*Symbol {
	return s.symbols
}
