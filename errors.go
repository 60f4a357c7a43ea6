package main

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a fatal compilation error.
type ErrorKind string

const (
	ErrLexical  ErrorKind = "lexical error"
	ErrSyntax   ErrorKind = "syntax error"
	ErrSemantic ErrorKind = "semantic error"
)

// CompileError is the single error that ends a failed compilation.
// Pos is the zero value when the error has no source location (for
// example an IR shape the backend does not understand).
type CompileError struct {
	Kind ErrorKind
	Pos  Pos
	Msg  string
}

func (e *CompileError) Error() string {
	if e.Pos.Line == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%d:%d: %s: %s", e.Pos.Line, e.Pos.Col, e.Kind, e.Msg)
}

func newError(kind ErrorKind, pos Pos, format string, args ...any) *CompileError {
	return &CompileError{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is a *CompileError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ce *CompileError
	return errors.As(err, &ce) && ce.Kind == kind
}

// fail aborts the current stage. Compile recovers the panic and returns the
// error, so a *CompileError never escapes the package as a panic.
func fail(kind ErrorKind, pos Pos, format string, args ...any) {
	panic(newError(kind, pos, format, args...))
}
