// Package errors defines the interpreter's error taxonomy (spec.md §7):
// SyntaxError, CompileError, CompileWarning and RuntimeError, each
// carrying a source position where one is known. Shape follows the
// teacher's internal/errors package (SentraError/SourceLocation/
// WithSource), narrowed to the four kinds spec.md actually names and
// dropping the multi-frame call stack the teacher carries (this
// interpreter's errors are single-line diagnostics, per §7).
package errors

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Kind is one of the four error kinds spec.md §7 names.
type Kind string

const (
	Syntax   Kind = "SyntaxError"
	Compile  Kind = "CompileError"
	Runtime  Kind = "RuntimeError"
	CompileW Kind = "CompileWarning"
)

// Position is a line/column source location; the zero value means
// "no position known".
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	if p.Line == 0 {
		return ""
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// InterpError is a single-line, position-tagged diagnostic. The
// parser, the compiler and the VM's own checks return either a
// complete artifact or one of these; the lexer returns plain errors,
// and Go errors passed through Wrap stay pkg/errors values. There is
// no error recovery within a stage.
type InterpError struct {
	Kind Kind
	Msg  string
	Pos  Position
}

func (e *InterpError) Error() string {
	if e.Pos.Line == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s (at %s)", e.Kind, e.Msg, e.Pos)
}

func NewSyntax(msg string, line, col int) *InterpError {
	return &InterpError{Kind: Syntax, Msg: msg, Pos: Position{line, col}}
}

func NewCompile(msg string) *InterpError {
	return &InterpError{Kind: Compile, Msg: msg}
}

func NewRuntime(msg string) *InterpError {
	return &InterpError{Kind: Runtime, Msg: msg}
}

// Wrap attaches stack context to an underlying Go error (an I/O
// failure, a division by zero) and tags it as a RuntimeError, per
// spec.md §7. A `sh -c` spawn failure in system() is not an error: the
// built-in yields exit status -1.
func Wrap(err error, context string) error {
	if err == nil {
		return nil
	}
	return pkgerrors.Wrapf(err, "%s: %s", Runtime, context)
}
