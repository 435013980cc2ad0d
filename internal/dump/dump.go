// Package dump implements the three `-d LEVEL` debug formatters
// spec.md §6 names as external-collaborator contracts: `-d 1` dumps
// the parsed AST, `-d 2` dumps the resolved bytecode program, `-d 3`
// dumps the VM's final stack and globals. None of this participates
// in program semantics; it exists purely to let a developer see what
// each pipeline stage produced.
//
// Structural values are rendered with github.com/kr/pretty, the same
// struct-dumping library the corpus's debugger tooling favors over
// reflect/fmt.Sprintf("%+v") for readable nested output; the bytecode
// listing is a flat, one-instruction-per-line table in the style
// original_source's own opcode Debug-derive output takes, since a
// pretty-printed struct dump of a long instruction slice is harder to
// read than a numbered listing.
package dump

import (
	"fmt"
	"io"

	"github.com/kr/pretty"

	"awkvm/internal/ast"
	"awkvm/internal/bytecode"
	"awkvm/internal/value"
)

// AST writes a pretty-printed dump of the parsed program (`-d 1`).
func AST(w io.Writer, prog *ast.Program) {
	fmt.Fprintf(w, "=== AST ===\n")
	pretty.Fprintf(w, "%# v\n", prog)
}

// Bytecode writes a numbered instruction listing (`-d 2`).
func Bytecode(w io.Writer, prog *bytecode.Program) {
	fmt.Fprintf(w, "=== BYTECODE ===\n")
	for i, instr := range prog.Instructions {
		fmt.Fprintf(w, "%4d  %s\n", i, instr)
	}
}

// VMState is the minimal view main needs into a finished vm.VM to dump
// its final stack and globals (`-d 3`), without dump depending on
// package vm (vm already depends on bytecode/value; this interface
// avoids a cycle and keeps dump a leaf formatter).
type VMState interface {
	Stack() []value.Value
	Globals() []value.Value
}

// VM writes the VM's final stack and globals tables (`-d 3`).
func VM(w io.Writer, m VMState) {
	fmt.Fprintf(w, "=== VM STACK ===\n")
	for i, v := range m.Stack() {
		fmt.Fprintf(w, "%4d  %s\n", i, describe(v))
	}
	fmt.Fprintf(w, "=== VM GLOBALS ===\n")
	for i, v := range m.Globals() {
		fmt.Fprintf(w, "%4d  %s\n", i, describe(v))
	}
}

func describe(v value.Value) string {
	switch v.Kind() {
	case value.Number:
		return fmt.Sprintf("number(%s)", v.ToString())
	case value.String:
		return fmt.Sprintf("string(%q)", v.ToString())
	default:
		return "uninitialized"
	}
}
