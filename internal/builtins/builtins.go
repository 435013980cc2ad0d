// Package builtins is the closed, ordered built-in function registry
// spec.md §4.3 describes: a {name, arity, handler} table queried by
// both the parser (to distinguish BuiltinCall from UserCall) and the
// compiler (to emit Call(index) with a stable index). Handler
// semantics are grounded on original_source's vm/ifunc.rs (ifunc_sin,
// ifunc_index, ifunc_atan2, ...); the descriptor-table shape itself
// follows the teacher's internal/vmregister/stdlib.go
// registerGlobal(name, &NativeFnObj{...}) pattern, adapted to a flat
// slice instead of a runtime-mutable global map since this registry
// is closed and known entirely at compile time.
package builtins

import (
	"math"
	"math/rand"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/exp/slices"

	"awkvm/internal/value"
)

// Stack is the minimal collaborator a handler needs: pop its declared
// number of arguments and push exactly one result (spec.md §4.3).
// The VM's value stack satisfies this interface.
type Stack interface {
	Pop() value.Value
	Push(value.Value)
}

// Runtime is passed to handlers that need VM-level state beyond the
// stack: system()'s exit code reporting and rand/srand's shared
// generator.
type Runtime interface {
	Stack
	Rand() *rand.Rand
}

type Handler func(rt Runtime)

// Descriptor is one entry of the registry: a name, its declared arity,
// and the handler invoked by Call(index).
type Descriptor struct {
	Name    string
	Arity   int
	Handler Handler
}

// table is the closed, ordered built-in list spec.md §4.3 requires:
// sin cos exp log sqrt int atan2 rand srand tolower toupper length
// index system.
var table = []Descriptor{
	{"sin", 1, func(rt Runtime) { rt.Push(value.Num(math.Sin(rt.Pop().ToNumber()))) }},
	{"cos", 1, func(rt Runtime) { rt.Push(value.Num(math.Cos(rt.Pop().ToNumber()))) }},
	{"exp", 1, func(rt Runtime) { rt.Push(value.Num(math.Exp(rt.Pop().ToNumber()))) }},
	{"log", 1, func(rt Runtime) { rt.Push(value.Num(math.Log(rt.Pop().ToNumber()))) }},
	{"sqrt", 1, func(rt Runtime) { rt.Push(value.Num(math.Sqrt(rt.Pop().ToNumber()))) }},
	{"int", 1, func(rt Runtime) { rt.Push(value.Num(float64(int64(rt.Pop().ToNumber())))) }},
	{"atan2", 2, func(rt Runtime) {
		y := rt.Pop().ToNumber()
		x := rt.Pop().ToNumber()
		rt.Push(value.Num(math.Atan2(y, x)))
	}},
	{"rand", 0, func(rt Runtime) { rt.Push(value.Num(rt.Rand().Float64())) }},
	// srand pushes nothing: the VM's Call(idx) always expects the
	// handler to push exactly one result for the general contract, but
	// spec.md §4.3/§9 documents srand as the one exception — it seeds
	// the generator and leaves the stack alone, so it can only be used
	// as a statement (the compiler emits no trailing Pop for a bare
	// srand statement).
	{"srand", 1, func(rt Runtime) {
		seed := int64(rt.Pop().ToNumber())
		*rt.Rand() = *rand.New(rand.NewSource(seed))
	}},
	{"tolower", 1, func(rt Runtime) { rt.Push(value.Str(strings.ToLower(rt.Pop().ToString()))) }},
	{"toupper", 1, func(rt Runtime) { rt.Push(value.Str(strings.ToUpper(rt.Pop().ToString()))) }},
	{"length", 1, func(rt Runtime) {
		s := rt.Pop().ToString()
		rt.Push(value.Num(float64(len([]rune(s)))))
	}},
	{"index", 2, func(rt Runtime) {
		s := rt.Pop().ToString()
		t := rt.Pop().ToString()
		idx := strings.Index(s, t)
		if idx < 0 {
			rt.Push(value.Num(0))
			return
		}
		rt.Push(value.Num(float64(len([]rune(s[:idx])) + 1)))
	}},
	{"system", 1, func(rt Runtime) {
		cmd := rt.Pop().ToString()
		c := exec.Command("sh", "-c", cmd)
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		status := 0
		if err := c.Run(); err != nil {
			if exitErr, ok := err.(*exec.ExitError); ok {
				status = exitErr.ExitCode()
			} else {
				status = -1
			}
		}
		rt.Push(value.Num(float64(status)))
	}},
}

// Lookup returns the index of name in the registry, or (-1, false) if
// it is not a built-in. The parser uses this to choose BuiltinCall vs
// UserCall; the compiler uses it to validate arity and emit Call(idx).
func Lookup(name string) (int, bool) {
	i := slices.IndexFunc(table, func(d Descriptor) bool { return d.Name == name })
	if i < 0 {
		return -1, false
	}
	return i, true
}

// Arity returns the declared argument count for the built-in at idx.
func Arity(idx int) int { return table[idx].Arity }

// Name returns the registry name at idx, for diagnostics.
func Name(idx int) string { return table[idx].Name }

// Call dispatches to the handler at idx.
func Call(idx int, rt Runtime) { table[idx].Handler(rt) }

// Count is the number of registered built-ins.
func Count() int { return len(table) }
