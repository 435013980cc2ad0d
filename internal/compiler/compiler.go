// Package compiler lowers an internal/ast.Program into a resolved
// bytecode.Program through the two-stage process spec.md §4.4
// describes: Stage A emits label-bearing, name-bearing assembly;
// Stage B resolves labels to instruction indices and names to slot
// indices. Grounded on original_source/src/compile.rs's
// `compile`/`asm_to_vmprogram` split (its OpcodeL/label-removal-pass
// design), restructured as Go methods on an *asm accumulator instead
// of a free function threading a Vec, and extended with user-function
// frames, arrays, and the fuller statement/expression set spec.md adds
// beyond kawk's worked BEGIN-only examples.
package compiler

import (
	"fmt"

	"awkvm/internal/ast"
	"awkvm/internal/builtins"
	"awkvm/internal/bytecode"
	"awkvm/internal/value"
)

// Result is everything compilation produces: the resolved program plus
// any non-fatal CompileWarnings (spec.md §7) collected along the way.
type Result struct {
	Program  *bytecode.Program
	Warnings []string
}

// Compile runs the full two-stage pipeline over prog.
func Compile(prog *ast.Program) (*Result, error) {
	e := newEnv()
	for _, item := range prog.Items {
		if item.Func != nil {
			e.funcArity[item.Func.Name] = len(item.Func.Params)
		}
	}

	a := &asm{}
	c := &compilerState{env: e, asm: a}

	for _, item := range prog.Items {
		if item.Rule != nil && item.Rule.Pattern.Kind == ast.PatternBegin {
			if err := c.compileStatement(item.Rule.Action); err != nil {
				return nil, err
			}
		}
	}

	if hasRecordRule(prog) {
		if err := c.compileRecordLoop(prog); err != nil {
			return nil, err
		}
	}

	for _, item := range prog.Items {
		if item.Rule != nil && item.Rule.Pattern.Kind == ast.PatternEnd {
			if err := c.compileStatement(item.Rule.Action); err != nil {
				return nil, err
			}
		}
	}

	a.emit(bytecode.OpEnd)

	for _, item := range prog.Items {
		if item.Func != nil {
			if err := c.compileFunction(item.Func); err != nil {
				return nil, err
			}
		}
	}

	resolved, err := resolve(a, e)
	if err != nil {
		return nil, err
	}
	return &Result{Program: resolved, Warnings: e.warnings}, nil
}

func hasRecordRule(prog *ast.Program) bool {
	for _, item := range prog.Items {
		if item.Rule != nil && item.Rule.Pattern.Kind != ast.PatternBegin && item.Rule.Pattern.Kind != ast.PatternEnd {
			return true
		}
	}
	return false
}

// compileRecordLoop emits the loop: a `loop:` label, Readline, If ->
// theend, each non-BEGIN/END rule, Jump loop, theend: (spec.md §4.4
// Emission order, step 2).
func (c *compilerState) compileRecordLoop(prog *ast.Program) error {
	c.asm.label("loop")
	c.asm.emit(bytecode.OpReadline)
	c.asm.emitJump(bytecode.OpIf, "theend")

	expIdx := 0
	for _, item := range prog.Items {
		if item.Rule == nil {
			continue
		}
		k := item.Rule.Pattern.Kind
		if k == ast.PatternBegin || k == ast.PatternEnd {
			continue
		}
		if k == ast.PatternAlways {
			if err := c.compileStatement(item.Rule.Action); err != nil {
				return err
			}
			continue
		}
		label := fmt.Sprintf("exp%d", expIdx)
		expIdx++
		if err := c.compileExpr(item.Rule.Pattern.Expr); err != nil {
			return err
		}
		c.asm.emitJump(bytecode.OpNIf, label)
		if err := c.compileStatement(item.Rule.Action); err != nil {
			return err
		}
		c.asm.label(label)
	}

	c.asm.emitJump(bytecode.OpJump, "loop")
	c.asm.label("theend")
	return nil
}

// compileFunction appends a user function body prefixed by its entry
// label, with an implicit `Push Uninitialized; Return` tail so a
// function body that never executes `return` still leaves one value
// on the stack at the call site (spec.md §8 testable property).
func (c *compilerState) compileFunction(fn *ast.FunctionDef) error {
	c.env.params = fn.Params
	c.asm.label(funcLabel(fn.Name))
	if err := c.compileStatement(fn.Body); err != nil {
		return err
	}
	c.asm.emitPush(value.Uninit)
	c.asm.emit(bytecode.OpReturn)
	c.env.params = nil
	return nil
}

func funcLabel(name string) string { return "userfn_" + name }

type compilerState struct {
	env *env
	asm *asm
}

// builtinIndex resolves name in the built-in registry; BuiltinCall
// lowering uses the index to check arity and emit Call(idx).
func (c *compilerState) builtinIndex(name string) (int, bool) {
	return builtins.Lookup(name)
}
