package compiler

import (
	"testing"

	"awkvm/internal/bytecode"
	"awkvm/internal/lexer"
	"awkvm/internal/parser"
)

func mustCompile(t *testing.T, src string) *Result {
	t.Helper()
	toks, err := lexer.NewScanner(src).ScanTokens()
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	prog, err := parser.Parse(toks)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	res, err := Compile(prog)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return res
}

func opsOf(p *bytecode.Program) []bytecode.Op {
	ops := make([]bytecode.Op, len(p.Instructions))
	for i, instr := range p.Instructions {
		ops[i] = instr.Op
	}
	return ops
}

func TestCompileBeginPrint(t *testing.T) {
	res := mustCompile(t, `BEGIN{print 1}`)
	want := []bytecode.Op{bytecode.OpPush, bytecode.OpPrint, bytecode.OpEnd}
	got := opsOf(res.Program)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("op %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestCompileEndsWithEnd(t *testing.T) {
	res := mustCompile(t, `{sum+=$1} END{print sum}`)
	instrs := res.Program.Instructions
	// The top-level (non-function) instruction stream terminates with
	// End before any appended user function bodies — none here, so the
	// whole program must end in End (spec.md §8).
	if instrs[len(instrs)-1].Op != bytecode.OpEnd {
		t.Fatalf("last instruction = %v, want End", instrs[len(instrs)-1].Op)
	}
}

func TestCompileRecordLoopStructure(t *testing.T) {
	res := mustCompile(t, `{sum+=$1} END{print sum}`)
	ops := opsOf(res.Program)
	foundReadline, foundIf, foundJump, foundEnd := false, false, false, false
	for _, op := range ops {
		switch op {
		case bytecode.OpReadline:
			foundReadline = true
		case bytecode.OpIf:
			foundIf = true
		case bytecode.OpJump:
			foundJump = true
		case bytecode.OpEnd:
			foundEnd = true
		}
	}
	if !foundReadline || !foundIf || !foundJump || !foundEnd {
		t.Fatalf("missing expected loop opcodes in %v", ops)
	}
}

func TestCompileUserFunctionArityWarning(t *testing.T) {
	src := `function f(a){return a} BEGIN{ f(1,2,3) }`
	res := mustCompile(t, src)
	if len(res.Warnings) == 0 {
		t.Fatal("expected an arity warning for too many arguments")
	}
}

func TestCompileBuiltinArityMismatchErrors(t *testing.T) {
	toks, err := lexer.NewScanner(`BEGIN{ print sqrt(1,2) }`).ScanTokens()
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	prog, err := parser.Parse(toks)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := Compile(prog); err == nil {
		t.Fatal("expected compile error for builtin arity mismatch")
	}
}

func TestCompileBreakOutsideLoopErrors(t *testing.T) {
	toks, err := lexer.NewScanner(`BEGIN{ break }`).ScanTokens()
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	prog, err := parser.Parse(toks)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := Compile(prog); err == nil {
		t.Fatal("expected compile error for break outside loop")
	}
}

func TestCompileFunctionAppendedAfterEnd(t *testing.T) {
	res := mustCompile(t, `function f(){return 1} BEGIN{print f()}`)
	ops := opsOf(res.Program)
	endIdx := -1
	for i, op := range ops {
		if op == bytecode.OpEnd {
			endIdx = i
			break
		}
	}
	if endIdx == -1 {
		t.Fatal("no End instruction found")
	}
	foundReturn := false
	for _, op := range ops[endIdx+1:] {
		if op == bytecode.OpReturn {
			foundReturn = true
		}
	}
	if !foundReturn {
		t.Fatal("expected a Return in the appended function body")
	}
}

func TestArrayAndGlobalSlotsAssigned(t *testing.T) {
	res := mustCompile(t, `BEGIN{ x=1; arr["k"]=2 }`)
	hasInitEnv, hasInitEnvArray := false, false
	for _, instr := range res.Program.Instructions {
		if instr.Op == bytecode.OpInitEnv {
			hasInitEnv = true
		}
		if instr.Op == bytecode.OpInitEnvArray {
			hasInitEnvArray = true
		}
	}
	if !hasInitEnv || !hasInitEnvArray {
		t.Fatalf("expected both InitEnv and InitEnvArray, instrs=%v", opsOf(res.Program))
	}
}
