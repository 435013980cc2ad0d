package parser

import (
	"testing"

	"awkvm/internal/ast"
	"awkvm/internal/lexer"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks, err := lexer.NewScanner(src).ScanTokens()
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	prog, err := Parse(toks)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return prog
}

func TestParseBeginPrint(t *testing.T) {
	prog := mustParse(t, `BEGIN{print 1}`)
	if len(prog.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(prog.Items))
	}
	rule := prog.Items[0].Rule
	if rule == nil || rule.Pattern.Kind != ast.PatternBegin {
		t.Fatalf("expected BEGIN rule, got %+v", prog.Items[0])
	}
	block := rule.Action.(*ast.Block)
	if len(block.Stmts) != 1 {
		t.Fatalf("expected 1 stmt, got %d", len(block.Stmts))
	}
	if _, ok := block.Stmts[0].(*ast.Print); !ok {
		t.Fatalf("expected Print, got %T", block.Stmts[0])
	}
}

func TestParseFunctionDef(t *testing.T) {
	prog := mustParse(t, `function add(a,b){ return a+b } BEGIN{ print add(1,2) }`)
	if prog.Items[0].Func == nil || prog.Items[0].Func.Name != "add" {
		t.Fatalf("expected function add, got %+v", prog.Items[0])
	}
	if len(prog.Items[0].Func.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(prog.Items[0].Func.Params))
	}
}

func TestParseAssignmentAndCompound(t *testing.T) {
	prog := mustParse(t, `BEGIN{ x = 1; x += 2 }`)
	block := prog.Items[0].Rule.Action.(*ast.Block)
	if len(block.Stmts) != 2 {
		t.Fatalf("expected 2 stmts, got %d", len(block.Stmts))
	}
	es := block.Stmts[1].(*ast.ExprStmt)
	assign := es.Expr.(*ast.Assign)
	bin := assign.Expr.(*ast.BinOp)
	if bin.Op != ast.OpAdd {
		t.Fatalf("expected OpAdd, got %v", bin.Op)
	}
}

func TestParseConcatenation(t *testing.T) {
	prog := mustParse(t, `BEGIN{ print "a" "b" }`)
	block := prog.Items[0].Rule.Action.(*ast.Block)
	pr := block.Stmts[0].(*ast.Print)
	bin := pr.Args[0].(*ast.BinOp)
	if bin.Op != ast.OpConcat {
		t.Fatalf("expected OpConcat, got %v", bin.Op)
	}
}

func TestParseFieldRefAndArray(t *testing.T) {
	prog := mustParse(t, `{ sum[$1] = $2 }`)
	rule := prog.Items[0].Rule
	if rule.Pattern.Kind != ast.PatternAlways {
		t.Fatalf("expected always pattern, got %v", rule.Pattern.Kind)
	}
	block := rule.Action.(*ast.Block)
	es := block.Stmts[0].(*ast.ExprStmt)
	assign := es.Expr.(*ast.Assign)
	arr := assign.LV.(*ast.ArrayIndex)
	if arr.Name != "sum" {
		t.Fatalf("expected array sum, got %s", arr.Name)
	}
	if _, ok := arr.Indices[0].(*ast.FieldRef); !ok {
		t.Fatalf("expected FieldRef index, got %T", arr.Indices[0])
	}
}

func TestParseIncDec(t *testing.T) {
	prog := mustParse(t, `BEGIN{ print ++i; print i++ }`)
	block := prog.Items[0].Rule.Action.(*ast.Block)
	pr1 := block.Stmts[0].(*ast.Print)
	incdec := pr1.Args[0].(*ast.IncDec)
	if incdec.Kind != ast.PreIncr {
		t.Fatalf("expected PreIncr, got %v", incdec.Kind)
	}
	pr2 := block.Stmts[1].(*ast.Print)
	incdec2 := pr2.Args[0].(*ast.IncDec)
	if incdec2.Kind != ast.PostIncr {
		t.Fatalf("expected PostIncr, got %v", incdec2.Kind)
	}
}

func TestParseIfElse(t *testing.T) {
	prog := mustParse(t, `BEGIN{ if (x > 0) print 1; else print 2 }`)
	block := prog.Items[0].Rule.Action.(*ast.Block)
	if _, ok := block.Stmts[0].(*ast.IfElse); !ok {
		t.Fatalf("expected IfElse, got %T", block.Stmts[0])
	}
}

func TestParseHanoiShape(t *testing.T) {
	src := `function hanoi(n,a,b,c){ if(n>0){ hanoi(n-1,a,c,b); print a,"->",b; hanoi(n-1,c,b,a) } } BEGIN{hanoi(3,"A","B","C")}`
	prog := mustParse(t, src)
	if prog.Items[0].Func.Name != "hanoi" || len(prog.Items[0].Func.Params) != 4 {
		t.Fatalf("unexpected function shape: %+v", prog.Items[0].Func)
	}
}

func TestReservedWordRejectedAsIdent(t *testing.T) {
	toks, err := lexer.NewScanner(`BEGIN{ while = 1 }`).ScanTokens()
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	if _, err := Parse(toks); err == nil {
		t.Fatal("expected parse error using reserved word as identifier")
	}
}
