package vm

import (
	"strings"
	"testing"

	"awkvm/internal/compiler"
	"awkvm/internal/lexer"
	"awkvm/internal/parser"
)

func mustRun(t *testing.T, src, input string) string {
	t.Helper()
	toks, err := lexer.NewScanner(src).ScanTokens()
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	prog, err := parser.Parse(toks)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	res, err := compiler.Compile(prog)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	var out strings.Builder
	m := New(res.Program, strings.NewReader(input), &out)
	if err := m.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	return out.String()
}

func TestBeginPrintLiteral(t *testing.T) {
	got := mustRun(t, `BEGIN{print 1}`, "")
	if got != "1\n" {
		t.Fatalf("got %q", got)
	}
}

func TestSumFieldsToEnd(t *testing.T) {
	got := mustRun(t, `{sum+=$1} END{print sum}`, "1\n2\n3\n")
	if got != "6\n" {
		t.Fatalf("got %q", got)
	}
}

func TestWhileLoopSumTo55(t *testing.T) {
	got := mustRun(t, `BEGIN{
		i=1
		while (i<=10) {
			s += i
			i++
		}
		print s
	}`, "")
	if got != "55\n" {
		t.Fatalf("got %q", got)
	}
}

func TestMutualRecursion(t *testing.T) {
	got := mustRun(t, `
	function even(n) {
		if (n == 0) return 1
		return odd(n - 1)
	}
	function odd(n) {
		if (n == 0) return 0
		return even(n - 1)
	}
	BEGIN { print even(10) }
	`, "")
	if got != "1\n" {
		t.Fatalf("got %q", got)
	}
}

func TestHanoiRecursive(t *testing.T) {
	got := mustRun(t, `
	function hanoi(n) {
		if (n == 0) return 0
		return 2 * hanoi(n - 1) + 1
	}
	BEGIN { print hanoi(3) }
	`, "")
	if got != "7\n" {
		t.Fatalf("got %q", got)
	}
}

func TestPreAndPostIncrementOnUninitialized(t *testing.T) {
	got := mustRun(t, `BEGIN{
		print x++
		print x
		print ++y
		print y
	}`, "")
	want := "0\n1\n1\n1\n"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestArrayAssignAndRead(t *testing.T) {
	got := mustRun(t, `BEGIN{
		a["x"] = 5
		a["x"]++
		print a["x"]
		print a["missing"]
	}`, "")
	if got != "6\n\n" {
		t.Fatalf("got %q", got)
	}
}

func TestPrintfBasic(t *testing.T) {
	got := mustRun(t, `BEGIN{ printf "%d-%s\n", 3, "x" }`, "")
	if got != "3-x\n" {
		t.Fatalf("got %q", got)
	}
}

func TestConcatenationAndComparison(t *testing.T) {
	got := mustRun(t, `BEGIN{
		s = "a" "b" "c"
		print s
		print (1 < 2)
		print ("10" < "9")
	}`, "")
	want := "abc\n1\n1\n"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestReadlineEOFTerminatesRecordLoop(t *testing.T) {
	got := mustRun(t, `{n++} END{print n}`, "a\nb\n")
	if got != "2\n" {
		t.Fatalf("got %q", got)
	}
}

func TestDivisionByZeroIsRuntimeError(t *testing.T) {
	toks, err := lexer.NewScanner(`BEGIN{ print 1/0 }`).ScanTokens()
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	prog, err := parser.Parse(toks)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	res, err := compiler.Compile(prog)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	var out strings.Builder
	m := New(res.Program, strings.NewReader(""), &out)
	if err := m.Run(); err == nil {
		t.Fatal("expected a runtime error for division by zero")
	}
}
