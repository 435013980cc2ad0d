// cmd/awkvm/main.go
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"awkvm/internal/compiler"
	"awkvm/internal/dump"
	awkerr "awkvm/internal/errors"
	"awkvm/internal/lexer"
	"awkvm/internal/parser"
	"awkvm/internal/vm"
)

const usage = `awkvm - a small AWK-subset interpreter

Usage:
  awkvm [-h] [-d LEVEL] [-f FILE] [SOURCE]

  SOURCE       program text, given directly as an argument
  -f FILE      read program text from FILE instead of SOURCE
  -d LEVEL     dump internal state: 1 = AST, 2 = bytecode, 3 = final VM
               stack and globals (written to stderr, after the run)
  -h           print this message

Exactly one of SOURCE or -f FILE is required. Input records are read
from standard input; output is written to standard output.
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run implements the full CLI contract (spec.md §6) against explicit
// streams so main and the testscript command map in
// cmd/awkvm/main_test.go share one code path.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var (
		sourceFile string
		sourceText string
		haveText   bool
		dumpLevel  int
	)

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-h", "--help":
			fmt.Fprint(stdout, usage)
			return 0

		case "-d":
			i++
			if i >= len(args) {
				return fatalUsage(stderr, "-d requires a LEVEL argument")
			}
			n, err := parseDumpLevel(args[i])
			if err != nil {
				return fatalUsage(stderr, err.Error())
			}
			dumpLevel = n

		case "-f":
			i++
			if i >= len(args) {
				return fatalUsage(stderr, "-f requires a FILE argument")
			}
			sourceFile = args[i]

		default:
			if haveText || sourceFile != "" {
				return fatalUsage(stderr, "only one SOURCE is allowed")
			}
			sourceText = args[i]
			haveText = true
		}
	}

	if sourceFile == "" && !haveText {
		return fatalUsage(stderr, "exactly one of SOURCE or -f FILE is required")
	}
	if sourceFile != "" && haveText {
		return fatalUsage(stderr, "exactly one of SOURCE or -f FILE is required")
	}

	source := sourceText
	if sourceFile != "" {
		data, err := os.ReadFile(sourceFile)
		if err != nil {
			fmt.Fprintln(stderr, fmt.Sprintf("could not read %s: %v", sourceFile, err))
			return 1
		}
		source = string(data)
	}

	runID := uuid.New()
	start := time.Now()

	toks, err := lexer.NewScanner(source).ScanTokens()
	if err != nil {
		return reportAndExit(stderr, err)
	}

	prog, err := parser.Parse(toks)
	if err != nil {
		return reportAndExit(stderr, err)
	}
	if dumpLevel == 1 {
		dump.AST(stderr, prog)
	}

	res, err := compiler.Compile(prog)
	if err != nil {
		return reportAndExit(stderr, err)
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(stderr, "%s: %s\n", awkerr.CompileW, w)
	}
	if dumpLevel == 2 {
		dump.Bytecode(stderr, res.Program)
	}

	m := vm.New(res.Program, stdin, stdout)
	runErr := m.Run()

	if dumpLevel == 3 {
		dump.VM(stderr, m)
	}

	if runErr != nil {
		return reportAndExit(stderr, runErr)
	}

	fmt.Fprintf(stderr, "run %s finished in %s\n", runID, humanize.RelTime(start, time.Now(), "", ""))
	return 0
}

func parseDumpLevel(s string) (int, error) {
	switch s {
	case "1", "2", "3":
		return int(s[0] - '0'), nil
	default:
		return 0, fmt.Errorf("-d LEVEL must be 1, 2, or 3, got %q", s)
	}
}

func reportAndExit(stderr io.Writer, err error) int {
	fmt.Fprintf(stderr, "%v\n", err)
	return 1
}

func fatalUsage(stderr io.Writer, msg string) int {
	fmt.Fprintln(stderr, msg)
	fmt.Fprint(stderr, usage)
	return 2
}
