package main

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

// TestMain lets the test binary itself double as the awkvm executable
// (spec.md §6's CLI contract), the way testscript fixtures invoke a
// program under test without a separate `go build` step.
func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"awkvm": func() int {
			return run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
		},
	}))
}

// TestScripts drives the end-to-end CLI scenarios spec.md §8 names,
// through the real argument-parsing/IO-wiring path in run(), using
// txtar fixtures under testdata/script.
func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
	})
}
