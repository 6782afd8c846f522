// Command cdclsat reads a DIMACS CNF instance and reports satisfiability.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	if ec, ok := err.(exitCoder); ok {
		return ec.ExitCode()
	}
	fmt.Fprintln(os.Stderr, err)
	return 1
}

// exitCoder lets a command's returned error carry the process exit code
// the CLI contract promises (10 SAT, 20 UNSAT, 1 error/UNKNOWN) instead of
// cobra's default of always exiting 1 on a non-nil error.
type exitCoder interface {
	error
	ExitCode() int
}
