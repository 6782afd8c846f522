package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInstance(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "instance.cnf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunSatisfiable(t *testing.T) {
	dir := t.TempDir()
	path := writeInstance(t, dir, "p cnf 2 1\n1 2 0\n")

	cmd := newRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"--quiet", path})

	err := cmd.Execute()
	require.Error(t, err)

	ec, ok := err.(exitCoder)
	require.True(t, ok, "error should carry an exit code")
	assert.Equal(t, 10, ec.ExitCode())
	assert.Contains(t, out.String(), "SATISFIABLE")
}

func TestRunUnsatisfiable(t *testing.T) {
	dir := t.TempDir()
	path := writeInstance(t, dir, "p cnf 1 2\n1 0\n-1 0\n")

	cmd := newRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"--quiet", path})

	err := cmd.Execute()
	require.Error(t, err)

	ec, ok := err.(exitCoder)
	require.True(t, ok)
	assert.Equal(t, 20, ec.ExitCode())
	assert.Contains(t, out.String(), "UNSATISFIABLE")
}

func TestRunMissingInstanceFile(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--quiet", filepath.Join(t.TempDir(), "missing.cnf")})

	err := cmd.Execute()
	require.Error(t, err)

	ec, ok := err.(exitCoder)
	require.True(t, ok)
	assert.Equal(t, 1, ec.ExitCode())
}

func TestRunMaxConflictsStopsEarly(t *testing.T) {
	dir := t.TempDir()
	// 3-pigeons-into-2-holes: unsatisfiable, needs conflict-driven
	// learning, so max-conflicts=0 should report UNKNOWN rather than
	// UNSATISFIABLE.
	instance := `p cnf 6 9
1 2 0
3 4 0
5 6 0
-1 -3 0
-1 -5 0
-3 -5 0
-2 -4 0
-2 -6 0
-4 -6 0
`
	path := writeInstance(t, dir, instance)

	cmd := newRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"--quiet", "--max-conflicts=0", path})

	err := cmd.Execute()
	require.Error(t, err)

	ec, ok := err.(exitCoder)
	require.True(t, ok)
	assert.Equal(t, 1, ec.ExitCode())
}
