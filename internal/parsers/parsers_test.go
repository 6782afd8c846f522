package parsers_test

import (
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/arkbriar/cdcl-sat/internal/parsers"
	"github.com/arkbriar/cdcl-sat/internal/sat"
)

// This suite verifies that LoadDIMACS plus the core solver together find
// the exact set of models for every instance under testdata: each
// "name.cnf" is paired with a "name.cnf.models" file listing its models
// (possibly empty, for an unsatisfiable instance) in the same literal
// encoding as a DIMACS clause line.
const testdataDir = "testdata"

type testCase struct {
	name         string
	instanceFile string
	modelsFile   string
}

func listTestCases(dir string) ([]testCase, error) {
	var cases []testCase
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".cnf") {
			return nil
		}
		cases = append(cases, testCase{
			name:         d.Name(),
			instanceFile: path,
			modelsFile:   path + ".models",
		})
		return nil
	})
	return cases, err
}

func toString(model []bool) string {
	b := make([]byte, len(model))
	for i, v := range model {
		if v {
			b[i] = '1'
		} else {
			b[i] = '0'
		}
	}
	return string(b)
}

func toSet(models [][]bool) map[string]struct{} {
	set := map[string]struct{}{}
	for _, m := range models {
		set[toString(m)] = struct{}{}
	}
	return set
}

func TestLoadDIMACSSolveAll(t *testing.T) {
	cases, err := listTestCases(testdataDir)
	if err != nil {
		t.Fatalf("listTestCases: %s", err)
	}
	if len(cases) == 0 {
		t.Fatal("no test cases found under testdata")
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			want, err := parsers.ReadModels(tc.modelsFile)
			if err != nil {
				t.Fatalf("ReadModels: %s", err)
			}

			s := sat.NewDefaultSolver()
			if err := parsers.LoadDIMACS(tc.instanceFile, false, s); err != nil {
				t.Fatalf("LoadDIMACS: %s", err)
			}

			got, err := sat.EnumerateModels(s)
			if err != nil {
				t.Fatalf("EnumerateModels: %s", err)
			}

			if len(got) != len(want) {
				t.Errorf("model count: got %d, want %d", len(got), len(want))
			}
			if !cmp.Equal(toSet(got), toSet(want)) {
				t.Errorf("model mismatch: got %v, want %v", got, want)
			}
		})
	}
}
