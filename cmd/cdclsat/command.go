package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"runtime/pprof"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/arkbriar/cdcl-sat/internal/parsers"
	"github.com/arkbriar/cdcl-sat/internal/sat"
)

// silentExit carries a process exit code through cobra's error-returning
// RunE without triggering cobra's usual "print usage on error" behavior;
// SilenceUsage/SilenceErrors are set on the root command for this reason.
type silentExit struct{ code int }

func (e silentExit) Error() string { return fmt.Sprintf("exit code %d", e.code) }
func (e silentExit) ExitCode() int { return e.code }

func newRootCommand() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:           "cdclsat [flags] instance.cnf",
		Short:         "Solve a DIMACS CNF instance with a CDCL SAT solver",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, v, args[0])
		},
	}

	flags := cmd.Flags()
	flags.Int64("max-conflicts", -1, "stop after this many conflicts (-1: unbounded)")
	flags.Duration("timeout", -1, "stop after this duration (-1: unbounded)")
	flags.Float64("var-decay", sat.DefaultOptions.VariableDecay, "VSIDS score decay factor")
	flags.Int64("decay-every", sat.DefaultOptions.DecayEvery, "conflicts between VSIDS decay steps")
	flags.Bool("phase-saving", sat.DefaultOptions.PhaseSaving, "remember and reuse each variable's last assigned value")
	flags.Bool("random-polarity", false, "pick branching polarity from --seed instead of the deterministic default")
	flags.Uint64("seed", 0, "seed for --random-polarity")
	flags.Bool("all", false, "enumerate every model instead of stopping at the first")
	flags.Bool("quiet", false, "suppress periodic search-progress logging")
	flags.String("cpu-profile", "", "write a pprof CPU profile to this path")
	flags.String("mem-profile", "", "write a pprof heap profile to this path")

	v.SetEnvPrefix("CDCLSAT")
	v.AutomaticEnv()
	v.SetConfigName("cdclsat")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.BindPFlags(flags)
	_ = v.ReadInConfig() // optional: absence of cdclsat.yaml is not an error

	return cmd
}

func run(cmd *cobra.Command, v *viper.Viper, instancePath string) error {
	if cpuProf := v.GetString("cpu-profile"); cpuProf != "" {
		f, err := os.Create(cpuProf)
		if err != nil {
			return fmt.Errorf("cpu profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("cpu profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	logger := zap.NewNop().Sugar()
	if !v.GetBool("quiet") {
		zl, err := zap.NewProduction()
		if err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		defer zl.Sync()
		logger = zl.Sugar()
	}

	opts := sat.DefaultOptions
	opts.VariableDecay = v.GetFloat64("var-decay")
	opts.DecayEvery = v.GetInt64("decay-every")
	opts.MaxConflicts = v.GetInt64("max-conflicts")
	opts.Timeout = v.GetDuration("timeout")
	opts.PhaseSaving = v.GetBool("phase-saving")
	opts.Logger = logger

	if v.GetBool("random-polarity") {
		opts.RandomPolarity = true
		seed := v.GetUint64("seed")
		opts.Rand = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
	if v.GetBool("quiet") {
		opts.StatsEvery = -1
	}

	s := sat.NewSolver(opts)

	gzipped := strings.HasSuffix(instancePath, ".gz")
	if err := parsers.LoadDIMACS(instancePath, gzipped, s); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return silentExit{1}
	}

	var status sat.LBool
	var models [][]bool
	if v.GetBool("all") {
		var err error
		models, err = sat.EnumerateModels(s)
		switch {
		case err != nil:
			status = sat.Unknown
		case len(models) > 0:
			status = sat.True
		default:
			status = sat.False
		}
	} else {
		status = s.Solve()
	}

	if memProf := v.GetString("mem-profile"); memProf != "" {
		f, err := os.Create(memProf)
		if err != nil {
			return fmt.Errorf("mem profile: %w", err)
		}
		defer f.Close()
		pprof.WriteHeapProfile(f)
	}

	switch status {
	case sat.True:
		fmt.Fprintln(cmd.OutOrStdout(), "SATISFIABLE")
		if v.GetBool("all") {
			for _, m := range models {
				printModel(cmd, m)
			}
		} else {
			printModel(cmd, s.Models[len(s.Models)-1])
		}
		return silentExit{10}
	case sat.False:
		fmt.Fprintln(cmd.OutOrStdout(), "UNSATISFIABLE")
		return silentExit{20}
	default:
		for _, m := range models {
			printModel(cmd, m)
		}
		fmt.Fprintln(os.Stderr, "UNKNOWN")
		return silentExit{1}
	}
}

func printModel(cmd *cobra.Command, model []bool) {
	out := cmd.OutOrStdout()
	for i, b := range model {
		if b {
			fmt.Fprintf(out, "%d ", i+1)
		} else {
			fmt.Fprintf(out, "-%d ", i+1)
		}
	}
	fmt.Fprintln(out, "0")
}
