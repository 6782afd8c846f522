package sat

import (
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// Options configures a Solver. The zero value is not valid; use
// DefaultOptions as a base.
type Options struct {
	// VariableDecay is the VSIDS decay factor applied every DecayEvery
	// conflicts (spec default: 0.95).
	VariableDecay float64

	// DecayEvery is the number of conflicts between VSIDS decay steps (spec
	// default: 100). Zero falls back to the default.
	DecayEvery int64

	// MaxConflicts stops the search (returning Unknown) once this many
	// conflicts have been seen. Negative means unbounded.
	MaxConflicts int64

	// Timeout stops the search (returning Unknown) once exceeded. Negative
	// means unbounded.
	Timeout time.Duration

	// PhaseSaving enables remembering each variable's last assigned value
	// and reusing it as the default polarity on the next decision. Disabled
	// by default, per the spec's deterministic-false default.
	PhaseSaving bool

	// RandomPolarity, when true, picks each decision's polarity using Rand
	// (or a freshly seeded source if Rand is nil) instead of the
	// deterministic default. Disabled by default: the spec forbids
	// randomness on the default path and only allows it opt-in.
	RandomPolarity bool

	// Rand is consulted for branching polarity only when RandomPolarity is
	// set. A nil Rand with RandomPolarity set seeds a new source from Seed.
	Rand *rand.Rand

	// Seed seeds Rand when RandomPolarity is set and Rand is nil.
	Seed uint64

	// Logger receives search-progress and invariant-violation messages. A
	// nil Logger behaves like zap.NewNop().Sugar(): the solver runs silent.
	Logger *zap.SugaredLogger

	// StatsEvery is the number of solver iterations between periodic
	// progress log lines. Zero falls back to the default; negative
	// disables periodic logging entirely.
	StatsEvery int64
}

// DefaultOptions mirrors the spec's stated defaults.
var DefaultOptions = Options{
	VariableDecay: 0.95,
	DecayEvery:    100,
	MaxConflicts:  -1,
	Timeout:       -1,
	PhaseSaving:   false,
	StatsEvery:    10000,
}

// NewDefaultSolver returns a solver configured with DefaultOptions.
func NewDefaultSolver() *Solver {
	return NewSolver(DefaultOptions)
}

// NewSolver returns a new, empty Solver configured with ops.
func NewSolver(ops Options) *Solver {
	decayEvery := ops.DecayEvery
	if decayEvery <= 0 {
		decayEvery = DefaultOptions.DecayEvery
	}
	statsEvery := ops.StatsEvery
	if statsEvery == 0 {
		statsEvery = DefaultOptions.StatsEvery
	}

	logger := ops.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	var rng *rand.Rand
	if ops.RandomPolarity {
		rng = ops.Rand
		if rng == nil {
			rng = rand.New(rand.NewPCG(ops.Seed, ops.Seed^0x9e3779b97f4a7c15))
		}
	}

	s := &Solver{
		order:       NewVarOrder(ops.VariableDecay, ops.PhaseSaving),
		propQueue:   NewQueue[Literal](128),
		seenVar:     &ResetSet{},
		decayEvery:  decayEvery,
		statsEvery:  statsEvery,
		rng:         rng,
		randomPol:   ops.RandomPolarity,
		log:         logger,
		avgLBD:      NewEMA(0.95),
		maxConflict: -1,
		timeout:     -1,
	}

	if ops.MaxConflicts >= 0 {
		s.hasStopCond = true
		s.maxConflict = ops.MaxConflicts
	}
	if ops.Timeout >= 0 {
		s.hasStopCond = true
		s.timeout = ops.Timeout
	}

	return s
}
