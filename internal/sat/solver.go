// Package sat implements a CDCL (Conflict-Driven Clause Learning) decision
// procedure for propositional satisfiability over CNF formulas. It is a
// single consolidated engine: Boolean constraint propagation via two
// watched literals, 1-UIP conflict analysis with non-chronological
// backjumping, a VSIDS branching heuristic, and an explicit assignment
// trail. The package does not parse DIMACS, does not drive a CLI, and does
// not print results — those are the caller's concern (see
// internal/parsers and cmd/cdclsat).
package sat

import (
	"errors"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// errAddClauseNotRoot is returned by AddClause when called outside decision
// level 0: clauses may only be added at the root of the search.
var errAddClauseNotRoot = errors.New("sat: AddClause called away from decision level 0")

// Solver holds the entire state of one CDCL search. It is not safe for
// concurrent use and is not reentrant; a fresh Solver is expected per
// instance.
type Solver struct {
	// Clause database. Neither slice is ever shrunk: original and learnt
	// clauses both live for the entire solve (no clause deletion in this
	// design — see DESIGN.md).
	constraints []*Clause
	learnts     []*Clause

	// Variable ordering (VSIDS).
	order *VarOrder

	// Watch index: watchers[l] lists the clauses currently watching literal
	// l, alongside each clause's other watched literal (the "blocker").
	watchers  [][]watcher
	propQueue *Queue[Literal]

	// assigns[l] is the current truth value of literal l; assigns[l] and
	// assigns[l.Opposite()] are always kept as opposites.
	assigns []LBool

	// Trail: assigned literals in assignment order, partitioned into
	// decision levels by the boundaries recorded in trailLim. reason[v] and
	// level[v] are defined only while v is assigned.
	trail    []Literal
	trailLim []int
	reason   []*Clause
	level    []int

	// unsat is latched once a level-0 conflict or an empty learnt clause is
	// produced. Once set, Solve always returns False.
	unsat bool

	// Search statistics.
	TotalConflicts    int64
	TotalDecisions    int64
	TotalPropagations int64
	TotalIterations   int64
	startTime         time.Time
	avgLBD            EMA

	// VSIDS decay cadence.
	decayEvery         int64
	conflictsThisDecay int64

	// Periodic progress logging cadence; <=0 disables it.
	statsEvery int64

	// Branching polarity randomization (opt-in only, disabled by default).
	randomPol bool
	rng       *rand.Rand

	// Stop conditions.
	hasStopCond bool
	maxConflict int64
	timeout     time.Duration

	// Models accumulates every satisfying assignment found across
	// successive Solve calls (see EnumerateModels).
	Models [][]bool

	// seenVar is reused by analyze to mark visited variables in O(1) per
	// check/clear via a generation stamp, avoiding per-conflict map
	// allocation.
	seenVar *ResetSet

	// Scratch buffers reused across calls to avoid per-call allocation.
	tmpWatchers []watcher
	tmpLearnts  []Literal
	tmpReason   []Literal

	log *zap.SugaredLogger
}

// watcher is a clause attached to the watch list of a literal.
type watcher struct {
	clause *Clause

	// guard is one of the clause's other literals. If it is true, the
	// clause need not be inspected at all: this lets Propagate skip
	// loading most clause bodies.
	guard Literal
}

func (s *Solver) shouldStop() bool {
	if !s.hasStopCond {
		return false
	}
	if s.maxConflict >= 0 && s.maxConflict <= s.TotalConflicts {
		return true
	}
	if s.timeout >= 0 && s.timeout <= time.Since(s.startTime) {
		return true
	}
	return false
}

// NumVariables returns the number of variables known to the solver.
func (s *Solver) NumVariables() int {
	return len(s.assigns) / 2
}

// NumAssigns returns the number of currently assigned variables.
func (s *Solver) NumAssigns() int {
	return len(s.trail)
}

// NumConstraints returns the number of original (non-learnt) clauses.
func (s *Solver) NumConstraints() int {
	return len(s.constraints)
}

// NumLearnts returns the number of learnt clauses produced so far.
func (s *Solver) NumLearnts() int {
	return len(s.learnts)
}

// VarValue returns the current value of variable x (0-indexed).
func (s *Solver) VarValue(x int) LBool {
	return s.assigns[PositiveLiteral(x)]
}

// LitValue returns the current value of literal l.
func (s *Solver) LitValue(l Literal) LBool {
	return s.assigns[l]
}

// Level returns the decision level at which variable v was assigned. Only
// meaningful while v is assigned.
func (s *Solver) Level(v int) int {
	return s.level[v]
}

// Reason returns the antecedent clause that forced variable v's
// assignment, or nil if v was a decision (or is unassigned). Only
// meaningful while v is assigned.
func (s *Solver) Reason(v int) *Clause {
	return s.reason[v]
}

func (s *Solver) decisionLevel() int {
	return len(s.trailLim)
}

// AddVariable registers one new variable and returns its 0-indexed ID.
func (s *Solver) AddVariable() int {
	index := s.NumVariables()
	s.watchers = append(s.watchers, nil, nil) // one watch list per literal
	s.reason = append(s.reason, nil)
	s.level = append(s.level, -1)
	s.seenVar.Expand()

	s.assigns = append(s.assigns, Unknown, Unknown)
	s.order.AddVar(false) // deterministic default polarity

	return index
}

// Watch registers c to be woken when watch is assigned true, recording
// guard (c's other watched literal) as the fast-path blocker.
func (s *Solver) Watch(c *Clause, watch Literal, guard Literal) {
	s.watchers[watch] = append(s.watchers[watch], watcher{clause: c, guard: guard})
}

// AddClause adds an original clause to the formula. Must only be called at
// decision level 0. A formula found unsatisfiable while folding in the
// clause is recorded internally and surfaced by the next Solve call rather
// than returned as an error here, since the solver's only two normal
// outcomes are True/False.
func (s *Solver) AddClause(literals []Literal) error {
	if s.decisionLevel() != 0 {
		return errAddClauseNotRoot
	}
	c, ok := NewClause(s, literals, false)
	if !ok {
		s.unsat = true
		return nil
	}
	if c == nil {
		return nil // simplified away: tautology, satisfied, or a unit fact
	}

	s.constraints = append(s.constraints, c)
	for _, l := range c.literals {
		s.order.BumpScore(l.VarID())
	}
	return nil
}

// Propagate runs BCP to a fixed point, returning the conflicting clause if
// one is found, or nil once the propagation queue drains cleanly.
func (s *Solver) Propagate() *Clause {
	for s.propQueue.Size() > 0 {
		l := s.propQueue.Pop()
		s.TotalPropagations++

		// Snapshot the watch list before mutating it: clauses rewatch
		// themselves onto other literals' lists as they're processed, and
		// the clause currently being inspected may itself drop off this
		// list.
		s.tmpWatchers = append(s.tmpWatchers[:0], s.watchers[l]...)
		s.watchers[l] = s.watchers[l][:0]

		for i, w := range s.tmpWatchers {
			if s.LitValue(w.guard) == True {
				s.watchers[l] = append(s.watchers[l], w)
				continue
			}

			if w.clause.Propagate(s, l) {
				continue
			}

			// Conflict: re-attach the watchers not yet processed and
			// abandon the rest of the queue.
			s.watchers[l] = append(s.watchers[l], s.tmpWatchers[i+1:]...)
			s.propQueue.Clear()
			return s.tmpWatchers[i].clause
		}
	}
	return nil
}

// enqueue records l as true with the given antecedent (nil for a decision
// or a root-level unit fact). Returns false if l's variable is already
// assigned the opposite value (a conflict), true otherwise.
func (s *Solver) enqueue(l Literal, from *Clause) bool {
	switch s.LitValue(l) {
	case False:
		return false
	case True:
		return true
	default:
		v := l.VarID()
		s.assigns[l] = True
		s.assigns[l.Opposite()] = False
		s.level[v] = s.decisionLevel()
		s.reason[v] = from
		s.trail = append(s.trail, l)
		s.propQueue.Push(l)
		return true
	}
}

// explain returns the literals implicated in forcing l true: either the
// full negated clause (l == -1, meaning c is the conflicting clause
// itself) or the negation of every literal of c but the one it implied.
func (s *Solver) explain(c *Clause, l Literal) []Literal {
	if l == -1 {
		c.explainConflict(&s.tmpReason)
	} else {
		c.explainAssign(&s.tmpReason)
	}
	return s.tmpReason
}

// analyze computes the 1-UIP learnt clause for confl (the clause found in
// conflict at the current decision level) and the backjump level. It must
// only be called with decisionLevel() >= 1: a conflict at level 0 is UNSAT
// and is handled by the caller before analyze runs.
func (s *Solver) analyze(confl *Clause) ([]Literal, int) {
	// Number of literals of the clause under construction that sit at the
	// current decision level and have not yet been resolved away. Reaching
	// zero (after the pivot about to be chosen) means the single remaining
	// current-level literal is the 1-UIP.
	pending := 0

	s.tmpLearnts = append(s.tmpLearnts[:0], -1) // index 0 reserved for the 1-UIP
	nextTrailIdx := len(s.trail) - 1

	l := Literal(-1) // sentinel: confl is the conflicting clause itself
	s.seenVar.Clear()
	backtrackLevel := 0

	for {
		for _, q := range s.explain(confl, l) {
			v := q.VarID()
			if s.seenVar.Contains(v) {
				continue
			}
			s.seenVar.Add(v)

			if s.level[v] == s.decisionLevel() {
				pending++
				continue
			}

			s.tmpLearnts = append(s.tmpLearnts, q.Opposite())
			if lv := s.level[v]; lv > backtrackLevel {
				backtrackLevel = lv
			}
		}

		// Walk the trail backwards to the next marked, propagated literal:
		// that's the next pivot to resolve on.
		for {
			l = s.trail[nextTrailIdx]
			nextTrailIdx--
			if s.seenVar.Contains(l.VarID()) {
				break
			}
		}
		confl = s.reason[l.VarID()]

		pending--
		if pending <= 0 {
			break
		}
	}

	s.tmpLearnts[0] = l.Opposite()
	return s.tmpLearnts, backtrackLevel
}

// record installs a freshly learnt clause: allocates it (with two
// watches), and immediately enqueues its asserting literal with the clause
// as antecedent. literals[0] is always the asserting literal. A unit learnt
// clause is not allocated: NewClause enqueues its literal directly, with no
// antecedent clause.
func (s *Solver) record(literals []Literal) {
	c, ok := NewClause(s, literals, true)
	if !ok {
		s.unsat = true // empty learnt clause: formula is unsatisfiable
		return
	}
	s.enqueue(literals[0], c)
	if c != nil {
		s.learnts = append(s.learnts, c)
		s.avgLBD.Add(float64(c.lbd))
	}
}

// bumpAndDecay rewards every variable appearing in a freshly learnt clause
// and, every decayEvery conflicts, decays all VSIDS scores.
func (s *Solver) bumpAndDecay(literals []Literal) {
	for _, l := range literals {
		s.order.BumpScore(l.VarID())
	}

	s.conflictsThisDecay++
	if s.conflictsThisDecay >= s.decayEvery {
		s.conflictsThisDecay = 0
		s.order.DecayScores()
	}
}

// pickBranchLiteral selects the next variable to branch on via VSIDS and
// applies its polarity: the saved/default phase, or (opt-in only) a random
// coin flip.
func (s *Solver) pickBranchLiteral() Literal {
	v := s.order.NextVar(s)

	if s.randomPol && s.rng != nil {
		if s.rng.IntN(2) == 0 {
			return PositiveLiteral(v)
		}
		return NegativeLiteral(v)
	}

	if s.order.Phase(v) == True {
		return PositiveLiteral(v)
	}
	return NegativeLiteral(v)
}

func (s *Solver) newDecisionLevel() {
	s.trailLim = append(s.trailLim, len(s.trail))
}

func (s *Solver) undoOne() {
	l := s.trail[len(s.trail)-1]
	v := l.VarID()

	s.order.Reinsert(v, s.assigns[l])
	s.assigns[l] = Unknown
	s.assigns[l.Opposite()] = Unknown
	s.reason[v] = nil
	s.level[v] = -1

	s.trail = s.trail[:len(s.trail)-1]
}

// cancelUntil pops trail entries down to the given decision level,
// unassigning each popped variable.
func (s *Solver) cancelUntil(level int) {
	for s.decisionLevel() > level {
		boundary := s.trailLim[len(s.trailLim)-1]
		for len(s.trail) > boundary {
			s.undoOne()
		}
		s.trailLim = s.trailLim[:len(s.trailLim)-1]
	}
}

func (s *Solver) saveModel() {
	model := make([]bool, s.NumVariables())
	for i := range model {
		lb := s.VarValue(i)
		if lb == Unknown {
			s.log.DPanicf("variable %d unassigned at a claimed total assignment", i)
		}
		model[i] = lb == True
	}
	s.Models = append(s.Models, model)
}

// Solve runs the CDCL search loop to completion: alternating decide /
// propagate / analyze / backjump until every variable is assigned (True,
// with the satisfying model appended to Models) or a level-0 conflict is
// derived (False). It returns Unknown only if a configured stop condition
// (MaxConflicts or Timeout) fires first; the search can be resumed with
// another Solve call, since Solve never discards learnt clauses or the
// formula. A stop that fires right after a backjump above the root returns
// the trail to level 0; any other stop leaves the trail as it is.
func (s *Solver) Solve() LBool {
	s.startTime = time.Now()

	if s.unsat {
		return False
	}
	if conflict := s.Propagate(); conflict != nil {
		s.unsat = true
		return False
	}

	for {
		if s.shouldStop() {
			return Unknown
		}

		s.TotalIterations++
		if s.statsEvery > 0 && s.TotalIterations%s.statsEvery == 0 {
			s.logStats()
		}

		if s.NumAssigns() == s.NumVariables() {
			s.saveModel()
			s.cancelUntil(0)
			return True
		}

		s.newDecisionLevel()
		s.TotalDecisions++
		s.enqueue(s.pickBranchLiteral(), nil)

		for {
			conflict := s.Propagate()
			if conflict == nil {
				break
			}

			s.TotalConflicts++

			if s.decisionLevel() == 0 {
				s.unsat = true
				return False
			}

			learnt, backtrackLevel := s.analyze(conflict)
			if len(learnt) == 0 {
				s.unsat = true
				return False
			}

			s.cancelUntil(backtrackLevel)
			s.record(learnt)
			if s.unsat {
				return False
			}
			s.bumpAndDecay(learnt)

			if s.shouldStop() {
				// The asserting literal is still waiting in the propagation
				// queue. Above the root, drop it and return to level 0 so a
				// later Solve call starts from a fully propagated trail; at
				// the root it is left for that call's initial Propagate.
				if backtrackLevel > 0 {
					s.cancelUntil(0)
					s.propQueue.Clear()
				}
				return Unknown
			}
		}
	}
}

func (s *Solver) logStats() {
	s.log.Infow("search progress",
		"elapsed", time.Since(s.startTime),
		"iterations", s.TotalIterations,
		"decisions", s.TotalDecisions,
		"conflicts", s.TotalConflicts,
		"learnts", len(s.learnts),
		"avgLBD", s.avgLBD.Val(),
	)
}
