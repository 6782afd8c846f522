package sat

import (
	"github.com/rhartert/yagh"
)

// VarOrder maintains the VSIDS branching order: a max-activity heap over
// currently unassigned variables, with periodic decay and (optionally)
// phase saving.
type VarOrder struct {
	// Binary heap giving constant-time access to the unassigned variable
	// with the highest score. Ties are broken by the heap's own insertion
	// order, which AddVar preserves as ascending variable ID (spec:
	// "ties broken by smallest variable index").
	order *yagh.IntMap[float64]

	scores     []float64 // variable activity, in [0, 1e100)
	scoreInc   float64   // bump increment, in (0, 1e100)
	scoreDecay float64   // in (0, 1]; score increment grows by 1/scoreDecay on decay

	phases      []LBool
	phaseSaving bool
}

// NewVarOrder returns an initialized, empty VarOrder.
func NewVarOrder(decay float64, phaseSaving bool) *VarOrder {
	return &VarOrder{
		order:       yagh.New[float64](0),
		scoreInc:    1,
		scoreDecay:  decay,
		phaseSaving: phaseSaving,
	}
}

// AddVar registers a new variable with score 0 and the given default
// polarity, making it a candidate for selection.
func (vo *VarOrder) AddVar(initPhase bool) {
	varID := len(vo.phases)

	vo.scores = append(vo.scores, 0)
	vo.phases = append(vo.phases, Lift(initPhase))

	vo.order.GrowBy(1)
	vo.order.Put(varID, 0)
}

// Reinsert adds variable v back to the pool of selection candidates. Called
// by the solver whenever v becomes unassigned (backtracking). val is the
// value v held just before being unassigned; it is only recorded when phase
// saving is enabled.
func (vo *VarOrder) Reinsert(v int, val LBool) {
	if vo.phaseSaving {
		vo.phases[v] = val
	}
	vo.order.Put(v, -vo.scores[v])
}

// DecayScores grows the bump increment so that future bumps count for more
// relative to past ones — equivalent to multiplying every existing score by
// a decay factor (spec: "Equivalent score rescaling implementations are
// permitted").
func (vo *VarOrder) DecayScores() {
	vo.scoreInc /= vo.scoreDecay
	if vo.scoreInc > 1e100 {
		vo.rescaleScoresAndIncrement()
	}
}

// BumpScore increases v's score by the current bump increment. Used both to
// seed a variable's initial score (number of occurrences in the original
// formula) and to reward variables appearing in a freshly learnt clause.
func (vo *VarOrder) BumpScore(v int) {
	newScore := vo.scores[v] + vo.scoreInc
	vo.scores[v] = newScore
	if vo.order.Contains(v) {
		vo.order.Put(v, -newScore)
	}
	if newScore > 1e100 {
		vo.rescaleScoresAndIncrement()
	}
}

// NextVar pops and returns the highest-activity unassigned variable. The
// caller must ensure at least one unassigned variable exists.
func (vo *VarOrder) NextVar(s *Solver) int {
	for {
		next, ok := vo.order.Pop()
		if !ok {
			s.log.DPanic("VSIDS heap exhausted with unassigned variables remaining")
			return 0
		}
		if s.VarValue(next.Elem) != Unknown {
			continue // stale entry: already assigned since it was pushed
		}
		return next.Elem
	}
}

// Phase returns v's saved (or default) polarity.
func (vo *VarOrder) Phase(v int) LBool {
	return vo.phases[v]
}

func (vo *VarOrder) rescaleScoresAndIncrement() {
	vo.scoreInc *= 1e-100
	for v, sc := range vo.scores {
		newScore := sc * 1e-100
		vo.scores[v] = newScore
		if vo.order.Contains(v) {
			vo.order.Put(v, -newScore)
		}
	}
}
