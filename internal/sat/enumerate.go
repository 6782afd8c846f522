package sat

import "errors"

// errStoppedEarly is returned by EnumerateModels when a configured stop
// condition (MaxConflicts or Timeout) fires before exhaustion is proven,
// so the caller can distinguish a partial enumeration from a complete one.
var errStoppedEarly = errors.New("sat: enumeration stopped before exhausting all models")

// EnumerateModels repeatedly solves s, blocking each discovered model by
// adding the negation of its assignment as a new clause, until the formula
// (as progressively strengthened) becomes unsatisfiable. It returns every
// model found, equivalently to s.Models once enumeration completes.
//
// This promotes a pattern otherwise only used to validate solver
// correctness against known model counts into a supported mode: callers
// wanting a single model should call s.Solve directly instead.
func EnumerateModels(s *Solver) ([][]bool, error) {
	for {
		status := s.Solve()
		if status == Unknown {
			return s.Models, errStoppedEarly
		}
		if status == False {
			return s.Models, nil
		}

		model := s.Models[len(s.Models)-1]
		blocking := make([]Literal, len(model))
		for i, b := range model {
			// Forbid this exact assignment: the blocking clause is the
			// disjunction of the negation of every literal in the model.
			if b {
				blocking[i] = NegativeLiteral(i)
			} else {
				blocking[i] = PositiveLiteral(i)
			}
		}
		if err := s.AddClause(blocking); err != nil {
			return s.Models, err
		}
	}
}
