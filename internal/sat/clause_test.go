package sat

import (
	"testing"
)

func newTestSolver(nVars int) *Solver {
	s := NewDefaultSolver()
	for i := 0; i < nVars; i++ {
		s.AddVariable()
	}
	return s
}

func TestNewClauseTautology(t *testing.T) {
	s := newTestSolver(2)
	c, ok := NewClause(s, []Literal{PositiveLiteral(0), NegativeLiteral(0)}, false)
	if !ok || c != nil {
		t.Fatalf("tautological clause should be dropped silently, got (%v, %v)", c, ok)
	}
}

func TestNewClauseDuplicateLiterals(t *testing.T) {
	s := newTestSolver(2)
	c, ok := NewClause(s, []Literal{PositiveLiteral(0), PositiveLiteral(1), PositiveLiteral(0)}, false)
	if !ok || c == nil {
		t.Fatalf("expected a clause, got (%v, %v)", c, ok)
	}
	if len(c.literals) != 2 {
		t.Errorf("duplicate literal not collapsed: %v", c.literals)
	}
}

func TestNewClauseEmptyIsUnsat(t *testing.T) {
	s := newTestSolver(1)
	// Falsify PositiveLiteral(0) at the root so the clause below reduces to
	// empty.
	s.enqueue(NegativeLiteral(0), nil)

	c, ok := NewClause(s, []Literal{PositiveLiteral(0)}, false)
	if ok {
		t.Fatalf("expected contradiction, got (%v, %v)", c, ok)
	}
}

func TestNewClauseUnitIsEnqueuedNotAllocated(t *testing.T) {
	s := newTestSolver(1)
	c, ok := NewClause(s, []Literal{PositiveLiteral(0)}, false)
	if c != nil {
		t.Fatalf("unit clause must never be materialized, got %v", c)
	}
	if !ok {
		t.Fatalf("unit clause enqueue should have succeeded")
	}
	if s.LitValue(PositiveLiteral(0)) != True {
		t.Errorf("unit fact was not enqueued")
	}
}

func TestClausePropagateUnitAndConflict(t *testing.T) {
	s := newTestSolver(3)
	c, ok := NewClause(s, []Literal{PositiveLiteral(0), PositiveLiteral(1), PositiveLiteral(2)}, false)
	if !ok || c == nil {
		t.Fatalf("expected a 3-literal clause")
	}

	s.enqueue(NegativeLiteral(0), nil)
	if conflict := s.Propagate(); conflict != nil {
		t.Fatalf("unexpected conflict: %v", conflict)
	}

	s.enqueue(NegativeLiteral(1), nil)
	if conflict := s.Propagate(); conflict != nil {
		t.Fatalf("unexpected conflict: %v", conflict)
	}
	if s.LitValue(PositiveLiteral(2)) != True {
		t.Errorf("clause should have propagated literal 2 true")
	}

	s2 := newTestSolver(2)
	NewClause(s2, []Literal{PositiveLiteral(0), PositiveLiteral(1)}, false)
	s2.enqueue(NegativeLiteral(0), nil)
	s2.enqueue(NegativeLiteral(1), nil)
	if conflict := s2.Propagate(); conflict == nil {
		t.Fatalf("expected a conflict once both literals are falsified")
	}
}
