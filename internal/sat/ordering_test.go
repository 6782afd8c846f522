package sat

import "testing"

func TestVarOrderTieBreakByInsertionOrder(t *testing.T) {
	s := newTestSolver(3)
	// All scores are 0 (tied): NextVar must return variables in ascending
	// ID order, the order they were added in.
	for want := 0; want < 3; want++ {
		got := s.order.NextVar(s)
		if got != want {
			t.Fatalf("NextVar: got %d, want %d", got, want)
		}
		s.order.Reinsert(got, Unknown) // put back without assigning
	}
}

func TestVarOrderBumpScoreChangesPriority(t *testing.T) {
	s := newTestSolver(3)
	s.order.BumpScore(2)
	s.order.BumpScore(2)
	s.order.BumpScore(1)

	got := s.order.NextVar(s)
	if got != 2 {
		t.Fatalf("NextVar: got %d, want 2 (highest bumped score)", got)
	}
}

func TestVarOrderSkipsAssignedVariables(t *testing.T) {
	s := newTestSolver(2)
	s.enqueue(PositiveLiteral(0), nil)

	got := s.order.NextVar(s)
	if got != 1 {
		t.Fatalf("NextVar returned an already-assigned variable: %d", got)
	}
}

func TestVarOrderPhaseSavingDefault(t *testing.T) {
	vo := NewVarOrder(0.95, false)
	vo.AddVar(false)
	vo.Reinsert(0, True) // phase saving disabled: should be ignored
	if vo.Phase(0) != False {
		t.Errorf("phase changed despite phase saving being disabled")
	}
}

func TestVarOrderPhaseSavingEnabled(t *testing.T) {
	vo := NewVarOrder(0.95, true)
	vo.AddVar(false)
	vo.Reinsert(0, True)
	if vo.Phase(0) != True {
		t.Errorf("phase saving did not record the last assigned value")
	}
}
