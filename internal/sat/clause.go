package sat

import (
	"strings"
)

// Clause is an original or learnt disjunction of literals. It is never
// materialized for a unit clause: a size-1 input is enqueued directly by
// NewClause and never allocated (see invariant I1 on the solver's watch
// index). Clauses are never deleted: both original and learnt clauses live
// for the entire solve, so Clause carries no reference count or lock
// check — there is nothing that ever reclaims one.
type Clause struct {
	// The clause's literals. Always has at least two elements.
	literals []Literal

	// Whether the clause was learnt by conflict analysis rather than
	// supplied as part of the original formula.
	learnt bool

	// Literal block distance: the number of distinct decision levels spanned
	// by the clause's literals at the time it was learnt. Lower is better;
	// it is used only for search-progress reporting in this solver (there is
	// no clause-database reduction to drive).
	lbd int

	// Position in literals at which the last successful rewatch scan left
	// off, so the next Propagate resumes the scan instead of restarting
	// from index 2 every time. Always in [2, len(literals)] once set; reset
	// to 2 if it falls out of range.
	prevPos int
}

// NewClause constructs a clause from tmpLiterals, which is consumed and may
// be reordered in place. For original (non-learnt) clauses it collapses
// duplicate literals and drops the clause entirely if it is tautological
// (contains a literal and its complement) or already satisfied at the
// current (root) assignment. Learnt clauses skip this pass: analyze already
// produces a deduplicated, non-tautological clause.
//
// Returns (nil, true) if the clause was simplified away (tautology, already
// satisfied, or a unit fact that was enqueued directly), (nil, false) if the
// clause is empty (the formula is unsatisfiable), and (*Clause, true)
// otherwise.
func NewClause(s *Solver, tmpLiterals []Literal, learnt bool) (*Clause, bool) {
	size := len(tmpLiterals)

	if !learnt {
		seen := map[Literal]struct{}{}

		for i := size - 1; i >= 0; i-- {
			// If the opposite literal is in the clause, the clause is a
			// tautology and always true.
			if _, ok := seen[tmpLiterals[i].Opposite()]; ok {
				return nil, true
			}

			// Drop the literal if it is already present.
			if _, ok := seen[tmpLiterals[i]]; ok {
				size--
				tmpLiterals[i], tmpLiterals[size] = tmpLiterals[size], tmpLiterals[i]
				continue
			}
			seen[tmpLiterals[i]] = struct{}{}

			switch s.LitValue(tmpLiterals[i]) {
			case True:
				return nil, true // clause is already satisfied at the root
			case False:
				size--
				tmpLiterals[i], tmpLiterals[size] = tmpLiterals[size], tmpLiterals[i]
			}
		}

		tmpLiterals = tmpLiterals[:size]
	}

	switch size {
	case 0:
		return nil, false
	case 1:
		return nil, s.enqueue(tmpLiterals[0], nil)
	default:
		c := &Clause{
			learnt:   learnt,
			literals: append(make([]Literal, 0, len(tmpLiterals)), tmpLiterals...),
			prevPos:  2,
		}

		if learnt {
			c.lbd = computeLBD(s, c.literals)

			// The asserting literal (index 0) is already in place; pick the
			// literal with the second-highest decision level as the other
			// watch so that the clause becomes unit as soon as the search
			// backjumps below that level.
			maxLevel, wl := -1, -1
			for i := 1; i < len(c.literals); i++ {
				if level := s.level[c.literals[i].VarID()]; level > maxLevel {
					maxLevel, wl = level, i
				}
			}
			c.literals[wl], c.literals[1] = c.literals[1], c.literals[wl]
		}

		s.Watch(c, c.literals[0].Opposite(), c.literals[1])
		s.Watch(c, c.literals[1].Opposite(), c.literals[0])

		return c, true
	}
}

// computeLBD returns the number of distinct decision levels assigned to
// lits' variables.
func computeLBD(s *Solver, lits []Literal) int {
	levels := make(map[int]struct{}, len(lits))
	for _, l := range lits {
		levels[s.level[l.VarID()]] = struct{}{}
	}
	return len(levels)
}

// Propagate handles the assignment of l becoming true, i.e. the watched
// literal l.Opposite() of c just became false. It implements the rewatch
// policy of the watched-literal index: if the clause is already satisfied
// by its other watch it stays put; otherwise it scans for a new non-false
// literal to watch; otherwise it enqueues the remaining watch (unit) or
// reports a conflict by returning false.
func (c *Clause) Propagate(s *Solver, l Literal) bool {
	// Normalize so that the falsified watch is always c.literals[1]: this
	// keeps c.literals[0] as the literal to (maybe) propagate below.
	opp := l.Opposite()
	if c.literals[0] == opp {
		c.literals[0] = c.literals[1]
		c.literals[1] = opp
	}

	if s.LitValue(c.literals[0]) == True {
		s.Watch(c, l, c.literals[0])
		return true
	}

	// Scan for a new watch starting from the cached cursor so repeated
	// propagations on a large clause don't rescan literals that were
	// already known false last time.
	if c.prevPos < 2 || c.prevPos > len(c.literals) {
		c.prevPos = 2
	}
	for i, lit := range c.literals[c.prevPos:] {
		if s.LitValue(lit) != False {
			pos := c.prevPos + i
			c.literals[1], c.literals[pos] = lit, opp
			c.prevPos = pos
			s.Watch(c, lit.Opposite(), c.literals[0])
			return true
		}
	}
	for i, lit := range c.literals[2:c.prevPos] {
		if s.LitValue(lit) != False {
			pos := i + 2
			c.literals[1], c.literals[pos] = lit, opp
			c.prevPos = pos
			s.Watch(c, lit.Opposite(), c.literals[0])
			return true
		}
	}

	// Every literal but c.literals[0] is false: the clause is unit (or, if
	// c.literals[0] is itself false, conflicting).
	s.Watch(c, l, c.literals[0])
	return s.enqueue(c.literals[0], c)
}

// explainConflict appends the negation of every literal of c (a conflicting
// clause) to *out, which is reused across calls to avoid allocating.
func (c *Clause) explainConflict(out *[]Literal) {
	exp := (*out)[:0]
	for _, l := range c.literals {
		exp = append(exp, l.Opposite())
	}
	*out = exp
}

// explainAssign appends the negation of every literal of c other than the
// one it implied (always literals[0]) to *out.
func (c *Clause) explainAssign(out *[]Literal) {
	exp := (*out)[:0]
	for _, l := range c.literals[1:] {
		exp = append(exp, l.Opposite())
	}
	*out = exp
}

func (c *Clause) String() string {
	if len(c.literals) == 0 {
		return "Clause[]"
	}
	sb := strings.Builder{}
	sb.WriteString("Clause[")
	sb.WriteString(c.literals[0].String())
	for _, l := range c.literals[1:] {
		sb.WriteByte(' ')
		sb.WriteString(l.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
