package ilp

import (
	"context"
	"errors"

	"gonum.org/v1/gonum/mat"
)

// milpProblem is the concrete numerical form of a Problem:
//
//	minimize c^T * x
//	s.t.     G * x <= h
//	         A * x =  b
type milpProblem struct {
	c []float64
	A *mat.Dense
	b []float64
	G *mat.Dense
	h []float64

	// which variables are integrality-constrained, same order as c.
	integralityConstraints []bool
}

// Status is the terminal state of a Solve call, mirroring the statuses a
// CP/MILP solver reports: whether the search proved optimality, merely
// found a feasible point before running out of time, proved infeasibility,
// rejected a malformed model, or ran out of time without any incumbent.
type Status int

const (
	StatusOptimal Status = iota
	StatusFeasible
	StatusInfeasible
	StatusModelInvalid
	StatusUnknown
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "OPTIMAL"
	case StatusFeasible:
		return "FEASIBLE"
	case StatusInfeasible:
		return "INFEASIBLE"
	case StatusModelInvalid:
		return "MODEL_INVALID"
	case StatusUnknown:
		return "UNKNOWN"
	default:
		return "UNRECOGNIZED_STATUS"
	}
}

func (p milpProblem) toInitialSubProblem() subProblem {
	// convert the inequalities (if any) to equalities
	cNew := p.c
	Anew := p.A
	bNew := p.b
	intNew := p.integralityConstraints

	if p.G != nil {
		cNew, Anew, bNew = convertToEqualities(p.c, p.A, p.b, p.G, p.h)

		// slack variables introduced by the conversion are continuous.
		intNew = make([]bool, len(cNew))
		copy(intNew, p.integralityConstraints)
	}

	return subProblem{
		// the initial subproblem has 0 as identifier
		id: 0,

		c: cNew,
		A: Anew,
		b: bNew,
		integralityConstraints: intNew,

		// for the initial subproblem, there are no branch-and-bound-specific constraints yet.
		bnbConstraints: []bnbConstraint{},
	}
}

// milpSolution is the raw numeric result of a branch-and-bound search.
type milpSolution struct {
	x []float64
	z float64
}

// solve runs a parallel portfolio branch-and-bound search over p: one
// goroutine per worker, each assigned a portfolio heuristic round-robin and
// exploring the enumeration tree with that branching heuristic and
// racing to improve a single shared incumbent. The call blocks until ctx is
// done or every worker's stack is exhausted.
func (p milpProblem) solve(ctx context.Context, workers int, portfolio []BranchHeuristic, mw BnbMiddleware) (milpSolution, Status, error) {
	if workers <= 0 {
		return milpSolution{}, StatusModelInvalid, errors.New("ilp: number of workers must be >= 1")
	}
	if len(p.integralityConstraints) != len(p.c) {
		return milpSolution{}, StatusModelInvalid, errors.New("ilp: integrality constraints vector is not the same length as c")
	}
	if mw == nil {
		mw = dummyMiddleware{}
	}

	initial := p.toInitialSubProblem()

	tree := newEnumerationTree(initial, portfolio, mw)
	incumbent, exhausted := tree.startSearch(ctx, workers)

	if ctx.Err() != nil {
		if incumbent == nil {
			return milpSolution{}, StatusUnknown, nil
		}
		return trimSlack(*incumbent, p.c), StatusFeasible, nil
	}

	if incumbent == nil {
		if exhausted {
			return milpSolution{}, StatusInfeasible, nil
		}
		return milpSolution{}, StatusUnknown, nil
	}

	return trimSlack(*incumbent, p.c), StatusOptimal, nil
}

// trimSlack removes the slack variables appended by convertToEqualities,
// restoring the solution vector to the caller's original variable count.
func trimSlack(s milpSolution, originalC []float64) milpSolution {
	if len(s.x) > len(originalC) {
		s.x = s.x[:len(originalC)]
	}
	return s
}
