package ilp

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// subProblem is one node of the branch-and-bound enumeration tree: the
// original problem plus the additional inequality constraints accumulated
// by the branching decisions on the path from the root.
type subProblem struct {
	// unique identifier for the subproblem, scoped to the worker that
	// created it.
	id int64

	// id of the parent problem.
	parent int64

	// same as the originating milpProblem; never modified in place.
	c []float64
	A *mat.Dense
	b []float64
	G *mat.Dense
	h []float64

	// integrality constraints, inherited from the parent problem.
	integralityConstraints []bool

	// heuristic used to select which variable to branch on next. Inherited
	// by every child subproblem.
	branchHeuristic BranchHeuristic

	// inequality constraints added by branch-and-bound, one per level of
	// depth in the tree.
	bnbConstraints []bnbConstraint
}

// bnbConstraint is a single branch-and-bound inequality: gsharp . x <= hsharp.
type bnbConstraint struct {
	branchedVariable int

	hsharp float64
	gsharp []float64
}

// solution is a solved subProblem: its relaxed optimum and the LP error (if
// any) encountered while solving it.
type solution struct {
	problem *subProblem
	x       []float64
	z       float64
	err     error
}

// combineInequalities returns this subproblem's full set of inequalities:
// the original problem's G/h plus every bnbConstraint accumulated on the
// path from the root.
func (p subProblem) combineInequalities() (*mat.Dense, []float64) {
	if len(p.bnbConstraints) > 0 {
		h := p.h

		var bnbGvects []float64
		for _, constr := range p.bnbConstraints {
			bnbGvects = append(bnbGvects, constr.gsharp...)
			h = append(h, constr.hsharp)
		}
		bnbG := mat.NewDense(len(p.bnbConstraints), len(p.c), bnbGvects)

		if p.G == nil || p.G.IsZero() {
			return bnbG, h
		}

		origRows, _ := p.G.Dims()
		bnbRows, _ := bnbG.Dims()
		Gnew := mat.NewDense(origRows+bnbRows, len(p.c), nil)
		Gnew.Stack(p.G, bnbG)

		return Gnew, h
	}

	if p.G != nil {
		return mat.DenseCopyOf(p.G), p.h
	}
	return nil, nil
}

// convertToEqualities rewrites a problem with inequalities (G, h) into an
// equivalent one with only equalities (A, b), by introducing one slack
// variable per inequality row.
func convertToEqualities(c []float64, A *mat.Dense, b []float64, G *mat.Dense, h []float64) (cNew []float64, aNew *mat.Dense, bNew []float64) {
	if G == nil {
		panic("ilp: convertToEqualities called with a nil G matrix")
	}
	if insane := sanityCheckDimensions(c, A, b, G, h); insane != nil {
		panic(insane)
	}

	nVar := len(c)
	nCons := len(b)
	nIneq := len(h)

	nNewVar := nVar + nIneq
	nNewCons := nCons + nIneq

	cNew = make([]float64, nNewVar)
	copy(cNew, c)
	// the slack variables enter the objective with a zero coefficient.

	bNew = make([]float64, nNewCons)
	copy(bNew, b)
	copy(bNew[nCons:], h)

	aNew = mat.NewDense(nNewCons, nNewVar, nil)
	if A != nil {
		aNew.Slice(0, nCons, 0, nVar).(*mat.Dense).Copy(A)
	}
	aNew.Slice(nCons, nNewCons, 0, nVar).(*mat.Dense).Copy(G)

	bottomRight := aNew.Slice(nCons, nNewCons, nVar, nVar+nIneq).(*mat.Dense)
	for i := 0; i < nIneq; i++ {
		bottomRight.Set(i, i, 1)
	}

	if insane := sanityCheckDimensions(cNew, aNew, bNew, nil, nil); insane != nil {
		panic(insane)
	}

	return
}

// solve solves the LP relaxation of this subproblem (integrality ignored).
func (p subProblem) solve() solution {
	G, h := p.combineInequalities()

	var z float64
	var x []float64
	var err error

	if G != nil {
		c, A, b := convertToEqualities(p.c, p.A, p.b, G, h)
		z, x, err = lp.Simplex(c, A, b, 0, nil)
		if err == nil && len(x) != len(p.c) {
			x = x[:len(p.c)]
		}
	} else {
		z, x, err = lp.Simplex(p.c, p.A, p.b, 0, nil)
	}

	return solution{
		problem: &p,
		x:       x,
		z:       z,
		err:     err,
	}
}

// branch splits the solution into two subproblems, each adding one new
// constraint that excludes the fractional value found for the variable
// chosen by the subproblem's branchHeuristic.
func (s solution) branch() (p1, p2 subProblem) {
	branchOn := 0
	switch s.problem.branchHeuristic {
	case BRANCH_MAXFUN:
		branchOn = maxFunBranchPoint(s.problem.c, s.problem.integralityConstraints)
	case BRANCH_MOST_INFEASIBLE:
		branchOn = mostInfeasibleBranchPoint(s.x, s.problem.integralityConstraints)
	case BRANCH_NAIVE:
		branchOn = s.naiveBranchPoint()
	default:
		panic("ilp: unknown branching heuristic")
	}

	currentCoeff := s.x[branchOn]

	// 'smaller than or equal to' branch
	p1 = s.problem.getChild(branchOn, 1, math.Floor(currentCoeff))
	// 'greater than' branch, restated as 'smaller than or equal to' by sign inversion
	p2 = s.problem.getChild(branchOn, -1, -(math.Floor(currentCoeff) + 1))

	// ids are assigned by the caller (the search loop), which is the only
	// place that can guarantee uniqueness across concurrent workers.
	return
}

// getChild builds a child subproblem that inherits everything from the
// parent plus one new branch-and-bound constraint on branchOn.
func (p subProblem) getChild(branchOn int, factor float64, smallerOrEqualThan float64) subProblem {
	child := p.copy()

	newConstraint := bnbConstraint{
		branchedVariable: branchOn,
		hsharp:           smallerOrEqualThan,
		gsharp:           make([]float64, len(p.c)),
	}
	newConstraint.gsharp[branchOn] = factor

	child.bnbConstraints = append(child.bnbConstraints, newConstraint)

	return child
}

// copy returns a shallow copy of p, safe to append a new bnbConstraint to
// without mutating the parent's slice. c, A, b, G, h and
// integralityConstraints are shared by reference since they never change
// after the root subproblem is built.
func (p *subProblem) copy() subProblem {
	new := subProblem{
		id:                     p.id,
		parent:                 p.id,
		c:                      p.c,
		A:                      p.A,
		b:                      p.b,
		G:                      p.G,
		h:                      p.h,
		integralityConstraints: p.integralityConstraints,
		branchHeuristic:        p.branchHeuristic,
		bnbConstraints:         make([]bnbConstraint, len(p.bnbConstraints)),
	}
	copy(new.bnbConstraints, p.bnbConstraints)

	return new
}

// sanityCheckDimensions verifies the constraint matrices are consistently
// shaped with the objective vector and each other.
func sanityCheckDimensions(c []float64, A *mat.Dense, b []float64, G *mat.Dense, h []float64) error {
	if G == nil && A == nil {
		return errors.New("ilp: no constraint matrices provided")
	}

	if G != nil {
		if h == nil {
			return errors.New("ilp: h vector is nil while G matrix is provided")
		}
		rG, cG := G.Dims()
		if rG != len(h) {
			return errors.New("ilp: number of rows in G does not match length of h")
		}
		if cG != len(c) {
			return errors.New("ilp: number of columns in G does not match number of variables")
		}
	}

	if h != nil && G == nil {
		return errors.New("ilp: G matrix is nil while h vector is provided")
	}

	if A != nil {
		rA, cA := A.Dims()
		if rA != len(b) {
			return errors.New("ilp: number of rows in A does not match length of b")
		}
		if cA != len(c) {
			return errors.New("ilp: number of columns in A does not match number of variables")
		}
	}

	if b != nil && A == nil {
		return errors.New("ilp: A matrix is nil while b vector is provided")
	}

	return nil
}
