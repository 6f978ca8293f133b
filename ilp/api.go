// Package ilp is a small mixed-integer linear programming engine: an
// abstract Problem/Variable/Constraint builder on top of a branch-and-bound
// search that calls into gonum's simplex solver at each node.
//
// It knows nothing about exam seating; the seating package is the only
// caller, and builds a Problem out of 0/1 seat-occupancy and room-usage
// variables.
package ilp

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Problem is the abstract representation of a MILP: a set of variables, a
// set of linear constraints over them, and a direction of optimization.
// Minimizes by default.
type Problem struct {
	maximize bool

	variables   []*Variable
	constraints []*Constraint

	// default branching heuristic, used by every worker unless Solve is
	// given an explicit portfolio.
	branchingHeuristic BranchHeuristic
}

// Variable is a single decision variable of the Problem.
type Variable struct {
	name string

	// index is this variable's position in its Problem's variable slice,
	// fixed at AddVariable time. Variables are only ever appended, never
	// removed, so it stays valid for the Problem's lifetime and lets a
	// caller address a Solution's values without going through name.
	index int

	coefficient float64

	integer bool

	upper float64
	lower float64
}

// Index reports the variable's position in its Problem, for callers that
// track variables by index rather than by name (see Solution.ValueAt).
func (v *Variable) Index() int {
	return v.index
}

// expression is a coefficient attached to a variable, e.g. "-1 * x1", used
// to build up the left-hand side of a Constraint.
type expression struct {
	coef     float64
	variable *Variable
}

// Constraint is a single linear constraint: a sum of expressions compared
// against a right-hand side. Equality by default.
type Constraint struct {
	expressions []expression

	rhs        float64
	inequality bool

	problem *Problem
}

// NewProblem returns an empty minimization problem.
func NewProblem() *Problem {
	return &Problem{}
}

// AddVariable adds a variable with no integrality constraint, a zero
// objective coefficient, and bounds [0, +Inf), and returns a pointer to it
// for further configuration.
func (p *Problem) AddVariable(name string) *Variable {
	v := &Variable{
		name:  name,
		index: len(p.variables),
		upper: math.Inf(1),
		lower: 0,
	}
	p.variables = append(p.variables, v)
	return v
}

// SetCoeff sets the variable's coefficient in the objective function.
func (v *Variable) SetCoeff(coef float64) *Variable {
	v.coefficient = coef
	return v
}

// IsInteger marks the variable as integrality-constrained.
func (v *Variable) IsInteger() *Variable {
	v.integer = true
	return v
}

// UpperBound sets the variable's inclusive upper bound.
func (v *Variable) UpperBound(bound float64) *Variable {
	v.upper = bound
	return v
}

// LowerBound sets the variable's inclusive lower bound.
func (v *Variable) LowerBound(bound float64) *Variable {
	v.lower = bound
	return v
}

// Binary constrains the variable to {0, 1}. Convenience for the common case
// of a 0/1 decision variable (seat occupancy, room usage).
func (v *Variable) Binary() *Variable {
	v.integer = true
	v.lower = 0
	v.upper = 1
	return v
}

// AddConstraint starts a new constraint on the Problem.
func (p *Problem) AddConstraint() *Constraint {
	c := &Constraint{problem: p}
	p.constraints = append(p.constraints, c)
	return c
}

// EqualTo finalizes the constraint as an equality with the given RHS.
func (c *Constraint) EqualTo(val float64) *Constraint {
	c.inequality = false
	c.rhs = val
	return c
}

// SmallerThanOrEqualTo finalizes the constraint as a <= inequality.
func (c *Constraint) SmallerThanOrEqualTo(val float64) *Constraint {
	c.inequality = true
	c.rhs = val
	return c
}

// AddExpression appends coef*v to the left-hand side of the constraint.
// Panics if v does not belong to this constraint's Problem.
func (c *Constraint) AddExpression(coef float64, v *Variable) *Constraint {
	c.problem.getVariableIndex(v)
	c.expressions = append(c.expressions, expression{coef: coef, variable: v})
	return c
}

// Maximize sets the Problem to maximize its objective.
func (p *Problem) Maximize() {
	p.maximize = true
}

// Minimize sets the Problem to minimize its objective (the default).
func (p *Problem) Minimize() {
	p.maximize = false
}

// DefaultBranchingHeuristic sets the heuristic used by every search worker
// that isn't otherwise assigned one by a portfolio (see SolveOptions).
func (p *Problem) DefaultBranchingHeuristic(choice BranchHeuristic) {
	p.branchingHeuristic = choice
}

// NumVariables reports how many decision variables the problem has.
func (p *Problem) NumVariables() int {
	return len(p.variables)
}

// get the index of the variable pointer in the variable slice using a
// linear search.
func (p *Problem) getVariableIndex(v *Variable) int {
	for i, va := range p.variables {
		if v == va {
			return i
		}
	}
	panic("ilp: variable pointer not found in Problem")
}

// toMILP converts the abstract Problem into its concrete numerical form.
func (p *Problem) toMILP() *milpProblem {
	var c []float64
	var integrality []bool
	for _, v := range p.variables {
		// To turn a maximization problem into a minimization one, negate
		// every objective coefficient.
		k := v.coefficient
		if p.maximize {
			k = -k
		}
		c = append(c, k)
		integrality = append(integrality, v.integer)
	}

	var b []float64
	var Adata []float64
	var h []float64
	var Gdata []float64
	for _, constraint := range p.constraints {
		row := make([]float64, len(p.variables))
		for _, exp := range constraint.expressions {
			row[p.getVariableIndex(exp.variable)] = exp.coef
		}

		if constraint.inequality {
			Gdata = append(Gdata, row...)
			h = append(h, constraint.rhs)
		} else {
			Adata = append(Adata, row...)
			b = append(b, constraint.rhs)
		}
	}

	// add the variable bounds as inequality constraints
	for _, v := range p.variables {
		if !math.IsInf(v.upper, 1) {
			row := make([]float64, len(p.variables))
			row[p.getVariableIndex(v)] = 1
			Gdata = append(Gdata, row...)
			h = append(h, v.upper)
		}
		if v.lower > 0 {
			row := make([]float64, len(p.variables))
			row[p.getVariableIndex(v)] = -1
			Gdata = append(Gdata, row...)
			h = append(h, -v.lower)
		}
	}

	var A *mat.Dense
	if len(b) > 0 {
		A = mat.NewDense(len(b), len(p.variables), Adata)
	}
	var G *mat.Dense
	if len(h) > 0 {
		G = mat.NewDense(len(h), len(p.variables), Gdata)
	}

	return &milpProblem{
		c:                      c,
		A:                      A,
		b:                      b,
		G:                      G,
		h:                      h,
		integralityConstraints: integrality,
	}
}

// SolveOptions configures a single Solve call.
type SolveOptions struct {
	// Workers is the number of concurrent branch-and-bound searches to run.
	// Must be >= 1.
	Workers int

	// BranchPortfolio assigns a branching heuristic to each worker
	// (round-robin if len(BranchPortfolio) < Workers). If empty, every
	// worker uses the Problem's DefaultBranchingHeuristic.
	BranchPortfolio []BranchHeuristic

	// Presolve enables fixed-variable elimination before the first
	// relaxation is built.
	Presolve bool
}

// Solve runs branch-and-bound search over the Problem until ctx is done or
// the tree is exhausted, reporting progress through mw (pass nil for
// none). It returns the best solution found
// (zero-valued if none), the terminal Status, and a non-nil error only for
// malformed problems.
func (p *Problem) Solve(ctx context.Context, opts SolveOptions, mw BnbMiddleware) (Solution, Status, error) {
	if opts.Workers <= 0 {
		return Solution{}, StatusModelInvalid, fmt.Errorf("ilp: workers must be >= 1, got %d", opts.Workers)
	}
	if len(p.variables) == 0 {
		return Solution{}, StatusModelInvalid, fmt.Errorf("ilp: problem has no variables")
	}

	pre := newPreProcessor()
	working := p
	if opts.Presolve {
		working = pre.preSolve(p)
	}

	portfolio := opts.BranchPortfolio
	if len(portfolio) == 0 {
		portfolio = []BranchHeuristic{working.branchingHeuristic}
	}

	milp := working.toMILP()
	if len(milp.integralityConstraints) != len(milp.c) {
		return Solution{}, StatusModelInvalid, fmt.Errorf("ilp: integrality constraint vector length mismatch")
	}

	raw, status, err := milp.solve(ctx, opts.Workers, portfolio, mw)
	if err != nil {
		return Solution{}, status, err
	}

	sol := Solution{
		byName: make(map[string]float64),
		values: make([]float64, len(p.variables)),
	}
	if status == StatusOptimal || status == StatusFeasible {
		for i, v := range working.variables {
			val := raw.x[i]
			sol.byName[v.name] = val
			sol.values[v.index] = val
			sol.Objective += v.coefficient * val
		}
		sol = pre.postSolve(sol)
	}

	return sol, status, nil
}

// Solution is the result of a Solve call.
type Solution struct {
	Objective float64

	// byName holds every variable's solved value, keyed by the name it was
	// created with. Exposed through GetValueFor for generic/debugging use.
	byName map[string]float64

	// values holds every variable's solved value, indexed by Variable.Index().
	// Callers who track their own variables by index (rather than composing
	// and re-parsing a name) should prefer ValueAt.
	values []float64
}

// GetValueFor retrieves the solved value of a variable by name.
func (s *Solution) GetValueFor(varName string) (float64, error) {
	val, ok := s.byName[varName]
	if !ok {
		return 0, fmt.Errorf("ilp: variable %q not found in solution", varName)
	}
	return val, nil
}

// ValueAt retrieves the solved value of the variable at the given index
// (see Variable.Index), without going through its name.
func (s *Solution) ValueAt(index int) (float64, error) {
	if index < 0 || index >= len(s.values) {
		return 0, fmt.Errorf("ilp: variable index %d out of range", index)
	}
	return s.values[index], nil
}
