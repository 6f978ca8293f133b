package ilp

import (
	"context"
	"math"
	"sync"

	"gonum.org/v1/gonum/optimize/convex/lp"
)

// bnbDecision records the branch-and-bound decision made at a node of the
// enumeration tree, for instrumentation purposes only: it carries no
// algorithmic weight of its own.
type bnbDecision string

const (
	SUBPROBLEM_IS_DEGENERATE        bnbDecision = "subproblem contains a degenerate (singular) matrix"
	SUBPROBLEM_NOT_FEASIBLE         bnbDecision = "subproblem has no feasible solution"
	WORSE_THAN_INCUMBENT            bnbDecision = "worse than incumbent"
	BETTER_THAN_INCUMBENT_BRANCHING bnbDecision = "better than incumbent but fractional, so branching"
	BETTER_THAN_INCUMBENT_FEASIBLE  bnbDecision = "better than incumbent and integer-feasible, so replacing incumbent"
)

// expectedFailures maps simplex errors that are a normal, expected outcome
// of branch-and-bound pruning (an over-constrained subproblem) to the
// bnbDecision they correspond to. Any other error is treated the same way:
// the subproblem is pruned.
var expectedFailures = map[error]bnbDecision{
	lp.ErrInfeasible: SUBPROBLEM_NOT_FEASIBLE,
	lp.ErrSingular:   SUBPROBLEM_IS_DEGENERATE,
}

// integerFeasibilityTolerance is how close a relaxed value must be to an
// integer to be considered integral.
const integerFeasibilityTolerance = 1e-6

// enumerationTree runs a parallel portfolio branch-and-bound search: each
// worker explores its own copy of the tree (rooted at the same relaxation)
// depth-first with its own branching heuristic, and every worker prunes
// against one shared incumbent bound.
type enumerationTree struct {
	root      subProblem
	portfolio []BranchHeuristic
	mw        BnbMiddleware

	mu           sync.Mutex
	incumbent    *solution
	hasIncumbent bool

	// rootInfeasible is set if the initial relaxation itself has no
	// feasible point: in that case the whole MILP is infeasible, regardless
	// of how much of the tree any worker manages to explore.
	rootInfeasible bool
}

func newEnumerationTree(root subProblem, portfolio []BranchHeuristic, mw BnbMiddleware) *enumerationTree {
	return &enumerationTree{
		root:      root,
		portfolio: portfolio,
		mw:        mw,
	}
}

// startSearch runs the search with the given number of workers until ctx is
// done or every worker's stack is empty. It returns the best integer
// solution found (nil if none) and whether the tree was exhausted (as
// opposed to cut short by ctx).
func (t *enumerationTree) startSearch(ctx context.Context, workers int) (*milpSolution, bool) {
	rootSolved := t.root.solve()
	t.mw.NewSubProblem(t.root)

	if rootSolved.err != nil {
		t.rootInfeasible = true
		decision := classifyFailure(rootSolved.err)
		t.mw.ProcessDecision(rootSolved, decision)
		return nil, true
	}

	var wg sync.WaitGroup
	exhausted := make([]bool, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerIdx int) {
			defer wg.Done()

			heuristic := t.portfolio[workerIdx%len(t.portfolio)]

			root := t.root
			root.branchHeuristic = heuristic
			// scope ids to this worker so concurrent NewSubProblem/
			// ProcessDecision calls never collide.
			root.id = int64(workerIdx+1) << 48
			root.parent = root.id
			t.mw.NewSubProblem(root)

			localCounter := root.id
			stack := []subProblem{root}

			for len(stack) > 0 {
				select {
				case <-ctx.Done():
					exhausted[workerIdx] = false
					return
				default:
				}

				n := len(stack) - 1
				sp := stack[n]
				stack = stack[:n]

				sol := sp.solve()

				if sol.err != nil {
					t.mw.ProcessDecision(sol, classifyFailure(sol.err))
					continue
				}

				if t.isWorseThanIncumbent(sol.z) {
					t.mw.ProcessDecision(sol, WORSE_THAN_INCUMBENT)
					continue
				}

				if isIntegerFeasible(sol.x, sp.integralityConstraints) {
					t.tryUpdateIncumbent(sol)
					continue
				}

				t.mw.ProcessDecision(sol, BETTER_THAN_INCUMBENT_BRANCHING)

				p1, p2 := sol.branch()
				localCounter++
				p1.id = localCounter
				p1.parent = sp.id
				localCounter++
				p2.id = localCounter
				p2.parent = sp.id

				t.mw.NewSubProblem(p1)
				t.mw.NewSubProblem(p2)
				stack = append(stack, p1, p2)
			}

			exhausted[workerIdx] = true
		}(i)
	}

	wg.Wait()

	allExhausted := true
	for _, e := range exhausted {
		allExhausted = allExhausted && e
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.hasIncumbent {
		return nil, allExhausted
	}
	return &milpSolution{x: t.incumbent.x, z: t.incumbent.z}, allExhausted
}

func classifyFailure(err error) bnbDecision {
	if decision, ok := expectedFailures[err]; ok {
		return decision
	}
	return SUBPROBLEM_NOT_FEASIBLE
}

func (t *enumerationTree) isWorseThanIncumbent(z float64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hasIncumbent && z >= t.incumbent.z
}

func (t *enumerationTree) tryUpdateIncumbent(sol solution) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.hasIncumbent || sol.z < t.incumbent.z {
		s := sol
		t.incumbent = &s
		t.hasIncumbent = true
		t.mw.ProcessDecision(sol, BETTER_THAN_INCUMBENT_FEASIBLE)
		return
	}
	t.mw.ProcessDecision(sol, WORSE_THAN_INCUMBENT)
}

// isIntegerFeasible reports whether every integrality-constrained entry of
// x is within integerFeasibilityTolerance of an integer.
func isIntegerFeasible(x []float64, integralityConstraints []bool) bool {
	for i, constrained := range integralityConstraints {
		if !constrained {
			continue
		}
		if i >= len(x) {
			return false
		}
		_, frac := math.Modf(x[i])
		if frac < 0 {
			frac = -frac
		}
		if frac > integerFeasibilityTolerance && frac < 1-integerFeasibilityTolerance {
			return false
		}
	}
	return true
}
