package seating

import (
	"context"
	"time"

	"github.com/majidonaisy/seating-algo/ilp"
)

// searchPortfolio is the branching-heuristic rotation handed to every
// search worker, round-robin. Mixing heuristics across workers finds an
// incumbent faster than running the same one everywhere.
var searchPortfolio = []ilp.BranchHeuristic{
	ilp.BRANCH_MAXFUN,
	ilp.BRANCH_MOST_INFEASIBLE,
	ilp.BRANCH_NAIVE,
}

// searchOutcome bundles everything the caller needs to turn a raw
// ilp.Solution into a Result: the solution itself, the terminal Status,
// how long the search ran, and any error the ilp layer surfaced.
type searchOutcome struct {
	solution ilp.Solution
	status   ilp.Status
	elapsed  time.Duration
	err      error
}

// runSearch bounds ctx by cfg.Timeout and hands bm.problem to the ilp
// branch-and-bound engine, translating its outcome into seating's own
// error taxonomy (spec.md section 4.4 / 6).
func runSearch(ctx context.Context, bm *builtModel, cfg SearchConfig) searchOutcome {
	cfg = cfg.resolve()

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	start := time.Now()
	sol, status, err := bm.problem.Solve(ctx, ilp.SolveOptions{
		Workers:         cfg.Workers,
		Presolve:        cfg.Presolve,
		BranchPortfolio: searchPortfolio,
	}, nil)
	elapsed := time.Since(start)

	if err != nil {
		return searchOutcome{solution: sol, status: status, elapsed: elapsed,
			err: newSeatingError(ErrKindModelInvalid, "%s", err.Error())}
	}

	switch status {
	case ilp.StatusOptimal, ilp.StatusFeasible:
		return searchOutcome{solution: sol, status: status, elapsed: elapsed}
	case ilp.StatusInfeasible:
		return searchOutcome{solution: sol, status: status, elapsed: elapsed, err: ErrSolverInfeasible}
	case ilp.StatusModelInvalid:
		return searchOutcome{solution: sol, status: status, elapsed: elapsed, err: ErrModelInvalid}
	default: // StatusUnknown: ran out of time without a feasible incumbent
		return searchOutcome{solution: sol, status: status, elapsed: elapsed, err: ErrSolverTimeout}
	}
}
