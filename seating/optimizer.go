package seating

import (
	"context"

	"github.com/majidonaisy/seating-algo/ilp"
)

// Result is what Optimize returns on success: every student's seat plus
// the run's Diagnostics.
type Result struct {
	Assignments []Assignment
	Diagnostics Diagnostics
	Status      ilp.Status
}

// Optimize runs the full pipeline: normalize inputs, reject provably
// infeasible capacity up front, build the ILP model, search it under
// cfg's budget, and extract a seat per student. The returned error, when
// non-nil, is always a *SeatingError and is matchable with errors.Is
// against the Err* sentinels in errors.go.
func Optimize(ctx context.Context, students []Student, rooms []Room, restrictions Restrictions, cfg SearchConfig) (Result, error) {
	cfg = cfg.resolve()

	m, err := normalize(students, rooms, restrictions)
	if err != nil {
		return Result{}, newSeatingError(ErrKindModelInvalid, "%s", err.Error())
	}

	if err := checkFeasibility(m); err != nil {
		return Result{}, err
	}

	bm := buildModel(m, ModelConfig{
		MaxSeparationConstraints: cfg.MaxSeparation,
		BreakRoomSymmetry:        cfg.BreakRoomSymmetry,
	})

	outcome := runSearch(ctx, bm, cfg)
	diagnostics := buildDiagnostics(m, bm, outcome)
	logDiagnostics(cfg.Logger, diagnostics)

	if outcome.err != nil {
		return Result{Diagnostics: diagnostics, Status: outcome.status}, outcome.err
	}

	assignments, err := extractAssignments(m, bm, outcome.solution)
	if err != nil {
		return Result{Diagnostics: diagnostics, Status: outcome.status}, err
	}

	return Result{
		Assignments: assignments,
		Diagnostics: diagnostics,
		Status:      outcome.status,
	}, nil
}
