package seating

import (
	"github.com/majidonaisy/seating-algo/ilp"
	"go.uber.org/zap"
)

// Diagnostics reports what the Model Builder and Search Driver actually
// did, so a caller can tell a tight-but-optimal run apart from one that
// only got lucky under the separation-constraint cap.
type Diagnostics struct {
	Students              int
	Rooms                 int
	TotalCapacity         int
	Variables             int
	SeparationConstraints int
	ConstraintCapHit      bool
	SymmetryBroken        bool
	Status                ilp.Status
	SolveTimeMillis       int64
}

func buildDiagnostics(m *normalizedModel, bm *builtModel, outcome searchOutcome) Diagnostics {
	return Diagnostics{
		Students:              len(m.students),
		Rooms:                 len(m.rooms),
		TotalCapacity:         m.totalCapacity(),
		Variables:             bm.problem.NumVariables(),
		SeparationConstraints: bm.separationConstraints,
		ConstraintCapHit:      bm.constraintCapHit,
		SymmetryBroken:        bm.symmetryBroken,
		Status:                outcome.status,
		SolveTimeMillis:       outcome.elapsed.Milliseconds(),
	}
}

// logDiagnostics writes a single structured summary line: Info for a
// clean run, Warn when the separation cap was hit, since a cap hit means
// some same-exam adjacency pairs went unchecked.
func logDiagnostics(logger *zap.Logger, d Diagnostics) {
	if logger == nil {
		logger = zap.NewNop()
	}

	fields := []zap.Field{
		zap.Int("students", d.Students),
		zap.Int("rooms", d.Rooms),
		zap.Int("total_capacity", d.TotalCapacity),
		zap.Int("variables", d.Variables),
		zap.Int("separation_constraints", d.SeparationConstraints),
		zap.Bool("symmetry_broken", d.SymmetryBroken),
		zap.String("status", d.Status.String()),
		zap.Int64("solve_time_ms", d.SolveTimeMillis),
	}

	if d.ConstraintCapHit {
		logger.Warn("seating: separation constraint cap reached, some adjacency pairs unchecked", fields...)
		return
	}
	logger.Info("seating: search complete", fields...)
}
