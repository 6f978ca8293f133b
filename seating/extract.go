package seating

import "github.com/majidonaisy/seating-algo/ilp"

// roundTolerance matches ilp's own integer-feasibility tolerance: a solved
// value within this of 1 counts as occupied.
const roundTolerance = 1e-6

// extractAssignments walks bm.studentCandidates in the order the Model
// Builder recorded it (room-ascending, then position-ascending) and picks,
// per student, the first candidate whose solved value rounds to 1. It
// never re-derives a variable from its name: every lookup goes through
// Variable.Index() / Solution.ValueAt, per the flat integer keying this
// package uses throughout.
func extractAssignments(m *normalizedModel, bm *builtModel, sol ilp.Solution) ([]Assignment, error) {
	assignments := make([]Assignment, 0, len(m.students))

	for s, student := range m.students {
		found := false
		for _, key := range bm.studentCandidates[s] {
			v := bm.seatVars[key]
			val, err := sol.ValueAt(v.Index())
			if err != nil {
				return nil, newSeatingError(ErrKindSolverInvariantViolated,
					"student %d: %s", student.ID, err.Error())
			}
			if val > 1-roundTolerance {
				pos := m.positions[key.room][key.pos]
				assignments = append(assignments, Assignment{
					StudentID: student.ID,
					RoomID:    m.rooms[key.room].ID,
					Row:       pos.Row,
					Col:       pos.Col,
				})
				found = true
				break
			}
		}
		if !found {
			return nil, newSeatingError(ErrKindSolverInvariantViolated,
				"student %d: solver reported success but assigned no seat", student.ID)
		}
	}

	return assignments, nil
}
