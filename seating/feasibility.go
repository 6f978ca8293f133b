package seating

// checkFeasibility rejects two unsolvable inputs before any variable or
// constraint is built: total capacity below the student count, and a
// restricted exam whose allowed rooms can't hold its own students. Both are
// cheaper than letting the solver prove infeasibility.
func checkFeasibility(m *normalizedModel) error {
	total := m.totalCapacity()
	if total < len(m.students) {
		return newSeatingError(ErrKindInsufficientCapacity,
			"total usable seats (%d) below student count (%d)", total, len(m.students))
	}

	for exam, allowed := range m.restrictedRooms {
		examIdx, hasStudents := m.examIndex[exam]
		if !hasStudents {
			continue // no student takes this exam; the restriction is vacuous
		}

		capacity := 0
		for roomIdx := range allowed {
			capacity += len(m.positions[roomIdx])
		}

		needed := len(m.examStudents[examIdx])
		if capacity < needed {
			return newSeatingError(ErrKindRestrictedInsufficientCapacity,
				"exam %q needs %d seats but its allowed rooms provide only %d", exam, needed, capacity)
		}
	}

	return nil
}
