// Package seating is the exam seating assignment optimizer: it knows
// students, rooms, exams and seats, and builds an ilp.Problem out of them.
// It never touches a simplex tableau directly — that's the ilp package's
// job.
package seating

import "fmt"

// Student is an immutable record: a unique id sitting a named exam.
type Student struct {
	ID   int
	Exam string
}

// Room is an immutable record: a rectangular grid of rows x cols seats,
// optionally skipping every other row and/or column.
type Room struct {
	ID       string
	Rows     int
	Cols     int
	SkipRows bool
	SkipCols bool
}

// Position is a (row, col) coordinate within a Room.
type Position struct {
	Row int
	Col int
}

// Restrictions maps an exam name to the room ids its students may be placed
// in. An absent key means any room is allowed; a present key with an empty
// list means no room is allowed (see DESIGN.md for why empty-list-as-
// infeasible was chosen over empty-list-as-unrestricted).
type Restrictions map[string][]string

// Assignment is a single student's placement, produced only when the solver
// reports FEASIBLE or OPTIMAL.
type Assignment struct {
	StudentID int
	RoomID    string
	Row       int
	Col       int
}

// normalizedModel holds every index the downstream stages need, built once
// by normalize and never mutated afterward.
type normalizedModel struct {
	students     []Student
	rooms        []Room
	restrictions Restrictions

	examIndex    map[string]int
	examStudents [][]int // exam index -> student indices, input order

	roomIndex map[string]int
	positions [][]Position // room index -> usable positions, row-major

	// restrictedRooms[exam] is the set of room indices that exam's
	// students may use. Only exams present in restrictions have an entry;
	// an entry with zero members means the exam has no allowed room.
	restrictedRooms map[string]map[int]bool
}

// normalize validates student/room identity constraints and builds the
// indices every later stage reads. It is the Input Normalizer of the
// pipeline.
func normalize(students []Student, rooms []Room, restrictions Restrictions) (*normalizedModel, error) {
	roomIndex := make(map[string]int, len(rooms))
	for i, r := range rooms {
		if r.Rows <= 0 || r.Cols <= 0 {
			return nil, fmt.Errorf("seating: room %q has non-positive dimensions (%dx%d)", r.ID, r.Rows, r.Cols)
		}
		if _, dup := roomIndex[r.ID]; dup {
			return nil, fmt.Errorf("seating: duplicate room id %q", r.ID)
		}
		roomIndex[r.ID] = i
	}

	seenStudent := make(map[int]bool, len(students))
	examIndex := make(map[string]int)
	var examOrder []string
	for _, s := range students {
		if seenStudent[s.ID] {
			return nil, fmt.Errorf("seating: duplicate student id %d", s.ID)
		}
		seenStudent[s.ID] = true
		if _, ok := examIndex[s.Exam]; !ok {
			examIndex[s.Exam] = len(examOrder)
			examOrder = append(examOrder, s.Exam)
		}
	}

	examStudents := make([][]int, len(examOrder))
	for i, s := range students {
		e := examIndex[s.Exam]
		examStudents[e] = append(examStudents[e], i)
	}

	positions := make([][]Position, len(rooms))
	for i, r := range rooms {
		positions[i] = EnumerateUsable(r)
	}

	restrictedRooms := make(map[string]map[int]bool, len(restrictions))
	for exam, roomIDs := range restrictions {
		allowed := make(map[int]bool, len(roomIDs))
		for _, id := range roomIDs {
			if idx, ok := roomIndex[id]; ok {
				allowed[idx] = true
			}
		}
		restrictedRooms[exam] = allowed
	}

	return &normalizedModel{
		students:        students,
		rooms:           rooms,
		restrictions:    restrictions,
		examIndex:       examIndex,
		examStudents:    examStudents,
		roomIndex:       roomIndex,
		positions:       positions,
		restrictedRooms: restrictedRooms,
	}, nil
}

// allowedRoom reports whether studentIdx's exam may be placed in roomIdx.
func (m *normalizedModel) allowedRoom(studentIdx, roomIdx int) bool {
	exam := m.students[studentIdx].Exam
	allowed, restricted := m.restrictedRooms[exam]
	if !restricted {
		return true
	}
	return allowed[roomIdx]
}

// totalCapacity is the sum of usable seats across every room.
func (m *normalizedModel) totalCapacity() int {
	total := 0
	for _, p := range m.positions {
		total += len(p)
	}
	return total
}
