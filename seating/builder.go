package seating

import (
	"fmt"

	"github.com/majidonaisy/seating-algo/ilp"
)

// DefaultMaxSeparationConstraints is the separation-constraint ceiling
// applied when ModelConfig.MaxSeparationConstraints is left at zero.
const DefaultMaxSeparationConstraints = 50000

// ModelConfig configures the Model Builder: the separation-constraint cap
// and the optional room-symmetry tie-breaker.
type ModelConfig struct {
	MaxSeparationConstraints int
	BreakRoomSymmetry        bool
}

// varKey addresses a seat-occupancy decision variable by the flat integer
// triple spec.md's design notes call for, instead of a composed string
// parsed back out of the solver's result.
type varKey struct {
	student int
	room    int
	pos     int
}

// builtModel is everything the Search Driver, Solution Extractor and
// Diagnostics need from the Model Builder.
type builtModel struct {
	problem *ilp.Problem

	seatVars map[varKey]*ilp.Variable
	roomVars []*ilp.Variable // indexed by room index

	// studentCandidates[s] lists, in room-ascending then position-ascending
	// order, every (room, pos) a variable exists for. The Solution
	// Extractor scans exactly this list, never the full varKey space.
	studentCandidates [][]varKey

	separationConstraints int
	constraintCapHit      bool
	symmetryBroken        bool
}

// buildModel emits x[s,k,p] seat-occupancy and y[k] room-usage variables
// and the assignment/capacity/linkage/separation constraints of spec.md
// section 4.3, honoring restriction by omitting variables rather than
// adding explicit zero constraints.
func buildModel(m *normalizedModel, cfg ModelConfig) *builtModel {
	maxSeparation := cfg.MaxSeparationConstraints
	if maxSeparation <= 0 {
		maxSeparation = DefaultMaxSeparationConstraints
	}

	prob := ilp.NewProblem()
	prob.Minimize()

	bm := &builtModel{
		problem:           prob,
		seatVars:          make(map[varKey]*ilp.Variable),
		roomVars:          make([]*ilp.Variable, len(m.rooms)),
		studentCandidates: make([][]varKey, len(m.students)),
	}

	for k := range m.rooms {
		bm.roomVars[k] = prob.AddVariable(fmt.Sprintf("y_%d", k)).Binary().SetCoeff(1)
		for p := range m.positions[k] {
			for s := range m.students {
				if !m.allowedRoom(s, k) {
					continue
				}
				key := varKey{student: s, room: k, pos: p}
				v := prob.AddVariable(fmt.Sprintf("x_%d_%d_%d", s, k, p)).Binary()
				bm.seatVars[key] = v
				bm.studentCandidates[s] = append(bm.studentCandidates[s], key)
			}
		}
	}

	emitAssignmentConstraints(prob, m, bm)
	emitCapacityConstraints(prob, m, bm)
	emitLinkageConstraints(prob, bm)
	emitSeparationConstraints(prob, m, bm, maxSeparation)

	if cfg.BreakRoomSymmetry {
		breakRoomSymmetry(m, bm)
		bm.symmetryBroken = true
	}

	return bm
}

// emitAssignmentConstraints adds, for each student, sum of their existing
// seat variables == 1. A student with no candidate variable at all (every
// room filtered out by restriction) yields an empty-sum constraint that can
// never equal 1: the solver will correctly report the model infeasible.
func emitAssignmentConstraints(prob *ilp.Problem, m *normalizedModel, bm *builtModel) {
	for s := range m.students {
		c := prob.AddConstraint()
		for _, key := range bm.studentCandidates[s] {
			c.AddExpression(1, bm.seatVars[key])
		}
		c.EqualTo(1)
	}
}

// emitCapacityConstraints adds, for each seat that has at least one
// candidate occupant, sum of occupants <= 1.
func emitCapacityConstraints(prob *ilp.Problem, m *normalizedModel, bm *builtModel) {
	for k := range m.rooms {
		for p := range m.positions[k] {
			var c *ilp.Constraint
			for s := range m.students {
				if v, ok := bm.seatVars[varKey{student: s, room: k, pos: p}]; ok {
					if c == nil {
						c = prob.AddConstraint()
					}
					c.AddExpression(1, v)
				}
			}
			if c != nil {
				c.SmallerThanOrEqualTo(1)
			}
		}
	}
}

// emitLinkageConstraints adds x[s,k,p] - y[k] <= 0 for every seat variable,
// coupling occupancy to room activation so the objective can minimize y.
func emitLinkageConstraints(prob *ilp.Problem, bm *builtModel) {
	for key, v := range bm.seatVars {
		c := prob.AddConstraint()
		c.AddExpression(1, v)
		c.AddExpression(-1, bm.roomVars[key.room])
		c.SmallerThanOrEqualTo(0)
	}
}

// emitSeparationConstraints forbids same-exam students from occupying
// Manhattan-adjacent seats in the same room, in the deterministic order
// spec.md mandates (exam ascending, room ascending, adjacent-pair
// ascending, student-pair ascending), halting once maxSeparation
// constraints have been emitted.
func emitSeparationConstraints(prob *ilp.Problem, m *normalizedModel, bm *builtModel, maxSeparation int) {
	emit := func(a, b *ilp.Variable) bool {
		if bm.separationConstraints >= maxSeparation {
			bm.constraintCapHit = true
			return false
		}
		c := prob.AddConstraint()
		c.AddExpression(1, a)
		c.AddExpression(1, b)
		c.SmallerThanOrEqualTo(1)
		bm.separationConstraints++
		return true
	}

	for e := range m.examStudents {
		students := m.examStudents[e]
		if len(students) < 2 {
			continue
		}

		for k := range m.rooms {
			positions := m.positions[k]
			for p := 0; p < len(positions); p++ {
				for q := p + 1; q < len(positions); q++ {
					if !manhattanAdjacent(positions[p], positions[q]) {
						continue
					}

					for i := 0; i < len(students); i++ {
						for j := i + 1; j < len(students); j++ {
							si, sj := students[i], students[j]

							if v1, ok1 := bm.seatVars[varKey{si, k, p}]; ok1 {
								if v2, ok2 := bm.seatVars[varKey{sj, k, q}]; ok2 {
									if !emit(v1, v2) {
										return
									}
								}
							}
							if v1, ok1 := bm.seatVars[varKey{sj, k, p}]; ok1 {
								if v2, ok2 := bm.seatVars[varKey{si, k, q}]; ok2 {
									if !emit(v1, v2) {
										return
									}
								}
							}
						}
					}
				}
			}
		}
	}
}

// breakRoomSymmetry adds a lexicographic tie-breaker y[k] >= y[k+1] for
// adjacent rooms with identical (rows, cols, skip flags): an optional,
// disclosed narrowing of the solution space (see Diagnostics.SymmetryBroken).
func breakRoomSymmetry(m *normalizedModel, bm *builtModel) {
	type shape struct {
		rows, cols   int
		skipR, skipC bool
	}

	byShape := make(map[shape][]int)
	for k, r := range m.rooms {
		sh := shape{r.Rows, r.Cols, r.SkipRows, r.SkipCols}
		byShape[sh] = append(byShape[sh], k)
	}

	for _, rooms := range byShape {
		for i := 0; i+1 < len(rooms); i++ {
			k, k1 := rooms[i], rooms[i+1]
			// y[k] >= y[k+1]  <=>  -y[k] + y[k+1] <= 0
			c := bm.problem.AddConstraint()
			c.AddExpression(-1, bm.roomVars[k])
			c.AddExpression(1, bm.roomVars[k1])
			c.SmallerThanOrEqualTo(0)
		}
	}
}
