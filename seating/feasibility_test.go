package seating

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckFeasibility_OK(t *testing.T) {
	students := []Student{{ID: 0, Exam: "a"}}
	rooms := []Room{{ID: "R1", Rows: 1, Cols: 1}}
	m, err := normalize(students, rooms, nil)
	assert.NoError(t, err)
	assert.NoError(t, checkFeasibility(m))
}

func TestCheckFeasibility_InsufficientTotalCapacity(t *testing.T) {
	students := []Student{{ID: 0, Exam: "a"}, {ID: 1, Exam: "a"}}
	rooms := []Room{{ID: "R1", Rows: 1, Cols: 1}}
	m, err := normalize(students, rooms, nil)
	assert.NoError(t, err)

	gotErr := checkFeasibility(m)
	assert.True(t, errors.Is(gotErr, ErrInsufficientCapacity))
}

func TestCheckFeasibility_RestrictedExamShortfall(t *testing.T) {
	students := []Student{{ID: 0, Exam: "art"}, {ID: 1, Exam: "art"}}
	rooms := []Room{{ID: "R1", Rows: 1, Cols: 1}, {ID: "R2", Rows: 1, Cols: 1}}
	m, err := normalize(students, rooms, Restrictions{"art": {"R1"}})
	assert.NoError(t, err)

	gotErr := checkFeasibility(m)
	assert.True(t, errors.Is(gotErr, ErrRestrictedInsufficientCapacity))
}

func TestCheckFeasibility_VacuousRestrictionIsIgnored(t *testing.T) {
	students := []Student{{ID: 0, Exam: "math"}}
	rooms := []Room{{ID: "R1", Rows: 1, Cols: 1}}
	// "art" has no students, so its empty allow-list must not fail feasibility.
	m, err := normalize(students, rooms, Restrictions{"art": {}})
	assert.NoError(t, err)
	assert.NoError(t, checkFeasibility(m))
}
