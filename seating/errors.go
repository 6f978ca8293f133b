package seating

import "fmt"

// ErrorKind classifies a SeatingError. Callers branch on it with errors.Is
// against the package-level sentinels below, never by comparing Msg.
type ErrorKind int

const (
	ErrKindInsufficientCapacity ErrorKind = iota
	ErrKindRestrictedInsufficientCapacity
	ErrKindSolverTimeout
	ErrKindSolverInfeasible
	ErrKindSolverInvariantViolated
	ErrKindModelInvalid

	// ErrKindConstraintCapHit is never returned as Optimize's error value.
	// It exists only so ErrConstraintCapHit can be compared against with
	// errors.Is by a caller inspecting a different representation of the
	// same condition; the live signal is Result.Diagnostics.ConstraintCapHit.
	ErrKindConstraintCapHit
)

func (k ErrorKind) String() string {
	switch k {
	case ErrKindInsufficientCapacity:
		return "InsufficientCapacity"
	case ErrKindRestrictedInsufficientCapacity:
		return "RestrictedInsufficientCapacity"
	case ErrKindSolverTimeout:
		return "SolverTimeout"
	case ErrKindSolverInfeasible:
		return "SolverInfeasible"
	case ErrKindSolverInvariantViolated:
		return "SolverInvariantViolated"
	case ErrKindModelInvalid:
		return "ModelInvalid"
	case ErrKindConstraintCapHit:
		return "ConstraintCapHit"
	default:
		return "Unknown"
	}
}

// SeatingError is the concrete error type returned by Optimize. Its Is
// method makes it errors.Is-compatible against the sentinels below: two
// SeatingErrors are equal for errors.Is purposes iff their Kind matches,
// regardless of Msg.
type SeatingError struct {
	Kind ErrorKind
	Msg  string
}

func (e *SeatingError) Error() string {
	return fmt.Sprintf("seating: %s: %s", e.Kind, e.Msg)
}

func (e *SeatingError) Is(target error) bool {
	t, ok := target.(*SeatingError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newSeatingError(kind ErrorKind, format string, args ...interface{}) *SeatingError {
	return &SeatingError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Sentinels for errors.Is. Only Kind is compared, so the Msg field here is
// never seen by callers; it exists only to make a stray Error() call
// readable in logs.
var (
	ErrInsufficientCapacity           = &SeatingError{Kind: ErrKindInsufficientCapacity, Msg: "total usable seats below student count"}
	ErrRestrictedInsufficientCapacity = &SeatingError{Kind: ErrKindRestrictedInsufficientCapacity, Msg: "restricted exam has no feasible placement"}
	ErrSolverTimeout                  = &SeatingError{Kind: ErrKindSolverTimeout, Msg: "solver returned no feasible solution before the timeout"}
	ErrSolverInfeasible               = &SeatingError{Kind: ErrKindSolverInfeasible, Msg: "model proven infeasible"}
	ErrSolverInvariantViolated        = &SeatingError{Kind: ErrKindSolverInvariantViolated, Msg: "post-solve invariant check failed"}
	ErrModelInvalid                   = &SeatingError{Kind: ErrKindModelInvalid, Msg: "model rejected by the solver"}
	ErrConstraintCapHit               = &SeatingError{Kind: ErrKindConstraintCapHit, Msg: "separation constraint cap reached"}
)
