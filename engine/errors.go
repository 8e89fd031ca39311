/*
errors.go - Centralized error types for the shift engine

PURPOSE:
  All engine failure modes in one place. Callers branch with errors.Is and
  errors.As, never by inspecting message text.

ERROR CATEGORIES:
  1. Input errors   - malformed request, rejected before any solve attempt
  2. Solve outcomes - infeasible / timed out, business facts not faults
  3. Engine faults  - internal solver defects, fatal for the invocation

USAGE:
  result, err := engine.Plan(ctx, req, policy)
  switch {
  case errors.Is(err, engine.ErrInfeasible): // ask for adjusted input
  case errors.Is(err, engine.ErrTimedOut):   // retry with a larger budget
  }

SEE ALSO:
  - model.go: returns *ModelBuildError
  - solver.go: maps terminal statuses to these errors
  - result.go: returns *InconsistentAssignmentError
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInfeasible is returned when no assignment satisfies the hard
	// constraints for this input. Retrying unchanged cannot succeed.
	ErrInfeasible = errors.New("no feasible assignment exists")

	// ErrTimedOut is returned when the budget expired before any feasible
	// assignment was found. Unlike ErrInfeasible it proves nothing; a retry
	// with a larger budget may succeed.
	ErrTimedOut = errors.New("solve budget exhausted before a feasible assignment was found")

	// ErrInvalidRequest is the category sentinel wrapped by *ModelBuildError.
	ErrInvalidRequest = errors.New("invalid request")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ModelBuildError reports a malformed request. It is raised during model
// building, before any solve attempt, and is never retried.
type ModelBuildError struct {
	Employee string // offending employee, when the problem is per-row
	Reason   string
}

func (e *ModelBuildError) Error() string {
	if e.Employee != "" {
		return fmt.Sprintf("model build: %s: %s", e.Employee, e.Reason)
	}
	return "model build: " + e.Reason
}

func (e *ModelBuildError) Unwrap() error { return ErrInvalidRequest }

// SolveError reports an internal solver fault. Fatal for the invocation;
// diagnostic context is preserved for the operator.
type SolveError struct {
	Solver string
	Err    error
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("solver %s failed: %v", e.Solver, e.Err)
}

func (e *SolveError) Unwrap() error { return e.Err }

// InconsistentAssignmentError reports that a solver handed back an
// assignment violating exclusivity or the decision domain. This is a
// defensive check in the extractor and should be unreachable.
type InconsistentAssignmentError struct {
	Employee string
	Day      int
	Detail   string
}

func (e *InconsistentAssignmentError) Error() string {
	return fmt.Sprintf("inconsistent assignment for %s day %d: %s", e.Employee, e.Day, e.Detail)
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsInputError reports whether the failure was caused by the request itself.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidRequest)
}

// IsRetryable reports whether a retry could plausibly succeed. Only a
// timeout qualifies: infeasibility is a proof and faults need investigation.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTimedOut)
}
