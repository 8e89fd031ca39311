/*
solver.go - Solver interface, status protocol, and the solve driver

PURPOSE:
  Defines the contract any search backend must honor and drives one
  invocation end to end: build model -> solve within budget -> extract.

STATUS PROTOCOL:
  Built -> Solving -> one of:
    StatusOptimal     proved no better feasible assignment exists
    StatusFeasible    budget expired holding a valid incumbent
    StatusInfeasible  search space exhausted with no valid assignment
    StatusTimedOut    budget expired with no incumbent (proves nothing)

  Optimal and Feasible are the only successes. Infeasible and TimedOut
  surface as the sentinel errors ErrInfeasible and ErrTimedOut; an internal
  fault surfaces as *SolveError. No partial schedule is ever returned on
  failure.

SWAPPING BACKENDS:
  The Solver interface deliberately knows nothing about search strategy. The
  shipped backend is a branch-and-bound backtracking search (backtrack.go);
  a CP-SAT or MIP-backed implementation can be substituted without touching
  model building, constraints, or the objective.

SEE ALSO:
  - backtrack.go: the shipped Solver implementation
  - result.go: extraction after a successful solve
*/
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// STATUS
// =============================================================================

// Status is the terminal state of one solve invocation.
type Status int

const (
	StatusOptimal Status = iota
	StatusFeasible
	StatusInfeasible
	StatusTimedOut
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	case StatusTimedOut:
		return "timed-out"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Success reports whether the status carries a valid assignment.
func (s Status) Success() bool { return s == StatusOptimal || s == StatusFeasible }

// =============================================================================
// SOLVER CONTRACT
// =============================================================================

// Outcome is the raw product of a solve attempt. Assignment and Score are
// meaningful only when Status.Success() holds.
type Outcome struct {
	Status     Status
	Assignment Assignment
	Score      int
}

// Solver searches for a maximizing feasible assignment. Implementations
// must honor the context deadline, must be deterministic for a fixed model
// and configuration, and must return an error only for internal faults
// (infeasible and timed-out are statuses, not errors).
type Solver interface {
	Name() string
	Solve(ctx context.Context, m *Model) (*Outcome, error)
}

// =============================================================================
// DRIVER
// =============================================================================

// Plan runs the full pipeline with the shipped backtracking solver.
func Plan(ctx context.Context, req Request, policy Policy) (*Result, error) {
	return PlanWith(ctx, req, policy, NewBacktrackSolver())
}

// PlanWith runs the full pipeline with a caller-chosen solver: validate and
// build the model, solve inside the policy budget, then resolve labels and
// statistics. All-or-nothing: on any failure no Result is returned.
func PlanWith(ctx context.Context, req Request, policy Policy, solver Solver) (*Result, error) {
	model, err := BuildModel(req, policy)
	if err != nil {
		return nil, err
	}

	if policy.Budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, policy.Budget)
		defer cancel()
	}

	start := time.Now()
	outcome, err := solver.Solve(ctx, model)
	if err != nil {
		return nil, &SolveError{Solver: solver.Name(), Err: err}
	}

	switch outcome.Status {
	case StatusInfeasible:
		return nil, ErrInfeasible
	case StatusTimedOut:
		return nil, ErrTimedOut
	}

	// A backend returning a malformed or rule-breaking assignment is an
	// internal fault, never a result.
	if err := model.CheckShape(outcome.Assignment); err != nil {
		return nil, &SolveError{Solver: solver.Name(), Err: err}
	}
	if violations := model.Validate(outcome.Assignment); len(violations) > 0 {
		return nil, &SolveError{
			Solver: solver.Name(),
			Err:    fmt.Errorf("assignment violates %q", violations[0].Rule),
		}
	}

	schedule, stats, err := Extract(model, outcome.Assignment)
	if err != nil {
		return nil, &SolveError{Solver: solver.Name(), Err: err}
	}

	return &Result{
		RunID:    uuid.NewString(),
		Status:   outcome.Status,
		Score:    outcome.Score,
		Schedule: schedule,
		Stats:    stats,
		Elapsed:  time.Since(start),
	}, nil
}
