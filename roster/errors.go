package roster

import (
	"errors"
	"fmt"
)

// Sentinel errors for the roster domain. Engine failures (infeasible,
// timed out, malformed model) pass through from the engine package
// unchanged so callers keep a single taxonomy.
var (
	ErrMonthExists     = errors.New("month already set up")
	ErrMonthNotFound   = errors.New("month not set up")
	ErrStaffExists     = errors.New("staff member already on roster")
	ErrStaffNotFound   = errors.New("staff member not on roster")
	ErrNotAllSubmitted = errors.New("not all staff have submitted preferences")
	ErrNoResult        = errors.New("month has not been solved")
)

// SubmissionLengthError reports a preference row whose length does not
// match the month being planned.
type SubmissionLengthError struct {
	Name string
	Got  int
	Want int
}

func (e *SubmissionLengthError) Error() string {
	return fmt.Sprintf("submission for %s has %d values, month has %d days", e.Name, e.Got, e.Want)
}
