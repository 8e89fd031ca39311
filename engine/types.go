/*
Package engine implements the monthly shift assignment core.

PURPOSE:
  Given an ordered roster, one preference value per (employee, day), and the
  number of days in the target month, the engine chooses exactly one shift
  category per (employee, day) so that coverage, rest limits, and transition
  rules all hold, while maximizing how well the plan matches preferences.

KEY CONCEPTS IN THIS FILE (types.go):
  - Shift: The decision domain, {early, late, rest}. The only thing the
    solver controls.
  - Preference: What an employee asked for on a given day. A closed enum;
    "mid" is a legacy value with no modeled capacity and is normalized to
    PrefAny before model building.
  - Label: The user-facing category per cell. Rest splits back into plain
    rest / paid leave / half day based on the original preference.
  - Request: The full input for one solve call. Read-only.
  - Schedule / Statistics: The output bundle. Immutable once extracted.

DESIGN PRINCIPLES:
  1. Purity: The engine is a function of (Request, Policy, deadline). No
     storage, no transport, no shared state between invocations.
  2. Closed enums: Preference strings are parsed once at the boundary; the
     model builder never sees an unexpected value.
  3. Precision: Weighted rest-day totals use decimal.Decimal so a half day
     is exactly 0.5, never 0.4999....
  4. Typed failures: Every failure mode is distinguishable with errors.Is /
     errors.As, never by parsing message text.

SEE ALSO:
  - model.go: Request validation and the variable grid
  - constraints.go: The fixed hard-constraint set
  - objective.go: Preference rewards
  - solver.go: Solver interface, status protocol, the solve driver
  - result.go: Label resolution and statistics
*/
package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SHIFT - The decision domain
// =============================================================================

// Shift is one of the three assignable categories. Exactly one holds per
// (employee, day) in any accepted assignment.
type Shift int8

const (
	ShiftEarly Shift = iota
	ShiftLate
	ShiftRest

	// NumShifts is the size of the decision domain.
	NumShifts = 3
)

func (s Shift) String() string {
	switch s {
	case ShiftEarly:
		return "early"
	case ShiftLate:
		return "late"
	case ShiftRest:
		return "rest"
	default:
		return fmt.Sprintf("shift(%d)", int8(s))
	}
}

// Valid reports whether s is inside the decision domain.
func (s Shift) Valid() bool { return s >= ShiftEarly && s <= ShiftRest }

// =============================================================================
// PREFERENCE - Per-cell input signal
// =============================================================================

// Preference is the categorical wish an employee recorded for one day.
type Preference string

const (
	PrefEarly       Preference = "early"
	PrefLate        Preference = "late"
	PrefMid         Preference = "mid"          // no mid-shift capacity; normalized to PrefAny
	PrefRestRequest Preference = "rest-request" // plain requested day off
	PrefPaidLeave   Preference = "paid-leave"
	PrefHalfDay     Preference = "half-day"
	PrefAny         Preference = "any"
)

// ParsePreference converts a boundary string into a Preference.
// Empty input means no stated preference.
func ParsePreference(s string) (Preference, error) {
	switch Preference(s) {
	case PrefEarly, PrefLate, PrefMid, PrefRestRequest, PrefPaidLeave, PrefHalfDay, PrefAny:
		return Preference(s), nil
	case "":
		return PrefAny, nil
	default:
		return "", fmt.Errorf("unknown preference %q", s)
	}
}

// Valid reports whether p is a member of the closed preference set.
func (p Preference) Valid() bool {
	switch p {
	case PrefEarly, PrefLate, PrefMid, PrefRestRequest, PrefPaidLeave, PrefHalfDay, PrefAny:
		return true
	}
	return false
}

// WantsRest reports whether p is one of the three rest-seeking signals.
// They share the rest decision variable and differ only in the resolved label.
func (p Preference) WantsRest() bool {
	return p == PrefRestRequest || p == PrefPaidLeave || p == PrefHalfDay
}

// NormalizePreferences returns a copy of prefs with PrefMid rewritten to
// PrefAny. Normalization happens exactly once, before model building, so the
// builder never special-cases mid.
func NormalizePreferences(prefs []Preference) []Preference {
	out := make([]Preference, len(prefs))
	for i, p := range prefs {
		if p == PrefMid {
			out[i] = PrefAny
		} else {
			out[i] = p
		}
	}
	return out
}

// =============================================================================
// LABEL - Resolved per-cell output
// =============================================================================

// Label is the reported category for one (employee, day) cell. Work shifts
// map 1:1 from the assignment; a rest slot renders as paid leave or half day
// when that is what was asked for, and as plain rest otherwise.
type Label string

const (
	LabelEarly     Label = "early"
	LabelLate      Label = "late"
	LabelRest      Label = "rest"
	LabelPaidLeave Label = "paid-leave"
	LabelHalfDay   Label = "half-day"
)

// IsRest reports whether the label occupies the rest decision slot.
func (l Label) IsRest() bool {
	return l == LabelRest || l == LabelPaidLeave || l == LabelHalfDay
}

// RestWeight is the contribution of the label to the weighted rest-day
// total: 1 for rest and paid leave, 0.5 for a half day, 0 for work shifts.
func (l Label) RestWeight() decimal.Decimal {
	switch l {
	case LabelRest, LabelPaidLeave:
		return decimal.NewFromInt(1)
	case LabelHalfDay:
		return decimal.NewFromFloat(0.5)
	default:
		return decimal.Zero
	}
}

// ResolveLabel derives the reported label from an assigned shift plus the
// original (normalized) preference for that cell.
func ResolveLabel(s Shift, p Preference) Label {
	switch s {
	case ShiftEarly:
		return LabelEarly
	case ShiftLate:
		return LabelLate
	default:
		switch p {
		case PrefPaidLeave:
			return LabelPaidLeave
		case PrefHalfDay:
			return LabelHalfDay
		default:
			return LabelRest
		}
	}
}

// =============================================================================
// REQUEST - Input for one solve call
// =============================================================================

// Request is the complete, transport-independent input for one invocation.
// Employees carries roster order; that order is preserved in every output.
type Request struct {
	Employees   []string
	Preferences map[string][]Preference
	NumDays     int
}

// =============================================================================
// POLICY - Tunable constraint and reward parameters
// =============================================================================

// Policy holds the rule constants. The defaults are the production
// policy: a 9-11 rest-day band per month regardless of month length, and
// purely positive preference rewards.
//
// RestTarget is the preferred single value inside the band. It is carried
// for reporting but exerts no pressure on the objective; see the solver
// documentation for the rationale.
type Policy struct {
	RestMin    int
	RestMax    int
	RestTarget int

	RewardEarly int // preference early satisfied by early
	RewardLate  int // preference late satisfied by late
	RewardRest  int // any rest-seeking preference satisfied by rest
	RewardAny   int // no stated preference, assigned either work shift

	Budget time.Duration
}

// DefaultPolicy returns the production policy constants.
func DefaultPolicy() Policy {
	return Policy{
		RestMin:     9,
		RestMax:     11,
		RestTarget:  10,
		RewardEarly: 20,
		RewardLate:  20,
		RewardRest:  30,
		RewardAny:   5,
		Budget:      60 * time.Second,
	}
}

// =============================================================================
// OUTPUT BUNDLE
// =============================================================================

// Schedule maps each employee to their resolved labels, one per day.
type Schedule map[string][]Label

// Statistics are the derived per-employee counts. RestDays is weighted:
// rest + paid leave + 0.5 * half day.
type Statistics struct {
	EarlyDays int             `json:"early_days"`
	LateDays  int             `json:"late_days"`
	RestDays  decimal.Decimal `json:"rest_days"`
}

// Result is the full success bundle for one solve invocation.
type Result struct {
	RunID    string
	Status   Status
	Score    int
	Schedule Schedule
	Stats    map[string]Statistics
	Elapsed  time.Duration
}
