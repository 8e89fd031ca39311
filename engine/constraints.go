/*
constraints.go - The fixed hard-constraint set

PURPOSE:
  The four rules every accepted assignment must satisfy simultaneously:

  1. Exclusivity       One shift category per (employee, day). Holds by
                       construction (Assignment stores a single Shift per
                       cell); CheckShape guards the decision domain.
  2. Minimum coverage  Every day has at least one early and one late.
  3. No clopening      late on day d forbids early on day d+1 for the same
                       employee (minimum-turnaround labor rule).
  4. Rest-count band   Per-employee rest days across the month lie in
                       [Policy.RestMin, Policy.RestMax]. A policy constant,
                       not derived from month length.

  Validate re-evaluates all rules over a complete assignment. The solver
  enforces the same rules incrementally during search; Validate is the
  single source of truth and gates every solver outcome before extraction.

SEE ALSO:
  - solver.go: incremental enforcement during search
  - result.go: CheckShape before label resolution
*/
package engine

import "fmt"

// Violation describes one broken rule in a candidate assignment.
type Violation struct {
	Rule     string // "coverage", "clopening", "rest-band"
	Employee string // empty for day-scoped rules
	Day      int    // -1 for month-scoped rules
	Detail   string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: employee=%q day=%d: %s", v.Rule, v.Employee, v.Day, v.Detail)
}

// CheckShape verifies the assignment matches the model dimensions and stays
// inside the decision domain. Should be unreachable with a conforming solver.
func (m *Model) CheckShape(a Assignment) error {
	if len(a) != len(m.Employees) {
		return &InconsistentAssignmentError{Day: -1, Detail: "employee dimension mismatch"}
	}
	for e, row := range a {
		if len(row) != m.NumDays {
			return &InconsistentAssignmentError{Employee: m.Employees[e], Day: -1, Detail: "day dimension mismatch"}
		}
		for d, s := range row {
			if !s.Valid() {
				return &InconsistentAssignmentError{
					Employee: m.Employees[e],
					Day:      d,
					Detail:   fmt.Sprintf("shift value %d outside domain", int8(s)),
				}
			}
		}
	}
	return nil
}

// Validate evaluates every hard constraint over a complete assignment and
// returns all violations. An empty result means the assignment is feasible.
func (m *Model) Validate(a Assignment) []Violation {
	var out []Violation

	// Minimum coverage per day.
	for d := 0; d < m.NumDays; d++ {
		early, late := 0, 0
		for e := range a {
			switch a[e][d] {
			case ShiftEarly:
				early++
			case ShiftLate:
				late++
			}
		}
		if early == 0 {
			out = append(out, Violation{Rule: "coverage", Day: d, Detail: "no early shift"})
		}
		if late == 0 {
			out = append(out, Violation{Rule: "coverage", Day: d, Detail: "no late shift"})
		}
	}

	// No clopening.
	for e := range a {
		for d := 0; d+1 < m.NumDays; d++ {
			if a[e][d] == ShiftLate && a[e][d+1] == ShiftEarly {
				out = append(out, Violation{
					Rule:     "clopening",
					Employee: m.Employees[e],
					Day:      d,
					Detail:   "late followed by early",
				})
			}
		}
	}

	// Rest-count band.
	for e := range a {
		rest := 0
		for d := 0; d < m.NumDays; d++ {
			if a[e][d] == ShiftRest {
				rest++
			}
		}
		if rest < m.Policy.RestMin || rest > m.Policy.RestMax {
			out = append(out, Violation{
				Rule:     "rest-band",
				Employee: m.Employees[e],
				Day:      -1,
				Detail: fmt.Sprintf("rest days %d outside [%d, %d]",
					rest, m.Policy.RestMin, m.Policy.RestMax),
			})
		}
	}

	return out
}

// Feasible reports whether the model can possibly admit any assignment,
// using cheap necessary conditions checked before search starts:
// the rest band must fit in the month, and with the band forcing work days,
// at least two distinct employees are needed to cover both shifts on any
// day (one person cannot open and close at once).
func (m *Model) Feasible() bool {
	if m.Policy.RestMin > m.NumDays {
		return false
	}
	if len(m.Employees) < 2 && m.NumDays >= 1 {
		// A single employee can never hold early and late on the same day.
		return false
	}
	return true
}
