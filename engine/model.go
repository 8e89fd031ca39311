/*
model.go - Request validation and the decision-variable grid

PURPOSE:
  Turns a Request plus a Policy into a Model: a dense employees x days grid
  of preference values with one implicit Shift variable per cell. Building
  is a pure transformation; every way a request can be malformed is caught
  here so the solver only ever sees well-formed input.

VALIDATION RULES:
  - at least one employee, names unique and non-empty
  - NumDays >= 1
  - every employee has a preference row of exactly NumDays values
  - every value is a member of the closed preference set

SEE ALSO:
  - types.go: Request, Preference, NormalizePreferences
  - constraints.go: rules evaluated over Assignment
*/
package engine

// Model is the validated input for one solve: the variable grid plus the
// policy constants. Prefs is indexed [employee][day] in roster order and is
// already normalized (no PrefMid remains).
type Model struct {
	Employees []string
	NumDays   int
	Prefs     [][]Preference
	Policy    Policy
}

// Assignment holds one Shift per (employee, day), indexed like Model.Prefs.
// It is the sole product of a successful solve.
type Assignment [][]Shift

// BuildModel validates req and produces the variable grid. It fails with a
// *ModelBuildError and never triggers a solve on malformed input.
func BuildModel(req Request, policy Policy) (*Model, error) {
	if len(req.Employees) == 0 {
		return nil, &ModelBuildError{Reason: "empty roster"}
	}
	if req.NumDays < 1 {
		return nil, &ModelBuildError{Reason: "non-positive day count"}
	}

	seen := make(map[string]bool, len(req.Employees))
	prefs := make([][]Preference, len(req.Employees))
	for i, name := range req.Employees {
		if name == "" {
			return nil, &ModelBuildError{Reason: "empty employee name"}
		}
		if seen[name] {
			return nil, &ModelBuildError{Employee: name, Reason: "duplicate name"}
		}
		seen[name] = true

		row, ok := req.Preferences[name]
		if !ok {
			return nil, &ModelBuildError{Employee: name, Reason: "missing preference row"}
		}
		if len(row) != req.NumDays {
			return nil, &ModelBuildError{
				Employee: name,
				Reason:   "preference row length does not match day count",
			}
		}
		for _, p := range row {
			if !p.Valid() {
				return nil, &ModelBuildError{Employee: name, Reason: "unknown preference value"}
			}
		}
		prefs[i] = NormalizePreferences(row)
	}

	return &Model{
		Employees: append([]string(nil), req.Employees...),
		NumDays:   req.NumDays,
		Prefs:     prefs,
		Policy:    policy,
	}, nil
}

// newAssignment allocates an all-rest grid sized for the model.
func (m *Model) newAssignment() Assignment {
	a := make(Assignment, len(m.Employees))
	for e := range a {
		a[e] = make([]Shift, m.NumDays)
		for d := range a[e] {
			a[e][d] = ShiftRest
		}
	}
	return a
}

// clone deep-copies an assignment, used to retain the incumbent during search.
func (a Assignment) clone() Assignment {
	out := make(Assignment, len(a))
	for e := range a {
		out[e] = append([]Shift(nil), a[e]...)
	}
	return out
}
