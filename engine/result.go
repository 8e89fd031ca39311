/*
result.go - Label resolution and per-employee statistics

PURPOSE:
  Converts a raw Assignment into the user-facing bundle. For each employee,
  days are walked in order: work shifts map straight to their labels, and a
  rest slot keeps the paid-leave / half-day distinction of the original
  preference. Statistics count resolved labels only and are never mutated
  afterward; the weighted rest total is rest + paid leave + 0.5 * half day,
  computed in decimal so the half stays exact.

  Extraction is total and side-effect-free for any valid assignment. The
  only failure is a malformed assignment from a broken solver, surfaced as
  *InconsistentAssignmentError from the defensive shape check.
*/
package engine

// Extract resolves the schedule and derives statistics from a completed
// assignment.
func Extract(m *Model, a Assignment) (Schedule, map[string]Statistics, error) {
	if err := m.CheckShape(a); err != nil {
		return nil, nil, err
	}

	schedule := make(Schedule, len(m.Employees))
	stats := make(map[string]Statistics, len(m.Employees))

	for e, name := range m.Employees {
		labels := make([]Label, m.NumDays)
		var st Statistics
		for d := 0; d < m.NumDays; d++ {
			label := ResolveLabel(a[e][d], m.Prefs[e][d])
			labels[d] = label
			switch label {
			case LabelEarly:
				st.EarlyDays++
			case LabelLate:
				st.LateDays++
			default:
				st.RestDays = st.RestDays.Add(label.RestWeight())
			}
		}
		schedule[name] = labels
		stats[name] = st
	}

	return schedule, stats, nil
}
