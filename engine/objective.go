/*
objective.go - Preference rewards

PURPOSE:
  Composes the scalar the solver maximizes. The objective is built
  additively per (employee, day) from the recorded preference:

    early wish satisfied by early            +RewardEarly (20)
    late wish satisfied by late              +RewardLate  (20)
    rest-seeking wish satisfied by rest      +RewardRest  (30)
    no stated wish, assigned early or late   +RewardAny   (5)
    anything else                            0

  There are no penalty terms: unmet wishes simply earn nothing, and the
  feasible region is already carved out by the hard constraints. Ties among
  equally scoring feasible assignments are broken by the solver's fixed
  variable and value order, so identical input yields identical output.

REST TARGET:
  Policy.RestTarget names a preferred value inside the rest band but
  contributes no reward term: the band alone shapes rest counts, and the
  target is carried for reporting only. Linking it into the objective would
  change published schedules, so it stays inert on purpose. See DESIGN.md
  for the decision record.
*/
package engine

// cellReward is the objective contribution of assigning shift s to a cell
// whose recorded preference is p.
func (m *Model) cellReward(p Preference, s Shift) int {
	switch {
	case p == PrefEarly && s == ShiftEarly:
		return m.Policy.RewardEarly
	case p == PrefLate && s == ShiftLate:
		return m.Policy.RewardLate
	case p.WantsRest() && s == ShiftRest:
		return m.Policy.RewardRest
	case p == PrefAny && (s == ShiftEarly || s == ShiftLate):
		return m.Policy.RewardAny
	default:
		return 0
	}
}

// Score evaluates the full objective over a complete assignment.
func (m *Model) Score(a Assignment) int {
	total := 0
	for e := range a {
		for d, s := range a[e] {
			total += m.cellReward(m.Prefs[e][d], s)
		}
	}
	return total
}
