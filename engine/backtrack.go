/*
backtrack.go - Branch-and-bound backtracking solver

PURPOSE:
  The shipped Solver backend. Depth-first search over cells in a fixed
  day-major order with three pruning devices:

  1. Per-row dynamic program. For each employee a table
     future[day][restSoFar][lastShift] holds the best reward still reachable
     from that state while keeping the rest band attainable and respecting
     the clopening rule inside the row. A negInf entry marks a dead end, so
     rest-band and transition violations are never descended into.
  2. Coverage and capacity propagation. Inside a day, a branch dies as soon
     as the missing shift categories outnumber the employees left to assign.
     At each day boundary, aggregate work capacity is checked against the
     coverage demand of the remaining days, and aggregate rest need against
     the rest slots the coverage rule leaves open.
  3. Optimistic bound. Row DP values summed across employees bound the best
     completion of any node (the DP relaxes only coverage, which couples
     rows). Nodes that cannot beat the incumbent are cut.

  The search is single-threaded and visits values in a fixed
  highest-gain-first order with rest ahead of the work shifts on ties, so a
  given model always produces the same assignment. Rest-first matters: the
  row DP is indifferent to where rest days land, and taking them early
  keeps late-month coverage solvable instead of discovering at day 25 that
  everyone still owes nine rest days. The first descent follows the DP
  greedily; when coverage is slack it lands on the bound immediately and
  optimality is proved on the spot.

TERMINATION:
  exhausted + incumbent   -> StatusOptimal
  exhausted, no incumbent -> StatusInfeasible
  deadline + incumbent    -> StatusFeasible
  deadline, no incumbent  -> StatusTimedOut
*/
package engine

import (
	"context"
	"math"
)

const negInf = math.MinInt / 4

// lastNone marks "no previous day" in the DP last-shift dimension.
const lastNone = int(NumShifts)

// BacktrackSolver is a deterministic branch-and-bound search.
type BacktrackSolver struct {
	// CheckNodes is how many search nodes pass between deadline checks.
	CheckNodes int
}

// NewBacktrackSolver returns the solver with the default deadline-check cadence.
func NewBacktrackSolver() *BacktrackSolver {
	return &BacktrackSolver{CheckNodes: 1024}
}

func (s *BacktrackSolver) Name() string { return "backtrack" }

// Solve runs the search. Infeasible and timed-out are statuses, not errors.
func (s *BacktrackSolver) Solve(ctx context.Context, m *Model) (*Outcome, error) {
	if !m.Feasible() {
		return &Outcome{Status: StatusInfeasible}, nil
	}

	st := &search{
		m:          m,
		ctx:        ctx,
		checkEvery: s.CheckNodes,
		assign:     m.newAssignment(),
		rest:       make([]int, len(m.Employees)),
		last:       make([]int, len(m.Employees)),
	}
	if st.checkEvery <= 0 {
		st.checkEvery = 1024
	}
	for e := range st.last {
		st.last[e] = lastNone
	}
	st.buildFuture()

	// Root bound: if any row has no band-respecting completion at all,
	// the whole model is infeasible.
	st.futSum = 0
	for e := range m.Employees {
		f := st.future[e][0][0][lastNone]
		if f <= negInf {
			return &Outcome{Status: StatusInfeasible}, nil
		}
		st.futSum += f
	}

	st.descend(0, 0, 0)

	switch {
	case st.stopped && st.hasBest:
		return &Outcome{Status: StatusFeasible, Assignment: st.best, Score: st.bestScore}, nil
	case st.stopped:
		return &Outcome{Status: StatusTimedOut}, nil
	case st.hasBest:
		return &Outcome{Status: StatusOptimal, Assignment: st.best, Score: st.bestScore}, nil
	default:
		return &Outcome{Status: StatusInfeasible}, nil
	}
}

// search carries the mutable state of one solve.
type search struct {
	m          *Model
	ctx        context.Context
	checkEvery int

	// future[e][d][rest][last]: best reachable reward for employee e from
	// day d onward, having taken rest rest-days with last as the previous
	// shift. negInf when the rest band cannot be met from there.
	future [][][][]int

	assign Assignment
	rest   []int
	last   []int
	score  int
	futSum int // sum of future values at each employee's current state

	best      Assignment
	bestScore int
	hasBest   bool

	nodes   int
	stopped bool
}

func (st *search) buildFuture() {
	m := st.m
	nD, maxRest := m.NumDays, m.Policy.RestMax
	st.future = make([][][][]int, len(m.Employees))

	for e := range m.Employees {
		tab := make([][][]int, nD+1)
		for d := 0; d <= nD; d++ {
			tab[d] = make([][]int, maxRest+1)
			for r := 0; r <= maxRest; r++ {
				tab[d][r] = make([]int, lastNone+1)
			}
		}
		// Terminal: only rest counts inside the band score zero.
		for r := 0; r <= maxRest; r++ {
			for l := 0; l <= lastNone; l++ {
				if r >= m.Policy.RestMin {
					tab[nD][r][l] = 0
				} else {
					tab[nD][r][l] = negInf
				}
			}
		}
		for d := nD - 1; d >= 0; d-- {
			for r := 0; r <= maxRest; r++ {
				for l := 0; l <= lastNone; l++ {
					best := negInf
					for s := ShiftEarly; s <= ShiftRest; s++ {
						if l == int(ShiftLate) && s == ShiftEarly {
							continue // clopening
						}
						r2 := r
						if s == ShiftRest {
							r2++
							if r2 > maxRest {
								continue
							}
						}
						next := tab[d+1][r2][int(s)]
						if next <= negInf {
							continue
						}
						if v := m.cellReward(m.Prefs[e][d], s) + next; v > best {
							best = v
						}
					}
					tab[d][r][l] = best
				}
			}
		}
		st.future[e] = tab
	}
}

// dayFeasible runs aggregate necessary-condition checks when day d opens:
// the roster's remaining work capacity must cover at least two shifts per
// remaining day, and the outstanding rest debt must fit in the rest slots
// coverage leaves open (at most numEmployees-2 can rest on any day).
func (st *search) dayFeasible(d int) bool {
	m := st.m
	remaining := m.NumDays - d
	workCap, restNeed := 0, 0
	for e := range st.rest {
		need := m.Policy.RestMin - st.rest[e]
		if need < 0 {
			need = 0
		}
		workCap += remaining - need
		restNeed += need
	}
	if workCap < 2*remaining {
		return false
	}
	if restNeed > (len(st.rest)-2)*remaining {
		return false
	}
	return true
}

func (st *search) expired() bool {
	if st.stopped {
		return true
	}
	st.nodes++
	if st.nodes%st.checkEvery == 0 && st.ctx.Err() != nil {
		st.stopped = true
	}
	return st.stopped
}

// descend assigns cell (e, d) where k = d*numEmployees + e. earlyCov and
// lateCov count coverage accumulated inside day d so far.
func (st *search) descend(k, earlyCov, lateCov int) {
	m := st.m
	nE := len(m.Employees)

	if k == nE*m.NumDays {
		// Complete. States passed through the DP, so the band and
		// transitions hold; coverage was enforced per day.
		if !st.hasBest || st.score > st.bestScore {
			st.best = st.assign.clone()
			st.bestScore = st.score
			st.hasBest = true
		}
		return
	}
	if st.expired() {
		return
	}

	d, e := k/nE, k%nE
	if e == 0 && !st.dayFeasible(d) {
		return
	}
	pref := m.Prefs[e][d]
	prevLast, prevRest := st.last[e], st.rest[e]
	prevFut := st.future[e][d][prevRest][prevLast]

	// Candidate values ordered by reward plus DP future, fixed tie order.
	type cand struct {
		s    Shift
		gain int
		fut  int
	}
	var cands [NumShifts]cand
	n := 0
	for _, s := range [NumShifts]Shift{ShiftRest, ShiftEarly, ShiftLate} {
		if prevLast == int(ShiftLate) && s == ShiftEarly {
			continue
		}
		r2 := prevRest
		if s == ShiftRest {
			r2++
			if r2 > m.Policy.RestMax {
				continue
			}
		}
		fut := st.future[e][d+1][r2][int(s)]
		if fut <= negInf {
			continue
		}
		// Coverage still achievable with the employees left in this day?
		ec, lc := earlyCov, lateCov
		switch s {
		case ShiftEarly:
			ec++
		case ShiftLate:
			lc++
		}
		missing := 0
		if ec == 0 {
			missing++
		}
		if lc == 0 {
			missing++
		}
		if missing > nE-e-1 {
			continue
		}
		cands[n] = cand{s: s, gain: m.cellReward(pref, s) + fut, fut: fut}
		n++
	}
	// Insertion sort by descending gain; stable over the fixed shift order.
	for i := 1; i < n; i++ {
		for j := i; j > 0 && cands[j].gain > cands[j-1].gain; j-- {
			cands[j], cands[j-1] = cands[j-1], cands[j]
		}
	}

	for i := 0; i < n && !st.stopped; i++ {
		c := cands[i]
		reward := m.cellReward(pref, c.s)

		newFutSum := st.futSum - prevFut + c.fut
		if st.hasBest && st.score+reward+newFutSum <= st.bestScore {
			continue // cannot beat the incumbent
		}

		st.assign[e][d] = c.s
		st.last[e] = int(c.s)
		if c.s == ShiftRest {
			st.rest[e]++
		}
		st.score += reward
		st.futSum = newFutSum

		ec, lc := earlyCov, lateCov
		switch c.s {
		case ShiftEarly:
			ec++
		case ShiftLate:
			lc++
		}
		if e == nE-1 {
			st.descend(k+1, 0, 0)
		} else {
			st.descend(k+1, ec, lc)
		}

		st.futSum = st.futSum - c.fut + prevFut
		st.score -= reward
		if c.s == ShiftRest {
			st.rest[e]--
		}
		st.last[e] = prevLast
		st.assign[e][d] = ShiftRest
	}
}
