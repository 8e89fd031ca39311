/*
Package roster manages planning months, staff lists, and preference
submissions, and orchestrates a solve run against the engine.

The engine is a pure function; this package owns everything stateful around
it: which months exist, who is on the roster, who has submitted, the raw
preference values, and the persisted outcome of the latest solve. Storage is
behind the Store interface so the sqlite implementation stays swappable.
*/
package roster

import (
	"fmt"
	"time"
)

// =============================================================================
// MONTH - Planning period value type
// =============================================================================

// Month identifies one planning month. The wire format is "YYYY-MM".
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses the "YYYY-MM" wire format.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q (want YYYY-MM): %w", s, err)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// CurrentMonth returns the month containing now.
func CurrentMonth(now time.Time) Month {
	return Month{Year: now.Year(), Month: now.Month()}
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Days returns the number of calendar days in the month (28-31).
func (m Month) Days() int {
	// Day zero of the following month is the last day of this one.
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Dates returns every calendar date of the month in order.
func (m Month) Dates() []time.Time {
	n := m.Days()
	out := make([]time.Time, n)
	for i := 0; i < n; i++ {
		out[i] = time.Date(m.Year, m.Month, i+1, 0, 0, 0, 0, time.UTC)
	}
	return out
}

// IsZero reports whether m is the zero value.
func (m Month) IsZero() bool { return m.Year == 0 && m.Month == 0 }
