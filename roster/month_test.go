package roster_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minagawaharuto/shift-automation-tools/roster"
)

func TestParseMonth(t *testing.T) {
	m, err := roster.ParseMonth("2025-11")
	require.NoError(t, err)
	assert.Equal(t, 2025, m.Year)
	assert.Equal(t, time.November, m.Month)
	assert.Equal(t, "2025-11", m.String())

	_, err = roster.ParseMonth("November 2025")
	assert.Error(t, err)

	_, err = roster.ParseMonth("2025-13")
	assert.Error(t, err)
}

func TestMonthDays(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"2025-11", 30},
		{"2025-12", 31},
		{"2025-02", 28},
		{"2024-02", 29}, // leap year
	}
	for _, tc := range cases {
		m, err := roster.ParseMonth(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, m.Days(), tc.in)
		assert.Len(t, m.Dates(), tc.want, tc.in)
	}
}

func TestCurrentMonth(t *testing.T) {
	now := time.Date(2025, time.June, 17, 9, 30, 0, 0, time.UTC)
	m := roster.CurrentMonth(now)
	assert.Equal(t, "2025-06", m.String())
}
