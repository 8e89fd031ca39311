package roster

import (
	"context"
	"time"

	"github.com/minagawaharuto/shift-automation-tools/engine"
)

// =============================================================================
// DOMAIN RECORDS
// =============================================================================

// Staff is one roster entry for a planning month. Position is insertion
// order and is preserved in every output, including the solved schedule.
type Staff struct {
	Name        string
	Position    int
	Submitted   bool
	SubmittedAt *time.Time
}

// Progress summarizes submission state for a month.
type Progress struct {
	Month        Month
	Staff        []Staff
	AllSubmitted bool
	HasResult    bool
}

// ScheduleRecord is the persisted outcome of the latest successful solve
// for a month.
type ScheduleRecord struct {
	RunID    string
	Month    Month
	Status   engine.Status
	Score    int
	Labels   map[string][]engine.Label
	SolvedAt time.Time
}

// =============================================================================
// STORE - Persistence boundary
// =============================================================================

// Store persists months, roster entries, raw preference rows, and solve
// outcomes. Implementations serialize access per month; the engine itself
// holds no state between invocations.
type Store interface {
	// CreateMonth creates a month with its ordered roster.
	// Returns ErrMonthExists if the month is already set up.
	CreateMonth(ctx context.Context, month Month, names []string) error

	// MonthExists reports whether the month has been set up.
	MonthExists(ctx context.Context, month Month) (bool, error)

	// ListStaff returns the roster in insertion order.
	// Returns ErrMonthNotFound for unknown months.
	ListStaff(ctx context.Context, month Month) ([]Staff, error)

	// AddStaff appends a name to the roster. Returns ErrStaffExists on
	// duplicates.
	AddStaff(ctx context.Context, month Month, name string) error

	// RemoveStaff deletes a roster entry along with any submitted
	// preferences. Returns ErrStaffNotFound for unknown names.
	RemoveStaff(ctx context.Context, month Month, name string) error

	// SavePreferences stores a full preference row for one staff member
	// and marks them submitted. Resubmission overwrites.
	SavePreferences(ctx context.Context, month Month, name string, values []engine.Preference, submittedAt time.Time) error

	// GetPreferences returns the stored row, or ok=false if none was
	// submitted yet.
	GetPreferences(ctx context.Context, month Month, name string) (values []engine.Preference, ok bool, err error)

	// SaveSchedule persists a solve outcome, replacing any previous one
	// for the month.
	SaveSchedule(ctx context.Context, record ScheduleRecord) error

	// GetSchedule returns the latest outcome. Returns ErrNoResult when
	// the month has not been solved.
	GetSchedule(ctx context.Context, month Month) (*ScheduleRecord, error)
}
