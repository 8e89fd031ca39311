package roster_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minagawaharuto/shift-automation-tools/engine"
	"github.com/minagawaharuto/shift-automation-tools/roster"
	"github.com/minagawaharuto/shift-automation-tools/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestService(t *testing.T) *roster.Service {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	svc := roster.NewService(store)
	svc.Policy.Budget = 10 * time.Second
	return svc
}

func november() roster.Month {
	return roster.Month{Year: 2025, Month: time.November} // 30 days
}

func prefRow(p engine.Preference, n int) []engine.Preference {
	row := make([]engine.Preference, n)
	for i := range row {
		row[i] = p
	}
	return row
}

func fourStaff() []string {
	return []string{"sato", "suzuki", "tanaka", "ito"}
}

// =============================================================================
// ROSTER MANAGEMENT
// =============================================================================

func TestSetupMonth_PreservesRosterOrder(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SetupMonth(ctx, november(), fourStaff()))

	progress, err := svc.Progress(ctx, november())
	require.NoError(t, err)
	require.Len(t, progress.Staff, 4)
	for i, name := range fourStaff() {
		assert.Equal(t, name, progress.Staff[i].Name)
		assert.False(t, progress.Staff[i].Submitted)
	}
	assert.False(t, progress.AllSubmitted)
	assert.False(t, progress.HasResult)
}

func TestSetupMonth_Duplicate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SetupMonth(ctx, november(), fourStaff()))
	err := svc.SetupMonth(ctx, november(), fourStaff())
	assert.ErrorIs(t, err, roster.ErrMonthExists)
}

func TestAddRemoveStaff(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SetupMonth(ctx, november(), fourStaff()))

	require.NoError(t, svc.AddStaff(ctx, november(), "watanabe"))
	assert.ErrorIs(t, svc.AddStaff(ctx, november(), "watanabe"), roster.ErrStaffExists)

	progress, err := svc.Progress(ctx, november())
	require.NoError(t, err)
	require.Len(t, progress.Staff, 5)
	assert.Equal(t, "watanabe", progress.Staff[4].Name) // appended at the end

	require.NoError(t, svc.RemoveStaff(ctx, november(), "watanabe"))
	assert.ErrorIs(t, svc.RemoveStaff(ctx, november(), "watanabe"), roster.ErrStaffNotFound)
	assert.ErrorIs(t, svc.AddStaff(ctx, roster.Month{Year: 2030, Month: 1}, "x"), roster.ErrMonthNotFound)
}

// =============================================================================
// SUBMISSIONS
// =============================================================================

func TestSubmitPreferences_LengthChecked(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SetupMonth(ctx, november(), fourStaff()))

	err := svc.SubmitPreferences(ctx, november(), "sato", prefRow(engine.PrefAny, 29))
	var lengthErr *roster.SubmissionLengthError
	require.ErrorAs(t, err, &lengthErr)
	assert.Equal(t, 30, lengthErr.Want)

	require.NoError(t, svc.SubmitPreferences(ctx, november(), "sato", prefRow(engine.PrefAny, 30)))

	progress, err := svc.Progress(ctx, november())
	require.NoError(t, err)
	assert.True(t, progress.Staff[0].Submitted)
	require.NotNil(t, progress.Staff[0].SubmittedAt)
}

func TestSubmitPreferences_UnknownValueRejected(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SetupMonth(ctx, november(), fourStaff()))

	row := prefRow(engine.PrefAny, 30)
	row[3] = engine.Preference("night")
	err := svc.SubmitPreferences(ctx, november(), "sato", row)
	assert.True(t, engine.IsInputError(err))
}

func TestSubmitPreferences_ResubmissionOverwrites(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SetupMonth(ctx, november(), fourStaff()))
	require.NoError(t, svc.SubmitPreferences(ctx, november(), "sato", prefRow(engine.PrefEarly, 30)))
	require.NoError(t, svc.SubmitPreferences(ctx, november(), "sato", prefRow(engine.PrefLate, 30)))

	req, err := svc.BuildRequest(ctx, november())
	require.NoError(t, err)
	assert.Equal(t, prefRow(engine.PrefLate, 30), req.Preferences["sato"])
}

func TestBuildRequest_DefaultsUnsubmittedToAny(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SetupMonth(ctx, november(), fourStaff()))
	require.NoError(t, svc.SubmitPreferences(ctx, november(), "sato", prefRow(engine.PrefEarly, 30)))

	req, err := svc.BuildRequest(ctx, november())
	require.NoError(t, err)
	assert.Equal(t, fourStaff(), req.Employees)
	assert.Equal(t, 30, req.NumDays)
	assert.Equal(t, prefRow(engine.PrefAny, 30), req.Preferences["suzuki"])
}

// =============================================================================
// SOLVE ORCHESTRATION
// =============================================================================

func TestRunSolve_RequiresAllSubmitted(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SetupMonth(ctx, november(), fourStaff()))
	require.NoError(t, svc.SubmitPreferences(ctx, november(), "sato", prefRow(engine.PrefAny, 30)))

	_, err := svc.RunSolve(ctx, november())
	assert.ErrorIs(t, err, roster.ErrNotAllSubmitted)

	_, _, err = svc.Result(ctx, november())
	assert.ErrorIs(t, err, roster.ErrNoResult, "a failed solve must persist nothing")
}

func TestRunSolve_PersistsResult(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SetupMonth(ctx, november(), fourStaff()))
	for _, name := range fourStaff() {
		require.NoError(t, svc.SubmitPreferences(ctx, november(), name, prefRow(engine.PrefAny, 30)))
	}

	result, err := svc.RunSolve(ctx, november())
	require.NoError(t, err)
	assert.True(t, result.Status.Success())

	record, stats, err := svc.Result(ctx, november())
	require.NoError(t, err)
	assert.Equal(t, result.RunID, record.RunID)
	require.Len(t, record.Labels, 4)

	for _, name := range fourStaff() {
		labels := record.Labels[name]
		require.Len(t, labels, 30)

		rest := 0
		for _, l := range labels {
			if l.IsRest() {
				rest++
			}
		}
		assert.GreaterOrEqual(t, rest, 9, name)
		assert.LessOrEqual(t, rest, 11, name)

		// Derived statistics agree with the engine's own.
		assert.Equal(t, result.Stats[name].EarlyDays, stats[name].EarlyDays, name)
		assert.Equal(t, result.Stats[name].LateDays, stats[name].LateDays, name)
		assert.True(t, result.Stats[name].RestDays.Equal(stats[name].RestDays), name)
	}
}

func TestRunSolve_InfeasiblePassesThroughTyped(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// Two staff can never cover both shifts and still take nine rest days.
	require.NoError(t, svc.SetupMonth(ctx, november(), []string{"sato", "suzuki"}))
	require.NoError(t, svc.SubmitPreferences(ctx, november(), "sato", prefRow(engine.PrefAny, 30)))
	require.NoError(t, svc.SubmitPreferences(ctx, november(), "suzuki", prefRow(engine.PrefAny, 30)))

	_, err := svc.RunSolve(ctx, november())
	assert.ErrorIs(t, err, engine.ErrInfeasible)

	_, _, err = svc.Result(ctx, november())
	assert.ErrorIs(t, err, roster.ErrNoResult)
}
