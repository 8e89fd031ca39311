package xlsx

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/minagawaharuto/shift-automation-tools/engine"
	"github.com/minagawaharuto/shift-automation-tools/roster"
)

// preferenceWorkbook builds an in-memory preference book in the exchange
// layout: header row, names in column A, one column per day.
func preferenceWorkbook(t *testing.T, rows map[string][]string, order []string, numDays int) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "Name"))
	for d := 0; d < numDays; d++ {
		cell, err := excelize.CoordinatesToCellName(d+2, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, time.Date(2025, 11, d+1, 0, 0, 0, 0, time.UTC).Format("01/02")))
	}
	for i, name := range order {
		require.NoError(t, f.SetCellValue(sheet, mustCell(t, 1, i+2), name))
		for d, v := range rows[name] {
			require.NoError(t, f.SetCellValue(sheet, mustCell(t, d+2, i+2), v))
		}
	}
	return f
}

func mustCell(t *testing.T, col, row int) string {
	t.Helper()
	cell, err := excelize.CoordinatesToCellName(col, row)
	require.NoError(t, err)
	return cell
}

func TestReadPreferenceBook(t *testing.T) {
	rows := map[string][]string{
		"sato":   {"early", "", "mid"},
		"suzuki": {"paid-leave", "late", ""},
	}
	f := preferenceWorkbook(t, rows, []string{"sato", "suzuki"}, 3)
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	req, err := ReadPreferenceBook(buf)
	require.NoError(t, err)

	assert.Equal(t, 3, req.NumDays)
	assert.Equal(t, []string{"sato", "suzuki"}, req.Employees)
	assert.Equal(t,
		[]engine.Preference{engine.PrefEarly, engine.PrefAny, engine.PrefMid},
		req.Preferences["sato"])
	assert.Equal(t,
		[]engine.Preference{engine.PrefPaidLeave, engine.PrefLate, engine.PrefAny},
		req.Preferences["suzuki"])
}

func TestReadPreferenceBook_ShortRowPadsWithAny(t *testing.T) {
	rows := map[string][]string{"sato": {"early"}}
	f := preferenceWorkbook(t, rows, []string{"sato"}, 3)
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	req, err := ReadPreferenceBook(buf)
	require.NoError(t, err)
	assert.Equal(t,
		[]engine.Preference{engine.PrefEarly, engine.PrefAny, engine.PrefAny},
		req.Preferences["sato"])
}

func TestReadPreferenceBook_RejectsUnknownValue(t *testing.T) {
	rows := map[string][]string{"sato": {"night", "", ""}}
	f := preferenceWorkbook(t, rows, []string{"sato"}, 3)
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	_, err = ReadPreferenceBook(buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "night")
	assert.Contains(t, err.Error(), "sato")
}

func testPlanBook(t *testing.T) PlanBook {
	t.Helper()
	month, err := roster.ParseMonth("2025-11")
	require.NoError(t, err)
	days := month.Days()

	labels := map[string][]engine.Label{
		"sato":   make([]engine.Label, days),
		"suzuki": make([]engine.Label, days),
	}
	prefs := map[string][]engine.Preference{
		"sato":   make([]engine.Preference, days),
		"suzuki": make([]engine.Preference, days),
	}
	for d := 0; d < days; d++ {
		labels["sato"][d] = engine.LabelEarly
		labels["suzuki"][d] = engine.LabelLate
		prefs["sato"][d] = engine.PrefAny
		prefs["suzuki"][d] = engine.PrefAny
	}
	labels["sato"][0] = engine.LabelPaidLeave
	prefs["sato"][0] = engine.PrefPaidLeave
	labels["sato"][1] = engine.LabelRest
	prefs["sato"][1] = engine.PrefLate // unmet wish, should surface on the comparison sheet

	return PlanBook{
		Month:       month,
		Staff:       []string{"sato", "suzuki"},
		Labels:      labels,
		Preferences: prefs,
		Stats: map[string]engine.Statistics{
			"sato":   {EarlyDays: days - 2, LateDays: 0, RestDays: decimal.NewFromInt(2)},
			"suzuki": {EarlyDays: 0, LateDays: days, RestDays: decimal.Zero},
		},
	}
}

func TestWritePlanBook_ShiftSheet(t *testing.T) {
	f, err := WritePlanBook(testPlanBook(t))
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue(SheetShift, "A2")
	require.NoError(t, err)
	assert.Equal(t, "sato", v)

	v, err = f.GetCellValue(SheetShift, "B2")
	require.NoError(t, err)
	assert.Equal(t, "paid-leave", v)

	v, err = f.GetCellValue(SheetShift, "B1")
	require.NoError(t, err)
	assert.Equal(t, "11/01 Sat", v)
}

func TestWritePlanBook_RestCountFormulas(t *testing.T) {
	f, err := WritePlanBook(testPlanBook(t))
	require.NoError(t, err)
	defer f.Close()

	formula, err := f.GetCellFormula(SheetRestCount, "B2")
	require.NoError(t, err)
	assert.Contains(t, formula, "COUNTIF")
	assert.Contains(t, formula, `"early"`)

	formula, err = f.GetCellFormula(SheetRestCount, "D2")
	require.NoError(t, err)
	assert.Contains(t, formula, `0.5*COUNTIF`)
	assert.Contains(t, formula, `"half-day"`)
}

func TestWritePlanBook_CalendarAndStatistics(t *testing.T) {
	f, err := WritePlanBook(testPlanBook(t))
	require.NoError(t, err)
	defer f.Close()

	// Day 3 onward sato works early and suzuki works late.
	v, err := f.GetCellValue(SheetCalendar, "B4")
	require.NoError(t, err)
	assert.Equal(t, "sato", v)
	v, err = f.GetCellValue(SheetCalendar, "C4")
	require.NoError(t, err)
	assert.Equal(t, "suzuki", v)
	// Day 1: sato is on paid leave.
	v, err = f.GetCellValue(SheetCalendar, "D2")
	require.NoError(t, err)
	assert.Equal(t, "sato", v)

	v, err = f.GetCellValue(SheetStatistics, "C3")
	require.NoError(t, err)
	assert.Equal(t, "30", v)
}

func TestWritePlanBook_ComparisonMarksOnlyMisses(t *testing.T) {
	f, err := WritePlanBook(testPlanBook(t))
	require.NoError(t, err)
	defer f.Close()

	// Paid leave wish was granted: blank.
	v, err := f.GetCellValue(SheetComparison, "B2")
	require.NoError(t, err)
	assert.Empty(t, v)

	// Late wish on day 2 resolved to rest: marked.
	v, err = f.GetCellValue(SheetComparison, "C2")
	require.NoError(t, err)
	assert.Equal(t, "wanted late, got rest", v)

	// "any" rows stay blank.
	v, err = f.GetCellValue(SheetComparison, "B3")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestWritePlanBook_OptionsSheetHiddenWithDropdown(t *testing.T) {
	f, err := WritePlanBook(testPlanBook(t))
	require.NoError(t, err)
	defer f.Close()

	visible, err := f.GetSheetVisible(sheetOptions)
	require.NoError(t, err)
	assert.False(t, visible)

	dvs, err := f.GetDataValidations(SheetShift)
	require.NoError(t, err)
	require.Len(t, dvs, 1)
	assert.Equal(t, "B2:AE3", dvs[0].Sqref)
}
