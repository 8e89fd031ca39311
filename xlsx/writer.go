package xlsx

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/minagawaharuto/shift-automation-tools/engine"
	"github.com/minagawaharuto/shift-automation-tools/roster"
)

// Sheet names in the generated plan book.
const (
	SheetShift      = "Shift"
	SheetRestCount  = "Rest Count"
	SheetCalendar   = "Calendar"
	SheetStatistics = "Statistics"
	SheetComparison = "Comparison"
	sheetOptions    = "Options" // hidden; feeds the dropdown on the shift sheet
)

// labelOptions is the dropdown vocabulary for hand edits on the shift sheet.
var labelOptions = []engine.Label{
	engine.LabelEarly,
	engine.LabelLate,
	engine.LabelRest,
	engine.LabelPaidLeave,
	engine.LabelHalfDay,
}

// PlanBook is everything the plan workbook renders. Staff carries the row
// order; the maps are keyed by staff name.
type PlanBook struct {
	Month       roster.Month
	Staff       []string
	Labels      map[string][]engine.Label
	Preferences map[string][]engine.Preference
	Stats       map[string]engine.Statistics
}

// bookWriter wraps an excelize file so sheet population reads as straight
// assignments. The first error sticks and later calls become no-ops.
type bookWriter struct {
	f   *excelize.File
	err error
}

func (w *bookWriter) cell(sheet string, col, row int, v interface{}) {
	if w.err != nil {
		return
	}
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellValue(sheet, name, v)
}

func (w *bookWriter) formula(sheet string, col, row int, formula string) {
	if w.err != nil {
		return
	}
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellFormula(sheet, name, formula)
}

// WritePlanBook renders the solved month as a workbook. The shift sheet is
// editable (each cell carries a dropdown backed by a hidden options sheet)
// and the rest-count sheet recomputes from it via formulas, so hand edits
// keep the counts honest.
func WritePlanBook(book PlanBook) (*excelize.File, error) {
	numDays := book.Month.Days()
	f := excelize.NewFile()
	w := &bookWriter{f: f}

	if err := f.SetSheetName(f.GetSheetName(0), SheetShift); err != nil {
		return nil, err
	}
	for _, name := range []string{SheetRestCount, SheetCalendar, SheetStatistics, SheetComparison, sheetOptions} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	writeShiftSheet(w, book, numDays)
	writeRestCountSheet(w, book, numDays)
	writeCalendarSheet(w, book, numDays)
	writeStatisticsSheet(w, book)
	writeComparisonSheet(w, book, numDays)

	for i, opt := range labelOptions {
		w.cell(sheetOptions, 1, i+1, string(opt))
	}
	if w.err != nil {
		return nil, fmt.Errorf("populate plan book: %w", w.err)
	}

	if err := addShiftDropdown(f, len(book.Staff), numDays); err != nil {
		return nil, err
	}
	if err := f.SetSheetVisible(sheetOptions, false); err != nil {
		return nil, err
	}
	idx, err := f.GetSheetIndex(SheetShift)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	return f, nil
}

func writeShiftSheet(w *bookWriter, book PlanBook, numDays int) {
	w.cell(SheetShift, 1, 1, "Name")
	for d, date := range book.Month.Dates() {
		w.cell(SheetShift, d+2, 1, date.Format("01/02 Mon"))
	}
	for i, name := range book.Staff {
		w.cell(SheetShift, 1, i+2, name)
		for d, l := range book.Labels[name] {
			if d >= numDays {
				break
			}
			w.cell(SheetShift, d+2, i+2, string(l))
		}
	}
	if w.err == nil {
		last, _ := excelize.ColumnNumberToName(numDays + 1)
		w.err = w.f.SetColWidth(SheetShift, "B", last, 11)
	}
}

// writeRestCountSheet emits COUNTIF formulas over the shift sheet rather
// than baked numbers, so the counts track manual adjustments.
func writeRestCountSheet(w *bookWriter, book PlanBook, numDays int) {
	for i, h := range []string{"Name", "Early", "Late", "Rest (weighted)"} {
		w.cell(SheetRestCount, i+1, 1, h)
	}
	lastCol, err := excelize.ColumnNumberToName(numDays + 1)
	if err != nil {
		w.err = err
		return
	}
	for i, name := range book.Staff {
		row := i + 2
		rng := fmt.Sprintf("'%s'!B%d:%s%d", SheetShift, row, lastCol, row)
		w.cell(SheetRestCount, 1, row, name)
		w.formula(SheetRestCount, 2, row, fmt.Sprintf(`COUNTIF(%s,"%s")`, rng, engine.LabelEarly))
		w.formula(SheetRestCount, 3, row, fmt.Sprintf(`COUNTIF(%s,"%s")`, rng, engine.LabelLate))
		w.formula(SheetRestCount, 4, row, fmt.Sprintf(
			`COUNTIF(%s,"%s")+COUNTIF(%s,"%s")+0.5*COUNTIF(%s,"%s")`,
			rng, engine.LabelRest, rng, engine.LabelPaidLeave, rng, engine.LabelHalfDay))
	}
}

func writeCalendarSheet(w *bookWriter, book PlanBook, numDays int) {
	for i, h := range []string{"Date", "Early", "Late", "Off"} {
		w.cell(SheetCalendar, i+1, 1, h)
	}
	dates := book.Month.Dates()
	for d := 0; d < numDays; d++ {
		var early, late, off []string
		for _, name := range book.Staff {
			row := book.Labels[name]
			if d >= len(row) {
				continue
			}
			switch l := row[d]; {
			case l == engine.LabelEarly:
				early = append(early, name)
			case l == engine.LabelLate:
				late = append(late, name)
			case l.IsRest():
				off = append(off, name)
			}
		}
		row := d + 2
		w.cell(SheetCalendar, 1, row, dates[d].Format("01/02 Mon"))
		w.cell(SheetCalendar, 2, row, strings.Join(early, ", "))
		w.cell(SheetCalendar, 3, row, strings.Join(late, ", "))
		w.cell(SheetCalendar, 4, row, strings.Join(off, ", "))
	}
}

func writeStatisticsSheet(w *bookWriter, book PlanBook) {
	for i, h := range []string{"Name", "Early days", "Late days", "Rest days (weighted)"} {
		w.cell(SheetStatistics, i+1, 1, h)
	}
	for i, name := range book.Staff {
		st := book.Stats[name]
		row := i + 2
		w.cell(SheetStatistics, 1, row, name)
		w.cell(SheetStatistics, 2, row, st.EarlyDays)
		w.cell(SheetStatistics, 3, row, st.LateDays)
		w.cell(SheetStatistics, 4, row, st.RestDays.InexactFloat64())
	}
}

// writeComparisonSheet marks only the cells where the plan diverged from a
// concrete wish. Matched cells and "any" cells stay blank so the misses
// stand out.
func writeComparisonSheet(w *bookWriter, book PlanBook, numDays int) {
	w.cell(SheetComparison, 1, 1, "Name")
	dates := book.Month.Dates()
	for d := 0; d < numDays; d++ {
		w.cell(SheetComparison, d+2, 1, dates[d].Format("01/02"))
	}
	for i, name := range book.Staff {
		w.cell(SheetComparison, 1, i+2, name)
		prefs := book.Preferences[name]
		labels := book.Labels[name]
		for d := 0; d < numDays; d++ {
			if d >= len(prefs) || d >= len(labels) {
				continue
			}
			p := prefs[d]
			if p == engine.PrefAny || p == engine.PrefMid {
				continue
			}
			got := labels[d]
			if preferenceMet(p, got) {
				continue
			}
			w.cell(SheetComparison, d+2, i+2, fmt.Sprintf("wanted %s, got %s", p, got))
		}
	}
}

// preferenceMet reports whether the assigned label satisfies the wish. The
// three rest-seeking wishes are satisfied by any rest-slot label.
func preferenceMet(p engine.Preference, l engine.Label) bool {
	switch p {
	case engine.PrefEarly:
		return l == engine.LabelEarly
	case engine.PrefLate:
		return l == engine.LabelLate
	default:
		return p.WantsRest() && l.IsRest()
	}
}

func addShiftDropdown(f *excelize.File, numStaff, numDays int) error {
	last, err := excelize.CoordinatesToCellName(numDays+1, numStaff+1)
	if err != nil {
		return err
	}
	dv := excelize.NewDataValidation(true)
	dv.Sqref = "B2:" + last
	dv.SetSqrefDropList(fmt.Sprintf("'%s'!$A$1:$A$%d", sheetOptions, len(labelOptions)))
	return f.AddDataValidation(SheetShift, dv)
}
