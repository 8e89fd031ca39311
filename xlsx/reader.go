/*
Package xlsx is the workbook boundary: it reads collected preference books
and writes the finished plan book.

The interchange shape matches what the operators already exchange: names in
column A, one column per calendar day, preference words in the cells. Blank
cells mean "any"; format quirks beyond that are rejected rather than
guessed at. Everything here converts to and from engine types at the edge,
so workbook vocabulary never leaks into the core.
*/
package xlsx

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/minagawaharuto/shift-automation-tools/engine"
)

// ReadPreferenceBook parses a collected preference workbook into an engine
// request. The first sheet is used: row 1 is the header (name column plus
// one column per day), each following row is one staff member. The day
// count is taken from the header width.
func ReadPreferenceBook(r io.Reader) (engine.Request, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return engine.Request{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return engine.Request{}, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return engine.Request{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 || len(rows[0]) < 2 {
		return engine.Request{}, fmt.Errorf("sheet %q is not a preference table", sheet)
	}

	numDays := len(rows[0]) - 1
	req := engine.Request{
		Preferences: make(map[string][]engine.Preference),
		NumDays:     numDays,
	}

	for i, row := range rows[1:] {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue // trailing blank rows are common in hand-edited books
		}
		name := strings.TrimSpace(row[0])
		values := make([]engine.Preference, numDays)
		for d := 0; d < numDays; d++ {
			cell := ""
			if d+1 < len(row) {
				cell = strings.TrimSpace(row[d+1])
			}
			p, err := engine.ParsePreference(cell)
			if err != nil {
				return engine.Request{}, fmt.Errorf("row %d (%s), day %d: %w", i+2, name, d+1, err)
			}
			values[d] = p
		}
		req.Employees = append(req.Employees, name)
		req.Preferences[name] = values
	}

	if len(req.Employees) == 0 {
		return engine.Request{}, fmt.Errorf("sheet %q has no staff rows", sheet)
	}
	return req, nil
}
