/*
main.go - Batch solve entry point

PURPOSE:
  Solves one month of shift assignments without the HTTP server. Reads a
  request (JSON file or a collected preference workbook), runs the engine,
  and writes a result JSON artifact plus an optional plan workbook.

COMMAND-LINE FLAGS:
  -in      Input path: a request .json file or a preference .xlsx book
  -out     Result JSON path (default: result.json)
  -xlsx    Optional plan workbook output path (requires -month)
  -month   Planning month "YYYY-MM"; required for -xlsx, otherwise only
           used to infer the day count when the input omits it
  -config  Config file for the solve policy (default: config.yaml)
  -budget  Solve budget in seconds, overrides config

EXIT CODES:
  0  solved (optimal or feasible)
  2  proven infeasible
  3  budget exhausted without a schedule
  4  bad input (unreadable file, malformed request, validation failure)
  1  internal error

OUTPUT CONTRACT:
  Diagnostics go to stderr. On success the result path is printed to
  stdout, nothing else.

EXAMPLES:
  ./solve -in=request.json -out=result.json
  ./solve -in=preferences.xlsx -month=2025-11 -xlsx=plan.xlsx
*/
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/minagawaharuto/shift-automation-tools/config"
	"github.com/minagawaharuto/shift-automation-tools/engine"
	"github.com/minagawaharuto/shift-automation-tools/roster"
	"github.com/minagawaharuto/shift-automation-tools/xlsx"
)

const (
	exitOK         = 0
	exitInternal   = 1
	exitInfeasible = 2
	exitTimedOut   = 3
	exitBadInput   = 4
)

// requestJSON is the on-disk request shape. num_days may be omitted when
// -month is given.
type requestJSON struct {
	NumDays     int                 `json:"num_days"`
	Employees   []string            `json:"employees"`
	Preferences map[string][]string `json:"preferences"`
}

// resultJSON is the artifact written on success.
type resultJSON struct {
	RunID      string              `json:"run_id"`
	Status     string              `json:"status"`
	Score      int                 `json:"score"`
	ElapsedMS  int64               `json:"elapsed_ms"`
	Schedule   map[string][]string `json:"schedule"`
	Statistics map[string]statJSON `json:"statistics"`
}

type statJSON struct {
	EarlyDays int    `json:"early_days"`
	LateDays  int    `json:"late_days"`
	RestDays  string `json:"rest_days"`
}

func main() {
	os.Exit(run())
}

func run() int {
	inPath := flag.String("in", "", "request .json or preference .xlsx")
	outPath := flag.String("out", "result.json", "result JSON path")
	xlsxPath := flag.String("xlsx", "", "optional plan workbook output path")
	monthStr := flag.String("month", "", "planning month YYYY-MM")
	configPath := flag.String("config", "config.yaml", "config file path")
	budget := flag.Int("budget", 0, "solve budget in seconds (overrides config)")
	flag.Parse()

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "missing -in")
		return exitBadInput
	}
	if *xlsxPath != "" && *monthStr == "" {
		fmt.Fprintln(os.Stderr, "-xlsx requires -month")
		return exitBadInput
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return exitBadInput
	}
	policy := cfg.Policy()
	if *budget > 0 {
		policy.Budget = time.Duration(*budget) * time.Second
	}

	var month roster.Month
	if *monthStr != "" {
		month, err = roster.ParseMonth(*monthStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "month: %v\n", err)
			return exitBadInput
		}
	}

	req, err := readRequest(*inPath, month)
	if err != nil {
		fmt.Fprintf(os.Stderr, "input: %v\n", err)
		return exitBadInput
	}
	if *xlsxPath != "" && req.NumDays != month.Days() {
		fmt.Fprintf(os.Stderr, "input has %d days but %s has %d\n", req.NumDays, month, month.Days())
		return exitBadInput
	}

	result, err := engine.Plan(context.Background(), req, policy)
	switch {
	case err == nil:
	case errors.Is(err, engine.ErrInfeasible):
		fmt.Fprintln(os.Stderr, "no feasible schedule exists for this input")
		return exitInfeasible
	case errors.Is(err, engine.ErrTimedOut):
		fmt.Fprintf(os.Stderr, "budget of %s exhausted without a schedule\n", policy.Budget)
		return exitTimedOut
	case engine.IsInputError(err):
		fmt.Fprintf(os.Stderr, "invalid request: %v\n", err)
		return exitBadInput
	default:
		fmt.Fprintf(os.Stderr, "solve: %v\n", err)
		return exitInternal
	}

	if err := writeResult(*outPath, result); err != nil {
		fmt.Fprintf(os.Stderr, "write result: %v\n", err)
		return exitInternal
	}
	if *xlsxPath != "" {
		if err := writeWorkbook(*xlsxPath, month, req, result); err != nil {
			fmt.Fprintf(os.Stderr, "write workbook: %v\n", err)
			return exitInternal
		}
	}

	fmt.Println(*outPath)
	return exitOK
}

// readRequest loads either a preference workbook or a request JSON file,
// dispatching on the file extension.
func readRequest(path string, month roster.Month) (engine.Request, error) {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		f, err := os.Open(path)
		if err != nil {
			return engine.Request{}, err
		}
		defer f.Close()
		return xlsx.ReadPreferenceBook(f)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return engine.Request{}, err
	}
	var raw requestJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return engine.Request{}, fmt.Errorf("parse %s: %w", path, err)
	}

	numDays := raw.NumDays
	if numDays == 0 && !month.IsZero() {
		numDays = month.Days()
	}
	req := engine.Request{
		Employees:   raw.Employees,
		Preferences: make(map[string][]engine.Preference, len(raw.Preferences)),
		NumDays:     numDays,
	}
	for name, row := range raw.Preferences {
		values := make([]engine.Preference, len(row))
		for i, v := range row {
			p, err := engine.ParsePreference(v)
			if err != nil {
				return engine.Request{}, fmt.Errorf("%s, day %d: %w", name, i+1, err)
			}
			values[i] = p
		}
		req.Preferences[name] = values
	}
	return req, nil
}

func writeResult(path string, result *engine.Result) error {
	out := resultJSON{
		RunID:      result.RunID,
		Status:     result.Status.String(),
		Score:      result.Score,
		ElapsedMS:  result.Elapsed.Milliseconds(),
		Schedule:   make(map[string][]string, len(result.Schedule)),
		Statistics: make(map[string]statJSON, len(result.Stats)),
	}
	for name, row := range result.Schedule {
		cells := make([]string, len(row))
		for i, l := range row {
			cells[i] = string(l)
		}
		out.Schedule[name] = cells
	}
	for name, st := range result.Stats {
		out.Statistics[name] = statJSON{
			EarlyDays: st.EarlyDays,
			LateDays:  st.LateDays,
			RestDays:  st.RestDays.String(),
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func writeWorkbook(path string, month roster.Month, req engine.Request, result *engine.Result) error {
	book, err := xlsx.WritePlanBook(xlsx.PlanBook{
		Month:       month,
		Staff:       req.Employees,
		Labels:      result.Schedule,
		Preferences: req.Preferences,
		Stats:       result.Stats,
	})
	if err != nil {
		return err
	}
	defer book.Close()
	return book.SaveAs(path)
}
