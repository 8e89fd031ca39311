/*
service.go - Roster operations and solve orchestration

PURPOSE:
  The application-facing surface over Store + engine:

    SetupMonth         create a month with its ordered roster
    AddStaff/RemoveStaff
    SubmitPreferences  one full row per staff member, length-checked
    Progress           who has submitted, is the month complete
    BuildRequest       assemble the engine input from stored rows
    RunSolve           guard completeness, solve, persist the outcome
    Result             load the persisted schedule + fresh statistics

  RunSolve is all-or-nothing: a failed solve persists nothing and the
  typed engine error passes through untouched, so the transport layer can
  map infeasible / timed-out / malformed-input without string inspection.

SEE ALSO:
  - ../engine/solver.go: the solve pipeline RunSolve drives
  - ../store/sqlite/sqlite.go: the Store implementation
*/
package roster

import (
	"context"
	"log"
	"time"

	"github.com/minagawaharuto/shift-automation-tools/engine"
)

// Service wires the store to the engine. Policy carries the band, reward,
// and budget constants; Now is injectable for tests.
type Service struct {
	Store  Store
	Policy engine.Policy
	Solver engine.Solver
	Now    func() time.Time
}

// NewService builds a Service with the default policy and solver.
func NewService(store Store) *Service {
	return &Service{
		Store:  store,
		Policy: engine.DefaultPolicy(),
		Solver: engine.NewBacktrackSolver(),
		Now:    time.Now,
	}
}

// SetupMonth creates the month with its ordered roster.
func (s *Service) SetupMonth(ctx context.Context, month Month, names []string) error {
	return s.Store.CreateMonth(ctx, month, names)
}

// AddStaff appends one name to an existing month's roster.
func (s *Service) AddStaff(ctx context.Context, month Month, name string) error {
	return s.Store.AddStaff(ctx, month, name)
}

// RemoveStaff drops a roster entry and any submitted preferences.
func (s *Service) RemoveStaff(ctx context.Context, month Month, name string) error {
	return s.Store.RemoveStaff(ctx, month, name)
}

// SubmitPreferences records one staff member's full preference row. The
// row length must equal the month's day count; values are kept raw (mid
// included) and normalized only when the engine request is assembled.
func (s *Service) SubmitPreferences(ctx context.Context, month Month, name string, values []engine.Preference) error {
	if want := month.Days(); len(values) != want {
		return &SubmissionLengthError{Name: name, Got: len(values), Want: want}
	}
	for _, v := range values {
		if !v.Valid() {
			return &engine.ModelBuildError{Employee: name, Reason: "unknown preference value"}
		}
	}
	return s.Store.SavePreferences(ctx, month, name, values, s.Now())
}

// Progress reports per-staff submission state for the month.
func (s *Service) Progress(ctx context.Context, month Month) (*Progress, error) {
	staff, err := s.Store.ListStaff(ctx, month)
	if err != nil {
		return nil, err
	}
	all := len(staff) > 0
	for _, st := range staff {
		if !st.Submitted {
			all = false
			break
		}
	}
	hasResult := true
	if _, err := s.Store.GetSchedule(ctx, month); err != nil {
		hasResult = false
	}
	return &Progress{Month: month, Staff: staff, AllSubmitted: all, HasResult: hasResult}, nil
}

// BuildRequest assembles the engine input from stored rows, in roster
// order. Staff without a stored row default every day to "any", matching
// how blank cells are treated at the workbook boundary.
func (s *Service) BuildRequest(ctx context.Context, month Month) (engine.Request, error) {
	staff, err := s.Store.ListStaff(ctx, month)
	if err != nil {
		return engine.Request{}, err
	}

	days := month.Days()
	req := engine.Request{
		Employees:   make([]string, 0, len(staff)),
		Preferences: make(map[string][]engine.Preference, len(staff)),
		NumDays:     days,
	}
	for _, st := range staff {
		req.Employees = append(req.Employees, st.Name)
		row, ok, err := s.Store.GetPreferences(ctx, month, st.Name)
		if err != nil {
			return engine.Request{}, err
		}
		if !ok {
			blank := make([]engine.Preference, days)
			for i := range blank {
				blank[i] = engine.PrefAny
			}
			row = blank
		}
		req.Preferences[st.Name] = row
	}
	return req, nil
}

// RunSolve plans the month once everyone has submitted and persists the
// outcome. Engine failures pass through with no partial result stored.
func (s *Service) RunSolve(ctx context.Context, month Month) (*engine.Result, error) {
	progress, err := s.Progress(ctx, month)
	if err != nil {
		return nil, err
	}
	if !progress.AllSubmitted {
		return nil, ErrNotAllSubmitted
	}

	req, err := s.BuildRequest(ctx, month)
	if err != nil {
		return nil, err
	}

	log.Printf("solving %s: %d staff, %d days", month, len(req.Employees), req.NumDays)
	result, err := engine.PlanWith(ctx, req, s.Policy, s.Solver)
	if err != nil {
		return nil, err
	}
	log.Printf("solved %s: status=%s score=%d elapsed=%s", month, result.Status, result.Score, result.Elapsed)

	record := ScheduleRecord{
		RunID:    result.RunID,
		Month:    month,
		Status:   result.Status,
		Score:    result.Score,
		Labels:   result.Schedule,
		SolvedAt: s.Now(),
	}
	if err := s.Store.SaveSchedule(ctx, record); err != nil {
		return nil, err
	}
	return result, nil
}

// Result loads the persisted schedule and derives statistics from it.
// Statistics are recomputed from labels on every read rather than stored,
// so they can never drift from the schedule.
func (s *Service) Result(ctx context.Context, month Month) (*ScheduleRecord, map[string]engine.Statistics, error) {
	record, err := s.Store.GetSchedule(ctx, month)
	if err != nil {
		return nil, nil, err
	}

	stats := make(map[string]engine.Statistics, len(record.Labels))
	for name, labels := range record.Labels {
		var st engine.Statistics
		for _, l := range labels {
			switch l {
			case engine.LabelEarly:
				st.EarlyDays++
			case engine.LabelLate:
				st.LateDays++
			default:
				st.RestDays = st.RestDays.Add(l.RestWeight())
			}
		}
		stats[name] = st
	}
	return record, stats, nil
}
