/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers and the domain layer, not in DTOs. DTOs
  are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/minagawaharuto/shift-automation-tools/engine"
	"github.com/minagawaharuto/shift-automation-tools/roster"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// CreateMonthRequest sets up a planning month with its initial roster.
type CreateMonthRequest struct {
	Month string   `json:"month"` // "YYYY-MM"
	Staff []string `json:"staff"`
}

// AddStaffRequest appends one name to an existing roster.
type AddStaffRequest struct {
	Name string `json:"name"`
}

// PreferencesRequest is a full month of preference values for one staff
// member, one entry per calendar day.
type PreferencesRequest struct {
	Values []string `json:"values"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// StaffDTO is one roster entry with submission state.
type StaffDTO struct {
	Name        string `json:"name"`
	Position    int    `json:"position"`
	Submitted   bool   `json:"submitted"`
	SubmittedAt string `json:"submitted_at,omitempty"`
}

// ProgressDTO summarizes a month: who has submitted and whether a solved
// schedule exists.
type ProgressDTO struct {
	Month        string     `json:"month"`
	Days         int        `json:"days"`
	Staff        []StaffDTO `json:"staff"`
	AllSubmitted bool       `json:"all_submitted"`
	HasResult    bool       `json:"has_result"`
}

// StatisticsDTO is the per-employee summary. RestDays is a decimal string
// ("9.5") because half days contribute fractional rest.
type StatisticsDTO struct {
	EarlyDays int    `json:"early_days"`
	LateDays  int    `json:"late_days"`
	RestDays  string `json:"rest_days"`
}

// ResultDTO is a solved schedule with its run metadata.
type ResultDTO struct {
	RunID      string                   `json:"run_id"`
	Month      string                   `json:"month"`
	Status     string                   `json:"status"`
	Score      int                      `json:"score"`
	SolvedAt   string                   `json:"solved_at,omitempty"`
	ElapsedMS  int64                    `json:"elapsed_ms,omitempty"`
	Schedule   map[string][]string      `json:"schedule"`
	Statistics map[string]StatisticsDTO `json:"statistics"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toProgressDTO(p *roster.Progress) ProgressDTO {
	dto := ProgressDTO{
		Month:        p.Month.String(),
		Days:         p.Month.Days(),
		Staff:        make([]StaffDTO, len(p.Staff)),
		AllSubmitted: p.AllSubmitted,
		HasResult:    p.HasResult,
	}
	for i, s := range p.Staff {
		dto.Staff[i] = StaffDTO{Name: s.Name, Position: s.Position, Submitted: s.Submitted}
		if s.SubmittedAt != nil {
			dto.Staff[i].SubmittedAt = s.SubmittedAt.Format(time.RFC3339)
		}
	}
	return dto
}

func toStatisticsDTOs(stats map[string]engine.Statistics) map[string]StatisticsDTO {
	out := make(map[string]StatisticsDTO, len(stats))
	for name, st := range stats {
		out[name] = StatisticsDTO{
			EarlyDays: st.EarlyDays,
			LateDays:  st.LateDays,
			RestDays:  st.RestDays.String(),
		}
	}
	return out
}

func toLabelStrings(labels map[string][]engine.Label) map[string][]string {
	out := make(map[string][]string, len(labels))
	for name, row := range labels {
		cells := make([]string, len(row))
		for i, l := range row {
			cells[i] = string(l)
		}
		out[name] = cells
	}
	return out
}
