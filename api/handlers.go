/*
handlers.go - HTTP API handlers for the shift planning service

PURPOSE:
  Exposes the planning workflow via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the roster
  service and engine.

ENDPOINTS:
  Months:
    POST   /api/months                         Set up a planning month
    GET    /api/months/{month}                 Submission progress

  Roster:
    POST   /api/months/{month}/staff           Add a staff member
    DELETE /api/months/{month}/staff/{name}    Remove a staff member

  Preferences:
    PUT    /api/months/{month}/staff/{name}/preferences  Submit a month of wishes

  Solving:
    POST   /api/months/{month}/solve           Run the engine
    GET    /api/months/{month}/result          Solved schedule + statistics
    GET    /api/months/{month}/result.xlsx     Plan workbook download

ERROR HANDLING:
  Domain and engine errors are mapped to HTTP status by type:
  - 400: malformed input, validation failures
  - 404: unknown month / staff / missing result
  - 409: duplicate setup, solve before all submissions are in
  - 422: model proven infeasible
  - 504: solve ran out of budget with no schedule
  - 500: everything else

SECURITY NOTE:
  No authentication. The service is meant to run on a trusted network.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/minagawaharuto/shift-automation-tools/engine"
	"github.com/minagawaharuto/shift-automation-tools/roster"
	"github.com/minagawaharuto/shift-automation-tools/xlsx"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *roster.Service
}

// NewHandler creates a new handler around the roster service.
func NewHandler(svc *roster.Service) *Handler {
	return &Handler{Service: svc}
}

func monthParam(r *http.Request) (roster.Month, error) {
	return roster.ParseMonth(chi.URLParam(r, "month"))
}

// =============================================================================
// MONTH HANDLERS
// =============================================================================

// CreateMonth sets up a planning month with its initial roster.
func (h *Handler) CreateMonth(w http.ResponseWriter, r *http.Request) {
	var req CreateMonthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	month, err := roster.ParseMonth(req.Month)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
		return
	}
	if err := h.Service.SetupMonth(r.Context(), month, req.Staff); err != nil {
		writeDomainError(w, "Failed to set up month", err)
		return
	}
	h.writeProgress(w, r, http.StatusCreated, month)
}

// GetMonth returns submission progress for a month.
func (h *Handler) GetMonth(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
		return
	}
	h.writeProgress(w, r, http.StatusOK, month)
}

func (h *Handler) writeProgress(w http.ResponseWriter, r *http.Request, status int, month roster.Month) {
	progress, err := h.Service.Progress(r.Context(), month)
	if err != nil {
		writeDomainError(w, "Failed to load month", err)
		return
	}
	writeJSON(w, status, toProgressDTO(progress))
}

// =============================================================================
// ROSTER HANDLERS
// =============================================================================

// AddStaff appends a name to the roster.
func (h *Handler) AddStaff(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
		return
	}
	var req AddStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}
	if err := h.Service.AddStaff(r.Context(), month, req.Name); err != nil {
		writeDomainError(w, "Failed to add staff", err)
		return
	}
	h.writeProgress(w, r, http.StatusCreated, month)
}

// RemoveStaff deletes a roster entry along with any submitted preferences.
func (h *Handler) RemoveStaff(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
		return
	}
	name := chi.URLParam(r, "name")
	if err := h.Service.RemoveStaff(r.Context(), month, name); err != nil {
		writeDomainError(w, "Failed to remove staff", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PREFERENCE HANDLERS
// =============================================================================

// PutPreferences stores a full month of preference values for one staff
// member. Resubmission overwrites the previous row.
func (h *Handler) PutPreferences(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
		return
	}
	name := chi.URLParam(r, "name")

	var req PreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	values := make([]engine.Preference, len(req.Values))
	for i, v := range req.Values {
		p, err := engine.ParsePreference(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Day %d", i+1), err)
			return
		}
		values[i] = p
	}

	if err := h.Service.SubmitPreferences(r.Context(), month, name, values); err != nil {
		writeDomainError(w, "Failed to submit preferences", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// SOLVE HANDLERS
// =============================================================================

// Solve runs the engine for a month and persists the outcome.
func (h *Handler) Solve(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
		return
	}
	result, err := h.Service.RunSolve(r.Context(), month)
	if err != nil {
		writeDomainError(w, "Solve failed", err)
		return
	}
	writeJSON(w, http.StatusOK, ResultDTO{
		RunID:      result.RunID,
		Month:      month.String(),
		Status:     result.Status.String(),
		Score:      result.Score,
		ElapsedMS:  result.Elapsed.Milliseconds(),
		Schedule:   toLabelStrings(result.Schedule),
		Statistics: toStatisticsDTOs(result.Stats),
	})
}

// GetResult returns the latest persisted schedule with statistics.
func (h *Handler) GetResult(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
		return
	}
	record, stats, err := h.Service.Result(r.Context(), month)
	if err != nil {
		writeDomainError(w, "Failed to load result", err)
		return
	}
	writeJSON(w, http.StatusOK, ResultDTO{
		RunID:      record.RunID,
		Month:      record.Month.String(),
		Status:     record.Status.String(),
		Score:      record.Score,
		SolvedAt:   record.SolvedAt.Format("2006-01-02T15:04:05Z07:00"),
		Schedule:   toLabelStrings(record.Labels),
		Statistics: toStatisticsDTOs(stats),
	})
}

// DownloadResult streams the plan workbook for the latest solved schedule.
func (h *Handler) DownloadResult(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
		return
	}
	ctx := r.Context()

	record, stats, err := h.Service.Result(ctx, month)
	if err != nil {
		writeDomainError(w, "Failed to load result", err)
		return
	}
	staff, err := h.Service.Store.ListStaff(ctx, month)
	if err != nil {
		writeDomainError(w, "Failed to load roster", err)
		return
	}
	// BuildRequest yields the submitted wishes in roster order; the
	// comparison sheet needs them next to the resolved labels.
	req, err := h.Service.BuildRequest(ctx, month)
	if err != nil {
		writeDomainError(w, "Failed to load preferences", err)
		return
	}

	names := make([]string, len(staff))
	for i, s := range staff {
		names[i] = s.Name
	}
	book, err := xlsx.WritePlanBook(xlsx.PlanBook{
		Month:       month,
		Staff:       names,
		Labels:      record.Labels,
		Preferences: req.Preferences,
		Stats:       stats,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to render workbook", err)
		return
	}
	defer book.Close()

	var buf bytes.Buffer
	if err := book.Write(&buf); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to render workbook", err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "shifts-"+month.String()+".xlsx"))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// =============================================================================
// ERROR MAPPING AND HELPERS
// =============================================================================

// writeDomainError maps domain and engine errors onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, roster.ErrMonthNotFound),
		errors.Is(err, roster.ErrStaffNotFound),
		errors.Is(err, roster.ErrNoResult):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, roster.ErrMonthExists),
		errors.Is(err, roster.ErrStaffExists),
		errors.Is(err, roster.ErrNotAllSubmitted):
		writeError(w, http.StatusConflict, message, err)
	case engine.IsInputError(err), isSubmissionLengthError(err):
		writeError(w, http.StatusBadRequest, message, err)
	case errors.Is(err, engine.ErrInfeasible):
		writeError(w, http.StatusUnprocessableEntity, message, err)
	case errors.Is(err, engine.ErrTimedOut):
		writeError(w, http.StatusGatewayTimeout, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func isSubmissionLengthError(err error) bool {
	var lenErr *roster.SubmissionLengthError
	return errors.As(err, &lenErr)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
