/*
handlers_test.go - End-to-end tests for the HTTP API

Tests drive the full stack: chi router, handlers, roster service, engine,
and an in-memory sqlite store.
*/
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/minagawaharuto/shift-automation-tools/roster"
	"github.com/minagawaharuto/shift-automation-tools/store/sqlite"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	svc := roster.NewService(store)
	svc.Policy.Budget = 10 * time.Second
	return NewRouter(NewHandler(svc))
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

// setupNovember creates 2025-11 (30 days) with four staff.
func setupNovember(t *testing.T, router http.Handler) {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/months", CreateMonthRequest{
		Month: "2025-11",
		Staff: []string{"sato", "suzuki", "tanaka", "ito"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func submitAll(t *testing.T, router http.Handler) {
	t.Helper()
	row := make([]string, 30)
	for _, name := range []string{"sato", "suzuki", "tanaka", "ito"} {
		rec := doJSON(t, router, http.MethodPut,
			fmt.Sprintf("/api/months/2025-11/staff/%s/preferences", name),
			PreferencesRequest{Values: row})
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	}
}

func TestCreateMonth_ReturnsProgress(t *testing.T) {
	router := newTestRouter(t)
	setupNovember(t, router)

	rec := doJSON(t, router, http.MethodGet, "/api/months/2025-11", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	progress := decode[ProgressDTO](t, rec)
	assert.Equal(t, "2025-11", progress.Month)
	assert.Equal(t, 30, progress.Days)
	assert.Len(t, progress.Staff, 4)
	assert.Equal(t, "sato", progress.Staff[0].Name)
	assert.False(t, progress.AllSubmitted)
	assert.False(t, progress.HasResult)
}

func TestCreateMonth_DuplicateIsConflict(t *testing.T) {
	router := newTestRouter(t)
	setupNovember(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/months", CreateMonthRequest{
		Month: "2025-11", Staff: []string{"sato"},
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateMonth_BadMonthIsBadRequest(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/months", CreateMonthRequest{
		Month: "november", Staff: []string{"sato"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStaffLifecycle(t *testing.T) {
	router := newTestRouter(t)
	setupNovember(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/months/2025-11/staff", AddStaffRequest{Name: "watanabe"})
	require.Equal(t, http.StatusCreated, rec.Code)
	progress := decode[ProgressDTO](t, rec)
	assert.Len(t, progress.Staff, 5)
	assert.Equal(t, "watanabe", progress.Staff[4].Name)

	rec = doJSON(t, router, http.MethodPost, "/api/months/2025-11/staff", AddStaffRequest{Name: "watanabe"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/months/2025-11/staff/watanabe", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/months/2025-11/staff/watanabe", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPutPreferences_WrongLengthIsBadRequest(t *testing.T) {
	router := newTestRouter(t)
	setupNovember(t, router)

	rec := doJSON(t, router, http.MethodPut, "/api/months/2025-11/staff/sato/preferences",
		PreferencesRequest{Values: make([]string, 28)})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[ErrorResponse](t, rec)
	assert.Contains(t, body.Details, "28")
}

func TestPutPreferences_UnknownValueIsBadRequest(t *testing.T) {
	router := newTestRouter(t)
	setupNovember(t, router)

	values := make([]string, 30)
	values[3] = "night"
	rec := doJSON(t, router, http.MethodPut, "/api/months/2025-11/staff/sato/preferences",
		PreferencesRequest{Values: values})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSolve_BeforeAllSubmittedIsConflict(t *testing.T) {
	router := newTestRouter(t)
	setupNovember(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/months/2025-11/solve", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSolve_ReturnsScheduleAndPersistsResult(t *testing.T) {
	router := newTestRouter(t)
	setupNovember(t, router)
	submitAll(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/months/2025-11/solve", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	result := decode[ResultDTO](t, rec)
	assert.NotEmpty(t, result.RunID)
	assert.Contains(t, []string{"optimal", "feasible"}, result.Status)
	require.Len(t, result.Schedule, 4)
	for name, row := range result.Schedule {
		assert.Len(t, row, 30, name)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/months/2025-11/result", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stored := decode[ResultDTO](t, rec)
	assert.Equal(t, result.RunID, stored.RunID)
	assert.Equal(t, result.Schedule, stored.Schedule)
	assert.NotEmpty(t, stored.SolvedAt)
}

func TestSolve_InfeasibleRosterIsUnprocessable(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/months", CreateMonthRequest{
		Month: "2025-11", Staff: []string{"sato", "suzuki"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	row := make([]string, 30)
	for _, name := range []string{"sato", "suzuki"} {
		rec = doJSON(t, router, http.MethodPut,
			fmt.Sprintf("/api/months/2025-11/staff/%s/preferences", name),
			PreferencesRequest{Values: row})
		require.Equal(t, http.StatusNoContent, rec.Code)
	}

	// Two people cannot cover two shifts per day and still take nine rest
	// days each.
	rec = doJSON(t, router, http.MethodPost, "/api/months/2025-11/solve", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetResult_BeforeSolveIsNotFound(t *testing.T) {
	router := newTestRouter(t)
	setupNovember(t, router)

	rec := doJSON(t, router, http.MethodGet, "/api/months/2025-11/result", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDownloadResult_StreamsWorkbook(t *testing.T) {
	router := newTestRouter(t)
	setupNovember(t, router)
	submitAll(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/months/2025-11/solve", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/months/2025-11/result.xlsx", nil)
	out := httptest.NewRecorder()
	router.ServeHTTP(out, req)
	require.Equal(t, http.StatusOK, out.Code)
	assert.True(t, strings.Contains(out.Header().Get("Content-Disposition"), "shifts-2025-11.xlsx"))

	f, err := excelize.OpenReader(bytes.NewReader(out.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue("Shift", "A2")
	require.NoError(t, err)
	assert.Equal(t, "sato", v)
}
