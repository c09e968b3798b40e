package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"reflow_oven/internal/models"
	"reflow_oven/internal/service"
)

func TestRunsHandlers_ListGetCounters(t *testing.T) {
	start := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	rec := models.RunRecord{
		RunID:     "r1",
		Profile:   models.ProfileLeadFree,
		StartedAt: start,
		EndedAt:   start.Add(500 * time.Second),
		Status:    models.StatusOk,
	}
	runlog := &mockRunLog{
		runs:     []models.RunRecord{rec},
		one:      &rec,
		counters: models.CounterSet{Attempted: 3, Completed: 2, ReflowAborts: 1},
	}
	s := &service.Service{
		Authorization: &mockAuth{parseID: 1},
		RunLog:        runlog,
	}
	r := newTestRouter(s)

	// GET /runs with limit
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs?limit=5", nil)
	addAuth(req, "valid")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("runs status=%d, body=%s", w.Code, w.Body.String())
	}
	if runlog.lastLimit != 5 {
		t.Fatalf("limit = %d, want 5", runlog.lastLimit)
	}
	var listResp struct {
		Count int                `json:"count"`
		Runs  []models.RunRecord `json:"runs"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if listResp.Count != 1 || listResp.Runs[0].RunID != "r1" {
		t.Fatalf("list = %+v", listResp)
	}

	// GET /runs/:id
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/runs/r1", nil)
	addAuth(req, "valid")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("run status=%d", w.Code)
	}
	if runlog.lastID != "r1" {
		t.Fatalf("id = %q", runlog.lastID)
	}

	// GET /counters
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/counters", nil)
	addAuth(req, "valid")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("counters status=%d", w.Code)
	}
	var set models.CounterSet
	if err := json.Unmarshal(w.Body.Bytes(), &set); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if set.Attempted != 3 || set.Completed != 2 || set.ReflowAborts != 1 {
		t.Fatalf("counters = %+v", set)
	}
}

func TestRunsHandlers_UnknownRun404(t *testing.T) {
	s := &service.Service{
		Authorization: &mockAuth{parseID: 1},
		RunLog:        &mockRunLog{}, // one == nil
	}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/ghost", nil)
	addAuth(req, "valid")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d, want 404", w.Code)
	}
}
