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

func TestGetLogs_FiltersAndNormalizes(t *testing.T) {
	ev := &mockEventLog{resp: []models.OvenEvent{
		{EventID: "1", Type: "RUN_END", Description: "run finished: OK"},
	}}
	s := &service.Service{
		Authorization: &mockAuth{parseID: 1},
		EventLog:      ev,
	}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/logs/?from=2026-08-01&to=2026-08-31&type=run_end", nil)
	addAuth(req, "valid")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}

	if ev.lastType != "RUN_END" {
		t.Fatalf("type = %q, want RUN_END", ev.lastType)
	}
	wantFrom := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	if !ev.lastFrom.Equal(wantFrom) {
		t.Fatalf("from = %v", ev.lastFrom)
	}
	// Date-only 'to' becomes end-of-day inclusive.
	if ev.lastTo.Day() != 31 || ev.lastTo.Hour() != 23 {
		t.Fatalf("to = %v, want end of Aug 31", ev.lastTo)
	}

	var resp struct {
		Count  int                `json:"count"`
		Events []models.OvenEvent `json:"events"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Count != 1 || resp.Events[0].EventID != "1" {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestGetLogs_BadTime(t *testing.T) {
	s := &service.Service{
		Authorization: &mockAuth{parseID: 1},
		EventLog:      &mockEventLog{},
	}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/logs/?from=yesterday", nil)
	addAuth(req, "valid")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", w.Code)
	}
}

func TestGetLogs_InvertedRange(t *testing.T) {
	s := &service.Service{
		Authorization: &mockAuth{parseID: 1},
		EventLog:      &mockEventLog{},
	}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/logs/?from=2026-08-31&to=2026-08-01", nil)
	addAuth(req, "valid")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", w.Code)
	}
}
