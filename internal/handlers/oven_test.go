package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"reflow_oven/internal/models"
	"reflow_oven/internal/service"
)

func addAuth(req *http.Request, token string) {
	for k, vv := range authHeader(token) {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
}

func TestOvenHandlers_StartCancelBake_GetState(t *testing.T) {
	auth := &mockAuth{parseID: 7}
	mon := &mockMonitoring{state: models.OvenSnapshot{
		Stage: models.StageSoak, Profile: models.ProfileLeadFree, TempC: 162.4,
	}}
	oven := &mockOven{}
	s := &service.Service{
		Authorization: auth,
		Monitoring:    mon,
		Oven:          oven,
	}
	r := newTestRouter(s)

	// GET state requires auth → 401 without header
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/oven/state", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without auth, got %d", w.Code)
	}

	// With auth → 200 and snapshot body
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/oven/state", nil)
	addAuth(req, "valid")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("state status=%d, body=%s", w.Code, w.Body.String())
	}
	var st models.OvenSnapshot
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	if st.Stage != models.StageSoak || st.TempC != 162.4 {
		t.Fatalf("unexpected state: %+v", st)
	}

	// POST /start with profile body → 200, passes profile, includes state
	body := bytes.NewBufferString(`{"profile":"LEADED"}`)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/oven/start", body)
	req.Header.Set("Content-Type", "application/json")
	addAuth(req, "valid")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("start status=%d, body=%s", w.Code, w.Body.String())
	}
	if oven.startCalled != 1 || oven.lastProfile != models.ProfileLeaded {
		t.Fatalf("start calls=%d profile=%s", oven.startCalled, oven.lastProfile)
	}
	var resp struct {
		Status string              `json:"status"`
		State  models.OvenSnapshot `json:"state"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Status != statusStarted {
		t.Fatalf("expected status %q, got %q", statusStarted, resp.Status)
	}
	if resp.State.Stage != models.StageSoak {
		t.Fatalf("state missing/invalid in response: %+v", resp.State)
	}

	// POST /start without body → defaults to LEAD_FREE
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/oven/start", nil)
	addAuth(req, "valid")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("start status=%d, body=%s", w.Code, w.Body.String())
	}
	if oven.lastProfile != models.ProfileLeadFree {
		t.Fatalf("default profile = %s", oven.lastProfile)
	}

	// POST /bake → 200, passes target
	body = bytes.NewBufferString(`{"target_c":120}`)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/oven/bake", body)
	req.Header.Set("Content-Type", "application/json")
	addAuth(req, "valid")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("bake status=%d, body=%s", w.Code, w.Body.String())
	}
	if oven.bakeCalled != 1 || oven.lastTargetC != 120 {
		t.Fatalf("bake calls=%d target=%.1f", oven.bakeCalled, oven.lastTargetC)
	}

	// POST /cancel → 200
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/oven/cancel", nil)
	addAuth(req, "valid")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("cancel status=%d, body=%s", w.Code, w.Body.String())
	}
	if oven.cancelCalled != 1 {
		t.Fatalf("cancel calls=%d", oven.cancelCalled)
	}
}

func TestOvenHandlers_ErrorMapping(t *testing.T) {
	auth := &mockAuth{parseID: 7}
	oven := &mockOven{startErr: service.ErrRunActive, cancelErr: service.ErrNoActiveRun}
	s := &service.Service{
		Authorization: auth,
		Monitoring:    &mockMonitoring{},
		Oven:          oven,
	}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/oven/start", nil)
	addAuth(req, "valid")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("start during run: status=%d, want 409", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/oven/cancel", nil)
	addAuth(req, "valid")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("cancel without run: status=%d, want 409", w.Code)
	}

	oven.bakeErr = service.ErrBusy
	body := bytes.NewBufferString(`{"target_c":120}`)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/oven/bake", body)
	req.Header.Set("Content-Type", "application/json")
	addAuth(req, "valid")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("busy queue: status=%d, want 503", w.Code)
	}
}

func TestOvenHandlers_BakeRequiresTarget(t *testing.T) {
	s := &service.Service{
		Authorization: &mockAuth{parseID: 1},
		Monitoring:    &mockMonitoring{},
		Oven:          &mockOven{},
	}
	r := newTestRouter(s)

	body := bytes.NewBufferString(`{}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/oven/bake", body)
	req.Header.Set("Content-Type", "application/json")
	addAuth(req, "valid")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing target: status=%d, want 400", w.Code)
	}
}

func TestHealth_NoAuthRequired(t *testing.T) {
	s := &service.Service{Authorization: &mockAuth{}}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("health status=%d", w.Code)
	}
}
