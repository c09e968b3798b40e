package handlers

import (
	"context"
	"net/http"
	"time"

	"reflow_oven/internal/models"
	"reflow_oven/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockOven struct {
	startErr     error
	cancelErr    error
	bakeErr      error
	lastProfile  models.Profile
	lastTargetC  float64
	startCalled  int
	cancelCalled int
	bakeCalled   int
}

func (m *mockOven) Start(ctx context.Context, profile models.Profile) error {
	m.startCalled++
	m.lastProfile = profile
	return m.startErr
}
func (m *mockOven) Cancel(ctx context.Context) error {
	m.cancelCalled++
	return m.cancelErr
}
func (m *mockOven) Bake(ctx context.Context, targetC float64) error {
	m.bakeCalled++
	m.lastTargetC = targetC
	return m.bakeErr
}

type mockMonitoring struct {
	state models.OvenSnapshot
	err   error
}

func (m *mockMonitoring) GetState(ctx context.Context) (models.OvenSnapshot, error) {
	return m.state, m.err
}

type mockRunLog struct {
	runs      []models.RunRecord
	one       *models.RunRecord
	counters  models.CounterSet
	err       error
	lastLimit int
	lastID    string
}

func (m *mockRunLog) Runs(ctx context.Context, limit int) ([]models.RunRecord, error) {
	m.lastLimit = limit
	return m.runs, m.err
}
func (m *mockRunLog) Run(ctx context.Context, runID string) (*models.RunRecord, error) {
	m.lastID = runID
	return m.one, m.err
}
func (m *mockRunLog) Counters(ctx context.Context) (models.CounterSet, error) {
	return m.counters, m.err
}

type mockEventLog struct {
	resp     []models.OvenEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.OvenEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
