package service

import (
	"context"
	"time"

	"reflow_oven/internal/config"
	"reflow_oven/internal/engine"
	"reflow_oven/internal/models"
	"reflow_oven/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Oven exposes the control operations the HTTP surface offers.
type Oven interface {
	Start(ctx context.Context, profile models.Profile) error
	Cancel(ctx context.Context) error
	Bake(ctx context.Context, targetC float64) error
}

// Monitoring exposes the live read-only state.
type Monitoring interface {
	GetState(ctx context.Context) (models.OvenSnapshot, error)
}

// RunLog exposes the run history and the persistent counters.
type RunLog interface {
	Runs(ctx context.Context, limit int) ([]models.RunRecord, error)
	Run(ctx context.Context, runID string) (*models.RunRecord, error)
	Counters(ctx context.Context) (models.CounterSet, error)
}

// EventLog exposes the append-only event log with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.OvenEvent, error)
}

// LogFilter selects events by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "RUN_START", "STAGE_CHANGE", "RUN_END", "ERROR", "OVERRIDE"
}

// Controller is the slice of the engine the services drive.
type Controller interface {
	Enqueue(cmd engine.Command) bool
	Snapshot() models.OvenSnapshot
}

type Service struct {
	Oven
	Monitoring
	RunLog
	EventLog
	Authorization
}

// NewService wires the repository layer and the engine into the concrete
// services.
func NewService(cfg *config.Config, repos *repository.Repository, ctrl Controller) *Service {
	return &Service{
		Oven:          NewOvenService(cfg, ctrl),
		Monitoring:    NewMonitoringService(ctrl, repos.StateRepo),
		RunLog:        NewRunLogService(repos.RunRepo, repos.CounterRepo),
		EventLog:      NewEventLogService(repos.EventRepo),
		Authorization: NewAuthService(repos.Auth),
	}
}
