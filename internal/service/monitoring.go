package service

import (
	"context"
	"time"

	"reflow_oven/internal/models"
	"reflow_oven/internal/repository"
)

// MonitoringService serves the live snapshot. While the engine runs it is
// the source of truth; the persisted row only answers when no engine is
// attached (tooling against a cold database).
type MonitoringService struct {
	ctrl      Controller
	stateRepo repository.StateRepo
}

func NewMonitoringService(ctrl Controller, stateRepo repository.StateRepo) *MonitoringService {
	return &MonitoringService{ctrl: ctrl, stateRepo: stateRepo}
}

// GetState returns the current oven snapshot.
func (s *MonitoringService) GetState(ctx context.Context) (models.OvenSnapshot, error) {
	if s.ctrl != nil {
		return s.ctrl.Snapshot(), nil
	}
	state, err := s.stateRepo.Load(ctx)
	if err != nil {
		return models.OvenSnapshot{}, err
	}
	state.UpdatedAt = toUTC(state.UpdatedAt)
	return state, nil
}

// toUTC normalizes non-zero time to UTC, preserving zero values.
func toUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
