package service

import (
	"context"
	"errors"

	"reflow_oven/internal/models"
	"reflow_oven/internal/repository"
)

const maxRunListLimit = 200

var errRunIDEmpty = errors.New("run id is empty")

// RunLogService serves the persisted run history and counters.
type RunLogService struct {
	runRepo     repository.RunRepo
	counterRepo repository.CounterRepo
}

func NewRunLogService(runRepo repository.RunRepo, counterRepo repository.CounterRepo) *RunLogService {
	return &RunLogService{runRepo: runRepo, counterRepo: counterRepo}
}

// Runs returns the most recent runs, newest first.
func (s *RunLogService) Runs(ctx context.Context, limit int) ([]models.RunRecord, error) {
	if limit <= 0 || limit > maxRunListLimit {
		limit = 50
	}
	return s.runRepo.List(ctx, limit)
}

// Run returns one run by id, or (nil, nil) when unknown.
func (s *RunLogService) Run(ctx context.Context, runID string) (*models.RunRecord, error) {
	if runID == "" {
		return nil, errRunIDEmpty
	}
	return s.runRepo.Get(ctx, runID)
}

// Counters returns the lifetime per-outcome counters.
func (s *RunLogService) Counters(ctx context.Context) (models.CounterSet, error) {
	return s.counterRepo.Load(ctx)
}
