package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"reflow_oven/internal/models"
)

type stateRepoStub struct {
	snap models.OvenSnapshot
	err  error
}

func (s *stateRepoStub) SaveSnapshot(context.Context, models.OvenSnapshot) error { return nil }
func (s *stateRepoStub) Load(context.Context) (models.OvenSnapshot, error) {
	return s.snap, s.err
}

func TestGetState_PrefersLiveEngine(t *testing.T) {
	ctrl := &ctrlStub{snap: models.OvenSnapshot{Stage: models.StageReflow, TempC: 231.5}}
	repo := &stateRepoStub{snap: models.OvenSnapshot{Stage: models.StageIdle}}
	svc := NewMonitoringService(ctrl, repo)

	got, err := svc.GetState(context.Background())
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}
	if got.Stage != models.StageReflow || got.TempC != 231.5 {
		t.Fatalf("got %+v, want live snapshot", got)
	}
}

func TestGetState_FallsBackToRepo(t *testing.T) {
	ts := time.Date(2026, 4, 1, 8, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	repo := &stateRepoStub{snap: models.OvenSnapshot{Stage: models.StageComplete, UpdatedAt: ts}}
	svc := NewMonitoringService(nil, repo)

	got, err := svc.GetState(context.Background())
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}
	if got.Stage != models.StageComplete {
		t.Fatalf("got %+v", got)
	}
	if got.UpdatedAt.Location() != time.UTC {
		t.Fatalf("UpdatedAt not normalized to UTC: %v", got.UpdatedAt)
	}
}

func TestGetState_RepoError(t *testing.T) {
	repo := &stateRepoStub{err: errors.New("down")}
	svc := NewMonitoringService(nil, repo)

	if _, err := svc.GetState(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}
