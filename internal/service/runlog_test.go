package service

import (
	"context"
	"testing"

	"reflow_oven/internal/models"
)

type runRepoStub struct {
	gotLimit int
	gotID    string
	runs     []models.RunRecord
	one      *models.RunRecord
}

func (s *runRepoStub) SaveRun(context.Context, models.RunRecord) error { return nil }
func (s *runRepoStub) Get(_ context.Context, runID string) (*models.RunRecord, error) {
	s.gotID = runID
	return s.one, nil
}
func (s *runRepoStub) List(_ context.Context, limit int) ([]models.RunRecord, error) {
	s.gotLimit = limit
	return s.runs, nil
}

type counterRepoStub struct {
	set models.CounterSet
}

func (s *counterRepoStub) Increment(context.Context, string) error { return nil }
func (s *counterRepoStub) Load(context.Context) (models.CounterSet, error) {
	return s.set, nil
}

func TestRuns_ClampsLimit(t *testing.T) {
	repo := &runRepoStub{}
	svc := NewRunLogService(repo, &counterRepoStub{})

	if _, err := svc.Runs(context.Background(), 0); err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if repo.gotLimit != 50 {
		t.Fatalf("limit = %d, want default 50", repo.gotLimit)
	}

	if _, err := svc.Runs(context.Background(), 10_000); err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if repo.gotLimit != 50 {
		t.Fatalf("oversized limit = %d, want clamp to 50", repo.gotLimit)
	}

	if _, err := svc.Runs(context.Background(), 5); err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if repo.gotLimit != 5 {
		t.Fatalf("limit = %d, want 5", repo.gotLimit)
	}
}

func TestRun_RequiresID(t *testing.T) {
	svc := NewRunLogService(&runRepoStub{}, &counterRepoStub{})

	if _, err := svc.Run(context.Background(), ""); err == nil {
		t.Fatalf("empty id accepted")
	}
}

func TestCounters_PassThrough(t *testing.T) {
	svc := NewRunLogService(&runRepoStub{}, &counterRepoStub{
		set: models.CounterSet{Attempted: 4, Completed: 3, CycleAborts: 1},
	})

	set, err := svc.Counters(context.Background())
	if err != nil {
		t.Fatalf("Counters: %v", err)
	}
	if set.Attempted != 4 || set.Completed != 3 || set.CycleAborts != 1 {
		t.Fatalf("set = %+v", set)
	}
}
