package service

import (
	"context"
	"errors"
	"testing"

	"reflow_oven/internal/config"
	"reflow_oven/internal/engine"
	"reflow_oven/internal/models"
)

type ctrlStub struct {
	snap     models.OvenSnapshot
	enqueued []engine.Command
	full     bool
}

func (c *ctrlStub) Enqueue(cmd engine.Command) bool {
	if c.full {
		return false
	}
	c.enqueued = append(c.enqueued, cmd)
	return true
}

func (c *ctrlStub) Snapshot() models.OvenSnapshot { return c.snap }

func idleCtrl() *ctrlStub {
	return &ctrlStub{snap: models.OvenSnapshot{
		Stage:   models.StageIdle,
		Profile: models.ProfileLeadFree,
	}}
}

func TestOvenStart_EnqueuesFromIdle(t *testing.T) {
	ctrl := idleCtrl()
	svc := NewOvenService(config.Default(), ctrl)

	if err := svc.Start(context.Background(), models.ProfileLeaded); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(ctrl.enqueued) != 1 {
		t.Fatalf("enqueued %d commands", len(ctrl.enqueued))
	}
	cmd := ctrl.enqueued[0]
	if cmd.Kind != engine.CommandStart || cmd.Profile != models.ProfileLeaded {
		t.Fatalf("cmd = %+v", cmd)
	}
}

func TestOvenStart_RejectedWhileRunActive(t *testing.T) {
	ctrl := idleCtrl()
	ctrl.snap.Stage = models.StageSoak
	svc := NewOvenService(config.Default(), ctrl)

	err := svc.Start(context.Background(), models.ProfileLeadFree)
	if !errors.Is(err, ErrRunActive) {
		t.Fatalf("err = %v, want ErrRunActive", err)
	}
	if len(ctrl.enqueued) != 0 {
		t.Fatalf("command enqueued despite rejection")
	}
}

func TestOvenStart_RejectedDuringSensorFault(t *testing.T) {
	ctrl := idleCtrl()
	ctrl.snap.Stage = models.StageSensorError
	svc := NewOvenService(config.Default(), ctrl)

	if err := svc.Start(context.Background(), models.ProfileLeadFree); !errors.Is(err, ErrSensorFaulted) {
		t.Fatalf("err = %v, want ErrSensorFaulted", err)
	}
}

func TestOvenStart_UnknownProfile(t *testing.T) {
	svc := NewOvenService(config.Default(), idleCtrl())
	if err := svc.Start(context.Background(), "TIN"); err == nil {
		t.Fatalf("expected error for unknown profile")
	}
}

func TestOvenCancel_RequiresActiveRun(t *testing.T) {
	ctrl := idleCtrl()
	svc := NewOvenService(config.Default(), ctrl)

	if err := svc.Cancel(context.Background()); !errors.Is(err, ErrNoActiveRun) {
		t.Fatalf("err = %v, want ErrNoActiveRun", err)
	}

	ctrl.snap.Stage = models.StageReflow
	if err := svc.Cancel(context.Background()); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if len(ctrl.enqueued) != 1 || ctrl.enqueued[0].Kind != engine.CommandCancel {
		t.Fatalf("enqueued = %+v", ctrl.enqueued)
	}
}

func TestOvenBake_TargetValidated(t *testing.T) {
	cfg := config.Default()
	ctrl := idleCtrl()
	svc := NewOvenService(cfg, ctrl)

	if err := svc.Bake(context.Background(), 0); err == nil {
		t.Fatalf("zero target accepted")
	}
	if err := svc.Bake(context.Background(), cfg.Safety.CycleMaxTempC); err == nil {
		t.Fatalf("target at the hard limit accepted")
	}
	if err := svc.Bake(context.Background(), 120); err != nil {
		t.Fatalf("Bake: %v", err)
	}
	if len(ctrl.enqueued) != 1 || ctrl.enqueued[0].BakeTargetC != 120 {
		t.Fatalf("enqueued = %+v", ctrl.enqueued)
	}
}

func TestOven_QueueFull(t *testing.T) {
	ctrl := idleCtrl()
	ctrl.full = true
	svc := NewOvenService(config.Default(), ctrl)

	if err := svc.Start(context.Background(), models.ProfileLeadFree); !errors.Is(err, ErrBusy) {
		t.Fatalf("err = %v, want ErrBusy", err)
	}
}
