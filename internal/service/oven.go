package service

import (
	"context"
	"errors"
	"fmt"

	"reflow_oven/internal/config"
	"reflow_oven/internal/engine"
	"reflow_oven/internal/models"
)

// Domain errors for control flows.
var (
	ErrRunActive     = errors.New("a run is already active")
	ErrNoActiveRun   = errors.New("no active run")
	ErrSensorFaulted = errors.New("temperature sensor is faulted")
	ErrBusy          = errors.New("controller busy, retry")
)

// OvenService validates control commands against the live snapshot and hands
// them to the engine. Commands apply on the next control tick; validation
// here is advisory, the state machine re-checks and silently drops commands
// that became invalid in between.
type OvenService struct {
	cfg  *config.Config
	ctrl Controller
}

func NewOvenService(cfg *config.Config, ctrl Controller) *OvenService {
	return &OvenService{cfg: cfg, ctrl: ctrl}
}

// Start begins a profile run from an idle view.
func (s *OvenService) Start(ctx context.Context, profile models.Profile) error {
	if profile != models.ProfileLeadFree && profile != models.ProfileLeaded {
		return fmt.Errorf("unknown profile %q", profile)
	}
	if err := s.checkIdle(); err != nil {
		return err
	}
	return s.enqueue(engine.Command{Kind: engine.CommandStart, Profile: profile})
}

// Cancel stops the active run.
func (s *OvenService) Cancel(ctx context.Context) error {
	snap := s.ctrl.Snapshot()
	if !snap.Stage.RunActive() {
		return ErrNoActiveRun
	}
	return s.enqueue(engine.Command{Kind: engine.CommandCancel})
}

// Bake begins a constant-temperature run at the given target.
func (s *OvenService) Bake(ctx context.Context, targetC float64) error {
	if targetC <= 0 || targetC >= s.cfg.Safety.CycleMaxTempC {
		return fmt.Errorf("bake target %.1f out of range (0, %.1f)",
			targetC, s.cfg.Safety.CycleMaxTempC)
	}
	if err := s.checkIdle(); err != nil {
		return err
	}
	return s.enqueue(engine.Command{Kind: engine.CommandBake, BakeTargetC: targetC})
}

func (s *OvenService) checkIdle() error {
	snap := s.ctrl.Snapshot()
	switch {
	case snap.Stage == models.StageSensorError:
		return ErrSensorFaulted
	case snap.Stage.RunActive():
		return ErrRunActive
	case !snap.Stage.IdleFamily():
		return fmt.Errorf("cannot start from stage %s", snap.Stage)
	}
	return nil
}

func (s *OvenService) enqueue(cmd engine.Command) error {
	if !s.ctrl.Enqueue(cmd) {
		return ErrBusy
	}
	return nil
}
