package control

import (
	"math"

	"reflow_oven/internal/config"
	"reflow_oven/internal/models"
)

// GainKey names an entry in the gain table for logging and edge detection.
type GainKey string

const (
	GainNone        GainKey = ""
	GainPreheatFar  GainKey = "PREHEAT_FAR"
	GainPreheatNear GainKey = "PREHEAT_NEAR"
	GainSoak        GainKey = "SOAK"
	GainReflowFar   GainKey = "REFLOW_FAR"
	GainReflowNear  GainKey = "REFLOW_NEAR"
	GainBake        GainKey = "BAKE"
)

// Scheduler picks the gain set the duty controller should be using right
// now, based on stage and proximity to setpoint. Switching is
// edge-triggered: Select reports a change only when the policy's pick
// differs from the active set, so the controller is never re-tuned
// redundantly tick after tick.
type Scheduler struct {
	table  config.Gains
	active GainKey
}

// NewScheduler builds a scheduler over the configured gain table.
func NewScheduler(table config.Gains) *Scheduler {
	return &Scheduler{table: table}
}

// Reset forgets the active set; the next Select always reports a change.
// Called at run start.
func (s *Scheduler) Reset() {
	s.active = GainNone
}

// Active returns the key of the gain set last issued.
func (s *Scheduler) Active() GainKey { return s.active }

// Select resolves the policy for the current stage and |setpoint − pv|
// distance. The returned bool is true only when the pick changed; the gains
// are then applied immediately on the controller's next computation, with
// no blending.
func (s *Scheduler) Select(stage models.Stage, setpoint, pv float64) (models.GainSet, GainKey, bool) {
	key, g := s.pick(stage, setpoint, pv)
	if key == s.active {
		return g, key, false
	}
	s.active = key
	return g, key, true
}

func (s *Scheduler) pick(stage models.Stage, setpoint, pv float64) (GainKey, models.GainSet) {
	switch stage {
	case models.StagePreheat:
		if math.Abs(setpoint-pv) > s.table.Preheat.NearBand {
			return GainPreheatFar, s.table.Preheat.Far
		}
		return GainPreheatNear, s.table.Preheat.Near
	case models.StageSoak:
		return GainSoak, s.table.Soak
	case models.StageReflow:
		if math.Abs(setpoint-pv) > s.table.Reflow.NearBand {
			return GainReflowFar, s.table.Reflow.Far
		}
		return GainReflowNear, s.table.Reflow.Near
	case models.StageBake:
		return GainBake, s.table.Bake
	}
	// Non-heating stages keep whatever was active; the controller is in
	// Manual there anyway.
	return s.active, s.current()
}

func (s *Scheduler) current() models.GainSet {
	switch s.active {
	case GainPreheatFar:
		return s.table.Preheat.Far
	case GainPreheatNear:
		return s.table.Preheat.Near
	case GainSoak:
		return s.table.Soak
	case GainReflowFar:
		return s.table.Reflow.Far
	case GainReflowNear:
		return s.table.Reflow.Near
	case GainBake:
		return s.table.Bake
	}
	return models.GainSet{}
}
