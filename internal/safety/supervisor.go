// Package safety implements the layered interlock supervisor: per-stage
// ramp-rate, deadline and absolute-temperature rules evaluated every tick
// while a run is in progress. Every violation is terminal for the run; the
// single exception is the reflow bang-bang override, which forces the
// controller to full power instead of aborting.
package safety

import (
	"time"

	"reflow_oven/internal/config"
	"reflow_oven/internal/control"
	"reflow_oven/internal/models"
)

// Violation names one failed interlock. Reasons map one-to-one onto abort
// stages and completion statuses.
type Violation string

const (
	NoViolation         Violation = ""
	PreheatRampFailure  Violation = "PREHEAT_RAMP_FAILURE"
	PreheatTimeout      Violation = "PREHEAT_TIMEOUT"
	SoakTimeout         Violation = "SOAK_TIMEOUT"
	SoakAccuracyFailure Violation = "SOAK_ACCURACY_FAILURE"
	ReflowPeakTimeout   Violation = "REFLOW_PEAK_TIMEOUT"
	CycleOvertemp       Violation = "CYCLE_OVERTEMP"
	CycleTimeout        Violation = "CYCLE_TIMEOUT"
)

// AbortStage maps the violation to the stage the state machine enters.
func (v Violation) AbortStage() models.Stage {
	switch v {
	case PreheatRampFailure, PreheatTimeout:
		return models.StagePreheatAbort
	case SoakTimeout, SoakAccuracyFailure:
		return models.StageSoakAbort
	case ReflowPeakTimeout:
		return models.StageReflowAbort
	case CycleOvertemp, CycleTimeout:
		return models.StageCycleAbort
	}
	return models.StageIdle
}

// Status maps the violation to the RunRecord completion status.
func (v Violation) Status() models.CompletionStatus {
	switch v {
	case PreheatRampFailure, PreheatTimeout:
		return models.StatusPreheatError
	case SoakTimeout, SoakAccuracyFailure:
		return models.StatusSoakError
	case ReflowPeakTimeout:
		return models.StatusReflowError
	case CycleOvertemp, CycleTimeout:
		return models.StatusCycleError
	}
	return models.StatusInProgress
}

// Verdict is the transient per-tick result. At most one of the fields is
// set: a violation aborts the run, ForceFullPower flips the controller to
// Manual at maximum output.
type Verdict struct {
	Violation      Violation
	ForceFullPower bool
}

// Pass reports whether no rule fired.
func (v Verdict) Pass() bool { return v.Violation == NoViolation && !v.ForceFullPower }

// Supervisor carries the per-run interlock state: the ramp checkpoint
// cursor and the bang-bang rolling baseline. Reset via BeginRun at each run
// start; there is no recovery path once a violation is raised.
type Supervisor struct {
	cfg config.Safety

	startedAt  time.Time
	startTempC float64
	checkpoint int

	bbBaseTempC float64
	bbBaseAt    time.Time
	bbArmed     bool
}

// NewSupervisor builds a supervisor over the configured thresholds.
func NewSupervisor(cfg config.Safety) *Supervisor {
	return &Supervisor{cfg: cfg}
}

// BeginRun rearms every rule for a new run.
func (s *Supervisor) BeginRun(now time.Time, startTempC float64) {
	s.startedAt = now
	s.startTempC = startTempC
	s.checkpoint = 0
	s.bbArmed = false
}

// BeginReflow initializes the bang-bang rolling baseline when the state
// machine enters Reflow.
func (s *Supervisor) BeginReflow(now time.Time, pv float64) {
	s.bbBaseTempC = pv
	s.bbBaseAt = now
	s.bbArmed = true
}

// Check evaluates every rule that applies to the current stage. soakMaxC is
// the active profile's soak ceiling, used by the soak accuracy rule; mode
// gates the bang-bang override, which only fires while the controller still
// drives itself.
func (s *Supervisor) Check(now time.Time, stage models.Stage, pv, setpoint, soakMaxC float64, mode control.Mode) Verdict {
	elapsed := now.Sub(s.startedAt)

	// Cycle-level rules apply to every active stage. A bake run has no
	// fixed length, so only the overtemp rule covers it.
	if pv >= s.cfg.CycleMaxTempC {
		return Verdict{Violation: CycleOvertemp}
	}
	if stage != models.StageBake && elapsed > s.cfg.CycleMaxTime {
		return Verdict{Violation: CycleTimeout}
	}

	switch stage {
	case models.StagePreheat:
		if v := s.checkPreheat(elapsed, pv); v != NoViolation {
			return Verdict{Violation: v}
		}
	case models.StageSoak:
		if elapsed > s.cfg.SoakDeadline {
			return Verdict{Violation: SoakTimeout}
		}
		// Once the ramped setpoint has cleared the profile ceiling the
		// actual temperature must have followed to within tolerance.
		if setpoint > soakMaxC && pv < soakMaxC-s.cfg.SoakToleranceC {
			return Verdict{Violation: SoakAccuracyFailure}
		}
	case models.StageReflow:
		if elapsed > s.cfg.ReflowDeadline {
			return Verdict{Violation: ReflowPeakTimeout}
		}
		if s.bangBangDue(now, pv, mode) {
			return Verdict{ForceFullPower: true}
		}
	}
	return Verdict{}
}

// checkPreheat enforces the cumulative ramp checkpoints and the absolute
// deadline for reaching the soak minimum. Checkpoints are latched: each is
// evaluated exactly once when its time arrives.
func (s *Supervisor) checkPreheat(elapsed time.Duration, pv float64) Violation {
	for s.checkpoint < len(s.cfg.PreheatMinRisesC) {
		due := s.cfg.PreheatCheckEvery * time.Duration(s.checkpoint+1)
		if elapsed < due {
			break
		}
		if pv-s.startTempC < s.cfg.PreheatMinRisesC[s.checkpoint] {
			return PreheatRampFailure
		}
		s.checkpoint++
	}
	if elapsed > s.cfg.PreheatDeadline {
		return PreheatTimeout
	}
	return NoViolation
}

// bangBangDue tracks the rolling minimum-rise check. The baseline resets
// whenever the increment requirement is met; a stall past the window while
// in Automatic demands full power.
func (s *Supervisor) bangBangDue(now time.Time, pv float64, mode control.Mode) bool {
	if !s.bbArmed || mode != control.Automatic {
		return false
	}
	if pv-s.bbBaseTempC >= s.cfg.BangBangMinRiseC {
		s.bbBaseTempC = pv
		s.bbBaseAt = now
		return false
	}
	return now.Sub(s.bbBaseAt) >= s.cfg.BangBangWindow
}
