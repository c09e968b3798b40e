package engine

import (
	"time"

	"reflow_oven/internal/config"
	"reflow_oven/internal/control"
	"reflow_oven/internal/logger"
	"reflow_oven/internal/models"
	"reflow_oven/internal/safety"

	"github.com/google/uuid"
)

// CommandKind identifies a discrete operator command.
type CommandKind int

const (
	// CommandShort cycles the idle profile-selection views.
	CommandShort CommandKind = iota
	// CommandAccept is the long-press action: start from an idle profile
	// view, cancel while a run is active.
	CommandAccept
	// CommandStart starts a run with an explicit profile (HTTP surface).
	CommandStart
	// CommandCancel cancels the active run (HTTP surface).
	CommandCancel
	// CommandBake starts a constant-temperature run.
	CommandBake
)

// Command is one operator command, from the button decoder or the API.
type Command struct {
	Kind        CommandKind
	Profile     models.Profile // CommandStart
	BakeTargetC float64        // CommandBake
}

// Recorder receives the machine's lifecycle effects: persistence, counters,
// event log and audible notification all hang off these callbacks so the
// machine itself stays free of I/O. now is the tick instant, so everything
// recorded stays on the run timeline even under a synthetic clock.
type Recorder interface {
	RunStarted(now time.Time, rec models.RunRecord)
	RunFinished(now time.Time, rec models.RunRecord)
	StageChanged(now time.Time, from, to models.Stage)
	OverrideEngaged(now time.Time, reason string)
	SensorFaulted(now time.Time, code models.FaultCode)
}

// Machine is the process state machine. It owns the stage, the active
// profile, the setpoint and the live RunRecord, and it drives the duty
// controller, the gain scheduler and the safety supervisor in the fixed
// per-tick order: safety verdict first, stage logic second, so an abort
// always overrides a stage advance decided in the same tick.
type Machine struct {
	cfg *config.Config
	log *logger.Logger

	ctrl  *control.DutyController
	sched *control.Scheduler
	sup   *safety.Supervisor
	rec   Recorder

	stage     models.Stage
	profile   models.Profile
	setpoint  float64
	run       models.RunRecord
	runValid  bool // run holds data (live or last finished)
	runActive bool

	soakStepAt time.Time
	returnAt   time.Time
}

// NewMachine builds the machine in the idle lead-free view.
func NewMachine(cfg *config.Config, log *logger.Logger, ctrl *control.DutyController, sched *control.Scheduler, sup *safety.Supervisor, rec Recorder) *Machine {
	return &Machine{
		cfg:     cfg,
		log:     log,
		ctrl:    ctrl,
		sched:   sched,
		sup:     sup,
		rec:     rec,
		stage:   models.StageIdle,
		profile: models.ProfileLeadFree,
	}
}

// Stage returns the active stage.
func (m *Machine) Stage() models.Stage { return m.stage }

// Profile returns the selected profile.
func (m *Machine) Profile() models.Profile { return m.profile }

// Setpoint returns the instantaneous target temperature.
func (m *Machine) Setpoint() float64 { return m.setpoint }

// RunActive reports whether a run is in progress.
func (m *Machine) RunActive() bool { return m.runActive }

// Run returns a copy of the live (or last finished) run record and whether
// one exists.
func (m *Machine) Run() (models.RunRecord, bool) { return m.run, m.runValid }

// Tick advances the machine by one control tick with the filtered process
// variable. Safety is evaluated before any stage transition commits.
func (m *Machine) Tick(now time.Time, pv float64) {
	if m.runActive {
		temps := m.cfg.Profiles.Temps(m.profile)
		verdict := m.sup.Check(now, m.stage, pv, m.setpoint, temps.SoakMaxC, m.ctrl.Mode())
		if verdict.Violation != safety.NoViolation {
			m.abort(now, pv, verdict.Violation)
			return
		}
		if verdict.ForceFullPower {
			m.ctrl.SetMode(control.Manual, m.ctrl.WindowMax())
			m.log.Warnw("bang-bang override engaged", "stage", m.stage, "temp_c", pv)
			m.rec.OverrideEngaged(now, "reflow ramp stalled; heater forced full on")
		}
	}

	m.advance(now, pv)

	if m.stage.Heating() && m.ctrl.Mode() == control.Automatic {
		if g, key, changed := m.sched.Select(m.stage, m.setpoint, pv); changed {
			m.ctrl.SetGains(g)
			m.log.Infow("gain set switched", "key", key, "stage", m.stage)
		}
	}
}

// advance runs the per-stage transition logic.
func (m *Machine) advance(now time.Time, pv float64) {
	temps := m.cfg.Profiles.Temps(m.profile)

	switch m.stage {
	case models.StageTooHotToStart:
		if pv < m.cfg.Profiles.RoomMaxC {
			m.setStage(now, models.StageIdle)
		}

	case models.StagePreheat:
		if pv >= m.cfg.Profiles.SoakMinC {
			m.run.PreheatEndedAt = now
			m.run.PreheatEndTempC = pv
			m.soakStepAt = now
			m.setStage(now, models.StageSoak)
		}

	case models.StageSoak:
		for now.Sub(m.soakStepAt) >= m.cfg.Profiles.SoakStepEvery {
			m.setpoint += m.cfg.Profiles.SoakStepC
			m.soakStepAt = m.soakStepAt.Add(m.cfg.Profiles.SoakStepEvery)
		}
		if m.setpoint > temps.SoakMaxC && pv >= temps.SoakMaxC-m.cfg.Safety.SoakToleranceC {
			m.run.SoakEndedAt = now
			m.run.SoakEndTempC = pv
			m.setpoint = temps.ReflowMaxC
			m.sup.BeginReflow(now, pv)
			m.setStage(now, models.StageReflow)
		}
		// Setpoint past the ceiling with the temperature lagging is the
		// supervisor's call; it aborts on the next tick if the band is
		// missed.

	case models.StageReflow:
		if pv >= temps.ReflowMaxC {
			m.run.PeakAt = now
			m.run.PeakTempC = pv
			m.ctrl.SetMode(control.Manual, 0)
			m.setpoint = 0 // telemetry marker only
			m.setStage(now, models.StageReflowCooldown)
		}

	case models.StageReflowCooldown:
		if pv <= temps.SoakMaxC {
			m.run.ReflowEndedAt = now
			m.run.ReflowEndTempC = pv
			m.setStage(now, models.StageCool)
		}

	case models.StageCool:
		if pv <= m.cfg.Profiles.CoolMinC {
			m.finish(now, pv, models.StatusOk)
		}

	case models.StageComplete, models.StagePreheatAbort, models.StageSoakAbort,
		models.StageReflowAbort, models.StageCycleAbort, models.StageUserCancelled:
		if !now.Before(m.returnAt) {
			m.profile = models.ProfileLeadFree
			m.setStage(now, models.StageIdle)
		}

	case models.StageIdle, models.StageIdleLeaded, models.StageSummaryView,
		models.StageBake, models.StageSensorError:
		// Nothing temperature-driven here: bake holds its setpoint until
		// cancelled, sensor-error recovery is handled on the sample path.
	}
}

// HandleCommand applies one operator command. Invalid commands for the
// current stage are silently ignored, which makes cancel idempotent.
func (m *Machine) HandleCommand(now time.Time, pv float64, cmd Command) {
	switch cmd.Kind {
	case CommandShort:
		m.cycleView(now)

	case CommandAccept:
		switch {
		case m.stage == models.StageIdle || m.stage == models.StageIdleLeaded:
			m.startRun(now, pv)
		case m.runActive:
			m.cancel(now, pv)
		}

	case CommandStart:
		if m.stage.IdleFamily() {
			if cmd.Profile == models.ProfileLeaded {
				m.profile = models.ProfileLeaded
			} else {
				m.profile = models.ProfileLeadFree
			}
			m.startRun(now, pv)
		}

	case CommandCancel:
		if m.runActive {
			m.cancel(now, pv)
		}

	case CommandBake:
		if m.stage.IdleFamily() {
			m.startBake(now, pv, cmd.BakeTargetC)
		}
	}
}

// cycleView rotates Idle → IdleLeaded → SummaryView → Idle and keeps the
// selected profile in step with the view.
func (m *Machine) cycleView(now time.Time) {
	switch m.stage {
	case models.StageIdle:
		m.profile = models.ProfileLeaded
		m.setStage(now, models.StageIdleLeaded)
	case models.StageIdleLeaded:
		m.setStage(now, models.StageSummaryView)
	case models.StageSummaryView:
		m.profile = models.ProfileLeadFree
		m.setStage(now, models.StageIdle)
	}
}

// startRun begins a profile run, unless the oven is still too hot.
func (m *Machine) startRun(now time.Time, pv float64) {
	if pv >= m.cfg.Profiles.RoomMaxC {
		m.setStage(now, models.StageTooHotToStart)
		return
	}
	m.beginRun(now, pv, models.StagePreheat, m.cfg.Profiles.SoakMinC)
}

// startBake begins a constant-temperature run at the given target.
func (m *Machine) startBake(now time.Time, pv, targetC float64) {
	if targetC <= 0 || targetC >= m.cfg.Safety.CycleMaxTempC {
		m.log.Warnw("bake target rejected", "target_c", targetC)
		return
	}
	m.beginRun(now, pv, models.StageBake, targetC)
}

func (m *Machine) beginRun(now time.Time, pv float64, first models.Stage, setpoint float64) {
	m.run = models.RunRecord{
		RunID:      uuid.NewString(),
		Profile:    m.profile,
		StartedAt:  now,
		StartTempC: pv,
		Status:     models.StatusInProgress,
	}
	m.runValid = true
	m.runActive = true
	m.setpoint = setpoint

	m.sup.BeginRun(now, pv)
	m.sched.Reset()
	g, key, _ := m.sched.Select(first, setpoint, pv)
	m.ctrl.Start(now, pv, g)

	m.setStage(now, first)
	m.log.Infow("run started",
		"run_id", m.run.RunID, "profile", m.profile, "start_temp_c", pv, "gains", key)
	m.rec.RunStarted(now, m.run)
}

// cancel mirrors the supervisor abort sequence with no temperature check.
func (m *Machine) cancel(now time.Time, pv float64) {
	m.finish(now, pv, models.StatusCancelled)
}

func (m *Machine) abort(now time.Time, pv float64, v safety.Violation) {
	m.log.Errorw("safety abort", "reason", v, "stage", m.stage, "temp_c", pv)
	m.finishAs(now, pv, v.Status(), v.AbortStage())
}

func (m *Machine) finish(now time.Time, pv float64, status models.CompletionStatus) {
	stage := models.StageComplete
	if status == models.StatusCancelled {
		stage = models.StageUserCancelled
	}
	m.finishAs(now, pv, status, stage)
}

// finishAs is the single terminal path: controller to Manual with zero
// output, record finalized, stage set, notification delay armed.
func (m *Machine) finishAs(now time.Time, pv float64, status models.CompletionStatus, stage models.Stage) {
	m.ctrl.SetMode(control.Manual, 0)
	m.run.EndedAt = now
	m.run.EndTempC = pv
	m.run.Status = status
	m.runActive = false
	m.returnAt = now.Add(m.cfg.Control.NotifyDelay)
	m.setStage(now, stage)
	m.rec.RunFinished(now, m.run)
}

// SensorFault forces the global sensor-error stage from anywhere. The live
// run, if any, is abandoned without RunRecord finalization: the process
// variable itself is untrustworthy, so nothing derived from it is recorded.
func (m *Machine) SensorFault(now time.Time, code models.FaultCode) {
	m.ctrl.SetMode(control.Manual, 0)
	if m.runActive {
		m.runActive = false
		m.runValid = false
	}
	if m.stage != models.StageSensorError {
		m.log.Errorw("sensor fault", "code", code)
		m.setStage(now, models.StageSensorError)
		m.rec.SensorFaulted(now, code)
	}
}

// SensorRestored leaves the sensor-error stage once valid readings are
// seen again. The operator must start a new run; nothing resumes.
func (m *Machine) SensorRestored(now time.Time) {
	if m.stage == models.StageSensorError {
		m.profile = models.ProfileLeadFree
		m.setStage(now, models.StageIdle)
	}
}

func (m *Machine) setStage(now time.Time, to models.Stage) {
	if m.stage == to {
		return
	}
	from := m.stage
	m.stage = to
	m.rec.StageChanged(now, from, to)
}
