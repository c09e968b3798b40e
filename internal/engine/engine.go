package engine

import (
	"context"
	"sync"
	"time"

	"reflow_oven/internal/config"
	"reflow_oven/internal/control"
	"reflow_oven/internal/logger"
	"reflow_oven/internal/models"
	"reflow_oven/internal/safety"

	"github.com/google/uuid"
)

// Engine runs the cooperative control loop: one tick per iteration, no
// preemption, all waiting modeled as not-yet-due checks against the tick
// timestamp. Within a tick the fixed order is sensor sample → safety →
// stage logic → control computation → actuator decision → command polling →
// telemetry, so a safety abort always wins over a stage advance and the
// actuator decision never runs against stale stage membership.
type Engine struct {
	cfg *config.Config
	log *logger.Logger

	sensor   Sensor
	heater   Heater
	button   ButtonInput
	notifier Notifier
	telem    Telemetry
	stores   Stores

	cond    *control.Conditioner
	ctrl    *control.DutyController
	sched   *control.Scheduler
	sup     *safety.Supervisor
	machine *Machine
	decoder *ButtonDecoder

	cmds chan Command

	pv       float64
	havePV   bool
	faulted  bool
	heaterOn bool

	lastSampleAt  time.Time
	lastDisplayAt time.Time
	lastDisplayPV float64
	rampRate      float64

	ctx context.Context

	mu   sync.RWMutex
	snap models.OvenSnapshot
}

// New wires an engine from its collaborators. The machine, controller,
// scheduler and supervisor are constructed here so their ownership stays
// inside the loop.
func New(cfg *config.Config, log *logger.Logger, sensor Sensor, heater Heater, button ButtonInput, notifier Notifier, telem Telemetry, stores Stores) *Engine {
	e := &Engine{
		cfg:      cfg,
		log:      log,
		sensor:   sensor,
		heater:   heater,
		button:   button,
		notifier: notifier,
		telem:    telem,
		stores:   stores,
		cond:     control.NewConditioner(),
		ctrl:     control.NewDutyController(cfg.Control.Window, cfg.Control.SampleEvery),
		sched:    control.NewScheduler(cfg.Gains),
		sup:      safety.NewSupervisor(cfg.Safety),
		decoder:  NewButtonDecoder(cfg.Input),
		cmds:     make(chan Command, 8),
		ctx:      context.Background(),
	}
	e.machine = NewMachine(cfg, log, e.ctrl, e.sched, e.sup, e)
	e.snap = models.OvenSnapshot{Stage: models.StageIdle, Profile: models.ProfileLeadFree}
	return e
}

// Run ticks at the configured interval until ctx is cancelled. The heater
// is switched off on the way out.
func (e *Engine) Run(ctx context.Context) {
	e.ctx = ctx
	t := time.NewTicker(e.cfg.Control.TickEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			if err := e.heater.Set(false); err != nil {
				e.log.Errorw("heater off on shutdown failed", "err", err)
			}
			return
		case now := <-t.C:
			e.Tick(now)
		}
	}
}

// Enqueue hands a command to the loop; it takes effect on the next tick.
// Returns false when the queue is full.
func (e *Engine) Enqueue(cmd Command) bool {
	select {
	case e.cmds <- cmd:
		return true
	default:
		return false
	}
}

// Snapshot returns the last published live state.
func (e *Engine) Snapshot() models.OvenSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap
}

// LastRun returns a copy of the live or last finished run record.
func (e *Engine) LastRun() (models.RunRecord, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.machine.Run()
}

// Tick executes one full control iteration at the given instant. Exported
// so tests can drive synthetic time through the loop.
func (e *Engine) Tick(now time.Time) {
	e.samplePhase(now)

	if e.havePV && !e.faulted {
		e.machine.Tick(now, e.pv)
		e.ctrl.Compute(now, e.machine.Setpoint(), e.pv)
	}

	on := !e.faulted && e.ctrl.Demand(now, e.machine.Stage().Heating())
	e.heaterOn = on
	if err := e.heater.Set(on); err != nil {
		e.log.Errorw("heater switch failed", "err", err, "on", on)
	}

	e.commandPhase(now)
	e.displayPhase(now)
}

// samplePhase reads the sensor on its own cadence and routes faults.
func (e *Engine) samplePhase(now time.Time) {
	if !e.lastSampleAt.IsZero() && now.Sub(e.lastSampleAt) < e.cfg.Control.SensorEvery {
		return
	}
	e.lastSampleAt = now

	reading, err := e.sensor.Sample()
	if err != nil {
		e.log.Errorw("sensor read failed", "err", err)
		return
	}
	if reading.Faulted() {
		if !e.faulted {
			e.faulted = true
			e.cond.Reset()
			e.machine.SensorFault(now, reading.Fault)
		}
		return
	}
	e.pv = e.cond.Update(reading.TempC)
	e.havePV = true
	if e.faulted {
		e.faulted = false
		e.machine.SensorRestored(now)
	}
}

// commandPhase drains API commands and polls the button.
func (e *Engine) commandPhase(now time.Time) {
	for {
		select {
		case cmd := <-e.cmds:
			e.machine.HandleCommand(now, e.pv, cmd)
			continue
		default:
		}
		break
	}

	level, err := e.button.Level()
	if err != nil {
		e.log.Errorw("button read failed", "err", err)
		return
	}
	switch e.decoder.Update(now, level) {
	case ButtonShortPress:
		e.machine.HandleCommand(now, e.pv, Command{Kind: CommandShort})
	case ButtonLongPressArmed:
		e.notifier.Milestone() // audible cue that release will accept
	case ButtonLongPressReleased:
		e.machine.HandleCommand(now, e.pv, Command{Kind: CommandAccept})
	}
}

// displayPhase publishes the snapshot once per display cadence.
func (e *Engine) displayPhase(now time.Time) {
	if !e.lastDisplayAt.IsZero() && now.Sub(e.lastDisplayAt) < e.cfg.Control.DisplayEvery {
		return
	}
	if !e.lastDisplayAt.IsZero() {
		dt := now.Sub(e.lastDisplayAt).Seconds()
		if dt > 0 {
			e.rampRate = (e.pv - e.lastDisplayPV) / dt
		}
	}
	e.lastDisplayAt = now
	e.lastDisplayPV = e.pv

	snap := models.OvenSnapshot{
		Stage:         e.machine.Stage(),
		Profile:       e.machine.Profile(),
		SetpointC:     e.machine.Setpoint(),
		TempC:         e.pv,
		RampRateCPerS: e.rampRate,
		DutyPercent:   e.ctrl.DutyPercent(),
		HeaterOn:      e.heaterOn,
		UpdatedAt:     now.UTC(),
	}
	if rec, ok := e.machine.Run(); ok && e.machine.RunActive() {
		snap.ElapsedSeconds = rec.ElapsedSeconds(now)
	}

	e.mu.Lock()
	e.snap = snap
	e.mu.Unlock()

	if e.stores.State != nil {
		if err := e.stores.State.SaveSnapshot(e.ctx, snap); err != nil {
			e.log.Errorw("snapshot save failed", "err", err)
		}
	}
	if e.telem != nil && e.machine.RunActive() {
		e.telem.PublishSample(snap)
	}
}

// ---- Recorder implementation: the machine's effects land here. ----

// RunStarted commits the attempted counter and logs the start event.
func (e *Engine) RunStarted(now time.Time, rec models.RunRecord) {
	e.increment(CounterAttempted)
	e.appendEvent(now, models.EventRunStart, "run started", map[string]any{
		"run_id": rec.RunID, "profile": rec.Profile, "start_temp_c": rec.StartTempC,
	})
	e.notifier.Milestone()
}

// RunFinished persists the record, bumps the outcome counter and plays the
// matching audible sequence.
func (e *Engine) RunFinished(now time.Time, rec models.RunRecord) {
	if e.stores.Runs != nil {
		if err := e.stores.Runs.SaveRun(e.ctx, rec); err != nil {
			e.log.Errorw("run record save failed", "err", err, "run_id", rec.RunID)
		}
	}
	if c := counterFor(rec.Status); c != "" {
		e.increment(c)
	}
	e.appendEvent(now, models.EventRunEnd, "run finished: "+string(rec.Status), map[string]any{
		"run_id": rec.RunID, "status": rec.Status, "end_temp_c": rec.EndTempC,
	})
	if rec.Status == models.StatusOk {
		e.notifier.Milestone()
	} else {
		e.notifier.Alarm()
	}
	if e.telem != nil {
		e.telem.PublishReport(rec)
	}
}

// StageChanged logs the transition and chirps on milestones within a run.
func (e *Engine) StageChanged(now time.Time, from, to models.Stage) {
	e.log.Infow("stage change", "from", from, "to", to)
	e.appendEvent(now, models.EventStageChange, string(from)+" -> "+string(to), nil)
	if from.RunActive() && to.RunActive() {
		e.notifier.Milestone()
	}
}

// OverrideEngaged logs the bang-bang takeover.
func (e *Engine) OverrideEngaged(now time.Time, reason string) {
	e.appendEvent(now, models.EventOverride, reason, nil)
}

// SensorFaulted logs the fault and sounds the alarm.
func (e *Engine) SensorFaulted(now time.Time, code models.FaultCode) {
	e.appendEvent(now, models.EventError, "sensor fault: "+string(code), nil)
	e.notifier.Alarm()
}

func counterFor(status models.CompletionStatus) string {
	switch status {
	case models.StatusOk:
		return CounterCompleted
	case models.StatusCancelled:
		return CounterCancelled
	case models.StatusPreheatError:
		return CounterPreheatAborts
	case models.StatusSoakError:
		return CounterSoakAborts
	case models.StatusReflowError:
		return CounterReflowAborts
	case models.StatusCycleError:
		return CounterCycleAborts
	}
	return ""
}

func (e *Engine) increment(name string) {
	if e.stores.Counters == nil {
		return
	}
	if err := e.stores.Counters.Increment(e.ctx, name); err != nil {
		e.log.Errorw("counter increment failed", "err", err, "counter", name)
	}
}

// appendEvent stamps entries with the tick instant, not the wall clock, so
// the event log lines up with the run timeline.
func (e *Engine) appendEvent(now time.Time, typ, desc string, meta map[string]any) {
	if e.stores.Events == nil {
		return
	}
	ev := models.OvenEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  now.UTC(),
		Type:        typ,
		Description: desc,
	}
	if meta != nil {
		ev.Metadata = meta
	}
	if err := e.stores.Events.Append(e.ctx, ev); err != nil {
		e.log.Errorw("event append failed", "err", err, "type", typ)
	}
}
