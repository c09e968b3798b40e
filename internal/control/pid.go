package control

import (
	"time"

	"reflow_oven/internal/models"
)

// Mode selects who drives the controller output.
type Mode int

const (
	// Automatic advances the PID law on each sample cadence.
	Automatic Mode = iota
	// Manual freezes the PID; the output holds whatever the caller set.
	Manual
)

func (m Mode) String() string {
	if m == Manual {
		return "MANUAL"
	}
	return "AUTOMATIC"
}

// DutyController runs the PID update on a fixed cadence and maps the output
// onto a repeating time window to produce the heater on/off decision.
// Output lives in [0, WindowMax] milliseconds of on-time per window.
//
// Not safe for concurrent use; the engine tick is the single caller.
type DutyController struct {
	window      time.Duration
	sampleEvery time.Duration

	mode   Mode
	gains  models.GainSet
	output float64

	iTerm     float64
	lastInput float64

	windowStart   time.Time
	windowPending bool
	lastSample    time.Time
	started       bool
}

// NewDutyController builds a controller for the given window and PID sample
// cadence (both default 1 s).
func NewDutyController(window, sampleEvery time.Duration) *DutyController {
	return &DutyController{window: window, sampleEvery: sampleEvery}
}

// WindowMax is the upper output bound in window time units (milliseconds).
func (d *DutyController) WindowMax() float64 {
	return float64(d.window.Milliseconds())
}

// Start arms the controller for a new run: Automatic mode, zero output,
// cleared integral. lastSample is backdated so Compute fires on the very
// next call. The first window does not open here: the command phase runs a
// full tick before the first PID pass, and anchoring the window at Start
// would put every later computation a constant tick-length behind its
// window, a systematic duty bias. windowStart below is only a placeholder
// for Demand; the first Compute re-anchors it.
func (d *DutyController) Start(now time.Time, pv float64, g models.GainSet) {
	d.mode = Automatic
	d.gains = g
	d.output = 0
	d.iTerm = 0
	d.lastInput = pv
	d.windowStart = now
	d.windowPending = true
	d.lastSample = now.Add(-d.sampleEvery)
	d.started = true
}

// SetGains swaps the active tuning. The integral accumulator and input
// history survive the swap; only the coefficients change.
func (d *DutyController) SetGains(g models.GainSet) {
	d.gains = g
}

// Gains returns the active tuning.
func (d *DutyController) Gains() models.GainSet { return d.gains }

// SetMode switches mode and assigns the resulting output in one operation.
// Callers can never change mode without stating what the output becomes,
// which closes the historical "Manual but output not zeroed" bug class.
// Re-entering Automatic re-seeds the PID state from the given output.
func (d *DutyController) SetMode(m Mode, output float64) {
	output = clamp(output, 0, d.WindowMax())
	if m == Automatic && d.mode == Manual {
		// Bumpless-ish transfer: carry the manual output into the
		// integral so Automatic resumes from it instead of from zero.
		d.iTerm = output
	}
	d.mode = m
	d.output = output
}

// Mode returns the current controller mode.
func (d *DutyController) Mode() Mode { return d.mode }

// Output returns the current output value in window time units.
func (d *DutyController) Output() float64 { return d.output }

// DutyPercent reports the commanded duty cycle for telemetry.
func (d *DutyController) DutyPercent() float64 {
	if d.window <= 0 {
		return 0
	}
	return 100 * d.output / d.WindowMax()
}

// Compute advances the PID law if a full sample period has elapsed and the
// controller is Automatic. Returns true when a new output was produced.
//
// Standard positional form with derivative on measurement: the integral
// accumulates gain-scaled error and is clamped to the output range, so the
// output can never exceed [0, WindowMax] even after long saturation.
func (d *DutyController) Compute(now time.Time, setpoint, pv float64) bool {
	if !d.started || d.mode != Automatic {
		return false
	}
	if now.Sub(d.lastSample) < d.sampleEvery {
		return false
	}
	d.lastSample = now

	if d.windowPending {
		// First computation after Start: the window opens here so window
		// phase and sample phase share one origin.
		d.windowStart = now
		d.windowPending = false
	}

	dt := d.sampleEvery.Seconds()
	err := setpoint - pv

	d.iTerm += d.gains.I * err * dt
	d.iTerm = clamp(d.iTerm, 0, d.WindowMax())

	dInput := (pv - d.lastInput) / dt
	d.lastInput = pv

	d.output = clamp(d.gains.P*err+d.iTerm-d.gains.D*dInput, 0, d.WindowMax())
	return true
}

// Demand returns the heater decision for this instant. heating must be true
// only for stages whose membership allows the actuator on; the output value
// alone never fires the heater. The window advances by exactly its own
// duration, never by jumping to now, so windowStart values stay an
// arithmetic sequence and the duty cycle carries no phase drift.
func (d *DutyController) Demand(now time.Time, heating bool) bool {
	if !d.started {
		return false
	}
	for now.Sub(d.windowStart) >= d.window {
		d.windowStart = d.windowStart.Add(d.window)
	}
	if !heating {
		return false
	}
	elapsedMs := float64(now.Sub(d.windowStart)) / float64(time.Millisecond)
	return d.output >= elapsedMs && d.output > 0
}

// WindowStart exposes the current window origin for tests.
func (d *DutyController) WindowStart() time.Time { return d.windowStart }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
