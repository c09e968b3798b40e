// Package engine owns the control loop: the process state machine, the
// cooperative tick scheduler and the command input decoder. Everything the
// engine touches in the outside world goes through the small ports below so
// the loop runs identically against GPIO hardware, the simulated plant and
// the test fakes.
package engine

import (
	"context"

	"reflow_oven/internal/models"
)

// Sensor produces one raw temperature sample per call. Implementations
// report thermocouple faults in-band via the Reading.
type Sensor interface {
	Sample() (models.Reading, error)
}

// Heater switches the actuator. Set is idempotent and safe to call every
// tick.
type Heater interface {
	Set(on bool) error
}

// ButtonInput reports the raw debounce-pending level of the front button.
type ButtonInput interface {
	Level() (bool, error)
}

// Notifier plays the audible sequences: a short chirp for milestones, the
// long-beep pattern for errors.
type Notifier interface {
	Milestone()
	Alarm()
}

// Telemetry receives the live sample once per display cadence while a run
// is active, and the full metrics report at run completion.
type Telemetry interface {
	PublishSample(models.OvenSnapshot)
	PublishReport(models.RunRecord)
}

// RunStore persists finished run records.
type RunStore interface {
	SaveRun(ctx context.Context, rec models.RunRecord) error
}

// CounterStore increments the named persistent counter.
type CounterStore interface {
	Increment(ctx context.Context, name string) error
}

// Names of the persistent counters. Each is incremented exactly once per
// run at the moment the corresponding terminal transition is taken.
const (
	CounterAttempted     = "attempted"
	CounterCompleted     = "completed"
	CounterCancelled     = "cancelled"
	CounterPreheatAborts = "preheat_aborted"
	CounterSoakAborts    = "soak_aborted"
	CounterReflowAborts  = "reflow_aborted"
	CounterCycleAborts   = "cycle_aborted"
)

// EventStore appends to the oven event log.
type EventStore interface {
	Append(ctx context.Context, ev models.OvenEvent) error
}

// SnapshotStore persists the single-row live state for the REST surface.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snap models.OvenSnapshot) error
}

// Stores bundles the persistence ports the engine commits to.
type Stores struct {
	Runs     RunStore
	Counters CounterStore
	Events   EventStore
	State    SnapshotStore
}
