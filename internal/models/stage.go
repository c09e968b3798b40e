package models

// Stage is the single active phase of the reflow process. Exactly one stage
// is active at a time; abort and cancel stages are terminal for the run and
// fall back to StageIdle after the notification delay.
type Stage string

const (
	// Idle family: profile selection and summary views.
	StageIdle        Stage = "IDLE"         // lead-free profile selected
	StageIdleLeaded  Stage = "IDLE_LEADED"  // leaded profile selected
	StageSummaryView Stage = "SUMMARY_VIEW" // last run metrics view

	StageTooHotToStart Stage = "TOO_HOT_TO_START"

	// Active run stages.
	StagePreheat        Stage = "PREHEAT"
	StageSoak           Stage = "SOAK"
	StageReflow         Stage = "REFLOW"
	StageReflowCooldown Stage = "REFLOW_COOLDOWN"
	StageCool           Stage = "COOL"
	StageBake           Stage = "BAKE" // constant-temperature run

	// Terminal stages.
	StageComplete      Stage = "COMPLETE"
	StagePreheatAbort  Stage = "PREHEAT_ABORT"
	StageSoakAbort     Stage = "SOAK_ABORT"
	StageReflowAbort   Stage = "REFLOW_ABORT"
	StageCycleAbort    Stage = "CYCLE_ABORT"
	StageUserCancelled Stage = "USER_CANCELLED"

	StageSensorError Stage = "SENSOR_ERROR"
)

// Heating reports whether the actuator is ever allowed on in this stage.
// The duty controller gates the heater on this in addition to its own
// output, so a stale output value can never fire the heater during cooldown.
func (s Stage) Heating() bool {
	switch s {
	case StagePreheat, StageSoak, StageReflow, StageBake:
		return true
	}
	return false
}

// RunActive reports whether a run is in progress, i.e. a cancel command is
// accepted and the safety supervisor is evaluated.
func (s Stage) RunActive() bool {
	switch s {
	case StagePreheat, StageSoak, StageReflow, StageReflowCooldown, StageCool, StageBake:
		return true
	}
	return false
}

// IdleFamily reports whether short commands cycle the selection views.
func (s Stage) IdleFamily() bool {
	switch s {
	case StageIdle, StageIdleLeaded, StageSummaryView:
		return true
	}
	return false
}

// Terminal reports whether the stage only waits out the notification delay
// before returning to StageIdle.
func (s Stage) Terminal() bool {
	switch s {
	case StageComplete, StagePreheatAbort, StageSoakAbort, StageReflowAbort,
		StageCycleAbort, StageUserCancelled:
		return true
	}
	return false
}
