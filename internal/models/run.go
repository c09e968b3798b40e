package models

import "time"

// Profile selects the temperature envelope of a run. Fixed for the duration
// of a run; selectable only from the idle views.
type Profile string

const (
	ProfileLeadFree Profile = "LEAD_FREE"
	ProfileLeaded   Profile = "LEADED"
)

// CompletionStatus is write-once per run apart from the initial
// IN_PROGRESS value.
type CompletionStatus string

const (
	StatusInProgress   CompletionStatus = "IN_PROGRESS"
	StatusOk           CompletionStatus = "OK"
	StatusCancelled    CompletionStatus = "CANCELLED"
	StatusPreheatError CompletionStatus = "PREHEAT_ERROR"
	StatusSoakError    CompletionStatus = "SOAK_ERROR"
	StatusReflowError  CompletionStatus = "REFLOW_ERROR"
	StatusCycleError   CompletionStatus = "CYCLE_ERROR"
)

// RunRecord captures one attempt to execute the reflow profile. Exactly one
// record is live at a time; it is mutated only by the state machine and the
// safety supervisor and overwritten at the next run start.
type RunRecord struct {
	RunID   string  `json:"run_id"`
	Profile Profile `json:"profile"`

	StartedAt  time.Time `json:"started_at"`
	StartTempC float64   `json:"start_temp_c"`

	PreheatEndedAt  time.Time `json:"preheat_ended_at,omitempty"`
	PreheatEndTempC float64   `json:"preheat_end_temp_c,omitempty"`
	SoakEndedAt     time.Time `json:"soak_ended_at,omitempty"`
	SoakEndTempC    float64   `json:"soak_end_temp_c,omitempty"`
	PeakAt          time.Time `json:"peak_at,omitempty"`
	PeakTempC       float64   `json:"peak_temp_c,omitempty"`
	ReflowEndedAt   time.Time `json:"reflow_ended_at,omitempty"`
	ReflowEndTempC  float64   `json:"reflow_end_temp_c,omitempty"`

	EndedAt  time.Time `json:"ended_at,omitempty"`
	EndTempC float64   `json:"end_temp_c,omitempty"`

	Status CompletionStatus `json:"status"`
}

// ElapsedSeconds returns whole seconds since run start.
func (r *RunRecord) ElapsedSeconds(now time.Time) int {
	if r.StartedAt.IsZero() {
		return 0
	}
	return int(now.Sub(r.StartedAt) / time.Second)
}

// CounterSet holds the persistent per-outcome run counters. Each counter is
// incremented exactly once at the corresponding terminal transition.
type CounterSet struct {
	Attempted     int `json:"attempted"`
	Completed     int `json:"completed"`
	Cancelled     int `json:"cancelled"`
	PreheatAborts int `json:"preheat_aborts"`
	SoakAborts    int `json:"soak_aborts"`
	ReflowAborts  int `json:"reflow_aborts"`
	CycleAborts   int `json:"cycle_aborts"`
}
