package models

import "time"

// OvenSnapshot is the live state published once per display cadence while
// the controller runs: over the WebSocket, to MQTT, and into the single-row
// state table for the REST monitoring endpoint.
type OvenSnapshot struct {
	Stage          Stage     `json:"stage"`
	Profile        Profile   `json:"profile"`
	ElapsedSeconds int       `json:"elapsed_seconds"`
	SetpointC      float64   `json:"setpoint_c"`
	TempC          float64   `json:"temp_c"`
	RampRateCPerS  float64   `json:"ramp_rate_c_per_s"`
	DutyPercent    float64   `json:"duty_percent"`
	HeaterOn       bool      `json:"heater_on"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// OvenEvent is a single append-only log entry.
type OvenEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // RUN_START | STAGE_CHANGE | RUN_END | ERROR | OVERRIDE
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}

// Event types appended by the engine.
const (
	EventRunStart    = "RUN_START"
	EventStageChange = "STAGE_CHANGE"
	EventRunEnd      = "RUN_END"
	EventError       = "ERROR"
	EventOverride    = "OVERRIDE"
)
