package models

// FaultCode classifies a sensor fault reported in-band by the thermocouple
// frontend. FaultNone means the reading carries a valid temperature.
type FaultCode string

const (
	FaultNone          FaultCode = ""
	FaultOpenCircuit   FaultCode = "OPEN_CIRCUIT"
	FaultShortToGround FaultCode = "SHORT_TO_GROUND"
	FaultShortToSupply FaultCode = "SHORT_TO_SUPPLY"
)

// Reading is one raw sensor sample: either a temperature or a fault marker.
type Reading struct {
	TempC float64
	Fault FaultCode
}

// Faulted reports whether the sample carries a fault instead of a value.
func (r Reading) Faulted() bool { return r.Fault != FaultNone }

// GainSet is one PID tuning triple. Preheat and Reflow carry a far and a
// near variant; Soak and Bake use a single set.
type GainSet struct {
	P float64 `json:"p" mapstructure:"p"`
	I float64 `json:"i" mapstructure:"i"`
	D float64 `json:"d" mapstructure:"d"`
}
