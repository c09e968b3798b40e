package hardware

import (
	"sync"
	"time"

	"reflow_oven/internal/models"
)

// Plant defaults, tuned so a full profile run completes in roughly the same
// time as the real oven.
const (
	PlantAmbientC    = 25.0
	PlantHeatCPerSec = 2.5   // full-power heating rate at ambient
	PlantCoolCoeff   = 0.008 // per-second loss toward ambient
)

// Plant is a first-order thermal model of the oven cavity. It implements
// both the sensor and the heater port, so in simulation mode the engine is
// closed around it: duty decisions feed back into the temperature it reports.
type Plant struct {
	mu sync.Mutex

	tempC    float64
	heaterOn bool
	fault    models.FaultCode
	lastAt   time.Time

	now func() time.Time
}

// NewPlant returns a plant resting at ambient.
func NewPlant() *Plant {
	p := &Plant{tempC: PlantAmbientC, now: time.Now}
	p.lastAt = p.now()
	return p
}

// Sample advances the model by the elapsed wall time and reports the cavity
// temperature, or the injected fault.
func (p *Plant) Sample() (models.Reading, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.advance(p.now())
	if p.fault != "" {
		return models.Reading{Fault: p.fault}, nil
	}
	return models.Reading{TempC: p.tempC}, nil
}

// Set records the heater drive. The temperature effect is applied lazily on
// the next Sample.
func (p *Plant) Set(on bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.advance(p.now())
	p.heaterOn = on
	return nil
}

// InjectFault makes subsequent samples report the given fault; pass the
// empty code to clear it.
func (p *Plant) InjectFault(code models.FaultCode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fault = code
}

// TempC returns the current model temperature without advancing it.
func (p *Plant) TempC() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tempC
}

func (p *Plant) advance(now time.Time) {
	dt := now.Sub(p.lastAt).Seconds()
	if dt <= 0 {
		return
	}
	p.lastAt = now
	if p.heaterOn {
		p.tempC += PlantHeatCPerSec * dt
	}
	p.tempC -= PlantCoolCoeff * (p.tempC - PlantAmbientC) * dt
	if p.tempC < PlantAmbientC {
		p.tempC = PlantAmbientC
	}
}
