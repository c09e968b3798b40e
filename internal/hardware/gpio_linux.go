//go:build linux

package hardware

import (
	"fmt"
	"sync"
	"time"

	"reflow_oven/internal/config"

	"github.com/warthog618/go-gpiocdev"
)

// GPIODevices bundles the character-device lines for the solid-state relay,
// the front-panel button and the buzzer.
type GPIODevices struct {
	chip   *gpiocdev.Chip
	heater *gpiocdev.Line
	button *gpiocdev.Line
	buzzer *gpiocdev.Line

	mu      sync.Mutex
	beeping bool
}

// OpenGPIO requests all three lines from the configured chip. The heater and
// buzzer lines start low so a restart never leaves the relay latched on.
func OpenGPIO(cfg config.GPIO) (*GPIODevices, error) {
	chip, err := gpiocdev.NewChip(cfg.Chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", cfg.Chip, err)
	}

	heater, err := chip.RequestLine(cfg.HeaterPin, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request heater pin %d: %w", cfg.HeaterPin, err)
	}

	// Button wired to ground; pull-up makes the idle level high.
	button, err := chip.RequestLine(cfg.ButtonPin, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		heater.Close()
		chip.Close()
		return nil, fmt.Errorf("request button pin %d: %w", cfg.ButtonPin, err)
	}

	buzzer, err := chip.RequestLine(cfg.BuzzerPin, gpiocdev.AsOutput(0))
	if err != nil {
		button.Close()
		heater.Close()
		chip.Close()
		return nil, fmt.Errorf("request buzzer pin %d: %w", cfg.BuzzerPin, err)
	}

	return &GPIODevices{chip: chip, heater: heater, button: button, buzzer: buzzer}, nil
}

// Set drives the SSR line.
func (g *GPIODevices) Set(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := g.heater.SetValue(v); err != nil {
		return fmt.Errorf("set heater line: %w", err)
	}
	return nil
}

// Level reports whether the button is pressed. The line is active low.
func (g *GPIODevices) Level() (bool, error) {
	raw, err := g.button.Value()
	if err != nil {
		return false, fmt.Errorf("read button line: %w", err)
	}
	return raw == 0, nil
}

// Milestone plays one short chirp.
func (g *GPIODevices) Milestone() {
	g.play([]time.Duration{80 * time.Millisecond})
}

// Alarm plays three long beeps.
func (g *GPIODevices) Alarm() {
	g.play([]time.Duration{
		400 * time.Millisecond, 400 * time.Millisecond, 400 * time.Millisecond,
	})
}

// play runs the beep pattern off the control loop; overlapping requests are
// dropped rather than queued so an alarm storm cannot back up.
func (g *GPIODevices) play(beeps []time.Duration) {
	g.mu.Lock()
	if g.beeping {
		g.mu.Unlock()
		return
	}
	g.beeping = true
	g.mu.Unlock()

	go func() {
		defer func() {
			g.mu.Lock()
			g.beeping = false
			g.mu.Unlock()
		}()
		for i, d := range beeps {
			if i > 0 {
				time.Sleep(150 * time.Millisecond)
			}
			_ = g.buzzer.SetValue(1)
			time.Sleep(d)
			_ = g.buzzer.SetValue(0)
		}
	}()
}

// Close drops the heater line low and releases everything.
func (g *GPIODevices) Close() error {
	var errs []error
	if g.heater != nil {
		if err := g.heater.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("heater low: %w", err))
		}
		if err := g.heater.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close heater: %w", err))
		}
	}
	if g.button != nil {
		if err := g.button.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button: %w", err))
		}
	}
	if g.buzzer != nil {
		if err := g.buzzer.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("buzzer low: %w", err))
		}
		if err := g.buzzer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close buzzer: %w", err))
		}
	}
	if g.chip != nil {
		if err := g.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("gpio close: %v", errs)
	}
	return nil
}
