//go:build !linux

package hardware

import (
	"errors"

	"reflow_oven/internal/config"
)

// GPIODevices is only available on Linux, where the GPIO character device
// exists. On other platforms the engine runs against the simulated plant.
type GPIODevices struct{}

func OpenGPIO(config.GPIO) (*GPIODevices, error) {
	return nil, errors.New("gpio requires linux")
}

func (g *GPIODevices) Set(bool) error       { return nil }
func (g *GPIODevices) Level() (bool, error) { return false, nil }
func (g *GPIODevices) Milestone()           {}
func (g *GPIODevices) Alarm()               {}
func (g *GPIODevices) Close() error         { return nil }
