// Package control holds the signal path between the raw sensor and the
// heater: the median filter, the windowed PID duty-cycle controller and the
// gain scheduler.
package control

// Conditioner turns raw thermocouple samples into the process variable.
// It keeps the last three samples in a rotating buffer and emits their
// median, which rejects single-sample spikes while still tracking fast
// ramps. Not safe for concurrent use.
type Conditioner struct {
	window [3]float64
	next   int
	seeded bool
}

// NewConditioner returns an empty conditioner. The first sample seeds all
// three slots so the output never transients toward zero at start-up.
func NewConditioner() *Conditioner {
	return &Conditioner{}
}

// Update pushes one raw sample and returns the filtered process variable.
func (c *Conditioner) Update(sample float64) float64 {
	if !c.seeded {
		c.window[0], c.window[1], c.window[2] = sample, sample, sample
		c.seeded = true
		c.next = 1
		return sample
	}
	c.window[c.next] = sample
	c.next = (c.next + 1) % len(c.window)
	return medianOfThree(c.window[0], c.window[1], c.window[2])
}

// Reset clears the buffer; the next sample seeds it again. Called when a
// sensor fault invalidates the history.
func (c *Conditioner) Reset() {
	c.seeded = false
	c.next = 0
}

func medianOfThree(a, b, c float64) float64 {
	if a > b {
		a, b = b, a
	}
	if b > c {
		b = c
	}
	if a > b {
		b = a
	}
	return b
}
