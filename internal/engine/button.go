package engine

import (
	"time"

	"reflow_oven/internal/config"
)

// ButtonEvent is a discrete command event resolved from the raw button
// level.
type ButtonEvent int

const (
	ButtonNone ButtonEvent = iota
	ButtonShortPress
	ButtonLongPressArmed
	ButtonLongPressReleased
)

func (e ButtonEvent) String() string {
	switch e {
	case ButtonShortPress:
		return "SHORT_PRESS"
	case ButtonLongPressArmed:
		return "LONG_PRESS_ARMED"
	case ButtonLongPressReleased:
		return "LONG_PRESS_RELEASED"
	}
	return "NONE"
}

// ButtonDecoder discriminates short presses from long presses. A press
// becomes valid after the debounce hold; holding past the long-press
// threshold arms the accept action, which takes effect only on release.
type ButtonDecoder struct {
	debounce  time.Duration
	longPress time.Duration

	down   bool
	downAt time.Time
	valid  bool
	armed  bool
}

// NewButtonDecoder builds a decoder with the configured timings.
func NewButtonDecoder(cfg config.Input) *ButtonDecoder {
	return &ButtonDecoder{debounce: cfg.DebounceHold, longPress: cfg.LongPress}
}

// Update feeds one raw level sample and returns at most one event.
func (d *ButtonDecoder) Update(now time.Time, level bool) ButtonEvent {
	if level {
		if !d.down {
			d.down = true
			d.downAt = now
			d.valid = false
			d.armed = false
			return ButtonNone
		}
		held := now.Sub(d.downAt)
		if !d.valid && held >= d.debounce {
			d.valid = true
		}
		if d.valid && !d.armed && held >= d.longPress {
			d.armed = true
			return ButtonLongPressArmed
		}
		return ButtonNone
	}

	if !d.down {
		return ButtonNone
	}
	d.down = false
	switch {
	case !d.valid:
		// Bounce shorter than the debounce hold; not a press.
		return ButtonNone
	case d.armed:
		return ButtonLongPressReleased
	default:
		return ButtonShortPress
	}
}
