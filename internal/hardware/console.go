package hardware

import "reflow_oven/internal/logger"

// ConsoleNotifier stands in for the buzzer when no GPIO is present.
type ConsoleNotifier struct {
	log *logger.Logger
}

func NewConsoleNotifier(log *logger.Logger) *ConsoleNotifier {
	return &ConsoleNotifier{log: log}
}

func (n *ConsoleNotifier) Milestone() { n.log.Infow("beep") }
func (n *ConsoleNotifier) Alarm()     { n.log.Warnw("alarm beep") }

// NoButton is the button input when no GPIO is present; the HTTP surface is
// the only command source then.
type NoButton struct{}

func (NoButton) Level() (bool, error) { return false, nil }
