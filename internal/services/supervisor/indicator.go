package supervisor

import (
	"time"

	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/model/entities"
)

// Indicator drives an LED without blocking. Blink modes advance only when
// Apply is called, so the caller's loop cadence sets the fast blink rate and
// the slow blink compares elapsed time against its interval.
type Indicator struct {
	out        Output
	clock      Clock
	slow       time.Duration
	mode       entities.SignalMode
	level      bool
	lastToggle time.Time
}

func NewIndicator(out Output, clock Clock, slow time.Duration) *Indicator {
	if clock == nil {
		clock = systemClock{}
	}
	return &Indicator{out: out, clock: clock, slow: slow}
}

// Apply moves the indicator to mode and advances any blink.
func (i *Indicator) Apply(mode entities.SignalMode) {
	i.mode = mode
	switch mode {
	case entities.SignalOn:
		i.drive(true)
	case entities.SignalBlinkSlow:
		now := i.clock.Now()
		if now.Sub(i.lastToggle) >= i.slow {
			i.toggle(now)
		}
	case entities.SignalBlinkFast:
		i.toggle(i.clock.Now())
	default:
		i.drive(false)
	}
}

func (i *Indicator) Mode() entities.SignalMode { return i.mode }

// Level is the last value written to the output.
func (i *Indicator) Level() bool { return i.level }

func (i *Indicator) toggle(now time.Time) {
	i.lastToggle = now
	i.drive(!i.level)
}

func (i *Indicator) drive(on bool) {
	i.level = on
	if i.out != nil {
		i.out.Set(on)
	}
}
