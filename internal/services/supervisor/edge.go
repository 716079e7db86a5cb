package supervisor

// Event is the edge detector's verdict for one sample.
type Event int

const (
	NoEvent Event = iota
	RisingEdge
)

func (e Event) String() string {
	if e == RisingEdge {
		return "rising_edge"
	}
	return "none"
}

// EdgeDetector reports the first HIGH sample of each contiguous HIGH run.
type EdgeDetector struct {
	latched bool
}

// Observe feeds one motion sample.
func (d *EdgeDetector) Observe(high bool) Event {
	if !high {
		d.latched = false
		return NoEvent
	}
	if d.latched {
		return NoEvent
	}
	d.latched = true
	return RisingEdge
}

// Latched reports whether the current HIGH run has already been reported.
func (d *EdgeDetector) Latched() bool { return d.latched }
