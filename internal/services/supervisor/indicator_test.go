package supervisor

import (
	"testing"
	"time"

	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/model/entities"
)

func TestIndicator_SlowBlinkUsesElapsedTime(t *testing.T) {
	clock := newManualClock()
	out := &recordingOutput{}
	ind := NewIndicator(out, clock, 750*time.Millisecond)

	ind.Apply(entities.SignalBlinkSlow) // first call toggles: last toggle is the zero time
	if !ind.Level() {
		t.Fatal("first slow blink should turn the LED on")
	}

	for i := 0; i < 7; i++ {
		clock.Advance(100 * time.Millisecond)
		ind.Apply(entities.SignalBlinkSlow)
	}
	if !ind.Level() {
		t.Fatal("LED toggled before 750ms elapsed")
	}

	clock.Advance(50 * time.Millisecond) // 750ms since toggle
	ind.Apply(entities.SignalBlinkSlow)
	if ind.Level() {
		t.Fatal("LED should toggle once 750ms elapsed")
	}
	if len(out.history) != 2 {
		t.Errorf("output written %d times, want 2", len(out.history))
	}
}

func TestIndicator_Modes(t *testing.T) {
	out := &recordingOutput{}
	ind := NewIndicator(out, newManualClock(), time.Second)

	ind.Apply(entities.SignalOn)
	if !out.last() || ind.Mode() != entities.SignalOn {
		t.Fatal("SignalOn should drive the output high")
	}
	ind.Apply(entities.SignalBlinkFast)
	if out.last() {
		t.Fatal("fast blink should toggle on every call")
	}
	ind.Apply(entities.SignalBlinkFast)
	if !out.last() {
		t.Fatal("fast blink should toggle on every call")
	}
	ind.Apply(entities.SignalOff)
	if out.last() || ind.Level() {
		t.Fatal("SignalOff should drive the output low")
	}
}

func TestIndicator_NilOutput(t *testing.T) {
	ind := NewIndicator(nil, nil, time.Second)
	ind.Apply(entities.SignalBlinkFast)
	if !ind.Level() {
		t.Error("level should track even without an output")
	}
}
