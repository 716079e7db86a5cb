package supervisor

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/model/entities"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// bufferLogger returns a logger writing text records into the returned buffer.
func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

// fakeNetwork connects after connectAfter State polls following a
// BeginAssociation. connectAfter < 0 never connects.
type fakeNetwork struct {
	state        entities.NetworkState
	connectAfter int
	polls        int
	begins       int
	creds        entities.Credentials
}

func (n *fakeNetwork) State() entities.NetworkState {
	if n.state == entities.NetworkConnected {
		return n.state
	}
	if n.begins > 0 && n.connectAfter >= 0 {
		n.polls++
		if n.polls > n.connectAfter {
			n.state = entities.NetworkConnected
		}
	}
	return n.state
}

func (n *fakeNetwork) BeginAssociation(_ context.Context, c entities.Credentials) error {
	n.begins++
	n.polls = 0
	n.creds = c
	return nil
}

type fakeSession struct {
	connected    bool
	connectOK    bool
	connectErr   error
	connectCalls int
	publishErr   error
	published    []Message
	publishCalls int
	polls        int
}

func (s *fakeSession) Connected() bool { return s.connected }

func (s *fakeSession) Connect(context.Context) error {
	s.connectCalls++
	if s.connectOK {
		s.connected = true
		return nil
	}
	return s.connectErr
}

func (s *fakeSession) Publish(_ context.Context, m Message) error {
	s.publishCalls++
	if s.publishErr != nil {
		return s.publishErr
	}
	s.published = append(s.published, m)
	return nil
}

func (s *fakeSession) Poll() { s.polls++ }

type fakeEnv struct {
	temp, hum  float64
	battery    int
	light      int
	climateNaN bool
}

func (e *fakeEnv) Temperature() float64 {
	if e.climateNaN {
		return math.NaN()
	}
	return e.temp
}

func (e *fakeEnv) Humidity() float64 { return e.hum }
func (e *fakeEnv) BatteryRaw() int   { return e.battery }
func (e *fakeEnv) LightState() int   { return e.light }

// scriptedInput replays samples, then repeats the last one.
type scriptedInput struct {
	samples []bool
	i       int
}

func (in *scriptedInput) High() bool {
	if len(in.samples) == 0 {
		return false
	}
	if in.i >= len(in.samples) {
		return in.samples[len(in.samples)-1]
	}
	v := in.samples[in.i]
	in.i++
	return v
}

type recordingOutput struct {
	mu      sync.Mutex
	history []bool
}

func (o *recordingOutput) Set(on bool) {
	o.mu.Lock()
	o.history = append(o.history, on)
	o.mu.Unlock()
}

func (o *recordingOutput) last() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.history) == 0 {
		return false
	}
	return o.history[len(o.history)-1]
}

type manualClock struct{ now time.Time }

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time          { return c.now }
func (c *manualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// instantTimer fires immediately and records the requested waits.
type instantTimer struct {
	c     chan time.Time
	waits []time.Duration
}

func (t *instantTimer) Start(d time.Duration) {
	t.waits = append(t.waits, d)
	t.c = make(chan time.Time, 1)
	t.c <- time.Time{}
}

func (t *instantTimer) Stop() {}

func (t *instantTimer) C() <-chan time.Time { return t.c }

func nan() float64 { return math.NaN() }
