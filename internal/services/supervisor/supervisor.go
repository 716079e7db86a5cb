package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/config"
	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/model/entities"
	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/model/messages"
)

// Config holds the loop's fixed parameters.
type Config struct {
	Credentials         entities.Credentials
	Topic               string
	LoopInterval        time.Duration
	AssociationDelay    time.Duration
	AssociationAttempts int
	SlowBlink           time.Duration
}

// DefaultConfig returns the built-in cadences.
func DefaultConfig() Config {
	return Config{
		Topic:               messages.TriggerTopic,
		LoopInterval:        100 * time.Millisecond,
		AssociationDelay:    100 * time.Millisecond,
		AssociationAttempts: 20,
		SlowBlink:           750 * time.Millisecond,
	}
}

// ConfigFrom extracts the loop parameters from the file configuration.
func ConfigFrom(c *config.Config) Config {
	return Config{
		Credentials:         entities.Credentials{SSID: c.Network.SSID, Password: c.Network.Password},
		Topic:               messages.TriggerTopic,
		LoopInterval:        c.Timing.LoopInterval(),
		AssociationDelay:    c.Timing.AssociationDelay(),
		AssociationAttempts: c.Timing.AssociationAttempts,
		SlowBlink:           c.Timing.SlowBlink(),
	}
}

// Hardware bundles the collaborators the loop drives.
type Hardware struct {
	Network     Network
	Session     Session
	Environment Environment
	Motion      Input
	MotionLED   Output
	StatusLED   Output
}

func (h Hardware) validate() error {
	var errs []error
	if h.Network == nil {
		errs = append(errs, errors.New("network is required"))
	}
	if h.Session == nil {
		errs = append(errs, errors.New("session is required"))
	}
	if h.Environment == nil {
		errs = append(errs, errors.New("environment is required"))
	}
	if h.Motion == nil {
		errs = append(errs, errors.New("motion input is required"))
	}
	return errors.Join(errs...)
}

// Status is a point-in-time copy of the loop's state for status endpoints.
type Status struct {
	Health          entities.HealthStatus `json:"-"`
	HealthName      string                `json:"health"`
	Network         string                `json:"network"`
	Session         string                `json:"session"`
	MotionLatched   bool                  `json:"motion_latched"`
	Triggers        uint64                `json:"triggers"`
	PublishFailures uint64                `json:"publish_failures"`
	LastTrigger     time.Time             `json:"last_trigger"`
	LastAssociation AssociationResult     `json:"last_association"`
	Iterations      uint64                `json:"iterations"`
}

// Option customises a Supervisor.
type Option func(*Supervisor)

// WithClock replaces the wall clock used for blinking and timestamps.
func WithClock(c Clock) Option { return func(s *Supervisor) { s.clock = c } }

// WithTimer replaces the timer that spaces association attempts.
func WithTimer(t backoff.Timer) Option { return func(s *Supervisor) { s.timer = t } }

// WithMetrics attaches Prometheus instruments.
func WithMetrics(m *Metrics) Option { return func(s *Supervisor) { s.metrics = m } }

// WithHealthListener is called from the loop whenever the health status changes.
func WithHealthListener(fn func(entities.HealthStatus)) Option {
	return func(s *Supervisor) { s.onHealth = fn }
}

// Supervisor owns all loop state. Only Status is safe to call from other goroutines.
type Supervisor struct {
	cfg     Config
	hw      Hardware
	logger  *slog.Logger
	clock   Clock
	timer   backoff.Timer
	metrics *Metrics

	health     *HealthMachine
	edges      EdgeDetector
	dispatcher *Dispatcher
	statusLED  *Indicator
	motionLED  *Indicator
	onHealth   func(entities.HealthStatus)
	lastHealth entities.HealthStatus

	mu     sync.Mutex
	status Status
}

// New wires a supervisor. Missing LEDs are allowed; missing inputs are not.
func New(cfg Config, hw Hardware, logger *slog.Logger, opts ...Option) (*Supervisor, error) {
	if err := hw.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Supervisor{cfg: cfg, hw: hw, logger: logger, clock: systemClock{}}
	for _, opt := range opts {
		opt(s)
	}

	s.statusLED = NewIndicator(hw.StatusLED, s.clock, cfg.SlowBlink)
	s.motionLED = NewIndicator(hw.MotionLED, s.clock, cfg.SlowBlink)
	s.health = NewHealthMachine(hw.Network, hw.Session, s.statusLED, HealthConfig{
		Credentials:         cfg.Credentials,
		AssociationAttempts: cfg.AssociationAttempts,
		AssociationDelay:    cfg.AssociationDelay,
	}, logger.With("component", "health"), s.metrics)
	s.health.timer = s.timer
	reader := NewSnapshotReader(hw.Environment, logger.With("component", "snapshot"), s.metrics)
	s.dispatcher = NewDispatcher(reader, hw.Session, cfg.Topic, logger.With("component", "dispatcher"), s.metrics)
	return s, nil
}

// Startup drives both indicators off and runs one blocking health pass.
func (s *Supervisor) Startup(ctx context.Context) {
	s.statusLED.Apply(entities.SignalOff)
	s.motionLED.Apply(entities.SignalOff)
	s.logger.Info("supervisor starting", "topic", s.cfg.Topic, "loop_interval", s.cfg.LoopInterval)
	s.observeHealth(s.health.Step(ctx))
	s.publishStatus(func(*Status) {})
}

// Iterate runs one pass of the loop body without the trailing pause.
func (s *Supervisor) Iterate(ctx context.Context) {
	s.observeHealth(s.health.Step(ctx))
	s.hw.Session.Poll()

	high := s.hw.Motion.High()
	ev := s.edges.Observe(high)
	var sent, failed bool
	if ev == RisingEdge {
		s.metrics.risingEdge()
		s.logger.Info("motion detected")
		if err := s.dispatcher.Dispatch(ctx); err != nil {
			failed = true
		} else {
			sent = true
		}
	}

	if s.edges.Latched() {
		s.motionLED.Apply(entities.SignalBlinkFast)
	} else {
		s.motionLED.Apply(entities.SignalOff)
	}

	s.publishStatus(func(st *Status) {
		st.Iterations++
		if sent {
			st.Triggers++
			st.LastTrigger = s.clock.Now()
		}
		if failed {
			st.PublishFailures++
		}
	})
}

// Run starts up and then iterates until ctx is cancelled, pausing
// LoopInterval after every iteration.
func (s *Supervisor) Run(ctx context.Context) error {
	s.Startup(ctx)
	t := time.NewTimer(s.cfg.LoopInterval)
	defer t.Stop()
	for {
		if ctx.Err() != nil {
			break
		}
		s.Iterate(ctx)

		t.Reset(s.cfg.LoopInterval)
		select {
		case <-ctx.Done():
		case <-t.C:
		}
	}
	s.statusLED.Apply(entities.SignalOff)
	s.motionLED.Apply(entities.SignalOff)
	s.logger.Info("supervisor stopped")
	return nil
}

// Status returns a copy of the last published loop state.
func (s *Supervisor) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Supervisor) observeHealth(h entities.HealthStatus) {
	if h != s.lastHealth && s.onHealth != nil {
		s.onHealth(h)
	}
	s.lastHealth = h
}

func (s *Supervisor) publishStatus(update func(*Status)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := &s.status
	st.Health = s.health.Status()
	st.HealthName = st.Health.String()
	st.Network = s.health.netState.String()
	st.Session = s.health.sessState.String()
	st.MotionLatched = s.edges.Latched()
	st.LastAssociation = s.health.LastAssociation()
	update(st)
}
