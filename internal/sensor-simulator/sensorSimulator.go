package sensor_simulator

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/config"
	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/model/entities"
	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/services/supervisor"
)

// Radio simulates a Wi-Fi link that drops now and then and rejoins a few
// polls after association starts.
type Radio struct {
	mu           sync.Mutex
	rng          *rand.Rand
	state        entities.NetworkState
	dropRate     float64 // per State call while connected
	joinAfter    int     // polls after BeginAssociation
	pollsPending int
	associating  bool
	logger       *slog.Logger
}

func NewRadio(seed int64, dropRate float64, joinAfter int, logger *slog.Logger) *Radio {
	return &Radio{
		rng:       rand.New(rand.NewSource(seed)),
		dropRate:  dropRate,
		joinAfter: joinAfter,
		logger:    logger,
	}
}

func (r *Radio) State() entities.NetworkState {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case r.state == entities.NetworkConnected && r.rng.Float64() < r.dropRate:
		r.state = entities.NetworkDisconnected
		r.logger.Info("sim: wifi dropped")
	case r.associating:
		r.pollsPending--
		if r.pollsPending <= 0 {
			r.associating = false
			r.state = entities.NetworkConnected
			r.logger.Info("sim: wifi joined")
		}
	}
	return r.state
}

func (r *Radio) BeginAssociation(_ context.Context, creds entities.Credentials) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.associating {
		r.associating = true
		r.pollsPending = r.joinAfter
		r.logger.Info("sim: associating", "ssid", creds.SSID)
	}
	return nil
}

// GatedSession hides a real session while the simulated radio is down.
type GatedSession struct {
	supervisor.Session
	radio *Radio
}

func NewGatedSession(s supervisor.Session, r *Radio) *GatedSession {
	return &GatedSession{Session: s, radio: r}
}

func (g *GatedSession) Connected() bool {
	g.radio.mu.Lock()
	up := g.radio.state == entities.NetworkConnected
	g.radio.mu.Unlock()
	return up && g.Session.Connected()
}

// MotionSensor produces timed motion episodes.
type MotionSensor struct {
	mu     sync.Mutex
	high   bool
	timer  *time.Timer // single timer
	gen    uint64
	logger *slog.Logger
}

func NewMotionSensor(logger *slog.Logger) *MotionSensor {
	return &MotionSensor{logger: logger}
}

func (m *MotionSensor) High() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.high
}

// Start raises motion episodes at random intervals around every until ctx ends.
func (m *MotionSensor) Start(ctx context.Context, seed int64, every, hold time.Duration) {
	rng := rand.New(rand.NewSource(seed))
	for {
		wait := every/2 + time.Duration(rng.Int63n(int64(every)))
		select {
		case <-ctx.Done():
			m.mu.Lock()
			if m.timer != nil {
				m.timer.Stop()
			}
			m.mu.Unlock()
			return
		case <-time.After(wait):
			m.applyTimedState(true, hold/2+time.Duration(rng.Int63n(int64(hold))))
		}
	}
}

func (m *MotionSensor) applyTimedState(high bool, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.high = high
	m.gen++
	gen := m.gen
	m.logger.Info("sim: motion", "high", high, "for", d)

	// a PIR line idles LOW once the episode ends
	if d > 0 {
		m.timer = time.AfterFunc(d, func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if m.gen != gen {
				return
			}
			m.high = false
			m.timer = nil
		})
	}
}

// LED logs level changes.
type LED struct {
	name   string
	mu     sync.Mutex
	on     bool
	logger *slog.Logger
}

func NewLED(name string, logger *slog.Logger) *LED {
	return &LED{name: name, logger: logger}
}

func (l *LED) Set(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if on != l.on {
		l.logger.Log(context.Background(), config.LevelTrace, "sim: led", "led", l.name, "on", on)
	}
	l.on = on
}
