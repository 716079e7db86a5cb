package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/model/entities"
)

// DeriveHealth maps the two connection states onto a HealthStatus.
func DeriveHealth(n entities.NetworkState, s entities.SessionState) entities.HealthStatus {
	switch {
	case n != entities.NetworkConnected:
		return entities.HealthNoNetwork
	case s != entities.SessionConnected:
		return entities.HealthNetworkOnlyRetrying
	default:
		return entities.HealthFullyConnected
	}
}

// AssociationResult is the outcome of one bounded association sequence.
type AssociationResult struct {
	Connected bool `json:"connected"`
	Attempts  int  `json:"attempts"`
}

// HealthConfig bounds the association sequence.
type HealthConfig struct {
	Credentials         entities.Credentials
	AssociationAttempts int
	AssociationDelay    time.Duration
}

// HealthMachine restores connectivity one step per loop iteration and
// reflects the result on the status indicator.
type HealthMachine struct {
	network Network
	session Session
	signal  *Indicator
	cfg     HealthConfig
	timer   backoff.Timer
	logger  *slog.Logger
	metrics *Metrics

	status      entities.HealthStatus
	netState    entities.NetworkState
	sessState   entities.SessionState
	association AssociationResult
}

func NewHealthMachine(network Network, session Session, signal *Indicator, cfg HealthConfig, logger *slog.Logger, metrics *Metrics) *HealthMachine {
	return &HealthMachine{
		network: network,
		session: session,
		signal:  signal,
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
	}
}

// Step observes both connections and performs at most one recovery action:
// a bounded association when the network is down, otherwise a single
// session connect when the session is down.
func (m *HealthMachine) Step(ctx context.Context) entities.HealthStatus {
	m.netState = m.network.State()
	m.sessState = entities.SessionDisconnected
	if m.netState == entities.NetworkConnected && m.session.Connected() {
		m.sessState = entities.SessionConnected
	}
	status := DeriveHealth(m.netState, m.sessState)
	m.setStatus(status)

	switch status {
	case entities.HealthNoNetwork:
		m.signal.Apply(entities.SignalOff)
		m.association = m.Associate(ctx)
		if !m.association.Connected {
			m.signal.Apply(entities.SignalOff)
		}
	case entities.HealthNetworkOnlyRetrying:
		if err := m.session.Connect(ctx); err != nil {
			m.logger.Warn("broker connect failed",
				"error", errors.Join(ErrSessionUnavailable, err))
			m.metrics.sessionConnect(false)
		} else {
			m.logger.Info("broker session established")
			m.metrics.sessionConnect(true)
		}
		m.signal.Apply(entities.SignalBlinkSlow)
	case entities.HealthFullyConnected:
		m.signal.Apply(entities.SignalOn)
	}
	return status
}

// Associate starts association and polls the radio up to
// AssociationAttempts times, AssociationDelay apart, toggling the indicator
// on every attempt.
func (m *HealthMachine) Associate(ctx context.Context) AssociationResult {
	m.logger.Info("associating", "ssid", m.cfg.Credentials.SSID)
	if err := m.network.BeginAssociation(ctx, m.cfg.Credentials); err != nil {
		m.logger.Warn("begin association failed", "error", err)
	}

	maxAttempts := m.cfg.AssociationAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	var res AssociationResult
	op := func() error {
		res.Attempts++
		m.metrics.associationAttempt()
		m.signal.Apply(entities.SignalBlinkFast)
		if m.network.State() == entities.NetworkConnected {
			return nil
		}
		return ErrNetworkUnavailable
	}
	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(m.cfg.AssociationDelay), uint64(maxAttempts-1)),
		ctx)

	if err := backoff.RetryNotifyWithTimer(op, b, nil, m.timer); err != nil {
		m.logger.Warn("network association gave up",
			"error", err, "attempts", res.Attempts)
		m.metrics.associationFailed()
		return res
	}
	res.Connected = true
	m.logger.Info("network associated", "attempts", res.Attempts)
	return res
}

// Status is the health recorded by the last Step.
func (m *HealthMachine) Status() entities.HealthStatus { return m.status }

// LastAssociation is the result of the most recent association sequence.
func (m *HealthMachine) LastAssociation() AssociationResult { return m.association }

func (m *HealthMachine) setStatus(s entities.HealthStatus) {
	if s != m.status {
		m.logger.Info("connection health changed", "from", m.status, "to", s)
	}
	m.status = s
	m.metrics.health(s)
}
