package broker

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/model/messages"
)

// Session wraps one paho client for the supervisor loop.
type Session struct {
	client mqtt.Client
	cfg    Config
	logger *slog.Logger
	lost   atomic.Bool
	open   bool
}

// NewSession creates the client without connecting.
func NewSession(cfg Config, logger *slog.Logger) *Session {
	s := &Session{cfg: cfg, logger: logger}
	opts := NewClientOptions(cfg)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		s.lost.Store(true)
		s.logger.Warn("broker connection lost", "error", err)
	})
	s.client = mqtt.NewClient(opts)
	return s
}

func (s *Session) Connected() bool {
	return s.client.IsConnectionOpen()
}

// Connect makes a single connection attempt bounded by ConnectTimeout.
func (s *Session) Connect(ctx context.Context) error {
	if err := waitToken(ctx, s.client.Connect(), s.cfg.ConnectTimeout); err != nil {
		return fmt.Errorf("connect %s: %w", s.cfg.URL(), err)
	}
	s.lost.Store(false)
	s.logger.Info("connected to broker", "broker", s.cfg.URL(), "client_id", s.cfg.ClientID)
	return nil
}

// Publish sends msg and waits for the broker to accept it.
func (s *Session) Publish(ctx context.Context, msg messages.Outbound) error {
	tok := s.client.Publish(msg.Topic, msg.QoS, msg.Retained, msg.Payload)
	if err := waitToken(ctx, tok, s.cfg.PublishTimeout); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Topic, err)
	}
	s.logger.Debug("message published", "topic", msg.Topic, "qos", msg.QoS, "bytes", len(msg.Payload))
	return nil
}

// Poll reports connection transitions observed since the previous call.
// Paho services keepalives on its own goroutines.
func (s *Session) Poll() {
	open := s.client.IsConnectionOpen()
	if s.open && !open {
		s.logger.Info("broker session down", "lost", s.lost.Load())
	}
	s.open = open
}

// Close disconnects gracefully.
func (s *Session) Close() {
	if s.client.IsConnected() {
		s.client.Disconnect(250)
		s.logger.Info("broker session closed")
	}
}
