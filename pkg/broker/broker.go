// Package broker is the device's MQTT session: one connection attempt per
// call, explicit publishes, and no automatic reconnection so the caller
// decides when to retry.
package broker

import (
	"context"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/config"
)

// ErrTimeout is returned when the broker does not answer within the configured timeout.
var ErrTimeout = errors.New("broker: operation timed out")

type Config struct {
	Host           string
	Port           int
	User           string
	Password       string
	ClientID       string
	KeepAlive      time.Duration
	ConnectTimeout time.Duration
	PublishTimeout time.Duration
}

// ConfigFrom maps the file configuration onto a session Config.
func ConfigFrom(b config.BrokerConfig) Config {
	return Config{
		Host:           b.Host,
		Port:           b.Port,
		User:           b.Username,
		Password:       b.Password,
		ClientID:       b.ClientID,
		KeepAlive:      15 * time.Second,
		ConnectTimeout: time.Duration(b.ConnectTimeoutMS) * time.Millisecond,
		PublishTimeout: time.Duration(b.PublishTimeoutMS) * time.Millisecond,
	}
}

func (c Config) URL() string {
	return fmt.Sprintf("tcp://%s:%d", c.Host, c.Port)
}

// NewClientOptions builds paho options for a session the caller drives.
func NewClientOptions(cfg Config) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.URL())
	opts.SetUsername(cfg.User)
	opts.SetPassword(cfg.Password)
	opts.SetClientID(cfg.ClientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)
	if cfg.KeepAlive > 0 {
		opts.SetKeepAlive(cfg.KeepAlive)
	}
	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout)
	}
	if cfg.PublishTimeout > 0 {
		opts.SetWriteTimeout(cfg.PublishTimeout)
	}
	return opts
}

// waitToken blocks until tok completes, ctx ends or timeout elapses.
func waitToken(ctx context.Context, tok mqtt.Token, timeout time.Duration) error {
	var expired <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}
	select {
	case <-tok.Done():
		return tok.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-expired:
		return ErrTimeout
	}
}
