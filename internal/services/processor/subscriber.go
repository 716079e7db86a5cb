package processor

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"

	"github.com/ParamBansrow/Wildlife-Monitoring-System/pkg/dedup"
)

// redeliveryWindow bounds how long a packet id is remembered; the broker
// reuses ids, so it must stay shorter than a capture.
const redeliveryWindow = 5 * time.Second

// SubscriberConfig is the broker side of the processor.
type SubscriberConfig struct {
	BrokerURL string
	Username  string
	Password  string
	ClientID  string
	Topic     string
}

// Subscriber keeps a subscription to the trigger topic across reconnects.
type Subscriber struct {
	cfg       SubscriberConfig
	handle    func(payload []byte)
	cm        *autopaho.ConnectionManager
	connected atomic.Bool
	seen      *dedup.Window
	logger    *slog.Logger
}

func NewSubscriber(cfg SubscriberConfig, handle func(payload []byte), logger *slog.Logger) *Subscriber {
	return &Subscriber{cfg: cfg, handle: handle, seen: dedup.New(redeliveryWindow, 256), logger: logger}
}

// Start connects in the background; autopaho retries until ctx ends.
func (s *Subscriber) Start(ctx context.Context) error {
	brokerURL, err := url.Parse(s.cfg.BrokerURL)
	if err != nil {
		return fmt.Errorf("parse mqtt broker URL: %w", err)
	}

	pahoCfg := autopaho.ClientConfig{
		ServerUrls:      []*url.URL{brokerURL},
		KeepAlive:       30,
		ConnectUsername: s.cfg.Username,
		ConnectPassword: []byte(s.cfg.Password),
		OnConnectionUp: func(cm *autopaho.ConnectionManager, _ *paho.Connack) {
			s.connected.Store(true)
			s.logger.Info("mqtt connected to broker", "broker", s.cfg.BrokerURL)
			if _, err := cm.Subscribe(ctx, &paho.Subscribe{
				Subscriptions: []paho.SubscribeOptions{{Topic: s.cfg.Topic, QoS: 1}},
			}); err != nil {
				s.logger.Error("subscribe failed", "topic", s.cfg.Topic, "error", err)
				return
			}
			s.logger.Info("subscribed", "topic", s.cfg.Topic)
		},
		OnConnectError: func(err error) {
			s.connected.Store(false)
			s.logger.Warn("mqtt connection error", "error", err)
		},
		ClientConfig: paho.ClientConfig{
			ClientID:          s.cfg.ClientID,
			OnPublishReceived: []func(paho.PublishReceived) (bool, error){s.onPublish},
			OnClientError: func(err error) {
				s.connected.Store(false)
				s.logger.Warn("mqtt client error", "error", err)
			},
			OnServerDisconnect: func(d *paho.Disconnect) {
				s.connected.Store(false)
				s.logger.Warn("mqtt server disconnect", "reason", d.ReasonCode)
			},
		},
	}

	cm, err := autopaho.NewConnection(ctx, pahoCfg)
	if err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	s.cm = cm
	return nil
}

func (s *Subscriber) onPublish(pr paho.PublishReceived) (bool, error) {
	if pr.Packet == nil || pr.Packet.Topic != s.cfg.Topic {
		return false, nil
	}
	if !s.seen.Admit(deliveryKey(pr.Packet)) {
		s.logger.Debug("redelivered trigger dropped", "packet_id", pr.Packet.PacketID)
		return true, nil
	}
	s.handle(pr.Packet.Payload)
	return true, nil
}

// Connected reports the last known connection state.
func (s *Subscriber) Connected() bool { return s.connected.Load() }

func (s *Subscriber) Stop(ctx context.Context) error {
	if s.cm == nil {
		return nil
	}
	return s.cm.Disconnect(ctx)
}

// deliveryKey identifies one QoS 1 delivery: the broker keeps the packet id
// on redelivery. QoS 0 packets carry no id and are never deduplicated.
func deliveryKey(p *paho.Publish) string {
	if p.PacketID == 0 {
		return ""
	}
	return dedup.Key(strconv.Itoa(int(p.PacketID)), p.Payload)
}
