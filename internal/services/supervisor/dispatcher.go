package supervisor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/model/messages"
)

// TriggerQoS is the delivery guarantee requested for triggers.
const TriggerQoS byte = 1

// Dispatcher turns a rising edge into one published trigger.
type Dispatcher struct {
	reader  *SnapshotReader
	session Session
	topic   string
	logger  *slog.Logger
	metrics *Metrics
}

func NewDispatcher(reader *SnapshotReader, session Session, topic string, logger *slog.Logger, metrics *Metrics) *Dispatcher {
	if topic == "" {
		topic = messages.TriggerTopic
	}
	return &Dispatcher{reader: reader, session: session, topic: topic, logger: logger, metrics: metrics}
}

// Dispatch captures a snapshot and publishes it once. A failed publish is
// logged and returned; it is never retried.
func (d *Dispatcher) Dispatch(ctx context.Context) error {
	snap := d.reader.Capture()
	payload, err := messages.EncodeTrigger(snap)
	if err != nil {
		return d.fail(fmt.Errorf("%w: %w", ErrPublishFailed, err), nil)
	}
	if !d.session.Connected() {
		return d.fail(fmt.Errorf("%w: %w", ErrPublishFailed, ErrSessionUnavailable), payload)
	}
	msg := Message{Topic: d.topic, Payload: payload, QoS: TriggerQoS}
	if err := d.session.Publish(ctx, msg); err != nil {
		return d.fail(fmt.Errorf("%w: %w", ErrPublishFailed, err), payload)
	}
	d.metrics.publish(true)
	d.logger.Info("trigger published", "topic", d.topic, "payload", string(payload))
	return nil
}

func (d *Dispatcher) fail(err error, payload []byte) error {
	d.metrics.publish(false)
	d.logger.Error("trigger dropped", "topic", d.topic, "payload", string(payload), "error", err)
	return err
}
