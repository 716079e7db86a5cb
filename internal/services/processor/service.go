// Package processor is the receiving side of motion triggers: it records a
// clip, classifies it, logs the capture and notifies when wildlife is seen.
package processor

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/model/entities"
	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/model/messages"
)

type Recorder interface {
	Record(ctx context.Context, base string) (string, error)
	ExtractFrame(ctx context.Context, video, base string) (string, error)
}

type Classifier interface {
	Classify(ctx context.Context, frame string) ([]entities.Detection, error)
}

type CaptureStore interface {
	Insert(ctx context.Context, c entities.Capture) (entities.Capture, error)
}

type Notifier interface {
	Notify(ctx context.Context, c entities.Capture) error
}

// Telemetry receives points for every trigger and capture. May be nil.
type Telemetry interface {
	WriteTrigger(s messages.SensorSnapshot, ts time.Time)
	WriteCapture(c entities.Capture)
}

// Deps are the service's collaborators. Notifier and Telemetry are optional.
type Deps struct {
	Recorder   Recorder
	Classifier Classifier
	Store      CaptureStore
	Notifier   Notifier
	Telemetry  Telemetry
	Metrics    *Metrics
}

// Service runs at most one capture at a time. Triggers that arrive while a
// capture or its cooldown is in progress are ignored, which also absorbs
// broker redeliveries of the trigger that started it.
type Service struct {
	deps     Deps
	cooldown time.Duration
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string

	busy atomic.Bool
	wg   sync.WaitGroup
}

func NewService(deps Deps, cooldown time.Duration, logger *slog.Logger) *Service {
	return &Service{
		deps:     deps,
		cooldown: cooldown,
		logger:   logger,
		now:      time.Now,
		newID: func() string {
			id, err := uuid.NewV7()
			if err != nil {
				return uuid.NewString()
			}
			return id.String()
		},
	}
}

// HandleTrigger accepts one trigger payload and reports whether a capture
// was started. The capture runs in the background; ctx bounds it.
func (s *Service) HandleTrigger(ctx context.Context, payload []byte) bool {
	snap, err := messages.DecodeTrigger(payload)
	if err != nil {
		s.logger.Warn("malformed trigger", "error", err, "payload", string(payload))
		s.deps.Metrics.trigger("malformed")
		return false
	}
	received := s.now()
	if s.deps.Telemetry != nil {
		s.deps.Telemetry.WriteTrigger(snap, received)
	}
	if !s.busy.CompareAndSwap(false, true) {
		s.logger.Info("capture in progress, trigger ignored")
		s.deps.Metrics.trigger("busy")
		return false
	}
	s.deps.Metrics.trigger("accepted")
	s.logger.Info("trigger received",
		"temp", snap.Temperature, "humidity", snap.Humidity,
		"battery", snap.BatteryRaw, "light_state", snap.LightState)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.release(ctx)
		s.capture(ctx, snap, received)
	}()
	return true
}

// Wait blocks until in-flight captures and cooldowns finish.
func (s *Service) Wait() { s.wg.Wait() }

// Busy reports whether a capture or cooldown is in progress.
func (s *Service) Busy() bool { return s.busy.Load() }

func (s *Service) release(ctx context.Context) {
	if s.cooldown > 0 {
		t := time.NewTimer(s.cooldown)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
		}
	}
	s.busy.Store(false)
}

func (s *Service) capture(ctx context.Context, snap messages.SensorSnapshot, ts time.Time) {
	id := s.newID()
	base := "capture_" + ts.UTC().Format("20060102_150405") + "_" + id[len(id)-8:]
	logger := s.logger.With("capture", id)
	start := time.Now()

	video, err := s.deps.Recorder.Record(ctx, base)
	if err != nil {
		logger.Error("recording failed", "error", err)
		s.deps.Metrics.capture("record_failed")
		return
	}
	frame, err := s.deps.Recorder.ExtractFrame(ctx, video, base)
	if err != nil {
		logger.Error("frame extraction failed", "error", err, "video", video)
		s.deps.Metrics.capture("frame_failed")
		return
	}

	dets, err := s.deps.Classifier.Classify(ctx, frame)
	if err != nil {
		logger.Warn("classification failed, storing as unclassified", "error", err)
	}
	label, conf := BestAnimal(dets)

	c := entities.Capture{
		ID:             id,
		Timestamp:      ts,
		Classification: label,
		Confidence:     conf,
		VideoPath:      video,
		FramePath:      frame,
		Temperature:    snap.Temperature,
		Humidity:       snap.Humidity,
		Battery:        snap.BatteryRaw,
		LightState:     snap.LightState,
	}
	if _, err := s.deps.Store.Insert(ctx, c); err != nil {
		logger.Error("capture not stored", "error", err)
	}
	if s.deps.Telemetry != nil {
		s.deps.Telemetry.WriteCapture(c)
	}
	logger.Info("capture complete", "class", label, "confidence", conf, "took", time.Since(start).Round(time.Millisecond))
	s.deps.Metrics.capture(label)
	s.deps.Metrics.observeCapture(time.Since(start))

	if c.IsAnimal() && s.deps.Notifier != nil {
		if err := s.deps.Notifier.Notify(ctx, c); err != nil {
			logger.Warn("notification failed", "error", err)
		}
	}
}
