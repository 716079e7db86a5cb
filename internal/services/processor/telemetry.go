package processor

import (
	"log/slog"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/model/entities"
	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/model/messages"
)

// TriggerPoint turns a received snapshot into a "trigger" point.
func TriggerPoint(device string, s messages.SensorSnapshot, ts time.Time) *write.Point {
	return influxdb2.NewPoint("trigger",
		map[string]string{"device": device},
		map[string]interface{}{
			"temp":        s.Temperature,
			"humidity":    s.Humidity,
			"battery":     int64(s.BatteryRaw),
			"light_state": int64(s.LightState),
		},
		ts)
}

// CapturePoint turns a classified capture into a "capture" point.
func CapturePoint(device string, c entities.Capture) *write.Point {
	return influxdb2.NewPoint("capture",
		map[string]string{
			"device":         device,
			"classification": c.Classification,
			"animal":         boolTag(c.IsAnimal()),
		},
		map[string]interface{}{
			"confidence": c.Confidence,
			"count":      int64(1),
		},
		c.Timestamp)
}

func boolTag(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// TelemetryWriter wraps a non-blocking WriteAPI and remembers when the last
// asynchronous write error happened.
type TelemetryWriter struct {
	api     api.WriteAPI
	device  string
	logger  *slog.Logger
	mu      sync.RWMutex
	lastErr time.Time
}

func NewTelemetryWriter(w api.WriteAPI, device string, logger *slog.Logger) *TelemetryWriter {
	tw := &TelemetryWriter{
		api:     w,
		device:  device,
		logger:  logger,
		lastErr: time.Now().Add(-24 * time.Hour),
	}
	go func() {
		for err := range w.Errors() {
			if err != nil {
				tw.mu.Lock()
				tw.lastErr = time.Now()
				tw.mu.Unlock()
				logger.Warn("influx write error", "error", err)
			}
		}
	}()
	return tw
}

func (w *TelemetryWriter) WriteTrigger(s messages.SensorSnapshot, ts time.Time) {
	if w == nil {
		return
	}
	w.api.WritePoint(TriggerPoint(w.device, s, ts))
}

func (w *TelemetryWriter) WriteCapture(c entities.Capture) {
	if w == nil {
		return
	}
	w.api.WritePoint(CapturePoint(w.device, c))
}

// LastErrorAge is how long ago the last write error happened.
func (w *TelemetryWriter) LastErrorAge() time.Duration {
	if w == nil {
		return 99999 * time.Hour
	}
	w.mu.RLock()
	t := w.lastErr
	w.mu.RUnlock()
	return time.Since(t)
}

func (w *TelemetryWriter) Flush() {
	if w != nil {
		w.api.Flush()
	}
}
