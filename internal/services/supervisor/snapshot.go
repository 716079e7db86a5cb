package supervisor

import (
	"log/slog"
	"math"

	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/model/messages"
)

// SnapshotReader samples the environment for a trigger.
type SnapshotReader struct {
	env     Environment
	logger  *slog.Logger
	metrics *Metrics
}

func NewSnapshotReader(env Environment, logger *slog.Logger, metrics *Metrics) *SnapshotReader {
	return &SnapshotReader{env: env, logger: logger, metrics: metrics}
}

// Capture reads every sensor once. If either climate value is NaN both are
// reported as zero; battery and light are always read.
func (r *SnapshotReader) Capture() messages.SensorSnapshot {
	temp := r.env.Temperature()
	hum := r.env.Humidity()
	if math.IsNaN(temp) || math.IsNaN(hum) {
		r.logger.Warn("climate probe read failed, reporting zeros",
			"error", ErrSensorReadDegraded,
			"temp_nan", math.IsNaN(temp),
			"humidity_nan", math.IsNaN(hum))
		r.metrics.degradedRead()
		temp, hum = 0, 0
	}
	return messages.SensorSnapshot{
		Temperature: temp,
		Humidity:    hum,
		BatteryRaw:  r.env.BatteryRaw(),
		LightState:  r.env.LightState(),
	}
}
