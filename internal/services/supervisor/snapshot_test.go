package supervisor

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/model/messages"
)

func TestSnapshotReader_Capture(t *testing.T) {
	env := &fakeEnv{temp: 18.25, hum: 71, battery: 640, light: 0}
	r := NewSnapshotReader(env, discardLogger(), nil)

	got := r.Capture()
	want := messages.SensorSnapshot{Temperature: 18.25, Humidity: 71, BatteryRaw: 640, LightState: 0}
	if got != want {
		t.Errorf("Capture() = %+v, want %+v", got, want)
	}
}

func TestSnapshotReader_DegradedClimate(t *testing.T) {
	tests := []struct {
		name string
		env  *fakeEnv
	}{
		{"temperature NaN", &fakeEnv{climateNaN: true, hum: 55, battery: 300, light: 1}},
		{"humidity NaN", &fakeEnv{temp: 12, hum: nan(), battery: 300, light: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := bufferLogger()
			m := NewMetrics(prometheus.NewRegistry())
			r := NewSnapshotReader(tt.env, logger, m)

			got := r.Capture()
			want := messages.SensorSnapshot{Temperature: 0, Humidity: 0, BatteryRaw: 300, LightState: 1}
			if got != want {
				t.Errorf("Capture() = %+v, want %+v", got, want)
			}
			if !strings.Contains(buf.String(), "sensor read degraded") {
				t.Errorf("expected degraded warning in log, got %q", buf.String())
			}
			if v := testutil.ToFloat64(m.DegradedReads); v != 1 {
				t.Errorf("DegradedReads = %v, want 1", v)
			}
		})
	}
}
