package processor

import (
	"strings"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/model/entities"
	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/model/messages"
)

func TestTriggerPoint(t *testing.T) {
	ts := time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)
	p := TriggerPoint("cam1", messages.SensorSnapshot{Temperature: 22.5, Humidity: 60, BatteryRaw: 512, LightState: 1}, ts)
	line := write.PointToLineProtocol(p, time.Nanosecond)

	for _, want := range []string{"trigger,device=cam1 ", "temp=22.5", "humidity=60", "battery=512i", "light_state=1i"} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
}

func TestCapturePoint(t *testing.T) {
	c := entities.Capture{Classification: "bird", Confidence: 0.8, Timestamp: time.Unix(1714543200, 0)}
	line := write.PointToLineProtocol(CapturePoint("cam1", c), time.Second)

	if !strings.HasPrefix(line, "capture,animal=true,classification=bird,device=cam1 ") {
		t.Errorf("line = %q", line)
	}
	if !strings.HasSuffix(strings.TrimSpace(line), " 1714543200") {
		t.Errorf("line timestamp = %q", line)
	}

	fp := write.PointToLineProtocol(CapturePoint("cam1", entities.Capture{Classification: entities.FalsePositive}), time.Second)
	if !strings.Contains(fp, `animal=false,classification=False\ Positive`) {
		t.Errorf("false positive line = %q", fp)
	}
}

func TestTelemetryWriter_Nil(t *testing.T) {
	var w *TelemetryWriter
	w.WriteTrigger(messages.SensorSnapshot{}, time.Now())
	w.WriteCapture(entities.Capture{})
	w.Flush()
	if w.LastErrorAge() < time.Hour {
		t.Error("nil writer should report an old error age")
	}
}
