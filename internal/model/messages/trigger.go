package messages

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// TriggerTopic is the broker topic carrying motion triggers.
const TriggerTopic = "WILDLIFE/TRIGGER"

// SensorSnapshot is the environmental reading attached to a motion trigger.
type SensorSnapshot struct {
	Temperature float64 `json:"temp"`
	Humidity    float64 `json:"humidity"`
	BatteryRaw  int     `json:"battery"`
	LightState  int     `json:"light_state"`
}

// MarshalJSON writes the fixed wire layout: field order temp, humidity,
// battery, light_state, floats with one fractional digit, no whitespace.
func (s SensorSnapshot) MarshalJSON() ([]byte, error) {
	if math.IsNaN(s.Temperature) || math.IsInf(s.Temperature, 0) ||
		math.IsNaN(s.Humidity) || math.IsInf(s.Humidity, 0) {
		return nil, fmt.Errorf("snapshot: non-finite reading (temp=%v humidity=%v)", s.Temperature, s.Humidity)
	}
	b := make([]byte, 0, 64)
	b = append(b, `{"temp":`...)
	b = strconv.AppendFloat(b, s.Temperature, 'f', 1, 64)
	b = append(b, `,"humidity":`...)
	b = strconv.AppendFloat(b, s.Humidity, 'f', 1, 64)
	b = append(b, `,"battery":`...)
	b = strconv.AppendInt(b, int64(s.BatteryRaw), 10)
	b = append(b, `,"light_state":`...)
	b = strconv.AppendInt(b, int64(s.LightState), 10)
	b = append(b, '}')
	return b, nil
}

// EncodeTrigger returns the payload published for a rising edge.
func EncodeTrigger(s SensorSnapshot) ([]byte, error) {
	return s.MarshalJSON()
}

// DecodeTrigger parses a trigger payload. Missing fields read as zero.
func DecodeTrigger(payload []byte) (SensorSnapshot, error) {
	type wire SensorSnapshot // drops MarshalJSON
	var w wire
	if err := json.Unmarshal(payload, &w); err != nil {
		return SensorSnapshot{}, fmt.Errorf("decode trigger: %w", err)
	}
	return SensorSnapshot(w), nil
}

// Outbound is one message handed to the broker session.
type Outbound struct {
	Topic    string
	Payload  []byte
	QoS      byte
	Retained bool
}
