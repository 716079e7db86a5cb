package supervisor

import (
	"context"
	"time"

	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/model/entities"
	"github.com/ParamBansrow/Wildlife-Monitoring-System/internal/model/messages"
)

// Network is the Wi-Fi radio.
type Network interface {
	State() entities.NetworkState
	// BeginAssociation starts joining the network and returns without
	// waiting for the result.
	BeginAssociation(ctx context.Context, creds entities.Credentials) error
}

// Message is one outbound publish.
type Message = messages.Outbound

// Session is the broker session. The endpoint is fixed when the session is built.
type Session interface {
	Connected() bool
	// Connect makes exactly one connection attempt.
	Connect(ctx context.Context) error
	Publish(ctx context.Context, msg Message) error
	// Poll services the transport once per loop iteration.
	Poll()
}

// Environment reads the slow sensors. Temperature and Humidity return NaN
// when the probe could not be read.
type Environment interface {
	Temperature() float64
	Humidity() float64
	BatteryRaw() int
	LightState() int
}

// Input is a digital input line.
type Input interface {
	High() bool
}

// Output is a digital output line.
type Output interface {
	Set(on bool)
}

// Clock abstracts time for the indicator and status timestamps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
