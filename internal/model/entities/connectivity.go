package entities

// NetworkState is the Wi-Fi association state as reported by the radio.
type NetworkState int

const (
	NetworkDisconnected NetworkState = iota
	NetworkConnected
)

func (s NetworkState) String() string {
	if s == NetworkConnected {
		return "connected"
	}
	return "disconnected"
}

// SessionState is the broker session state.
type SessionState int

const (
	SessionDisconnected SessionState = iota
	SessionConnected
)

func (s SessionState) String() string {
	if s == SessionConnected {
		return "connected"
	}
	return "disconnected"
}

// HealthStatus is derived each loop iteration from the network and session states.
type HealthStatus int

const (
	HealthUnknown HealthStatus = iota
	HealthNoNetwork
	HealthNetworkOnlyRetrying
	HealthFullyConnected
)

func (h HealthStatus) String() string {
	switch h {
	case HealthNoNetwork:
		return "no_network"
	case HealthNetworkOnlyRetrying:
		return "network_only_retrying"
	case HealthFullyConnected:
		return "fully_connected"
	default:
		return "unknown"
	}
}

// SignalMode drives an indicator LED.
type SignalMode int

const (
	SignalOff SignalMode = iota
	SignalOn
	SignalBlinkSlow
	SignalBlinkFast
)

func (m SignalMode) String() string {
	switch m {
	case SignalOn:
		return "on"
	case SignalBlinkSlow:
		return "blink_slow"
	case SignalBlinkFast:
		return "blink_fast"
	default:
		return "off"
	}
}

// Credentials are handed to the radio when associating.
type Credentials struct {
	SSID     string
	Password string
}
