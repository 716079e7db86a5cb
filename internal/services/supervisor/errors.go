package supervisor

import "errors"

// None of these stop the loop; they are logged and counted.
var (
	ErrNetworkUnavailable = errors.New("network unavailable")
	ErrSessionUnavailable = errors.New("session unavailable")
	ErrSensorReadDegraded = errors.New("sensor read degraded")
	ErrPublishFailed      = errors.New("publish failed")
)
