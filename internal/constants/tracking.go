package constants

// Control actions accepted on the control topic and the HTTP API.
const (
	ActionStart = "start"
	ActionStop  = "stop"
	ActionReset = "reset"
)

// Control response statuses
const (
	ResponseSuccess = "success"
	ResponseFailed  = "failed"
)

// StatusAlive is reported by every heartbeat.
const StatusAlive = "alive"

// Topic suffixes appended to the device topics.
const (
	SessionsTopicSuffix = "sessions"
	ResponseTopicSuffix = "response"
)

// Location providers selectable in the tracking service configuration.
const (
	ProviderSensor = "sensor"
	ProviderGoogle = "google"
	ProviderReplay = "replay"
)
