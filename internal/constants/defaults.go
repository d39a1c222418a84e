package constants

import "time"

const (
	DefaultConfigFile        = "configs/config.yaml"
	DefaultLogLevel          = "info"
	DefaultBroker            = "tcp://localhost:1883"
	DefaultClientID          = "gps-tracker"
	DefaultHTTPAddress       = ":8080"
	DefaultTrackingTopic     = "tracker/snapshots"
	DefaultControlTopic      = "tracker/control"
	DefaultHeartbeatTopic    = "tracker/heartbeat"
	DefaultPollInterval      = time.Second
	DefaultHeartbeatPeriod   = 30 * time.Second
	DefaultHistoryLimit      = 20
	DefaultGPSBaudRate       = 9600
	DefaultDisconnectQuiesce = 250 // milliseconds
)
