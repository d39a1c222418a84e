package models

import "time"

// Heartbeat represents the structure for a device heartbeat event.
type Heartbeat struct {
	DeviceID   string             `json:"device_id"`
	Timestamp  time.Time          `json:"timestamp"`
	Status     string             `json:"status"`
	State      string             `json:"state"`
	Elapsed    string             `json:"elapsed"`
	DistanceKm float64            `json:"distance_km"`
	PointCount int                `json:"point_count"`
	Host       map[string]float64 `json:"host,omitempty"`
}
