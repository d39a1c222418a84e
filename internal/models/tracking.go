package models

import (
	"time"

	"github.com/benmeehan/gps-tracker/pkg/geo"
	"github.com/benmeehan/gps-tracker/pkg/track"
)

// TrackSnapshot is the published view of the recorder.
type TrackSnapshot struct {
	DeviceID        string      `json:"device_id"`
	Timestamp       time.Time   `json:"timestamp"`
	State           string      `json:"state"`
	StartTimeMillis int64       `json:"start_time_ms"`
	ElapsedSeconds  int64       `json:"elapsed_seconds"`
	Elapsed         string      `json:"elapsed"`
	DistanceKm      float64     `json:"distance_km"`
	PointCount      int         `json:"point_count"`
	Accuracy        float64     `json:"accuracy,omitempty"`
	Initial         *geo.Point  `json:"initial,omitempty"`
	Current         *geo.Point  `json:"current,omitempty"`
	Region          *geo.Region `json:"region,omitempty"`
	Track           []geo.Point `json:"track,omitempty"`
}

// NewTrackSnapshot builds a snapshot from s. The region frames the track when
// s carries one, otherwise the initial and current pins.
func NewTrackSnapshot(deviceID string, s track.Session, at time.Time) TrackSnapshot {
	snapshot := TrackSnapshot{
		DeviceID:        deviceID,
		Timestamp:       at,
		State:           s.State.String(),
		StartTimeMillis: s.StartTimeMillis,
		ElapsedSeconds:  s.ElapsedSeconds,
		Elapsed:         s.Elapsed(),
		DistanceKm:      s.DistanceKm,
		PointCount:      s.PointCount,
		Accuracy:        s.LastAccuracy,
		Track:           s.Track,
	}

	initial, ok := s.Initial()
	if !ok {
		return snapshot
	}
	current, _ := s.Current()
	snapshot.Initial = &initial
	snapshot.Current = &current

	framed := s.Track
	if len(framed) == 0 {
		framed = []geo.Point{initial, current}
	}
	if region, ok := geo.RegionFor(framed); ok {
		snapshot.Region = &region
	}
	return snapshot
}

// SessionRecord is a completed recording kept in the session history.
type SessionRecord struct {
	ID             string      `json:"id"`
	DeviceID       string      `json:"device_id"`
	StartedAt      time.Time   `json:"started_at"`
	StoppedAt      time.Time   `json:"stopped_at"`
	ElapsedSeconds int64       `json:"elapsed_seconds"`
	Elapsed        string      `json:"elapsed"`
	DistanceKm     float64     `json:"distance_km"`
	PointCount     int         `json:"point_count"`
	Region         *geo.Region `json:"region,omitempty"`
	Track          []geo.Point `json:"track,omitempty"`
}

// NewSessionRecord builds the history entry for the final session of a stop.
func NewSessionRecord(id, deviceID string, final track.Session, stoppedAt time.Time) SessionRecord {
	record := SessionRecord{
		ID:             id,
		DeviceID:       deviceID,
		StartedAt:      time.UnixMilli(final.StartTimeMillis).UTC(),
		StoppedAt:      stoppedAt,
		ElapsedSeconds: final.ElapsedSeconds,
		Elapsed:        final.Elapsed(),
		DistanceKm:     final.DistanceKm,
		PointCount:     final.PointCount,
		Track:          final.Track,
	}
	if region, ok := geo.RegionFor(final.Track); ok {
		record.Region = &region
	}
	return record
}

// WithoutTrack returns a copy of the record with the track dropped.
func (r SessionRecord) WithoutTrack() SessionRecord {
	r.Track = nil
	return r
}

// ControlCommand is received on the control topic.
type ControlCommand struct {
	Action    string `json:"action"`
	RequestID string `json:"request_id,omitempty"`
}

// ControlResponse is published after a control command has been applied.
type ControlResponse struct {
	RequestID string         `json:"request_id,omitempty"`
	DeviceID  string         `json:"device_id"`
	Action    string         `json:"action"`
	Status    string         `json:"status"`
	Error     string         `json:"error,omitempty"`
	Snapshot  *TrackSnapshot `json:"snapshot,omitempty"`
	Session   *SessionRecord `json:"session,omitempty"`
}
