package track

import "github.com/benmeehan/gps-tracker/pkg/geo"

// State is the recording state of a Recorder.
type State int

const (
	Idle State = iota
	Recording
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Session is a point-in-time view of a Recorder. It never aliases the
// recorder's internal track.
type Session struct {
	State           State       `json:"state"`
	StartTimeMillis int64       `json:"start_time_ms"`
	ElapsedSeconds  int64       `json:"elapsed_seconds"`
	DistanceKm      float64     `json:"distance_km"`
	PointCount      int         `json:"point_count"`
	LastAccuracy    float64     `json:"accuracy,omitempty"`
	Track           []geo.Point `json:"track,omitempty"`

	initial geo.Point
	current geo.Point
}

// Initial returns the first point of the session, if any.
func (s Session) Initial() (geo.Point, bool) {
	return s.initial, s.PointCount > 0
}

// Current returns the most recent point of the session, if any.
func (s Session) Current() (geo.Point, bool) {
	return s.current, s.PointCount > 0
}

// Elapsed returns the elapsed time formatted as HH:MM:SS.
func (s Session) Elapsed() string {
	return FormatElapsed(s.ElapsedSeconds)
}
