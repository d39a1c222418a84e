// Package track accumulates a stream of location samples into a recorded
// path with its traveled distance and elapsed time.
package track

import (
	"fmt"

	"github.com/benmeehan/gps-tracker/pkg/geo"
)

// Recorder holds the state of one recording. It is not safe for concurrent
// use: callers must serialize Start, Ingest, Stop, Reset and Snapshot.
type Recorder struct {
	state           State
	startTimeMillis int64
	elapsedSeconds  int64
	distanceKm      float64
	lastAccuracy    float64
	track           []geo.Point
}

// NewRecorder returns an idle recorder.
func NewRecorder() *Recorder {
	return &Recorder{state: Idle}
}

// State returns the current recording state.
func (r *Recorder) State() State {
	return r.state
}

// Start begins a new session at the given sample. It fails with
// ErrInvalidTransition if a session is already in progress.
func (r *Recorder) Start(initial geo.Sample) error {
	if r.state != Idle {
		return fmt.Errorf("%w: start while %s", ErrInvalidTransition, r.state)
	}
	if !initial.Point.IsFinite() {
		return fmt.Errorf("%w: non-finite coordinates %v,%v", ErrInvalidSample, initial.Point.Latitude, initial.Point.Longitude)
	}

	r.startTimeMillis = initial.TimestampMillis
	r.elapsedSeconds = 0
	r.distanceKm = 0
	r.lastAccuracy = initial.Accuracy
	r.track = append(make([]geo.Point, 0, 64), initial.Point)
	r.state = Recording
	return nil
}

// Ingest appends a sample to the current session and adds the distance from
// the previous point. Samples received while idle are ignored.
func (r *Recorder) Ingest(sample geo.Sample) error {
	if r.state != Recording {
		return nil
	}
	if !sample.Point.IsFinite() {
		return fmt.Errorf("%w: non-finite coordinates %v,%v", ErrInvalidSample, sample.Point.Latitude, sample.Point.Longitude)
	}

	prev := r.track[len(r.track)-1]
	r.distanceKm += geo.DistanceKm(prev, sample.Point)
	r.track = append(r.track, sample.Point)
	r.lastAccuracy = sample.Accuracy

	elapsedMillis := sample.TimestampMillis - r.startTimeMillis
	if elapsedMillis < 0 {
		elapsedMillis = 0
	}
	r.elapsedSeconds = elapsedMillis / 1000
	return nil
}

// Stop ends the current session and clears all accumulators. The returned
// session holds the totals as they were just before stopping.
func (r *Recorder) Stop() (Session, error) {
	if r.state != Recording {
		return Session{}, fmt.Errorf("%w: stop while %s", ErrInvalidTransition, r.state)
	}

	final := r.Snapshot()
	r.Reset()
	return final, nil
}

// Reset discards any session in progress and returns to Idle.
func (r *Recorder) Reset() {
	r.state = Idle
	r.startTimeMillis = 0
	r.elapsedSeconds = 0
	r.distanceKm = 0
	r.lastAccuracy = 0
	r.track = nil
}

// Snapshot returns the current session including a copy of the track.
func (r *Recorder) Snapshot() Session {
	s := r.Summary()
	if len(r.track) > 0 {
		s.Track = make([]geo.Point, len(r.track))
		copy(s.Track, r.track)
	}
	return s
}

// Summary returns the current session without the track points.
func (r *Recorder) Summary() Session {
	s := Session{
		State:           r.state,
		StartTimeMillis: r.startTimeMillis,
		ElapsedSeconds:  r.elapsedSeconds,
		DistanceKm:      r.distanceKm,
		PointCount:      len(r.track),
		LastAccuracy:    r.lastAccuracy,
	}
	if n := len(r.track); n > 0 {
		s.initial = r.track[0]
		s.current = r.track[n-1]
	}
	return s
}
