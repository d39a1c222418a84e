package location

import (
	"time"

	"github.com/benmeehan/gps-tracker/pkg/geo"
)

// Location represents the geographical coordinates of a device at a point in time
type Location struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64 // estimated horizontal accuracy in meters, 0 when unknown
	Timestamp time.Time
}

// Point returns the coordinates as a geo.Point.
func (l Location) Point() geo.Point {
	return geo.Point{Latitude: l.Latitude, Longitude: l.Longitude}
}

// Sample converts the location into a sample for the track recorder.
func (l Location) Sample() geo.Sample {
	ts := l.Timestamp.UnixMilli()
	if ts < 0 {
		ts = 0
	}
	return geo.Sample{
		Point:           l.Point(),
		TimestampMillis: ts,
		Accuracy:        l.Accuracy,
	}
}

// Permission is the access signal a location source reports before its feed starts.
type Permission int

const (
	PermissionDenied Permission = iota
	PermissionGranted
)

// String returns "granted" or "denied".
func (p Permission) String() string {
	if p == PermissionGranted {
		return "granted"
	}
	return "denied"
}
