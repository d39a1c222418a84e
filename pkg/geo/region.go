package geo

import (
	"math"

	"github.com/golang/geo/s2"
)

const (
	// RegionPadding scales the bounding box so edge points are not drawn on the border.
	RegionPadding = 1.5
	// MinRegionDelta is the smallest span, in degrees, returned by RegionFor.
	MinRegionDelta = 0.01
)

// Region describes a map viewport: a center and the latitude/longitude span around it.
type Region struct {
	CenterLatitude  float64 `json:"latitude"`
	CenterLongitude float64 `json:"longitude"`
	LatitudeDelta   float64 `json:"latitude_delta"`
	LongitudeDelta  float64 `json:"longitude_delta"`
}

// LatLng converts the point to an s2.LatLng.
func (p Point) LatLng() s2.LatLng {
	return s2.LatLngFromDegrees(p.Latitude, p.Longitude)
}

// BoundingRect returns the smallest s2 rectangle containing every point.
func BoundingRect(points []Point) s2.Rect {
	rect := s2.EmptyRect()
	for _, p := range points {
		if !p.IsFinite() {
			continue
		}
		rect = rect.AddPoint(p.LatLng())
	}
	return rect
}

// RegionFor computes a viewport that frames all points. It returns false when
// there is nothing to frame.
func RegionFor(points []Point) (Region, bool) {
	rect := BoundingRect(points)
	if rect.IsEmpty() {
		return Region{}, false
	}

	center := rect.Center()
	size := rect.Size()

	return Region{
		CenterLatitude:  center.Lat.Degrees(),
		CenterLongitude: center.Lng.Degrees(),
		LatitudeDelta:   math.Max(size.Lat.Degrees()*RegionPadding, MinRegionDelta),
		LongitudeDelta:  math.Max(size.Lng.Degrees()*RegionPadding, MinRegionDelta),
	}, true
}

// Contains reports whether p lies within the region.
func (r Region) Contains(p Point) bool {
	halfLat := r.LatitudeDelta / 2
	halfLon := r.LongitudeDelta / 2
	dLon := math.Abs(p.Longitude - r.CenterLongitude)
	if dLon > 180 {
		dLon = 360 - dLon
	}
	return math.Abs(p.Latitude-r.CenterLatitude) <= halfLat && dLon <= halfLon
}
