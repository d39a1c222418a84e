package geo

import (
	"math"
	"testing"

	"github.com/golang/geo/s2"
	"github.com/stretchr/testify/assert"
)

var (
	saoPaulo = Point{Latitude: -23.55052, Longitude: -46.633308}
	santos   = Point{Latitude: -23.96083, Longitude: -46.333057}
)

func TestDistanceKm_SamePointIsZero(t *testing.T) {
	points := []Point{
		saoPaulo,
		{Latitude: 0, Longitude: 0},
		{Latitude: 90, Longitude: 0},
		{Latitude: -90, Longitude: 180},
		{Latitude: 45.5, Longitude: -179.999},
	}

	for _, p := range points {
		assert.Equal(t, 0.0, DistanceKm(p, p), "point %+v", p)
	}
}

func TestDistanceKm_Symmetric(t *testing.T) {
	pairs := [][2]Point{
		{saoPaulo, santos},
		{{Latitude: 51.5074, Longitude: -0.1278}, {Latitude: 48.8566, Longitude: 2.3522}},
		{{Latitude: 10, Longitude: 179.5}, {Latitude: -10, Longitude: -179.5}},
		{{Latitude: 0, Longitude: 0}, {Latitude: 0, Longitude: 180}},
	}

	for _, pair := range pairs {
		ab := DistanceKm(pair[0], pair[1])
		ba := DistanceKm(pair[1], pair[0])
		assert.InEpsilon(t, ab, ba, 1e-9)
		assert.Greater(t, ab, 0.0)
	}
}

func TestDistanceKm_SaoPauloToSantos(t *testing.T) {
	// Straight-line distance between the two city centers.
	assert.InDelta(t, 54.91, DistanceKm(saoPaulo, santos), 0.05)
}

func TestDistanceKm_KnownDistances(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Point
		expected float64
		delta    float64
	}{
		{"one degree of longitude at the equator", Point{0, 0}, Point{0, 1}, 111.195, 0.001},
		{"London to Paris", Point{51.5074, -0.1278}, Point{48.8566, 2.3522}, 343.56, 0.01},
		{"antipodal points", Point{0, 0}, Point{0, 180}, math.Pi * EarthRadiusKm, 1e-6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, DistanceKm(tt.a, tt.b), tt.delta)
		})
	}
}

func TestDistanceKm_MatchesS2Angle(t *testing.T) {
	a := s2.LatLngFromDegrees(saoPaulo.Latitude, saoPaulo.Longitude)
	b := s2.LatLngFromDegrees(santos.Latitude, santos.Longitude)
	expected := a.Distance(b).Radians() * EarthRadiusKm

	assert.InDelta(t, expected, DistanceKm(saoPaulo, santos), 1e-6)
}

func TestDistanceMeters(t *testing.T) {
	assert.InDelta(t, DistanceKm(saoPaulo, santos)*1000, DistanceMeters(saoPaulo, santos), 1e-9)
}

func TestPoint_IsFinite(t *testing.T) {
	assert.True(t, saoPaulo.IsFinite())
	assert.False(t, Point{Latitude: math.NaN(), Longitude: 0}.IsFinite())
	assert.False(t, Point{Latitude: 0, Longitude: math.Inf(1)}.IsFinite())
	assert.False(t, Point{Latitude: math.Inf(-1), Longitude: math.NaN()}.IsFinite())
}
