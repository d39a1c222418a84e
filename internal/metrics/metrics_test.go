package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benmeehan/gps-tracker/pkg/track"
)

func TestObserveSession(t *testing.T) {
	m := New()

	m.ObserveSession(track.Session{
		State:          track.Recording,
		ElapsedSeconds: 3600,
		DistanceKm:     54.91,
		PointCount:     2,
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Recording))
	assert.Equal(t, 54.91, testutil.ToFloat64(m.DistanceKm))
	assert.Equal(t, 3600.0, testutil.ToFloat64(m.ElapsedSeconds))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.TrackPoints))

	m.ObserveSession(track.Session{State: track.Idle})
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Recording))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.TrackPoints))
}

func TestSampleCounters(t *testing.T) {
	m := New()

	m.Samples.WithLabelValues(SampleAccepted).Inc()
	m.Samples.WithLabelValues(SampleAccepted).Inc()
	m.Samples.WithLabelValues(SampleIgnored).Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Samples.WithLabelValues(SampleAccepted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Samples.WithLabelValues(SampleIgnored)))
}

func TestRegistryExposesTrackerMetrics(t *testing.T) {
	m := New()
	m.Sessions.Inc()

	expected := `
# HELP tracker_sessions_total Recording sessions completed with stop
# TYPE tracker_sessions_total counter
tracker_sessions_total 1
`
	err := testutil.GatherAndCompare(m.Registry, strings.NewReader(expected), "tracker_sessions_total")
	require.NoError(t, err)
}
