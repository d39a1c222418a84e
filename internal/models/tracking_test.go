package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benmeehan/gps-tracker/pkg/geo"
	"github.com/benmeehan/gps-tracker/pkg/track"
)

var (
	saoPaulo = geo.Point{Latitude: -23.5505, Longitude: -46.6333}
	santos   = geo.Point{Latitude: -23.9608, Longitude: -46.3331}
)

func recordedSession(t *testing.T) *track.Recorder {
	t.Helper()
	r := track.NewRecorder()
	require.NoError(t, r.Start(geo.Sample{Point: saoPaulo, TimestampMillis: 1_000}))
	require.NoError(t, r.Ingest(geo.Sample{Point: santos, TimestampMillis: 3_601_000, Accuracy: 5}))
	return r
}

func TestNewTrackSnapshot_Idle(t *testing.T) {
	at := time.Date(2026, time.June, 17, 12, 0, 0, 0, time.UTC)

	snapshot := NewTrackSnapshot("dev-1", track.NewRecorder().Snapshot(), at)

	assert.Equal(t, "idle", snapshot.State)
	assert.Equal(t, "00:00:00", snapshot.Elapsed)
	assert.Nil(t, snapshot.Initial)
	assert.Nil(t, snapshot.Current)
	assert.Nil(t, snapshot.Region)
	assert.Equal(t, at, snapshot.Timestamp)
}

func TestNewTrackSnapshot_Recording(t *testing.T) {
	r := recordedSession(t)

	withTrack := NewTrackSnapshot("dev-1", r.Snapshot(), time.Now())
	summary := NewTrackSnapshot("dev-1", r.Summary(), time.Now())

	assert.Equal(t, "recording", withTrack.State)
	assert.Equal(t, "01:00:00", withTrack.Elapsed)
	assert.Equal(t, 2, withTrack.PointCount)
	assert.Equal(t, 5.0, withTrack.Accuracy)
	require.NotNil(t, withTrack.Initial)
	assert.Equal(t, saoPaulo, *withTrack.Initial)
	assert.Equal(t, santos, *withTrack.Current)
	assert.Len(t, withTrack.Track, 2)
	require.NotNil(t, withTrack.Region)
	assert.True(t, withTrack.Region.Contains(saoPaulo))
	assert.True(t, withTrack.Region.Contains(santos))

	assert.Nil(t, summary.Track)
	require.NotNil(t, summary.Region)
	assert.Equal(t, *withTrack.Region, *summary.Region)
}

func TestNewSessionRecord(t *testing.T) {
	r := recordedSession(t)
	final, err := r.Stop()
	require.NoError(t, err)
	stoppedAt := time.Date(2026, time.June, 17, 13, 0, 0, 0, time.UTC)

	record := NewSessionRecord("abc", "dev-1", final, stoppedAt)

	assert.Equal(t, "abc", record.ID)
	assert.Equal(t, time.UnixMilli(1_000).UTC(), record.StartedAt)
	assert.Equal(t, stoppedAt, record.StoppedAt)
	assert.Equal(t, int64(3600), record.ElapsedSeconds)
	assert.InDelta(t, 54.91, record.DistanceKm, 0.05)
	assert.Len(t, record.Track, 2)
	assert.NotNil(t, record.Region)
	assert.Nil(t, record.WithoutTrack().Track)
	assert.Len(t, record.Track, 2)
}
