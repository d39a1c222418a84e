package location

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLocation_Sample(t *testing.T) {
	loc := Location{
		Latitude:  -23.5505,
		Longitude: -46.6333,
		Accuracy:  4.5,
		Timestamp: time.UnixMilli(1_750_000_000_123),
	}

	sample := loc.Sample()

	assert.Equal(t, -23.5505, sample.Point.Latitude)
	assert.Equal(t, -46.6333, sample.Point.Longitude)
	assert.Equal(t, int64(1_750_000_000_123), sample.TimestampMillis)
	assert.Equal(t, 4.5, sample.Accuracy)
}

func TestLocation_SampleClampsPreEpoch(t *testing.T) {
	loc := Location{Timestamp: time.Date(1969, time.December, 31, 0, 0, 0, 0, time.UTC)}

	assert.Equal(t, int64(0), loc.Sample().TimestampMillis)
}

func TestPermission_String(t *testing.T) {
	assert.Equal(t, "granted", PermissionGranted.String())
	assert.Equal(t, "denied", PermissionDenied.String())
}
