package location

import (
	"context"
	"errors"
	"fmt"
	"time"

	"googlemaps.github.io/maps"
)

const geolocateTimeout = 10 * time.Second

// GoogleGeolocationProvider uses the Google Maps API to get location data.
type GoogleGeolocationProvider struct {
	client     *maps.Client // Maps API client for making geolocation requests
	hasKey     bool
	modemIndex int
	run        commandRunner
	now        func() time.Time
}

// NewGoogleGeolocationProvider creates a new GoogleGeolocationProvider instance.
// Extra client options are passed through to the Maps client.
func NewGoogleGeolocationProvider(apiKey string, modemIndex int, opts ...maps.ClientOption) (*GoogleGeolocationProvider, error) {
	if apiKey == "" {
		return &GoogleGeolocationProvider{modemIndex: modemIndex, run: runCommand, now: time.Now}, nil
	}

	c, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}

	return &GoogleGeolocationProvider{
		client:     c,
		hasKey:     true,
		modemIndex: modemIndex,
		run:        runCommand,
		now:        time.Now,
	}, nil
}

// CheckPermission reports granted when an API key was configured.
func (g *GoogleGeolocationProvider) CheckPermission(ctx context.Context) (Permission, error) {
	if err := ctx.Err(); err != nil {
		return PermissionDenied, err
	}
	if !g.hasKey {
		return PermissionDenied, nil
	}
	return PermissionGranted, nil
}

// GetLocation retrieves the device's location using Google Maps Geolocation API.
// WiFi and cell tower hints are added when the host tools can provide them.
func (g *GoogleGeolocationProvider) GetLocation(ctx context.Context) (Location, error) {
	if g.client == nil {
		return Location{}, errors.New("google geolocation requires an API key")
	}

	ctx, cancel := context.WithTimeout(ctx, geolocateTimeout)
	defer cancel()

	req := &maps.GeolocationRequest{ConsiderIP: true}
	if wifiAPs, err := getWiFiAccessPoints(ctx, g.run); err == nil {
		req.WiFiAccessPoints = wifiAPs
	}
	if cellTowers, err := getCellTowers(ctx, g.run, g.modemIndex); err == nil {
		req.CellTowers = cellTowers
	}

	resp, err := g.client.Geolocate(ctx, req)
	if err != nil {
		return Location{}, fmt.Errorf("geolocate request failed: %w", err)
	}

	return Location{
		Latitude:  resp.Location.Lat,
		Longitude: resp.Location.Lng,
		Accuracy:  resp.Accuracy,
		Timestamp: g.now(),
	}, nil
}

// Close is a no-op, the Maps client holds no open resources.
func (g *GoogleGeolocationProvider) Close() error {
	return nil
}
