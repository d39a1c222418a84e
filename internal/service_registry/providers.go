package service_registry

import (
	"fmt"

	"github.com/benmeehan/gps-tracker/internal/constants"
	"github.com/benmeehan/gps-tracker/internal/utils"
	"github.com/benmeehan/gps-tracker/pkg/location"
)

// NewProvider builds the location provider selected by the tracking configuration.
func NewProvider(config *utils.Config) (location.Provider, error) {
	tracking := config.Services.Tracking
	switch tracking.Provider {
	case constants.ProviderSensor:
		return location.NewDeviceSensorProvider(tracking.GPSDevicePort, tracking.GPSBaudRate), nil
	case constants.ProviderGoogle:
		provider, err := location.NewGoogleGeolocationProvider(tracking.MapsAPIKey, tracking.ModemIndex)
		if err != nil {
			return nil, err
		}
		return provider, nil
	case constants.ProviderReplay:
		return location.NewGPXReplayProvider(tracking.ReplayFile, tracking.ReplayLoop), nil
	default:
		return nil, fmt.Errorf("unknown location provider %q", tracking.Provider)
	}
}
