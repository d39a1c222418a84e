package service_registry

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/benmeehan/gps-tracker/internal/constants"
	"github.com/benmeehan/gps-tracker/internal/metrics"
	"github.com/benmeehan/gps-tracker/internal/mocks"
	"github.com/benmeehan/gps-tracker/internal/utils"
	"github.com/benmeehan/gps-tracker/pkg/location"
)

type fakeService struct {
	name     string
	startErr error
	stopErr  error
	events   *[]string
}

func (f *fakeService) Start() error {
	*f.events = append(*f.events, "start "+f.name)
	return f.startErr
}

func (f *fakeService) Stop() error {
	*f.events = append(*f.events, "stop "+f.name)
	return f.stopErr
}

func newTestRegistry() (*ServiceRegistry, *mocks.MockMQTTClient, *metrics.Metrics) {
	client := new(mocks.MockMQTTClient)
	m := metrics.New()
	return NewServiceRegistry(client, m, zerolog.Nop()), client, m
}

func TestServiceRegistry_StartAndStopInOrder(t *testing.T) {
	// Setup
	sr, _, _ := newTestRegistry()
	var events []string
	sr.RegisterService("a", &fakeService{name: "a", events: &events})
	sr.RegisterService("b", &fakeService{name: "b", events: &events})
	sr.RegisterService("a", &fakeService{name: "duplicate", events: &events})

	// Execute
	require.NoError(t, sr.StartServices())
	require.NoError(t, sr.StopServices())

	// Assert
	assert.Equal(t, []string{"start a", "start b", "stop b", "stop a"}, events)
}

func TestServiceRegistry_StartRollsBack(t *testing.T) {
	// Setup
	sr, _, _ := newTestRegistry()
	var events []string
	sr.RegisterService("a", &fakeService{name: "a", events: &events})
	sr.RegisterService("b", &fakeService{name: "b", events: &events})
	sr.RegisterService("c", &fakeService{name: "c", startErr: errors.New("boom"), events: &events})

	// Execute
	err := sr.StartServices()

	// Assert
	assert.ErrorContains(t, err, "failed to start c")
	assert.Equal(t, []string{"start a", "start b", "start c", "stop b", "stop a"}, events)
}

func TestServiceRegistry_StopJoinsErrors(t *testing.T) {
	sr, _, _ := newTestRegistry()
	var events []string
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	sr.RegisterService("a", &fakeService{name: "a", stopErr: errA, events: &events})
	sr.RegisterService("b", &fakeService{name: "b", stopErr: errB, events: &events})

	err := sr.StopServices()

	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}

func TestServiceRegistry_RegisterServicesRequiresMiddleware(t *testing.T) {
	sr, _, _ := newTestRegistry()
	config := &utils.Config{}
	config.ApplyDefaults()

	assert.Error(t, sr.RegisterServices(config))
}

func TestServiceRegistry_RegisterServices(t *testing.T) {
	// Setup
	sr, _, _ := newTestRegistry()
	provider := new(mocks.MockProvider)
	sr.newProvider = func(*utils.Config) (location.Provider, error) { return provider, nil }

	config := &utils.Config{}
	config.Services.Tracking.Enabled = true
	config.Services.Heartbeat.Enabled = true
	config.ApplyDefaults()

	// Execute
	_, err := sr.InitializeMiddlewares()
	require.NoError(t, err)
	err = sr.RegisterServices(config)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"tracking", "heartbeat"}, sr.serviceKeys)
	require.NotNil(t, sr.Tracking())
	assert.Equal(t, config.Device.ID, sr.Tracking().DeviceID())
}

func TestServiceRegistry_TrackingDisabled(t *testing.T) {
	sr, _, _ := newTestRegistry()
	config := &utils.Config{}
	config.Services.Heartbeat.Enabled = true
	config.ApplyDefaults()

	_, err := sr.InitializeMiddlewares()
	require.NoError(t, err)
	require.NoError(t, sr.RegisterServices(config))

	assert.Nil(t, sr.Tracking())
	assert.Equal(t, []string{"heartbeat"}, sr.serviceKeys)
}

func TestServiceRegistry_ProviderError(t *testing.T) {
	sr, _, _ := newTestRegistry()
	sr.newProvider = func(*utils.Config) (location.Provider, error) { return nil, errors.New("no gps") }
	config := &utils.Config{}
	config.Services.Tracking.Enabled = true
	config.ApplyDefaults()

	_, err := sr.InitializeMiddlewares()
	require.NoError(t, err)

	assert.ErrorContains(t, sr.RegisterServices(config), "no gps")
	assert.Empty(t, sr.serviceKeys)
}

func TestInitializeMiddlewares_CountsPublishes(t *testing.T) {
	// Setup
	sr, client, m := newTestRegistry()
	client.On("Publish", "tracker/heartbeat", byte(0), false, mock.Anything).Return(mocks.NewCompletedToken(nil))
	client.On("Publish", "tracker/broken", byte(0), false, mock.Anything).Return(mocks.NewCompletedToken(errors.New("offline")))

	// Execute
	chain, err := sr.InitializeMiddlewares()
	require.NoError(t, err)
	require.NoError(t, chain.Publish("tracker/heartbeat", 0, false, []byte("{}")))
	assert.Error(t, chain.Publish("tracker/broken", 0, false, []byte("{}")))

	// Assert
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Publishes.WithLabelValues("tracker/heartbeat", metrics.PublishSucceeded)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Publishes.WithLabelValues("tracker/broken", metrics.PublishFailed)))
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		wantErr  bool
		wantType location.Provider
	}{
		{name: "sensor", provider: constants.ProviderSensor, wantType: &location.DeviceSensorProvider{}},
		{name: "google", provider: constants.ProviderGoogle, wantType: &location.GoogleGeolocationProvider{}},
		{name: "replay", provider: constants.ProviderReplay, wantType: &location.GPXReplayProvider{}},
		{name: "unknown", provider: "carrier-pigeon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &utils.Config{}
			config.Services.Tracking.Provider = tt.provider
			config.Services.Tracking.GPSDevicePort = "/dev/ttyUSB0"
			config.Services.Tracking.ReplayFile = "testdata/route.gpx"
			config.Services.Tracking.PollInterval = time.Second

			provider, err := NewProvider(config)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, provider)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, provider)
		})
	}
}
