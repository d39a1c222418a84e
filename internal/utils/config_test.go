package utils

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/benmeehan/gps-tracker/internal/constants"
	"github.com/benmeehan/gps-tracker/internal/mocks"
	"github.com/benmeehan/gps-tracker/pkg/file"
)

const sampleConfig = `
log:
  level: debug
device:
  id: truck-7
mqtt:
  broker: ssl://broker.example.com:8883
  client_id: tracker
services:
  tracking:
    enabled: true
    topic: fleet/snapshots
    qos: 1
    poll_interval: 2s
    include_track: true
    provider: replay
    replay_file: testdata/route.gpx
  heartbeat:
    enabled: true
    interval: 1m
`

func TestLoadConfig(t *testing.T) {
	// Setup
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0600))

	// Execute
	config, err := LoadConfig(path, file.NewFileService())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, "truck-7", config.Device.ID)
	assert.Equal(t, "ssl://broker.example.com:8883", config.MQTT.Broker)
	assert.True(t, config.Services.Tracking.Enabled)
	assert.Equal(t, "fleet/snapshots", config.Services.Tracking.Topic)
	assert.Equal(t, constants.DefaultControlTopic, config.Services.Tracking.ControlTopic)
	assert.Equal(t, 2*time.Second, config.Services.Tracking.PollInterval)
	assert.True(t, config.Services.Tracking.IncludeTrack)
	assert.Equal(t, constants.DefaultHistoryLimit, config.Services.Tracking.HistoryLimit)
	assert.Equal(t, constants.ProviderReplay, config.Services.Tracking.Provider)
	assert.Equal(t, time.Minute, config.Services.Heartbeat.Interval)
	assert.Equal(t, constants.DefaultHeartbeatTopic, config.Services.Heartbeat.Topic)
	assert.Equal(t, constants.DefaultHTTPAddress, config.HTTP.Address)
}

func TestLoadConfig_IdentityFile(t *testing.T) {
	// Setup
	dir := t.TempDir()
	identityPath := filepath.Join(dir, "device.json")
	require.NoError(t, os.WriteFile(identityPath, []byte(`{"device_id":"van-3"}`), 0600))
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("device:\n  identity_file: "+identityPath+"\n"), 0600))

	// Execute
	config, err := LoadConfig(configPath, file.NewFileService())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "van-3", config.Device.ID)
}

func TestLoadConfig_ReadError(t *testing.T) {
	fileClient := new(mocks.MockFileOperations)
	fileClient.On("ReadYamlFile", "missing.yaml", mock.Anything).Return(errors.New("open missing.yaml: no such file"))

	config, err := LoadConfig("missing.yaml", fileClient)

	assert.Nil(t, config)
	assert.Error(t, err)
}

func TestApplyDefaults(t *testing.T) {
	var config Config

	config.ApplyDefaults()

	assert.Equal(t, constants.DefaultLogLevel, config.Log.Level)
	_, err := uuid.Parse(config.Device.ID)
	assert.NoError(t, err)
	assert.Equal(t, constants.DefaultBroker, config.MQTT.Broker)
	assert.Equal(t, constants.DefaultPollInterval, config.Services.Tracking.PollInterval)
	assert.Equal(t, constants.ProviderSensor, config.Services.Tracking.Provider)
	assert.Equal(t, constants.DefaultGPSBaudRate, config.Services.Tracking.GPSBaudRate)
	assert.Equal(t, constants.DefaultHeartbeatPeriod, config.Services.Heartbeat.Interval)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		var c Config
		c.ApplyDefaults()
		c.Services.Tracking.Enabled = true
		c.Services.Tracking.GPSDevicePort = "/dev/ttyUSB0"
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "loud" }, wantErr: "log.level"},
		{name: "tracking qos", mutate: func(c *Config) { c.Services.Tracking.QOS = 3 }, wantErr: "services.tracking.qos"},
		{name: "heartbeat qos", mutate: func(c *Config) { c.Services.Heartbeat.QOS = -1 }, wantErr: "services.heartbeat.qos"},
		{name: "negative poll", mutate: func(c *Config) { c.Services.Tracking.PollInterval = -time.Second }, wantErr: "poll_interval"},
		{name: "unknown provider", mutate: func(c *Config) { c.Services.Tracking.Provider = "psychic" }, wantErr: "psychic"},
		{name: "sensor without port", mutate: func(c *Config) { c.Services.Tracking.GPSDevicePort = "" }, wantErr: "gps_device_port"},
		{name: "replay without file", mutate: func(c *Config) { c.Services.Tracking.Provider = constants.ProviderReplay }, wantErr: "replay_file"},
		{name: "google needs nothing else", mutate: func(c *Config) { c.Services.Tracking.Provider = constants.ProviderGoogle }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)

			err := c.Validate()

			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestUniqueClientID(t *testing.T) {
	var c Config
	c.MQTT.ClientID = "tracker"

	first := c.UniqueClientID()
	second := c.UniqueClientID()

	assert.Contains(t, first, "tracker-")
	assert.NotEqual(t, first, second)
}
