package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/benmeehan/gps-tracker/internal/constants"
	"github.com/benmeehan/gps-tracker/pkg/file"
	"github.com/benmeehan/gps-tracker/pkg/identity"
)

// Config represents the structure of the configuration file.
type Config struct {
	Log struct {
		Level string `yaml:"level"` // zerolog level name
	} `yaml:"log"`

	Device struct {
		ID           string `yaml:"id"`            // Device identifier
		IdentityFile string `yaml:"identity_file"` // JSON identity used when id is empty, falls back to a UUID
	} `yaml:"device"`

	MQTT struct {
		Broker        string `yaml:"broker"`         // MQTT broker address
		ClientID      string `yaml:"client_id"`      // MQTT client ID prefix
		CACertificate string `yaml:"ca_certificate"` // Path to the CA certificate, TLS when set
		Username      string `yaml:"username"`
		Password      string `yaml:"password"`
	} `yaml:"mqtt"`

	Sentry struct {
		DSN         string `yaml:"dsn"` // Reporting is disabled when empty
		Environment string `yaml:"environment"`
	} `yaml:"sentry"`

	HTTP struct {
		Enabled bool   `yaml:"enabled"`
		Address string `yaml:"address"`
	} `yaml:"http"`

	Services struct {
		Tracking struct {
			Enabled       bool          `yaml:"enabled"`         // Enable/disable tracking service
			Topic         string        `yaml:"topic"`           // MQTT topic for snapshots
			ControlTopic  string        `yaml:"control_topic"`   // MQTT topic for control commands
			QOS           int           `yaml:"qos"`             // MQTT QoS level for tracking messages
			PollInterval  time.Duration `yaml:"poll_interval"`   // Interval between provider reads
			IncludeTrack  bool          `yaml:"include_track"`   // Publish the full track with every snapshot
			HistoryLimit  int           `yaml:"history_limit"`   // Completed sessions kept in memory
			Provider      string        `yaml:"provider"`        // sensor, google or replay
			GPSDevicePort string        `yaml:"gps_device_port"` // Serial port of the GPS receiver
			GPSBaudRate   int           `yaml:"gps_baud_rate"`   // Baud rate of the GPS receiver
			MapsAPIKey    string        `yaml:"maps_api_key"`    // Google Maps API key
			ModemIndex    int           `yaml:"modem_index"`     // ModemManager index used for cell tower hints
			ReplayFile    string        `yaml:"replay_file"`     // GPX file replayed by the replay provider
			ReplayLoop    bool          `yaml:"replay_loop"`     // Restart the replay at the end of the file
		} `yaml:"tracking"`

		Heartbeat struct {
			Enabled     bool          `yaml:"enabled"`      // Enable/disable heartbeat service
			Topic       string        `yaml:"topic"`        // MQTT topic for heartbeat service
			Interval    time.Duration `yaml:"interval"`     // Interval between heartbeats
			QOS         int           `yaml:"qos"`          // MQTT QoS level for heartbeat messages
			HostMetrics bool          `yaml:"host_metrics"` // Add CPU, memory and disk usage to heartbeats
			DiskPath    string        `yaml:"disk_path"`    // Filesystem reported as disk usage
		} `yaml:"heartbeat"`
	} `yaml:"services"`
}

// LoadConfig loads the YAML configuration from the specified file, applies
// defaults and validates the result.
func LoadConfig(filename string, fileClient file.FileOperations) (*Config, error) {
	var config Config
	if err := fileClient.ReadYamlFile(filename, &config); err != nil {
		return nil, err
	}

	if config.Device.ID == "" && config.Device.IdentityFile != "" {
		deviceInfo := identity.NewDeviceInfo(config.Device.IdentityFile, fileClient)
		if err := deviceInfo.LoadDeviceInfo(); err != nil {
			return nil, fmt.Errorf("failed to load device identity: %w", err)
		}
		config.Device.ID = deviceInfo.GetDeviceID()
	}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// ApplyDefaults fills every unset field with its default value.
func (c *Config) ApplyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = constants.DefaultLogLevel
	}
	if c.Device.ID == "" {
		c.Device.ID = uuid.New().String()
	}
	if c.MQTT.Broker == "" {
		c.MQTT.Broker = constants.DefaultBroker
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = constants.DefaultClientID
	}
	if c.HTTP.Address == "" {
		c.HTTP.Address = constants.DefaultHTTPAddress
	}

	tracking := &c.Services.Tracking
	if tracking.Topic == "" {
		tracking.Topic = constants.DefaultTrackingTopic
	}
	if tracking.ControlTopic == "" {
		tracking.ControlTopic = constants.DefaultControlTopic
	}
	if tracking.PollInterval == 0 {
		tracking.PollInterval = constants.DefaultPollInterval
	}
	if tracking.HistoryLimit == 0 {
		tracking.HistoryLimit = constants.DefaultHistoryLimit
	}
	if tracking.Provider == "" {
		tracking.Provider = constants.ProviderSensor
	}
	if tracking.GPSBaudRate == 0 {
		tracking.GPSBaudRate = constants.DefaultGPSBaudRate
	}

	heartbeat := &c.Services.Heartbeat
	if heartbeat.Topic == "" {
		heartbeat.Topic = constants.DefaultHeartbeatTopic
	}
	if heartbeat.Interval == 0 {
		heartbeat.Interval = constants.DefaultHeartbeatPeriod
	}
}

// Validate rejects values no service could run with.
func (c *Config) Validate() error {
	var errs []error

	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	tracking := c.Services.Tracking
	if tracking.QOS < 0 || tracking.QOS > 2 {
		errs = append(errs, fmt.Errorf("services.tracking.qos must be 0, 1 or 2, got %d", tracking.QOS))
	}
	if tracking.PollInterval < 0 {
		errs = append(errs, errors.New("services.tracking.poll_interval must be positive"))
	}
	if tracking.HistoryLimit < 0 {
		errs = append(errs, errors.New("services.tracking.history_limit must not be negative"))
	}
	switch tracking.Provider {
	case constants.ProviderSensor:
		if tracking.Enabled && tracking.GPSDevicePort == "" {
			errs = append(errs, errors.New("services.tracking.gps_device_port is required for the sensor provider"))
		}
	case constants.ProviderGoogle:
	case constants.ProviderReplay:
		if tracking.Enabled && tracking.ReplayFile == "" {
			errs = append(errs, errors.New("services.tracking.replay_file is required for the replay provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("services.tracking.provider %q is not one of sensor, google, replay", tracking.Provider))
	}

	heartbeat := c.Services.Heartbeat
	if heartbeat.QOS < 0 || heartbeat.QOS > 2 {
		errs = append(errs, fmt.Errorf("services.heartbeat.qos must be 0, 1 or 2, got %d", heartbeat.QOS))
	}
	if heartbeat.Interval < 0 {
		errs = append(errs, errors.New("services.heartbeat.interval must be positive"))
	}

	return errors.Join(errs...)
}

// UniqueClientID suffixes the configured client ID so several agents can share a broker.
func (c *Config) UniqueClientID() string {
	return c.MQTT.ClientID + "-" + uuid.New().String()
}
