package service_registry

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/benmeehan/gps-tracker/internal/metrics"
	"github.com/benmeehan/gps-tracker/internal/metrics_collectors"
	mqtt_middleware "github.com/benmeehan/gps-tracker/internal/middlewares/mqtt"
	"github.com/benmeehan/gps-tracker/internal/services"
	"github.com/benmeehan/gps-tracker/internal/utils"
	"github.com/benmeehan/gps-tracker/pkg/location"
	"github.com/benmeehan/gps-tracker/pkg/mqtt"
)

// ServiceRegistry manages the lifecycle of various services in the system.
type ServiceRegistry struct {
	services       map[string]Service // Stores registered services
	serviceKeys    []string           // Maintains order of service registration
	mqttClient     mqtt.MQTTClient
	mqttMiddleware mqtt_middleware.MQTTMiddleware
	metrics        *metrics.Metrics
	tracking       *services.TrackingService
	newProvider    func(*utils.Config) (location.Provider, error)
	Logger         zerolog.Logger
}

// NewServiceRegistry initializes a new service registry with dependencies.
func NewServiceRegistry(mqttClient mqtt.MQTTClient, m *metrics.Metrics, logger zerolog.Logger) *ServiceRegistry {
	return &ServiceRegistry{
		services:    make(map[string]Service),
		mqttClient:  mqttClient,
		metrics:     m,
		newProvider: NewProvider,
		Logger:      logger,
	}
}

// Tracking returns the tracking service, or nil when it is disabled.
func (sr *ServiceRegistry) Tracking() *services.TrackingService {
	return sr.tracking
}

// RegisterService adds a new service to the registry.
func (sr *ServiceRegistry) RegisterService(name string, svc Service) {
	if _, exists := sr.services[name]; exists {
		sr.Logger.Warn().Msgf("Service %s is already registered", name)
		return
	}
	sr.services[name] = svc
	sr.serviceKeys = append(sr.serviceKeys, name)
	sr.Logger.Info().Msgf("Registered service: %s", name)
}

// StartServices initiates all registered services in order.
// If a service fails to start, it stops already started services.
func (sr *ServiceRegistry) StartServices() error {
	startedServices := []string{}

	for _, name := range sr.serviceKeys {
		svc := sr.services[name]
		sr.Logger.Info().Msgf("Starting service: %s", name)
		if err := svc.Start(); err != nil {
			sr.Logger.Error().Err(err).Msgf("Failed to start service: %s", name)

			sr.Logger.Warn().Msg("Stopping already started services due to startup failure...")
			for i := len(startedServices) - 1; i >= 0; i-- {
				_ = sr.services[startedServices[i]].Stop()
			}
			return fmt.Errorf("failed to start %s: %w", name, err)
		}
		startedServices = append(startedServices, name)
	}

	return nil
}

// StopServices stops all services in reverse order.
func (sr *ServiceRegistry) StopServices() error {
	var stopErrors []error
	for i := len(sr.serviceKeys) - 1; i >= 0; i-- {
		name := sr.serviceKeys[i]
		if err := sr.services[name].Stop(); err != nil {
			stopErrors = append(stopErrors, fmt.Errorf("failed to stop %s: %w", name, err))
		}
	}
	if len(stopErrors) > 0 {
		for _, e := range stopErrors {
			sr.Logger.Error().Err(e).Msg("Service stop failure")
		}
		return errors.Join(stopErrors...)
	}
	return nil
}

// RegisterServices initializes and registers enabled services based on configuration.
// InitializeMiddlewares must have been called first.
func (sr *ServiceRegistry) RegisterServices(config *utils.Config) error {
	if sr.mqttMiddleware == nil {
		return errors.New("middleware chain is not initialized")
	}

	// Ordered service definitions with inline constructors
	servicesInOrder := []struct {
		name        string
		enabled     bool
		constructor func() (Service, error)
	}{
		{
			name:    "tracking",
			enabled: config.Services.Tracking.Enabled,
			constructor: func() (Service, error) {
				provider, err := sr.newProvider(config)
				if err != nil {
					sr.Logger.Error().Err(err).Str("provider", config.Services.Tracking.Provider).Msg("Failed to create location provider")
					return nil, err
				}
				sr.tracking = services.NewTrackingService(
					config.Services.Tracking.Topic,
					config.Services.Tracking.ControlTopic,
					config.Services.Tracking.QOS,
					config.Services.Tracking.PollInterval,
					config.Services.Tracking.IncludeTrack,
					config.Services.Tracking.HistoryLimit,
					config.Device.ID,
					sr.mqttMiddleware,
					provider,
					sr.metrics,
					sr.Logger.With().Str("component", "tracking").Logger(),
				)
				return sr.tracking, nil
			},
		},
		{
			name:    "heartbeat",
			enabled: config.Services.Heartbeat.Enabled,
			constructor: func() (Service, error) {
				var recorder services.SummaryReader
				if sr.tracking != nil {
					recorder = sr.tracking
				}
				logger := sr.Logger.With().Str("component", "heartbeat").Logger()
				var host services.HostReader
				if config.Services.Heartbeat.HostMetrics {
					host = metrics_collectors.NewHostMetricsRegistry(config.Services.Heartbeat.DiskPath, logger)
				}
				return services.NewHeartbeatService(
					config.Services.Heartbeat.Topic,
					config.Services.Heartbeat.Interval,
					config.Device.ID,
					config.Services.Heartbeat.QOS,
					sr.mqttMiddleware,
					recorder,
					host,
					logger,
				), nil
			},
		},
	}

	// Register services in the predefined order
	registeredServices := []string{}
	for _, svc := range servicesInOrder {
		if svc.enabled {
			serviceInstance, err := svc.constructor()
			if err != nil {
				sr.Logger.Error().Err(err).Msgf("Failed to create %s service", svc.name)
				return err
			}
			sr.RegisterService(svc.name, serviceInstance)
			registeredServices = append(registeredServices, svc.name)
		}
	}

	sr.Logger.Info().Msgf("Registered services in order: %v", registeredServices)
	return nil
}
