package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/benmeehan/gps-tracker/internal/api"
	"github.com/benmeehan/gps-tracker/internal/constants"
	"github.com/benmeehan/gps-tracker/internal/metrics"
	"github.com/benmeehan/gps-tracker/internal/report"
	"github.com/benmeehan/gps-tracker/internal/service_registry"
	"github.com/benmeehan/gps-tracker/internal/utils"
	"github.com/benmeehan/gps-tracker/pkg/file"
	"github.com/benmeehan/gps-tracker/pkg/mqtt"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	configFile := flag.String("config", constants.DefaultConfigFile, "path to the YAML configuration file")
	flag.Parse()

	// Set up structured logging with JSON output
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "gps-tracker").Logger()

	fileClient := file.NewFileService()

	// Load configuration from file
	config, err := utils.LoadConfig(*configFile, fileClient)
	if err != nil {
		logger.Fatal().Err(err).Str("file", *configFile).Msg("Failed to load configuration")
	}

	level, _ := zerolog.ParseLevel(config.Log.Level)
	logger = logger.Level(level)

	if err := report.SetupSentry(config.Sentry.DSN, config.Sentry.Environment, version); err != nil {
		logger.Error().Err(err).Msg("Sentry disabled")
	}
	defer report.FlushSentry()
	report.ConfigureScope(config.Device.ID, version)

	// Generate a unique MQTT Client ID by appending a UUID
	clientID := config.UniqueClientID()
	logger.Info().Str("client_id", clientID).Str("device_id", config.Device.ID).Msg("Using MQTT client")

	// Initialize the shared MQTT connection
	mqttClient := mqtt.NewMqttService(fileClient, logger)
	err = mqttClient.Initialize(mqtt.ConnectionOptions{
		Broker:        config.MQTT.Broker,
		ClientID:      clientID,
		CACertificate: config.MQTT.CACertificate,
		Username:      config.MQTT.Username,
		Password:      config.MQTT.Password,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize MQTT connection")
	}

	m := metrics.New()

	// Create a new service registry to manage services
	serviceRegistry := service_registry.NewServiceRegistry(mqttClient, m, logger)

	if _, err := serviceRegistry.InitializeMiddlewares(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize MQTT middlewares")
	}

	// Register all services based on the configuration
	if err := serviceRegistry.RegisterServices(config); err != nil {
		logger.Fatal().Err(err).Msg("Failed to register services")
	}

	// Start all registered services in the registry
	if err := serviceRegistry.StartServices(); err != nil {
		mqttClient.Disconnect(constants.DefaultDisconnectQuiesce)
		logger.Fatal().Err(err).Msg("Failed to start services")
	}
	logger.Info().Msg("All services started successfully")

	var server *http.Server
	if config.HTTP.Enabled {
		var tracker api.Tracker
		if tracking := serviceRegistry.Tracking(); tracking != nil {
			tracker = tracking
		}
		server = &http.Server{
			Addr:              config.HTTP.Address,
			Handler:           api.NewServer(tracker, m.Registry, logger).Routes(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info().Str("address", server.Addr).Msg("HTTP server listening")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("HTTP server failed")
				report.ReportError(err)
			}
		}()
	}

	// Handle graceful shutdown
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	logger.Info().Msg("Shutting down gracefully...")
	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := server.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("HTTP server shutdown failed")
		}
		cancel()
	}
	if err := serviceRegistry.StopServices(); err != nil {
		logger.Error().Err(err).Msg("Some services failed to stop")
	}
	mqttClient.Disconnect(constants.DefaultDisconnectQuiesce)
}
