package service_registry

import (
	"fmt"

	mqtt_middleware "github.com/benmeehan/gps-tracker/internal/middlewares/mqtt"
)

// MetricsMiddleware is the name of the publish counting middleware.
const MetricsMiddleware = "metrics"

// InitializeMiddlewares sets up the middleware chain in front of the MQTT client.
func (sr *ServiceRegistry) InitializeMiddlewares() (mqtt_middleware.MQTTMiddleware, error) {
	var middlewares []mqtt_middleware.MQTTMiddleware

	// Ordered middleware definitions
	middlewaresInOrder := []struct {
		name        string
		constructor func() (mqtt_middleware.MQTTMiddleware, error)
	}{
		{
			name: MetricsMiddleware,
			constructor: func() (mqtt_middleware.MQTTMiddleware, error) {
				return mqtt_middleware.NewMQTTMetricsMiddleware(sr.metrics, sr.Logger), nil
			},
		},
	}

	for _, mw := range middlewaresInOrder {
		middlewareInstance, err := mw.constructor()
		if err != nil {
			sr.Logger.Error().Err(err).Msgf("Failed to initialize %s middleware", mw.name)
			return nil, fmt.Errorf("failed to initialize %s middleware: %w", mw.name, err)
		}
		middlewares = append(middlewares, middlewareInstance)
		sr.Logger.Info().Str("middleware", mw.name).Msg("Middleware initialized")
	}

	chainedClient := mqtt_middleware.NewChainedMQTTClient(sr.mqttClient, middlewares)
	if err := chainedClient.Init(nil); err != nil {
		return nil, err
	}
	sr.mqttMiddleware = chainedClient
	sr.Logger.Info().Int("middleware_count", len(middlewares)).Msg("Middleware chain initialized")
	return chainedClient, nil
}
