package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/benmeehan/gps-tracker/internal/constants"
	mqtt_middleware "github.com/benmeehan/gps-tracker/internal/middlewares/mqtt"
	"github.com/benmeehan/gps-tracker/internal/models"
	"github.com/benmeehan/gps-tracker/pkg/track"
)

// SummaryReader provides the recording summary carried by each heartbeat.
type SummaryReader interface {
	Summary(ctx context.Context) (track.Session, error)
}

// HostReader provides the host health values carried by each heartbeat.
type HostReader interface {
	Collect(ctx context.Context) map[string]float64
}

// HeartbeatService manages periodic heartbeat messages.
type HeartbeatService struct {
	PubTopic       string
	Interval       time.Duration
	DeviceID       string
	QOS            int
	MqttMiddleware mqtt_middleware.MQTTMiddleware
	Recorder       SummaryReader // optional
	Host           HostReader    // optional
	Logger         zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewHeartbeatService initializes a new HeartbeatService.
func NewHeartbeatService(pubTopic string, interval time.Duration, deviceID string, qos int,
	mqttMiddleware mqtt_middleware.MQTTMiddleware, recorder SummaryReader, host HostReader, logger zerolog.Logger) *HeartbeatService {

	return &HeartbeatService{
		PubTopic:       pubTopic,
		Interval:       interval,
		DeviceID:       deviceID,
		QOS:            qos,
		MqttMiddleware: mqttMiddleware,
		Recorder:       recorder,
		Host:           host,
		Logger:         logger,
	}
}

// Start launches the heartbeat loop in a separate goroutine.
func (h *HeartbeatService) Start() error {
	if h.ctx != nil {
		h.Logger.Warn().Msg("HeartbeatService is already running")
		return errors.New("heartbeat service is already running")
	}
	if h.Interval <= 0 {
		return errors.New("heartbeat interval must be positive")
	}

	h.ctx, h.cancel = context.WithCancel(context.Background())

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.runHeartbeatLoop()
	}()

	h.Logger.Info().Str("topic", h.PubTopic).Dur("interval", h.Interval).Msg("HeartbeatService started successfully")
	return nil
}

// Stop gracefully stops the heartbeat service.
func (h *HeartbeatService) Stop() error {
	if h.ctx == nil {
		h.Logger.Warn().Msg("HeartbeatService is not running")
		return errors.New("heartbeat service is not running")
	}

	h.cancel()
	h.wg.Wait()

	h.ctx = nil
	h.cancel = nil

	h.Logger.Info().Msg("HeartbeatService stopped successfully")
	return nil
}

// runHeartbeatLoop continuously sends heartbeat messages at the specified interval.
func (h *HeartbeatService) runHeartbeatLoop() {
	ticker := time.NewTicker(h.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := h.publishHeartbeat(); err != nil {
				h.Logger.Error().Err(err).Msg("Failed to publish heartbeat message")
			} else {
				h.Logger.Debug().Msg("Heartbeat published successfully")
			}

		case <-h.ctx.Done():
			h.Logger.Info().Msg("HeartbeatService stopping gracefully")
			return
		}
	}
}

// buildHeartbeat reads the recorder summary and the host values. A stopped
// tracking service yields an idle heartbeat.
func (h *HeartbeatService) buildHeartbeat() models.Heartbeat {
	heartbeat := models.Heartbeat{
		DeviceID:  h.DeviceID,
		Timestamp: time.Now().UTC(),
		Status:    constants.StatusAlive,
		State:     track.Idle.String(),
		Elapsed:   track.FormatElapsed(0),
	}

	ctx, cancel := context.WithTimeout(h.ctx, h.Interval)
	defer cancel()

	if h.Host != nil {
		heartbeat.Host = h.Host.Collect(ctx)
	}
	if h.Recorder == nil {
		return heartbeat
	}

	summary, err := h.Recorder.Summary(ctx)
	if err != nil {
		h.Logger.Debug().Err(err).Msg("Recording summary unavailable")
		return heartbeat
	}
	heartbeat.State = summary.State.String()
	heartbeat.Elapsed = summary.Elapsed()
	heartbeat.DistanceKm = summary.DistanceKm
	heartbeat.PointCount = summary.PointCount
	return heartbeat
}

func (h *HeartbeatService) publishHeartbeat() error {
	payload, err := json.Marshal(h.buildHeartbeat())
	if err != nil {
		return err
	}
	return h.MqttMiddleware.Publish(h.PubTopic, byte(h.QOS), false, payload)
}
