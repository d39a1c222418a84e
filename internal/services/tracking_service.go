package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	mqttLib "github.com/eclipse/paho.mqtt.golang"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/rs/zerolog"

	"github.com/benmeehan/gps-tracker/internal/constants"
	"github.com/benmeehan/gps-tracker/internal/metrics"
	mqtt_middleware "github.com/benmeehan/gps-tracker/internal/middlewares/mqtt"
	"github.com/benmeehan/gps-tracker/internal/models"
	"github.com/benmeehan/gps-tracker/internal/report"
	"github.com/benmeehan/gps-tracker/internal/utils"
	"github.com/benmeehan/gps-tracker/pkg/geo"
	"github.com/benmeehan/gps-tracker/pkg/location"
	"github.com/benmeehan/gps-tracker/pkg/track"
)

var (
	// ErrNoFix is returned when recording is requested before any sample arrived.
	ErrNoFix = errors.New("no location fix available yet")
	// ErrPermissionDenied is returned by Start when the provider reports no access.
	ErrPermissionDenied = errors.New("location permission denied")
	// ErrServiceNotRunning is returned by requests made while the service is stopped.
	ErrServiceNotRunning = errors.New("tracking service is not running")
)

const (
	sampleBufferSize = 16
	publishQueueSize = 64
	controlTimeout   = 5 * time.Second
)

// Actions understood by the recorder loop in addition to the control actions.
const (
	actionSnapshot = "snapshot"
	actionSummary  = "summary"
)

type request struct {
	action string
	reply  chan response
}

type response struct {
	session track.Session
	record  models.SessionRecord
	err     error
}

type historyEntry struct {
	seq    uint64
	record models.SessionRecord
}

// TrackingService feeds location samples into a track recorder and publishes
// its state. The recorder is only ever touched by the service's loop goroutine.
type TrackingService struct {
	// Configuration fields
	pubTopic     string
	controlTopic string
	qos          int
	pollInterval time.Duration
	includeTrack bool
	historyLimit int
	deviceID     string

	// Dependencies
	mqttMiddleware mqtt_middleware.MQTTMiddleware
	provider       location.Provider
	metrics        *metrics.Metrics
	logger         zerolog.Logger
	now            func() time.Time

	// Owned by the recorder loop
	recorder *track.Recorder
	lastFix  *geo.Sample
	order    []string
	seq      uint64

	history cmap.ConcurrentMap[string, historyEntry]

	// Internal state management
	lifecycle sync.Mutex // serializes Start and Stop
	cancel    context.CancelFunc
	publisher *utils.WorkerPool
	wg        sync.WaitGroup

	mu       sync.Mutex // guards requests and done
	requests chan request
	done     chan struct{}
}

// NewTrackingService creates a new TrackingService instance with the provided configuration.
func NewTrackingService(pubTopic, controlTopic string, qos int, pollInterval time.Duration, includeTrack bool,
	historyLimit int, deviceID string, mqttMiddleware mqtt_middleware.MQTTMiddleware, provider location.Provider,
	m *metrics.Metrics, logger zerolog.Logger) *TrackingService {
	if pollInterval <= 0 {
		pollInterval = constants.DefaultPollInterval
	}
	if historyLimit <= 0 {
		historyLimit = constants.DefaultHistoryLimit
	}
	return &TrackingService{
		pubTopic:       pubTopic,
		controlTopic:   controlTopic,
		qos:            qos,
		pollInterval:   pollInterval,
		includeTrack:   includeTrack,
		historyLimit:   historyLimit,
		deviceID:       deviceID,
		mqttMiddleware: mqttMiddleware,
		provider:       provider,
		metrics:        m,
		logger:         logger,
		now:            time.Now,
		recorder:       track.NewRecorder(),
		history:        cmap.New[historyEntry](),
	}
}

// DeviceID returns the device the service publishes for.
func (t *TrackingService) DeviceID() string {
	return t.deviceID
}

func (t *TrackingService) snapshotTopic() string {
	return t.pubTopic + "/" + t.deviceID
}

func (t *TrackingService) sessionsTopic() string {
	return t.snapshotTopic() + "/" + constants.SessionsTopicSuffix
}

func (t *TrackingService) commandTopic() string {
	return t.controlTopic + "/" + t.deviceID
}

func (t *TrackingService) responseTopic() string {
	return t.commandTopic() + "/" + constants.ResponseTopicSuffix
}

// Start checks the provider permission, subscribes to the control topic and
// launches the feed and recorder goroutines.
func (t *TrackingService) Start() error {
	t.lifecycle.Lock()
	defer t.lifecycle.Unlock()

	if t.cancel != nil {
		t.logger.Warn().Msg("TrackingService is already running")
		return errors.New("tracking service is already running")
	}

	ctx, cancel := context.WithCancel(context.Background())

	permission, err := t.provider.CheckPermission(ctx)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to check location permission: %w", err)
	}
	if permission != location.PermissionGranted {
		cancel()
		t.logger.Error().Str("permission", permission.String()).Msg("Location source refused access")
		return ErrPermissionDenied
	}

	if err := t.mqttMiddleware.Subscribe(t.commandTopic(), byte(t.qos), t.handleControlMessage); err != nil {
		cancel()
		return fmt.Errorf("failed to subscribe to control topic: %w", err)
	}

	samples := make(chan geo.Sample, sampleBufferSize)
	requests := make(chan request)
	done := make(chan struct{})
	t.publisher = utils.NewWorkerPool(1, publishQueueSize)
	t.cancel = cancel

	t.wg.Add(2)
	go t.runFeed(ctx, samples)
	go t.runRecorder(ctx, samples, requests, done)

	t.mu.Lock()
	t.requests, t.done = requests, done
	t.mu.Unlock()

	t.logger.Info().
		Str("topic", t.snapshotTopic()).
		Str("control_topic", t.commandTopic()).
		Dur("poll_interval", t.pollInterval).
		Int("qos", t.qos).
		Msg("TrackingService started")
	return nil
}

// Stop discards any session in progress and stops the service.
func (t *TrackingService) Stop() error {
	t.lifecycle.Lock()
	defer t.lifecycle.Unlock()

	if t.cancel == nil {
		t.logger.Warn().Msg("TrackingService is not running")
		return ErrServiceNotRunning
	}

	t.mu.Lock()
	t.requests, t.done = nil, nil
	t.mu.Unlock()

	var errs []error
	if err := t.mqttMiddleware.Unsubscribe(t.commandTopic()); err != nil {
		errs = append(errs, fmt.Errorf("failed to unsubscribe from control topic: %w", err))
	}

	// Closing the provider unblocks a read in progress.
	t.cancel()
	if err := t.provider.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close location provider: %w", err))
	}
	t.wg.Wait()
	t.publisher.Shutdown()
	t.cancel, t.publisher = nil, nil

	if err := errors.Join(errs...); err != nil {
		t.logger.Error().Err(err).Msg("TrackingService stopped with errors")
		return err
	}
	t.logger.Info().Msg("TrackingService stopped")
	return nil
}

// runFeed polls the provider and forwards every location to the recorder loop.
func (t *TrackingService) runFeed(ctx context.Context, samples chan<- geo.Sample) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return
		}
		loc, err := t.provider.GetLocation(ctx)
		switch {
		case ctx.Err() != nil:
			return
		case errors.Is(err, io.EOF):
			t.logger.Info().Msg("Location feed ended")
			return
		case err != nil:
			t.metrics.ProviderErrors.Inc()
			t.logger.Error().Err(err).Msg("Failed to get location from provider")
			report.ReportErrorWithSentryOptions(err, report.SentryReportOptions{
				Tags:  map[string]string{"component": "tracking", "device_id": t.deviceID},
				Level: sentry.LevelWarning,
			})
		default:
			select {
			case samples <- loc.Sample():
			case <-ctx.Done():
				return
			}
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

// runRecorder is the only goroutine that reads or writes the recorder.
func (t *TrackingService) runRecorder(ctx context.Context, samples <-chan geo.Sample, requests <-chan request, done chan struct{}) {
	defer t.wg.Done()
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			wasRecording := t.recorder.State() == track.Recording
			t.recorder.Reset()
			t.lastFix = nil
			if wasRecording {
				t.logger.Warn().Msg("Discarding recording in progress")
				t.publishSnapshot()
			} else {
				t.metrics.ObserveSession(t.recorder.Summary())
			}
			return
		case s := <-samples:
			t.ingest(s)
		case req := <-requests:
			req.reply <- t.handle(req.action)
		}
	}
}

func (t *TrackingService) ingest(s geo.Sample) {
	if s.Point.IsFinite() {
		fix := s
		t.lastFix = &fix
	}

	state := t.recorder.State()
	prev, hasPrev := t.recorder.Summary().Current()

	if err := t.recorder.Ingest(s); err != nil {
		t.metrics.Samples.WithLabelValues(metrics.SampleInvalid).Inc()
		t.logger.Warn().Err(err).Msg("Rejected location sample")
		return
	}
	if state != track.Recording {
		t.metrics.Samples.WithLabelValues(metrics.SampleIgnored).Inc()
		return
	}

	t.metrics.Samples.WithLabelValues(metrics.SampleAccepted).Inc()
	if hasPrev {
		t.metrics.SegmentDistance.Observe(geo.DistanceMeters(prev, s.Point))
	}
	t.publishSnapshot()
}

func (t *TrackingService) handle(action string) response {
	switch action {
	case constants.ActionStart:
		if t.lastFix == nil {
			return response{err: ErrNoFix}
		}
		if err := t.recorder.Start(*t.lastFix); err != nil {
			return response{err: err}
		}
		t.logger.Info().Int64("start_time_ms", t.lastFix.TimestampMillis).Msg("Recording started")
		t.publishSnapshot()
		return response{session: t.recorder.Snapshot()}

	case constants.ActionStop:
		final, err := t.recorder.Stop()
		if err != nil {
			return response{err: err}
		}
		record := models.NewSessionRecord(uuid.New().String(), t.deviceID, final, t.now().UTC())
		t.remember(record)
		t.metrics.Sessions.Inc()
		t.logger.Info().
			Str("session_id", record.ID).
			Float64("distance_km", record.DistanceKm).
			Str("elapsed", record.Elapsed).
			Int("points", record.PointCount).
			Msg("Recording stopped")

		t.publishSnapshot()
		if t.includeTrack {
			t.publish(t.sessionsTopic(), record)
		} else {
			t.publish(t.sessionsTopic(), record.WithoutTrack())
		}
		return response{session: final, record: record}

	case constants.ActionReset:
		t.recorder.Reset()
		t.logger.Info().Msg("Recording reset")
		t.publishSnapshot()
		return response{session: t.recorder.Snapshot()}

	case actionSnapshot:
		return response{session: t.recorder.Snapshot()}

	case actionSummary:
		return response{session: t.recorder.Summary()}

	default:
		return response{err: fmt.Errorf("unknown action %q", action)}
	}
}

// remember stores a completed session, evicting the oldest beyond the limit.
func (t *TrackingService) remember(record models.SessionRecord) {
	t.seq++
	t.history.Set(record.ID, historyEntry{seq: t.seq, record: record})
	t.order = append(t.order, record.ID)
	for len(t.order) > t.historyLimit {
		t.history.Remove(t.order[0])
		t.order = t.order[1:]
	}
}

func (t *TrackingService) publishSnapshot() {
	var session track.Session
	if t.includeTrack {
		session = t.recorder.Snapshot()
	} else {
		session = t.recorder.Summary()
	}
	t.metrics.ObserveSession(session)
	t.publish(t.snapshotTopic(), models.NewTrackSnapshot(t.deviceID, session, t.now().UTC()))
}

// publish serializes v now and hands the MQTT publish to the worker pool.
func (t *TrackingService) publish(topic string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		t.logger.Error().Err(err).Str("topic", topic).Msg("Failed to serialize message")
		return
	}

	submitted := t.publisher.Submit(func() {
		if err := t.mqttMiddleware.Publish(topic, byte(t.qos), false, payload); err != nil {
			t.logger.Error().Err(err).Str("topic", topic).Msg("Failed to publish message")
			report.ReportErrorWithSentryOptions(err, report.SentryReportOptions{
				Tags: map[string]string{"component": "tracking", "topic": topic},
			})
		}
	})
	if !submitted {
		t.logger.Debug().Str("topic", topic).Msg("Publisher stopped, message dropped")
	}
}

// do hands an action to the recorder loop and waits for its reply.
func (t *TrackingService) do(ctx context.Context, action string) (response, error) {
	t.mu.Lock()
	requests, done := t.requests, t.done
	t.mu.Unlock()

	if done == nil {
		return response{}, ErrServiceNotRunning
	}

	reply := make(chan response, 1)
	select {
	case requests <- request{action: action, reply: reply}:
	case <-done:
		return response{}, ErrServiceNotRunning
	case <-ctx.Done():
		return response{}, ctx.Err()
	}

	select {
	case resp := <-reply:
		return resp, resp.err
	case <-ctx.Done():
		return response{}, ctx.Err()
	}
}

// StartRecording begins a session at the most recent fix.
func (t *TrackingService) StartRecording(ctx context.Context) (track.Session, error) {
	resp, err := t.do(ctx, constants.ActionStart)
	return resp.session, err
}

// StopRecording ends the session and returns its history record.
func (t *TrackingService) StopRecording(ctx context.Context) (models.SessionRecord, error) {
	resp, err := t.do(ctx, constants.ActionStop)
	return resp.record, err
}

// Reset discards the session in progress, if any.
func (t *TrackingService) Reset(ctx context.Context) (track.Session, error) {
	resp, err := t.do(ctx, constants.ActionReset)
	return resp.session, err
}

// Snapshot returns the current session including its track.
func (t *TrackingService) Snapshot(ctx context.Context) (track.Session, error) {
	resp, err := t.do(ctx, actionSnapshot)
	return resp.session, err
}

// Summary returns the current session without its track.
func (t *TrackingService) Summary(ctx context.Context) (track.Session, error) {
	resp, err := t.do(ctx, actionSummary)
	return resp.session, err
}

// Sessions returns the completed sessions, newest first.
func (t *TrackingService) Sessions() []models.SessionRecord {
	entries := make([]historyEntry, 0, t.history.Count())
	for _, entry := range t.history.Items() {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq > entries[j].seq })

	records := make([]models.SessionRecord, len(entries))
	for i, entry := range entries {
		records[i] = entry.record
	}
	return records
}

// Session returns one completed session by ID.
func (t *TrackingService) Session(id string) (models.SessionRecord, bool) {
	entry, ok := t.history.Get(id)
	return entry.record, ok
}

// handleControlMessage applies a command received on the control topic and
// publishes the outcome on the response topic.
func (t *TrackingService) handleControlMessage(_ mqttLib.Client, msg mqttLib.Message) {
	var cmd models.ControlCommand
	if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
		t.logger.Error().Err(err).Str("topic", msg.Topic()).Msg("Failed to parse control command")
		return
	}
	t.logger.Info().Str("action", cmd.Action).Str("request_id", cmd.RequestID).Msg("Received control command")

	ctx, cancel := context.WithTimeout(context.Background(), controlTimeout)
	defer cancel()

	resp := models.ControlResponse{
		RequestID: cmd.RequestID,
		DeviceID:  t.deviceID,
		Action:    cmd.Action,
		Status:    constants.ResponseSuccess,
	}

	var err error
	switch cmd.Action {
	case constants.ActionStart, constants.ActionReset:
		var session track.Session
		if cmd.Action == constants.ActionStart {
			session, err = t.StartRecording(ctx)
		} else {
			session, err = t.Reset(ctx)
		}
		if err == nil {
			snapshot := models.NewTrackSnapshot(t.deviceID, session, t.now().UTC())
			snapshot.Track = nil
			resp.Snapshot = &snapshot
		}
	case constants.ActionStop:
		var record models.SessionRecord
		record, err = t.StopRecording(ctx)
		if err == nil {
			record = record.WithoutTrack()
			resp.Session = &record
		}
	default:
		err = fmt.Errorf("unknown action %q", cmd.Action)
	}

	if err != nil {
		resp.Status = constants.ResponseFailed
		resp.Error = err.Error()
		t.logger.Warn().Err(err).Str("action", cmd.Action).Msg("Control command failed")
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		t.logger.Error().Err(err).Msg("Failed to serialize control response")
		return
	}
	if err := t.mqttMiddleware.Publish(t.responseTopic(), byte(t.qos), false, payload); err != nil {
		t.logger.Error().Err(err).Str("topic", t.responseTopic()).Msg("Failed to publish control response")
	}
}
