package api

import (
	"context"
	"net/http"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/benmeehan/gps-tracker/internal/models"
	"github.com/benmeehan/gps-tracker/pkg/track"
)

// Tracker is the part of the tracking service exposed over HTTP.
type Tracker interface {
	DeviceID() string
	StartRecording(ctx context.Context) (track.Session, error)
	StopRecording(ctx context.Context) (models.SessionRecord, error)
	Reset(ctx context.Context) (track.Session, error)
	Snapshot(ctx context.Context) (track.Session, error)
	Sessions() []models.SessionRecord
	Session(id string) (models.SessionRecord, bool)
}

// Server serves the recorder state, the session history and the metrics.
type Server struct {
	tracker  Tracker // nil when tracking is disabled
	gatherer prometheus.Gatherer
	timeout  time.Duration
	now      func() time.Time
	logger   zerolog.Logger
}

// NewServer creates a new Server instance.
func NewServer(tracker Tracker, gatherer prometheus.Gatherer, logger zerolog.Logger) *Server {
	return &Server{
		tracker:  tracker,
		gatherer: gatherer,
		timeout:  5 * time.Second,
		now:      time.Now,
		logger:   logger,
	}
}

// Routes registers every endpoint and wraps the router with Sentry and the
// security headers.
func (s *Server) Routes() http.Handler {
	router := httprouter.New()

	router.HandlerFunc(http.MethodGet, "/healthz", s.healthHandler)
	router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	if s.tracker != nil {
		router.HandlerFunc(http.MethodGet, "/v1/session", s.sessionHandler)
		router.HandlerFunc(http.MethodGet, "/v1/sessions", s.listSessionsHandler)
		router.GET("/v1/sessions/:id", s.getSessionHandler)
		router.HandlerFunc(http.MethodPost, "/v1/recording/start", s.startHandler)
		router.HandlerFunc(http.MethodPost, "/v1/recording/stop", s.stopHandler)
		router.HandlerFunc(http.MethodPost, "/v1/recording/reset", s.resetHandler)
	}

	sentryHandler := sentryhttp.New(sentryhttp.Options{
		Repanic: true,
		Timeout: 2 * time.Second,
	})
	return securityHeaders(sentryHandler.Handle(router))
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
