package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/benmeehan/gps-tracker/pkg/track"
)

// Sample results used as the "result" label of tracker_samples_total.
const (
	SampleAccepted = "accepted"
	SampleIgnored  = "ignored"
	SampleInvalid  = "invalid"
)

// Publish results used as the "result" label of tracker_mqtt_publishes_total.
const (
	PublishSucceeded = "ok"
	PublishFailed    = "error"
)

// Metrics holds the recorder collectors and the registry they are exposed from.
type Metrics struct {
	Registry *prometheus.Registry

	Samples         *prometheus.CounterVec
	Sessions        prometheus.Counter
	ProviderErrors  prometheus.Counter
	Publishes       *prometheus.CounterVec
	Recording       prometheus.Gauge
	DistanceKm      prometheus.Gauge
	ElapsedSeconds  prometheus.Gauge
	TrackPoints     prometheus.Gauge
	SegmentDistance prometheus.Histogram
}

// New creates the collectors on a fresh registry. Go runtime and process
// collectors are included so /metrics is useful on its own.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		Samples: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_samples_total",
			Help: "Location samples handed to the recorder, by result",
		}, []string{"result"}),
		Sessions: factory.NewCounter(prometheus.CounterOpts{
			Name: "tracker_sessions_total",
			Help: "Recording sessions completed with stop",
		}),
		ProviderErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "tracker_provider_errors_total",
			Help: "Failed reads from the location provider",
		}),
		Publishes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_mqtt_publishes_total",
			Help: "MQTT publishes by topic and result",
		}, []string{"topic", "result"}),
		Recording: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tracker_recording",
			Help: "Whether a session is being recorded (1 = recording, 0 = idle)",
		}),
		DistanceKm: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tracker_distance_km",
			Help: "Distance traveled in the current session",
		}),
		ElapsedSeconds: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tracker_elapsed_seconds",
			Help: "Elapsed time of the current session",
		}),
		TrackPoints: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tracker_track_points",
			Help: "Points in the current track",
		}),
		SegmentDistance: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tracker_segment_distance_meters",
			Help:    "Distance between consecutive accepted samples",
			Buckets: []float64{0.5, 1, 2, 5, 10, 25, 50, 100, 250, 1000},
		}),
	}
}

// ObserveSession updates the session gauges from s.
func (m *Metrics) ObserveSession(s track.Session) {
	if s.State == track.Recording {
		m.Recording.Set(1)
	} else {
		m.Recording.Set(0)
	}
	m.DistanceKm.Set(s.DistanceKm)
	m.ElapsedSeconds.Set(float64(s.ElapsedSeconds))
	m.TrackPoints.Set(float64(s.PointCount))
}
