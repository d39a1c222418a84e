package metrics_collectors

import (
	"context"

	"github.com/rs/zerolog"
)

// MetricCollector reads one host health value.
type MetricCollector interface {
	// Name is the key of the value in the heartbeat (e.g. "cpu_percent").
	Name() string
	Collect(ctx context.Context) (float64, error)
}

// MetricsRegistry keeps collectors in registration order.
type MetricsRegistry struct {
	collectors []MetricCollector
	logger     zerolog.Logger
}

// NewMetricsRegistry creates an empty MetricsRegistry instance.
func NewMetricsRegistry(logger zerolog.Logger) *MetricsRegistry {
	return &MetricsRegistry{logger: logger}
}

// NewHostMetricsRegistry registers the CPU, memory and disk collectors.
func NewHostMetricsRegistry(diskPath string, logger zerolog.Logger) *MetricsRegistry {
	r := NewMetricsRegistry(logger)
	r.Register(&CPUMetricCollector{})
	r.Register(&MemoryMetricCollector{})
	r.Register(&DiskMetricCollector{Path: diskPath})
	return r
}

// Register adds a collector. A collector with the same name replaces the old one.
func (r *MetricsRegistry) Register(collector MetricCollector) {
	for i, c := range r.collectors {
		if c.Name() == collector.Name() {
			r.collectors[i] = collector
			return
		}
	}
	r.collectors = append(r.collectors, collector)
}

// Collect runs every collector. Failing collectors are logged and left out.
func (r *MetricsRegistry) Collect(ctx context.Context) map[string]float64 {
	values := make(map[string]float64, len(r.collectors))
	for _, c := range r.collectors {
		v, err := c.Collect(ctx)
		if err != nil {
			r.logger.Warn().Err(err).Str("collector", c.Name()).Msg("Failed to collect host metric")
			continue
		}
		values[c.Name()] = v
	}
	return values
}
