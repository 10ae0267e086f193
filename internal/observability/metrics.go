package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// MetricsConfig configures compile metrics.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Namespace string `yaml:"namespace" json:"namespace"`
	// Textfile, when set, is where the registry is written after a run in the
	// node-exporter textfile format.
	Textfile string `yaml:"textfile" json:"textfile"`
	EnableGo bool   `yaml:"enable_go" json:"enable_go"`
}

// Recorder receives compile run measurements.
type Recorder interface {
	RunFinished(outcome string, duration time.Duration)
	ObservePhase(phase string, duration time.Duration)
	ComponentCompiled(status string, bindings int)
	ProblemReported(code, severity string)
}

// Metrics records compile measurements in a Prometheus registry.
type Metrics struct {
	registry *prometheus.Registry

	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
	phaseDuration *prometheus.HistogramVec
	components    *prometheus.CounterVec
	bindings      prometheus.Histogram
	problems      *prometheus.CounterVec
}

// NewRecorder returns a Prometheus-backed recorder, or a no-op one when
// metrics are disabled.
func NewRecorder(config MetricsConfig) Recorder {
	if !config.Enabled {
		return NoopRecorder{}
	}
	return NewMetrics(config)
}

// NewMetrics creates a metrics instance with its own registry.
func NewMetrics(config MetricsConfig) *Metrics {
	ns := config.Namespace
	if ns == "" {
		ns = "kiln"
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "compile_runs_total",
			Help:      "Compile runs by outcome.",
		}, []string{"outcome"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "compile_run_duration_seconds",
			Help:      "Wall time of a compile run.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}),
		phaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "compile_phase_duration_seconds",
			Help:      "Time spent per compile phase.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"phase"}),
		components: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "components_total",
			Help:      "Compiled components by status.",
		}, []string{"status"}),
		bindings: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "component_bindings",
			Help:      "Resolved bindings owned per component.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		problems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "problems_total",
			Help:      "Reported problems by code and severity.",
		}, []string{"code", "severity"}),
	}

	m.registry.MustRegister(m.runs, m.runDuration, m.phaseDuration, m.components, m.bindings, m.problems)
	if config.EnableGo {
		m.registry.MustRegister(collectors.NewGoCollector())
	}
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the registry to path atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) RunFinished(outcome string, duration time.Duration) {
	m.runs.WithLabelValues(outcome).Inc()
	m.runDuration.Observe(duration.Seconds())
}

func (m *Metrics) ObservePhase(phase string, duration time.Duration) {
	m.phaseDuration.WithLabelValues(phase).Observe(duration.Seconds())
}

func (m *Metrics) ComponentCompiled(status string, bindings int) {
	m.components.WithLabelValues(status).Inc()
	m.bindings.Observe(float64(bindings))
}

func (m *Metrics) ProblemReported(code, severity string) {
	m.problems.WithLabelValues(code, severity).Inc()
}

// NoopRecorder discards every measurement.
type NoopRecorder struct{}

func (NoopRecorder) RunFinished(string, time.Duration)  {}
func (NoopRecorder) ObservePhase(string, time.Duration) {}
func (NoopRecorder) ComponentCompiled(string, int)      {}
func (NoopRecorder) ProblemReported(string, string)     {}
