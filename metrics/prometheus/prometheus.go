package prometheusmetrics

import (
	"strconv"
	"time"

	"github.com/prebid/prebid-rtb-gateway/config"
	"github.com/prebid/prebid-rtb-gateway/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the Prometheus implementation of MetricsEngine.
type Metrics struct {
	Registerer prometheus.Registerer
	Gatherer   *prometheus.Registry

	connectionsClosed prometheus.Counter
	connectionsOpened prometheus.Counter

	parses        *prometheus.CounterVec
	parseTimer    *prometheus.HistogramVec
	diagnostics   *prometheus.CounterVec
	responses     *prometheus.CounterVec
	registryLoads *prometheus.CounterVec
}

const (
	codeLabel    = "code"
	outcomeLabel = "outcome"
	sourceLabel  = "source"
	statusLabel  = "status"
	successLabel = "success"
)

// NewMetrics initializes a new Prometheus metrics instance with its own registry.
func NewMetrics(cfg config.PrometheusMetrics) *Metrics {
	// parses are expected to finish within a few milliseconds
	parseTimeBuckets := []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05}

	registry := prometheus.NewRegistry()
	m := &Metrics{
		Registerer: registry,
		Gatherer:   registry,
	}

	m.connectionsClosed = newCounterWithoutLabels(cfg, registry,
		"connections_closed",
		"Count of successful connections closed to the gateway.")

	m.connectionsOpened = newCounterWithoutLabels(cfg, registry,
		"connections_opened",
		"Count of successful connections opened to the gateway.")

	m.parses = newCounter(cfg, registry,
		"bid_request_parses",
		"Count of bid request parses labeled by source and outcome.",
		[]string{sourceLabel, outcomeLabel})

	m.parseTimer = newHistogramVec(cfg, registry,
		"bid_request_parse_time_seconds",
		"Seconds to parse and normalize a bid request labeled by source.",
		[]string{sourceLabel},
		parseTimeBuckets)

	m.diagnostics = newCounter(cfg, registry,
		"bid_request_diagnostics",
		"Count of errors and warnings raised while parsing bid requests labeled by source and error code.",
		[]string{sourceLabel, codeLabel})

	m.responses = newCounter(cfg, registry,
		"responses",
		"Count of responses sent to exchanges labeled by source and status.",
		[]string{sourceLabel, statusLabel})

	m.registryLoads = newCounter(cfg, registry,
		"parser_registry_loads",
		"Count of attempts to build the parser of an unregistered source labeled by success.",
		[]string{successLabel})

	preloadLabelValues(m)
	return m
}

func newCounter(cfg config.PrometheusMetrics, registry *prometheus.Registry, name, help string, labels []string) *prometheus.CounterVec {
	opts := prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      name,
		Help:      help,
	}
	counter := prometheus.NewCounterVec(opts, labels)
	registry.MustRegister(counter)
	return counter
}

func newCounterWithoutLabels(cfg config.PrometheusMetrics, registry *prometheus.Registry, name, help string) prometheus.Counter {
	opts := prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      name,
		Help:      help,
	}
	counter := prometheus.NewCounter(opts)
	registry.MustRegister(counter)
	return counter
}

func newHistogramVec(cfg config.PrometheusMetrics, registry *prometheus.Registry, name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	opts := prometheus.HistogramOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}
	histogram := prometheus.NewHistogramVec(opts, labels)
	registry.MustRegister(histogram)
	return histogram
}

func (m *Metrics) RecordNewConnection() {
	m.connectionsOpened.Inc()
}

func (m *Metrics) RecordClosedConnection() {
	m.connectionsClosed.Inc()
}

func (m *Metrics) RecordParse(source string, outcome metrics.ParseOutcome, duration time.Duration) {
	m.parses.With(prometheus.Labels{
		sourceLabel:  source,
		outcomeLabel: string(outcome),
	}).Inc()
	m.parseTimer.With(prometheus.Labels{
		sourceLabel: source,
	}).Observe(duration.Seconds())
}

func (m *Metrics) RecordDiagnostic(source string, code int) {
	m.diagnostics.With(prometheus.Labels{
		sourceLabel: source,
		codeLabel:   strconv.Itoa(code),
	}).Inc()
}

func (m *Metrics) RecordResponse(source string, status metrics.ResponseStatus) {
	m.responses.With(prometheus.Labels{
		sourceLabel: source,
		statusLabel: string(status),
	}).Inc()
}

func (m *Metrics) RecordRegistryLoad(source string, success bool) {
	m.registryLoads.With(prometheus.Labels{
		successLabel: strconv.FormatBool(success),
	}).Inc()
}
