package config

import (
	"time"

	"github.com/golang/glog"
	"github.com/prebid/prebid-rtb-gateway/config"
	"github.com/prebid/prebid-rtb-gateway/metrics"
	prometheusmetrics "github.com/prebid/prebid-rtb-gateway/metrics/prometheus"
	gometrics "github.com/rcrowley/go-metrics"
	influxdb "github.com/vrischmann/go-metrics-influxdb"
)

// NewMetricsEngine reads the configuration and returns the appropriate metrics engine
// for this instance.
func NewMetricsEngine(cfg *config.Configuration, sources []string) *DetailedMetricsEngine {
	// Create a list of metrics engines to use.
	// Capacity of 2, as unlikely to have more than 2 metrics backends, and in the case
	// of 1 we won't use the list so it will be garbage collected.
	engineList := make(MultiMetricsEngine, 0, 2)
	returnEngine := DetailedMetricsEngine{}

	if cfg.Metrics.Influxdb.Host != "" {
		// Currently use go-metrics as the metrics piece for influx
		returnEngine.GoMetrics = metrics.NewMetrics(gometrics.NewPrefixedRegistry("rtbgateway."), sources)
		engineList = append(engineList, returnEngine.GoMetrics)
		// Set up the Influx logger
		go influxdb.InfluxDB(
			returnEngine.GoMetrics.MetricsRegistry,                             // metrics registry
			time.Second*time.Duration(cfg.Metrics.Influxdb.MetricSendInterval), // Configurable interval
			cfg.Metrics.Influxdb.Host,                                          // the InfluxDB url
			cfg.Metrics.Influxdb.Database,                                      // your InfluxDB database
			cfg.Metrics.Influxdb.Username,                                      // your InfluxDB user
			cfg.Metrics.Influxdb.Password,                                      // your InfluxDB password
		)
		glog.Infof("Reporting metrics to InfluxDB at %s every %ds", cfg.Metrics.Influxdb.Host, cfg.Metrics.Influxdb.MetricSendInterval)
	}
	if cfg.Metrics.Prometheus.Port != 0 {
		// Set up the Prometheus metrics.
		returnEngine.PrometheusMetrics = prometheusmetrics.NewMetrics(cfg.Metrics.Prometheus)
		engineList = append(engineList, returnEngine.PrometheusMetrics)
	}

	// Now return the proper metrics engine
	if len(engineList) > 1 {
		returnEngine.MetricsEngine = &engineList
	} else if len(engineList) == 1 {
		returnEngine.MetricsEngine = engineList[0]
	} else {
		returnEngine.MetricsEngine = &DummyMetricsEngine{}
	}

	return &returnEngine
}

// DetailedMetricsEngine is a MetricsEngine that preserves links to underlying metrics engines.
type DetailedMetricsEngine struct {
	metrics.MetricsEngine
	GoMetrics         *metrics.Metrics
	PrometheusMetrics *prometheusmetrics.Metrics
}

// MultiMetricsEngine logs metrics to multiple metrics databases. This is useful in transitioning
// an instance from one engine to another, you can run both in parallel to verify stats match up.
type MultiMetricsEngine []metrics.MetricsEngine

func (me *MultiMetricsEngine) RecordNewConnection() {
	for _, thisME := range *me {
		thisME.RecordNewConnection()
	}
}

func (me *MultiMetricsEngine) RecordClosedConnection() {
	for _, thisME := range *me {
		thisME.RecordClosedConnection()
	}
}

func (me *MultiMetricsEngine) RecordParse(source string, outcome metrics.ParseOutcome, duration time.Duration) {
	for _, thisME := range *me {
		thisME.RecordParse(source, outcome, duration)
	}
}

func (me *MultiMetricsEngine) RecordDiagnostic(source string, code int) {
	for _, thisME := range *me {
		thisME.RecordDiagnostic(source, code)
	}
}

func (me *MultiMetricsEngine) RecordResponse(source string, status metrics.ResponseStatus) {
	for _, thisME := range *me {
		thisME.RecordResponse(source, status)
	}
}

func (me *MultiMetricsEngine) RecordRegistryLoad(source string, success bool) {
	for _, thisME := range *me {
		thisME.RecordRegistryLoad(source, success)
	}
}

// DummyMetricsEngine is a Noop metrics engine in case no metrics are configured. (may also be useful for tests)
type DummyMetricsEngine struct{}

func (me *DummyMetricsEngine) RecordNewConnection() {
}

func (me *DummyMetricsEngine) RecordClosedConnection() {
}

func (me *DummyMetricsEngine) RecordParse(source string, outcome metrics.ParseOutcome, duration time.Duration) {
}

func (me *DummyMetricsEngine) RecordDiagnostic(source string, code int) {
}

func (me *DummyMetricsEngine) RecordResponse(source string, status metrics.ResponseStatus) {
}

func (me *DummyMetricsEngine) RecordRegistryLoad(source string, success bool) {
}
