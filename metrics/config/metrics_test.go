package config

import (
	"testing"
	"time"

	mainConfig "github.com/prebid/prebid-rtb-gateway/config"
	"github.com/prebid/prebid-rtb-gateway/metrics"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/stretchr/testify/assert"
)

// Start a simple test to insure we get valid MetricsEngines for various configurations
func TestDummyMetricsEngine(t *testing.T) {
	cfg := mainConfig.Configuration{}
	testEngine := NewMetricsEngine(&cfg, nil)
	_, ok := testEngine.MetricsEngine.(*DummyMetricsEngine)
	assert.True(t, ok, "Expected a DummyMetricsEngine, but didn't get it")
}

func TestGoMetricsEngine(t *testing.T) {
	cfg := mainConfig.Configuration{}
	cfg.Metrics.Influxdb.Host = "localhost"
	cfg.Metrics.Influxdb.MetricSendInterval = 3600
	testEngine := NewMetricsEngine(&cfg, []string{"openrtb"})
	_, ok := testEngine.MetricsEngine.(*metrics.Metrics)
	assert.True(t, ok, "Expected a go-metrics Metrics as MetricsEngine, but didn't get it")
	assert.NotNil(t, testEngine.GoMetrics)
	assert.Nil(t, testEngine.PrometheusMetrics)
}

func TestBothEngines(t *testing.T) {
	cfg := mainConfig.Configuration{}
	cfg.Metrics.Influxdb.Host = "localhost"
	cfg.Metrics.Influxdb.MetricSendInterval = 3600
	cfg.Metrics.Prometheus.Port = 9100
	testEngine := NewMetricsEngine(&cfg, []string{"openrtb"})
	engines, ok := testEngine.MetricsEngine.(*MultiMetricsEngine)
	assert.True(t, ok, "Expected a MultiMetricsEngine, but didn't get it")
	assert.Len(t, *engines, 2)
}

// Test the multiengine
func TestMultiMetricsEngine(t *testing.T) {
	goEngine := metrics.NewMetrics(gometrics.NewPrefixedRegistry("rtbgateway."), []string{"openrtb"})
	engineList := make(MultiMetricsEngine, 2)
	engineList[0] = goEngine
	engineList[1] = &DummyMetricsEngine{}
	var metricsEngine metrics.MetricsEngine
	metricsEngine = &engineList

	for i := 0; i < 5; i++ {
		metricsEngine.RecordParse("openrtb", metrics.ParseOK, time.Millisecond)
		metricsEngine.RecordDiagnostic("openrtb", 10001)
		metricsEngine.RecordResponse("openrtb", metrics.ResponseBid)
	}
	metricsEngine.RecordRegistryLoad("lazy", false)
	metricsEngine.RecordNewConnection()

	VerifyMetrics(t, "parse.ok", goEngine.MetricsRegistry.Get("source.openrtb.parse.ok").(gometrics.Meter).Count(), 5)
	VerifyMetrics(t, "diagnostics", goEngine.MetricsRegistry.Get("source.openrtb.diagnostics.10001").(gometrics.Counter).Count(), 5)
	VerifyMetrics(t, "responses.bid", goEngine.MetricsRegistry.Get("source.openrtb.responses.bid").(gometrics.Meter).Count(), 5)
	VerifyMetrics(t, "registry.loads.failed", goEngine.RegistryLoadFailedMeter.Count(), 1)
	VerifyMetrics(t, "active_connections", goEngine.ConnectionCounter.Count(), 1)
}

func VerifyMetrics(t *testing.T, name string, actual int64, expected int64) {
	if expected != actual {
		t.Errorf("Error in metric %s: expected %d, got %d.", name, expected, actual)
	}
}
