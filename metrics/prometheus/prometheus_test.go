package prometheusmetrics

import (
	"testing"
	"time"

	"github.com/prebid/prebid-rtb-gateway/config"
	"github.com/prebid/prebid-rtb-gateway/metrics"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
)

func createMetricsForTesting() *Metrics {
	return NewMetrics(config.PrometheusMetrics{
		Port:      8080,
		Namespace: "prebid",
		Subsystem: "rtbgw",
	})
}

func TestMetricCountGatekeeping(t *testing.T) {
	m := createMetricsForTesting()

	metricFamilies, err := m.Gatherer.Gather()
	assert.NoError(t, err)

	// only the connection counters and the preloaded registry load series exist before any traffic
	assert.Len(t, metricFamilies, 3)
	assert.Equal(t, "prebid_rtbgw_connections_closed", metricFamilies[0].GetName())
	assert.Equal(t, "prebid_rtbgw_connections_opened", metricFamilies[1].GetName())
	assert.Equal(t, "prebid_rtbgw_parser_registry_loads", metricFamilies[2].GetName())
	assert.Len(t, metricFamilies[2].GetMetric(), 2)
}

func TestConnectionMetrics(t *testing.T) {
	m := createMetricsForTesting()

	m.RecordNewConnection()
	m.RecordNewConnection()
	m.RecordClosedConnection()

	assertCounterValue(t, "", "connections opened", m.connectionsOpened, 2)
	assertCounterValue(t, "", "connections closed", m.connectionsClosed, 1)
}

func TestRecordParse(t *testing.T) {
	m := createMetricsForTesting()

	m.RecordParse("openrtb", metrics.ParseOK, 2*time.Millisecond)
	m.RecordParse("openrtb", metrics.ParseOK, 3*time.Millisecond)
	m.RecordParse("openrtb", metrics.ParseRejected, time.Millisecond)

	assertCounterVecValue(t, "", "parses ok", m.parses, 2, prometheus.Labels{
		sourceLabel:  "openrtb",
		outcomeLabel: string(metrics.ParseOK),
	})
	assertCounterVecValue(t, "", "parses rejected", m.parses, 1, prometheus.Labels{
		sourceLabel:  "openrtb",
		outcomeLabel: string(metrics.ParseRejected),
	})

	result := getHistogramFromHistogramVec(m.parseTimer, sourceLabel, "openrtb")
	assert.Equal(t, uint64(3), result.GetSampleCount())
	assert.InDelta(t, 0.006, result.GetSampleSum(), 0.000001)
}

func TestRecordDiagnostic(t *testing.T) {
	m := createMetricsForTesting()

	m.RecordDiagnostic("openrtb", 10001)
	m.RecordDiagnostic("openrtb", 10001)
	m.RecordDiagnostic("openrtb", 1003)

	assertCounterVecValue(t, "", "warning", m.diagnostics, 2, prometheus.Labels{
		sourceLabel: "openrtb",
		codeLabel:   "10001",
	})
	assertCounterVecValue(t, "", "error", m.diagnostics, 1, prometheus.Labels{
		sourceLabel: "openrtb",
		codeLabel:   "1003",
	})
}

func TestRecordResponse(t *testing.T) {
	testCases := []struct {
		description string
		status      metrics.ResponseStatus
	}{
		{description: "bid", status: metrics.ResponseBid},
		{description: "nobid", status: metrics.ResponseNoBid},
		{description: "badrequest", status: metrics.ResponseBadRequest},
	}

	for _, test := range testCases {
		t.Run(test.description, func(t *testing.T) {
			m := createMetricsForTesting()
			m.RecordResponse("smaato", test.status)

			assertCounterVecValue(t, test.description, "responses", m.responses, 1, prometheus.Labels{
				sourceLabel: "smaato",
				statusLabel: string(test.status),
			})
		})
	}
}

func TestRecordRegistryLoad(t *testing.T) {
	m := createMetricsForTesting()

	m.RecordRegistryLoad("lazy", true)
	m.RecordRegistryLoad("nobody", false)
	m.RecordRegistryLoad("nobody", false)

	assertCounterVecValue(t, "", "loads ok", m.registryLoads, 1, prometheus.Labels{successLabel: "true"})
	assertCounterVecValue(t, "", "loads failed", m.registryLoads, 2, prometheus.Labels{successLabel: "false"})
}

func assertCounterValue(t *testing.T, description, name string, counter prometheus.Counter, expected float64) {
	var metric dto.Metric
	assert.NoError(t, counter.Write(&metric))
	assert.Equal(t, expected, metric.GetCounter().GetValue(), description+":"+name)
}

func assertCounterVecValue(t *testing.T, description, name string, counterVec *prometheus.CounterVec, expected float64, labels prometheus.Labels) {
	counter := counterVec.With(labels)
	var metric dto.Metric
	assert.NoError(t, counter.Write(&metric))
	assert.Equal(t, expected, metric.GetCounter().GetValue(), description+":"+name)
}

func getHistogramFromHistogramVec(histogram *prometheus.HistogramVec, labelKey, labelValue string) *dto.Histogram {
	var result *dto.Histogram
	processMetrics(histogram, func(m *dto.Metric) {
		for _, label := range m.GetLabel() {
			if label.GetName() == labelKey && label.GetValue() == labelValue {
				result = m.GetHistogram()
			}
		}
	})
	return result
}

func processMetrics(collector prometheus.Collector, handler func(m *dto.Metric)) {
	collectorChan := make(chan prometheus.Metric)
	go func() {
		collector.Collect(collectorChan)
		close(collectorChan)
	}()

	for metric := range collectorChan {
		dtoMetric := &dto.Metric{}
		metric.Write(dtoMetric)
		handler(dtoMetric)
	}
}
