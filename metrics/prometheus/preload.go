package prometheusmetrics

// preloadLabelValues creates the series which do not depend on a source, so they are exported
// at zero before the first request arrives.
func preloadLabelValues(m *Metrics) {
	for _, success := range []string{"true", "false"} {
		m.registryLoads.WithLabelValues(success)
	}
}
