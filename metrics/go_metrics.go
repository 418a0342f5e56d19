package metrics

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rcrowley/go-metrics"
)

// Metrics is the go-metrics implementation of MetricsEngine. Per source metrics are registered
// the first time a source is seen.
type Metrics struct {
	MetricsRegistry metrics.Registry

	ConnectionCounter       metrics.Counter
	ConnectionAcceptMeter   metrics.Meter
	ConnectionCloseMeter    metrics.Meter
	RegistryLoadMeter       metrics.Meter
	RegistryLoadFailedMeter metrics.Meter

	// Don't export sourceMetrics because we need helper functions here to insure its properly populated dynamically
	sourceMetrics        map[string]*SourceMetrics
	sourceMetricsRWMutex sync.RWMutex
}

// SourceMetrics houses the metrics for a particular exchange source.
type SourceMetrics struct {
	ParseMeters     map[ParseOutcome]metrics.Meter
	ParseTimer      metrics.Timer
	ResponseMeters  map[ResponseStatus]metrics.Meter
	diagnostics     map[int]metrics.Counter
	diagnosticsLock sync.Mutex
}

// NewMetrics creates a go-metrics engine writing into registry.
func NewMetrics(registry metrics.Registry, sources []string) *Metrics {
	newMetrics := &Metrics{
		MetricsRegistry:         registry,
		ConnectionCounter:       metrics.GetOrRegisterCounter("active_connections", registry),
		ConnectionAcceptMeter:   metrics.GetOrRegisterMeter("connection_accepted", registry),
		ConnectionCloseMeter:    metrics.GetOrRegisterMeter("connection_closed", registry),
		RegistryLoadMeter:       metrics.GetOrRegisterMeter("registry.loads.ok", registry),
		RegistryLoadFailedMeter: metrics.GetOrRegisterMeter("registry.loads.failed", registry),
		sourceMetrics:           make(map[string]*SourceMetrics, len(sources)),
	}
	for _, source := range sources {
		newMetrics.sourceMetrics[source] = newSourceMetrics(registry, source)
	}
	return newMetrics
}

func newSourceMetrics(registry metrics.Registry, source string) *SourceMetrics {
	sm := &SourceMetrics{
		ParseMeters:    make(map[ParseOutcome]metrics.Meter, len(ParseOutcomes())),
		ParseTimer:     metrics.GetOrRegisterTimer(fmt.Sprintf("source.%s.parse_time", source), registry),
		ResponseMeters: make(map[ResponseStatus]metrics.Meter, len(ResponseStatuses())),
		diagnostics:    make(map[int]metrics.Counter),
	}
	for _, outcome := range ParseOutcomes() {
		sm.ParseMeters[outcome] = metrics.GetOrRegisterMeter(fmt.Sprintf("source.%s.parse.%s", source, outcome), registry)
	}
	for _, status := range ResponseStatuses() {
		sm.ResponseMeters[status] = metrics.GetOrRegisterMeter(fmt.Sprintf("source.%s.responses.%s", source, status), registry)
	}
	return sm
}

// getSourceMetrics returns the metrics of source, registering them when the source is new.
func (me *Metrics) getSourceMetrics(source string) *SourceMetrics {
	me.sourceMetricsRWMutex.RLock()
	sm, ok := me.sourceMetrics[source]
	me.sourceMetricsRWMutex.RUnlock()
	if ok {
		return sm
	}

	me.sourceMetricsRWMutex.Lock()
	defer me.sourceMetricsRWMutex.Unlock()
	// Made sure to do a second check in case another thread registered it between the locks
	if sm, ok = me.sourceMetrics[source]; ok {
		return sm
	}
	sm = newSourceMetrics(me.MetricsRegistry, source)
	me.sourceMetrics[source] = sm
	return sm
}

func (me *Metrics) RecordNewConnection() {
	me.ConnectionCounter.Inc(1)
	me.ConnectionAcceptMeter.Mark(1)
}

func (me *Metrics) RecordClosedConnection() {
	me.ConnectionCounter.Dec(1)
	me.ConnectionCloseMeter.Mark(1)
}

func (me *Metrics) RecordParse(source string, outcome ParseOutcome, duration time.Duration) {
	sm := me.getSourceMetrics(source)
	if meter, ok := sm.ParseMeters[outcome]; ok {
		meter.Mark(1)
	}
	sm.ParseTimer.Update(duration)
}

func (me *Metrics) RecordDiagnostic(source string, code int) {
	sm := me.getSourceMetrics(source)
	sm.diagnosticsLock.Lock()
	counter, ok := sm.diagnostics[code]
	if !ok {
		counter = metrics.GetOrRegisterCounter("source."+source+".diagnostics."+strconv.Itoa(code), me.MetricsRegistry)
		sm.diagnostics[code] = counter
	}
	sm.diagnosticsLock.Unlock()
	counter.Inc(1)
}

func (me *Metrics) RecordResponse(source string, status ResponseStatus) {
	if meter, ok := me.getSourceMetrics(source).ResponseMeters[status]; ok {
		meter.Mark(1)
	}
}

func (me *Metrics) RecordRegistryLoad(source string, success bool) {
	if success {
		me.RegistryLoadMeter.Mark(1)
	} else {
		me.RegistryLoadFailedMeter.Mark(1)
	}
}
