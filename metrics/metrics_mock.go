package metrics

import (
	"time"

	"github.com/stretchr/testify/mock"
)

// MetricsEngineMock is mock for the MetricsEngine interface
type MetricsEngineMock struct {
	mock.Mock
}

// RecordNewConnection mock
func (me *MetricsEngineMock) RecordNewConnection() {
	me.Called()
}

// RecordClosedConnection mock
func (me *MetricsEngineMock) RecordClosedConnection() {
	me.Called()
}

// RecordParse mock
func (me *MetricsEngineMock) RecordParse(source string, outcome ParseOutcome, duration time.Duration) {
	me.Called(source, outcome, duration)
}

// RecordDiagnostic mock
func (me *MetricsEngineMock) RecordDiagnostic(source string, code int) {
	me.Called(source, code)
}

// RecordResponse mock
func (me *MetricsEngineMock) RecordResponse(source string, status ResponseStatus) {
	me.Called(source, status)
}

// RecordRegistryLoad mock
func (me *MetricsEngineMock) RecordRegistryLoad(source string, success bool) {
	me.Called(source, success)
}
