package metrics

import (
	"time"
)

// UnknownSource labels metrics of requests from sources without a registered parser. Source names
// come from request paths, so only registered ones become label values.
const UnknownSource = "unknown"

// ParseOutcome describes how a bid request parse ended.
type ParseOutcome string

const (
	// ParseOK means the request parsed without diagnostics.
	ParseOK ParseOutcome = "ok"
	// ParseRecovered means the request parsed, but some fields were skipped or captured as unparseable.
	ParseRecovered ParseOutcome = "recovered"
	// ParseRejected means the request could not be used.
	ParseRejected ParseOutcome = "rejected"
)

func ParseOutcomes() []ParseOutcome {
	return []ParseOutcome{
		ParseOK,
		ParseRecovered,
		ParseRejected,
	}
}

// ResponseStatus is the kind of answer sent back to an exchange.
type ResponseStatus string

const (
	ResponseBid        ResponseStatus = "bid"
	ResponseNoBid      ResponseStatus = "nobid"
	ResponseBadRequest ResponseStatus = "badrequest"
	ResponseError      ResponseStatus = "error"
)

func ResponseStatuses() []ResponseStatus {
	return []ResponseStatus{
		ResponseBid,
		ResponseNoBid,
		ResponseBadRequest,
		ResponseError,
	}
}

// MetricsEngine is a generic interface to record metrics into the desired backend. The first
// three methods are called on every request; RecordRegistryLoad only when a source is not
// registered yet.
type MetricsEngine interface {
	RecordNewConnection()
	RecordClosedConnection()
	// RecordParse records one bid request parse from source and how long it took.
	RecordParse(source string, outcome ParseOutcome, duration time.Duration)
	// RecordDiagnostic records one error or warning raised while parsing, by error code.
	RecordDiagnostic(source string, code int)
	RecordResponse(source string, status ResponseStatus)
	// RecordRegistryLoad records an attempt to build the parser of an unregistered source.
	RecordRegistryLoad(source string, success bool)
}
