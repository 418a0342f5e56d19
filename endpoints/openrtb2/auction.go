package openrtb2

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/blang/semver"
	"github.com/golang/glog"
	"github.com/julienschmidt/httprouter"
	"github.com/prebid/prebid-rtb-gateway/bidrequest"
	"github.com/prebid/prebid-rtb-gateway/config"
	"github.com/prebid/prebid-rtb-gateway/errortypes"
	"github.com/prebid/prebid-rtb-gateway/exchange"
	"github.com/prebid/prebid-rtb-gateway/metrics"
)

const (
	openRTBVersionHeader = "x-openrtb-version"
	// exchangeParam names the path parameter carrying the source of the request.
	exchangeParam = "exchange"
)

func NewEndpoint(registry *bidrequest.ParserRegistry, auctioneer exchange.Auctioneer, assembler *exchange.ResponseAssembler, me metrics.MetricsEngine, cfg *config.Configuration) (httprouter.Handle, error) {
	if registry == nil || auctioneer == nil || assembler == nil || me == nil || cfg == nil {
		return nil, errors.New("NewEndpoint requires non-nil arguments.")
	}
	version, err := semver.ParseTolerant(cfg.OpenRTB.Version)
	if err != nil {
		return nil, fmt.Errorf("openrtb.version %q is not a version: %v", cfg.OpenRTB.Version, err)
	}

	return httprouter.Handle((&endpointDeps{
		registry:      registry,
		auctioneer:    auctioneer,
		assembler:     assembler,
		metricsEngine: me,
		cfg:           cfg,
		version:       version,
	}).Auction), nil
}

type endpointDeps struct {
	registry      *bidrequest.ParserRegistry
	auctioneer    exchange.Auctioneer
	assembler     *exchange.ResponseAssembler
	metricsEngine metrics.MetricsEngine
	cfg           *config.Configuration
	version       semver.Version
}

func (deps *endpointDeps) Auction(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	source := deps.source(params)
	req, ctx, cancel, errL := deps.parseRequest(r, source)
	defer cancel() // Safe because parseRequest returns a no-op if there's nothing to cancel
	if errortypes.ContainsFatalError(errL) {
		fatal := errortypes.FatalOnly(errL)
		deps.write(w, source, exchange.ErrorResponse(http.StatusBadRequest, fatal[0]))
		return
	}

	result, err := deps.auctioneer.HoldAuction(ctx, req)
	if err != nil {
		glog.V(2).Infof("Auction %s from %s failed: %v", req.AuctionID, source, err)
	}
	deps.write(w, source, deps.assembler.Assemble(source, req, result, err))
}

// source names the exchange which sent the request: the path parameter when routed with one,
// the configured default exchange otherwise.
func (deps *endpointDeps) source(params httprouter.Params) string {
	if source := params.ByName(exchangeParam); source != "" {
		return strings.ToLower(source)
	}
	return deps.cfg.DefaultExchange
}

// parseRequest turns the HTTP request into a canonical bid request. This is guaranteed to return:
//
//   - A context which times out when the exchange stops waiting for an answer.
//   - A cancellation function which should be called if the auction finishes early.
//
// The request is nil when the errors contain a fatal one. Warnings are reported but do not stop
// the auction.
func (deps *endpointDeps) parseRequest(httpRequest *http.Request, source string) (req *bidrequest.BidRequest, ctx context.Context, cancel func(), errs []error) {
	ctx = context.Background()
	cancel = func() {}

	if err := deps.checkProtocol(httpRequest); err != nil {
		deps.recordParse(source, metrics.ParseRejected, 0, []error{err})
		return nil, ctx, cancel, []error{err}
	}

	payload, err := deps.readBody(httpRequest)
	if err != nil {
		deps.recordParse(source, metrics.ParseRejected, 0, []error{err})
		return nil, ctx, cancel, []error{err}
	}

	tmax := exchange.TimeAvailableMs(payload, deps.cfg.OpenRTB.DefaultTMaxMs)

	start := time.Now()
	req, errs = deps.registry.Parse(source, payload)
	elapsed := time.Since(start)

	switch {
	case errortypes.ContainsFatalError(errs):
		deps.recordParse(source, metrics.ParseRejected, elapsed, errs)
		glog.V(2).Infof("Rejected bid request from %s: %v", source, errortypes.FatalOnly(errs))
		return nil, ctx, cancel, errs
	case len(errs) > 0:
		deps.recordParse(source, metrics.ParseRecovered, elapsed, errs)
		glog.V(2).Infof("Recovered bid request %s from %s: %v", req.AuctionID, source, errs)
	default:
		deps.recordParse(source, metrics.ParseOK, elapsed, nil)
	}

	if req.TimeAvailableMs <= 0 {
		req.TimeAvailableMs = tmax
	}
	if req.ProtocolVersion == "" {
		req.ProtocolVersion = httpRequest.Header.Get(openRTBVersionHeader)
	}
	ctx, cancel = context.WithTimeout(ctx, time.Duration(tmax)*time.Millisecond)
	return req, ctx, cancel, errs
}

// checkProtocol accepts JSON bodies declaring the OpenRTB version this gateway speaks. Versions
// match on major and minor, so "2.1" and "2.1.0" are the same.
func (deps *endpointDeps) checkProtocol(httpRequest *http.Request) error {
	mediaType, _, err := mime.ParseMediaType(httpRequest.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return &errortypes.UnsupportedProtocol{Message: "Content-Type must be application/json"}
	}

	declared := httpRequest.Header.Get(openRTBVersionHeader)
	if declared == "" {
		return &errortypes.UnsupportedProtocol{Message: fmt.Sprintf("%s header is required", openRTBVersionHeader)}
	}
	version, err := semver.ParseTolerant(declared)
	if err != nil || version.Major != deps.version.Major || version.Minor != deps.version.Minor {
		return &errortypes.UnsupportedProtocol{Message: fmt.Sprintf("%s %q is not supported, expected %s", openRTBVersionHeader, declared, deps.cfg.OpenRTB.Version)}
	}
	return nil
}

// readBody reads at most max_request_size bytes. Larger bodies are rejected without buffering the rest.
func (deps *endpointDeps) readBody(httpRequest *http.Request) ([]byte, error) {
	limit := deps.cfg.MaxRequestSize
	if limit <= 0 {
		payload, err := io.ReadAll(httpRequest.Body)
		if err != nil {
			return nil, &errortypes.BadInput{Message: fmt.Sprintf("failed to read request body: %v", err)}
		}
		return payload, nil
	}

	payload, err := io.ReadAll(&io.LimitedReader{R: httpRequest.Body, N: limit + 1})
	if err != nil {
		return nil, &errortypes.BadInput{Message: fmt.Sprintf("failed to read request body: %v", err)}
	}
	if int64(len(payload)) > limit {
		return nil, &errortypes.BadInput{Message: fmt.Sprintf("request body exceeds max_request_size of %d bytes", limit)}
	}
	return payload, nil
}

// metricsLabel keeps the source label set bounded: sources without a registered parser all share one label.
func (deps *endpointDeps) metricsLabel(source string) string {
	if _, ok := deps.registry.Lookup(source); ok {
		return source
	}
	return metrics.UnknownSource
}

func (deps *endpointDeps) recordParse(source string, outcome metrics.ParseOutcome, elapsed time.Duration, errs []error) {
	label := deps.metricsLabel(source)
	deps.metricsEngine.RecordParse(label, outcome, elapsed)
	for _, err := range errs {
		deps.metricsEngine.RecordDiagnostic(label, errortypes.ReadCode(err))
	}
}

func (deps *endpointDeps) write(w http.ResponseWriter, source string, resp exchange.Response) {
	deps.metricsEngine.RecordResponse(deps.metricsLabel(source), responseStatus(resp.StatusCode))

	if len(resp.Body) > 0 {
		w.Header().Set("Content-Type", "application/json")
	}
	w.Header().Set(openRTBVersionHeader, deps.cfg.OpenRTB.Version)
	w.WriteHeader(resp.StatusCode)
	if len(resp.Body) > 0 {
		if _, err := w.Write(resp.Body); err != nil {
			glog.Warningf("Failed to write response to %s: %v", source, err)
		}
	}
}

func responseStatus(code int) metrics.ResponseStatus {
	switch code {
	case http.StatusOK:
		return metrics.ResponseBid
	case http.StatusNoContent:
		return metrics.ResponseNoBid
	case http.StatusBadRequest:
		return metrics.ResponseBadRequest
	default:
		return metrics.ResponseError
	}
}
