package router

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/golang/glog"
	"github.com/julienschmidt/httprouter"
	"github.com/prebid/prebid-rtb-gateway/bidrequest"
	"github.com/prebid/prebid-rtb-gateway/config"
	"github.com/prebid/prebid-rtb-gateway/endpoints"
	"github.com/prebid/prebid-rtb-gateway/endpoints/openrtb2"
	"github.com/prebid/prebid-rtb-gateway/exchange"
	"github.com/prebid/prebid-rtb-gateway/metrics"
	"github.com/prebid/prebid-rtb-gateway/version"
	"github.com/rs/cors"
)

// NoCache Middleware prevents clients from caching the results
type NoCache struct {
	Handler http.Handler
}

func (m NoCache) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Add("Pragma", "no-cache")
	w.Header().Add("Expires", "0")
	m.Handler.ServeHTTP(w, r)
}

// Router serves the exchange facing endpoints.
type Router struct {
	*httprouter.Router
	Registry *bidrequest.ParserRegistry
}

// New builds the router. Exchanges post OpenRTB bid requests either to /openrtb2/auction, which
// is attributed to the default exchange, or to /openrtb2/<exchange>/auction.
func New(cfg *config.Configuration, registry *bidrequest.ParserRegistry, auctioneer exchange.Auctioneer, me metrics.MetricsEngine) (*Router, error) {
	if cfg == nil || registry == nil {
		return nil, errors.New("router.New requires a configuration and a parser registry")
	}

	assembler := exchange.NewResponseAssembler(cfg, exchange.NewBidIDGenerator(cfg.OpenRTB.GenerateBidID))
	auctionEndpoint, err := openrtb2.NewEndpoint(registry, auctioneer, assembler, me, cfg)
	if err != nil {
		return nil, fmt.Errorf("the OpenRTB endpoint could not be created: %v", err)
	}

	r := &Router{
		Router:   httprouter.New(),
		Registry: registry,
	}
	r.POST("/openrtb2/auction", auctionEndpoint)
	r.POST("/openrtb2/:exchange/auction", auctionEndpoint)
	r.GET("/status", endpoints.NewStatusEndpoint(cfg.StatusResponse))
	r.Handler(http.MethodGet, "/version", endpoints.NewVersionEndpoint(version.Ver, version.Rev))

	glog.Infof("Serving OpenRTB %s bid requests for exchanges %v", cfg.OpenRTB.Version, registry.Sources())
	return r, nil
}

// SupportCORS wraps handler so that it answers preflight requests from any origin. Exchanges
// send server to server traffic, but test consoles call the gateway from the browser.
//
// Origins are echoed rather than answered with "*" so that credentialed requests still work.
// For more info, see:
//
// - https://github.com/rs/cors/issues/55
// - https://developer.mozilla.org/en-US/docs/Web/HTTP/CORS/Errors/CORSNotSupportingCredentials
func SupportCORS(handler http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowCredentials: true,
		AllowOriginFunc: func(string) bool {
			return true
		},
		AllowedHeaders: []string{"Origin", "X-Requested-With", "Content-Type", "Accept", "X-Openrtb-Version"}})
	return c.Handler(handler)
}
