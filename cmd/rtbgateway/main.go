package main

import (
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"

	"github.com/golang/glog"
	"github.com/prebid/prebid-rtb-gateway/adapters"
	"github.com/prebid/prebid-rtb-gateway/bidrequest"
	"github.com/prebid/prebid-rtb-gateway/config"
	"github.com/prebid/prebid-rtb-gateway/errortypes"
	"github.com/prebid/prebid-rtb-gateway/exchange"
	metricsconfig "github.com/prebid/prebid-rtb-gateway/metrics/config"
	"github.com/prebid/prebid-rtb-gateway/router"
	"github.com/prebid/prebid-rtb-gateway/server"
	"github.com/spf13/viper"
)

func main() {
	flag.Parse() // required for glog flags and testing package flags

	cfg, err := loadConfig()
	if err != nil {
		glog.Exitf("Configuration could not be loaded or did not pass validation: %v", err)
	}

	if err := serve(cfg); err != nil {
		glog.Exitf("rtb gateway failed: %v", err)
	}
}

const configFileName = "rtbgateway"

func loadConfig() (*config.Configuration, error) {
	v := viper.New()
	config.SetupViper(v, configFileName)
	return config.New(v)
}

// serve wires the gateway together and blocks until the process is told to stop. Auctions are
// held by an external engine; until one is plugged in every auction ends without winners.
func serve(cfg *config.Configuration) error {
	r, metricsEngine, err := newGateway(cfg, exchange.NoBidAuctioneer{})
	if err != nil {
		return err
	}

	// The admin port serves the pprof handlers registered on the default mux.
	server.Listen(cfg, router.NoCache{Handler: router.SupportCORS(r)}, http.DefaultServeMux, metricsEngine)
	return nil
}

func newGateway(cfg *config.Configuration, auctioneer exchange.Auctioneer) (*router.Router, *metricsconfig.DetailedMetricsEngine, error) {
	metricsEngine := metricsconfig.NewMetricsEngine(cfg, cfg.EnabledExchanges())

	builders := exchange.NewAdapterBuilders()
	var infos adapters.ExchangeInfoSource
	if cfg.ExchangeInfoDir != "" {
		infos = config.NewExchangeInfos(cfg.ExchangeInfoDir)
	}
	loader := adapters.NewParserLoader(cfg, builders, infos, metricsEngine)
	registry := bidrequest.NewParserRegistry(loader)
	if errs := adapters.RegisterConfigured(registry, cfg, builders); len(errs) > 0 {
		return nil, nil, errortypes.NewAggregateErrors("exchanges could not be registered", errs)
	}

	r, err := router.New(cfg, registry, auctioneer, metricsEngine)
	if err != nil {
		return nil, nil, fmt.Errorf("router could not be created: %v", err)
	}
	return r, metricsEngine, nil
}
