package adapters

import (
	"fmt"
	"sort"

	"github.com/golang/glog"
	"github.com/prebid/prebid-rtb-gateway/bidrequest"
	"github.com/prebid/prebid-rtb-gateway/config"
	"github.com/prebid/prebid-rtb-gateway/metrics"
)

// ExchangeInfoSource reads the description of an exchange which is not in the main
// configuration. *config.ExchangeInfos implements it.
type ExchangeInfoSource interface {
	Load(source string) (config.Exchange, bool, error)
}

// ParserLoader builds and registers the parser of a source the registry does not know yet.
type ParserLoader struct {
	cfg      *config.Configuration
	builders Builders
	infos    ExchangeInfoSource
	metrics  metrics.MetricsEngine
}

// NewParserLoader returns a loader looking up exchanges in cfg, then in infos. infos may be nil.
func NewParserLoader(cfg *config.Configuration, builders Builders, infos ExchangeInfoSource, me metrics.MetricsEngine) *ParserLoader {
	return &ParserLoader{
		cfg:      cfg,
		builders: builders,
		infos:    infos,
		metrics:  me,
	}
}

// Load implements bidrequest.Loader.
func (l *ParserLoader) Load(registry *bidrequest.ParserRegistry, source string) error {
	err := l.load(registry, source)
	l.metrics.RecordRegistryLoad(source, err == nil)
	return err
}

func (l *ParserLoader) load(registry *bidrequest.ParserRegistry, source string) error {
	exchange, ok := l.cfg.Exchange(source)
	if !ok && l.infos != nil {
		var err error
		if exchange, ok, err = l.infos.Load(source); err != nil {
			return err
		}
	}
	if !ok {
		return fmt.Errorf("exchange %q is not configured", source)
	}

	parser, err := build(l.builders, source, exchange)
	if err != nil {
		return err
	}
	return registry.Register(source, parser)
}

// RegisterConfigured registers a parser for every enabled exchange of cfg, so that configured
// exchanges never wait on a load. Exchanges are processed in name order; every failure is
// reported.
func RegisterConfigured(registry *bidrequest.ParserRegistry, cfg *config.Configuration, builders Builders) []error {
	sources := make([]string, 0, len(cfg.Exchanges))
	for source := range cfg.Exchanges {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	var errs []error
	for _, source := range sources {
		exchange := cfg.Exchanges[source]
		if exchange.Disabled {
			continue
		}
		parser, err := build(builders, source, exchange)
		if err == nil {
			err = registry.Register(source, parser)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("exchange %s: %v", source, err))
			continue
		}
		glog.Infof("Registered bid request parser for exchange %s (dialect %s)", source, exchange.DialectOrDefault())
	}
	return errs
}

func build(builders Builders, source string, exchange config.Exchange) (bidrequest.Parser, error) {
	builder, ok := builders[exchange.DialectOrDefault()]
	if !ok {
		return nil, fmt.Errorf("exchange %q uses unknown dialect %q", source, exchange.DialectOrDefault())
	}
	return builder(source, exchange)
}
