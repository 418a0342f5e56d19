package bidrequest

import (
	"bytes"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/glog"
	"github.com/prebid/prebid-rtb-gateway/errortypes"
	"github.com/prebid/prebid-rtb-gateway/schema"
	"golang.org/x/sync/singleflight"
)

// Parser turns an exchange payload into a canonical bid request. Fatal errors mean no request
// is returned; warnings may accompany a request.
type Parser func(payload []byte) (*BidRequest, []error)

// Loader is consulted when a source has no registered parser. It should register one on the
// registry it is given, or return an error explaining why it could not.
type Loader interface {
	Load(registry *ParserRegistry, source string) error
}

// canonicalSources always resolve to the canonical parser.
var canonicalSources = map[string]struct{}{
	"rtbkit":     {},
	"recoset":    {},
	"datacratic": {},
}

// canonicalPrefix starts every payload printed by the canonical printer.
var canonicalPrefix = []byte(`{"` + schema.MarkerKey + `":`)

// failedLoadTTL is how long a source whose load failed is answered without asking the loader
// again.
const failedLoadTTL = 30 * time.Second

// ParserRegistry resolves a source name to its parser. Lookups run concurrently with the rare
// registrations.
type ParserRegistry struct {
	mu      sync.RWMutex
	parsers map[string]Parser
	// failed holds when each source's last load failed.
	failed map[string]time.Time
	loader Loader
	loads  singleflight.Group
	clock  clock.Clock
}

// NewParserRegistry returns an empty registry. loader may be nil, in which case unknown sources
// fail immediately.
func NewParserRegistry(loader Loader) *ParserRegistry {
	return &ParserRegistry{
		parsers: make(map[string]Parser),
		failed:  make(map[string]time.Time),
		loader:  loader,
		clock:   clock.New(),
	}
}

// Register adds the parser for source. A source can only be registered once, and the canonical
// names are reserved.
func (r *ParserRegistry) Register(source string, parser Parser) error {
	if source == "" {
		return &errortypes.EmptySource{}
	}
	if _, ok := canonicalSources[source]; ok {
		return &errortypes.DuplicateParser{Source: source}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.parsers[source]; ok {
		return &errortypes.DuplicateParser{Source: source}
	}
	r.parsers[source] = parser
	delete(r.failed, source)
	return nil
}

// Lookup returns the parser registered for source without trying to load one.
func (r *ParserRegistry) Lookup(source string) (Parser, bool) {
	if _, ok := canonicalSources[source]; ok {
		return Parse, true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	parser, ok := r.parsers[source]
	return parser, ok
}

// Sources lists the registered sources, canonical names excluded.
func (r *ParserRegistry) Sources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sources := make([]string, 0, len(r.parsers))
	for source := range r.parsers {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	return sources
}

// Parse parses payload with the parser for source. Payloads starting with the canonical marker
// go to the canonical parser whatever the source says.
func (r *ParserRegistry) Parse(source string, payload []byte) (*BidRequest, []error) {
	parser, err := r.resolve(source, payload)
	if err != nil {
		return nil, []error{err}
	}
	return parser(payload)
}

func (r *ParserRegistry) resolve(source string, payload []byte) (Parser, error) {
	if source == "" {
		return nil, &errortypes.EmptySource{}
	}
	if bytes.HasPrefix(payload, canonicalPrefix) {
		return Parse, nil
	}
	if parser, ok := r.Lookup(source); ok {
		return parser, nil
	}
	if r.loader == nil || r.recentlyFailed(source) {
		return nil, &errortypes.UnknownParserSource{Source: source}
	}

	// concurrent misses on one source share a single load
	_, err, _ := r.loads.Do(source, func() (interface{}, error) {
		if _, ok := r.Lookup(source); ok {
			return nil, nil
		}
		glog.Infof("Loading bid request parser for source %q", source)
		return nil, r.loader.Load(r, source)
	})
	if parser, ok := r.Lookup(source); ok {
		return parser, nil
	}
	if err != nil {
		glog.Warningf("Failed to load bid request parser for source %q: %v", source, err)
	}
	r.rememberFailure(source)
	return nil, &errortypes.UnknownParserSource{Source: source}
}

func (r *ParserRegistry) recentlyFailed(source string) bool {
	r.mu.RLock()
	failedAt, ok := r.failed[source]
	r.mu.RUnlock()
	return ok && r.clock.Since(failedAt) < failedLoadTTL
}

func (r *ParserRegistry) rememberFailure(source string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.parsers[source]; ok {
		return
	}
	now := r.clock.Now()
	// expired entries go on the next failure so the map only holds recent misses
	for other, failedAt := range r.failed {
		if now.Sub(failedAt) >= failedLoadTTL {
			delete(r.failed, other)
		}
	}
	r.failed[source] = now
}
