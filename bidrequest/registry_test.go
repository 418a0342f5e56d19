package bidrequest

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prebid/prebid-rtb-gateway/errortypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	calls   atomic.Int32
	delay   time.Duration
	sources map[string]Parser
}

func (l *fakeLoader) Load(registry *ParserRegistry, source string) error {
	l.calls.Add(1)
	time.Sleep(l.delay)
	parser, ok := l.sources[source]
	if !ok {
		return errors.New("no parser configured")
	}
	return registry.Register(source, parser)
}

func exchangeParser(name string) Parser {
	return func(payload []byte) (*BidRequest, []error) {
		return &BidRequest{Exchange: name}, nil
	}
}

func TestRegistryCanonicalSources(t *testing.T) {
	registry := NewParserRegistry(nil)
	payload := []byte(`{"id":"abc"}`)

	for _, source := range []string{"rtbkit", "recoset", "datacratic"} {
		t.Run(source, func(t *testing.T) {
			req, errs := registry.Parse(source, payload)
			require.Empty(t, errs)
			assert.Equal(t, "abc", req.AuctionID)
		})
	}
}

func TestRegistryMarkerWinsOverSource(t *testing.T) {
	registry := NewParserRegistry(nil)
	require.NoError(t, registry.Register("openrtb", exchangeParser("openrtb")))

	req, errs := registry.Parse("openrtb", []byte(`{"!!CV":"0.1","id":"canon"}`))
	require.Empty(t, errs)
	assert.Equal(t, "canon", req.AuctionID)
	assert.Empty(t, req.Exchange)

	req, errs = registry.Parse("openrtb", []byte(`{"id":"x"}`))
	require.Empty(t, errs)
	assert.Equal(t, "openrtb", req.Exchange)
}

func TestRegistryErrors(t *testing.T) {
	registry := NewParserRegistry(nil)

	_, errs := registry.Parse("", []byte(`{"!!CV":"0.1","id":"a"}`))
	require.Len(t, errs, 1)
	assert.Equal(t, &errortypes.EmptySource{}, errs[0])

	_, errs = registry.Parse("unknown", []byte(`{}`))
	require.Len(t, errs, 1)
	assert.Equal(t, &errortypes.UnknownParserSource{Source: "unknown"}, errs[0])
}

func TestRegistryRegister(t *testing.T) {
	testCases := []struct {
		name     string
		source   string
		expected error
	}{
		{name: "empty", source: "", expected: &errortypes.EmptySource{}},
		{name: "canonical", source: "recoset", expected: &errortypes.DuplicateParser{Source: "recoset"}},
		{name: "duplicate", source: "openrtb", expected: &errortypes.DuplicateParser{Source: "openrtb"}},
		{name: "new", source: "other"},
	}

	registry := NewParserRegistry(nil)
	require.NoError(t, registry.Register("openrtb", exchangeParser("openrtb")))

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			err := registry.Register(test.source, exchangeParser(test.source))
			assert.Equal(t, test.expected, err)
		})
	}
	assert.Equal(t, []string{"openrtb", "other"}, registry.Sources())
}

func TestRegistryLoadsOnMiss(t *testing.T) {
	loader := &fakeLoader{
		delay:   20 * time.Millisecond,
		sources: map[string]Parser{"lazy": exchangeParser("lazy")},
	}
	registry := NewParserRegistry(loader)

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req, errs := registry.Parse("lazy", []byte(`{}`))
			if len(errs) == 0 {
				results[i] = req.Exchange
			}
		}(i)
	}
	wg.Wait()

	for _, exchange := range results {
		assert.Equal(t, "lazy", exchange)
	}
	assert.Equal(t, int32(1), loader.calls.Load())

	_, ok := registry.Lookup("lazy")
	assert.True(t, ok)
}

func TestRegistryLoadFailure(t *testing.T) {
	loader := &fakeLoader{sources: map[string]Parser{}}
	registry := NewParserRegistry(loader)

	_, errs := registry.Parse("missing", []byte(`{}`))
	require.Len(t, errs, 1)
	assert.Equal(t, &errortypes.UnknownParserSource{Source: "missing"}, errs[0])
	assert.Equal(t, int32(1), loader.calls.Load())
}

func TestRegistryRemembersFailedLoads(t *testing.T) {
	loader := &fakeLoader{sources: map[string]Parser{}}
	registry := NewParserRegistry(loader)
	mockClock := clock.NewMock()
	registry.clock = mockClock

	for i := 0; i < 3; i++ {
		_, errs := registry.Parse("missing", []byte(`{}`))
		require.Len(t, errs, 1)
		assert.Equal(t, &errortypes.UnknownParserSource{Source: "missing"}, errs[0])
	}
	assert.Equal(t, int32(1), loader.calls.Load(), "failed loads are not retried right away")

	mockClock.Add(failedLoadTTL)
	registry.Parse("missing", []byte(`{}`))
	assert.Equal(t, int32(2), loader.calls.Load(), "failed loads are retried once they expire")

	require.NoError(t, registry.Register("missing", exchangeParser("missing")))
	req, errs := registry.Parse("missing", []byte(`{}`))
	require.Empty(t, errs)
	assert.Equal(t, "missing", req.Exchange)
}
