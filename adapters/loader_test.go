package adapters

import (
	"errors"
	"testing"

	"github.com/prebid/prebid-rtb-gateway/bidrequest"
	"github.com/prebid/prebid-rtb-gateway/config"
	"github.com/prebid/prebid-rtb-gateway/errortypes"
	"github.com/prebid/prebid-rtb-gateway/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInfos struct {
	exchanges map[string]config.Exchange
	err       error
	calls     []string
}

func (f *fakeInfos) Load(source string) (config.Exchange, bool, error) {
	f.calls = append(f.calls, source)
	if f.err != nil {
		return config.Exchange{}, false, f.err
	}
	exchange, ok := f.exchanges[source]
	if ok && exchange.Disabled {
		return exchange, false, nil
	}
	return exchange, ok, nil
}

// fakeBuilder builds parsers which return a request naming the source and provider they were
// built for.
func fakeBuilder(source string, cfg config.Exchange) (bidrequest.Parser, error) {
	return func(payload []byte) (*bidrequest.BidRequest, []error) {
		return &bidrequest.BidRequest{AuctionID: string(payload), Exchange: source, Provider: cfg.Provider}, nil
	}, nil
}

func failingBuilder(source string, cfg config.Exchange) (bidrequest.Parser, error) {
	return nil, errors.New("builder failed")
}

func testBuilders() Builders {
	return Builders{
		"openrtb": fakeBuilder,
		"broken":  failingBuilder,
	}
}

func TestParserLoaderLoad(t *testing.T) {
	cfg := &config.Configuration{
		Exchanges: map[string]config.Exchange{
			"configured": {Provider: "p1"},
			"off":        {Disabled: true},
			"weird":      {Dialect: "appnexus"},
			"broken":     {Dialect: "broken"},
		},
	}

	testCases := []struct {
		description      string
		source           string
		infos            *fakeInfos
		expectLoaded     bool
		expectedProvider string
		expectInfoCalls  []string
	}{
		{
			description:      "configured exchange",
			source:           "configured",
			infos:            &fakeInfos{},
			expectLoaded:     true,
			expectedProvider: "p1",
		},
		{
			description:      "exchange info file",
			source:           "fromfile",
			infos:            &fakeInfos{exchanges: map[string]config.Exchange{"fromfile": {Provider: "p2"}}},
			expectLoaded:     true,
			expectedProvider: "p2",
			expectInfoCalls:  []string{"fromfile"},
		},
		{
			description:     "unknown exchange",
			source:          "nobody",
			infos:           &fakeInfos{},
			expectInfoCalls: []string{"nobody"},
		},
		{
			description:     "disabled in configuration and not in files",
			source:          "off",
			infos:           &fakeInfos{},
			expectInfoCalls: []string{"off"},
		},
		{
			description:     "info read failure",
			source:          "fromfile",
			infos:           &fakeInfos{err: errors.New("permission denied")},
			expectInfoCalls: []string{"fromfile"},
		},
		{
			description: "unknown dialect",
			source:      "weird",
			infos:       &fakeInfos{},
		},
		{
			description: "builder failure",
			source:      "broken",
			infos:       &fakeInfos{},
		},
	}

	for _, test := range testCases {
		t.Run(test.description, func(t *testing.T) {
			me := &metrics.MetricsEngineMock{}
			me.On("RecordRegistryLoad", test.source, test.expectLoaded).Return()

			loader := NewParserLoader(cfg, testBuilders(), test.infos, me)
			registry := bidrequest.NewParserRegistry(loader)

			req, errs := registry.Parse(test.source, []byte("auction-1"))
			if test.expectLoaded {
				assert.Empty(t, errs)
				require.NotNil(t, req)
				assert.Equal(t, "auction-1", req.AuctionID)
				assert.Equal(t, test.source, req.Exchange)
				assert.Equal(t, test.expectedProvider, req.Provider)
				assert.Equal(t, []string{test.source}, registry.Sources())
			} else {
				assert.Nil(t, req)
				require.Len(t, errs, 1)
				assert.Equal(t, errortypes.UnknownParserSourceErrorCode, errortypes.ReadCode(errs[0]))
				assert.Empty(t, registry.Sources())
			}
			assert.Equal(t, test.expectInfoCalls, test.infos.calls)
			me.AssertExpectations(t)
		})
	}
}

func TestParserLoaderWithoutInfos(t *testing.T) {
	me := &metrics.MetricsEngineMock{}
	me.On("RecordRegistryLoad", "elsewhere", false).Return()

	loader := NewParserLoader(&config.Configuration{}, testBuilders(), nil, me)
	err := loader.Load(bidrequest.NewParserRegistry(nil), "elsewhere")

	assert.EqualError(t, err, `exchange "elsewhere" is not configured`)
	me.AssertExpectations(t)
}

func TestRegisterConfigured(t *testing.T) {
	cfg := &config.Configuration{
		Exchanges: map[string]config.Exchange{
			"b-exchange": {},
			"a-exchange": {Provider: "acme"},
			"disabled":   {Disabled: true},
			"weird":      {Dialect: "appnexus"},
			"broken":     {Dialect: "broken"},
		},
	}
	registry := bidrequest.NewParserRegistry(nil)

	errs := RegisterConfigured(registry, cfg, testBuilders())

	require.Len(t, errs, 2)
	assert.EqualError(t, errs[0], "exchange broken: builder failed")
	assert.EqualError(t, errs[1], `exchange weird: exchange "weird" uses unknown dialect "appnexus"`)
	assert.Equal(t, []string{"a-exchange", "b-exchange"}, registry.Sources())

	req, errs := registry.Parse("a-exchange", []byte("x"))
	assert.Empty(t, errs)
	require.NotNil(t, req)
	assert.Equal(t, "acme", req.Provider)
}

func TestRegisterConfiguredTwice(t *testing.T) {
	cfg := &config.Configuration{Exchanges: map[string]config.Exchange{"rtbx": {}}}
	registry := bidrequest.NewParserRegistry(nil)

	assert.Empty(t, RegisterConfigured(registry, cfg, testBuilders()))
	errs := RegisterConfigured(registry, cfg, testBuilders())
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "exchange rtbx:")
}
