package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prebid/prebid-rtb-gateway/config"
	"github.com/prebid/prebid-rtb-gateway/exchange"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Configuration {
	t.Helper()
	v := viper.New()
	config.SetupViper(v, "")
	v.Set("exchanges", map[string]interface{}{
		"rtbx": map[string]interface{}{"seat": "seat-1"},
	})
	v.Set("default_exchange", "rtbx")
	cfg, err := config.New(v)
	require.NoError(t, err)
	return cfg
}

func TestNewGateway(t *testing.T) {
	cfg := testConfig(t)
	r, metricsEngine, err := newGateway(cfg, exchange.NoBidAuctioneer{})
	require.NoError(t, err)
	require.NotNil(t, metricsEngine)
	assert.Equal(t, []string{"rtbx"}, r.Registry.Sources())

	req := httptest.NewRequest(http.MethodPost, "/openrtb2/auction", strings.NewReader(`{"id":"a","imp":[{"id":"1"}],"site":{"id":"s"}}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-openrtb-version", "2.1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestNewGatewayLoadsExchangeInfos(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "late.yaml"), []byte("provider: late-provider\n"), 0o600))

	cfg := testConfig(t)
	cfg.ExchangeInfoDir = dir
	r, _, err := newGateway(cfg, exchange.NoBidAuctioneer{})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/openrtb2/late/auction", strings.NewReader(`{"id":"a","imp":[{"id":"1"}],"app":{"id":"x"}}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-openrtb-version", "2.1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"late", "rtbx"}, r.Registry.Sources())
}

func TestNewGatewayRejectsBadExchanges(t *testing.T) {
	cfg := testConfig(t)
	cfg.Exchanges["weird"] = config.Exchange{Dialect: "appnexus"}

	_, _, err := newGateway(cfg, exchange.NoBidAuctioneer{})
	assert.ErrorContains(t, err, "exchanges could not be registered")
}
