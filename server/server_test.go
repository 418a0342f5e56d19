package server

import (
	"errors"
	"net"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/prebid/prebid-rtb-gateway/config"
	"github.com/prebid/prebid-rtb-gateway/metrics"
	metricsconfig "github.com/prebid/prebid-rtb-gateway/metrics/config"
	prometheusmetrics "github.com/prebid/prebid-rtb-gateway/metrics/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAdminServer(t *testing.T) {
	cfg := &config.Configuration{
		Host:      "gateway.example.com",
		AdminPort: 6060,
		Port:      8000,
	}
	server := newAdminServer(cfg, http.HandlerFunc(handler))
	assert.Equal(t, "gateway.example.com:6060", server.Addr)
}

func TestNewMainServer(t *testing.T) {
	testCases := []struct {
		description string
		enableGzip  bool
	}{
		{description: "plain", enableGzip: false},
		{description: "gzip", enableGzip: true},
	}

	for _, test := range testCases {
		t.Run(test.description, func(t *testing.T) {
			cfg := &config.Configuration{
				Host:       "gateway.example.com",
				AdminPort:  6060,
				Port:       8000,
				EnableGzip: test.enableGzip,
			}
			server := newMainServer(cfg, http.HandlerFunc(handler))
			assert.Equal(t, "gateway.example.com:8000", server.Addr)
			assert.Equal(t, 15*time.Second, server.ReadTimeout)
			assert.Equal(t, 15*time.Second, server.WriteTimeout)
			require.NotNil(t, server.Handler)
		})
	}
}

func TestNewPrometheusServer(t *testing.T) {
	cfg := &config.Configuration{Host: "localhost"}
	cfg.Metrics.Prometheus.Port = 9100
	engine := &metricsconfig.DetailedMetricsEngine{
		PrometheusMetrics: prometheusmetrics.NewMetrics(cfg.Metrics.Prometheus),
	}

	server := newPrometheusServer(cfg, engine)
	assert.Equal(t, "localhost:9100", server.Addr)
	assert.NotNil(t, server.Handler)
}

func TestServerShutdown(t *testing.T) {
	server := &http.Server{}
	ln := &mockListener{}

	stopper := make(chan os.Signal)
	done := make(chan struct{})
	go shutdownAfterSignals(server, stopper, done)
	go server.Serve(ln)

	stopper <- os.Interrupt
	<-done

	// If the test didn't hang, then we know server.Shutdown really _did_ return, and shutdownAfterSignals
	// passed the message along as expected.
}

func TestWait(t *testing.T) {
	inbound := make(chan os.Signal)
	chan1 := make(chan os.Signal)
	chan2 := make(chan os.Signal)
	chan3 := make(chan os.Signal)
	done := make(chan struct{})

	go forwardSignal(t, done, chan1)
	go forwardSignal(t, done, chan2)
	go forwardSignal(t, done, chan3)

	go func(chan os.Signal) {
		inbound <- os.Interrupt
	}(inbound)

	wait(inbound, done, chan1, chan2, chan3)
	// If this doesn't hang, then wait() is sending and receiving messages as expected.
}

func TestMonitorableListener(t *testing.T) {
	me := &metrics.MetricsEngineMock{}
	me.On("RecordNewConnection").Return()
	me.On("RecordClosedConnection").Return()

	ln, err := newListener("127.0.0.1:0", me)
	require.NoError(t, err)
	defer ln.Close()
	require.IsType(t, &monitorableListener{}, ln)

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			accepted <- conn
		}
		close(accepted)
	}()

	client, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer client.Close()

	conn, ok := <-accepted
	require.True(t, ok, "the listener should accept the connection")
	require.NoError(t, conn.Close())

	me.AssertNumberOfCalls(t, "RecordNewConnection", 1)
	me.AssertNumberOfCalls(t, "RecordClosedConnection", 1)
}

func TestUnmonitoredListener(t *testing.T) {
	ln, err := newListener("127.0.0.1:0", nil)
	require.NoError(t, err)
	defer ln.Close()
	assert.IsType(t, &tcpKeepAliveListener{}, ln)
}

func handler(w http.ResponseWriter, req *http.Request) {

}

// forwardSignal is basically a working mock for shutdownAfterSignals().
// It is used to test wait() effectively
func forwardSignal(t *testing.T, outbound chan<- struct{}, inbound <-chan os.Signal) {
	var s struct{}
	sig := <-inbound
	if sig != os.Interrupt {
		t.Errorf("Unexpected signal: %s\n", sig.String())
	}
	outbound <- s
}

// mockListener fails every Accept, so Serve returns right away.
type mockListener struct{}

func (l *mockListener) Accept() (net.Conn, error) {
	return nil, errors.New("mock listener does not accept connections")
}

func (l *mockListener) Close() error {
	return nil
}

func (l *mockListener) Addr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 8000}
}
