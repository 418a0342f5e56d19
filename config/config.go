package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	validator "github.com/asaskevich/govalidator"
	"github.com/golang/glog"
	"github.com/prebid/prebid-rtb-gateway/errortypes"
	"github.com/spf13/viper"
	"golang.org/x/text/currency"
)

// Configuration specifies the static application config.
type Configuration struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	AdminPort int    `mapstructure:"admin_port"`
	// EnableGzip compresses responses when the client accepts it
	EnableGzip     bool   `mapstructure:"enable_gzip"`
	StatusResponse string `mapstructure:"status_response"`
	// MaxRequestSize caps the bytes read from a bid request body. Zero disables the cap.
	MaxRequestSize int64 `mapstructure:"max_request_size"`

	OpenRTB OpenRTB `mapstructure:"openrtb"`
	Metrics Metrics `mapstructure:"metrics"`

	// Exchanges configures the exchanges allowed to send traffic, keyed by source name.
	Exchanges map[string]Exchange `mapstructure:"exchanges"`
	// ExchangeInfoDir holds <source>.yaml files describing exchanges not listed in Exchanges.
	// They are read the first time such a source sends a request.
	ExchangeInfoDir string `mapstructure:"exchange_info_dir"`
	// DefaultExchange is the source assumed when a request does not name one.
	DefaultExchange string `mapstructure:"default_exchange"`
}

type OpenRTB struct {
	// Version is the x-openrtb-version header value the OpenRTB endpoint accepts.
	Version       string `mapstructure:"version"`
	DefaultTMaxMs int64  `mapstructure:"default_tmax_ms"`
	// GenerateBidID fills bidresponse.bidid with a random UUID.
	GenerateBidID bool `mapstructure:"generate_bid_id"`
}

// Exchange configures one source of bid requests. The same struct is read from the exchange
// info files, so it carries both yaml and mapstructure mappings.
type Exchange struct {
	// Dialect selects the parser builder, e.g. "openrtb".
	Dialect string `yaml:"dialect" mapstructure:"dialect"`
	// Provider is recorded on each request as its provider. Defaults to the source name.
	Provider string `yaml:"provider" mapstructure:"provider"`
	// DefaultCurrency is used when a request does not declare the currencies it accepts.
	DefaultCurrency string `yaml:"defaultCurrency" mapstructure:"default_currency"`
	// Seat is written into responses as seatbid.seat when set.
	Seat     string `yaml:"seat" mapstructure:"seat"`
	Disabled bool   `yaml:"disabled" mapstructure:"disabled"`
}

const DefaultDialect = "openrtb"

// DialectOrDefault returns the configured dialect, or the OpenRTB dialect when none is set.
func (e Exchange) DialectOrDefault() string {
	if e.Dialect == "" {
		return DefaultDialect
	}
	return e.Dialect
}

// Currency returns the default currency, USD when none is configured.
func (e Exchange) Currency() currency.Unit {
	if e.DefaultCurrency == "" {
		return currency.USD
	}
	unit, err := currency.ParseISO(e.DefaultCurrency)
	if err != nil {
		return currency.USD
	}
	return unit
}

func (e Exchange) validate(name string, errs []error) []error {
	if e.DefaultCurrency != "" {
		if _, err := currency.ParseISO(e.DefaultCurrency); err != nil {
			errs = append(errs, fmt.Errorf("exchanges.%s.default_currency %q is not an ISO 4217 code", name, e.DefaultCurrency))
		}
	}
	return errs
}

type Metrics struct {
	Influxdb   InfluxMetrics     `mapstructure:"influxdb"`
	Prometheus PrometheusMetrics `mapstructure:"prometheus"`
}

type InfluxMetrics struct {
	Host     string `mapstructure:"host"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	// MetricSendInterval is the number of seconds between reports to InfluxDB.
	MetricSendInterval int `mapstructure:"metric_send_interval"`
}

func (m InfluxMetrics) validate(errs []error) []error {
	if m.Host != "" && !validator.IsURL(m.Host) {
		errs = append(errs, fmt.Errorf("metrics.influxdb.host %q is not a URL", m.Host))
	}
	if m.Host != "" && m.MetricSendInterval <= 0 {
		errs = append(errs, fmt.Errorf("metrics.influxdb.metric_send_interval must be positive, got %d", m.MetricSendInterval))
	}
	return errs
}

type PrometheusMetrics struct {
	Port             int    `mapstructure:"port"`
	Namespace        string `mapstructure:"namespace"`
	Subsystem        string `mapstructure:"subsystem"`
	TimeoutMillisRaw int    `mapstructure:"timeout_ms"`
}

// Timeout bounds the time spent serving one scrape.
func (cfg *PrometheusMetrics) Timeout() time.Duration {
	return time.Duration(cfg.TimeoutMillisRaw) * time.Millisecond
}

func (cfg *Configuration) validate() []error {
	var errs []error
	if cfg.Port == cfg.AdminPort && cfg.Port != 0 {
		errs = append(errs, errors.New("port and admin_port must differ"))
	}
	if cfg.OpenRTB.Version == "" {
		errs = append(errs, errors.New("openrtb.version must be set"))
	}
	if cfg.MaxRequestSize < 0 {
		errs = append(errs, fmt.Errorf("max_request_size must not be negative, got %d", cfg.MaxRequestSize))
	}
	if cfg.OpenRTB.DefaultTMaxMs <= 0 {
		errs = append(errs, fmt.Errorf("openrtb.default_tmax_ms must be positive, got %d", cfg.OpenRTB.DefaultTMaxMs))
	}
	errs = cfg.Metrics.Influxdb.validate(errs)
	if cfg.Metrics.Prometheus.Port != 0 {
		if cfg.Metrics.Prometheus.Port == cfg.Port || cfg.Metrics.Prometheus.Port == cfg.AdminPort {
			errs = append(errs, errors.New("metrics.prometheus.port must differ from port and admin_port"))
		}
		if cfg.Metrics.Prometheus.TimeoutMillisRaw <= 0 {
			errs = append(errs, fmt.Errorf("metrics.prometheus.timeout_ms must be positive, got %d", cfg.Metrics.Prometheus.TimeoutMillisRaw))
		}
	}
	for name, exchange := range cfg.Exchanges {
		errs = exchange.validate(name, errs)
	}
	if cfg.DefaultExchange != "" {
		if exchange, ok := cfg.Exchanges[cfg.DefaultExchange]; ok && exchange.Disabled {
			errs = append(errs, fmt.Errorf("default_exchange %q is disabled", cfg.DefaultExchange))
		}
	}
	return errs
}

// New uses viper to get our server configurations.
func New(v *viper.Viper) (*Configuration, error) {
	var c Configuration
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("viper failed to unmarshal app config: %v", err)
	}

	// viper lower cases map keys read from files but not the ones set in code
	exchanges := make(map[string]Exchange, len(c.Exchanges))
	for name, exchange := range c.Exchanges {
		exchanges[strings.ToLower(name)] = exchange
	}
	c.Exchanges = exchanges
	c.DefaultExchange = strings.ToLower(c.DefaultExchange)

	if errs := c.validate(); len(errs) > 0 {
		return &c, errortypes.NewAggregateErrors("configuration is invalid", errs)
	}
	return &c, nil
}

// Exchange returns the configuration of an enabled exchange.
func (cfg *Configuration) Exchange(source string) (Exchange, bool) {
	exchange, ok := cfg.Exchanges[strings.ToLower(source)]
	if !ok || exchange.Disabled {
		return Exchange{}, false
	}
	return exchange, true
}

// EnabledExchanges lists the sources of the enabled exchanges in name order.
func (cfg *Configuration) EnabledExchanges() []string {
	sources := make([]string, 0, len(cfg.Exchanges))
	for source, exchange := range cfg.Exchanges {
		if !exchange.Disabled {
			sources = append(sources, source)
		}
	}
	sort.Strings(sources)
	return sources
}

// SetupViper registers the defaults and the sources viper reads the configuration from.
// Environment variables override the file, e.g. RTBGW_OPENRTB_VERSION for openrtb.version.
func SetupViper(v *viper.Viper, filename string) {
	if filename != "" {
		v.SetConfigName(filename)
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/config")
	}

	v.SetDefault("host", "")
	v.SetDefault("port", 8000)
	v.SetDefault("admin_port", 6060)
	v.SetDefault("enable_gzip", false)
	v.SetDefault("status_response", "")
	v.SetDefault("max_request_size", 1024*256)
	v.SetDefault("openrtb.version", "2.1")
	v.SetDefault("openrtb.default_tmax_ms", 10)
	v.SetDefault("openrtb.generate_bid_id", false)
	v.SetDefault("metrics.influxdb.host", "")
	v.SetDefault("metrics.influxdb.database", "")
	v.SetDefault("metrics.influxdb.username", "")
	v.SetDefault("metrics.influxdb.password", "")
	v.SetDefault("metrics.influxdb.metric_send_interval", 20)
	v.SetDefault("metrics.prometheus.port", 0)
	v.SetDefault("metrics.prometheus.namespace", "rtbgw")
	v.SetDefault("metrics.prometheus.subsystem", "")
	v.SetDefault("metrics.prometheus.timeout_ms", 10000)
	v.SetDefault("exchange_info_dir", "./static/exchange-info")
	v.SetDefault("default_exchange", "")

	v.SetEnvPrefix("RTBGW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if filename != "" {
		if err := v.ReadInConfig(); err != nil {
			glog.Infof("Config file %s could not be read, using defaults and environment: %v", filename, err)
		}
	}
}
