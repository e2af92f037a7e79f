// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App          AppConfig          `mapstructure:"app"`
	VenueK       VenueKConfig       `mapstructure:"venue_k"`
	VenueP       VenueConfig        `mapstructure:"venue_p"`
	Ingest       IngestConfig       `mapstructure:"ingest"`
	Arbitrage    ArbitrageConfig    `mapstructure:"arbitrage"`
	Coordination CoordinationConfig `mapstructure:"coordination"`
	Broadcast    BroadcastConfig    `mapstructure:"broadcast"`
	Telemetry    TelemetryConfig    `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	TUIMode     bool   `mapstructure:"-"` // set at runtime, not from config file
}

// VenueConfig holds the connection settings shared by both venues.
type VenueConfig struct {
	WebSocketURL   string        `mapstructure:"websocket_url"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay"`
	PingInterval   time.Duration `mapstructure:"ping_interval"`
}

// VenueKConfig extends VenueConfig with the RSA auth material venue K's
// WebSocket upgrade requires.
type VenueKConfig struct {
	VenueConfig          `mapstructure:",squash"`
	KeyID                string `mapstructure:"key_id"`
	PrivateKeyPath       string `mapstructure:"private_key_path"`
	TickerBootstrapURL   string `mapstructure:"ticker_bootstrap_url"`
	MakerFeeTickerPrefix string `mapstructure:"maker_fee_ticker_prefix"`
}

// IngestConfig tunes the bounded FIFO each venue client feeds.
type IngestConfig struct {
	QueueCapacity int `mapstructure:"queue_capacity"`
}

// ArbitrageConfig holds arbitrage detection configuration. Thresholds are
// runtime-tunable via SettingsCoordinator; the config values are only the
// startup defaults.
type ArbitrageConfig struct {
	MinSpreadThreshold float64 `mapstructure:"min_spread_threshold"`
	MinTradeSize       float64 `mapstructure:"min_trade_size"`
	PublishIntervalSec int     `mapstructure:"publish_interval_seconds"`
}

// MinSpreadThresholdDecimal returns the configured threshold as a decimal.
func (c *ArbitrageConfig) MinSpreadThresholdDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinSpreadThreshold)
}

// MinTradeSizeDecimal returns the configured minimum trade size as a decimal.
func (c *ArbitrageConfig) MinTradeSizeDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinTradeSize)
}

// PublishInterval returns the ticker publish period as a Duration.
func (c *ArbitrageConfig) PublishInterval() time.Duration {
	return time.Duration(c.PublishIntervalSec) * time.Second
}

// CoordinationConfig tunes the 2-phase-commit coordination bus.
type CoordinationConfig struct {
	PrepareTimeoutSeconds   int `mapstructure:"prepare_timeout_seconds"`
	CleanupIntervalSeconds  int `mapstructure:"cleanup_interval_seconds"`
}

// PrepareTimeout returns the per-phase coordination timeout as a Duration.
func (c *CoordinationConfig) PrepareTimeout() time.Duration {
	return time.Duration(c.PrepareTimeoutSeconds) * time.Second
}

// BroadcastConfig holds the client-facing WebSocket server settings.
type BroadcastConfig struct {
	ListenAddr       string  `mapstructure:"listen_addr"`
	ClientSendRateHz float64 `mapstructure:"client_send_rate_hz"`
	ClientSendBurst  int     `mapstructure:"client_send_burst"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("ARBX")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars and defaults.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "ARBX_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "ARBX_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "ARBX_LOG_LEVEL", "LOG_LEVEL")

	// Venue K
	v.BindEnv("venue_k.websocket_url", "ARBX_VENUE_K_WS_URL", "KALSHI_WS_URL")
	v.BindEnv("venue_k.key_id", "ARBX_VENUE_K_KEY_ID", "KALSHI_KEY_ID")
	v.BindEnv("venue_k.private_key_path", "ARBX_VENUE_K_PRIVATE_KEY_PATH", "KALSHI_PRIVATE_KEY_PATH")

	// Venue P
	v.BindEnv("venue_p.websocket_url", "ARBX_VENUE_P_WS_URL", "POLYMARKET_WS_URL")

	// Ingest
	v.BindEnv("ingest.queue_capacity", "ARBX_INGEST_QUEUE_CAPACITY")

	// Arbitrage
	v.BindEnv("arbitrage.min_spread_threshold", "ARBX_MIN_SPREAD_THRESHOLD")
	v.BindEnv("arbitrage.min_trade_size", "ARBX_MIN_TRADE_SIZE")
	v.BindEnv("arbitrage.publish_interval_seconds", "ARBX_PUBLISH_INTERVAL_SECONDS")

	// Coordination
	v.BindEnv("coordination.prepare_timeout_seconds", "ARBX_COORD_PREPARE_TIMEOUT_SECONDS")

	// Telemetry
	v.BindEnv("telemetry.enabled", "ARBX_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "ARBX_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "ARBX_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "polykalshi-bridge")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Venue K defaults
	v.SetDefault("venue_k.websocket_url", "wss://trading-api.kalshi.com/trade-api/ws/v2")
	v.SetDefault("venue_k.max_reconnects", 3)
	v.SetDefault("venue_k.reconnect_delay", "2s")
	v.SetDefault("venue_k.ping_interval", "10s")
	v.SetDefault("venue_k.ticker_bootstrap_url", "https://trading-api.kalshi.com/trade-api/v2/markets")
	v.SetDefault("venue_k.maker_fee_ticker_prefix", "KXHIGHNY")

	// Venue P defaults
	v.SetDefault("venue_p.websocket_url", "wss://ws-subscriptions-clob.polymarket.com/ws/market")
	v.SetDefault("venue_p.max_reconnects", 3)
	v.SetDefault("venue_p.reconnect_delay", "2s")
	v.SetDefault("venue_p.ping_interval", "10s")

	// Ingest defaults
	v.SetDefault("ingest.queue_capacity", 1000)

	// Arbitrage defaults
	v.SetDefault("arbitrage.min_spread_threshold", 0.02)
	v.SetDefault("arbitrage.min_trade_size", 1.0)
	v.SetDefault("arbitrage.publish_interval_seconds", 5)

	// Coordination defaults
	v.SetDefault("coordination.prepare_timeout_seconds", 30)
	v.SetDefault("coordination.cleanup_interval_seconds", 5)

	// Broadcast defaults
	v.SetDefault("broadcast.listen_addr", ":8090")
	v.SetDefault("broadcast.client_send_rate_hz", 20.0)
	v.SetDefault("broadcast.client_send_burst", 40)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "polykalshi-bridge")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.VenueK.WebSocketURL == "" {
		return fmt.Errorf("venue_k.websocket_url is required")
	}
	if c.VenueP.WebSocketURL == "" {
		return fmt.Errorf("venue_p.websocket_url is required")
	}
	if c.Ingest.QueueCapacity <= 0 {
		return fmt.Errorf("ingest.queue_capacity must be positive")
	}
	if c.Arbitrage.PublishIntervalSec <= 0 {
		return fmt.Errorf("arbitrage.publish_interval_seconds must be positive")
	}
	if c.Coordination.PrepareTimeoutSeconds <= 0 {
		return fmt.Errorf("coordination.prepare_timeout_seconds must be positive")
	}
	return nil
}
