package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"80"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// NinjaVan account
	NinjaVanClientID     string `envconfig:"NINJAVAN_CLIENT_ID"`
	NinjaVanClientSecret string `envconfig:"NINJAVAN_CLIENT_SECRET"`
	NinjaVanBaseURL      string `envconfig:"NINJAVAN_BASE_URL" default:"https://api.ninjavan.co"`
	NinjaVanCountryCode  string `envconfig:"NINJAVAN_COUNTRY_CODE" default:"sg"`
	NinjaVanUseMock      bool   `envconfig:"NINJAVAN_USE_MOCK" default:"false"`

	// TrackingPrefix is the account prefix the carrier prepends to
	// requested tracking numbers.
	TrackingPrefix string `envconfig:"TRACKING_PREFIX"`

	// Webhooks. The secret falls back to the client secret, which is
	// what the carrier signs with unless configured otherwise.
	WebhookSecret    string   `envconfig:"WEBHOOK_SECRET"`
	RegisteredEvents []string `envconfig:"REGISTERED_EVENTS" default:"*"`

	// Token cache. An empty address selects the in-process store.
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"true"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://jaeger-collector.claude.svc.cluster.local:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"courier-bridge"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cfg.WebhookSecret == "" {
		cfg.WebhookSecret = cfg.NinjaVanClientSecret
	}
	return &cfg, nil
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.String("ninjavan.country_code", c.NinjaVanCountryCode),
		attribute.Bool("ninjavan.use_mock", c.NinjaVanUseMock),
		attribute.String("registered_events", strings.Join(c.RegisteredEvents, ",")),
	}
}
