package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for the server configuration.
const (
	DefaultHTTPPort        = 5000
	DefaultServiceName     = "Spoilage Analysis Service"
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultPingInterval    = 30 * time.Second
	DefaultAlertCooldown   = 15 * time.Minute
	DefaultAuthHeader      = "x-api-key"
)

// Config holds the server configuration parsed from the `server:` section of
// config.yaml. Other top-level keys are ignored.
type Config struct {
	Server ServerConfig `yaml:"server"`
}

// ServerConfig holds all server-side settings.
type ServerConfig struct {
	// HTTPPort is the port the HTTP API listens on (default 5000).
	HTTPPort int `yaml:"http_port"`

	// ServiceName is reported by GET /health.
	ServiceName string `yaml:"service_name"`

	// LogLevel is one of: debug | info | warn | error.
	LogLevel string `yaml:"log_level"`

	// Debug forces debug-level logging regardless of LogLevel.
	Debug bool `yaml:"debug"`

	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	CORS    CORSConfig    `yaml:"cors"`
	Auth    AuthConfig    `yaml:"auth"`
	Dataset DatasetConfig `yaml:"dataset"`
	Stream  StreamConfig  `yaml:"stream"`
	Alerts  AlertsConfig  `yaml:"alerts"`
}

// Level returns the effective slog level.
func (s ServerConfig) Level() slog.Level {
	if s.Debug {
		return slog.LevelDebug
	}
	switch strings.ToLower(s.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// CORSConfig controls cross-origin response headers.
type CORSConfig struct {
	// AllowedOrigins lists origins that may call the API. "*" allows any
	// origin; an empty list disables CORS headers entirely.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// AuthConfig controls client authentication on the analysis routes.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// KeyEnv is the name of the environment variable that holds the expected API key.
	KeyEnv string `yaml:"key_env"`

	// Header is the HTTP header to read the key from. Defaults to "x-api-key".
	Header string `yaml:"header"`
}

// Key returns the expected API key resolved from the environment.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// EffectiveHeader returns the configured header name, or the default "x-api-key".
func (a AuthConfig) EffectiveHeader() string {
	if a.Header != "" {
		return a.Header
	}
	return DefaultAuthHeader
}

// DatasetConfig points at the labelled sample CSV served by /api/dataset.
type DatasetConfig struct {
	// Path is the CSV file location. Empty disables the route.
	Path string `yaml:"path"`
}

// StreamConfig controls the WebSocket analysis stream.
type StreamConfig struct {
	Enabled bool `yaml:"enabled"`

	// PingInterval is how often the hub pings idle clients.
	PingInterval time.Duration `yaml:"ping_interval"`
}

// AlertsConfig holds spoilage alert delivery settings.
type AlertsConfig struct {
	// Cooldown suppresses repeat alerts for the same device.
	Cooldown time.Duration `yaml:"cooldown"`

	Webhooks []WebhookConfig `yaml:"webhooks"`
}

// WebhookConfig defines one webhook delivery target.
type WebhookConfig struct {
	// Type is one of: teams | slack | http.
	Type string `yaml:"type"`

	// URLEnv is the name of the environment variable that holds the webhook URL.
	URLEnv string `yaml:"url_env"`
}

// URL returns the webhook URL resolved from the environment.
func (w WebhookConfig) URL() string {
	if w.URLEnv == "" {
		return ""
	}
	return os.Getenv(w.URLEnv)
}

// Load reads and parses the config file at path, returning the server configuration.
// Missing fields are filled with defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("server config: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("server config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("server config: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration used when no file is given.
func Default() *Config {
	return defaults()
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        DefaultHTTPPort,
			ServiceName:     DefaultServiceName,
			LogLevel:        DefaultLogLevel,
			ShutdownTimeout: DefaultShutdownTimeout,
			CORS: CORSConfig{
				AllowedOrigins: []string{"*"},
			},
			Stream: StreamConfig{
				Enabled:      true,
				PingInterval: DefaultPingInterval,
			},
			Alerts: AlertsConfig{
				Cooldown: DefaultAlertCooldown,
			},
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	s := cfg.Server
	if s.HTTPPort <= 0 || s.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", s.HTTPPort)
	}
	if strings.TrimSpace(s.ServiceName) == "" {
		return fmt.Errorf("server.service_name must not be empty")
	}
	switch strings.ToLower(s.LogLevel) {
	case "debug", "info", "warn", "warning", "error", "":
	default:
		return fmt.Errorf("server.log_level %q unknown: want debug|info|warn|error", s.LogLevel)
	}
	if s.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}
	switch s.Auth.Mode {
	case "apikey", "none", "":
	default:
		return fmt.Errorf("server.auth.mode %q unknown: want apikey|none", s.Auth.Mode)
	}
	if s.Stream.PingInterval <= 0 {
		return fmt.Errorf("server.stream.ping_interval must be positive")
	}
	if s.Alerts.Cooldown < 0 {
		return fmt.Errorf("server.alerts.cooldown must not be negative")
	}
	for i, wh := range s.Alerts.Webhooks {
		switch wh.Type {
		case "slack", "teams", "http":
		default:
			return fmt.Errorf("server.alerts.webhooks[%d]: unknown type %q", i, wh.Type)
		}
		if wh.URLEnv == "" {
			return fmt.Errorf("server.alerts.webhooks[%d]: url_env is required", i)
		}
	}
	return nil
}
