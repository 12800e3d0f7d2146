package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissingRequired is wrapped by Load when a required value is unset.
var ErrMissingRequired = errors.New("required value missing")

// Default values for the relay configuration.
const (
	DefaultHTTPPort        = 8080
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultDeliveryTimeout = 10 * time.Second
	DefaultEnvFile         = "service.env"
	DefaultDestinationName = "Bitrix24"
	DefaultURLEnv          = "BITRIX24_WEBHOOK_URL"
	DefaultDialogIDEnv     = "BITRIX24_DIALOG_ID"
	DefaultAllowedEnvsEnv  = "ALLOWED_ENVIRONMENTS"
	DefaultDSNEnv          = "SENTRY_DSN"
)

// DefaultAllowedEnvironments are the production aliases notified by default.
var DefaultAllowedEnvironments = []string{"production", "prod"}

// Config is the full relay configuration.
type Config struct {
	// LogLevel is one of: debug | info | warn | error.
	LogLevel string `yaml:"log_level"`

	// EnvFile is a dotenv file loaded before environment resolution.
	// A missing file is not an error. Set to "-" to disable.
	EnvFile string `yaml:"env_file"`

	Server      ServerConfig      `yaml:"server"`
	Destination DestinationConfig `yaml:"destination"`
	Filter      FilterConfig      `yaml:"filter"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
}

// ServerConfig holds inbound HTTP settings.
type ServerConfig struct {
	HTTPPort        int           `yaml:"http_port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DestinationConfig describes the chat webhook messages are delivered to.
type DestinationConfig struct {
	// Name appears in caller-facing responses ("forwarded to <Name>").
	Name string `yaml:"name"`

	// Format is one of: text | dialog | "" (auto).
	Format string `yaml:"format"`

	// URLEnv is the name of the environment variable that holds the webhook URL.
	URLEnv string `yaml:"url_env"`

	// DialogIDEnv is the name of the environment variable that holds the
	// destination dialog/channel id.
	DialogIDEnv string `yaml:"dialog_id_env"`

	// Timeout bounds one delivery attempt.
	Timeout time.Duration `yaml:"timeout"`

	// URL and DialogID are resolved from the environment by Load.
	URL      string `yaml:"-"`
	DialogID string `yaml:"-"`
}

// EffectiveFormat returns Format, or "dialog" when Format is empty and a
// dialog id is configured, else "text".
func (d DestinationConfig) EffectiveFormat() string {
	if d.Format != "" {
		return d.Format
	}
	if d.DialogID != "" {
		return "dialog"
	}
	return "text"
}

// FilterConfig controls which event environments are relayed.
type FilterConfig struct {
	AllowedEnvironments []string `yaml:"allowed_environments"`

	// AllowedEnvironmentsEnv names a comma-separated environment variable
	// that replaces AllowedEnvironments when set.
	AllowedEnvironmentsEnv string `yaml:"allowed_environments_env"`
}

// TelemetryConfig configures Sentry reporting of the relay's own errors.
type TelemetryConfig struct {
	DSNEnv             string  `yaml:"dsn_env"`
	Environment        string  `yaml:"environment"`
	TracesSampleRate   float64 `yaml:"traces_sample_rate"`
	ProfilesSampleRate float64 `yaml:"profiles_sample_rate"`

	// DSN is resolved from the environment by Load.
	DSN string `yaml:"-"`
}

// Load builds the configuration. path may be empty, in which case only
// defaults, the env file and the environment are used.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("server config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("server config: parse yaml: %w", err)
		}
	}

	if err := loadEnvFile(cfg.EnvFile); err != nil {
		return nil, fmt.Errorf("server config: %w", err)
	}
	resolveEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("server config: %w", err)
	}
	return cfg, nil
}

// ParseEnvironments splits a comma-separated list, trimming and lowercasing
// each entry and dropping blanks and duplicates.
func ParseEnvironments(s string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, part := range strings.Split(s, ",") {
		env := strings.ToLower(strings.TrimSpace(part))
		if env == "" || seen[env] {
			continue
		}
		seen[env] = true
		out = append(out, env)
	}
	return out
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		LogLevel: "info",
		EnvFile:  DefaultEnvFile,
		Server: ServerConfig{
			HTTPPort:        DefaultHTTPPort,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Destination: DestinationConfig{
			Name:        DefaultDestinationName,
			URLEnv:      DefaultURLEnv,
			DialogIDEnv: DefaultDialogIDEnv,
			Timeout:     DefaultDeliveryTimeout,
		},
		Filter: FilterConfig{
			AllowedEnvironments:    append([]string(nil), DefaultAllowedEnvironments...),
			AllowedEnvironmentsEnv: DefaultAllowedEnvsEnv,
		},
		Telemetry: TelemetryConfig{
			DSNEnv:             DefaultDSNEnv,
			TracesSampleRate:   1.0,
			ProfilesSampleRate: 1.0,
		},
	}
}

func loadEnvFile(path string) error {
	if path == "" || path == "-" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %q: %w", path, err)
	}
	slog.Debug("config: env file loaded", "path", path)
	return nil
}

func resolveEnv(cfg *Config) {
	d := &cfg.Destination
	d.Format = strings.ToLower(strings.TrimSpace(d.Format))
	d.URL = strings.TrimSpace(lookup(d.URLEnv))
	d.DialogID = strings.TrimSpace(lookup(d.DialogIDEnv))

	if v, ok := os.LookupEnv(cfg.Filter.AllowedEnvironmentsEnv); ok && cfg.Filter.AllowedEnvironmentsEnv != "" {
		cfg.Filter.AllowedEnvironments = ParseEnvironments(v)
	} else {
		cfg.Filter.AllowedEnvironments = ParseEnvironments(strings.Join(cfg.Filter.AllowedEnvironments, ","))
	}

	cfg.Telemetry.DSN = strings.TrimSpace(lookup(cfg.Telemetry.DSNEnv))
}

func lookup(name string) string {
	if name == "" {
		return ""
	}
	return os.Getenv(name)
}

// validate checks structural constraints and required values.
func validate(cfg *Config) error {
	if cfg.Destination.URL == "" {
		return fmt.Errorf("destination url (env %s): %w", cfg.Destination.URLEnv, ErrMissingRequired)
	}
	if cfg.Telemetry.DSN == "" {
		return fmt.Errorf("telemetry dsn (env %s): %w", cfg.Telemetry.DSNEnv, ErrMissingRequired)
	}
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", cfg.Server.HTTPPort)
	}
	switch cfg.Destination.Format {
	case "text", "dialog", "":
	default:
		return fmt.Errorf("destination.format %q unknown: want text|dialog", cfg.Destination.Format)
	}
	if cfg.Destination.EffectiveFormat() == "dialog" && cfg.Destination.DialogID == "" {
		return fmt.Errorf("destination.format dialog needs a dialog id (env %s): %w",
			cfg.Destination.DialogIDEnv, ErrMissingRequired)
	}
	if cfg.Destination.Timeout <= 0 {
		return fmt.Errorf("destination.timeout must be positive")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q unknown: want debug|info|warn|error", cfg.LogLevel)
	}
	if r := cfg.Telemetry.TracesSampleRate; r < 0 || r > 1 {
		return fmt.Errorf("telemetry.traces_sample_rate %v is out of range [0, 1]", r)
	}
	if r := cfg.Telemetry.ProfilesSampleRate; r < 0 || r > 1 {
		return fmt.Errorf("telemetry.profiles_sample_rate %v is out of range [0, 1]", r)
	}
	return nil
}

// Level maps LogLevel to a slog.Level.
func (c *Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
