// Package config provides application configuration from defaults, an optional
// config file and SWAPI_* environment variables
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. SWAPI_UPSTREAM_BASE_URL
const EnvPrefix = "SWAPI"

// AppConfig holds all application configuration
type AppConfig struct {
	Server   ServerConfig
	Upstream UpstreamConfig
	Database DatabaseConfig
	Log      LogConfig
}

// ServerConfig configures the inbound HTTP surface
type ServerConfig struct {
	Addr            string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

// UpstreamConfig configures calls to the remote catalog
type UpstreamConfig struct {
	BaseURL            string
	Timeout            time.Duration
	RateLimit          float64
	Burst              int
	InsecureSkipVerify bool
	// MaxPages caps one aggregation walk; 0 means no cap.
	MaxPages int
}

// DatabaseConfig configures the optional walk log. An empty URL disables it.
type DatabaseConfig struct {
	URL string
}

// LogConfig configures the zerolog output
type LogConfig struct {
	Level  string
	Format string
}

// SetDefaults registers every key with its default value
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":6969")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173", "http://localhost:3000"})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("upstream.base_url", "https://swapi.dev/api")
	v.SetDefault("upstream.timeout", 30*time.Second)
	v.SetDefault("upstream.rate_limit", 10.0)
	v.SetDefault("upstream.burst", 5)
	v.SetDefault("upstream.insecure_skip_verify", false)
	v.SetDefault("upstream.max_pages", 0)

	v.SetDefault("database.url", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// NewViper returns a viper instance with defaults and environment overrides wired.
// configFile may be empty, in which case config.yaml is searched for in the
// working directory and /etc/go-swapi.
func NewViper(configFile string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/go-swapi")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads the optional config file and decodes the result.
// A missing config file is not an error; defaults and env still apply.
func LoadConfig(v *viper.Viper) (*AppConfig, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &AppConfig{
		Server: ServerConfig{
			Addr:            v.GetString("server.addr"),
			AllowedOrigins:  stringList(v, "server.allowed_origins"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Upstream: UpstreamConfig{
			BaseURL:            strings.TrimRight(v.GetString("upstream.base_url"), "/"),
			Timeout:            v.GetDuration("upstream.timeout"),
			RateLimit:          v.GetFloat64("upstream.rate_limit"),
			Burst:              v.GetInt("upstream.burst"),
			InsecureSkipVerify: v.GetBool("upstream.insecure_skip_verify"),
			MaxPages:           v.GetInt("upstream.max_pages"),
		},
		Database: DatabaseConfig{
			URL: v.GetString("database.url"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// stringList reads a list key. A plain string, as set through the environment,
// is split on commas.
func stringList(v *viper.Viper, key string) []string {
	raw, ok := v.Get(key).(string)
	if !ok {
		return v.GetStringSlice(key)
	}
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate rejects values the services cannot run with
func (c *AppConfig) Validate() error {
	if c.Upstream.BaseURL == "" {
		return errors.New("upstream.base_url must be set")
	}
	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("upstream.timeout must be > 0, got %s", c.Upstream.Timeout)
	}
	if c.Upstream.RateLimit < 0 {
		return fmt.Errorf("upstream.rate_limit must be >= 0, got %v", c.Upstream.RateLimit)
	}
	if c.Upstream.MaxPages < 0 {
		return fmt.Errorf("upstream.max_pages must be >= 0, got %d", c.Upstream.MaxPages)
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr must be set")
	}
	return nil
}
