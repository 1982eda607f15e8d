package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/sirosfoundation/go-http-component/pkg/logging"
)

const (
	// DefaultHost is the bind address used when none is configured
	DefaultHost = "127.0.0.1"
	// DefaultPort is the listen port used when none is configured
	DefaultPort = "8087"

	// ClusterPortSuffix marks a base port as cluster-indexed, e.g. "3000++"
	ClusterPortSuffix = "++"

	envPrefix = "HTTPC"
)

// Config represents the application configuration. Environment overrides
// are named HTTPC_<SECTION>_<FIELD>, e.g. HTTPC_METRICS_PATH; there is no
// unprefixed fallback, so PATH or PORT from the environment never apply.
type Config struct {
	Server    ServerConfig    `yaml:"server" split_words:"true"`
	App       AppConfig       `yaml:"app" split_words:"true"`
	Logging   logging.Config  `yaml:"logging" split_words:"true"`
	CORS      CORSConfig      `yaml:"cors" split_words:"true"`
	RateLimit RateLimitConfig `yaml:"rate_limit" split_words:"true"`
	Auth      AuthConfig      `yaml:"auth" split_words:"true"`
	Metrics   MetricsConfig   `yaml:"metrics" split_words:"true"`
}

// ServerConfig contains HTTP listener configuration
type ServerConfig struct {
	Host string `yaml:"host" split_words:"true" validate:"required"`
	// Port is either a plain port number or, with IsCluster, a base port
	// pattern like "3000++" that is offset by the worker index.
	Port      string `yaml:"port" split_words:"true" validate:"required"`
	IsCluster bool   `yaml:"is_cluster" split_words:"true"`

	UseSSL   bool   `yaml:"use_ssl" split_words:"true"`
	KeyFile  string `yaml:"key_file" split_words:"true" validate:"required_if=UseSSL true"`
	CertFile string `yaml:"cert_file" split_words:"true" validate:"required_if=UseSSL true"`

	// TrustedProxies are the proxies whose forwarding headers are used to
	// determine the client IP.
	TrustedProxies []string `yaml:"trusted_proxies" split_words:"true"`

	ReadTimeout  time.Duration `yaml:"read_timeout" split_words:"true"`
	WriteTimeout time.Duration `yaml:"write_timeout" split_words:"true"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" split_words:"true"`
}

// AppConfig identifies the application process that owns the listener
type AppConfig struct {
	// Base is the application base directory. TLS material and route
	// descriptors are resolved relative to it.
	Base       string `yaml:"base" split_words:"true" validate:"required"`
	ServerType string `yaml:"server_type" split_words:"true" validate:"required"`
	ServerID   string `yaml:"server_id" split_words:"true"`
}

// CORSConfig contains CORS filter configuration
type CORSConfig struct {
	Enabled          bool     `yaml:"enabled" split_words:"true"`
	AllowedOrigins   []string `yaml:"allowed_origins" split_words:"true"`
	AllowedMethods   []string `yaml:"allowed_methods" split_words:"true"`
	AllowedHeaders   []string `yaml:"allowed_headers" split_words:"true"`
	ExposedHeaders   []string `yaml:"exposed_headers" split_words:"true"`
	AllowCredentials bool     `yaml:"allow_credentials" split_words:"true"`
	MaxAge           int      `yaml:"max_age" split_words:"true"` // seconds
}

// RateLimitConfig contains per-client rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled" split_words:"true"`
	RequestsPerSecond float64 `yaml:"requests_per_second" split_words:"true" validate:"required_if=Enabled true,gte=0"`
	Burst             int     `yaml:"burst" split_words:"true" validate:"gte=0"`
}

// AuthConfig contains bearer token authentication configuration
type AuthConfig struct {
	Enabled   bool   `yaml:"enabled" split_words:"true"`
	JWTSecret string `yaml:"jwt_secret" split_words:"true" validate:"required_if=Enabled true"`
	Issuer    string `yaml:"issuer" split_words:"true"`
	// SkipPaths are request paths served without a token. The root health
	// route is always skipped.
	SkipPaths []string `yaml:"skip_paths" split_words:"true"`
}

// MetricsConfig contains Prometheus metrics configuration
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" split_words:"true"`
	Namespace string `yaml:"namespace" split_words:"true"`
	Path      string `yaml:"path" split_words:"true" validate:"required_if=Enabled true"`
}

// Load loads configuration from file and environment variables
func Load(configFile string) (*Config, error) {
	cfg := defaultConfig()

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			// File doesn't exist, that's ok - we'll use defaults and env vars
		} else {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Environment variables have the highest priority
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible default values
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         DefaultHost,
			Port:         DefaultPort,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		App: AppConfig{
			Base:       ".",
			ServerType: "http",
		},
		Logging: logging.DefaultConfig(),
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         12 * 60 * 60,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 50,
			Burst:             100,
		},
		Auth: AuthConfig{
			Issuer: "go-http-component",
		},
		Metrics: MetricsConfig{
			Namespace: "http_component",
			Path:      "/metrics",
		},
	}
}

var validate = validator.New()

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s failed on %q", fe.Namespace(), fe.Tag())
		}
		return err
	}

	if c.CORS.Enabled && len(c.CORS.AllowedOrigins) == 0 {
		return fmt.Errorf("cors.allowed_origins is required when cors is enabled")
	}

	if c.Server.IsCluster {
		if !IsClusterPort(c.Server.Port) {
			return fmt.Errorf("http cluster expects port format like \"3000++\", got %q", c.Server.Port)
		}
		if c.App.ServerID == "" {
			return fmt.Errorf("server_id is required when is_cluster is set")
		}
	} else {
		port, err := strconv.Atoi(c.Server.Port)
		if err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("invalid server port: %q", c.Server.Port)
		}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Logging.Format)
	}

	return nil
}

// IsClusterPort reports whether port has the "<digits>++" cluster form
func IsClusterPort(port string) bool {
	digits, ok := strings.CutSuffix(port, ClusterPortSuffix)
	if !ok || digits == "" {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Address returns the configured bind address. In cluster mode the port is
// still the unresolved pattern.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}
