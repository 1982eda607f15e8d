package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := defaultConfig()
	cfg.App.Base = "/srv/app"
	cfg.App.ServerType = "connector"
	cfg.App.ServerID = "connector-1"
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "8087", cfg.Server.Port)
	assert.False(t, cfg.Server.IsCluster)
	assert.False(t, cfg.Server.UseSSL)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(*Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:   "valid config",
			modify: func(c *Config) {},
		},
		{
			name:        "port not a number",
			modify:      func(c *Config) { c.Server.Port = "http" },
			expectError: true,
			errorMsg:    "invalid server port",
		},
		{
			name:        "port zero",
			modify:      func(c *Config) { c.Server.Port = "0" },
			expectError: true,
			errorMsg:    "invalid server port",
		},
		{
			name:        "port too high",
			modify:      func(c *Config) { c.Server.Port = "65536" },
			expectError: true,
			errorMsg:    "invalid server port",
		},
		{
			name:        "cluster pattern without cluster flag",
			modify:      func(c *Config) { c.Server.Port = "3000++" },
			expectError: true,
			errorMsg:    "invalid server port",
		},
		{
			name: "cluster with pattern",
			modify: func(c *Config) {
				c.Server.IsCluster = true
				c.Server.Port = "3000++"
			},
		},
		{
			name: "cluster without pattern",
			modify: func(c *Config) {
				c.Server.IsCluster = true
				c.Server.Port = "3000"
			},
			expectError: true,
			errorMsg:    "3000++",
		},
		{
			name: "cluster without server id",
			modify: func(c *Config) {
				c.Server.IsCluster = true
				c.Server.Port = "3000++"
				c.App.ServerID = ""
			},
			expectError: true,
			errorMsg:    "server_id is required",
		},
		{
			name:        "ssl without key file",
			modify:      func(c *Config) { c.Server.UseSSL = true; c.Server.CertFile = "cert.pem" },
			expectError: true,
			errorMsg:    "KeyFile",
		},
		{
			name:        "ssl without cert file",
			modify:      func(c *Config) { c.Server.UseSSL = true; c.Server.KeyFile = "key.pem" },
			expectError: true,
			errorMsg:    "CertFile",
		},
		{
			name: "ssl with both files",
			modify: func(c *Config) {
				c.Server.UseSSL = true
				c.Server.KeyFile = "key.pem"
				c.Server.CertFile = "cert.pem"
			},
		},
		{
			name:        "missing server type",
			modify:      func(c *Config) { c.App.ServerType = "" },
			expectError: true,
			errorMsg:    "ServerType",
		},
		{
			name:        "auth without secret",
			modify:      func(c *Config) { c.Auth.Enabled = true },
			expectError: true,
			errorMsg:    "JWTSecret",
		},
		{
			name: "cors enabled without origins",
			modify: func(c *Config) {
				c.CORS.Enabled = true
				c.CORS.AllowedOrigins = []string{}
			},
			expectError: true,
			errorMsg:    "cors.allowed_origins",
		},
		{
			name:   "cors enabled with origins",
			modify: func(c *Config) { c.CORS.Enabled = true },
		},
		{
			name:        "invalid log level",
			modify:      func(c *Config) { c.Logging.Level = "verbose" },
			expectError: true,
			errorMsg:    "invalid log level",
		},
		{
			name:        "invalid log format",
			modify:      func(c *Config) { c.Logging.Format = "xml" },
			expectError: true,
			errorMsg:    "invalid log format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsClusterPort(t *testing.T) {
	tests := []struct {
		port     string
		expected bool
	}{
		{"3000++", true},
		{"0++", true},
		{"3000", false},
		{"++", false},
		{"3000+", false},
		{"30a0++", false},
		{"-1++", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.port, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsClusterPort(tt.port))
		})
	}
}

func TestServerConfig_Address(t *testing.T) {
	cfg := ServerConfig{Host: "localhost", Port: "8080"}
	assert.Equal(t, "localhost:8080", cfg.Address())
}

func TestLoad_NonExistentFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultHost, cfg.Server.Host)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
}

func TestLoad_ValidYAMLFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	content := `
server:
  host: 0.0.0.0
  port: "3000++"
  is_cluster: true
  read_timeout: 5s
app:
  base: /srv/game
  server_type: connector
  server_id: connector-2
logging:
  level: debug
  format: text
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "3000++", cfg.Server.Port)
	assert.True(t, cfg.Server.IsCluster)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "connector-2", cfg.App.ServerID)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server: [unclosed"), 0644))

	_, err := Load(configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("HTTPC_SERVER_PORT", "9001")
	t.Setenv("HTTPC_APP_SERVER_TYPE", "gate")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9001", cfg.Server.Port)
	assert.Equal(t, "gate", cfg.App.ServerType)
}

func TestLoad_InvalidConfig(t *testing.T) {
	t.Setenv("HTTPC_SERVER_IS_CLUSTER", "true")
	t.Setenv("HTTPC_SERVER_PORT", "3000")
	t.Setenv("HTTPC_APP_SERVER_ID", "connector-1")

	cfg, err := Load("")
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoad_EnvOverrideSplitWords(t *testing.T) {
	t.Setenv("HTTPC_METRICS_PATH", "/internal/metrics")
	t.Setenv("HTTPC_RATE_LIMIT_BURST", "7")
	t.Setenv("HTTPC_AUTH_JWT_SECRET", "secret")
	t.Setenv("HTTPC_SERVER_USE_SSL", "true")
	t.Setenv("HTTPC_SERVER_KEY_FILE", "config/server.key")
	t.Setenv("HTTPC_SERVER_CERT_FILE", "config/server.crt")
	t.Setenv("HTTPC_LOGGING_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/internal/metrics", cfg.Metrics.Path)
	assert.Equal(t, 7, cfg.RateLimit.Burst)
	assert.Equal(t, "secret", cfg.Auth.JWTSecret)
	assert.True(t, cfg.Server.UseSSL)
	assert.Equal(t, "config/server.key", cfg.Server.KeyFile)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_IgnoresUnprefixedEnv(t *testing.T) {
	t.Setenv("PATH", "/usr/local/bin:/usr/bin:/bin")
	t.Setenv("PORT", "1234")
	t.Setenv("HOST", "0.0.0.0")
	t.Setenv("BASE", "/elsewhere")
	t.Setenv("LEVEL", "error")
	t.Setenv("FORMAT", "text")
	t.Setenv("ENABLED", "true")
	t.Setenv("ISSUER", "someone-else")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, DefaultHost, cfg.Server.Host)
	assert.Equal(t, ".", cfg.App.Base)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.False(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.CORS.Enabled)
	assert.Equal(t, "go-http-component", cfg.Auth.Issuer)
}

func TestLoad_CORSEnabledWithoutOrigins(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
cors:
  enabled: true
  allowed_origins: []
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	cfg, err := Load(configPath)
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "cors.allowed_origins")
}
