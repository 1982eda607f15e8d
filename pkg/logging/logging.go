// Package logging builds the zap loggers used by the HTTP component.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the level and encoding of the process logger
type Config struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level" split_words:"true"`
	// Format is json for production encoding or text for console output
	Format string `yaml:"format" split_words:"true"`
}

// DefaultConfig returns info-level json logging
func DefaultConfig() Config {
	return Config{Level: "info", Format: "json"}
}

// NewLogger builds a logger from cfg. Timestamps are ISO8601 in both
// encodings; text output carries stack traces only from error level up.
func NewLogger(cfg Config) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if cfg.Format == "text" {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.Development = false
	}
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.Level = zap.NewAtomicLevelAt(ParseLevel(cfg.Level))

	return zapCfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
}

// Default returns a debug-level console logger on stderr, used when a
// component is created without one. It falls back to a no-op logger.
func Default() *zap.Logger {
	zapCfg := zap.NewDevelopmentConfig()
	zapCfg.DisableStacktrace = true
	logger, err := zapCfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// ParseLevel maps a level name to a zap level. Unknown or empty names
// mean info.
func ParseLevel(level string) zapcore.Level {
	l, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return l
}
