// Package logger builds the zap logger used across the CLI and server.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a logger. jsonLogs selects structured JSON output for server
// deployments; the console encoder is friendlier for interactive runs.
// verbose enables debug-level logging.
func New(jsonLogs, verbose bool) (*zap.Logger, error) {
	var cfg zap.Config
	if jsonLogs {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	return cfg.Build()
}
