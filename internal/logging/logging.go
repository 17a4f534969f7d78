// Package logging provides the structured logger shared by every
// subsystem: pipeline progress, watcher events, graph-resolution warnings,
// and store errors that don't belong on stdout.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap.Logger tuned for CLI use: human-readable console output,
// info level by default, debug when verbose is requested.
func New(verbose bool) *zap.Logger {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if verbose {
		level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	cfg := zap.Config{
		Level:            level,
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    encoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := cfg.Build()
	if err != nil {
		// Fall back to a no-op logger rather than crash the engine over a
		// logging misconfiguration.
		return zap.NewNop()
	}
	return logger
}

func encoderConfig() zapcore.EncoderConfig {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return enc
}

// Noop returns a logger that discards everything, used by tests and
// library callers that don't want engine log output.
func Noop() *zap.Logger { return zap.NewNop() }
