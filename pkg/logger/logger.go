// Package logger exposes a simple zap logger, with log levels, shared
// by the table façade and the command-line wrapper.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// LevelInfo sets the log level to info.
	LevelInfo = "info"

	// LevelDebug sets the log level to debug.
	LevelDebug = "debug"

	// LevelNone disables logging.
	LevelNone = "none"
)

// Get returns a zap logger at the given level.
func Get(level string) (*zap.Logger, error) {
	if level == LevelNone || level == "" {
		return zap.NewNop(), nil
	}
	cfg := zap.NewProductionConfig()
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// MustGet returns a zap logger at the given level or panics.
func MustGet(level string) *zap.Logger {
	l, err := Get(level)
	if err != nil {
		panic(err)
	}
	return l
}
