package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the global logger. It discards everything until Init is called,
// so packages can log unconditionally in tests.
var Log = zap.NewNop()

// Init replaces the global logger.
// isDevelopment selects colourful console output; otherwise entries are JSON.
// level is a zap level name ("debug", "info", "warn", "error"); empty means
// debug in development and info in production.
func Init(isDevelopment bool, level string) error {
	var config zap.Config

	if isDevelopment {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
		config.Level = zap.NewAtomicLevelAt(lvl)
	}

	l, err := config.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
	)
	if err != nil {
		return err
	}

	Log = l
	return nil
}

// Sync flushes buffered entries; call before the process exits.
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}
