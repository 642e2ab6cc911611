package internal

import (
	"fmt"

	"github.com/lychee-technology/rowmap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a zap logger from logging settings. Format "console" selects the
// development encoder; anything else produces JSON.
func NewLogger(cfg rowmap.LoggingConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zcfg.Encoding = "console"
		zcfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		zcfg.Level = zap.NewAtomicLevelAt(level)
		if level == zapcore.DebugLevel {
			zcfg.Development = true
		}
	}
	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
