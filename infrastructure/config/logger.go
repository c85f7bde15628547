package config

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the service logger. The returned level can be changed
// at runtime, which the config watcher does when log_level changes.
func NewLogger(cfg *Config) (*zap.Logger, zap.AtomicLevel, error) {
	var zapConfig zap.Config
	if cfg.IsProduction() {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	level := zap.NewAtomicLevelAt(ParseLevel(cfg.LogLevel))
	zapConfig.Level = level

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, level, err
	}
	return logger.With(zap.String("environment", cfg.Environment)), level, nil
}

// ParseLevel maps a level name to a zap level, defaulting to info.
func ParseLevel(name string) zapcore.Level {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return zapcore.InfoLevel
	}
	return level
}
