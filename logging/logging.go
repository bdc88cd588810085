// Package logging builds the zap.Logger every component in this module
// logs through, grounded on ppl/cmd/zqd/logger's Config/NewCore
// pattern: JSON encoding by default, with optional file output rotated
// by gopkg.in/natefinch/lumberjack.v2 for long-running deployments.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config configures log output. A zero-value Config logs JSON to
// stderr at info level.
type Config struct {
	Path       string        `yaml:"path"`
	Level      zapcore.Level `yaml:"level"`
	MaxSizeMB  int           `yaml:"max_size_mb"`
	MaxBackups int           `yaml:"max_backups"`
	MaxAgeDays int           `yaml:"max_age_days"`
}

// New builds a *zap.Logger from cfg. When Path is empty, logs go to
// stderr; otherwise they're written through a lumberjack.Logger so
// long-running readers don't grow an unbounded log file.
func New(cfg Config) (*zap.Logger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderCfg)

	var sink zapcore.WriteSyncer
	if cfg.Path == "" {
		sink = zapcore.AddSync(os.Stderr)
	} else {
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    orDefault(cfg.MaxSizeMB, 100),
			MaxBackups: orDefault(cfg.MaxBackups, 3),
			MaxAge:     orDefault(cfg.MaxAgeDays, 28),
		})
	}

	core := zapcore.NewCore(encoder, sink, cfg.Level)
	return zap.New(core), nil
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
