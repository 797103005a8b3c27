package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/wayfare-app/wayfare/internal/infrastructure/env"
)

type Config struct {
	Level    string
	FilePath string
}

func NewDefaultConfig() Config {
	return Config{
		Level:    env.GetString("LOGGER_LEVEL", "info"),
		FilePath: env.GetString("LOGGER_FILE_PATH", ""),
	}
}

// NewLogger builds the process logger. Logs always go to stderr; when a
// file path is configured they are additionally written to a rotated
// file so long-running deployments don't fill the disk.
func NewLogger(cfg Config) *zap.SugaredLogger {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	if cfg.FilePath == "" {
		base := zap.NewProductionConfig()
		base.Level = zap.NewAtomicLevelAt(level)
		return zap.Must(base.Build()).Sugar()
	}

	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	fileSink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    100, // MB
		MaxBackups: 5,
		MaxAge:     28, // days
		Compress:   true,
	})

	core := zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level),
		zapcore.NewCore(encoder, fileSink, level),
	)

	return zap.New(core, zap.AddCaller()).Sugar()
}
