// internal/logging/logger.go
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yyspencer/Fire2Scripts/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Init builds the suite logger. Each level gets its own dated, rotated file
// under the configured log directory, and everything at or above the
// configured level is mirrored to the console with colors.
func Init(cfg config.LoggingConfig) (*zap.Logger, error) {
	if err := os.MkdirAll(cfg.Directory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	minLevel, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		minLevel = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		newFileCore(cfg, zapcore.DebugLevel, encoderConfig),
		newFileCore(cfg, zapcore.InfoLevel, encoderConfig),
		newFileCore(cfg, zapcore.WarnLevel, encoderConfig),
		newFileCore(cfg, zapcore.ErrorLevel, encoderConfig),
		newConsoleCore(minLevel),
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

// newFileCore writes exactly one level to its own rotating JSON file, so a
// long batch run can be audited per severity.
func newFileCore(cfg config.LoggingConfig, level zapcore.Level, encoderConfig zapcore.EncoderConfig) zapcore.Core {
	filename := fmt.Sprintf("%s-%s.log", time.Now().Format("2006-01-02"), level.String())

	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(cfg.Directory, filename),
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	})

	levelEnabler := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l == level
	})

	return zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), writer, levelEnabler)
}

func newConsoleCore(minLevel zapcore.Level) zapcore.Core {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	levelEnabler := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= minLevel
	})

	return zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(os.Stdout), levelEnabler)
}
