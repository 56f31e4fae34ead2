package logger

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// global discards everything until Init replaces it, which keeps package
// tests quiet.
var global = zap.NewNop()

// Init builds the process logger. Unknown levels fall back to info and the
// development environment switches to the coloured console encoder.
func Init(level string, environment string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	var cfg zap.Config
	if environment == "development" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	global = l.With(zap.String("env", environment))
	return nil
}

// Sync flushes buffered entries
func Sync() error {
	return global.Sync()
}

// WithContext returns the process logger tagged with the request and
// screening run IDs carried by ctx.
func WithContext(ctx context.Context) *zap.Logger {
	l := global
	if id := GetRequestID(ctx); id != "" {
		l = l.With(zap.String("request_id", id))
	}
	if id := GetRunID(ctx); id != "" {
		l = l.With(zap.String("run_id", id))
	}
	return l
}

func Debug(msg string, fields ...zap.Field) { global.Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { global.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { global.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { global.Error(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { global.Fatal(msg, fields...) }

// Field helpers, so callers need not import zap.

func String(key, value string) zap.Field                 { return zap.String(key, value) }
func Int(key string, value int) zap.Field                { return zap.Int(key, value) }
func Float64(key string, value float64) zap.Field        { return zap.Float64(key, value) }
func Duration(key string, value time.Duration) zap.Field { return zap.Duration(key, value) }
func Time(key string, value time.Time) zap.Field         { return zap.Time(key, value) }
func Any(key string, value interface{}) zap.Field        { return zap.Any(key, value) }
func ErrorField(err error) zap.Field                     { return zap.Error(err) }

// Symbol tags an entry with the ticker it concerns
func Symbol(symbol string) zap.Field { return zap.String("symbol", symbol) }
