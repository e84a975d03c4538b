// Package logging holds the process-wide zap logger.
package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Logger is the global structured logger
	Logger *zap.Logger

	// Sugar is the printf-style logger used by most of the code
	Sugar *zap.SugaredLogger
)

// Config selects level, encoding and destination
type Config struct {
	Level       string
	Format      string // console or json
	Output      string // stdout, stderr or a file path
	Development bool
}

// DefaultConfig logs info and above to stderr in console format
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "console",
		Output: "stderr",
	}
}

// Initialize replaces the global logger
func Initialize(cfg Config) error {
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "ts"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg.Format == "json" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	var sink zapcore.WriteSyncer
	switch cfg.Output {
	case "", "stderr":
		sink = zapcore.AddSync(os.Stderr)
	case "stdout":
		sink = zapcore.AddSync(os.Stdout)
	default:
		f, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		sink = zapcore.AddSync(f)
	}

	opts := []zap.Option{zap.AddCaller()}
	if cfg.Development {
		opts = append(opts, zap.Development(), zap.AddStacktrace(zapcore.ErrorLevel))
	}
	Logger = zap.New(zapcore.NewCore(encoder, sink, level), opts...)
	Sugar = Logger.Sugar()
	return nil
}

// Sync flushes buffered entries
func Sync() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}

// Named returns a child logger for a component
func Named(name string) *zap.SugaredLogger {
	return Sugar.Named(name)
}

func Infof(template string, args ...any)  { Sugar.Infof(template, args...) }
func Warnf(template string, args ...any)  { Sugar.Warnf(template, args...) }
func Errorf(template string, args ...any) { Sugar.Errorf(template, args...) }
func Debugf(template string, args ...any) { Sugar.Debugf(template, args...) }
func Fatalf(template string, args ...any) { Sugar.Fatalf(template, args...) }

func init() {
	_ = Initialize(DefaultConfig())
}
