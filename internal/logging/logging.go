// Package logging provides structured logging for the pipeline: a
// console/file logger for operational output, and per-family debug
// sinks under debug_dir whose lines are only formatted when that
// family's debug flag is set.
package logging

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string
	Console    bool
	File       bool
	FilePath   string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	home, _ := os.UserHomeDir()
	return LogConfig{
		Level:      "info",
		Console:    true,
		File:       true,
		FilePath:   filepath.Join(home, ".config", "chartpatterns", "logs", "run.log"),
		MaxSize:    100,
		MaxBackups: 7,
		MaxAge:     30,
	}
}

// NewLogger creates a new logger with default configuration.
func NewLogger() zerolog.Logger {
	return NewLoggerWithConfig(DefaultLogConfig())
}

// NewLoggerWithConfig creates a new logger with the specified configuration.
func NewLoggerWithConfig(cfg LogConfig) zerolog.Logger {
	var writers []io.Writer

	if cfg.Console {
		consoleWriter := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
			FormatLevel: func(i interface{}) string {
				if ll, ok := i.(string); ok {
					switch ll {
					case "debug":
						return "\033[36mDBG\033[0m"
					case "info":
						return "\033[32mINF\033[0m"
					case "warn":
						return "\033[33mWRN\033[0m"
					case "error":
						return "\033[31mERR\033[0m"
					default:
						return ll
					}
				}
				return "???"
			},
		}
		writers = append(writers, consoleWriter)
	}

	if cfg.File {
		logDir := filepath.Dir(cfg.FilePath)
		if err := os.MkdirAll(logDir, 0755); err == nil {
			fileWriter := &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   true,
			}
			writers = append(writers, fileWriter)
		}
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		writer = os.Stdout
	case 1:
		writer = writers[0]
	default:
		writer = zerolog.MultiLevelWriter(writers...)
	}

	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	return zerolog.New(writer).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// SetDebugLevel sets the global log level to debug.
func SetDebugLevel() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}

// SetInfoLevel sets the global log level to info.
func SetInfoLevel() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// ContextKey is the type for context keys.
type ContextKey string

const (
	LoggerKey ContextKey = "logger"
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from context, or a no-op logger.
func FromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(LoggerKey).(zerolog.Logger); ok {
		return logger
	}
	return zerolog.Nop()
}

// WithTuple tags a logger with the (ticker, interval, strategy) tuple
// it is currently processing.
func WithTuple(logger zerolog.Logger, ticker, interval, strategy string) zerolog.Logger {
	return logger.With().
		Str("ticker", ticker).
		Str("interval", interval).
		Str("strategy", strategy).
		Logger()
}

// LogFetch logs a PriceSeries producer call.
func LogFetch(logger zerolog.Logger, ticker, interval string, duration time.Duration, err error) {
	event := logger.Debug().
		Str("event", "fetch").
		Str("ticker", ticker).
		Str("interval", interval).
		Dur("duration", duration)

	if err != nil {
		event.Err(err).Msg("fetch failed")
	} else {
		event.Msg("fetch completed")
	}
}

// NewFamilyDebugLogger returns a logger that writes line-atomic,
// append-only JSON records to <dir>/<family>.log via a rotating
// lumberjack writer. Safe to share across parallel tuples: lumberjack
// serializes individual Write calls and zerolog emits one Write per
// line, so lines never interleave mid-record even though no ordering
// across tuples is guaranteed.
func NewFamilyDebugLogger(dir, family string) zerolog.Logger {
	writer := &lumberjack.Logger{
		Filename:   filepath.Join(dir, family+".log"),
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     14,
		Compress:   false,
	}
	return zerolog.New(writer).With().Timestamp().Str("family", family).Logger()
}
