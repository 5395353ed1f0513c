// Package logging provides a tiny abstraction over slog so downstream code can
// depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. RelayLogger adds contextual helpers (component, run) and
// domain helpers for completion calls and orchestration runs.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// LogLevel is a thin enum for user friendly level configuration decoupled from slog.
type LogLevel int

const (
	// LogLevelDebug is the debug logging level.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is the informational logging level.
	LogLevelInfo
	// LogLevelWarn is the warning logging level.
	LogLevelWarn
	// LogLevelError is the error logging level.
	LogLevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a case-insensitive level name into a LogLevel.
// Unknown names yield LogLevelInfo and an error.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug, nil
	case "", "info":
		return LogLevelInfo, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	default:
		return LogLevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Logger defines the minimal logging interface used across agentrelay.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// Debug logs a debug message.
func (s *SlogAdapter) Debug(msg string, args ...any) { s.Logger.Debug(msg, args...) }

// Info logs an informational message.
func (s *SlogAdapter) Info(msg string, args ...any) { s.Logger.Info(msg, args...) }

// Warn logs a warning message.
func (s *SlogAdapter) Warn(msg string, args ...any) { s.Logger.Warn(msg, args...) }

// Error logs an error message.
func (s *SlogAdapter) Error(msg string, args ...any) { s.Logger.Error(msg, args...) }

// NewSlogAdapter creates a Logger from *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// RelayLogger wraps slog.Logger adding contextual cloning helpers and domain
// convenience methods. Key/value args follow slog conventions.
type RelayLogger struct {
	logger    *slog.Logger
	level     LogLevel
	component string
	runID     string
	pattern   string
}

// LoggerConfig configures construction of a RelayLogger.
type LoggerConfig struct {
	Level     LogLevel
	Format    string // json or text
	Output    io.Writer
	AddSource bool
	Component string
}

// DefaultLoggerConfig returns a baseline text info level configuration
// writing to stderr, keeping stdout free for interactive output.
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{Level: LogLevelInfo, Format: "text", Output: os.Stderr}
}

// NewLogger builds a RelayLogger from a config (or defaults if nil).
func NewLogger(cfg *LoggerConfig) *RelayLogger {
	if cfg == nil {
		cfg = DefaultLoggerConfig()
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: slogLevel(cfg.Level), AddSource: cfg.AddSource}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return &RelayLogger{logger: slog.New(handler), level: cfg.Level, component: cfg.Component}
}

func slogLevel(l LogLevel) slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *RelayLogger) clone() *RelayLogger {
	nl := *l
	return &nl
}

// WithComponent sets the logical component (agent, flow, runner, etc.).
func (l *RelayLogger) WithComponent(c string) *RelayLogger {
	nl := l.clone()
	nl.component = c
	return nl
}

// WithRun attaches an orchestration run identifier and pattern name.
func (l *RelayLogger) WithRun(runID, pattern string) *RelayLogger {
	nl := l.clone()
	nl.runID = runID
	nl.pattern = pattern
	return nl
}

func (l *RelayLogger) buildAttrs() []slog.Attr {
	attrs := make([]slog.Attr, 0, 3)
	if l.component != "" {
		attrs = append(attrs, slog.String("component", l.component))
	}
	if l.runID != "" {
		attrs = append(attrs, slog.String("run_id", l.runID))
	}
	if l.pattern != "" {
		attrs = append(attrs, slog.String("pattern", l.pattern))
	}
	return attrs
}

func (l *RelayLogger) log(level slog.Level, allowed bool, msg string, args ...any) {
	if !allowed {
		return
	}
	rec := l.logger.With(args...)
	rec.LogAttrs(context.Background(), level, msg, l.buildAttrs()...)
}

// Debug logs at debug level.
func (l *RelayLogger) Debug(msg string, args ...any) {
	l.log(slog.LevelDebug, l.level <= LogLevelDebug, msg, args...)
}

// Info logs at info level.
func (l *RelayLogger) Info(msg string, args ...any) {
	l.log(slog.LevelInfo, l.level <= LogLevelInfo, msg, args...)
}

// Warn logs at warn level.
func (l *RelayLogger) Warn(msg string, args ...any) {
	l.log(slog.LevelWarn, l.level <= LogLevelWarn, msg, args...)
}

// Error logs at error level.
func (l *RelayLogger) Error(msg string, args ...any) {
	l.log(slog.LevelError, l.level <= LogLevelError, msg, args...)
}

// LogCompletion records a single completion call made on behalf of an agent.
func (l *RelayLogger) LogCompletion(agent, model string, dur time.Duration, err error) {
	attrs := l.buildAttrs()
	attrs = append(attrs,
		slog.String("agent", agent),
		slog.String("model", model),
		slog.Duration("duration", dur),
		slog.Bool("success", err == nil),
	)

	level, msg := slog.LevelDebug, "completion succeeded"
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		level, msg = slog.LevelWarn, "completion failed"
	}

	if level < slogLevel(l.level) {
		return
	}

	l.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// LogRun records aggregate orchestration run metrics.
func (l *RelayLogger) LogRun(flow string, calls int, dur time.Duration, err error) {
	attrs := l.buildAttrs()
	attrs = append(attrs,
		slog.String("flow", flow),
		slog.Int("calls", calls),
		slog.Duration("duration", dur),
		slog.Bool("success", err == nil),
	)

	level, msg := slog.LevelInfo, "run completed"
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		level, msg = slog.LevelError, "run failed"
	}

	if level < slogLevel(l.level) {
		return
	}

	l.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// NoOpLogger discards all log messages. Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// Debug logs a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info logs an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn logs a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error logs an error message.
func (NoOpLogger) Error(string, ...any) {}

// NewSlogLogger creates a new RelayLogger with the specified level and format.
func NewSlogLogger(level LogLevel, format string, addSource bool) *RelayLogger {
	cfg := DefaultLoggerConfig()
	cfg.Level = level
	if format != "" {
		cfg.Format = format
	}
	cfg.AddSource = addSource
	return NewLogger(cfg)
}
