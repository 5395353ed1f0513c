package core

import "github.com/hupe1980/agentrelay/logging"

// loggerAdapter scopes a logging.Logger to one run and exposes convenience
// methods (LogDebug/LogWarn). It guarantees a non-nil
// logger by substituting a NoOpLogger when constructed with nil.
type loggerAdapter struct {
	logger logging.Logger
	attrs  []any
}

// newLoggerAdapter constructs a loggerAdapter tagging entries with the run.
// A RelayLogger carries the run natively; other loggers get key/value args.
func newLoggerAdapter(l logging.Logger, runID, pattern string) *loggerAdapter {
	switch lg := l.(type) {
	case nil:
		return &loggerAdapter{logger: logging.NoOpLogger{}}
	case *logging.RelayLogger:
		return &loggerAdapter{logger: lg.WithRun(runID, pattern)}
	default:
		return &loggerAdapter{logger: l, attrs: []any{"run", runID, "pattern", pattern}}
	}
}

// Logger returns the underlying logger.
func (l *loggerAdapter) Logger() logging.Logger {
	return l.logger
}

func (l *loggerAdapter) args(args []any) []any {
	if len(l.attrs) == 0 {
		return args
	}
	out := make([]any, 0, len(l.attrs)+len(args))
	out = append(out, l.attrs...)
	return append(out, args...)
}

// LogDebug logs a debug message.
func (l *loggerAdapter) LogDebug(msg string, args ...any) {
	l.logger.Debug(msg, l.args(args)...)
}

// LogWarn logs a warning message.
func (l *loggerAdapter) LogWarn(msg string, args ...any) {
	l.logger.Warn(msg, l.args(args)...)
}
