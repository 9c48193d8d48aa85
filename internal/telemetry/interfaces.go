package telemetry

import (
	"log"

	"rtscore/logging"
)

// Logger exposes the logging capabilities required by server components.
type Logger interface {
	Printf(format string, args ...any)
}

// LoggerFunc adapts functions into the Logger interface.
type LoggerFunc func(format string, args ...any)

// Printf implements Logger for LoggerFunc.
func (f LoggerFunc) Printf(format string, args ...any) {
	if f == nil {
		return
	}
	f(format, args...)
}

// WrapLogger adapts a standard library logger to the Logger interface.
func WrapLogger(logger *log.Logger) Logger {
	return &loggerAdapter{logger: logger}
}

type loggerAdapter struct {
	logger *log.Logger
}

func (l *loggerAdapter) Printf(format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Printf(format, args...)
}

// Metrics exposes the telemetry methods required by server components.
type Metrics interface {
	Add(key string, delta uint64)
	Store(key string, value uint64)
}

// ObserveRouter samples a logging.Router's event counters into m, under the
// "logging.events_total" and "logging.dropped_total" keys. Callers poll this
// periodically (e.g. once per SlowUpdate) rather than on every event, since
// Router.Stats is a cheap running total rather than a push notification.
func ObserveRouter(router *logging.Router, m Metrics) {
	if router == nil || m == nil {
		return
	}
	stats := router.Stats()
	m.Store("logging.events_total", stats.EventsTotal)
	m.Store("logging.dropped_total", stats.DroppedTotal)
}
