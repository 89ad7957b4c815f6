package event

import (
	"context"
	"log/slog"
)

// LoggerEmitter writes card events to the structured logger. It stands in
// for the stream emitter when the service runs without Redis.
type LoggerEmitter struct {
	logger *slog.Logger
}

// NewLoggerEmitter constructs a logging emitter.
func NewLoggerEmitter(logger *slog.Logger) *LoggerEmitter {
	return &LoggerEmitter{logger: logger}
}

// Emit writes the event to the logger.
func (e *LoggerEmitter) Emit(_ context.Context, ev Event) error {
	if e == nil || e.logger == nil {
		return nil
	}
	attrs := make([]any, 0, 2*len(ev.Fields()))
	for k, v := range ev.Fields() {
		attrs = append(attrs, k, v)
	}
	e.logger.Info("card event", attrs...)
	return nil
}
