// Package audit is the sole observability hook of the authentication core.
// Every orchestrator branch, success or failure, is mirrored onto the sink
// before the HTTP response is written.
package audit

import (
	"context"
	"log/slog"
)

// Event is one auth outcome: the operation, the human-readable result and
// the HTTP status code it maps to.
type Event struct {
	Method   string
	Response string
	Code     int
}

// Sink records audit events. Implementations must not block the request for
// longer than a log write; there is no buffering or retry at this layer.
type Sink interface {
	Record(ctx context.Context, e Event)
}

// LogSink writes audit events to a structured logger, tagged "auth".
type LogSink struct {
	Logger *slog.Logger
}

func (s *LogSink) Record(ctx context.Context, e Event) {
	s.Logger.InfoContext(ctx, "auth",
		"method", e.Method,
		"response", e.Response,
		"code", e.Code,
	)
}
