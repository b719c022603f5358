package session

import (
	"context"
	"log/slog"
)

// QueryLogger writes every query of the observed sessions to a structured log.
type QueryLogger struct {
	logger *slog.Logger
}

func NewQueryLogger(logger *slog.Logger) *QueryLogger {
	return &QueryLogger{logger: logger.With("component", "session")}
}

// Observe attaches the logger to s. The returned function detaches it.
func (l *QueryLogger) Observe(s DbSession) func() {
	started := s.OnQueryStarted().Attach(l.started, l)
	ended := s.OnQueryEnded().Attach(l.ended, l)
	return func() {
		started.Dispose()
		ended.Dispose()
	}
}

func (l *QueryLogger) started(e QueryStartedEvent) {
	l.logger.Log(contextOf(e.Session), slog.LevelDebug, "query started",
		"sql", e.Query,
		"params", len(e.Params),
	)
}

func (l *QueryLogger) ended(e QueryEndedEvent) {
	ctx := contextOf(e.Session)
	if e.Err != nil {
		l.logger.Log(ctx, slog.LevelWarn, "query failed",
			"sql", e.Query,
			"duration", e.ResponseTime,
			"error", e.Err,
		)
		return
	}
	l.logger.Log(ctx, slog.LevelDebug, "query ended",
		"sql", e.Query,
		"duration", e.ResponseTime,
	)
}

func contextOf(s DbSession) context.Context {
	if s == nil {
		return context.Background()
	}
	return s.Context()
}
