package llm

import (
	"context"
	"log/slog"
)

// CallEvent records metadata about a single completion call.
type CallEvent struct {
	Model       string
	BaseURL     string
	LatencyMs   int64
	PromptChars int
	Success     bool
	ErrorCode   string
}

// Observer receives events about LLM calls for logging and metrics.
type Observer interface {
	OnCallComplete(ctx context.Context, event CallEvent)
}

// LogObserver writes call events as structured log records.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates an Observer that logs events to logger.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{logger: logger}
}

func (o *LogObserver) OnCallComplete(ctx context.Context, event CallEvent) {
	attrs := []any{
		"model", event.Model,
		"base_url", event.BaseURL,
		"latency_ms", event.LatencyMs,
		"prompt_chars", event.PromptChars,
	}
	if !event.Success {
		o.logger.WarnContext(ctx, "llm_call", append(attrs, "status", "err:"+event.ErrorCode)...)
		return
	}
	o.logger.InfoContext(ctx, "llm_call", append(attrs, "status", "ok")...)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(context.Context, CallEvent) {}
