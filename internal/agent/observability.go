package agent

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// TranslationEvent captures telemetry for one processed request.
type TranslationEvent struct {
	MessagePreview string
	Duration       time.Duration
	Success        bool
	Actions        int
	FailureKind    FailureKind
	Dropped        int
	Err            error
}

// TranslationObserver receives one event per processed request.
type TranslationObserver interface {
	ObserveTranslation(ctx context.Context, event TranslationEvent)
}

// NoopTranslationObserver ignores all events.
type NoopTranslationObserver struct{}

func (NoopTranslationObserver) ObserveTranslation(context.Context, TranslationEvent) {}

type logTranslationObserver struct {
	logger *slog.Logger
}

// NewLogTranslationObserver logs translate records through logger.
func NewLogTranslationObserver(logger *slog.Logger) TranslationObserver {
	if logger == nil {
		return NoopTranslationObserver{}
	}
	return &logTranslationObserver{logger: logger}
}

// NewTextTranslationObserver writes translate records as slog text to w.
func NewTextTranslationObserver(w io.Writer) TranslationObserver {
	if w == nil {
		return NoopTranslationObserver{}
	}
	return NewLogTranslationObserver(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})))
}

func (o *logTranslationObserver) ObserveTranslation(ctx context.Context, event TranslationEvent) {
	attrs := []any{
		"message", event.MessagePreview,
		"duration_ms", event.Duration.Milliseconds(),
		"success", event.Success,
		"actions", event.Actions,
	}
	if event.FailureKind != FailureNone {
		attrs = append(attrs, "failure", string(event.FailureKind))
	}
	if event.Dropped > 0 {
		attrs = append(attrs, "dropped_actions", event.Dropped)
	}
	if event.Err != nil {
		attrs = append(attrs, "error", event.Err.Error())
		o.logger.WarnContext(ctx, "translate", attrs...)
		return
	}
	o.logger.InfoContext(ctx, "translate", attrs...)
}
