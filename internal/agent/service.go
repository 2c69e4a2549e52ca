package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/alexanderramin/ganttagent/internal/llm"
	"github.com/alexanderramin/ganttagent/internal/prompt"
)

const (
	emptyInputMessage     = "请输入您的指令"
	emptyInputQuestion    = "请描述您想要执行的操作"
	tooLongMessage        = "输入内容过长，请简化您的指令（最多2000字）"
	notConfiguredMessage  = "AI 服务未配置，请设置 LLM_API_KEY 后重试"
	backendFailurePrefix  = "AI 服务调用失败: "
	internalFailurePrefix = "处理请求时出错: "
	retryQuestion         = "请尝试重新描述您的需求"

	previewRunes = 100
)

// Recorder persists translation outcomes. Failures are logged and never
// change the result returned to the caller.
type Recorder interface {
	Record(ctx context.Context, t Translation) error
}

// Outcome is a Result plus the diagnostics gathered while producing it.
type Outcome struct {
	Result        Result
	FailureKind   FailureKind
	ReferenceDate time.Time
	RawReply      string
	Model         string
	Dropped       []*ActionShapeError
	Err           error
	Duration      time.Duration
}

// Service runs the translation pipeline: serialize context, assemble the
// prompt, call the model, parse the reply.
type Service struct {
	client    llm.Client
	assembler *prompt.Assembler
	recorder  Recorder
	observer  TranslationObserver
	now       func() time.Time
	loc       *time.Location
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder stores every outcome through r.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithObserver reports every outcome to o.
func WithObserver(o TranslationObserver) Option {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithClock replaces the wall clock used for the reference date.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the time zone the reference date is taken in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// NewService creates a Service. A nil assembler uses the embedded template.
func NewService(client llm.Client, assembler *prompt.Assembler, opts ...Option) *Service {
	if assembler == nil {
		assembler = prompt.New(prompt.DefaultTemplate())
	}
	s := &Service{
		client:    client,
		assembler: assembler,
		observer:  NoopTranslationObserver{},
		now:       time.Now,
		loc:       time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process translates one request. It always returns a well-formed Result.
func (s *Service) Process(ctx context.Context, req Request) Result {
	return s.Translate(ctx, req).Result
}

// ReferenceDate returns today's date at midnight in the service time zone.
func (s *Service) ReferenceDate() time.Time {
	now := s.now().In(s.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
}

// Translate is Process with diagnostics.
func (s *Service) Translate(ctx context.Context, req Request) Outcome {
	start := time.Now()
	out := s.run(ctx, req)
	out.Duration = time.Since(start)
	s.report(ctx, req, out)
	return out
}

func (s *Service) run(ctx context.Context, req Request) (out Outcome) {
	out.ReferenceDate = s.ReferenceDate()

	if strings.TrimSpace(req.Message) == "" {
		out.FailureKind = FailureInvalidInput
		out.Result = clarificationFailure(emptyInputMessage, emptyInputQuestion)
		return out
	}
	if utf8.RuneCountInString(req.Message) > MaxMessageRunes {
		out.FailureKind = FailureInvalidInput
		out.Result = failure(tooLongMessage)
		return out
	}

	defer func() {
		if r := recover(); r != nil {
			out.FailureKind = FailureInternal
			out.Err = fmt.Errorf("panic: %v", r)
			out.Result = clarificationFailure(fmt.Sprintf("%s%v", internalFailurePrefix, r), retryQuestion)
		}
	}()

	if s.client == nil || !s.client.Configured() {
		out.FailureKind = FailureConfiguration
		out.Err = llm.ErrNotConfigured
		out.Result = failure(notConfiguredMessage)
		return out
	}

	messages := s.assembler.Assemble(req.Message, req.Context, out.ReferenceDate)
	completion, err := s.client.Complete(ctx, llm.CompletionRequest{Messages: messages})
	if err != nil {
		out.Err = err
		if errors.Is(err, llm.ErrNotConfigured) {
			out.FailureKind = FailureConfiguration
			out.Result = failure(notConfiguredMessage)
			return out
		}
		out.FailureKind = FailureBackend
		out.Result = failure(backendFailurePrefix + err.Error())
		return out
	}
	out.RawReply = completion.Text
	out.Model = completion.Model

	result, report := ParseReply(completion.Text)
	out.Result = result
	out.Dropped = report.Dropped
	if report.Malformed != nil {
		out.FailureKind = FailureMalformedOutput
		out.Err = report.Malformed
	}
	return out
}

func (s *Service) report(ctx context.Context, req Request, out Outcome) {
	event := TranslationEvent{
		MessagePreview: truncateRunes(req.Message, previewRunes),
		Duration:       out.Duration,
		Success:        out.Result.Success,
		Actions:        len(out.Result.Actions),
		FailureKind:    out.FailureKind,
		Dropped:        len(out.Dropped),
		Err:            out.Err,
	}
	if s.recorder != nil {
		err := s.recorder.Record(ctx, Translation{
			Message:       req.Message,
			ReferenceDate: out.ReferenceDate,
			Result:        out.Result,
			FailureKind:   out.FailureKind,
			Model:         out.Model,
			RawReply:      out.RawReply,
			Dropped:       len(out.Dropped),
			LatencyMs:     out.Duration.Milliseconds(),
		})
		if err != nil {
			event.Err = errors.Join(event.Err, fmt.Errorf("recording translation: %w", err))
		}
	}
	s.observer.ObserveTranslation(ctx, event)
}

func failure(message string) Result {
	return Result{
		Success:                false,
		Message:                message,
		Actions:                []Action{},
		ClarificationQuestions: []string{},
	}
}

func clarificationFailure(message, question string) Result {
	return Result{
		Success:                false,
		Message:                message,
		Actions:                []Action{},
		NeedsClarification:     true,
		ClarificationQuestions: []string{question},
	}
}
