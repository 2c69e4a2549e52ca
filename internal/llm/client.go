package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Role tags a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged entry of a completion payload.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest holds the parameters for a completion call.
type CompletionRequest struct {
	Messages    []Message
	Temperature *float64      // nil uses the configured default
	Timeout     time.Duration // zero uses the configured default
}

// Completion holds the result of a completion call.
type Completion struct {
	Text      string
	Model     string
	LatencyMs int64
}

// Client provides access to a chat-completion model.
type Client interface {
	// Complete sends messages and returns the raw text reply. It never retries.
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)

	// Configured reports whether a credential is present.
	Configured() bool
}

// openAIClient implements Client against any OpenAI-compatible endpoint.
type openAIClient struct {
	cfg      Config
	api      openai.Client
	observer Observer
}

// NewOpenAIClient creates a Client for the endpoint described by cfg.
func NewOpenAIClient(cfg Config, observer Observer) Client {
	if observer == nil {
		observer = NoopObserver{}
	}
	httpClient := &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout: 5 * time.Second,
			}).DialContext,
		},
	}
	opts := []option.RequestOption{
		option.WithBaseURL(cfg.EffectiveBaseURL()),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if cfg.Configured() {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	return &openAIClient{
		cfg:      cfg,
		api:      openai.NewClient(opts...),
		observer: observer,
	}
}

func (c *openAIClient) Configured() bool {
	return c.cfg.Configured()
}

func (c *openAIClient) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("%w: no messages", ErrBackend)
	}

	start := time.Now()

	temp := c.cfg.Temperature
	if req.Temperature != nil {
		temp = *req.Temperature
	}
	timeout := c.cfg.Timeout()
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.cfg.Model),
		Messages:    toMessageParams(req.Messages),
		Temperature: openai.Float(temp),
	}

	var (
		text  string
		model string
	)
	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		err = classifyError(ctx, err, timeout)
	} else {
		model = resp.Model
		if len(resp.Choices) > 0 {
			text = resp.Choices[0].Message.Content
		}
		if strings.TrimSpace(text) == "" {
			err = ErrEmptyResponse
		}
	}

	latency := time.Since(start).Milliseconds()
	c.observer.OnCallComplete(ctx, CallEvent{
		Model:       c.cfg.Model,
		BaseURL:     c.cfg.EffectiveBaseURL(),
		LatencyMs:   latency,
		PromptChars: promptChars(req.Messages),
		Success:     err == nil,
		ErrorCode:   errorCode(err),
	})
	if err != nil {
		return nil, err
	}

	return &Completion{
		Text:      text,
		Model:     model,
		LatencyMs: latency,
	}, nil
}

func toMessageParams(msgs []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

func classifyError(ctx context.Context, err error, timeout time.Duration) error {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: status %d: %v", ErrBackend, apiErr.StatusCode, err)
	}
	return fmt.Errorf("%w: %v", ErrBackend, err)
}

func promptChars(msgs []Message) int {
	n := 0
	for _, m := range msgs {
		n += len([]rune(m.Content))
	}
	return n
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotConfigured):
		return "NOT_CONFIGURED"
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrEmptyResponse):
		return "EMPTY_RESPONSE"
	case errors.Is(err, ErrInvalidOutput):
		return "INVALID_OUTPUT"
	case errors.Is(err, ErrBackend):
		return "BACKEND"
	default:
		return "UNKNOWN"
	}
}
