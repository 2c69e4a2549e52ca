package agent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/ganttagent/internal/dateexpr"
	"github.com/alexanderramin/ganttagent/internal/domain"
	"github.com/alexanderramin/ganttagent/internal/llm"
	"github.com/alexanderramin/ganttagent/internal/prompt"
	"github.com/alexanderramin/ganttagent/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient is a scripted llm.Client.
type fakeClient struct {
	configured bool
	reply      func(req llm.CompletionRequest) (string, error)
	calls      int
	last       llm.CompletionRequest
}

func (f *fakeClient) Configured() bool { return f.configured }

func (f *fakeClient) Complete(_ context.Context, req llm.CompletionRequest) (*llm.Completion, error) {
	f.calls++
	f.last = req
	text, err := f.reply(req)
	if err != nil {
		return nil, err
	}
	return &llm.Completion{Text: text, Model: "fake-model"}, nil
}

func replyWith(text string) *fakeClient {
	return &fakeClient{
		configured: true,
		reply:      func(llm.CompletionRequest) (string, error) { return text, nil },
	}
}

type recordingRecorder struct {
	records []Translation
	err     error
}

func (r *recordingRecorder) Record(_ context.Context, t Translation) error {
	r.records = append(r.records, t)
	return r.err
}

// 2026-03-02 is a Monday.
var mondayMorning = time.Date(2026, time.March, 2, 9, 30, 0, 0, time.UTC)

func newTestService(client llm.Client, opts ...Option) *Service {
	opts = append([]Option{
		WithClock(func() time.Time { return mondayMorning }),
		WithLocation(time.UTC),
	}, opts...)
	return NewService(client, prompt.New(prompt.DefaultTemplate()), opts...)
}

func TestProcess_EndToEndAddTaskNextMonday(t *testing.T) {
	client := &fakeClient{
		configured: true,
		reply: func(req llm.CompletionRequest) (string, error) {
			user := req.Messages[len(req.Messages)-1].Content
			dateLine := strings.SplitN(user, "\n", 2)[0]
			refStr := strings.Fields(strings.TrimPrefix(dateLine, "Today's date: "))[0]
			ref, err := time.Parse(dateexpr.Layout, refStr)
			if err != nil {
				return "", err
			}
			start, _ := dateexpr.Resolve("下周一", ref)
			due := start.AddDate(0, 0, 4)
			return fmt.Sprintf("```json\n{\"actions\":[{\"type\":\"add_task\",\"params\":{\"title\":\"API开发\",\"startDate\":%q,\"dueDate\":%q,\"status\":\"NotStarted\",\"priority\":\"Normal\"},\"description\":\"创建任务'API开发'\"}],\"response\":\"好的\",\"needs_clarification\":false}\n```",
				start.Format(dateexpr.Layout), due.Format(dateexpr.Layout)), nil
		},
	}
	svc := newTestService(client)

	r := svc.Process(context.Background(), Request{Message: "添加一个任务叫'API开发'，下周一开始，持续5天"})

	require.True(t, r.Success, r.Message)
	require.Len(t, r.Actions, 1)
	a := r.Actions[0]
	assert.Equal(t, KindAddTask, a.Type)
	assert.Equal(t, "2026-03-09", a.Params["startDate"])
	assert.Equal(t, "2026-03-13", a.Params["dueDate"])
	assert.False(t, a.RequiresConfirmation)
	assert.False(t, r.RequiresConfirmation)

	require.Len(t, client.last.Messages, 2)
	assert.Equal(t, llm.RoleSystem, client.last.Messages[0].Role)
	assert.Contains(t, client.last.Messages[0].Content, "2026-03-03")
	assert.True(t, strings.HasPrefix(client.last.Messages[1].Content, "Today's date: 2026-03-02 (Monday)\nCurrent year: 2026"))
}

func TestProcess_ContextReachesPrompt(t *testing.T) {
	client := replyWith(`{"actions":[],"response":"ok"}`)
	svc := newTestService(client)
	snap := testutil.NewTestSnapshot("Apollo",
		[]domain.Bucket{testutil.NewTestBucket("b1", "OEM", domain.BucketMilestone)},
		testutil.NewTestTask("EP", testutil.WithTaskID("abcdef123456"), testutil.InBucket("b1")),
	)

	svc.Process(context.Background(), Request{Message: "在OEM分组里添加里程碑", Context: snap})

	user := client.last.Messages[1].Content
	assert.Contains(t, user, "Project: Apollo")
	assert.Contains(t, user, "[abcdef12] EP")
	assert.Contains(t, user, "All groups: OEM(milestone-group)")
}

func TestProcess_BlankMessageAsksForInput(t *testing.T) {
	client := replyWith("{}")
	svc := newTestService(client)

	r := svc.Process(context.Background(), Request{Message: "   \n\t"})

	assert.False(t, r.Success)
	assert.True(t, r.NeedsClarification)
	assert.NotEmpty(t, r.ClarificationQuestions)
	assert.Equal(t, 0, client.calls)
}

func TestProcess_RejectsOverlongMessageWithoutBackendCall(t *testing.T) {
	client := replyWith("{}")
	svc := newTestService(client)

	out := svc.Translate(context.Background(), Request{Message: strings.Repeat("任", MaxMessageRunes+1)})

	assert.False(t, out.Result.Success)
	assert.False(t, out.Result.NeedsClarification)
	assert.Empty(t, out.Result.Actions)
	assert.Equal(t, FailureInvalidInput, out.FailureKind)
	assert.Equal(t, 0, client.calls)

	r := svc.Process(context.Background(), Request{Message: strings.Repeat("a", MaxMessageRunes)})
	assert.True(t, r.Success)
	assert.Equal(t, 1, client.calls)
}

func TestProcess_NotConfigured(t *testing.T) {
	client := replyWith("{}")
	client.configured = false
	svc := newTestService(client)

	out := svc.Translate(context.Background(), Request{Message: "hello"})

	assert.False(t, out.Result.Success)
	assert.False(t, out.Result.NeedsClarification)
	assert.Equal(t, FailureConfiguration, out.FailureKind)
	assert.ErrorIs(t, out.Err, llm.ErrNotConfigured)
	assert.Equal(t, 0, client.calls)
}

func TestProcess_NilClientIsConfigurationFailure(t *testing.T) {
	svc := newTestService(nil)
	out := svc.Translate(context.Background(), Request{Message: "hello"})
	assert.Equal(t, FailureConfiguration, out.FailureKind)
}

func TestProcess_BackendFailure(t *testing.T) {
	client := &fakeClient{
		configured: true,
		reply: func(llm.CompletionRequest) (string, error) {
			return "", fmt.Errorf("%w: status 502", llm.ErrBackend)
		},
	}
	svc := newTestService(client)

	out := svc.Translate(context.Background(), Request{Message: "hello"})

	assert.False(t, out.Result.Success)
	assert.False(t, out.Result.NeedsClarification)
	assert.Contains(t, out.Result.Message, "status 502")
	assert.Equal(t, FailureBackend, out.FailureKind)
}

func TestProcess_TimeoutIsBackendFailure(t *testing.T) {
	client := &fakeClient{
		configured: true,
		reply:      func(llm.CompletionRequest) (string, error) { return "", llm.ErrTimeout },
	}
	out := newTestService(client).Translate(context.Background(), Request{Message: "hello"})
	assert.Equal(t, FailureBackend, out.FailureKind)
	assert.False(t, out.Result.NeedsClarification)
}

func TestProcess_MalformedReply(t *testing.T) {
	svc := newTestService(replyWith("I am not JSON at all"))

	out := svc.Translate(context.Background(), Request{Message: "hello"})

	assert.False(t, out.Result.Success)
	assert.True(t, out.Result.NeedsClarification)
	assert.NotEmpty(t, out.Result.ClarificationQuestions)
	assert.Equal(t, FailureMalformedOutput, out.FailureKind)
	assert.Equal(t, "I am not JSON at all", out.RawReply)
}

func TestProcess_PanicIsRecovered(t *testing.T) {
	client := &fakeClient{
		configured: true,
		reply:      func(llm.CompletionRequest) (string, error) { panic("boom") },
	}
	out := newTestService(client).Translate(context.Background(), Request{Message: "hello"})

	assert.False(t, out.Result.Success)
	assert.Empty(t, out.Result.Actions)
	assert.True(t, out.Result.NeedsClarification)
	assert.Equal(t, []string{retryQuestion}, out.Result.ClarificationQuestions)
	assert.Equal(t, FailureInternal, out.FailureKind)
	assert.Contains(t, out.Result.Message, "boom")
}

func TestProcess_RecordsEveryOutcome(t *testing.T) {
	rec := &recordingRecorder{}
	svc := newTestService(replyWith(`{"actions":[{"type":"delete_task","params":{"taskId":"t1"}}]}`), WithRecorder(rec))

	svc.Process(context.Background(), Request{Message: "删除旧任务"})
	svc.Process(context.Background(), Request{Message: ""})

	require.Len(t, rec.records, 2)
	first := rec.records[0]
	assert.Equal(t, "删除旧任务", first.Message)
	assert.Equal(t, "fake-model", first.Model)
	assert.Equal(t, time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC), first.ReferenceDate)
	assert.True(t, first.Result.RequiresConfirmation)
	assert.Equal(t, FailureNone, first.FailureKind)
	assert.Equal(t, FailureInvalidInput, rec.records[1].FailureKind)
}

func TestProcess_RecorderFailureDoesNotChangeResult(t *testing.T) {
	rec := &recordingRecorder{err: errors.New("disk full")}
	var logs bytes.Buffer
	svc := newTestService(replyWith(`{"actions":[],"response":"ok"}`),
		WithRecorder(rec),
		WithObserver(NewTextTranslationObserver(&logs)),
	)

	r := svc.Process(context.Background(), Request{Message: "hello"})

	assert.True(t, r.Success)
	assert.Equal(t, "ok", r.Message)
	assert.Contains(t, logs.String(), "msg=translate")
	assert.Contains(t, logs.String(), "disk full")
}

func TestProcess_ObserverLogsDroppedActions(t *testing.T) {
	var logs bytes.Buffer
	svc := newTestService(replyWith(`{"actions":[{"params":{}},{"type":"query"}]}`),
		WithObserver(NewTextTranslationObserver(&logs)),
	)

	r := svc.Process(context.Background(), Request{Message: "show summary"})

	require.Len(t, r.Actions, 1)
	assert.Contains(t, logs.String(), "dropped_actions=1")
	assert.Contains(t, logs.String(), "success=true")
}

func TestReferenceDate_UsesConfiguredZone(t *testing.T) {
	shanghai := time.FixedZone("CST", 8*3600)
	// 2026-03-01 20:00 UTC is already Monday in UTC+8.
	svc := NewService(nil, nil,
		WithClock(func() time.Time { return time.Date(2026, time.March, 1, 20, 0, 0, 0, time.UTC) }),
		WithLocation(shanghai),
	)
	ref := svc.ReferenceDate()
	assert.Equal(t, "2026-03-02", ref.Format(dateexpr.Layout))
	assert.Equal(t, time.Monday, ref.Weekday())
}
