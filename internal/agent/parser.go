package agent

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/alexanderramin/ganttagent/internal/llm"
)

const (
	maxFallbackRunes      = 500
	truncationMarker      = "..."
	defaultSuccessMessage = "Processed successfully"

	unstructuredReplyMessage = "AI 返回了非结构化内容，请重新描述需求。"
	rephraseQuestion         = "请换一种方式描述您的需求，例如：'添加一个任务叫XXX，明天开始，持续3天'"
	clarifyQuestion          = "请补充更多细节，以便我准确理解您的需求"
	unusableActionsMessage   = "AI 生成的操作参数无效，未能执行任何操作。"
	unusableActionsQuestion  = "请补充操作所需的信息（例如任务名称、日期格式为YYYY-MM-DD、进度为0-100的数字）"
)

// ParseReport carries parser diagnostics that never reach the wire.
type ParseReport struct {
	// Malformed wraps ErrMalformedOutput when the reply held no JSON object.
	Malformed error
	// Dropped lists action entries removed for having the wrong shape.
	Dropped []*ActionShapeError
}

// Parse converts a raw model reply into a Result. It never fails: a reply
// with no parseable structure becomes a clarification result.
func Parse(raw string) Result {
	result, _ := ParseReply(raw)
	return result
}

// ParseReply is Parse plus the diagnostics the orchestrator logs.
func ParseReply(raw string) (Result, ParseReport) {
	var report ParseReport

	obj, err := llm.ExtractJSON[map[string]any](raw, nil)
	if err == nil && obj == nil {
		err = errors.New("reply is JSON null")
	}
	if err != nil {
		report.Malformed = fmt.Errorf("%w: %v", ErrMalformedOutput, err)
		return malformedResult(raw), report
	}

	result := Result{
		Success:                true,
		Message:                defaultSuccessMessage,
		Actions:                []Action{},
		ClarificationQuestions: []string{},
	}
	if s, ok := obj["response"].(string); ok && strings.TrimSpace(s) != "" {
		result.Message = s
	}
	if b, ok := obj["needs_clarification"].(bool); ok {
		result.NeedsClarification = b
	}
	if b, ok := obj["requiresConfirmation"].(bool); ok {
		result.RequiresConfirmation = b
	}
	result.ClarificationQuestions = questionList(obj["clarification_questions"])

	switch entries := obj["actions"].(type) {
	case nil:
	case []any:
		for i, entry := range entries {
			action, shapeErr := normalizeAction(entry)
			if shapeErr != nil {
				shapeErr.Index = i
				report.Dropped = append(report.Dropped, shapeErr)
				continue
			}
			result.Actions = append(result.Actions, action)
		}
	default:
		report.Dropped = append(report.Dropped, &ActionShapeError{Index: -1, Reason: "actions is not an array"})
	}

	// A reply whose every action was dropped proposes nothing to apply.
	if len(result.Actions) == 0 && len(report.Dropped) > 0 && !result.NeedsClarification {
		result.Success = false
		result.NeedsClarification = true
		result.Message = unusableActionsMessage
		result.ClarificationQuestions = []string{unusableActionsQuestion}
	}

	EnforceConfirmation(&result)

	if result.NeedsClarification && len(result.ClarificationQuestions) == 0 {
		q := strings.TrimSpace(result.Message)
		if q == "" || q == defaultSuccessMessage {
			q = clarifyQuestion
		}
		result.ClarificationQuestions = []string{q}
	}

	return result, report
}

// normalizeAction coerces one raw entry into an Action or explains why it
// cannot be used.
func normalizeAction(entry any) (Action, *ActionShapeError) {
	m, ok := entry.(map[string]any)
	if !ok {
		return Action{}, &ActionShapeError{Reason: "entry is not an object"}
	}
	kind, ok := m["type"].(string)
	kind = strings.TrimSpace(kind)
	if !ok || kind == "" {
		return Action{}, &ActionShapeError{Reason: "missing action type"}
	}

	params := map[string]any{}
	switch p := m["params"].(type) {
	case nil:
	case map[string]any:
		params = p
	default:
		return Action{}, &ActionShapeError{Type: kind, Reason: "params is not an object"}
	}
	if shapeErr := ValidateActionParams(kind, params); shapeErr != nil {
		return Action{}, shapeErr
	}

	action := Action{
		Type:   kind,
		Params: params,
	}
	if d, ok := m["description"].(string); ok && strings.TrimSpace(d) != "" {
		action.Description = d
	} else {
		action.Description = "execute: " + kind
	}
	if b, ok := m["requiresConfirmation"].(bool); ok {
		action.RequiresConfirmation = b
	}
	return action, nil
}

func questionList(v any) []string {
	out := []string{}
	switch q := v.(type) {
	case string:
		if s := strings.TrimSpace(q); s != "" {
			out = append(out, s)
		}
	case []any:
		for _, item := range q {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func malformedResult(raw string) Result {
	msg := truncateRunes(strings.TrimSpace(raw), maxFallbackRunes)
	if msg == "" {
		msg = unstructuredReplyMessage
	}
	return Result{
		Success:                false,
		Message:                msg,
		Actions:                []Action{},
		NeedsClarification:     true,
		ClarificationQuestions: []string{rephraseQuestion},
	}
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + truncationMarker
}
