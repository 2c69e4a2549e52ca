package agent

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FencedJSONWithComments(t *testing.T) {
	raw := "好的：\n```json\n{\n  \"actions\": [\n    {\"type\": \"add_task\", \"params\": {\"title\": \"API开发\"}} // new task\n  ],\n  \"response\": \"已创建\", // reply\n  \"needs_clarification\": false\n}\n```"
	r := Parse(raw)

	require.True(t, r.Success)
	assert.Equal(t, "已创建", r.Message)
	require.Len(t, r.Actions, 1)
	assert.Equal(t, KindAddTask, r.Actions[0].Type)
	assert.Equal(t, "API开发", r.Actions[0].Params["title"])
	assert.False(t, r.RequiresConfirmation)
}

func TestParse_ProseWrappedObject(t *testing.T) {
	raw := `Here you go: {"actions":[{"type":"query","params":{"queryType":"summary"}}],"response":"ok"} hope it helps`
	r := Parse(raw)
	require.True(t, r.Success)
	require.Len(t, r.Actions, 1)
	assert.Equal(t, KindQuery, r.Actions[0].Type)
}

func TestParse_DefaultMessageAndDescription(t *testing.T) {
	r := Parse(`{"actions":[{"type":"query","params":{}}]}`)
	require.True(t, r.Success)
	assert.Equal(t, defaultSuccessMessage, r.Message)
	require.Len(t, r.Actions, 1)
	assert.Equal(t, "execute: query", r.Actions[0].Description)
}

func TestParse_KeepsBackendDescription(t *testing.T) {
	r := Parse(`{"actions":[{"type":"query","description":"查询项目概览"}]}`)
	require.Len(t, r.Actions, 1)
	assert.Equal(t, "查询项目概览", r.Actions[0].Description)
	assert.NotNil(t, r.Actions[0].Params)
}

func TestParse_DeleteTaskAlwaysNeedsConfirmation(t *testing.T) {
	r := Parse(`{"actions":[{"type":"delete_task","params":{"taskId":"t1"},"requiresConfirmation":false}],"response":"ok"}`)
	require.Len(t, r.Actions, 1)
	assert.True(t, r.Actions[0].RequiresConfirmation)
	assert.True(t, r.RequiresConfirmation)
}

func TestParse_BatchNeedsConfirmation(t *testing.T) {
	r := Parse(`{"actions":[
		{"type":"add_milestone","params":{"title":"EP","date":"2026-03-01"}},
		{"type":"add_milestone","params":{"title":"PTO","date":"2026-05-01"}}
	]}`)
	require.Len(t, r.Actions, 2)
	assert.False(t, r.Actions[0].RequiresConfirmation)
	assert.False(t, r.Actions[1].RequiresConfirmation)
	assert.True(t, r.RequiresConfirmation)
}

func TestParse_BackendConfirmationFlagsPropagate(t *testing.T) {
	r := Parse(`{"actions":[{"type":"update_task","params":{"taskId":"t1"},"requiresConfirmation":true}]}`)
	require.Len(t, r.Actions, 1)
	assert.True(t, r.Actions[0].RequiresConfirmation)
	assert.True(t, r.RequiresConfirmation)

	r = Parse(`{"actions":[],"requiresConfirmation":true}`)
	assert.True(t, r.RequiresConfirmation)
}

func TestParse_DropsMalformedEntries(t *testing.T) {
	raw := `{"actions":[
		"not an object",
		{"params":{"title":"x"}},
		{"type":"add_task","params":"oops"},
		{"type":"add_task","params":{"startDate":"2026-03-02"}},
		{"type":"set_progress","params":{"taskId":"t1","progress":150}},
		{"type":"add_task","params":{"title":"ok","startDate":"2026-02-30"}},
		{"type":"collapse_bucket","params":{"collapsed":"yes"}},
		{"type":"add_task","params":{"title":"kept","startDate":"2026-03-02","dueDate":"2026-03-06"}}
	]}`
	r, report := ParseReply(raw)

	require.True(t, r.Success)
	require.Len(t, r.Actions, 1)
	assert.Equal(t, "kept", r.Actions[0].Params["title"])
	require.Len(t, report.Dropped, 7)
	assert.Equal(t, 0, report.Dropped[0].Index)
	assert.Equal(t, 6, report.Dropped[6].Index)
	assert.Equal(t, KindCollapseBucket, report.Dropped[6].Type)
	assert.Nil(t, report.Malformed)
}

func TestParse_ActionsNotAnArray(t *testing.T) {
	r, report := ParseReply(`{"actions":{"type":"query"},"response":"hm"}`)
	assert.False(t, r.Success)
	assert.True(t, r.NeedsClarification)
	assert.Empty(t, r.Actions)
	require.Len(t, report.Dropped, 1)
	assert.Equal(t, -1, report.Dropped[0].Index)
}

func TestParse_EmptyDateAndStringNumbersAreKept(t *testing.T) {
	r, report := ParseReply(`{"response":"好的","actions":[
		{"type":"add_task","params":{"title":"API开发","startDate":"","dueDate":"2026-03-13","priority":"urgent"}},
		{"type":"set_progress","params":{"taskId":"t1","progress":"50"}},
		{"type":"update_task","params":{"taskId":"t2","shiftWeeks":"1","status":"completed"}}
	]}`)

	assert.Empty(t, report.Dropped)
	require.True(t, r.Success)
	require.Len(t, r.Actions, 3)
	assert.Equal(t, "", r.Actions[0].Params["startDate"])
	assert.Equal(t, "Urgent", r.Actions[0].Params["priority"])
	assert.Equal(t, 50.0, r.Actions[1].Params["progress"])
	assert.Equal(t, 1.0, r.Actions[2].Params["shiftWeeks"])
	assert.Equal(t, "Completed", r.Actions[2].Params["status"])
}

func TestParse_AllActionsDroppedAsksForClarification(t *testing.T) {
	r, report := ParseReply(`{"response":"已将进度更新为50%","actions":[
		{"type":"set_progress","params":{"taskId":"t1","progress":"half"}},
		{"type":"add_task","params":{"title":"X","dueDate":"next friday"}}
	]}`)

	require.Len(t, report.Dropped, 2)
	assert.False(t, r.Success)
	assert.True(t, r.NeedsClarification)
	assert.Empty(t, r.Actions)
	assert.False(t, r.RequiresConfirmation)
	require.Len(t, r.ClarificationQuestions, 1)
	assert.NotEqual(t, "已将进度更新为50%", r.Message)
}

func TestParse_PartialDropStillSucceeds(t *testing.T) {
	r, report := ParseReply(`{"actions":[
		{"type":"set_progress","params":{"taskId":"t1","progress":"half"}},
		{"type":"set_progress","params":{"taskId":"t2","progress":80}}
	]}`)

	require.Len(t, report.Dropped, 1)
	assert.True(t, r.Success)
	assert.False(t, r.NeedsClarification)
	require.Len(t, r.Actions, 1)
}

func TestParse_ModelClarificationWithDroppedActionsKeepsQuestions(t *testing.T) {
	r := Parse(`{"needs_clarification":true,"response":"哪个任务？","clarification_questions":["请指定任务"],
		"actions":[{"type":"set_progress","params":{}}]}`)

	assert.True(t, r.NeedsClarification)
	assert.Equal(t, "哪个任务？", r.Message)
	assert.Equal(t, []string{"请指定任务"}, r.ClarificationQuestions)
}

func TestParse_UnknownKindPassesThrough(t *testing.T) {
	r := Parse(`{"actions":[{"type":"archive_project","params":{"id":"p1"}}]}`)
	require.Len(t, r.Actions, 1)
	assert.Equal(t, "archive_project", r.Actions[0].Type)
}

func TestParse_ClarificationPassThrough(t *testing.T) {
	r := Parse(`{"actions":[],"response":"哪一个？","needs_clarification":true,"clarification_questions":["1. API开发","2. 前端开发"]}`)
	assert.True(t, r.Success)
	assert.True(t, r.NeedsClarification)
	assert.Equal(t, []string{"1. API开发", "2. 前端开发"}, r.ClarificationQuestions)
}

func TestParse_ClarificationWithoutQuestionsIsRepaired(t *testing.T) {
	r := Parse(`{"actions":[],"response":"请问是哪个任务？","needs_clarification":true}`)
	assert.True(t, r.NeedsClarification)
	assert.Equal(t, []string{"请问是哪个任务？"}, r.ClarificationQuestions)

	r = Parse(`{"actions":[],"needs_clarification":true,"clarification_questions":[]}`)
	assert.Equal(t, []string{clarifyQuestion}, r.ClarificationQuestions)
}

func TestParse_NoStructureFallsBackToClarification(t *testing.T) {
	raw := strings.Repeat("无法理解", 200)
	r, report := ParseReply(raw)

	assert.False(t, r.Success)
	assert.True(t, r.NeedsClarification)
	assert.NotEmpty(t, r.ClarificationQuestions)
	assert.Empty(t, r.Actions)
	assert.Equal(t, maxFallbackRunes+len(truncationMarker), utf8.RuneCountInString(r.Message))
	assert.True(t, strings.HasSuffix(r.Message, truncationMarker))
	assert.ErrorIs(t, report.Malformed, ErrMalformedOutput)
}

func TestParse_ShortPlainTextKeptVerbatim(t *testing.T) {
	r := Parse("  Sorry, I cannot help with that.  ")
	assert.False(t, r.Success)
	assert.Equal(t, "Sorry, I cannot help with that.", r.Message)
	assert.Equal(t, []string{rephraseQuestion}, r.ClarificationQuestions)
}

func TestParse_JSONNullIsMalformed(t *testing.T) {
	r, report := ParseReply("null")
	assert.False(t, r.Success)
	assert.ErrorIs(t, report.Malformed, ErrMalformedOutput)
}

func TestResult_MarshalsEmptyArrays(t *testing.T) {
	data, err := json.Marshal(Result{Success: false, Message: "x"})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"success": false,
		"message": "x",
		"actions": [],
		"needs_clarification": false,
		"clarification_questions": [],
		"requiresConfirmation": false
	}`, string(data))

	data, err = json.Marshal(Action{Type: "query", Description: "d"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"query","params":{},"description":"d","requiresConfirmation":false}`, string(data))
}
