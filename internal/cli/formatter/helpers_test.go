package formatter

import (
	"testing"

	"github.com/alexanderramin/ganttagent/internal/agent"
	"github.com/alexanderramin/ganttagent/internal/llm"
	"github.com/stretchr/testify/assert"
)

func TestFormatParams(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]any
		want   string
	}{
		{"empty", nil, ""},
		{"sorted keys", map[string]any{"title": "A", "progress": 50.0}, "progress=50 title=A"},
		{"fractional number", map[string]any{"shiftWeeks": 1.5}, "shiftWeeks=1.5"},
		{"bool", map[string]any{"collapsed": true}, "collapsed=true"},
		{"quoted when spaced", map[string]any{"title": "API dev"}, `title="API dev"`},
		{"empty string quoted", map[string]any{"title": ""}, `title=""`},
		{"null", map[string]any{"dueDate": nil}, "dueDate=null"},
		{"list as json", map[string]any{"ids": []any{"a", "b"}}, `ids=["a","b"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatParams(tt.params))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcd…", Truncate("abcdefgh", 5))
	assert.Equal(t, "添加任…", Truncate("添加任务开发", 4))
	assert.Equal(t, "a b", Truncate("a\n  b", 10))
}

func TestTruncID(t *testing.T) {
	assert.Equal(t, "3f2a9c1e", stripANSI(TruncID("3f2a9c1e-5b6d")))
	assert.Equal(t, "abc", stripANSI(TruncID("abc")))
}

func TestFormatLatency(t *testing.T) {
	assert.Equal(t, "850ms", FormatLatency(850))
	assert.Equal(t, "1.5s", FormatLatency(1500))
}

func TestHeader_UnderlineMatchesVisibleWidth(t *testing.T) {
	assert.Equal(t, "RESULT\n──────", stripANSI(Header("result")))
	assert.Equal(t, "任务\n────", stripANSI(Header("任务")))
}

func TestStatusPill(t *testing.T) {
	assert.Equal(t, "● ok", stripANSI(StatusPill(agent.Result{Success: true})))
	assert.Equal(t, "? needs clarification", stripANSI(StatusPill(agent.Result{NeedsClarification: true})))
	assert.Equal(t, "✖ failed", stripANSI(StatusPill(agent.Result{})))
}

func TestActionStyle_DangerousKindsAreRed(t *testing.T) {
	for _, kind := range []string{agent.KindDeleteTask, agent.KindDeleteBucket, agent.KindRemoveDependency} {
		assert.Equal(t, StyleRed.GetForeground(), ActionStyle(kind).GetForeground(), kind)
	}
	assert.Equal(t, StyleGreen.GetForeground(), ActionStyle(agent.KindAddTask).GetForeground())
	assert.Equal(t, StyleBlue.GetForeground(), ActionStyle(agent.KindQuery).GetForeground())
	assert.Equal(t, StylePurple.GetForeground(), ActionStyle("rename_chart").GetForeground())
}

func TestRenderTable(t *testing.T) {
	out := stripANSI(RenderTable([]string{"A", "Long"}, [][]string{{"wide cell", "x"}, {"b"}}))
	assert.Equal(t, "A          Long\n"+
		"─────────  ────\n"+
		"wide cell  x\n"+
		"b          \n", out)
	assert.Empty(t, RenderTable(nil, nil))
}

func TestFormatMessages(t *testing.T) {
	out := stripANSI(FormatMessages([]llm.Message{
		{Role: llm.RoleSystem, Content: "sys\n"},
		{Role: llm.RoleUser, Content: "hi"},
	}))
	assert.Equal(t, "SYSTEM\n──────\nsys\n\nUSER\n────\nhi\n", out)
}

func TestFormatDiff(t *testing.T) {
	assert.Contains(t, stripANSI(FormatDiff("")), "No differences")

	diff := "--- a\n+++ b\n@@ -1 +1 @@\n-old\n+new\n"
	assert.Equal(t, diff, stripANSI(FormatDiff(diff)))
}
