package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/ganttagent/internal/domain"
	"github.com/alexanderramin/ganttagent/internal/llm"
	"github.com/alexanderramin/ganttagent/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var monday = time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

func TestDefaultTemplate_CarriesOperationCatalog(t *testing.T) {
	tmpl := DefaultTemplate()
	for _, op := range []string{
		"add_task", "update_task", "delete_task", "set_progress", "add_milestone",
		"add_bucket", "update_bucket", "delete_bucket", "collapse_bucket",
		"add_dependency", "remove_dependency", "query", "shiftWeeks", "shiftDays",
	} {
		assert.Contains(t, tmpl, op)
	}
	assert.Contains(t, tmpl, "needs_clarification")
	assert.Contains(t, tmpl, "2025-03-03")
}

func TestSystemPrompt_RewritesExampleYear(t *testing.T) {
	a := New(DefaultTemplate())
	sys := a.SystemPrompt(monday)

	assert.NotContains(t, sys, "2025-")
	assert.NotContains(t, sys, "2025年")
	assert.Contains(t, sys, "2026-03-03")
	assert.Contains(t, sys, "2026年3月15日")
	// The raw template is untouched.
	assert.Contains(t, a.Template(), "2025-03-03")
}

func TestSystemPrompt_LeavesOtherNumbersAlone(t *testing.T) {
	a := New("id 2025 stays, 2025-01-02 moves, 12025-x")
	got := a.SystemPrompt(monday)
	assert.Equal(t, "id 2025 stays, 2026-01-02 moves, 12026-x", got)
}

func TestUserPrompt_NoContext(t *testing.T) {
	a := New("sys")
	got := a.UserPrompt("添加一个任务", nil, monday)
	assert.Equal(t, "Today's date: 2026-03-02 (Monday)\nCurrent year: 2026\n\nUser input: 添加一个任务", got)
}

func TestUserPrompt_WithContext(t *testing.T) {
	snap := testutil.NewTestSnapshot("Apollo",
		[]domain.Bucket{testutil.NewTestBucket("b1", "Design", domain.BucketTask)},
		testutil.NewTestTask("Wireframes", testutil.WithTaskID("task-0001-abcd"), testutil.InBucket("b1")),
	)
	a := New("sys")
	got := a.UserPrompt("rename wireframes", snap, monday)

	assert.True(t, strings.HasPrefix(got, "Today's date: 2026-03-02 (Monday)\nCurrent year: 2026\nProject: Apollo"))
	assert.Contains(t, got, "[task-000] Wireframes")
	assert.True(t, strings.HasSuffix(got, "\n\nUser input: rename wireframes"))
}

func TestAssemble_OrderAndRoles(t *testing.T) {
	a := New("example 2025-05-01")
	msgs := a.Assemble("hi", nil, monday)

	require.Len(t, msgs, 2)
	assert.Equal(t, llm.RoleSystem, msgs[0].Role)
	assert.Equal(t, "example 2026-05-01", msgs[0].Content)
	assert.Equal(t, llm.RoleUser, msgs[1].Role)
	assert.Contains(t, msgs[1].Content, "User input: hi")
}

func TestAssemble_Reproducible(t *testing.T) {
	a := New(DefaultTemplate())
	snap := testutil.NewTestSnapshot("P", nil, testutil.NewTestTask("T", testutil.WithTaskID("t1")))
	assert.Equal(t, a.Assemble("x", snap, monday), a.Assemble("x", snap, monday))
}

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	a, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTemplate(), a.Template())
}

func TestLoad_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.md")
	require.NoError(t, os.WriteFile(path, []byte("custom 2025-01-01"), 0o644))

	a, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "custom 2025-01-01", a.Template())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.md"))
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.md")
	require.NoError(t, os.WriteFile(empty, []byte("  \n"), 0o644))
	_, err = Load(empty)
	assert.ErrorIs(t, err, ErrEmptyTemplate)
}

func TestDiff(t *testing.T) {
	same, err := Diff("a", "one\ntwo\n", "b", "one\ntwo\n")
	require.NoError(t, err)
	assert.Empty(t, same)

	d, err := Diff("default", "one\ntwo\n", "custom.md", "one\nthree\n")
	require.NoError(t, err)
	assert.Contains(t, d, "--- default")
	assert.Contains(t, d, "+++ custom.md")
	assert.Contains(t, d, "-two")
	assert.Contains(t, d, "+three")
}
