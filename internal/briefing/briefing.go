// Package briefing renders a schedule snapshot into the compact plain-text
// context block that accompanies every model request.
package briefing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/ganttagent/internal/domain"
)

const (
	// UnassignedLabel groups tasks whose bucket cannot be resolved.
	UnassignedLabel = "unassigned"

	largeProjectThreshold = 50
	largeProjectPerBucket = 10
	defaultPerBucket      = 15

	idPrefixLen   = 8
	maxTitleRunes = 80
	maxDescRunes  = 50
)

// Topic keyword tables. Matching is substring-based on the lowercased message.
var (
	dependencyKeywords  = []string{"依赖", "dependency", "depends", "前置", "后置"}
	progressKeywords    = []string{"进度", "progress", "完成", "percent", "%"}
	statusKeywords      = []string{"状态", "status", "完成", "未开始", "进行中"}
	descriptionKeywords = []string{"描述", "description", "详情"}
)

// Topics records which optional task details the user message asks about.
type Topics struct {
	Dependencies bool
	Progress     bool
	Status       bool
	Description  bool
}

// DetectTopics scans message for the topical keyword sets.
func DetectTopics(message string) Topics {
	lower := strings.ToLower(message)
	return Topics{
		Dependencies: containsAny(lower, dependencyKeywords),
		Progress:     containsAny(lower, progressKeywords),
		Status:       containsAny(lower, statusKeywords),
		Description:  containsAny(lower, descriptionKeywords),
	}
}

// Serialize renders snap as plain text for the model, surfacing only the task
// details the message is about. A nil snapshot yields an empty string.
func Serialize(snap *domain.Snapshot, message string) string {
	if snap == nil {
		return ""
	}

	var b strings.Builder
	if snap.CurrentProject != "" {
		fmt.Fprintf(&b, "\nProject: %s", snap.CurrentProject)
	}

	if len(snap.Tasks) > 0 {
		writeTasks(&b, snap, DetectTopics(message))
	}

	if len(snap.Buckets) > 0 {
		labels := make([]string, 0, len(snap.Buckets))
		for _, bk := range snap.Buckets {
			labels = append(labels, fmt.Sprintf("%s(%s)", bk.DisplayName(), kindLabel(bk.Kind())))
		}
		fmt.Fprintf(&b, "\n\nAll groups: %s", strings.Join(labels, ", "))
	}

	return b.String()
}

type taskGroup struct {
	name  string
	lines []string
}

func writeTasks(b *strings.Builder, snap *domain.Snapshot, topics Topics) {
	names := snap.BucketNames()

	var groups []*taskGroup
	byName := make(map[string]*taskGroup)
	for _, t := range snap.Tasks {
		name, ok := names[t.BucketID]
		if !ok {
			name = UnassignedLabel
		}
		g, ok := byName[name]
		if !ok {
			g = &taskGroup{name: name}
			byName[name] = g
			groups = append(groups, g)
		}
		g.lines = append(g.lines, renderTask(t, topics))
	}

	limit := defaultPerBucket
	if len(snap.Tasks) > largeProjectThreshold {
		limit = largeProjectPerBucket
	}

	fmt.Fprintf(b, "\n\nTask count: %d tasks", len(snap.Tasks))
	b.WriteString("\n\nTasks by group:")
	for _, g := range groups {
		fmt.Fprintf(b, "\n[%s]", g.name)
		shown := g.lines
		if len(shown) > limit {
			shown = shown[:limit]
		}
		b.WriteString("\n" + strings.Join(shown, "\n"))
		if hidden := len(g.lines) - len(shown); hidden > 0 {
			fmt.Fprintf(b, "\n  ... %d more tasks", hidden)
		}
	}
}

func renderTask(t domain.Task, topics Topics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  • [%s] %s", ShortID(t.ID), truncate(domain.CoalesceStr(t.Title, "untitled"), maxTitleRunes))

	if topics.Status || topics.Progress {
		status := domain.CoalesceStr(string(t.Status), "Unknown")
		fmt.Fprintf(&b, " - %s (%s%%)", status, strconv.FormatFloat(t.ProgressOrZero(), 'f', -1, 64))
	}

	if t.StartDate != "" && t.DueDate != "" {
		fmt.Fprintf(&b, " [%s ~ %s]", t.StartDate, t.DueDate)
	}

	if t.Priority != "" && t.Priority != domain.PriorityNormal {
		fmt.Fprintf(&b, " [%s]", t.Priority)
	}

	if topics.Description && t.Description != "" {
		fmt.Fprintf(&b, " - %s...", truncateRunes(t.Description, maxDescRunes))
	}

	if topics.Dependencies && len(t.Dependencies) > 0 {
		deps := make([]string, 0, len(t.Dependencies))
		for _, d := range t.Dependencies {
			deps = append(deps, ShortID(d))
		}
		fmt.Fprintf(&b, " ← depends on [%s]", strings.Join(deps, ", "))
	}

	return b.String()
}

// ShortID returns the first eight characters of id, the form the model sees.
func ShortID(id string) string {
	if id == "" {
		return "unknown"
	}
	return truncateRunes(id, idPrefixLen)
}

func kindLabel(k domain.BucketType) string {
	if k == domain.BucketMilestone {
		return "milestone-group"
	}
	return "task-group"
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// truncate cuts s to n runes and marks the cut with an ellipsis.
func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return truncateRunes(s, n) + "…"
}
