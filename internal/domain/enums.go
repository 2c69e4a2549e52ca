package domain

import "strings"

type BucketType string

const (
	BucketTask      BucketType = "task"
	BucketMilestone BucketType = "milestone"
)

type TaskStatus string

const (
	StatusNotStarted TaskStatus = "NotStarted"
	StatusInProgress TaskStatus = "InProgress"
	StatusCompleted  TaskStatus = "Completed"
)

// ValidTaskStatuses is the canonical set of status strings the front-end accepts.
var ValidTaskStatuses = map[string]bool{
	string(StatusNotStarted): true,
	string(StatusInProgress): true,
	string(StatusCompleted):  true,
}

type Priority string

const (
	PriorityUrgent    Priority = "Urgent"
	PriorityImportant Priority = "Important"
	PriorityNormal    Priority = "Normal"
	PriorityLow       Priority = "Low"
)

// ValidPriorities is the canonical set of priority strings the front-end accepts.
var ValidPriorities = map[string]bool{
	string(PriorityUrgent):    true,
	string(PriorityImportant): true,
	string(PriorityNormal):    true,
	string(PriorityLow):       true,
}

// ParseTaskStatus matches s against the canonical statuses ignoring case,
// spaces and underscores ("in progress" → InProgress).
func ParseTaskStatus(s string) (TaskStatus, bool) {
	key := canonicalKey(s)
	for v := range ValidTaskStatuses {
		if canonicalKey(v) == key {
			return TaskStatus(v), true
		}
	}
	return "", false
}

// ParsePriority matches s against the canonical priorities ignoring case.
func ParsePriority(s string) (Priority, bool) {
	key := canonicalKey(s)
	for v := range ValidPriorities {
		if canonicalKey(v) == key {
			return Priority(v), true
		}
	}
	return "", false
}

func canonicalKey(s string) string {
	return strings.ToLower(strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.TrimSpace(s)))
}
