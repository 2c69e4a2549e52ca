package testutil

import (
	"fmt"
	"sync/atomic"

	"github.com/alexanderramin/ganttagent/internal/domain"
	"github.com/google/uuid"
)

var testTaskCounter atomic.Int64

// Task options
type TaskOption func(*domain.Task)

func InBucket(bucketID string) TaskOption {
	return func(t *domain.Task) {
		t.BucketID = bucketID
	}
}

func WithDates(start, due string) TaskOption {
	return func(t *domain.Task) {
		t.StartDate = start
		t.DueDate = due
	}
}

func WithStatus(s domain.TaskStatus, progress float64) TaskOption {
	return func(t *domain.Task) {
		t.Status = s
		t.Progress = &progress
	}
}

func WithPriority(p domain.Priority) TaskOption {
	return func(t *domain.Task) {
		t.Priority = p
	}
}

func WithDescription(d string) TaskOption {
	return func(t *domain.Task) {
		t.Description = d
	}
}

func WithDependencies(ids ...string) TaskOption {
	return func(t *domain.Task) {
		t.Dependencies = ids
	}
}

func WithTaskID(id string) TaskOption {
	return func(t *domain.Task) {
		t.ID = id
	}
}

// NewTestTask builds a task with a random UUID and the given title.
func NewTestTask(title string, opts ...TaskOption) domain.Task {
	t := domain.Task{
		ID:    uuid.New().String(),
		Title: title,
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// NewTestBucket builds a bucket; kind defaults to task.
func NewTestBucket(id, name string, kind domain.BucketType) domain.Bucket {
	if kind == "" {
		kind = domain.BucketTask
	}
	return domain.Bucket{ID: id, Name: name, Type: kind}
}

// NewTestSnapshot assembles a snapshot from buckets and tasks.
func NewTestSnapshot(project string, buckets []domain.Bucket, tasks ...domain.Task) *domain.Snapshot {
	return &domain.Snapshot{
		CurrentProject: project,
		Buckets:        buckets,
		Tasks:          tasks,
	}
}

// NewNumberedTasks creates n tasks titled "<prefix> 1".."<prefix> n" in bucketID.
func NewNumberedTasks(prefix, bucketID string, n int) []domain.Task {
	tasks := make([]domain.Task, 0, n)
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("task%04d-%d", testTaskCounter.Add(1), i)
		tasks = append(tasks, NewTestTask(fmt.Sprintf("%s %d", prefix, i), WithTaskID(id), InBucket(bucketID)))
	}
	return tasks
}
