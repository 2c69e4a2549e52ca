package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Snapshot is the caller-supplied, read-only view of a project schedule.
// It is decoded per request and never mutated by the pipeline.
type Snapshot struct {
	CurrentProject string   `json:"currentProject,omitempty" yaml:"currentProject,omitempty"`
	Buckets        []Bucket `json:"buckets,omitempty" yaml:"buckets,omitempty"`
	Tasks          []Task   `json:"tasks,omitempty" yaml:"tasks,omitempty"`
}

// Bucket is a named group of tasks or milestones.
type Bucket struct {
	ID   string     `json:"id" yaml:"id"`
	Name string     `json:"name,omitempty" yaml:"name,omitempty"`
	Type BucketType `json:"bucketType,omitempty" yaml:"bucketType,omitempty"`
}

// Kind returns the bucket type, treating anything other than milestone as task.
func (b Bucket) Kind() BucketType {
	if b.Type == BucketMilestone {
		return BucketMilestone
	}
	return BucketTask
}

// DisplayName returns the bucket name, falling back to its ID.
func (b Bucket) DisplayName() string {
	return CoalesceStr(b.Name, b.ID)
}

// Task is one schedule entry. Only ID and Title are required.
type Task struct {
	ID           string     `json:"id" yaml:"id"`
	Title        string     `json:"title" yaml:"title"`
	BucketID     string     `json:"bucketId,omitempty" yaml:"bucketId,omitempty"`
	Status       TaskStatus `json:"status,omitempty" yaml:"status,omitempty"`
	Progress     *float64   `json:"progress,omitempty" yaml:"progress,omitempty"`
	StartDate    string     `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	DueDate      string     `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
	Priority     Priority   `json:"priority,omitempty" yaml:"priority,omitempty"`
	Description  string     `json:"description,omitempty" yaml:"description,omitempty"`
	Dependencies []string   `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// UnmarshalJSON accepts the field aliases the planner front-end emits
// (completedPercent, startDateTime, dueDateTime) alongside the canonical names.
// Fields of an unexpected type are read leniently or left empty; only a
// value that is not an object is an error.
func (t *Task) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID               looseString `json:"id"`
		Title            looseString `json:"title"`
		BucketID         looseString `json:"bucketId"`
		Status           looseString `json:"status"`
		Progress         looseFloat  `json:"progress"`
		CompletedPercent looseFloat  `json:"completedPercent"`
		StartDate        looseString `json:"startDate"`
		StartDateTime    looseString `json:"startDateTime"`
		DueDate          looseString `json:"dueDate"`
		DueDateTime      looseString `json:"dueDateTime"`
		Priority         looseString `json:"priority"`
		Description      looseString `json:"description"`
		Dependencies     looseIDs    `json:"dependencies"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("decoding task: %w", err)
	}

	*t = Task{
		ID:           string(aux.ID),
		Title:        string(aux.Title),
		BucketID:     string(aux.BucketID),
		Status:       TaskStatus(aux.Status),
		Progress:     CoalesceFloatPtr(aux.Progress.v, aux.CompletedPercent.v),
		StartDate:    CoalesceStr(string(aux.StartDate), string(aux.StartDateTime)),
		DueDate:      CoalesceStr(string(aux.DueDate), string(aux.DueDateTime)),
		Priority:     Priority(aux.Priority),
		Description:  string(aux.Description),
		Dependencies: []string(aux.Dependencies),
	}
	if st, ok := ParseTaskStatus(string(aux.Status)); ok {
		t.Status = st
	}
	if p, ok := ParsePriority(string(aux.Priority)); ok {
		t.Priority = p
	}
	return nil
}

// UnmarshalJSON reads numeric ids and any casing of the bucket type.
func (b *Bucket) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID   looseString `json:"id"`
		Name looseString `json:"name"`
		Type looseString `json:"bucketType"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("decoding bucket: %w", err)
	}
	*b = Bucket{
		ID:   string(aux.ID),
		Name: string(aux.Name),
		Type: BucketType(strings.ToLower(strings.TrimSpace(string(aux.Type)))),
	}
	return nil
}

// UnmarshalJSON never fails: entries that are not objects are skipped and
// a context that is not an object decodes as an empty snapshot.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var aux struct {
		CurrentProject looseString `json:"currentProject"`
		Buckets        looseList   `json:"buckets"`
		Tasks          looseList   `json:"tasks"`
	}
	*s = Snapshot{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return nil
	}

	s.CurrentProject = string(aux.CurrentProject)
	for _, raw := range aux.Buckets {
		if isNull(raw) {
			continue
		}
		var b Bucket
		if err := json.Unmarshal(raw, &b); err == nil {
			s.Buckets = append(s.Buckets, b)
		}
	}
	for _, raw := range aux.Tasks {
		if isNull(raw) {
			continue
		}
		var t Task
		if err := json.Unmarshal(raw, &t); err == nil {
			s.Tasks = append(s.Tasks, t)
		}
	}
	return nil
}

// ProgressOrZero returns the task progress percentage, or 0 when unset.
func (t Task) ProgressOrZero() float64 {
	if t.Progress == nil {
		return 0
	}
	return *t.Progress
}

// BucketNames maps bucket IDs to display names. Buckets without an ID are skipped.
func (s *Snapshot) BucketNames() map[string]string {
	names := make(map[string]string)
	if s == nil {
		return names
	}
	for _, b := range s.Buckets {
		if b.ID == "" {
			continue
		}
		names[b.ID] = b.DisplayName()
	}
	return names
}
