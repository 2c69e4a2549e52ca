package agent

import (
	"encoding/json"
	"time"

	"github.com/alexanderramin/ganttagent/internal/domain"
)

// Action kinds the instruction template documents. The catalog is open:
// unknown kinds pass through the parser untouched.
const (
	KindAddTask          = "add_task"
	KindUpdateTask       = "update_task"
	KindDeleteTask       = "delete_task"
	KindSetProgress      = "set_progress"
	KindAddMilestone     = "add_milestone"
	KindAddBucket        = "add_bucket"
	KindUpdateBucket     = "update_bucket"
	KindDeleteBucket     = "delete_bucket"
	KindCollapseBucket   = "collapse_bucket"
	KindAddDependency    = "add_dependency"
	KindRemoveDependency = "remove_dependency"
	KindQuery            = "query"
)

// MaxMessageRunes is the longest accepted user instruction.
const MaxMessageRunes = 2000

// Request is one translation request from the chat front-end.
type Request struct {
	Message string           `json:"message" jsonschema:"minLength=1,maxLength=2000"`
	Context *domain.Snapshot `json:"context,omitempty"`
}

// Action is one proposed schedule operation. Params is an open map whose
// shape is only checked per kind.
type Action struct {
	Type                 string         `json:"type"`
	Params               map[string]any `json:"params"`
	Description          string         `json:"description"`
	RequiresConfirmation bool           `json:"requiresConfirmation"`
}

// Result is the single response shape for every translation, successful
// or not. Field names are fixed for front-end compatibility.
type Result struct {
	Success                bool     `json:"success"`
	Message                string   `json:"message"`
	Actions                []Action `json:"actions"`
	NeedsClarification     bool     `json:"needs_clarification"`
	ClarificationQuestions []string `json:"clarification_questions"`
	RequiresConfirmation   bool     `json:"requiresConfirmation"`
}

// MarshalJSON emits empty arrays instead of null.
func (r Result) MarshalJSON() ([]byte, error) {
	type plain Result
	out := plain(r)
	if out.Actions == nil {
		out.Actions = []Action{}
	}
	if out.ClarificationQuestions == nil {
		out.ClarificationQuestions = []string{}
	}
	return json.Marshal(out)
}

// MarshalJSON emits an empty object instead of null params.
func (a Action) MarshalJSON() ([]byte, error) {
	type plain Action
	out := plain(a)
	if out.Params == nil {
		out.Params = map[string]any{}
	}
	return json.Marshal(out)
}

// Translation is the audit record of one processed request.
type Translation struct {
	Message       string
	ReferenceDate time.Time
	Result        Result
	FailureKind   FailureKind
	Model         string
	RawReply      string
	Dropped       int
	LatencyMs     int64
}
