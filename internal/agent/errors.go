package agent

import (
	"errors"
	"fmt"
)

// ErrMalformedOutput indicates the model reply held no parseable JSON object.
// It is recovered into a clarification result and never reaches the caller.
var ErrMalformedOutput = errors.New("malformed model output")

// FailureKind classifies a non-successful translation for logs and history.
// It is not part of the wire shape.
type FailureKind string

const (
	FailureNone            FailureKind = ""
	FailureInvalidInput    FailureKind = "INVALID_INPUT"
	FailureConfiguration   FailureKind = "CONFIGURATION"
	FailureBackend         FailureKind = "BACKEND"
	FailureMalformedOutput FailureKind = "MALFORMED_OUTPUT"
	FailureInternal        FailureKind = "INTERNAL"
)

// ActionShapeError describes one action entry dropped by the parser.
type ActionShapeError struct {
	Index  int
	Type   string
	Reason string
}

func (e *ActionShapeError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("action %d dropped: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("action %d (%s) dropped: %s", e.Index, e.Type, e.Reason)
}
