package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDangerous(t *testing.T) {
	for _, kind := range []string{KindDeleteTask, KindDeleteBucket, KindRemoveDependency} {
		assert.True(t, IsDangerous(kind), kind)
	}
	for _, kind := range []string{KindAddTask, KindUpdateTask, KindQuery, KindCollapseBucket, ""} {
		assert.False(t, IsDangerous(kind), kind)
	}
}

func TestEnforceConfirmation_SingleSafeAction(t *testing.T) {
	r := Result{Actions: []Action{{Type: KindAddTask}}}
	EnforceConfirmation(&r)
	assert.False(t, r.Actions[0].RequiresConfirmation)
	assert.False(t, r.RequiresConfirmation)
}

func TestEnforceConfirmation_DangerousCannotBeRelaxed(t *testing.T) {
	r := Result{Actions: []Action{{Type: KindRemoveDependency, RequiresConfirmation: false}}}
	EnforceConfirmation(&r)
	assert.True(t, r.Actions[0].RequiresConfirmation)
	assert.True(t, r.RequiresConfirmation)
}

func TestEnforceConfirmation_BatchRegardlessOfFlags(t *testing.T) {
	r := Result{Actions: []Action{{Type: KindAddTask}, {Type: KindQuery}}}
	EnforceConfirmation(&r)
	assert.True(t, r.RequiresConfirmation)
	assert.False(t, r.Actions[0].RequiresConfirmation)
}

func TestEnforceConfirmation_EmptyKeepsResultFlag(t *testing.T) {
	r := Result{RequiresConfirmation: true}
	EnforceConfirmation(&r)
	assert.True(t, r.RequiresConfirmation)
}
