package persistence

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkflowErrorWrapping(t *testing.T) {
	err := NewWorkflowError("WorkflowByID", "wf-1", ErrWorkflowNotFound)

	assert.True(t, IsWorkflowNotFound(err))
	assert.True(t, errors.Is(err, ErrWorkflowNotFound))
	assert.Contains(t, err.Error(), "wf-1")
	assert.Contains(t, err.Error(), "WorkflowByID")
}

func TestExecutionErrorWrapping(t *testing.T) {
	err := NewExecutionError("ExecutionByID", "exec-abc", ErrExecutionNotFound)

	assert.True(t, IsExecutionNotFound(err))
	assert.False(t, IsWorkflowNotFound(err))
	assert.Contains(t, err.Error(), "exec-abc")
}

func TestIsHelpersOnUnrelatedErrors(t *testing.T) {
	assert.False(t, IsWorkflowNotFound(errors.New("boom")))
	assert.False(t, IsExecutionNotFound(nil))
}
