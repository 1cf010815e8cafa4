package agent

import (
	"context"
	"log/slog"
	"testing"

	"github.com/dukex/flowrun/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExecutor_RequiresAgentID(t *testing.T) {
	_, err := NewExecutor(map[string]any{"prompt": "summarize"})
	require.Error(t, err)
}

func TestExecute_Success(t *testing.T) {
	executor, err := NewExecutor(map[string]any{
		"agent_id": "agent-42",
		"prompt":   "summarize the order",
	})
	require.NoError(t, err)

	outcome, err := executor.Execute(context.Background(), models.StepContext{}, slog.Default())
	require.NoError(t, err)

	assert.Equal(t, "completed", outcome.Result["status"])
	assert.Equal(t, "agent-42", outcome.AgentID)
	assert.Equal(t, 3, outcome.APICalls)
	assert.InDelta(t, 0.05, outcome.Cost, 0.0001)
}

func TestExecute_CostsMoreThanPlainAction(t *testing.T) {
	assert.Greater(t, agentAPICalls, 1)
	assert.Greater(t, agentCost, 0.01)
}

func TestExecute_ConfiguredFailure(t *testing.T) {
	executor, err := NewExecutor(map[string]any{
		"agent_id":      "agent-42",
		"fail":          true,
		"error_message": "model overloaded",
	})
	require.NoError(t, err)

	_, err = executor.Execute(context.Background(), models.StepContext{}, slog.Default())
	require.ErrorIs(t, err, ErrAgentFailed)
	assert.Contains(t, err.Error(), "model overloaded")
}
