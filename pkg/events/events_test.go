package events

import (
	"encoding/json"
	"testing"

	"github.com/dukex/flowrun/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBaseEvent(t *testing.T) {
	event := NewBaseEvent(ExecutionStartedEvent, "wf-123")

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, ExecutionStartedEvent, event.Type)
	assert.Equal(t, "wf-123", event.WorkflowID)
	assert.False(t, event.Timestamp.IsZero())
}

func TestExecutionCompleted_JSONSerialization(t *testing.T) {
	original := &ExecutionCompleted{
		BaseEvent:      NewBaseEvent(ExecutionCompletedEvent, "wf-123"),
		ExecutionID:    "exec-456",
		StepsCompleted: 3,
		DurationMs:     1500,
		Resources: models.ResourceTotals{
			APICalls:       4,
			Cost:           0.08,
			AgentsInvolved: []string{"agent-1"},
		},
	}

	jsonData, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Contains(t, string(jsonData), `"type":"execution.completed"`)
	assert.Contains(t, string(jsonData), `"execution_id":"exec-456"`)
	assert.Contains(t, string(jsonData), `"steps_completed":3`)

	var deserialized ExecutionCompleted

	err = json.Unmarshal(jsonData, &deserialized)
	require.NoError(t, err)

	assert.Equal(t, original.ExecutionID, deserialized.ExecutionID)
	assert.Equal(t, original.StepsCompleted, deserialized.StepsCompleted)
	assert.Equal(t, original.DurationMs, deserialized.DurationMs)
	assert.Equal(t, original.Resources.AgentsInvolved, deserialized.Resources.AgentsInvolved)
}

func TestGetType(t *testing.T) {
	assert.Equal(t, ExecutionStartedEvent, ExecutionStarted{}.GetType())
	assert.Equal(t, ExecutionCompletedEvent, ExecutionCompleted{}.GetType())
	assert.Equal(t, ExecutionFailedEvent, ExecutionFailed{}.GetType())
	assert.Equal(t, WorkflowStatsEvent, WorkflowStats{}.GetType())
}
