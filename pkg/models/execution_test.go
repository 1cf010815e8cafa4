package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourceTotalsMerge(t *testing.T) {
	totals := ResourceTotals{}

	totals.Merge(ResourceTotals{APICalls: 1, Cost: 0.01, ProcessingTimeMs: 120, AgentsInvolved: []string{"agent-a"}})
	totals.Merge(ResourceTotals{APICalls: 3, Cost: 0.05, ProcessingTimeMs: 80, AgentsInvolved: []string{"agent-a", "agent-b"}})

	assert.Equal(t, 4, totals.APICalls)
	assert.InDelta(t, 0.06, totals.Cost, 0.0001)
	assert.Equal(t, int64(200), totals.ProcessingTimeMs)
	assert.Equal(t, []string{"agent-a", "agent-b"}, totals.AgentsInvolved)
}

func TestResourceTotalsMergeIgnoresEmptyAgent(t *testing.T) {
	totals := ResourceTotals{}
	totals.Merge(ResourceTotals{AgentsInvolved: []string{""}})

	assert.Empty(t, totals.AgentsInvolved)
}

func TestStepOutcomeResourceDelta(t *testing.T) {
	outcome := StepOutcome{APICalls: 3, Cost: 0.05, ProcessingTimeMs: 42, AgentID: "agent-1"}

	delta := outcome.ResourceDelta()
	assert.Equal(t, 3, delta.APICalls)
	assert.Equal(t, []string{"agent-1"}, delta.AgentsInvolved)

	outcome.AgentID = ""
	assert.Empty(t, outcome.ResourceDelta().AgentsInvolved)
}

func TestStepIsCritical(t *testing.T) {
	nonCritical := false
	critical := true

	tests := []struct {
		name     string
		step     Step
		expected bool
	}{
		{"default is critical", Step{Type: StepTypeAction}, true},
		{"explicit critical", Step{Type: StepTypeAction, Critical: &critical}, true},
		{"explicit non-critical", Step{Type: StepTypeAction, Critical: &nonCritical}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.step.IsCritical())
		})
	}
}

func TestAppendLog(t *testing.T) {
	execution := &WorkflowExecution{}

	execution.AppendLog("Starting step %d/%d", 1, 3)
	execution.AppendLog("Step %d completed", 1)

	require.Len(t, execution.Logs, 2)
	assert.True(t, strings.HasSuffix(execution.Logs[0], "Starting step 1/3"))
	assert.Contains(t, execution.Logs[0], " | ")
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, (&WorkflowExecution{Status: ExecutionStatusRunning}).IsTerminal())
	assert.True(t, (&WorkflowExecution{Status: ExecutionStatusCompleted}).IsTerminal())
	assert.True(t, (&WorkflowExecution{Status: ExecutionStatusFailed}).IsTerminal())
}
