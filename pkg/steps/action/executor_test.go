package action

import (
	"context"
	"log/slog"
	"testing"

	"github.com/dukex/flowrun/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFactory(t *testing.T) {
	factory := NewFactory()
	assert.Equal(t, "action", factory.ID())
	assert.NotEmpty(t, factory.Schema())
}

func TestNewExecutor(t *testing.T) {
	tests := []struct {
		name    string
		config  map[string]any
		wantErr bool
	}{
		{
			name:    "missing action name",
			config:  map[string]any{},
			wantErr: true,
		},
		{
			name:    "minimal config",
			config:  map[string]any{"action": "send_email"},
			wantErr: false,
		},
		{
			name: "full config",
			config: map[string]any{
				"action":   "create_ticket",
				"agent_id": "agent-7",
				"params":   map[string]any{"priority": "high"},
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			executor, err := NewExecutor(tt.config)
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.NotNil(t, executor)
		})
	}
}

func TestExecute_Success(t *testing.T) {
	executor, err := NewExecutor(map[string]any{
		"action":   "send_email",
		"agent_id": "agent-1",
		"params":   map[string]any{"to": "user@example.com"},
	})
	require.NoError(t, err)

	outcome, err := executor.Execute(context.Background(), models.StepContext{}, slog.Default())
	require.NoError(t, err)

	assert.Equal(t, "executed", outcome.Result["status"])
	assert.Equal(t, "send_email", outcome.Result["action"])
	assert.Equal(t, 1, outcome.APICalls)
	assert.InDelta(t, 0.01, outcome.Cost, 0.0001)
	assert.Equal(t, "agent-1", outcome.AgentID)
}

func TestExecute_ConfiguredFailure(t *testing.T) {
	executor, err := NewExecutor(map[string]any{
		"action":        "flaky_call",
		"fail":          true,
		"error_message": "upstream 503",
	})
	require.NoError(t, err)

	outcome, err := executor.Execute(context.Background(), models.StepContext{}, slog.Default())
	require.ErrorIs(t, err, ErrActionFailed)
	assert.Contains(t, err.Error(), "upstream 503")
	assert.Nil(t, outcome)
}

func TestExecute_CancelledContext(t *testing.T) {
	executor, err := NewExecutor(map[string]any{"action": "send_email"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = executor.Execute(ctx, models.StepContext{}, slog.Default())
	require.ErrorIs(t, err, context.Canceled)
}
