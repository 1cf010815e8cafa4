package delay

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/dukex/flowrun/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExecutor(t *testing.T) {
	tests := []struct {
		name     string
		config   map[string]any
		expected int64
		wantErr  bool
	}{
		{"empty config", map[string]any{}, 0, false},
		{"integer delay", map[string]any{"delay_ms": 250}, 250, false},
		{"json float delay", map[string]any{"delay_ms": float64(100)}, 100, false},
		{"invalid delay", map[string]any{"delay_ms": "soon"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			executor, err := NewExecutor(tt.config)
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, executor.DelayMs)
		})
	}
}

func TestExecute_TestModeSkipsWait(t *testing.T) {
	executor, err := NewExecutor(map[string]any{"delay_ms": 60_000})
	require.NoError(t, err)

	started := time.Now()
	outcome, err := executor.Execute(context.Background(), models.StepContext{TestMode: true}, slog.Default())
	require.NoError(t, err)

	assert.Less(t, time.Since(started), time.Second)
	assert.Equal(t, int64(0), outcome.Result["delay_ms"])
	assert.Equal(t, true, outcome.Result["skipped"])
	assert.Equal(t, 0, outcome.APICalls)
}

func TestExecute_Waits(t *testing.T) {
	executor, err := NewExecutor(map[string]any{"delay_ms": 20})
	require.NoError(t, err)

	started := time.Now()
	outcome, err := executor.Execute(context.Background(), models.StepContext{}, slog.Default())
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(started), 20*time.Millisecond)
	assert.Equal(t, int64(20), outcome.Result["delay_ms"])
	assert.Equal(t, false, outcome.Result["skipped"])
}

func TestExecute_CancelledDuringWait(t *testing.T) {
	executor, err := NewExecutor(map[string]any{"delay_ms": 60_000})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err = executor.Execute(ctx, models.StepContext{}, slog.Default())
	require.ErrorIs(t, err, context.Canceled)
}
