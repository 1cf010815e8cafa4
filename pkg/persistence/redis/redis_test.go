package redis

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/dukex/flowrun/pkg/models"
	"github.com/dukex/flowrun/pkg/persistence"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) *Persistence {
	t.Helper()

	redisURL := os.Getenv("FLOWRUN_TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("FLOWRUN_TEST_REDIS_URL not set, skipping redis persistence tests")
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	p, err := NewPersistence(context.Background(), logger, redisURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = p.Close(context.Background())
	})

	return p
}

func TestRedisPersistence_ExecutionLifecycle(t *testing.T) {
	p := setupRedis(t)
	ctx := context.Background()

	workflowID := uuid.New().String()

	execution := &models.WorkflowExecution{
		ID:         uuid.New().String(),
		WorkflowID: workflowID,
		UserID:     "alice",
		Status:     models.ExecutionStatusRunning,
		TotalSteps: 2,
		StartedAt:  time.Now().UTC(),
	}
	require.NoError(t, p.ExecutionRepository().SaveExecution(ctx, execution))

	count, err := p.ExecutionRepository().CountRunning(ctx, workflowID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	execution.Status = models.ExecutionStatusCompleted
	require.NoError(t, p.ExecutionRepository().SaveExecution(ctx, execution))

	count, err = p.ExecutionRepository().CountRunning(ctx, workflowID)
	require.NoError(t, err)
	assert.Zero(t, count)

	fetched, err := p.ExecutionRepository().ExecutionByID(ctx, execution.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, fetched.Status)

	_, err = p.ExecutionRepository().ExecutionByID(ctx, "missing")
	assert.True(t, persistence.IsExecutionNotFound(err))
}

func TestRedisPersistence_ExecutionsByWorkflowOrdering(t *testing.T) {
	p := setupRedis(t)
	ctx := context.Background()

	workflowID := uuid.New().String()
	base := time.Now().UTC().Add(-time.Hour)

	for i := range 15 {
		execution := &models.WorkflowExecution{
			ID:         fmt.Sprintf("%s-%02d", workflowID, i),
			WorkflowID: workflowID,
			UserID:     "alice",
			Status:     models.ExecutionStatusCompleted,
			StartedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, p.ExecutionRepository().SaveExecution(ctx, execution))
	}

	executions, err := p.ExecutionRepository().ExecutionsByWorkflow(ctx, workflowID, 10)
	require.NoError(t, err)
	require.Len(t, executions, 10)
	assert.Equal(t, fmt.Sprintf("%s-14", workflowID), executions[0].ID)
	assert.Equal(t, fmt.Sprintf("%s-05", workflowID), executions[9].ID)
}

func TestRedisPersistence_WorkflowRoundTrip(t *testing.T) {
	p := setupRedis(t)
	ctx := context.Background()

	wf := &models.Workflow{
		ID:                uuid.New().String(),
		UserID:            "alice",
		Name:              "redis workflow",
		Enabled:           true,
		MaxConcurrentRuns: 3,
		Steps: []*models.Step{
			{Type: models.StepTypeTrigger, Config: map[string]any{}},
		},
	}
	require.NoError(t, p.WorkflowRepository().SaveWorkflow(ctx, wf))

	fetched, err := p.WorkflowRepository().WorkflowByID(ctx, wf.ID)
	require.NoError(t, err)
	assert.Equal(t, "redis workflow", fetched.Name)
	assert.Equal(t, 3, fetched.MaxConcurrentRuns)

	_, err = p.WorkflowRepository().WorkflowByID(ctx, "missing")
	assert.True(t, persistence.IsWorkflowNotFound(err))
}
