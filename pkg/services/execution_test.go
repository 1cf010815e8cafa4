package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dukex/flowrun/pkg/models"
	"github.com/dukex/flowrun/pkg/persistence"
	"github.com/dukex/flowrun/pkg/persistence/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedExecution(t *testing.T, p persistence.Persistence, execution *models.WorkflowExecution) {
	t.Helper()
	require.NoError(t, p.ExecutionRepository().SaveExecution(context.Background(), execution))
}

func TestExecution_ExecutionByID_UserScoping(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	service := NewExecution(p)

	seedExecution(t, p, &models.WorkflowExecution{
		ID:         "exec-1",
		WorkflowID: "wf-1",
		UserID:     "alice",
		Status:     models.ExecutionStatusCompleted,
		StartedAt:  time.Now().UTC(),
	})

	execution, err := service.ExecutionByID(context.Background(), "alice", "exec-1")
	require.NoError(t, err)
	assert.Equal(t, "exec-1", execution.ID)

	// Another user's execution reads as not found, not as forbidden.
	_, err = service.ExecutionByID(context.Background(), "bob", "exec-1")
	assert.True(t, persistence.IsExecutionNotFound(err))

	_, err = service.ExecutionByID(context.Background(), "alice", "missing")
	assert.True(t, persistence.IsExecutionNotFound(err))

	_, err = service.ExecutionByID(context.Background(), "", "exec-1")
	assert.ErrorIs(t, err, ErrEmptyUserID)
}

func TestExecution_RecentExecutions(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	service := NewExecution(p)

	wf := &models.Workflow{
		ID:                "wf-1",
		UserID:            "alice",
		Name:              "history workflow",
		MaxConcurrentRuns: 5,
		Steps: []*models.Step{
			{Type: models.StepTypeTrigger, Config: map[string]any{}},
		},
	}
	require.NoError(t, p.WorkflowRepository().SaveWorkflow(context.Background(), wf))

	base := time.Now().UTC().Add(-time.Hour)
	for i := range 15 {
		seedExecution(t, p, &models.WorkflowExecution{
			ID:         fmt.Sprintf("exec-%02d", i),
			WorkflowID: "wf-1",
			UserID:     "alice",
			Status:     models.ExecutionStatusCompleted,
			StartedAt:  base.Add(time.Duration(i) * time.Minute),
		})
	}

	summaries, err := service.RecentExecutions(context.Background(), "alice", "wf-1")
	require.NoError(t, err)
	require.Len(t, summaries, 10)

	// Newest first.
	assert.Equal(t, "exec-14", summaries[0].ID)
	assert.Equal(t, "exec-05", summaries[9].ID)

	_, err = service.RecentExecutions(context.Background(), "bob", "wf-1")
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestWorkflow_FetchByID(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	service := NewWorkflow(p)

	wf := &models.Workflow{
		ID:                "wf-1",
		UserID:            "alice",
		Name:              "fetch workflow",
		MaxConcurrentRuns: 1,
		Steps: []*models.Step{
			{Type: models.StepTypeTrigger, Config: map[string]any{}},
		},
	}
	require.NoError(t, p.WorkflowRepository().SaveWorkflow(context.Background(), wf))

	fetched, err := service.FetchByID(context.Background(), "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "fetch workflow", fetched.Name)

	_, err = service.FetchByID(context.Background(), "missing")
	assert.True(t, persistence.IsWorkflowNotFound(err))

	message, healthy := service.HealthCheck(context.Background())
	assert.True(t, healthy)
	assert.NotEmpty(t, message)
}
