package scheduler

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dukex/flowrun/pkg/models"
	"github.com/dukex/flowrun/pkg/persistence/file"
	"github.com/dukex/flowrun/pkg/registry"
	"github.com/dukex/flowrun/pkg/stats"
	"github.com/dukex/flowrun/pkg/steps/trigger"
	"github.com/dukex/flowrun/pkg/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCronExpression(t *testing.T) {
	tests := []struct {
		name     string
		workflow *models.Workflow
		expected string
	}{
		{
			name: "leading trigger with cron",
			workflow: &models.Workflow{
				Steps: []*models.Step{
					{Type: models.StepTypeTrigger, Config: map[string]any{"cron": "*/5 * * * *"}},
				},
			},
			expected: "*/5 * * * *",
		},
		{
			name: "leading trigger without cron",
			workflow: &models.Workflow{
				Steps: []*models.Step{
					{Type: models.StepTypeTrigger, Config: map[string]any{}},
				},
			},
			expected: "",
		},
		{
			name: "first step is not a trigger",
			workflow: &models.Workflow{
				Steps: []*models.Step{
					{Type: models.StepTypeAction, Config: map[string]any{"cron": "*/5 * * * *"}},
				},
			},
			expected: "",
		},
		{
			name:     "no steps",
			workflow: &models.Workflow{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CronExpression(tt.workflow))
		})
	}
}

func TestScheduler_StartSkipsInvalidExpressions(t *testing.T) {
	p := file.NewPersistence(t.TempDir())

	reg := registry.NewRegistry(testLogger())
	reg.RegisterStepExecutor(trigger.NewFactory())

	coordinator := workflow.NewCoordinator(p, reg, stats.NoopSink{}, nil, testLogger())

	ctx := context.Background()

	require.NoError(t, p.WorkflowRepository().SaveWorkflow(ctx, &models.Workflow{
		ID:                "wf-valid",
		UserID:            "alice",
		Name:              "valid schedule",
		Enabled:           true,
		MaxConcurrentRuns: 1,
		Steps: []*models.Step{
			{Type: models.StepTypeTrigger, Config: map[string]any{"cron": "@hourly"}},
		},
	}))
	require.NoError(t, p.WorkflowRepository().SaveWorkflow(ctx, &models.Workflow{
		ID:                "wf-invalid",
		UserID:            "alice",
		Name:              "broken schedule",
		Enabled:           true,
		MaxConcurrentRuns: 1,
		Steps: []*models.Step{
			{Type: models.StepTypeTrigger, Config: map[string]any{"cron": "not a cron"}},
		},
	}))

	scheduler := NewScheduler(p, coordinator, testLogger())
	require.NoError(t, scheduler.Start(ctx))

	scheduler.Stop()
}

func TestScheduler_RunsScheduledWorkflow(t *testing.T) {
	p := file.NewPersistence(t.TempDir())

	reg := registry.NewRegistry(testLogger())
	reg.RegisterStepExecutor(trigger.NewFactory())

	coordinator := workflow.NewCoordinator(p, reg, stats.NoopSink{}, nil, testLogger())

	ctx := context.Background()

	require.NoError(t, p.WorkflowRepository().SaveWorkflow(ctx, &models.Workflow{
		ID:                "wf-1",
		UserID:            "alice",
		Name:              "every second",
		Enabled:           true,
		MaxConcurrentRuns: 5,
		Steps: []*models.Step{
			{Type: models.StepTypeTrigger, Config: map[string]any{"cron": "@every 1s"}},
		},
	}))

	scheduler := NewScheduler(p, coordinator, testLogger())
	require.NoError(t, scheduler.Start(ctx))

	defer scheduler.Stop()

	require.Eventually(t, func() bool {
		executions, err := p.ExecutionRepository().ExecutionsByWorkflow(ctx, "wf-1", 10)

		return err == nil && len(executions) > 0
	}, 10*time.Second, 100*time.Millisecond)

	executions, err := p.ExecutionRepository().ExecutionsByWorkflow(ctx, "wf-1", 10)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"source": "scheduler"}, executions[0].TriggerData)
}
