// Package scheduler starts workflow executions on cron schedules.
package scheduler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dukex/flowrun/pkg/models"
	"github.com/dukex/flowrun/pkg/persistence"
	"github.com/dukex/flowrun/pkg/workflow"
	"github.com/robfig/cron/v3"
)

// Scheduler scans enabled workflows for a leading trigger step with a cron
// expression and launches executions on that schedule. Admission control
// still applies: a tick that hits the concurrency limit is skipped.
type Scheduler struct {
	persistence persistence.Persistence
	coordinator *workflow.Coordinator
	logger      *slog.Logger
	cron        *cron.Cron
}

func NewScheduler(p persistence.Persistence, coordinator *workflow.Coordinator, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		persistence: p,
		coordinator: coordinator,
		logger:      logger.With("module", "scheduler"),
		cron:        cron.New(),
	}
}

// CronExpression extracts the schedule from a workflow's leading trigger
// step. It returns empty when the workflow is not schedule-driven.
func CronExpression(wf *models.Workflow) string {
	if len(wf.Steps) == 0 || wf.Steps[0].Type != models.StepTypeTrigger {
		return ""
	}

	expression, _ := wf.Steps[0].Config["cron"].(string)

	return expression
}

// Start loads all enabled scheduled workflows, registers their cron entries,
// and starts the ticker. Invalid expressions are logged and skipped.
func (s *Scheduler) Start(ctx context.Context) error {
	workflows, err := s.persistence.WorkflowRepository().Workflows(ctx)
	if err != nil {
		return err
	}

	registered := 0

	for _, wf := range workflows {
		if !wf.Enabled {
			continue
		}

		expression := CronExpression(wf)
		if expression == "" {
			continue
		}

		if _, err := cron.ParseStandard(expression); err != nil {
			s.logger.Warn("Skipping workflow with invalid cron expression",
				"workflow_id", wf.ID,
				"expression", expression,
				"error", err)

			continue
		}

		if err := s.register(ctx, wf, expression); err != nil {
			return err
		}

		registered++
	}

	s.logger.Info("Starting scheduler", "scheduled_workflows", registered)
	s.cron.Start()

	return nil
}

func (s *Scheduler) register(ctx context.Context, wf *models.Workflow, expression string) error {
	workflowID := wf.ID
	userID := wf.UserID

	_, err := s.cron.AddFunc(expression, func() {
		_, err := s.coordinator.StartExecution(ctx, workflow.StartRequest{
			WorkflowID:  workflowID,
			UserID:      userID,
			TriggerData: map[string]any{"source": "scheduler"},
		})
		if err != nil {
			var limitErr *workflow.ConcurrencyLimitError
			if errors.As(err, &limitErr) {
				s.logger.Info("Skipping scheduled run, concurrency limit reached",
					"workflow_id", workflowID,
					"current", limitErr.Current,
					"limit", limitErr.Limit)

				return
			}

			s.logger.Error("Failed to start scheduled execution",
				"workflow_id", workflowID,
				"error", err)
		}
	})

	return err
}

// Stop halts the ticker and waits for in-flight scheduled starts.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
}
