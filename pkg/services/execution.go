package services

import (
	"context"
	"time"

	"github.com/dukex/flowrun/pkg/models"
	"github.com/dukex/flowrun/pkg/persistence"
)

// maxRecentExecutions caps the per-workflow history listing.
const maxRecentExecutions = 10

// ExecutionSummary is the trimmed view returned by history listings. Full
// step results and logs are only available on the single-execution lookup.
type ExecutionSummary struct {
	ID             string                 `json:"id"`
	WorkflowID     string                 `json:"workflow_id"`
	Status         models.ExecutionStatus `json:"status"`
	TotalSteps     int                    `json:"total_steps"`
	CompletedSteps int                    `json:"completed_steps"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	StartedAt      time.Time              `json:"started_at"`
	CompletedAt    *time.Time             `json:"completed_at,omitempty"`
	DurationMs     int64                  `json:"duration_ms"`
}

// Execution serves status queries over execution records. All lookups are
// scoped to the requesting user; records owned by other users read as not
// found.
type Execution struct {
	persistence persistence.Persistence
}

// NewExecution creates a new execution query service.
func NewExecution(persistence persistence.Persistence) *Execution {
	return &Execution{
		persistence: persistence,
	}
}

// ExecutionByID returns the full execution record, including per-step
// results, accumulated resources, and the execution log.
func (e *Execution) ExecutionByID(ctx context.Context, userID, executionID string) (*models.WorkflowExecution, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	execution, err := e.persistence.ExecutionRepository().ExecutionByID(ctx, executionID)
	if err != nil {
		return nil, err
	}

	if execution.UserID != userID {
		return nil, persistence.NewExecutionError("ExecutionByID", executionID, persistence.ErrExecutionNotFound)
	}

	return execution, nil
}

// RecentExecutions returns up to maxRecentExecutions summaries for one
// workflow, newest first.
func (e *Execution) RecentExecutions(ctx context.Context, userID, workflowID string) ([]ExecutionSummary, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	wf, err := e.persistence.WorkflowRepository().WorkflowByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if wf.UserID != userID {
		return nil, persistence.NewWorkflowError("RecentExecutions", workflowID, persistence.ErrWorkflowNotFound)
	}

	executions, err := e.persistence.ExecutionRepository().ExecutionsByWorkflow(ctx, workflowID, maxRecentExecutions)
	if err != nil {
		return nil, err
	}

	summaries := make([]ExecutionSummary, 0, len(executions))
	for _, execution := range executions {
		summaries = append(summaries, ExecutionSummary{
			ID:             execution.ID,
			WorkflowID:     execution.WorkflowID,
			Status:         execution.Status,
			TotalSteps:     execution.TotalSteps,
			CompletedSteps: execution.CompletedSteps,
			ErrorMessage:   execution.ErrorMessage,
			StartedAt:      execution.StartedAt,
			CompletedAt:    execution.CompletedAt,
			DurationMs:     execution.DurationMs,
		})
	}

	return summaries, nil
}
