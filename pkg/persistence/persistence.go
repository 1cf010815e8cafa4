// Package persistence provides the data storage abstraction for workflow
// definitions and execution records.
package persistence

import (
	"context"

	"github.com/dukex/flowrun/pkg/models"
)

// WorkflowRepository reads and writes workflow definitions. The engine only
// reads them; writes exist for seeding and administration.
type WorkflowRepository interface {
	Workflows(ctx context.Context) ([]*models.Workflow, error)
	WorkflowByID(ctx context.Context, id string) (*models.Workflow, error)
	SaveWorkflow(ctx context.Context, workflow *models.Workflow) error
}

// ExecutionRepository persists execution records. SaveExecution is an
// upsert: the coordinator calls it after every step.
type ExecutionRepository interface {
	SaveExecution(ctx context.Context, execution *models.WorkflowExecution) error
	ExecutionByID(ctx context.Context, id string) (*models.WorkflowExecution, error)

	// ExecutionsByWorkflow returns up to limit executions for the workflow,
	// most recently started first.
	ExecutionsByWorkflow(ctx context.Context, workflowID string, limit int) ([]*models.WorkflowExecution, error)

	// CountRunning counts executions in the running state for the workflow.
	CountRunning(ctx context.Context, workflowID string) (int, error)
}

type Persistence interface {
	WorkflowRepository() WorkflowRepository
	ExecutionRepository() ExecutionRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
