// Package workflow implements admission control and execution coordination.
package workflow

import (
	"context"
	"fmt"
	"sync"

	"github.com/dukex/flowrun/pkg/models"
	"github.com/dukex/flowrun/pkg/persistence"
)

// ConcurrencyLimitError is returned when a workflow already has as many
// running executions as its limit allows.
type ConcurrencyLimitError struct {
	WorkflowID string
	Current    int
	Limit      int
}

func (e *ConcurrencyLimitError) Error() string {
	return fmt.Sprintf("workflow %s has %d running executions, limit is %d", e.WorkflowID, e.Current, e.Limit)
}

// AdmissionController gates new executions against each workflow's
// max_concurrent_runs. The running count check and the creation of the new
// execution record happen under one per-workflow lock, so two concurrent
// starts can never both pass a limit with one slot left.
type AdmissionController struct {
	executions persistence.ExecutionRepository
	locks      sync.Map // workflowID -> *sync.Mutex
}

func NewAdmissionController(executions persistence.ExecutionRepository) *AdmissionController {
	return &AdmissionController{executions: executions}
}

func (a *AdmissionController) lockFor(workflowID string) *sync.Mutex {
	lock, _ := a.locks.LoadOrStore(workflowID, &sync.Mutex{})

	return lock.(*sync.Mutex)
}

// Admit checks the workflow's running count and, if a slot is free, invokes
// create to persist the new execution while still holding the lock. A
// ConcurrencyLimitError is returned when no slot is free.
func (a *AdmissionController) Admit(ctx context.Context, wf *models.Workflow, create func(ctx context.Context) error) error {
	lock := a.lockFor(wf.ID)
	lock.Lock()
	defer lock.Unlock()

	current, err := a.executions.CountRunning(ctx, wf.ID)
	if err != nil {
		return fmt.Errorf("failed to count running executions: %w", err)
	}

	if current >= wf.MaxConcurrentRuns {
		return &ConcurrencyLimitError{
			WorkflowID: wf.ID,
			Current:    current,
			Limit:      wf.MaxConcurrentRuns,
		}
	}

	return create(ctx)
}
