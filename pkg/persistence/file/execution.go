package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dukex/flowrun/pkg/models"
	"github.com/dukex/flowrun/pkg/persistence"
)

const executionsDir = "executions"

// ExecutionRepository handles execution record file operations.
type ExecutionRepository struct {
	root string
}

func NewExecutionRepository(root string) *ExecutionRepository {
	return &ExecutionRepository{root: root}
}

// SaveExecution writes the execution record, overwriting any previous state.
func (er *ExecutionRepository) SaveExecution(_ context.Context, execution *models.WorkflowExecution) error {
	if err := validateID(execution.ID); err != nil {
		return persistence.NewExecutionError("SaveExecution", execution.ID, err)
	}

	dir := filepath.Join(er.root, executionsDir)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return persistence.NewExecutionError("SaveExecution", execution.ID, err)
	}

	data, err := json.Marshal(execution)
	if err != nil {
		return persistence.NewExecutionError("SaveExecution", execution.ID, err)
	}

	filePath := filepath.Join(dir, execution.ID+".json")
	if err := os.WriteFile(filePath, data, 0600); err != nil {
		return persistence.NewExecutionError("SaveExecution", execution.ID, err)
	}

	return nil
}

func (er *ExecutionRepository) ExecutionByID(_ context.Context, id string) (*models.WorkflowExecution, error) {
	if err := validateID(id); err != nil {
		return nil, persistence.NewExecutionError("ExecutionByID", id, err)
	}

	filePath := filepath.Join(er.root, executionsDir, id+".json")

	data, err := os.ReadFile(filePath) // #nosec G304 -- path built from a validated ID
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewExecutionError("ExecutionByID", id, persistence.ErrExecutionNotFound)
		}

		return nil, persistence.NewExecutionError("ExecutionByID", id, err)
	}

	var execution models.WorkflowExecution
	if err := json.Unmarshal(data, &execution); err != nil {
		return nil, persistence.NewExecutionError("ExecutionByID", id, err)
	}

	return &execution, nil
}

func (er *ExecutionRepository) ExecutionsByWorkflow(ctx context.Context, workflowID string, limit int) ([]*models.WorkflowExecution, error) {
	executions, err := er.scan(ctx, func(execution *models.WorkflowExecution) bool {
		return execution.WorkflowID == workflowID
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(executions, func(i, j int) bool {
		return executions[i].StartedAt.After(executions[j].StartedAt)
	})

	if limit > 0 && len(executions) > limit {
		executions = executions[:limit]
	}

	return executions, nil
}

func (er *ExecutionRepository) CountRunning(ctx context.Context, workflowID string) (int, error) {
	executions, err := er.scan(ctx, func(execution *models.WorkflowExecution) bool {
		return execution.WorkflowID == workflowID && execution.Status == models.ExecutionStatusRunning
	})
	if err != nil {
		return 0, err
	}

	return len(executions), nil
}

func (er *ExecutionRepository) scan(_ context.Context, keep func(*models.WorkflowExecution) bool) ([]*models.WorkflowExecution, error) {
	dir := filepath.Join(er.root, executionsDir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*models.WorkflowExecution{}, nil
		}

		return nil, fmt.Errorf("failed to read executions directory: %w", err)
	}

	var executions []*models.WorkflowExecution

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		execution, err := er.ExecutionByID(context.Background(), strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			// Skip invalid files
			continue
		}

		if keep(execution) {
			executions = append(executions, execution)
		}
	}

	return executions, nil
}
