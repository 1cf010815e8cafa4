package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/flowrun/pkg/models"
	"github.com/dukex/flowrun/pkg/persistence"
)

// ExecutionRepository handles execution record database operations.
type ExecutionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewExecutionRepository(db *sql.DB, logger *slog.Logger) *ExecutionRepository {
	return &ExecutionRepository{db: db, logger: logger}
}

const executionColumns = `id, workflow_id, user_id, status, trigger_data, total_steps, current_step,
	completed_steps, step_results, execution_logs, resources_consumed, final_result,
	error_message, started_at, completed_at, duration_ms, test_mode`

// SaveExecution upserts the execution record. The coordinator calls this
// after every step, so the write must be idempotent on the ID.
func (er *ExecutionRepository) SaveExecution(ctx context.Context, execution *models.WorkflowExecution) error {
	triggerDataJSON, err := json.Marshal(execution.TriggerData)
	if err != nil {
		return persistence.NewExecutionError("SaveExecution", execution.ID, err)
	}

	stepResultsJSON, err := json.Marshal(execution.StepResults)
	if err != nil {
		return persistence.NewExecutionError("SaveExecution", execution.ID, err)
	}

	logsJSON, err := json.Marshal(execution.Logs)
	if err != nil {
		return persistence.NewExecutionError("SaveExecution", execution.ID, err)
	}

	resourcesJSON, err := json.Marshal(execution.Resources)
	if err != nil {
		return persistence.NewExecutionError("SaveExecution", execution.ID, err)
	}

	var finalResultJSON []byte
	if execution.FinalResult != nil {
		finalResultJSON, err = json.Marshal(execution.FinalResult)
		if err != nil {
			return persistence.NewExecutionError("SaveExecution", execution.ID, err)
		}
	}

	query := `
		INSERT INTO workflow_executions (` + executionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			current_step = EXCLUDED.current_step,
			completed_steps = EXCLUDED.completed_steps,
			step_results = EXCLUDED.step_results,
			execution_logs = EXCLUDED.execution_logs,
			resources_consumed = EXCLUDED.resources_consumed,
			final_result = EXCLUDED.final_result,
			error_message = EXCLUDED.error_message,
			completed_at = EXCLUDED.completed_at,
			duration_ms = EXCLUDED.duration_ms
	`

	_, err = er.db.ExecContext(ctx, query,
		execution.ID,
		execution.WorkflowID,
		execution.UserID,
		execution.Status,
		triggerDataJSON,
		execution.TotalSteps,
		execution.CurrentStep,
		execution.CompletedSteps,
		stepResultsJSON,
		logsJSON,
		resourcesJSON,
		finalResultJSON,
		execution.ErrorMessage,
		execution.StartedAt,
		execution.CompletedAt,
		execution.DurationMs,
		execution.TestMode,
	)
	if err != nil {
		return persistence.NewExecutionError("SaveExecution", execution.ID, err)
	}

	return nil
}

func (er *ExecutionRepository) ExecutionByID(ctx context.Context, id string) (*models.WorkflowExecution, error) {
	query := `SELECT ` + executionColumns + ` FROM workflow_executions WHERE id = $1`

	execution, err := scanExecution(er.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewExecutionError("ExecutionByID", id, persistence.ErrExecutionNotFound)
		}

		return nil, persistence.NewExecutionError("ExecutionByID", id, err)
	}

	return execution, nil
}

func (er *ExecutionRepository) ExecutionsByWorkflow(ctx context.Context, workflowID string, limit int) ([]*models.WorkflowExecution, error) {
	query := `
		SELECT ` + executionColumns + `
		FROM workflow_executions
		WHERE workflow_id = $1
		ORDER BY started_at DESC
		LIMIT $2
	`

	rows, err := er.db.QueryContext(ctx, query, workflowID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query executions: %w", err)
	}

	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			er.logger.ErrorContext(ctx, "failed to close rows", "error", closeErr)
		}
	}()

	var executions []*models.WorkflowExecution

	for rows.Next() {
		execution, err := scanExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution: %w", err)
		}

		executions = append(executions, execution)
	}

	return executions, rows.Err()
}

func (er *ExecutionRepository) CountRunning(ctx context.Context, workflowID string) (int, error) {
	query := `SELECT COUNT(*) FROM workflow_executions WHERE workflow_id = $1 AND status = $2`

	var count int
	if err := er.db.QueryRowContext(ctx, query, workflowID, models.ExecutionStatusRunning).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count running executions: %w", err)
	}

	return count, nil
}

func scanExecution(row rowScanner) (*models.WorkflowExecution, error) {
	var (
		execution       models.WorkflowExecution
		triggerDataJSON []byte
		stepResultsJSON []byte
		logsJSON        []byte
		resourcesJSON   []byte
		finalResultJSON []byte
		completedAt     sql.NullTime
	)

	err := row.Scan(
		&execution.ID,
		&execution.WorkflowID,
		&execution.UserID,
		&execution.Status,
		&triggerDataJSON,
		&execution.TotalSteps,
		&execution.CurrentStep,
		&execution.CompletedSteps,
		&stepResultsJSON,
		&logsJSON,
		&resourcesJSON,
		&finalResultJSON,
		&execution.ErrorMessage,
		&execution.StartedAt,
		&completedAt,
		&execution.DurationMs,
		&execution.TestMode,
	)
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		execution.CompletedAt = &completedAt.Time
	}

	if err := json.Unmarshal(triggerDataJSON, &execution.TriggerData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trigger data: %w", err)
	}

	if err := json.Unmarshal(stepResultsJSON, &execution.StepResults); err != nil {
		return nil, fmt.Errorf("failed to unmarshal step results: %w", err)
	}

	if err := json.Unmarshal(logsJSON, &execution.Logs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal execution logs: %w", err)
	}

	if err := json.Unmarshal(resourcesJSON, &execution.Resources); err != nil {
		return nil, fmt.Errorf("failed to unmarshal resources: %w", err)
	}

	if len(finalResultJSON) > 0 {
		if err := json.Unmarshal(finalResultJSON, &execution.FinalResult); err != nil {
			return nil, fmt.Errorf("failed to unmarshal final result: %w", err)
		}
	}

	return &execution, nil
}
