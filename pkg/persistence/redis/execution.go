package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dukex/flowrun/pkg/models"
	"github.com/dukex/flowrun/pkg/persistence"
	redis "github.com/redis/go-redis/v9"
)

// ExecutionRepository stores execution records as JSON values. Two indexes
// are kept per workflow: a sorted set scored by start time for recency
// queries, and a plain set of running execution IDs for admission counts.
type ExecutionRepository struct {
	client redis.UniversalClient
}

func NewExecutionRepository(client redis.UniversalClient) *ExecutionRepository {
	return &ExecutionRepository{client: client}
}

func executionKey(id string) string {
	return keyPrefix + ":execution:" + id
}

func executionsByWorkflowKey(workflowID string) string {
	return keyPrefix + ":executions:" + workflowID
}

func runningSetKey(workflowID string) string {
	return keyPrefix + ":running:" + workflowID
}

func (er *ExecutionRepository) SaveExecution(ctx context.Context, execution *models.WorkflowExecution) error {
	data, err := json.Marshal(execution)
	if err != nil {
		return persistence.NewExecutionError("SaveExecution", execution.ID, err)
	}

	pipe := er.client.TxPipeline()
	pipe.Set(ctx, executionKey(execution.ID), data, 0)
	pipe.ZAdd(ctx, executionsByWorkflowKey(execution.WorkflowID), redis.Z{
		Score:  float64(execution.StartedAt.UnixMilli()),
		Member: execution.ID,
	})

	if execution.Status == models.ExecutionStatusRunning {
		pipe.SAdd(ctx, runningSetKey(execution.WorkflowID), execution.ID)
	} else {
		pipe.SRem(ctx, runningSetKey(execution.WorkflowID), execution.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return persistence.NewExecutionError("SaveExecution", execution.ID, err)
	}

	return nil
}

func (er *ExecutionRepository) ExecutionByID(ctx context.Context, id string) (*models.WorkflowExecution, error) {
	data, err := er.client.Get(ctx, executionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
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
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	ids, err := er.client.ZRevRange(ctx, executionsByWorkflowKey(workflowID), 0, stop).Result()
	if err != nil {
		return nil, err
	}

	executions := make([]*models.WorkflowExecution, 0, len(ids))

	for _, id := range ids {
		execution, err := er.ExecutionByID(ctx, id)
		if err != nil {
			if persistence.IsExecutionNotFound(err) {
				continue
			}

			return nil, err
		}

		executions = append(executions, execution)
	}

	return executions, nil
}

func (er *ExecutionRepository) CountRunning(ctx context.Context, workflowID string) (int, error) {
	count, err := er.client.SCard(ctx, runningSetKey(workflowID)).Result()
	if err != nil {
		return 0, err
	}

	return int(count), nil
}
