package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dukex/flowrun/pkg/models"
	"github.com/dukex/flowrun/pkg/persistence"
	redis "github.com/redis/go-redis/v9"
)

// WorkflowRepository stores workflow definitions as JSON values with a set
// index of all workflow IDs.
type WorkflowRepository struct {
	client redis.UniversalClient
}

func NewWorkflowRepository(client redis.UniversalClient) *WorkflowRepository {
	return &WorkflowRepository{client: client}
}

func workflowKey(id string) string {
	return keyPrefix + ":workflow:" + id
}

func workflowIndexKey() string {
	return keyPrefix + ":workflows"
}

func (wr *WorkflowRepository) Workflows(ctx context.Context) ([]*models.Workflow, error) {
	ids, err := wr.client.SMembers(ctx, workflowIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	workflows := make([]*models.Workflow, 0, len(ids))

	for _, id := range ids {
		workflow, err := wr.WorkflowByID(ctx, id)
		if err != nil {
			if persistence.IsWorkflowNotFound(err) {
				continue
			}

			return nil, err
		}

		workflows = append(workflows, workflow)
	}

	return workflows, nil
}

func (wr *WorkflowRepository) WorkflowByID(ctx context.Context, id string) (*models.Workflow, error) {
	data, err := wr.client.Get(ctx, workflowKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, persistence.NewWorkflowError("WorkflowByID", id, persistence.ErrWorkflowNotFound)
		}

		return nil, persistence.NewWorkflowError("WorkflowByID", id, err)
	}

	var workflow models.Workflow
	if err := json.Unmarshal(data, &workflow); err != nil {
		return nil, persistence.NewWorkflowError("WorkflowByID", id, err)
	}

	return &workflow, nil
}

func (wr *WorkflowRepository) SaveWorkflow(ctx context.Context, workflow *models.Workflow) error {
	data, err := json.Marshal(workflow)
	if err != nil {
		return persistence.NewWorkflowError("SaveWorkflow", workflow.ID, err)
	}

	pipe := wr.client.TxPipeline()
	pipe.Set(ctx, workflowKey(workflow.ID), data, 0)
	pipe.SAdd(ctx, workflowIndexKey(), workflow.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return persistence.NewWorkflowError("SaveWorkflow", workflow.ID, err)
	}

	return nil
}
