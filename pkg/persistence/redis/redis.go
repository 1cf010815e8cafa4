// Package redis provides Redis-backed persistence for workflows and executions.
package redis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukex/flowrun/pkg/persistence"
	redis "github.com/redis/go-redis/v9"
)

const keyPrefix = "flowrun"

// Persistence implements the persistence layer on Redis. Workflows and
// executions are JSON values; per-workflow indexes keep recency and running
// counts cheap to query.
type Persistence struct {
	client        redis.UniversalClient
	logger        *slog.Logger
	workflowRepo  *WorkflowRepository
	executionRepo *ExecutionRepository
}

// NewPersistence connects to Redis using a redis:// URL.
func NewPersistence(ctx context.Context, logger *slog.Logger, redisURL string) (*Persistence, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Persistence{
		client:        client,
		logger:        logger,
		workflowRepo:  NewWorkflowRepository(client),
		executionRepo: NewExecutionRepository(client),
	}, nil
}

func (p *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return p.workflowRepo
}

func (p *Persistence) ExecutionRepository() persistence.ExecutionRepository {
	return p.executionRepo
}

func (p *Persistence) HealthCheck(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func (p *Persistence) Close(_ context.Context) error {
	return p.client.Close()
}
