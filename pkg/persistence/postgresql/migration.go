package postgresql

import (
	"context"

	"github.com/dukex/flowrun/pkg/persistence/sqlbase"
)

var migrations = map[int]string{
	1: `
		CREATE TABLE IF NOT EXISTS workflows (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			steps JSONB NOT NULL DEFAULT '[]',
			enabled BOOLEAN NOT NULL DEFAULT TRUE,
			max_concurrent_runs INTEGER NOT NULL DEFAULT 1,
			retry_policy JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS workflow_executions (
			id TEXT PRIMARY KEY,
			workflow_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			status TEXT NOT NULL,
			trigger_data JSONB NOT NULL DEFAULT '{}',
			total_steps INTEGER NOT NULL DEFAULT 0,
			current_step INTEGER NOT NULL DEFAULT 0,
			completed_steps INTEGER NOT NULL DEFAULT 0,
			step_results JSONB NOT NULL DEFAULT '[]',
			execution_logs JSONB NOT NULL DEFAULT '[]',
			resources_consumed JSONB NOT NULL DEFAULT '{}',
			final_result JSONB,
			error_message TEXT NOT NULL DEFAULT '',
			started_at TIMESTAMP WITH TIME ZONE NOT NULL,
			completed_at TIMESTAMP WITH TIME ZONE,
			duration_ms BIGINT NOT NULL DEFAULT 0,
			test_mode BOOLEAN NOT NULL DEFAULT FALSE
		);

		CREATE INDEX IF NOT EXISTS idx_executions_workflow_started
			ON workflow_executions (workflow_id, started_at DESC);

		CREATE INDEX IF NOT EXISTS idx_executions_workflow_status
			ON workflow_executions (workflow_id, status);
	`,
}

func (p *Persistence) migrate(ctx context.Context) error {
	manager := sqlbase.NewMigrationManager(p.logger, p.db, migrations)

	return manager.RunMigrations(ctx)
}
