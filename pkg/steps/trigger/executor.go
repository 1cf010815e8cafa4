// Package trigger provides the trigger step executor: it echoes the run's
// trigger data into the step results at zero resource cost.
package trigger

import (
	"context"
	"log/slog"

	"github.com/dukex/flowrun/pkg/models"
)

// Executor always succeeds and echoes the trigger data as its result.
type Executor struct{}

func NewExecutor(_ map[string]any) *Executor {
	return &Executor{}
}

func (e *Executor) Execute(_ context.Context, stepCtx models.StepContext, logger *slog.Logger) (*models.StepOutcome, error) {
	logger = logger.With("step_type", "trigger")
	logger.Info("Executing trigger step")

	triggerData := stepCtx.TriggerData
	if triggerData == nil {
		triggerData = map[string]any{}
	}

	return &models.StepOutcome{
		Result: map[string]any{
			"triggered":    true,
			"trigger_data": triggerData,
		},
	}, nil
}
