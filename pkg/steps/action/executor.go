// Package action provides the action step executor. The real side effect is
// delegated to an external action executor in production; this component owns
// the engine-facing contract: one API call, a small fixed cost, and the
// acting agent recorded when configured.
package action

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/flowrun/pkg/models"
)

const (
	// Fixed accounting for one external action invocation.
	actionAPICalls = 1
	actionCost     = 0.01
)

// ErrActionFailed is returned when the configured action reports a failure.
var ErrActionFailed = errors.New("action failed")

// Executor invokes one configured action.
type Executor struct {
	ActionName   string
	AgentID      string
	Params       map[string]any
	Fail         bool
	ErrorMessage string
}

// NewExecutor builds an action executor from a step config.
func NewExecutor(config map[string]any) (*Executor, error) {
	name, _ := config["action"].(string)
	if name == "" {
		return nil, errors.New("missing or invalid 'action' in configuration")
	}

	agentID, _ := config["agent_id"].(string)
	params, _ := config["params"].(map[string]any)
	fail, _ := config["fail"].(bool)
	errorMessage, _ := config["error_message"].(string)

	return &Executor{
		ActionName:   name,
		AgentID:      agentID,
		Params:       params,
		Fail:         fail,
		ErrorMessage: errorMessage,
	}, nil
}

func (e *Executor) Execute(ctx context.Context, stepCtx models.StepContext, logger *slog.Logger) (*models.StepOutcome, error) {
	logger = logger.With("step_type", "action", "action", e.ActionName)
	logger.Info("Executing action step")

	started := time.Now()

	if err := e.invoke(ctx, stepCtx); err != nil {
		logger.Error("Action step failed", "error", err)

		return nil, err
	}

	logger.Info("Action step completed")

	return &models.StepOutcome{
		Result: map[string]any{
			"action": e.ActionName,
			"params": e.Params,
			"status": "executed",
		},
		APICalls:         actionAPICalls,
		Cost:             actionCost,
		ProcessingTimeMs: time.Since(started).Milliseconds(),
		AgentID:          e.AgentID,
	}, nil
}

// invoke stands in for the external action executor call. A config-driven
// failure keeps the failure path exercisable without external systems.
func (e *Executor) invoke(ctx context.Context, _ models.StepContext) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if e.Fail {
		message := e.ErrorMessage
		if message == "" {
			message = e.ActionName
		}

		return fmt.Errorf("%w: %s", ErrActionFailed, message)
	}

	return nil
}
