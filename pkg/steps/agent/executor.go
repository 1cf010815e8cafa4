// Package agent provides the agent step executor: an agent-backed action
// with higher resource accounting than a plain action step.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/flowrun/pkg/models"
)

const (
	// Agent invocations fan out to the model behind the agent, so they are
	// accounted at a higher rate than plain actions.
	agentAPICalls = 3
	agentCost     = 0.05
)

// ErrAgentFailed is returned when the agent invocation reports a failure.
var ErrAgentFailed = errors.New("agent invocation failed")

// Executor invokes one agent-backed action.
type Executor struct {
	AgentID      string
	Prompt       string
	Fail         bool
	ErrorMessage string
}

func NewExecutor(config map[string]any) (*Executor, error) {
	agentID, _ := config["agent_id"].(string)
	if agentID == "" {
		return nil, errors.New("missing or invalid 'agent_id' in configuration")
	}

	prompt, _ := config["prompt"].(string)
	fail, _ := config["fail"].(bool)
	errorMessage, _ := config["error_message"].(string)

	return &Executor{
		AgentID:      agentID,
		Prompt:       prompt,
		Fail:         fail,
		ErrorMessage: errorMessage,
	}, nil
}

func (e *Executor) Execute(ctx context.Context, stepCtx models.StepContext, logger *slog.Logger) (*models.StepOutcome, error) {
	logger = logger.With("step_type", "agent", "agent_id", e.AgentID)
	logger.Info("Executing agent step")

	started := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if e.Fail {
		message := e.ErrorMessage
		if message == "" {
			message = e.AgentID
		}

		logger.Error("Agent step failed", "error", message)

		return nil, fmt.Errorf("%w: %s", ErrAgentFailed, message)
	}

	logger.Info("Agent step completed")

	return &models.StepOutcome{
		Result: map[string]any{
			"agent_id": e.AgentID,
			"prompt":   e.Prompt,
			"status":   "completed",
		},
		APICalls:         agentAPICalls,
		Cost:             agentCost,
		ProcessingTimeMs: time.Since(started).Milliseconds(),
		AgentID:          e.AgentID,
	}, nil
}
