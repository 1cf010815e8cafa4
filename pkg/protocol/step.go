// Package protocol defines the capability interfaces between the execution
// engine and pluggable step executors.
package protocol

import (
	"context"
	"log/slog"

	"github.com/dukex/flowrun/pkg/models"
)

// StepExecutor performs the real-world side effect of one step type. The
// engine invokes it with the accumulated step context and receives a
// structured outcome; it is agnostic to the implementation behind it.
type StepExecutor interface {
	Execute(ctx context.Context, stepCtx models.StepContext, logger *slog.Logger) (*models.StepOutcome, error)
}

// StepExecutorFactory builds executors from a step's opaque configuration.
type StepExecutorFactory interface {
	// ID returns the step type this factory serves.
	ID() string

	// Name returns a human-readable component name.
	Name() string

	// Description returns a brief description of the step type.
	Description() string

	// Schema returns the JSON schema the step config is validated against.
	Schema() map[string]any

	// Create parses the config and returns a ready-to-run executor.
	Create(ctx context.Context, config map[string]any) (StepExecutor, error)
}
