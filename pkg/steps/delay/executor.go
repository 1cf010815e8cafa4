// Package delay provides the delay step executor: a cancellable wait for a
// configured duration, skipped entirely in test mode.
package delay

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dukex/flowrun/pkg/models"
)

// Executor waits for the configured duration.
type Executor struct {
	DelayMs int64
}

func NewExecutor(config map[string]any) (*Executor, error) {
	delayMs, err := parseDelayMs(config["delay_ms"])
	if err != nil {
		return nil, err
	}

	return &Executor{DelayMs: delayMs}, nil
}

func parseDelayMs(raw any) (int64, error) {
	switch v := raw.(type) {
	case nil:
		return 0, nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	default:
		return 0, errors.New("invalid 'delay_ms' in configuration")
	}
}

func (e *Executor) Execute(ctx context.Context, stepCtx models.StepContext, logger *slog.Logger) (*models.StepOutcome, error) {
	logger = logger.With("step_type", "delay", "delay_ms", e.DelayMs)

	if stepCtx.TestMode {
		logger.Info("Test mode, skipping delay")

		return &models.StepOutcome{
			Result: map[string]any{
				"delay_ms": int64(0),
				"skipped":  true,
			},
		}, nil
	}

	logger.Info("Executing delay step")

	timer := time.NewTimer(time.Duration(e.DelayMs) * time.Millisecond)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	return &models.StepOutcome{
		Result: map[string]any{
			"delay_ms": e.DelayMs,
			"skipped":  false,
		},
	}, nil
}
