package delay

import (
	"context"

	"github.com/dukex/flowrun/pkg/protocol"
)

// Factory creates delay step executors.
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (*Factory) ID() string {
	return "delay"
}

func (*Factory) Name() string {
	return "Delay"
}

func (*Factory) Description() string {
	return "Waits for a configured duration. Skipped in test mode, cancellable between ticks."
}

func (f *Factory) Create(_ context.Context, config map[string]any) (protocol.StepExecutor, error) {
	return NewExecutor(config)
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"delay_ms": map[string]any{
				"type":        "integer",
				"minimum":     0,
				"description": "Milliseconds to wait before the next step",
				"default":     0,
			},
		},
	}
}
