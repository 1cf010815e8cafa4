package trigger

import (
	"context"

	"github.com/dukex/flowrun/pkg/protocol"
)

// Factory creates trigger step executors.
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (*Factory) ID() string {
	return "trigger"
}

func (*Factory) Name() string {
	return "Trigger"
}

func (*Factory) Description() string {
	return "Echoes the run's trigger data. Always succeeds, zero resource cost."
}

func (f *Factory) Create(_ context.Context, config map[string]any) (protocol.StepExecutor, error) {
	return NewExecutor(config), nil
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": true,
	}
}
