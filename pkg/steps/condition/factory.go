package condition

import (
	"context"

	"github.com/dukex/flowrun/pkg/protocol"
)

// Factory creates condition step executors.
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (*Factory) ID() string {
	return "condition"
}

func (*Factory) Name() string {
	return "Condition"
}

func (*Factory) Description() string {
	return "Evaluates a boolean outcome for downstream logic. Zero resource cost."
}

func (f *Factory) Create(_ context.Context, config map[string]any) (protocol.StepExecutor, error) {
	return NewExecutor(config)
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"expression": map[string]any{
				"description": "Literal boolean-ish value: bool, number or parseable string",
				"examples":    []any{true, "false", 1},
			},
			"field": map[string]any{
				"type":        "string",
				"description": "Trigger data field to compare instead of a literal expression",
			},
			"operator": map[string]any{
				"type":    "string",
				"enum":    []string{"eq", "neq", "exists"},
				"default": "eq",
			},
			"value": map[string]any{
				"description": "Expected value for eq/neq comparison",
			},
		},
	}
}
