package agent

import (
	"context"

	"github.com/dukex/flowrun/pkg/protocol"
)

// Factory creates agent step executors.
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (*Factory) ID() string {
	return "agent"
}

func (*Factory) Name() string {
	return "Agent"
}

func (*Factory) Description() string {
	return "Invokes an agent-backed action. Higher API call and cost accounting than a plain action."
}

func (f *Factory) Create(_ context.Context, config map[string]any) (protocol.StepExecutor, error) {
	return NewExecutor(config)
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"agent_id": map[string]any{
				"type":        "string",
				"description": "Identifier of the agent to invoke, recorded in resource totals",
			},
			"prompt": map[string]any{
				"type":        "string",
				"description": "Instruction forwarded to the agent",
			},
			"fail": map[string]any{
				"type":        "boolean",
				"description": "Force the invocation to fail, for exercising failure policy",
				"default":     false,
			},
			"error_message": map[string]any{
				"type":        "string",
				"description": "Error message reported when 'fail' is set",
			},
		},
		"required": []string{"agent_id"},
	}
}
