package action

import (
	"context"

	"github.com/dukex/flowrun/pkg/protocol"
)

// Factory creates action step executors.
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (*Factory) ID() string {
	return "action"
}

func (*Factory) Name() string {
	return "Action"
}

func (*Factory) Description() string {
	return "Invokes a configured external action. Incurs one API call and a small fixed cost."
}

func (f *Factory) Create(_ context.Context, config map[string]any) (protocol.StepExecutor, error) {
	return NewExecutor(config)
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"action": map[string]any{
				"type":        "string",
				"description": "Name of the action to invoke",
				"examples":    []string{"send_email", "create_ticket"},
			},
			"agent_id": map[string]any{
				"type":        "string",
				"description": "Agent acting on behalf of this step, recorded in resource totals",
			},
			"params": map[string]any{
				"type":        "object",
				"description": "Opaque parameters forwarded to the action",
			},
			"fail": map[string]any{
				"type":        "boolean",
				"description": "Force the action to fail, for exercising failure policy",
				"default":     false,
			},
			"error_message": map[string]any{
				"type":        "string",
				"description": "Error message reported when 'fail' is set",
			},
		},
		"required": []string{"action"},
	}
}
