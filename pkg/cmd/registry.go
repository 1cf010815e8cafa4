package cmd

import (
	"log/slog"

	"github.com/dukex/flowrun/pkg/registry"
	"github.com/dukex/flowrun/pkg/steps/action"
	"github.com/dukex/flowrun/pkg/steps/agent"
	"github.com/dukex/flowrun/pkg/steps/condition"
	"github.com/dukex/flowrun/pkg/steps/delay"
	"github.com/dukex/flowrun/pkg/steps/trigger"
)

// NewRegistry builds a registry with all native step executors registered.
func NewRegistry(logger *slog.Logger) *registry.Registry {
	reg := registry.NewRegistry(logger)

	reg.RegisterStepExecutor(trigger.NewFactory())
	reg.RegisterStepExecutor(action.NewFactory())
	reg.RegisterStepExecutor(condition.NewFactory())
	reg.RegisterStepExecutor(delay.NewFactory())
	reg.RegisterStepExecutor(agent.NewFactory())

	return reg
}
