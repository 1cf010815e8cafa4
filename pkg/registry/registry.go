// Package registry maps step types to their executor factories.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/dukex/flowrun/pkg/protocol"
	"github.com/xeipuuv/gojsonschema"
)

// ErrUnknownStepType indicates a step type with no registered factory. This
// is a configuration defect: it is always critical and never retried.
var ErrUnknownStepType = errors.New("unknown step type")

// ErrInvalidStepConfig indicates a step config that failed schema validation.
var ErrInvalidStepConfig = errors.New("invalid step config")

type Registry struct {
	logger    *slog.Logger
	factories map[string]protocol.StepExecutorFactory
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:    logger,
		factories: make(map[string]protocol.StepExecutorFactory),
	}
}

func (r *Registry) RegisterStepExecutor(factory protocol.StepExecutorFactory) {
	r.factories[factory.ID()] = factory
}

// StepTypes returns the registered step types, sorted for stable output.
func (r *Registry) StepTypes() []string {
	types := make([]string, 0, len(r.factories))
	for stepType := range r.factories {
		types = append(types, stepType)
	}

	sort.Strings(types)

	return types
}

// CreateExecutor validates the config against the factory's schema and
// builds the executor for the given step type.
func (r *Registry) CreateExecutor(ctx context.Context, stepType string, config map[string]any) (protocol.StepExecutor, error) {
	factory, ok := r.factories[stepType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStepType, stepType)
	}

	if config == nil {
		config = map[string]any{}
	}

	if err := r.validateConfig(factory.Schema(), config); err != nil {
		return nil, fmt.Errorf("%w for step type %q: %w", ErrInvalidStepConfig, stepType, err)
	}

	return factory.Create(ctx, config)
}

func (r *Registry) validateConfig(schema, config map[string]any) error {
	if schema == nil {
		return nil
	}

	schemaLoader := gojsonschema.NewGoLoader(schema)
	dataLoader := gojsonschema.NewGoLoader(config)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return err
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}

		return errors.New(strings.Join(details, "; "))
	}

	return nil
}

// HealthCheck reports the registered step types.
func (r *Registry) HealthCheck() (string, bool) {
	if len(r.factories) == 0 {
		return "No step executors registered", false
	}

	return "Registered step types: " + strings.Join(r.StepTypes(), ", "), true
}
