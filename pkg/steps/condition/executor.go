// Package condition provides the condition step executor. It evaluates a
// boolean outcome for downstream logic; it never branches the step sequence
// itself, sequencing stays linear.
package condition

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/dukex/flowrun/pkg/models"
)

// Executor evaluates either a literal expression or a field comparison
// against the run's trigger data.
type Executor struct {
	Expression any
	Field      string
	Operator   string
	Value      any
}

func NewExecutor(config map[string]any) (*Executor, error) {
	field, _ := config["field"].(string)
	operator, _ := config["operator"].(string)

	if field != "" && operator == "" {
		operator = "eq"
	}

	return &Executor{
		Expression: config["expression"],
		Field:      field,
		Operator:   operator,
		Value:      config["value"],
	}, nil
}

func (e *Executor) Execute(_ context.Context, stepCtx models.StepContext, logger *slog.Logger) (*models.StepOutcome, error) {
	logger = logger.With("step_type", "condition")
	logger.Info("Executing condition step")

	conditionMet, err := e.evaluate(stepCtx)
	if err != nil {
		logger.Error("Condition evaluation failed", "error", err)

		return nil, err
	}

	logger.Info("Condition evaluated", "condition_met", conditionMet)

	return &models.StepOutcome{
		Result: map[string]any{
			"condition_met": conditionMet,
		},
	}, nil
}

func (e *Executor) evaluate(stepCtx models.StepContext) (bool, error) {
	if e.Field != "" {
		return e.compareField(stepCtx)
	}

	return toBool(e.Expression)
}

func (e *Executor) compareField(stepCtx models.StepContext) (bool, error) {
	actual, exists := stepCtx.TriggerData[e.Field]

	switch e.Operator {
	case "exists":
		return exists, nil
	case "eq":
		return exists && fmt.Sprint(actual) == fmt.Sprint(e.Value), nil
	case "neq":
		return !exists || fmt.Sprint(actual) != fmt.Sprint(e.Value), nil
	default:
		return false, fmt.Errorf("unsupported condition operator: %q", e.Operator)
	}
}

// toBool coerces the configured expression value into a boolean, treating an
// absent expression as true.
func toBool(exp any) (bool, error) {
	if exp == nil {
		return true, nil
	}

	switch v := exp.(type) {
	case bool:
		return v, nil
	case string:
		if v == "" {
			return true, nil
		}

		result, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("cannot convert string %q to boolean: %w", v, err)
		}

		return result, nil
	case int:
		return v != 0, nil
	case int64:
		return v != 0, nil
	case float64:
		return v != 0, nil
	default:
		return false, fmt.Errorf("cannot convert %T to boolean", exp)
	}
}
