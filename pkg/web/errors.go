package web

import (
	"errors"

	"github.com/dukex/flowrun/pkg/persistence"
	"github.com/dukex/flowrun/pkg/services"
	"github.com/dukex/flowrun/pkg/workflow"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

// concurrencyLimitProblem extends the RFC 7807 payload with the running
// count and configured limit so callers can back off intelligently.
type concurrencyLimitProblem struct {
	*problems.Problem

	Current int `json:"current"`
	Limit   int `json:"limit"`
}

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func unauthorized(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(401).
		WithInstance(c.Path()).
		WithType("unauthorized").
		WithDetail(detail)

	return c.Status(fiber.StatusUnauthorized).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

func tooManyExecutions(c fiber.Ctx, limitErr *workflow.ConcurrencyLimitError) error {
	problem := &concurrencyLimitProblem{
		Problem: problems.NewStatusProblem(429).
			WithInstance(c.Path()).
			WithType("concurrency_limit_exceeded").
			WithDetail(limitErr.Error()),
		Current: limitErr.Current,
		Limit:   limitErr.Limit,
	}

	return c.Status(fiber.StatusTooManyRequests).JSON(problem)
}

// handleServiceError maps domain errors to problem responses.
func handleServiceError(c fiber.Ctx, err error) error {
	var limitErr *workflow.ConcurrencyLimitError

	switch {
	case errors.As(err, &limitErr):
		return tooManyExecutions(c, limitErr)

	case errors.Is(err, workflow.ErrWorkflowDisabled):
		problem := problems.NewStatusProblem(409).
			WithInstance(c.Path()).
			WithType("workflow_disabled").
			WithDetail("workflow is disabled")

		return c.Status(fiber.StatusConflict).JSON(problem)

	case errors.Is(err, workflow.ErrExecutionNotRunning):
		problem := problems.NewStatusProblem(409).
			WithInstance(c.Path()).
			WithType("execution_not_running").
			WithDetail("execution is not running")

		return c.Status(fiber.StatusConflict).JSON(problem)

	case errors.Is(err, services.ErrEmptyUserID):
		return unauthorized(c, "Missing "+UserIDHeader+" header")

	case persistence.IsWorkflowNotFound(err):
		return notFound(c, "Workflow not found")

	case persistence.IsExecutionNotFound(err):
		return notFound(c, "Execution not found")

	default:
		return internalError(c, err)
	}
}
