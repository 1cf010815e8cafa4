package web

import (
	"github.com/dukex/flowrun/pkg/registry"
	"github.com/dukex/flowrun/pkg/services"
	"github.com/dukex/flowrun/pkg/stats"
	"github.com/dukex/flowrun/pkg/workflow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	workflowService  *services.Workflow
	executionService *services.Execution
	coordinator      *workflow.Coordinator
	collector        *stats.Collector
	validator        *validator.Validate
	registry         *registry.Registry
}

func NewAPIHandlers(
	workflowService *services.Workflow,
	executionService *services.Execution,
	coordinator *workflow.Coordinator,
	collector *stats.Collector,
	validator *validator.Validate,
	registry *registry.Registry,
) *APIHandlers {
	return &APIHandlers{
		workflowService:  workflowService,
		executionService: executionService,
		coordinator:      coordinator,
		collector:        collector,
		validator:        validator,
		registry:         registry,
	}
}

func userID(c fiber.Ctx) string {
	return c.Get(UserIDHeader)
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	workflows, err := h.workflowService.ListWorkflows(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"workflows": workflows})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	wf, err := h.workflowService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(wf)
}

// StartExecution admits and launches one run of a workflow. It responds as
// soon as the execution record exists; the run continues in the background.
func (h *APIHandlers) StartExecution(c fiber.Ctx) error {
	user := userID(c)
	if user == "" {
		return unauthorized(c, "Missing "+UserIDHeader+" header")
	}

	workflowID := c.Params("id")
	if workflowID == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req StartExecutionRequest

	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid request body: "+err.Error())
		}
	}

	if err := h.validator.Struct(&req); err != nil {
		return badRequest(c, "Invalid request: "+err.Error())
	}

	resp, err := h.coordinator.StartExecution(c.Context(), workflow.StartRequest{
		WorkflowID:  workflowID,
		UserID:      user,
		TriggerData: req.TriggerData,
		TestMode:    req.TestMode,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(resp)
}

// GetExecution returns the full execution record, scoped to the caller.
func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	user := userID(c)
	if user == "" {
		return unauthorized(c, "Missing "+UserIDHeader+" header")
	}

	executionID := c.Params("id")
	if executionID == "" {
		return badRequest(c, "Execution ID is required")
	}

	execution, err := h.executionService.ExecutionByID(c.Context(), user, executionID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(TransformExecutionResponse(execution))
}

// GetWorkflowExecutions lists a workflow's recent executions, newest first.
func (h *APIHandlers) GetWorkflowExecutions(c fiber.Ctx) error {
	user := userID(c)
	if user == "" {
		return unauthorized(c, "Missing "+UserIDHeader+" header")
	}

	workflowID := c.Params("id")
	if workflowID == "" {
		return badRequest(c, "Workflow ID is required")
	}

	summaries, err := h.executionService.RecentExecutions(c.Context(), user, workflowID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(ExecutionListResponse{
		WorkflowID: workflowID,
		Executions: summaries,
	})
}

// CancelExecution requests cooperative cancellation of a running execution.
func (h *APIHandlers) CancelExecution(c fiber.Ctx) error {
	user := userID(c)
	if user == "" {
		return unauthorized(c, "Missing "+UserIDHeader+" header")
	}

	executionID := c.Params("id")
	if executionID == "" {
		return badRequest(c, "Execution ID is required")
	}

	// Ownership check before touching the coordinator.
	if _, err := h.executionService.ExecutionByID(c.Context(), user, executionID); err != nil {
		return handleServiceError(c, err)
	}

	if err := h.coordinator.Cancel(executionID); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusAccepted)
}

// GetWorkflowStats returns aggregated success/failure counters.
func (h *APIHandlers) GetWorkflowStats(c fiber.Ctx) error {
	workflowID := c.Params("id")
	if workflowID == "" {
		return badRequest(c, "Workflow ID is required")
	}

	if _, err := h.workflowService.FetchByID(c.Context(), workflowID); err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(h.collector.Snapshot(workflowID))
}

// GetStepTypes lists the registered step types.
func (h *APIHandlers) GetStepTypes(c fiber.Ctx) error {
	return c.JSON(StepTypesResponse{StepTypes: h.registry.StepTypes()})
}

// HealthCheck aggregates component health into one response.
func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	checks := fiber.Map{}
	healthy := true

	persistenceMessage, persistenceOK := h.workflowService.HealthCheck(c.Context())
	checks["persistence"] = fiber.Map{"healthy": persistenceOK, "message": persistenceMessage}
	healthy = healthy && persistenceOK

	registryMessage, registryOK := h.registry.HealthCheck()
	checks["registry"] = fiber.Map{"healthy": registryOK, "message": registryMessage}
	healthy = healthy && registryOK

	status := fiber.StatusOK
	if !healthy {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"healthy": healthy,
		"checks":  checks,
	})
}
