// Package web provides HTTP handlers and request/response types for the execution API.
package web

import (
	"github.com/dukex/flowrun/pkg/models"
	"github.com/dukex/flowrun/pkg/services"
)

// UserIDHeader carries the authenticated user identity, set by the gateway
// in front of this service. The engine trusts it as-is.
const UserIDHeader = "X-User-ID"

// StartExecutionRequest represents the request body for starting a workflow execution.
type StartExecutionRequest struct {
	TriggerData map[string]any `json:"trigger_data,omitempty"`
	TestMode    bool           `json:"test_mode,omitempty"`
}

// ExecutionListResponse wraps a workflow's recent execution history.
type ExecutionListResponse struct {
	WorkflowID string                      `json:"workflow_id"`
	Executions []services.ExecutionSummary `json:"executions"`
}

// StepTypesResponse lists the step types the engine can execute.
type StepTypesResponse struct {
	StepTypes []string `json:"step_types"`
}

// TransformExecutionResponse strips server-internal fields from an execution
// before it goes on the wire.
func TransformExecutionResponse(execution *models.WorkflowExecution) *models.WorkflowExecution {
	response := *execution
	response.UserID = ""

	return &response
}
