package models

import (
	"fmt"
	"slices"
	"time"
)

// ExecutionStatus represents the lifecycle state of one workflow run.
type ExecutionStatus string

const (
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
)

// StepResult records one attempted step, successful or not. Entries are
// append-only and keep the workflow's step order.
type StepResult struct {
	StepIndex  int            `json:"step_index"`
	StepType   StepType       `json:"step_type"`
	Result     map[string]any `json:"result,omitempty"`
	Error      string         `json:"error,omitempty"`
	Success    bool           `json:"success"`
	ExecutedAt time.Time      `json:"executed_at"`
}

// ResourceTotals accumulates per-step resource consumption. Totals are
// strictly additive, never decremented.
type ResourceTotals struct {
	APICalls         int      `json:"api_calls"`
	Cost             float64  `json:"cost"`
	ProcessingTimeMs int64    `json:"processing_time_ms"`
	AgentsInvolved   []string `json:"agents_involved,omitempty"`
}

// Merge adds a per-step delta into the running totals, deduplicating the
// agent list.
func (r *ResourceTotals) Merge(delta ResourceTotals) {
	r.APICalls += delta.APICalls
	r.Cost += delta.Cost
	r.ProcessingTimeMs += delta.ProcessingTimeMs

	for _, agent := range delta.AgentsInvolved {
		if agent != "" && !slices.Contains(r.AgentsInvolved, agent) {
			r.AgentsInvolved = append(r.AgentsInvolved, agent)
		}
	}
}

// StepOutcome carries a step executor's result payload and resource deltas.
type StepOutcome struct {
	Result           map[string]any `json:"result,omitempty"`
	APICalls         int            `json:"api_calls"`
	Cost             float64        `json:"cost"`
	ProcessingTimeMs int64          `json:"processing_time_ms"`
	AgentID          string         `json:"agent_id,omitempty"`
}

// ResourceDelta projects the outcome into mergeable resource totals.
func (o *StepOutcome) ResourceDelta() ResourceTotals {
	delta := ResourceTotals{
		APICalls:         o.APICalls,
		Cost:             o.Cost,
		ProcessingTimeMs: o.ProcessingTimeMs,
	}
	if o.AgentID != "" {
		delta.AgentsInvolved = []string{o.AgentID}
	}

	return delta
}

// StepContext is the accumulated state a step executor sees.
type StepContext struct {
	ExecutionID  string         `json:"execution_id"`
	WorkflowID   string         `json:"workflow_id"`
	UserID       string         `json:"user_id"`
	StepIndex    int            `json:"step_index"`
	TriggerData  map[string]any `json:"trigger_data,omitempty"`
	PriorResults []StepResult   `json:"prior_results,omitempty"`
	TestMode     bool           `json:"test_mode"`
}

// FinalResult summarizes a terminal execution.
type FinalResult struct {
	Success        bool           `json:"success"`
	StepsCompleted int            `json:"steps_completed"`
	TotalSteps     int            `json:"total_steps"`
	Resources      ResourceTotals `json:"resources_consumed"`
}

// WorkflowExecution is the engine's primary owned entity: one run of a
// workflow from admission to terminal state. It has exactly one writer, its
// coordinator, for its entire lifetime.
type WorkflowExecution struct {
	ID             string          `json:"id"`
	WorkflowID     string          `json:"workflow_id"`
	UserID         string          `json:"user_id"`
	Status         ExecutionStatus `json:"status"`
	TriggerData    map[string]any  `json:"trigger_data,omitempty"`
	TotalSteps     int             `json:"total_steps"`
	CurrentStep    int             `json:"current_step"`
	CompletedSteps int             `json:"completed_steps"`
	StepResults    []StepResult    `json:"step_results"`
	Logs           []string        `json:"execution_logs"`
	Resources      ResourceTotals  `json:"resources_consumed"`
	FinalResult    *FinalResult    `json:"final_result,omitempty"`
	ErrorMessage   string          `json:"error_message,omitempty"`
	StartedAt      time.Time       `json:"started_at"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
	DurationMs     int64           `json:"duration_ms"`
	TestMode       bool            `json:"test_mode,omitempty"`
}

// AppendLog attaches one timestamped progress line to the execution record.
func (e *WorkflowExecution) AppendLog(format string, args ...any) {
	line := fmt.Sprintf("%s | %s", time.Now().UTC().Format(time.RFC3339), fmt.Sprintf(format, args...))
	e.Logs = append(e.Logs, line)
}

// IsTerminal reports whether the execution reached an absorbing state.
func (e *WorkflowExecution) IsTerminal() bool {
	return e.Status == ExecutionStatusCompleted || e.Status == ExecutionStatusFailed
}
