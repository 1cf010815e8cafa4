// Package models defines the core domain models for workflow execution.
package models

import "time"

// StepType identifies the kind of work a step performs.
type StepType string

const (
	StepTypeTrigger   StepType = "trigger"
	StepTypeAction    StepType = "action"
	StepTypeCondition StepType = "condition"
	StepTypeDelay     StepType = "delay"
	StepTypeAgent     StepType = "agent"
)

// Step is one unit of work inside a workflow. Config is an opaque map on the
// wire; each step executor parses it into its own typed configuration.
type Step struct {
	Type   StepType       `json:"type"               validate:"required,oneof=trigger action condition delay agent"`
	Name   string         `json:"name,omitempty"`
	Config map[string]any `json:"config"`
	// Critical defaults to true when absent: a failed critical step aborts
	// the whole execution, a non-critical failure is recorded and skipped.
	Critical *bool `json:"critical,omitempty"`
}

// IsCritical reports whether a failure of this step must abort the run.
func (s *Step) IsCritical() bool {
	return s.Critical == nil || *s.Critical
}

// RetryPolicy bounds how often a failed step is re-executed.
type RetryPolicy struct {
	MaxRetries int `json:"max_retries" validate:"min=0"`
}

// Workflow is a user-defined, ordered list of steps with concurrency and
// retry policy. The engine reads workflows, it never authors them.
type Workflow struct {
	ID                string      `json:"id"`
	UserID            string      `json:"user_id"             validate:"required"`
	Name              string      `json:"name"                validate:"required,min=3"`
	Description       string      `json:"description,omitempty"`
	Steps             []*Step     `json:"steps"               validate:"required,min=1,dive"`
	Enabled           bool        `json:"enabled"`
	MaxConcurrentRuns int         `json:"max_concurrent_runs" validate:"min=1"`
	RetryPolicy       RetryPolicy `json:"retry_policy"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}
