// Package services provides the read-side query services and their error types.
package services

import (
	"errors"

	"github.com/dukex/flowrun/pkg/persistence"
)

var (
	// ErrWorkflowNotFound is returned when a workflow is not found.
	ErrWorkflowNotFound = persistence.ErrWorkflowNotFound

	// ErrExecutionNotFound is returned when an execution is not found or is
	// not visible to the requesting user.
	ErrExecutionNotFound = persistence.ErrExecutionNotFound

	// ErrEmptyUserID is returned when a request carries no user identity.
	ErrEmptyUserID = errors.New("user ID cannot be empty")
)
