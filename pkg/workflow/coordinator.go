package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukex/flowrun/pkg/eventbus"
	"github.com/dukex/flowrun/pkg/events"
	"github.com/dukex/flowrun/pkg/models"
	"github.com/dukex/flowrun/pkg/otelhelper"
	"github.com/dukex/flowrun/pkg/persistence"
	"github.com/dukex/flowrun/pkg/registry"
	"github.com/dukex/flowrun/pkg/stats"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "flowrun.workflow"

// ErrWorkflowDisabled is returned when a start is requested for a disabled
// workflow outside test mode.
var ErrWorkflowDisabled = errors.New("workflow is disabled")

// ErrExecutionNotRunning is returned by Cancel when the execution is not
// currently in flight on this coordinator.
var ErrExecutionNotRunning = errors.New("execution is not running")

// StartRequest asks for one new run of a workflow.
type StartRequest struct {
	WorkflowID  string
	UserID      string
	TriggerData map[string]any
	TestMode    bool
}

// StartResponse acknowledges an admitted run. The run itself continues in
// the background.
type StartResponse struct {
	ExecutionID string                 `json:"execution_id"`
	Status      models.ExecutionStatus `json:"status"`
}

// Coordinator owns the full lifecycle of workflow executions: admission,
// step-by-step execution with per-step persistence, resource accumulation,
// and terminal transition. Each execution record has exactly one writer, the
// goroutine running it.
type Coordinator struct {
	persistence persistence.Persistence
	registry    *registry.Registry
	admission   *AdmissionController
	stats       stats.Sink
	publisher   eventbus.EventPublisher
	logger      *slog.Logger

	// RetryBackoff is the base delay between retry attempts; attempt n waits
	// RetryBackoff << n. Exposed so tests can shrink it.
	RetryBackoff time.Duration

	running sync.Map // executionID -> context.CancelFunc
	wg      sync.WaitGroup
}

func NewCoordinator(
	p persistence.Persistence,
	r *registry.Registry,
	sink stats.Sink,
	publisher eventbus.EventPublisher,
	logger *slog.Logger,
) *Coordinator {
	return &Coordinator{
		persistence:  p,
		registry:     r,
		admission:    NewAdmissionController(p.ExecutionRepository()),
		stats:        sink,
		publisher:    publisher,
		logger:       logger.With("module", "coordinator"),
		RetryBackoff: time.Second,
	}
}

// StartExecution admits and launches one run. It returns as soon as the
// execution record is persisted in running state; steps execute in a
// background goroutine detached from the request context.
func (c *Coordinator) StartExecution(ctx context.Context, req StartRequest) (*StartResponse, error) {
	wf, err := c.persistence.WorkflowRepository().WorkflowByID(ctx, req.WorkflowID)
	if err != nil {
		return nil, err
	}

	// Test runs may exercise disabled workflows.
	if !wf.Enabled && !req.TestMode {
		return nil, fmt.Errorf("%w: %s", ErrWorkflowDisabled, wf.ID)
	}

	execution := &models.WorkflowExecution{
		ID:          uuid.New().String(),
		WorkflowID:  wf.ID,
		UserID:      req.UserID,
		Status:      models.ExecutionStatusRunning,
		TriggerData: req.TriggerData,
		TotalSteps:  len(wf.Steps),
		StepResults: []models.StepResult{},
		StartedAt:   time.Now().UTC(),
		TestMode:    req.TestMode,
	}
	execution.AppendLog("Workflow execution started")

	err = c.admission.Admit(ctx, wf, func(ctx context.Context) error {
		return c.persistence.ExecutionRepository().SaveExecution(ctx, execution)
	})
	if err != nil {
		return nil, err
	}

	// Snapshot the response before the run goroutine takes ownership of the
	// execution record and starts mutating it.
	response := &StartResponse{ExecutionID: execution.ID, Status: execution.Status}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.running.Store(execution.ID, cancel)

	c.wg.Add(1)

	go func() {
		defer c.wg.Done()
		defer cancel()
		defer c.running.Delete(execution.ID)

		c.run(runCtx, wf, execution)
	}()

	c.publishEvent(ctx, wf.ID, events.ExecutionStarted{
		BaseEvent:   events.NewBaseEvent(events.ExecutionStartedEvent, wf.ID),
		ExecutionID: execution.ID,
		TriggerData: req.TriggerData,
	})

	return response, nil
}

// Cancel requests cooperative cancellation of an in-flight execution. The
// run observes the cancelled context at its next step boundary (or inside a
// waiting delay step) and transitions to failed.
func (c *Coordinator) Cancel(executionID string) error {
	cancel, ok := c.running.Load(executionID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrExecutionNotRunning, executionID)
	}

	cancel.(context.CancelFunc)()

	return nil
}

// Wait blocks until all in-flight executions finish. Used on shutdown.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

func (c *Coordinator) run(ctx context.Context, wf *models.Workflow, execution *models.WorkflowExecution) {
	tracer := otel.Tracer(tracerName)

	ctx, span := tracer.Start(ctx, "workflow.execution",
		trace.WithAttributes(
			attribute.String(otelhelper.WorkflowIDKey, wf.ID),
			attribute.String(otelhelper.ExecutionIDKey, execution.ID),
		))
	defer span.End()

	logger := c.logger.With(
		"workflow_id", wf.ID,
		"execution_id", execution.ID,
	)
	logger.Info("Starting workflow execution", "total_steps", execution.TotalSteps)

	for i, step := range wf.Steps {
		if err := ctx.Err(); err != nil {
			execution.AppendLog("Execution cancelled before step %d", i+1)
			c.fail(context.WithoutCancel(ctx), wf, execution, "execution cancelled")

			return
		}

		execution.CurrentStep = i + 1
		execution.AppendLog("Executing step %d of %d: %s", i+1, execution.TotalSteps, step.Type)

		if err := c.persist(ctx, execution); err != nil {
			logger.Error("Failed to persist execution progress", "error", err)
			c.fail(context.WithoutCancel(ctx), wf, execution, "persistence failure: "+err.Error())

			return
		}

		outcome, err := c.executeStep(ctx, wf, execution, i, step, logger)
		executedAt := time.Now().UTC()

		if err != nil {
			execution.StepResults = append(execution.StepResults, models.StepResult{
				StepIndex:  i,
				StepType:   step.Type,
				Error:      err.Error(),
				Success:    false,
				ExecutedAt: executedAt,
			})
			execution.AppendLog("Step %d failed: %s", i+1, err.Error())

			if ctx.Err() != nil {
				c.fail(context.WithoutCancel(ctx), wf, execution, "execution cancelled")

				return
			}

			// Unknown step types are configuration defects and abort the
			// run even when the step is marked non-critical.
			if step.IsCritical() || errors.Is(err, registry.ErrUnknownStepType) {
				logger.Warn("Critical step failed, aborting execution",
					"step_index", i,
					"step_type", step.Type,
					"error", err)
				c.fail(ctx, wf, execution, fmt.Sprintf("critical step %d (%s) failed: %s", i+1, step.Type, err.Error()))

				return
			}

			logger.Warn("Non-critical step failed, continuing",
				"step_index", i,
				"step_type", step.Type,
				"error", err)

			if err := c.persist(ctx, execution); err != nil {
				logger.Error("Failed to persist step failure", "error", err)
				c.fail(context.WithoutCancel(ctx), wf, execution, "persistence failure: "+err.Error())

				return
			}

			continue
		}

		execution.StepResults = append(execution.StepResults, models.StepResult{
			StepIndex:  i,
			StepType:   step.Type,
			Result:     outcome.Result,
			Success:    true,
			ExecutedAt: executedAt,
		})
		execution.Resources.Merge(outcome.ResourceDelta())
		execution.CompletedSteps = i + 1
		execution.AppendLog("Step %d completed", i+1)

		if err := c.persist(ctx, execution); err != nil {
			logger.Error("Failed to persist step result", "error", err)
			c.fail(context.WithoutCancel(ctx), wf, execution, "persistence failure: "+err.Error())

			return
		}
	}

	c.complete(ctx, wf, execution)
}

// executeStep runs one step with bounded retry. Unknown step types and
// invalid configs are configuration defects and are never retried.
func (c *Coordinator) executeStep(
	ctx context.Context,
	wf *models.Workflow,
	execution *models.WorkflowExecution,
	index int,
	step *models.Step,
	logger *slog.Logger,
) (*models.StepOutcome, error) {
	tracer := otel.Tracer(tracerName)

	ctx, span := tracer.Start(ctx, "workflow.step",
		trace.WithAttributes(
			attribute.String(otelhelper.StepTypeKey, string(step.Type)),
			attribute.Int(otelhelper.StepIndexKey, index),
		))
	defer span.End()

	executor, err := c.registry.CreateExecutor(ctx, string(step.Type), step.Config)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	stepCtx := models.StepContext{
		ExecutionID:  execution.ID,
		WorkflowID:   wf.ID,
		UserID:       execution.UserID,
		StepIndex:    index,
		TriggerData:  execution.TriggerData,
		PriorResults: execution.StepResults,
		TestMode:     execution.TestMode,
	}

	maxRetries := wf.RetryPolicy.MaxRetries

	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			execution.AppendLog("Retrying step %d (attempt %d of %d)", index+1, attempt, maxRetries)
			logger.Info("Retrying step",
				"step_index", index,
				"attempt", attempt,
				"max_retries", maxRetries)

			backoff := c.RetryBackoff << (attempt - 1)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		outcome, err := executor.Execute(ctx, stepCtx, logger)
		if err == nil {
			return outcome, nil
		}

		lastErr = err

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
	}

	otelhelper.SetError(span, lastErr)

	return nil, lastErr
}

func (c *Coordinator) complete(ctx context.Context, wf *models.Workflow, execution *models.WorkflowExecution) {
	now := time.Now().UTC()
	execution.Status = models.ExecutionStatusCompleted
	execution.CompletedAt = &now
	execution.DurationMs = now.Sub(execution.StartedAt).Milliseconds()
	execution.FinalResult = &models.FinalResult{
		Success:        true,
		StepsCompleted: execution.CompletedSteps,
		TotalSteps:     execution.TotalSteps,
		Resources:      execution.Resources,
	}
	execution.AppendLog("Workflow execution completed in %dms", execution.DurationMs)

	if err := c.persist(ctx, execution); err != nil {
		c.logger.Error("Failed to persist completed execution",
			"execution_id", execution.ID,
			"error", err)
	}

	c.logger.Info("Workflow execution completed",
		"workflow_id", wf.ID,
		"execution_id", execution.ID,
		"duration_ms", execution.DurationMs)

	c.stats.Record(ctx, wf.ID, true)
	c.publishEvent(ctx, wf.ID, events.ExecutionCompleted{
		BaseEvent:      events.NewBaseEvent(events.ExecutionCompletedEvent, wf.ID),
		ExecutionID:    execution.ID,
		StepsCompleted: execution.CompletedSteps,
		DurationMs:     execution.DurationMs,
		Resources:      execution.Resources,
	})
}

func (c *Coordinator) fail(ctx context.Context, wf *models.Workflow, execution *models.WorkflowExecution, message string) {
	now := time.Now().UTC()
	execution.Status = models.ExecutionStatusFailed
	execution.ErrorMessage = message
	execution.CompletedAt = &now
	execution.DurationMs = now.Sub(execution.StartedAt).Milliseconds()
	execution.FinalResult = &models.FinalResult{
		Success:        false,
		StepsCompleted: execution.CompletedSteps,
		TotalSteps:     execution.TotalSteps,
		Resources:      execution.Resources,
	}
	execution.AppendLog("Workflow execution failed: %s", message)

	if err := c.persist(ctx, execution); err != nil {
		c.logger.Error("Failed to persist failed execution",
			"execution_id", execution.ID,
			"error", err)
	}

	c.logger.Warn("Workflow execution failed",
		"workflow_id", wf.ID,
		"execution_id", execution.ID,
		"error", message)

	c.stats.Record(ctx, wf.ID, false)
	c.publishEvent(ctx, wf.ID, events.ExecutionFailed{
		BaseEvent:   events.NewBaseEvent(events.ExecutionFailedEvent, wf.ID),
		ExecutionID: execution.ID,
		Error:       message,
		DurationMs:  execution.DurationMs,
	})
}

func (c *Coordinator) persist(ctx context.Context, execution *models.WorkflowExecution) error {
	return c.persistence.ExecutionRepository().SaveExecution(ctx, execution)
}

func (c *Coordinator) publishEvent(ctx context.Context, workflowID string, event eventbus.Event) {
	if c.publisher == nil {
		return
	}

	if err := c.publisher.Publish(ctx, workflowID, event); err != nil {
		c.logger.Warn("Failed to publish lifecycle event",
			"event_type", event.GetType(),
			"error", err)
	}
}
