// Package workflow walks a workflow graph node by node and persists a
// durable, replayable execution record for every run.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hivecrm/flowline/pkg/eventbus"
	"github.com/hivecrm/flowline/pkg/events"
	"github.com/hivecrm/flowline/pkg/models"
	"github.com/hivecrm/flowline/pkg/otelhelper"
	"github.com/hivecrm/flowline/pkg/persistence"
	"github.com/hivecrm/flowline/pkg/registry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const conditionNodeType = "condition"

// Runner executes one workflow run to completion, synchronously. Runs are
// single-threaded: node N+1 never starts before node N's log entry and
// context mutation are in place, because later nodes read variables earlier
// nodes wrote. Concurrent runs need no coordination; each owns its context
// and execution record.
type Runner struct {
	persistence persistence.Persistence
	registry    *registry.Registry
	eventBus    eventbus.EventBus
	logger      *slog.Logger
	tracer      trace.Tracer
}

// NewRunner creates a runner bound to a store, a node registry, and an event
// bus for lifecycle notifications.
func NewRunner(p persistence.Persistence, r *registry.Registry, bus eventbus.EventBus, logger *slog.Logger) *Runner {
	return &Runner{
		persistence: p,
		registry:    r,
		eventBus:    bus,
		logger:      logger,
		tracer:      otel.Tracer("flowline/runner"),
	}
}

// RunResult is what a caller gets back from one run. Status reflects the run
// outcome; a failed run is still a completed invocation.
type RunResult struct {
	ExecutionID string
	Status      models.ExecutionStatus
	Log         []models.NodeLogEntry
	Duration    time.Duration
}

// Run executes the workflow against the given trigger payload.
//
// Preconditions (workflow found, active, non-empty) are checked before any
// execution record exists; their sentinel errors come back with a nil result.
// After the record is created, an infrastructure failure returns the partial
// result alongside the error, with the record best-effort marked failed.
func (r *Runner) Run(ctx context.Context, workflowID string, payload map[string]any) (*RunResult, error) {
	started := time.Now().UTC()

	wf, err := r.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("loading workflow %s: %w", workflowID, err)
	}

	if wf == nil {
		return nil, fmt.Errorf("workflow %s: %w", workflowID, persistence.ErrWorkflowNotFound)
	}

	if !wf.IsActive {
		return nil, fmt.Errorf("workflow %s: %w", workflowID, persistence.ErrWorkflowInactive)
	}

	if len(wf.Nodes) == 0 {
		return nil, fmt.Errorf("workflow %s: %w", workflowID, persistence.ErrWorkflowEmpty)
	}

	if payload == nil {
		payload = make(map[string]any)
	}

	execution := &models.Execution{
		ID:          newExecutionID(),
		WorkflowID:  wf.ID,
		TenantID:    wf.TenantID,
		Status:      models.ExecutionStatusRunning,
		TriggerData: clonePayload(payload),
		Log:         []models.NodeLogEntry{},
		StartedAt:   started,
	}

	logger := r.logger.With(
		"workflow_id", wf.ID,
		"tenant_id", wf.TenantID,
		"execution_id", execution.ID,
	)

	ctx, span := otelhelper.StartSpan(ctx, r.tracer, "workflow.run",
		attribute.String(otelhelper.TenantIDKey, wf.TenantID),
		attribute.String(otelhelper.WorkflowIDKey, wf.ID),
		attribute.String(otelhelper.ExecutionIDKey, execution.ID),
	)
	defer span.End()

	if err := r.persistence.ExecutionRepository().Create(ctx, execution); err != nil {
		otelhelper.SetError(span, err)

		return nil, persistence.NewExecutionError("Create", execution.ID, err)
	}

	logger.InfoContext(ctx, "Starting workflow run")
	r.publish(ctx, wf.ID, events.ExecutionStarted{
		BaseEvent:   r.baseEvent(events.ExecutionStartedEvent, execution),
		TriggerData: execution.TriggerData,
	})

	run := models.NewRunContext(execution.ID, wf.ID, wf.TenantID, payload)

	entries, walkErr := r.walk(ctx, wf, run)
	execution.Log = entries

	if walkErr != nil {
		// Store became unreachable mid-walk. Best-effort finalize with the
		// partial log, then surface the error distinctly from a failed run.
		otelhelper.SetError(span, walkErr)
		logger.ErrorContext(ctx, "Workflow run aborted", "error", walkErr)

		r.finalize(ctx, logger, execution, models.ExecutionStatusFailed, walkErr.Error())
		r.publish(ctx, wf.ID, events.ExecutionFailed{
			BaseEvent: r.baseEvent(events.ExecutionFailedEvent, execution),
			Error:     walkErr.Error(),
			Duration:  time.Since(started),
		})

		return &RunResult{
			ExecutionID: execution.ID,
			Status:      models.ExecutionStatusFailed,
			Log:         entries,
			Duration:    time.Since(started),
		}, walkErr
	}

	status := models.ExecutionStatusSuccess

	for _, entry := range entries {
		if entry.Status == models.NodeStatusError {
			status = models.ExecutionStatusFailed

			break
		}
	}

	if err := r.finalize(ctx, logger, execution, status, ""); err != nil {
		otelhelper.SetError(span, err)

		return &RunResult{
			ExecutionID: execution.ID,
			Status:      models.ExecutionStatusFailed,
			Log:         entries,
			Duration:    time.Since(started),
		}, err
	}

	// Counter updates are informational; a lost update never fails the run.
	if err := r.persistence.WorkflowRepository().RecordRun(ctx, wf.ID, time.Now().UTC()); err != nil {
		logger.WarnContext(ctx, "Failed to record run counters", "error", err)
	}

	duration := time.Since(started)
	span.SetAttributes(attribute.String(otelhelper.RunStatusKey, string(status)))
	logger.InfoContext(ctx, "Workflow run finished", "status", status, "nodes", len(entries), "duration", duration)

	r.publish(ctx, wf.ID, events.ExecutionCompleted{
		BaseEvent: r.baseEvent(events.ExecutionCompletedEvent, execution),
		Status:    status,
		Duration:  duration,
		LogSize:   len(entries),
	})

	return &RunResult{
		ExecutionID: execution.ID,
		Status:      status,
		Log:         entries,
		Duration:    duration,
	}, nil
}

// walk drives the graph traversal: execute the current node, append its log
// entry, pick the next node, stop on dead ends, cycles, or fatal node errors.
// The returned error is infrastructure failure; domain failures live in the
// entries.
func (r *Runner) walk(ctx context.Context, wf *models.Workflow, run *models.RunContext) ([]models.NodeLogEntry, error) {
	entries := make([]models.NodeLogEntry, 0, len(wf.Nodes))
	visited := make(map[string]bool, len(wf.Nodes))

	current := wf.StartNode()

	for current != nil {
		visited[current.ID] = true

		entry, infraErr := r.executeNode(ctx, run, current)
		entries = append(entries, entry)

		if infraErr != nil {
			return entries, infraErr
		}

		if entry.Status == models.NodeStatusError {
			r.publish(ctx, wf.ID, events.NodeFailed{
				BaseEvent: r.baseEvent(events.NodeFailedEvent, &models.Execution{
					ID: run.ExecutionID, WorkflowID: wf.ID, TenantID: wf.TenantID,
				}),
				NodeID:   entry.NodeID,
				NodeType: entry.NodeType,
				Error:    entry.Error,
			})

			// Condition nodes cannot error, but the rule is explicit: only
			// non-conditional errors stop the walk.
			if current.Type != conditionNodeType {
				break
			}
		}

		next, terminal := r.nextNode(wf, current, run)
		if terminal != nil {
			entries = append(entries, *terminal)

			break
		}

		if next == nil {
			break
		}

		if visited[next.ID] {
			entries = append(entries, models.NodeLogEntry{
				NodeID:    next.ID,
				NodeType:  next.Type,
				Timestamp: time.Now().UTC(),
				Status:    models.NodeStatusError,
				Error:     fmt.Sprintf("cycle detected: node %s already executed in this run", next.ID),
			})

			break
		}

		current = next
	}

	return entries, nil
}

// executeNode instantiates and runs a single node, producing its log entry.
func (r *Runner) executeNode(ctx context.Context, run *models.RunContext, def *models.WorkflowNode) (models.NodeLogEntry, error) {
	ctx, span := otelhelper.StartSpan(ctx, r.tracer, "node.execute",
		attribute.String(otelhelper.NodeIDKey, def.ID),
		attribute.String(otelhelper.NodeTypeKey, def.Type),
	)
	defer span.End()

	entry := models.NodeLogEntry{
		NodeID:    def.ID,
		NodeType:  def.Type,
		Timestamp: time.Now().UTC(),
	}

	node, err := r.registry.CreateNode(ctx, def.Type, def.ID, def.Config)
	if err != nil {
		otelhelper.SetError(span, err)

		entry.Status = models.NodeStatusError
		entry.Error = err.Error()

		return entry, nil
	}

	result, err := node.Execute(ctx, run)
	if err != nil {
		otelhelper.SetError(span, err)

		entry.Status = models.NodeStatusError
		entry.Error = err.Error()

		return entry, err
	}

	entry.Status = result.Status
	entry.Output = result.Output
	entry.Error = result.Error

	return entry, nil
}

// nextNode picks the outgoing edge to follow. Zero edges is a clean dead end.
// A condition node with two or more edges takes edge 0 on true and edge 1 on
// false; edges past index 1 are never followed.
// A connection naming a node the definition does not contain yields a
// terminal error entry.
func (r *Runner) nextNode(wf *models.Workflow, current *models.WorkflowNode, run *models.RunContext) (*models.WorkflowNode, *models.NodeLogEntry) {
	edges := wf.OutgoingConnections(current.ID)
	if len(edges) == 0 {
		return nil, nil
	}

	index := 0
	if current.Type == conditionNodeType && len(edges) >= 2 && !run.LastConditionResult {
		index = 1
	}

	next := wf.NodeByID(edges[index].To)
	if next == nil {
		return nil, &models.NodeLogEntry{
			NodeID:    edges[index].To,
			Timestamp: time.Now().UTC(),
			Status:    models.NodeStatusError,
			Error:     fmt.Sprintf("connection references unknown node %s", edges[index].To),
		}
	}

	return next, nil
}

// finalize durably completes the execution record. Reason is only set when an
// infrastructure error aborted the walk.
func (r *Runner) finalize(ctx context.Context, logger *slog.Logger, execution *models.Execution, status models.ExecutionStatus, reason string) error {
	now := time.Now().UTC()
	execution.Status = status
	execution.ErrorMessage = reason
	execution.CompletedAt = &now

	if err := r.persistence.ExecutionRepository().Update(ctx, execution); err != nil {
		logger.ErrorContext(ctx, "Failed to finalize execution record", "error", err)

		return persistence.NewExecutionError("Update", execution.ID, err)
	}

	return nil
}

func (r *Runner) baseEvent(eventType events.EventType, execution *models.Execution) events.BaseEvent {
	return events.BaseEvent{
		ID:          r.eventBus.GenerateID(),
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		TenantID:    execution.TenantID,
		WorkflowID:  execution.WorkflowID,
		ExecutionID: execution.ID,
	}
}

// publish is best-effort: a broker outage must not fail a run.
func (r *Runner) publish(ctx context.Context, key string, event eventbus.Event) {
	if r.eventBus == nil {
		return
	}

	if err := r.eventBus.Publish(ctx, key, event); err != nil {
		r.logger.WarnContext(ctx, "Failed to publish execution event",
			"event_type", event.GetType(), "error", err)
	}
}

func clonePayload(payload map[string]any) map[string]any {
	cloned := make(map[string]any, len(payload))
	for k, v := range payload {
		cloned[k] = v
	}

	return cloned
}

// newExecutionID generates a unique execution ID.
func newExecutionID() string {
	return "exec-" + uuid.New().String()[:8]
}
