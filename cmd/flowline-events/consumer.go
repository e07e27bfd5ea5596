// Package main provides the Flowline event consumer. It tails the execution
// lifecycle topic and writes each event to the structured log so operators
// have a queryable audit trail of every run.
package main

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/hivecrm/flowline/pkg/eventbus"
	"github.com/hivecrm/flowline/pkg/events"
)

type Consumer struct {
	eventBus eventbus.EventBus
	logger   *slog.Logger
	consumed atomic.Int64
}

func NewConsumer(bus eventbus.EventBus, logger *slog.Logger) *Consumer {
	return &Consumer{
		eventBus: bus,
		logger:   logger,
	}
}

// Consumed reports how many lifecycle events this consumer has logged.
func (c *Consumer) Consumed() int64 {
	return c.consumed.Load()
}

// Register binds a handler for every execution lifecycle event type. Call
// before Subscribe.
func (c *Consumer) Register() error {
	handlers := map[events.EventType]eventbus.EventHandler{
		events.ExecutionStartedEvent:   c.handleExecutionStarted,
		events.ExecutionCompletedEvent: c.handleExecutionCompleted,
		events.ExecutionFailedEvent:    c.handleExecutionFailed,
		events.NodeFailedEvent:         c.handleNodeFailed,
	}

	for eventType, handler := range handlers {
		if err := c.eventBus.Handle(eventType, handler); err != nil {
			return err
		}
	}

	return nil
}

func (c *Consumer) Start(ctx context.Context) error {
	if err := c.Register(); err != nil {
		return err
	}

	if err := c.eventBus.Subscribe(ctx); err != nil {
		return err
	}

	c.logger.InfoContext(ctx, "Event consumer started", "topic", events.Topic)

	<-ctx.Done()

	c.logger.Info("Event consumer stopped", "events_consumed", c.Consumed())

	return nil
}

func (c *Consumer) handleExecutionStarted(ctx context.Context, event any) error {
	started, ok := event.(*events.ExecutionStarted)
	if !ok {
		c.logger.Error("Unexpected payload for execution.started event")

		return nil
	}

	c.consumed.Add(1)
	c.logger.InfoContext(ctx, "Execution started",
		"execution_id", started.ExecutionID,
		"workflow_id", started.WorkflowID,
		"tenant_id", started.TenantID,
	)

	return nil
}

func (c *Consumer) handleExecutionCompleted(ctx context.Context, event any) error {
	completed, ok := event.(*events.ExecutionCompleted)
	if !ok {
		c.logger.Error("Unexpected payload for execution.completed event")

		return nil
	}

	c.consumed.Add(1)
	c.logger.InfoContext(ctx, "Execution completed",
		"execution_id", completed.ExecutionID,
		"workflow_id", completed.WorkflowID,
		"tenant_id", completed.TenantID,
		"status", completed.Status,
		"duration", completed.Duration,
		"log_size", completed.LogSize,
	)

	return nil
}

func (c *Consumer) handleExecutionFailed(ctx context.Context, event any) error {
	failed, ok := event.(*events.ExecutionFailed)
	if !ok {
		c.logger.Error("Unexpected payload for execution.failed event")

		return nil
	}

	c.consumed.Add(1)
	c.logger.WarnContext(ctx, "Execution failed",
		"execution_id", failed.ExecutionID,
		"workflow_id", failed.WorkflowID,
		"tenant_id", failed.TenantID,
		"error", failed.Error,
		"duration", failed.Duration,
	)

	return nil
}

func (c *Consumer) handleNodeFailed(ctx context.Context, event any) error {
	nodeFailed, ok := event.(*events.NodeFailed)
	if !ok {
		c.logger.Error("Unexpected payload for execution.node.failed event")

		return nil
	}

	c.consumed.Add(1)
	c.logger.WarnContext(ctx, "Node failed",
		"execution_id", nodeFailed.ExecutionID,
		"workflow_id", nodeFailed.WorkflowID,
		"tenant_id", nodeFailed.TenantID,
		"node_id", nodeFailed.NodeID,
		"node_type", nodeFailed.NodeType,
		"error", nodeFailed.Error,
	)

	return nil
}
