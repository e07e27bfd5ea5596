// Package trigger provides trigger node implementations for workflow runs.
package trigger

import (
	"context"

	"github.com/hivecrm/flowline/pkg/models"
)

// TriggerNode is the entry node of a workflow. It performs no store access:
// it echoes the trigger payload into the run log so every execution record
// starts with the data that caused it.
type TriggerNode struct {
	id       string
	nodeType string
}

// NewTriggerNode creates a trigger node of the given type tag.
func NewTriggerNode(id, nodeType string) *TriggerNode {
	return &TriggerNode{id: id, nodeType: nodeType}
}

// ID returns the node ID.
func (n *TriggerNode) ID() string {
	return n.id
}

// Type returns the node type.
func (n *TriggerNode) Type() string {
	return n.nodeType
}

// Execute echoes the payload. Trigger nodes never fail.
func (n *TriggerNode) Execute(_ context.Context, run *models.RunContext) (*models.NodeResult, error) {
	return &models.NodeResult{
		Status: models.NodeStatusSuccess,
		Output: map[string]any{"payload": run.Payload},
	}, nil
}
