// Package models defines the core domain models for CRM workflow execution.
package models

import (
	"strings"
	"time"
)

// Workflow is a user-authored directed graph of typed nodes, scoped to a tenant.
// Nodes and Connections live inside a single JSON metadata column in the store;
// a workflow row without metadata is treated as having empty lists.
type Workflow struct {
	ID             string          `json:"id"`
	TenantID       string          `json:"tenant_id"    validate:"required"`
	Name           string          `json:"name"         validate:"required,min=3"`
	TriggerType    string          `json:"trigger_type"`
	IsActive       bool            `json:"is_active"`
	Nodes          []*WorkflowNode `json:"nodes"`
	Connections    []*Connection   `json:"connections"`
	ExecutionCount int64           `json:"execution_count"`
	LastExecuted   *time.Time      `json:"last_executed,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// WorkflowNode is one step in the graph. Config is a free-form map interpreted
// by the matching node factory at instantiation time.
type WorkflowNode struct {
	ID     string         `json:"id"   validate:"required"`
	Type   string         `json:"type" validate:"required"`
	Config map[string]any `json:"config,omitempty"`
}

// Connection is a directed edge between two node ids.
type Connection struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to"   validate:"required"`
}

// IsTriggerNode reports whether the node is a trigger-category node. Trigger
// nodes echo the run payload and are the preferred start of a walk.
func (n *WorkflowNode) IsTriggerNode() bool {
	return n.Type == "trigger" || strings.HasSuffix(n.Type, "_trigger")
}

// StartNode returns the node a run begins at: the first trigger-category node
// in definition order, falling back to the first node. Nil when the workflow
// has no nodes.
func (w *Workflow) StartNode() *WorkflowNode {
	if len(w.Nodes) == 0 {
		return nil
	}

	for _, node := range w.Nodes {
		if node.IsTriggerNode() {
			return node
		}
	}

	return w.Nodes[0]
}

// NodeByID returns the node with the given id, or nil.
func (w *Workflow) NodeByID(id string) *WorkflowNode {
	for _, node := range w.Nodes {
		if node.ID == id {
			return node
		}
	}

	return nil
}

// OutgoingConnections returns the edges leaving the given node, in declaration
// order. Declaration order matters for conditional branch selection.
func (w *Workflow) OutgoingConnections(nodeID string) []*Connection {
	connections := make([]*Connection, 0)

	for _, conn := range w.Connections {
		if conn.From == nodeID {
			connections = append(connections, conn)
		}
	}

	return connections
}
