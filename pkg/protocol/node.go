// Package protocol defines the interfaces and contracts for workflow nodes.
package protocol

import (
	"context"

	"github.com/hivecrm/flowline/pkg/models"
)

// Node is one executable step of a workflow graph. Implementations decode
// their configuration at construction time and keep Execute free of config
// parsing.
//
// Execute returns a NodeResult for domain outcomes: a lookup miss or a missing
// field mapping is a result with status error, recorded in the run log. A
// returned Go error means infrastructure failure (store unreachable) and
// aborts the run with a partial log.
type Node interface {
	// ID returns the node instance id from the workflow definition.
	ID() string

	// Type returns the node type tag (e.g. "find_lead").
	Type() string

	// Execute performs the node's single lookup or mutation. Implementations
	// may write well-known variables into the run context; condition nodes
	// set LastConditionResult.
	Execute(ctx context.Context, run *models.RunContext) (*models.NodeResult, error)
}

// NodeFactory creates node instances and provides metadata about the node
// type.
type NodeFactory interface {
	// Create creates a new node instance with the given configuration.
	// Malformed configuration fails here, before the walk reaches the node.
	Create(ctx context.Context, id string, config map[string]any) (Node, error)

	// ID returns the unique type identifier for this node type.
	ID() string

	// Name returns the human-readable name for this node type.
	Name() string

	// Description returns a description of what this node does.
	Description() string

	// Schema returns the JSON schema for configuring this node.
	Schema() map[string]any
}
