// Package condition provides the condition node factory.
package condition

import (
	"context"

	"github.com/hivecrm/flowline/pkg/protocol"
)

// Factory creates condition nodes.
type Factory struct{}

// NewFactory creates the condition factory.
func NewFactory() protocol.NodeFactory {
	return &Factory{}
}

// Create creates a new condition node instance.
func (f *Factory) Create(_ context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewNode(id, config)
}

// ID returns the factory ID.
func (f *Factory) ID() string {
	return "condition"
}

// Name returns the factory name.
func (f *Factory) Name() string {
	return "Condition"
}

// Description returns the factory description.
func (f *Factory) Description() string {
	return "Compares a resolved field against a value and selects the true or false branch"
}

// Schema returns the JSON schema for condition configuration.
func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"field": map[string]any{
				"type":        "string",
				"description": "Template resolved into the actual value to compare.",
				"examples":    []string{"{{found_lead.status}}", "{{email}}"},
			},
			"operator": map[string]any{
				"type": "string",
				"enum": []string{
					OpEquals, OpNotEquals, OpContains,
					OpGreaterThan, OpLessThan, OpExists, OpNotExists,
				},
				"default": OpEquals,
			},
			"value": map[string]any{
				"description": "Compare value. Supports templating; optional for exists/not_exists.",
			},
		},
		"required": []string{"field"},
	}
}
