// Package activity provides the create_activity node factory.
package activity

import (
	"context"

	"github.com/hivecrm/flowline/pkg/persistence"
	"github.com/hivecrm/flowline/pkg/protocol"
)

// Factory creates create_activity nodes.
type Factory struct {
	activities persistence.ActivityRepository
}

// NewFactory creates the create_activity factory bound to an activity store.
func NewFactory(activities persistence.ActivityRepository) protocol.NodeFactory {
	return &Factory{activities: activities}
}

// Create creates a new create_activity node instance.
func (f *Factory) Create(_ context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewNode(id, config, f.activities)
}

// ID returns the factory ID.
func (f *Factory) ID() string {
	return "create_activity"
}

// Name returns the factory name.
func (f *Factory) Name() string {
	return "Create Activity"
}

// Description returns the factory description.
func (f *Factory) Description() string {
	return "Records a CRM activity linked to whichever lead or contact is in context"
}

// Schema returns the JSON schema for create_activity configuration.
func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"subject": map[string]any{
				"type":        "string",
				"description": "Activity subject. Supports templating.",
				"examples":    []string{"Follow up with {{found_lead.name}}"},
			},
			"description": map[string]any{
				"type":        "string",
				"description": "Activity body. Supports templating.",
			},
		},
		"required": []string{"subject"},
	}
}
