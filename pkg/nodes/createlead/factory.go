// Package createlead provides the create_lead node factory.
package createlead

import (
	"context"

	"github.com/hivecrm/flowline/pkg/persistence"
	"github.com/hivecrm/flowline/pkg/protocol"
)

// Factory creates create_lead nodes.
type Factory struct {
	leads persistence.LeadRepository
}

// NewFactory creates the create_lead factory bound to a lead store.
func NewFactory(leads persistence.LeadRepository) protocol.NodeFactory {
	return &Factory{leads: leads}
}

// Create creates a new create_lead node instance.
func (f *Factory) Create(_ context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewNode(id, config, f.leads)
}

// ID returns the factory ID.
func (f *Factory) ID() string {
	return "create_lead"
}

// Name returns the factory name.
func (f *Factory) Name() string {
	return "Create Lead"
}

// Description returns the factory description.
func (f *Factory) Description() string {
	return "Inserts a tenant-scoped lead from configured field mappings and stores it as found_lead"
}

// Schema returns the JSON schema for create_lead configuration.
func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"field_mappings": map[string]any{
				"type":        "object",
				"description": "Lead column to template mapping, resolved against the trigger payload.",
				"additionalProperties": map[string]any{
					"type": "string",
				},
				"examples": []map[string]any{
					{"name": "{{name}}", "email": "{{email}}", "source": "webform"},
				},
			},
		},
	}
}
