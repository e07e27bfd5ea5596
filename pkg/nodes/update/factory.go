// Package update provides update node factories for registry integration.
package update

import (
	"context"

	"github.com/hivecrm/flowline/pkg/persistence"
	"github.com/hivecrm/flowline/pkg/protocol"
)

func updateSchema(entity string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"field_mappings": map[string]any{
				"type":        "object",
				"description": "Column to template mapping. Only non-empty resolved values are written.",
				"additionalProperties": map[string]any{
					"type": "string",
				},
				"examples": []map[string]any{
					{"status": "contacted", "phone": "{{phone}}"},
				},
			},
		},
		"required": []string{"field_mappings"},
	}
}

// LeadFactory creates update_lead nodes.
type LeadFactory struct {
	leads persistence.LeadRepository
}

// NewLeadFactory creates the update_lead factory bound to a lead store.
func NewLeadFactory(leads persistence.LeadRepository) protocol.NodeFactory {
	return &LeadFactory{leads: leads}
}

// Create creates a new update_lead node instance.
func (f *LeadFactory) Create(_ context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewLeadNode(id, config, f.leads)
}

// ID returns the factory ID.
func (f *LeadFactory) ID() string {
	return "update_lead"
}

// Name returns the factory name.
func (f *LeadFactory) Name() string {
	return "Update Lead"
}

// Description returns the factory description.
func (f *LeadFactory) Description() string {
	return "Updates the found_lead entity with resolved field mappings"
}

// Schema returns the JSON schema for update_lead configuration.
func (f *LeadFactory) Schema() map[string]any {
	return updateSchema("lead")
}

// ContactFactory creates update_contact nodes.
type ContactFactory struct {
	contacts persistence.ContactRepository
}

// NewContactFactory creates the update_contact factory bound to a contact store.
func NewContactFactory(contacts persistence.ContactRepository) protocol.NodeFactory {
	return &ContactFactory{contacts: contacts}
}

// Create creates a new update_contact node instance.
func (f *ContactFactory) Create(_ context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewContactNode(id, config, f.contacts)
}

// ID returns the factory ID.
func (f *ContactFactory) ID() string {
	return "update_contact"
}

// Name returns the factory name.
func (f *ContactFactory) Name() string {
	return "Update Contact"
}

// Description returns the factory description.
func (f *ContactFactory) Description() string {
	return "Updates the found_contact entity with resolved field mappings"
}

// Schema returns the JSON schema for update_contact configuration.
func (f *ContactFactory) Schema() map[string]any {
	return updateSchema("contact")
}
