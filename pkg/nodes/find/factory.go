// Package find provides lookup node factories for registry integration.
package find

import (
	"context"

	"github.com/hivecrm/flowline/pkg/persistence"
	"github.com/hivecrm/flowline/pkg/protocol"
)

func lookupSchema(entity string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"search_field": map[string]any{
				"type":        "string",
				"description": "Column to match against. Supports templating.",
				"examples":    []string{"email", "phone"},
			},
			"search_value": map[string]any{
				"type":        "string",
				"description": "Exact value to match. Supports templating.",
				"examples":    []string{"{{email}}", "{{found_" + entity + ".phone}}"},
			},
		},
		"required": []string{"search_field", "search_value"},
	}
}

// LeadFactory creates find_lead nodes.
type LeadFactory struct {
	leads persistence.LeadRepository
}

// NewLeadFactory creates the find_lead factory bound to a lead store.
func NewLeadFactory(leads persistence.LeadRepository) protocol.NodeFactory {
	return &LeadFactory{leads: leads}
}

// Create creates a new find_lead node instance.
func (f *LeadFactory) Create(_ context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewLeadNode(id, config, f.leads)
}

// ID returns the factory ID.
func (f *LeadFactory) ID() string {
	return "find_lead"
}

// Name returns the factory name.
func (f *LeadFactory) Name() string {
	return "Find Lead"
}

// Description returns the factory description.
func (f *LeadFactory) Description() string {
	return "Looks up a tenant-scoped lead by exact field match and stores it as found_lead"
}

// Schema returns the JSON schema for find_lead configuration.
func (f *LeadFactory) Schema() map[string]any {
	return lookupSchema("lead")
}

// ContactFactory creates find_contact nodes.
type ContactFactory struct {
	contacts persistence.ContactRepository
}

// NewContactFactory creates the find_contact factory bound to a contact store.
func NewContactFactory(contacts persistence.ContactRepository) protocol.NodeFactory {
	return &ContactFactory{contacts: contacts}
}

// Create creates a new find_contact node instance.
func (f *ContactFactory) Create(_ context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewContactNode(id, config, f.contacts)
}

// ID returns the factory ID.
func (f *ContactFactory) ID() string {
	return "find_contact"
}

// Name returns the factory name.
func (f *ContactFactory) Name() string {
	return "Find Contact"
}

// Description returns the factory description.
func (f *ContactFactory) Description() string {
	return "Looks up a tenant-scoped contact by exact field match and stores it as found_contact"
}

// Schema returns the JSON schema for find_contact configuration.
func (f *ContactFactory) Schema() map[string]any {
	return lookupSchema("contact")
}
