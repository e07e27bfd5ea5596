// Package trigger provides trigger node factories for registry integration.
package trigger

import (
	"context"

	"github.com/hivecrm/flowline/pkg/protocol"
)

// Factory creates TriggerNode instances for one trigger type tag.
type Factory struct {
	typeID      string
	name        string
	description string
}

// Create creates a new TriggerNode instance.
func (f *Factory) Create(_ context.Context, id string, _ map[string]any) (protocol.Node, error) {
	return NewTriggerNode(id, f.typeID), nil
}

// ID returns the factory ID.
func (f *Factory) ID() string {
	return f.typeID
}

// Name returns the factory name.
func (f *Factory) Name() string {
	return f.name
}

// Description returns the factory description.
func (f *Factory) Description() string {
	return f.description
}

// Schema returns the JSON schema for trigger node configuration. Triggers take
// no configuration; the payload arrives at run start.
func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           map[string]any{},
		"additionalProperties": true,
	}
}

// NewWebhookFactory creates the factory for webhook-started workflows.
func NewWebhookFactory() protocol.NodeFactory {
	return &Factory{
		typeID:      "webhook_trigger",
		name:        "Webhook Trigger",
		description: "Starts the workflow from an inbound webhook payload",
	}
}

// NewFormFactory creates the factory for form-submission-started workflows.
func NewFormFactory() protocol.NodeFactory {
	return &Factory{
		typeID:      "form_trigger",
		name:        "Form Trigger",
		description: "Starts the workflow from a submitted form payload",
	}
}

// NewManualFactory creates the factory for manually started workflows.
func NewManualFactory() protocol.NodeFactory {
	return &Factory{
		typeID:      "manual_trigger",
		name:        "Manual Trigger",
		description: "Starts the workflow from a manual run request",
	}
}
