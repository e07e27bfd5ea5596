// Package registry provides built-in node factory registration.
package registry

import (
	"github.com/hivecrm/flowline/pkg/nodes/activity"
	"github.com/hivecrm/flowline/pkg/nodes/condition"
	"github.com/hivecrm/flowline/pkg/nodes/createlead"
	"github.com/hivecrm/flowline/pkg/nodes/find"
	"github.com/hivecrm/flowline/pkg/nodes/trigger"
	"github.com/hivecrm/flowline/pkg/nodes/update"
	"github.com/hivecrm/flowline/pkg/persistence"
)

// RegisterDefaultNodes registers all built-in node factories, binding the
// entity nodes to the given store.
func (r *Registry) RegisterDefaultNodes(p persistence.Persistence) {
	// Trigger nodes
	r.RegisterNode(trigger.NewWebhookFactory())
	r.RegisterNode(trigger.NewFormFactory())
	r.RegisterNode(trigger.NewManualFactory())

	// Entity lookup nodes
	r.RegisterNode(find.NewLeadFactory(p.LeadRepository()))
	r.RegisterNode(find.NewContactFactory(p.ContactRepository()))

	// Entity mutation nodes
	r.RegisterNode(createlead.NewFactory(p.LeadRepository()))
	r.RegisterNode(update.NewLeadFactory(p.LeadRepository()))
	r.RegisterNode(update.NewContactFactory(p.ContactRepository()))
	r.RegisterNode(activity.NewFactory(p.ActivityRepository()))

	// Branching
	r.RegisterNode(condition.NewFactory())
}
