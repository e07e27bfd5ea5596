// Package createlead provides the lead creation node.
package createlead

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hivecrm/flowline/pkg/models"
	"github.com/hivecrm/flowline/pkg/persistence"
	"github.com/hivecrm/flowline/pkg/template"
)

// Node inserts a new tenant-scoped lead built from configured field mappings
// and stores it as the active lead variable.
type Node struct {
	id       string
	mappings map[string]string
	leads    persistence.LeadRepository
}

// NewNode creates a create_lead node. Mappings are column -> template pairs;
// non-string mapping values are rejected here, zero mappings are reported at
// execution time per the run log contract.
func NewNode(id string, config map[string]any, leads persistence.LeadRepository) (*Node, error) {
	mappings := make(map[string]string)

	if raw, ok := config["field_mappings"].(map[string]any); ok {
		for field, value := range raw {
			tmpl, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("field mapping %q must be a string template", field)
			}

			mappings[field] = tmpl
		}
	}

	return &Node{id: id, mappings: mappings, leads: leads}, nil
}

// ID returns the node ID.
func (n *Node) ID() string {
	return n.id
}

// Type returns the node type.
func (n *Node) Type() string {
	return "create_lead"
}

// Execute resolves each field mapping against the run context and inserts a
// new lead. Mappings that stay unresolved are applied as empty and skipped.
func (n *Node) Execute(ctx context.Context, run *models.RunContext) (*models.NodeResult, error) {
	if len(n.mappings) == 0 {
		return &models.NodeResult{
			Status: models.NodeStatusError,
			Error:  "no field mappings configured for create_lead",
		}, nil
	}

	now := time.Now().UTC()
	lead := &models.Lead{
		ID:        uuid.New().String(),
		TenantID:  run.TenantID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	for field, tmpl := range n.mappings {
		resolved := template.Resolve(tmpl, run)
		if resolved == "" || template.HasUnresolvedTokens(resolved) {
			continue
		}

		applyLeadField(lead, field, resolved)
	}

	if err := n.leads.Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("creating lead: %w", err)
	}

	run.Variables[models.VarFoundLead] = lead.Map()

	return &models.NodeResult{
		Status: models.NodeStatusSuccess,
		Output: map[string]any{"lead": lead.Map()},
	}, nil
}

// applyLeadField maps a configured column name onto the lead row. Unknown
// columns are ignored rather than failing the run.
func applyLeadField(lead *models.Lead, field, value string) {
	switch field {
	case "name":
		lead.Name = value
	case "email":
		lead.Email = value
	case "phone":
		lead.Phone = value
	case "company":
		lead.Company = value
	case "status":
		lead.Status = value
	case "source":
		lead.Source = value
	}
}
