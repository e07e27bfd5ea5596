// Package update provides entity update nodes for leads and contacts.
package update

import (
	"context"
	"errors"
	"fmt"

	"github.com/hivecrm/flowline/pkg/models"
	"github.com/hivecrm/flowline/pkg/persistence"
	"github.com/hivecrm/flowline/pkg/template"
)

// Node applies configured field mappings to the entity a previous find or
// create step put into the run context. Only fields whose templates resolve
// to a non-empty value are written.
type Node struct {
	id           string
	nodeType     string
	entityKey    string
	variableName string
	mappings     map[string]string
	update       func(ctx context.Context, tenantID, id string, fields map[string]any) (map[string]any, error)
}

// NewLeadNode creates an update_lead node.
func NewLeadNode(id string, config map[string]any, leads persistence.LeadRepository) (*Node, error) {
	node, err := newNode(id, "update_lead", "lead", models.VarFoundLead, config)
	if err != nil {
		return nil, err
	}

	node.update = func(ctx context.Context, tenantID, entityID string, fields map[string]any) (map[string]any, error) {
		lead, err := leads.Update(ctx, tenantID, entityID, fields)
		if err != nil {
			return nil, err
		}

		return lead.Map(), nil
	}

	return node, nil
}

// NewContactNode creates an update_contact node.
func NewContactNode(id string, config map[string]any, contacts persistence.ContactRepository) (*Node, error) {
	node, err := newNode(id, "update_contact", "contact", models.VarFoundContact, config)
	if err != nil {
		return nil, err
	}

	node.update = func(ctx context.Context, tenantID, entityID string, fields map[string]any) (map[string]any, error) {
		contact, err := contacts.Update(ctx, tenantID, entityID, fields)
		if err != nil {
			return nil, err
		}

		return contact.Map(), nil
	}

	return node, nil
}

func newNode(id, nodeType, entityKey, variableName string, config map[string]any) (*Node, error) {
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

	return &Node{
		id:           id,
		nodeType:     nodeType,
		entityKey:    entityKey,
		variableName: variableName,
		mappings:     mappings,
	}, nil
}

// ID returns the node ID.
func (n *Node) ID() string {
	return n.id
}

// Type returns the node type.
func (n *Node) Type() string {
	return n.nodeType
}

// Execute requires the matching found_* variable in context, resolves each
// mapping, and updates only the fields with a non-empty resolved value. A
// missing context entity and zero resolvable mappings are domain errors.
func (n *Node) Execute(ctx context.Context, run *models.RunContext) (*models.NodeResult, error) {
	current, ok := run.Variables[n.variableName].(map[string]any)
	if !ok {
		return &models.NodeResult{
			Status: models.NodeStatusError,
			Error: fmt.Sprintf("no %s in context: run a find or create step before %s",
				n.entityKey, n.nodeType),
		}, nil
	}

	entityID, _ := current["id"].(string)
	if entityID == "" {
		return &models.NodeResult{
			Status: models.NodeStatusError,
			Error:  fmt.Sprintf("context %s has no id", n.entityKey),
		}, nil
	}

	updates := make(map[string]any)

	for field, tmpl := range n.mappings {
		resolved := template.Resolve(tmpl, run)
		if resolved == "" || template.HasUnresolvedTokens(resolved) {
			continue
		}

		updates[field] = resolved
	}

	if len(updates) == 0 {
		return &models.NodeResult{
			Status: models.NodeStatusError,
			Error:  fmt.Sprintf("no field mappings resolved to a value for %s", n.nodeType),
		}, nil
	}

	updated, err := n.update(ctx, run.TenantID, entityID, updates)
	if err != nil {
		if persistence.IsEntityNotFound(err) || errors.Is(err, persistence.ErrUnknownField) {
			return &models.NodeResult{
				Status: models.NodeStatusError,
				Error:  fmt.Sprintf("updating %s %s: %v", n.entityKey, entityID, err),
			}, nil
		}

		return nil, fmt.Errorf("updating %s %s: %w", n.entityKey, entityID, err)
	}

	run.Variables[n.variableName] = updated

	return &models.NodeResult{
		Status: models.NodeStatusSuccess,
		Output: map[string]any{
			n.entityKey:       updated,
			"applied_updates": updates,
		},
	}, nil
}
