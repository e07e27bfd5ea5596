// Package find provides entity lookup nodes for leads and contacts.
package find

import (
	"context"
	"errors"
	"fmt"

	"github.com/hivecrm/flowline/pkg/models"
	"github.com/hivecrm/flowline/pkg/persistence"
	"github.com/hivecrm/flowline/pkg/template"
)

// Node looks up one tenant-scoped entity by exact field match and stores the
// row under its well-known variable name for later nodes.
type Node struct {
	id           string
	nodeType     string
	entityKey    string
	variableName string
	searchField  string
	searchValue  string
	find         func(ctx context.Context, tenantID, field, value string) (map[string]any, error)
}

// NewLeadNode creates a find_lead node.
func NewLeadNode(id string, config map[string]any, leads persistence.LeadRepository) (*Node, error) {
	node, err := newNode(id, "find_lead", "lead", models.VarFoundLead, config)
	if err != nil {
		return nil, err
	}

	node.find = func(ctx context.Context, tenantID, field, value string) (map[string]any, error) {
		lead, err := leads.FindByField(ctx, tenantID, field, value)
		if err != nil {
			return nil, err
		}

		return lead.Map(), nil
	}

	return node, nil
}

// NewContactNode creates a find_contact node.
func NewContactNode(id string, config map[string]any, contacts persistence.ContactRepository) (*Node, error) {
	node, err := newNode(id, "find_contact", "contact", models.VarFoundContact, config)
	if err != nil {
		return nil, err
	}

	node.find = func(ctx context.Context, tenantID, field, value string) (map[string]any, error) {
		contact, err := contacts.FindByField(ctx, tenantID, field, value)
		if err != nil {
			return nil, err
		}

		return contact.Map(), nil
	}

	return node, nil
}

func newNode(id, nodeType, entityKey, variableName string, config map[string]any) (*Node, error) {
	searchField, ok := config["search_field"].(string)
	if !ok || searchField == "" {
		return nil, errors.New("missing required field 'search_field'")
	}

	searchValue, ok := config["search_value"].(string)
	if !ok || searchValue == "" {
		return nil, errors.New("missing required field 'search_value'")
	}

	return &Node{
		id:           id,
		nodeType:     nodeType,
		entityKey:    entityKey,
		variableName: variableName,
		searchField:  searchField,
		searchValue:  searchValue,
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

// Execute resolves the search templates and queries the store for a
// tenant-scoped exact match. A miss is a domain error naming the field and
// value searched; store failures abort the run.
func (n *Node) Execute(ctx context.Context, run *models.RunContext) (*models.NodeResult, error) {
	field := template.Resolve(n.searchField, run)
	value := template.Resolve(n.searchValue, run)

	entity, err := n.find(ctx, run.TenantID, field, value)
	if err != nil {
		if persistence.IsEntityNotFound(err) || errors.Is(err, persistence.ErrUnknownField) {
			return &models.NodeResult{
				Status: models.NodeStatusError,
				Error:  fmt.Sprintf("no %s found matching %s = %s", n.entityKey, field, value),
			}, nil
		}

		return nil, fmt.Errorf("finding %s by %s: %w", n.entityKey, field, err)
	}

	run.Variables[n.variableName] = entity

	return &models.NodeResult{
		Status: models.NodeStatusSuccess,
		Output: map[string]any{n.entityKey: entity},
	}, nil
}
