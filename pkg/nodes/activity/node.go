// Package activity provides the activity creation node.
package activity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hivecrm/flowline/pkg/models"
	"github.com/hivecrm/flowline/pkg/persistence"
	"github.com/hivecrm/flowline/pkg/template"
)

// Node records a CRM activity, linked to whichever entity a previous step put
// into the run context. The link is optional: an activity with no lead or
// contact is still recorded.
type Node struct {
	id          string
	subject     string
	description string
	activities  persistence.ActivityRepository
}

// NewNode creates a create_activity node.
func NewNode(id string, config map[string]any, activities persistence.ActivityRepository) (*Node, error) {
	subject, ok := config["subject"].(string)
	if !ok || subject == "" {
		return nil, errors.New("missing required field 'subject'")
	}

	description, _ := config["description"].(string)

	return &Node{
		id:          id,
		subject:     subject,
		description: description,
		activities:  activities,
	}, nil
}

// ID returns the node ID.
func (n *Node) ID() string {
	return n.id
}

// Type returns the node type.
func (n *Node) Type() string {
	return "create_activity"
}

// Execute resolves the subject and description templates and inserts the
// activity. Never fails on a missing entity link.
func (n *Node) Execute(ctx context.Context, run *models.RunContext) (*models.NodeResult, error) {
	activity := &models.Activity{
		ID:          uuid.New().String(),
		TenantID:    run.TenantID,
		Subject:     template.Resolve(n.subject, run),
		Description: template.Resolve(n.description, run),
		CreatedAt:   time.Now().UTC(),
	}

	if lead, ok := run.Variables[models.VarFoundLead].(map[string]any); ok {
		activity.LeadID, _ = lead["id"].(string)
	}

	if contact, ok := run.Variables[models.VarFoundContact].(map[string]any); ok {
		activity.ContactID, _ = contact["id"].(string)
	}

	if err := n.activities.Create(ctx, activity); err != nil {
		return nil, fmt.Errorf("creating activity: %w", err)
	}

	return &models.NodeResult{
		Status: models.NodeStatusSuccess,
		Output: map[string]any{"activity": activity.Map()},
	}, nil
}
