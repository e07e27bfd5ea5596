package registry

import (
	"context"
	"log/slog"
	"testing"

	"github.com/hivecrm/flowline/pkg/mocks"
	"github.com/hivecrm/flowline/pkg/nodes/condition"
	"github.com/hivecrm/flowline/pkg/nodes/find"
	"github.com/hivecrm/flowline/pkg/nodes/trigger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry() *Registry {
	r := NewRegistry(slog.Default())
	r.RegisterNode(trigger.NewWebhookFactory())
	r.RegisterNode(condition.NewFactory())
	r.RegisterNode(find.NewLeadFactory(&mocks.MockLeadRepository{}))

	return r
}

func TestRegistry_CreateNode(t *testing.T) {
	r := testRegistry()

	node, err := r.CreateNode(context.Background(), "webhook_trigger", "t", nil)
	require.NoError(t, err)
	assert.Equal(t, "t", node.ID())
	assert.Equal(t, "webhook_trigger", node.Type())
}

func TestRegistry_CreateNode_UnknownType(t *testing.T) {
	r := testRegistry()

	_, err := r.CreateNode(context.Background(), "send_fax", "n", nil)
	require.Error(t, err)

	var unknown *ErrUnknownNodeType
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "send_fax", unknown.NodeType)
	assert.Contains(t, err.Error(), "send_fax")
}

func TestRegistry_CreateNode_SchemaViolation(t *testing.T) {
	r := testRegistry()

	// find_lead requires search_field and search_value.
	_, err := r.CreateNode(context.Background(), "find_lead", "f", map[string]any{
		"search_field": "email",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config for node type 'find_lead'")
}

func TestRegistry_CreateNode_ValidConfig(t *testing.T) {
	r := testRegistry()

	node, err := r.CreateNode(context.Background(), "condition", "c", map[string]any{
		"field":    "{{status}}",
		"operator": "equals",
		"value":    "hot",
	})
	require.NoError(t, err)
	assert.Equal(t, "condition", node.Type())
}

func TestRegistry_AvailableNodeTypes(t *testing.T) {
	r := testRegistry()

	assert.ElementsMatch(t, []string{"webhook_trigger", "condition", "find_lead"}, r.AvailableNodeTypes())
}
