package condition

import (
	"context"
	"testing"

	"github.com/hivecrm/flowline/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runWith(payload map[string]any) *models.RunContext {
	return models.NewRunContext("exec-1", "wf-1", "tenant-1", payload)
}

func executeCondition(t *testing.T, config map[string]any, run *models.RunContext) *models.NodeResult {
	t.Helper()

	node, err := NewNode("cond", config)
	require.NoError(t, err)

	result, err := node.Execute(context.Background(), run)
	require.NoError(t, err, "condition nodes never fail")
	require.Equal(t, models.NodeStatusSuccess, result.Status)

	return result
}

func TestNode_Operators(t *testing.T) {
	tests := []struct {
		name     string
		config   map[string]any
		payload  map[string]any
		expected bool
	}{
		{
			name:     "equals true",
			config:   map[string]any{"field": "{{status}}", "operator": "equals", "value": "hot"},
			payload:  map[string]any{"status": "hot"},
			expected: true,
		},
		{
			name:     "equals false",
			config:   map[string]any{"field": "{{status}}", "operator": "equals", "value": "hot"},
			payload:  map[string]any{"status": "cold"},
			expected: false,
		},
		{
			name:     "not_equals",
			config:   map[string]any{"field": "{{status}}", "operator": "not_equals", "value": "hot"},
			payload:  map[string]any{"status": "cold"},
			expected: true,
		},
		{
			name:     "contains is case-insensitive",
			config:   map[string]any{"field": "{{company}}", "operator": "contains", "value": "acme"},
			payload:  map[string]any{"company": "ACME Corp"},
			expected: true,
		},
		{
			name:     "greater_than numeric",
			config:   map[string]any{"field": "{{score}}", "operator": "greater_than", "value": 50},
			payload:  map[string]any{"score": float64(87)},
			expected: true,
		},
		{
			name:     "less_than numeric",
			config:   map[string]any{"field": "{{score}}", "operator": "less_than", "value": 50},
			payload:  map[string]any{"score": float64(87)},
			expected: false,
		},
		{
			name:     "greater_than non-numeric is false",
			config:   map[string]any{"field": "{{score}}", "operator": "greater_than", "value": 50},
			payload:  map[string]any{"score": "not a number"},
			expected: false,
		},
		{
			name:     "exists with resolved value",
			config:   map[string]any{"field": "{{email}}", "operator": "exists"},
			payload:  map[string]any{"email": "a@b.com"},
			expected: true,
		},
		{
			name:     "exists treats unresolved token as absent",
			config:   map[string]any{"field": "{{email}}", "operator": "exists"},
			payload:  map[string]any{},
			expected: false,
		},
		{
			name:     "not_exists with missing value",
			config:   map[string]any{"field": "{{email}}", "operator": "not_exists"},
			payload:  map[string]any{},
			expected: true,
		},
		{
			name:     "unknown operator is false",
			config:   map[string]any{"field": "{{status}}", "operator": "regex_match", "value": ".*"},
			payload:  map[string]any{"status": "hot"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := runWith(tt.payload)

			result := executeCondition(t, tt.config, run)

			assert.Equal(t, tt.expected, result.Output["condition_result"])
			assert.Equal(t, tt.expected, run.LastConditionResult,
				"branch state must match the logged result")
		})
	}
}

func TestNode_OutputShape(t *testing.T) {
	run := runWith(map[string]any{"status": "hot"})

	result := executeCondition(t, map[string]any{
		"field":    "{{status}}",
		"operator": "equals",
		"value":    "hot",
	}, run)

	assert.Equal(t, "{{status}}", result.Output["field_template"])
	assert.Equal(t, "hot", result.Output["actual_value"])
	assert.Equal(t, "hot", result.Output["compare_value"])
	assert.Equal(t, "equals", result.Output["operator"])
}

func TestNewNode_RequiresField(t *testing.T) {
	_, err := NewNode("cond", map[string]any{"operator": "equals"})
	require.Error(t, err)
}

func TestNewNode_DefaultsToEquals(t *testing.T) {
	run := runWith(map[string]any{"status": "hot"})

	result := executeCondition(t, map[string]any{
		"field": "{{status}}",
		"value": "hot",
	}, run)

	assert.Equal(t, true, result.Output["condition_result"])
}
