// Package condition provides the conditional-branch node.
package condition

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/hivecrm/flowline/pkg/models"
	"github.com/hivecrm/flowline/pkg/template"
)

// Supported comparison operators.
const (
	OpEquals      = "equals"
	OpNotEquals   = "not_equals"
	OpContains    = "contains"
	OpGreaterThan = "greater_than"
	OpLessThan    = "less_than"
	OpExists      = "exists"
	OpNotExists   = "not_exists"
)

// Node compares a resolved field value against a resolved compare value and
// records the boolean outcome as the run's branch state. Condition nodes never
// fail: an unknown operator evaluates to false.
type Node struct {
	id       string
	field    string
	operator string
	value    string
}

// NewNode creates a condition node.
func NewNode(id string, config map[string]any) (*Node, error) {
	field, ok := config["field"].(string)
	if !ok || field == "" {
		return nil, errors.New("missing required field 'field'")
	}

	operator, ok := config["operator"].(string)
	if !ok || operator == "" {
		operator = OpEquals
	}

	value := template.Stringify(config["value"])

	return &Node{
		id:       id,
		field:    field,
		operator: operator,
		value:    value,
	}, nil
}

// ID returns the node ID.
func (n *Node) ID() string {
	return n.id
}

// Type returns the node type.
func (n *Node) Type() string {
	return "condition"
}

// Execute resolves both sides, evaluates the operator, and sets
// LastConditionResult for the runner's edge selection.
func (n *Node) Execute(_ context.Context, run *models.RunContext) (*models.NodeResult, error) {
	actual := template.Resolve(n.field, run)
	compare := template.Resolve(n.value, run)

	result := evaluate(n.operator, actual, compare)
	run.LastConditionResult = result

	return &models.NodeResult{
		Status: models.NodeStatusSuccess,
		Output: map[string]any{
			"condition_result": result,
			"field_template":   n.field,
			"actual_value":     actual,
			"compare_value":    compare,
			"operator":         n.operator,
		},
	}, nil
}

func evaluate(operator, actual, compare string) bool {
	switch operator {
	case OpEquals:
		return actual == compare
	case OpNotEquals:
		return actual != compare
	case OpContains:
		return strings.Contains(strings.ToLower(actual), strings.ToLower(compare))
	case OpGreaterThan:
		left, right, ok := parseNumbers(actual, compare)

		return ok && left > right
	case OpLessThan:
		left, right, ok := parseNumbers(actual, compare)

		return ok && left < right
	case OpExists:
		return !isAbsent(actual)
	case OpNotExists:
		return isAbsent(actual)
	default:
		return false
	}
}

// isAbsent treats a still-unresolved {{token}} and an empty string as "no
// value".
func isAbsent(resolved string) bool {
	return resolved == "" || template.HasUnresolvedTokens(resolved)
}

func parseNumbers(actual, compare string) (float64, float64, bool) {
	left, err := strconv.ParseFloat(strings.TrimSpace(actual), 64)
	if err != nil {
		return 0, 0, false
	}

	right, err := strconv.ParseFloat(strings.TrimSpace(compare), 64)
	if err != nil {
		return 0, 0, false
	}

	return left, right, true
}
