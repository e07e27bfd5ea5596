// Package registry maps node type tags to their factories.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hivecrm/flowline/pkg/protocol"
	"github.com/xeipuuv/gojsonschema"
)

// ErrUnknownNodeType reports a node type no factory is registered for. The
// runner records it as an error log entry and halts the walk.
type ErrUnknownNodeType struct {
	NodeType string
}

func (e *ErrUnknownNodeType) Error() string {
	return fmt.Sprintf("unknown node type '%s'", e.NodeType)
}

// Registry holds the node factories available to workflow runs.
type Registry struct {
	logger        *slog.Logger
	nodeFactories map[string]protocol.NodeFactory
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:        logger,
		nodeFactories: make(map[string]protocol.NodeFactory),
	}
}

// RegisterNode registers a node factory under its type id.
func (r *Registry) RegisterNode(factory protocol.NodeFactory) {
	r.nodeFactories[factory.ID()] = factory
}

// CreateNode validates the config against the factory schema and instantiates
// the node. Unknown types and malformed configs fail here, before execution.
func (r *Registry) CreateNode(ctx context.Context, nodeType, id string, config map[string]any) (protocol.Node, error) {
	factory, ok := r.nodeFactories[nodeType]
	if !ok {
		return nil, &ErrUnknownNodeType{NodeType: nodeType}
	}

	if config == nil {
		config = make(map[string]any)
	}

	if err := validateConfig(factory.Schema(), config); err != nil {
		return nil, fmt.Errorf("invalid config for node type '%s': %w", nodeType, err)
	}

	return factory.Create(ctx, id, config)
}

// AvailableNodeTypes returns the registered type ids.
func (r *Registry) AvailableNodeTypes() []string {
	types := make([]string, 0, len(r.nodeFactories))
	for nodeType := range r.nodeFactories {
		types = append(types, nodeType)
	}

	return types
}

func validateConfig(schema map[string]any, config map[string]any) error {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	configLoader := gojsonschema.NewGoLoader(config)

	result, err := gojsonschema.Validate(schemaLoader, configLoader)
	if err != nil {
		return err
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, violation := range result.Errors() {
			details = append(details, violation.String())
		}

		return fmt.Errorf("config schema violations: %s", strings.Join(details, "; "))
	}

	return nil
}
