// Package cmd provides common initialization for the command-line
// applications.
package cmd

import (
	"log/slog"

	"github.com/hivecrm/flowline/pkg/persistence"
	"github.com/hivecrm/flowline/pkg/registry"
)

// NewRegistry builds the node registry with every built-in node factory
// bound to the given store.
func NewRegistry(logger *slog.Logger, p persistence.Persistence) *registry.Registry {
	reg := registry.NewRegistry(logger)
	reg.RegisterDefaultNodes(p)

	return reg
}
