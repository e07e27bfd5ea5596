package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hivecrm/flowline/pkg/persistence"
	"github.com/hivecrm/flowline/pkg/persistence/file"
	"github.com/hivecrm/flowline/pkg/persistence/postgresql"
)

// NewPersistence picks the store backend from the database URL scheme.
// postgres:// connects and migrates PostgreSQL; anything else is treated as a
// file path for the development store.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch parseProvider(databaseURL) {
	case "postgres", "postgresql":
		p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("initializing postgres persistence: %w", err)
		}

		return p, nil
	default:
		return file.NewPersistence(databaseURL), nil
	}
}

func parseProvider(databaseURL string) string {
	scheme, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	return scheme
}
