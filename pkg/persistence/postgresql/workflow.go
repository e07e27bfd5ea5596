package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hivecrm/flowline/pkg/models"
)

// workflowMetadata is the shape of the workflows metadata JSONB column.
type workflowMetadata struct {
	Nodes       []*models.WorkflowNode `json:"nodes"`
	Connections []*models.Connection   `json:"connections"`
}

// WorkflowRepository handles workflow-related database operations.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(db *sql.DB, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

const workflowColumns = `
	id
  , tenant_id
  , name
  , trigger_type
  , is_active
  , metadata
  , execution_count
  , last_executed
  , created_at
  , updated_at
`

// GetAll returns the tenant's workflows, newest first.
func (r *WorkflowRepository) GetAll(ctx context.Context, tenantID string) ([]*models.Workflow, error) {
	query := `
		SELECT ` + workflowColumns + `
		FROM workflows
		WHERE tenant_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}

		workflows = append(workflows, workflow)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating workflows: %w", err)
	}

	return workflows, nil
}

// GetByID returns the workflow with the given id, or nil when missing.
func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	query := `
		SELECT ` + workflowColumns + `
		FROM workflows
		WHERE id = $1
	`

	workflow, err := scanWorkflow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan workflow: %w", err)
	}

	return workflow, nil
}

// Save upserts a workflow, packing nodes and connections into the metadata
// column.
func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	now := time.Now().UTC()

	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	if workflow.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate workflow ID: %w", err)
		}

		workflow.ID = id.String()
	}

	metadataJSON, err := json.Marshal(workflowMetadata{
		Nodes:       workflow.Nodes,
		Connections: workflow.Connections,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal workflow metadata: %w", err)
	}

	query := `
		INSERT INTO workflows (id, tenant_id, name, trigger_type, is_active,
			metadata, execution_count, last_executed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			tenant_id = EXCLUDED.tenant_id,
			name = EXCLUDED.name,
			trigger_type = EXCLUDED.trigger_type,
			is_active = EXCLUDED.is_active,
			metadata = EXCLUDED.metadata,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		workflow.ID,
		workflow.TenantID,
		workflow.Name,
		workflow.TriggerType,
		workflow.IsActive,
		metadataJSON,
		workflow.ExecutionCount,
		workflow.LastExecuted,
		workflow.CreatedAt,
		workflow.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save workflow: %w", err)
	}

	return nil
}

// Delete removes a workflow row. Deleting a missing workflow is a no-op.
func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM workflows WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow %s: %w", id, err)
	}

	return nil
}

// RecordRun bumps the run counter and stamps the last run time in one
// statement. Lost updates under concurrency are acceptable for these
// informational columns.
func (r *WorkflowRepository) RecordRun(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE workflows
		SET execution_count = execution_count + 1, last_executed = $2
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("failed to record run for workflow %s: %w", id, err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanWorkflow reads one workflow row, unpacking the metadata column. A NULL
// metadata column yields empty node and connection lists.
func scanWorkflow(row rowScanner) (*models.Workflow, error) {
	var (
		workflow     models.Workflow
		triggerType  sql.NullString
		metadataJSON []byte
		lastExecuted sql.NullTime
	)

	err := row.Scan(
		&workflow.ID,
		&workflow.TenantID,
		&workflow.Name,
		&triggerType,
		&workflow.IsActive,
		&metadataJSON,
		&workflow.ExecutionCount,
		&lastExecuted,
		&workflow.CreatedAt,
		&workflow.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	workflow.TriggerType = triggerType.String

	if lastExecuted.Valid {
		at := lastExecuted.Time.UTC()
		workflow.LastExecuted = &at
	}

	workflow.Nodes = make([]*models.WorkflowNode, 0)
	workflow.Connections = make([]*models.Connection, 0)

	if len(metadataJSON) > 0 {
		var metadata workflowMetadata

		if err := json.Unmarshal(metadataJSON, &metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal workflow metadata: %w", err)
		}

		if metadata.Nodes != nil {
			workflow.Nodes = metadata.Nodes
		}

		if metadata.Connections != nil {
			workflow.Connections = metadata.Connections
		}
	}

	return &workflow, nil
}
