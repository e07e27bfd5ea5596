package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hivecrm/flowline/pkg/models"
	"github.com/hivecrm/flowline/pkg/persistence"
)

// ExecutionRepository handles execution-record database operations.
type ExecutionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewExecutionRepository creates a new execution repository.
func NewExecutionRepository(db *sql.DB, logger *slog.Logger) *ExecutionRepository {
	return &ExecutionRepository{db: db, logger: logger}
}

const executionColumns = `
	id
  , workflow_id
  , tenant_id
  , status
  , trigger_data
  , execution_log
  , error_message
  , started_at
  , completed_at
`

// Create inserts a new execution record.
func (r *ExecutionRepository) Create(ctx context.Context, execution *models.Execution) error {
	triggerJSON, logJSON, err := marshalExecutionColumns(execution)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO executions (id, workflow_id, tenant_id, status,
			trigger_data, execution_log, error_message, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.db.ExecContext(ctx, query,
		execution.ID,
		execution.WorkflowID,
		execution.TenantID,
		execution.Status,
		triggerJSON,
		logJSON,
		nullableString(execution.ErrorMessage),
		execution.StartedAt,
		execution.CompletedAt,
	)
	if err != nil {
		return persistence.NewExecutionError("Create", execution.ID, err)
	}

	return nil
}

// Update overwrites the mutable columns of an existing execution record.
func (r *ExecutionRepository) Update(ctx context.Context, execution *models.Execution) error {
	triggerJSON, logJSON, err := marshalExecutionColumns(execution)
	if err != nil {
		return err
	}

	query := `
		UPDATE executions
		SET status = $2, trigger_data = $3, execution_log = $4,
			error_message = $5, completed_at = $6
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		execution.ID,
		execution.Status,
		triggerJSON,
		logJSON,
		nullableString(execution.ErrorMessage),
		execution.CompletedAt,
	)
	if err != nil {
		return persistence.NewExecutionError("Update", execution.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewExecutionError("Update", execution.ID, err)
	}

	if affected == 0 {
		return persistence.NewExecutionError("Update", execution.ID, persistence.ErrExecutionNotFound)
	}

	return nil
}

// GetByID returns the execution record with the given id, or nil when
// missing.
func (r *ExecutionRepository) GetByID(ctx context.Context, id string) (*models.Execution, error) {
	query := `
		SELECT ` + executionColumns + `
		FROM executions
		WHERE id = $1
	`

	execution, err := scanExecution(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan execution: %w", err)
	}

	return execution, nil
}

// ListByWorkflow returns the workflow's execution records, newest first,
// capped at limit when limit is positive.
func (r *ExecutionRepository) ListByWorkflow(ctx context.Context, workflowID string, limit int) ([]*models.Execution, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT ` + executionColumns + `
		FROM executions
		WHERE workflow_id = $1
		ORDER BY started_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, workflowID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query executions: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	executions := make([]*models.Execution, 0)

	for rows.Next() {
		execution, err := scanExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution: %w", err)
		}

		executions = append(executions, execution)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating executions: %w", err)
	}

	return executions, nil
}

// MarkStaleFailed finalizes running records that started before the cutoff as
// failed with the given reason. Returns the number of rows reconciled.
func (r *ExecutionRepository) MarkStaleFailed(ctx context.Context, olderThan time.Time, reason string) (int64, error) {
	query := `
		UPDATE executions
		SET status = $1, error_message = $2, completed_at = NOW()
		WHERE status = $3 AND started_at < $4
	`

	result, err := r.db.ExecContext(ctx, query,
		models.ExecutionStatusFailed, reason, models.ExecutionStatusRunning, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to mark stale executions: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count reconciled executions: %w", err)
	}

	return affected, nil
}

func marshalExecutionColumns(execution *models.Execution) ([]byte, []byte, error) {
	triggerJSON, err := json.Marshal(execution.TriggerData)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal trigger data: %w", err)
	}

	entries := execution.Log
	if entries == nil {
		entries = []models.NodeLogEntry{}
	}

	logJSON, err := json.Marshal(entries)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal execution log: %w", err)
	}

	return triggerJSON, logJSON, nil
}

func scanExecution(row rowScanner) (*models.Execution, error) {
	var (
		execution    models.Execution
		triggerJSON  []byte
		logJSON      []byte
		errorMessage sql.NullString
		completedAt  sql.NullTime
	)

	err := row.Scan(
		&execution.ID,
		&execution.WorkflowID,
		&execution.TenantID,
		&execution.Status,
		&triggerJSON,
		&logJSON,
		&errorMessage,
		&execution.StartedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	execution.ErrorMessage = errorMessage.String

	if completedAt.Valid {
		at := completedAt.Time.UTC()
		execution.CompletedAt = &at
	}

	if len(triggerJSON) > 0 {
		if err := json.Unmarshal(triggerJSON, &execution.TriggerData); err != nil {
			return nil, fmt.Errorf("failed to unmarshal trigger data: %w", err)
		}
	}

	execution.Log = make([]models.NodeLogEntry, 0)

	if len(logJSON) > 0 {
		if err := json.Unmarshal(logJSON, &execution.Log); err != nil {
			return nil, fmt.Errorf("failed to unmarshal execution log: %w", err)
		}
	}

	return &execution, nil
}

func nullableString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}
