package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/hivecrm/flowline/pkg/models"
	"github.com/hivecrm/flowline/pkg/persistence"
)

// ExecutionRepository stores one JSON file per execution record under
// <root>/executions/.
type ExecutionRepository struct {
	root string
}

// NewExecutionRepository creates a new execution repository.
func NewExecutionRepository(root string) *ExecutionRepository {
	return &ExecutionRepository{root: root}
}

// Create persists a new execution record.
func (er *ExecutionRepository) Create(_ context.Context, execution *models.Execution) error {
	err := os.MkdirAll(path.Join(er.root, "executions"), 0750)
	if err != nil {
		return fmt.Errorf("failed to create executions directory: %w", err)
	}

	return er.write(execution)
}

// Update overwrites an existing execution record.
func (er *ExecutionRepository) Update(ctx context.Context, execution *models.Execution) error {
	existing, err := er.GetByID(ctx, execution.ID)
	if err != nil {
		return err
	}

	if existing == nil {
		return fmt.Errorf("execution %s: %w", execution.ID, persistence.ErrExecutionNotFound)
	}

	return er.write(execution)
}

// GetByID retrieves an execution record by its ID. Returns nil for a missing
// record.
func (er *ExecutionRepository) GetByID(_ context.Context, id string) (*models.Execution, error) {
	filePath := filepath.Clean(path.Join(er.root, "executions", id+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to fetch execution %s: %w", id, err)
	}

	var execution models.Execution

	err = json.Unmarshal(body, &execution)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal execution %s: %w", id, err)
	}

	return &execution, nil
}

// ListByWorkflow returns the workflow's execution records, newest first,
// capped at limit when limit is positive.
func (er *ExecutionRepository) ListByWorkflow(ctx context.Context, workflowID string, limit int) ([]*models.Execution, error) {
	all, err := er.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	executions := make([]*models.Execution, 0)

	for _, execution := range all {
		if execution.WorkflowID == workflowID {
			executions = append(executions, execution)
		}
	}

	sort.Slice(executions, func(i, j int) bool {
		return executions[i].StartedAt.After(executions[j].StartedAt)
	})

	if limit > 0 && len(executions) > limit {
		executions = executions[:limit]
	}

	return executions, nil
}

// MarkStaleFailed finalizes running records that started before the cutoff as
// failed with the given reason. Returns the number of records reconciled.
func (er *ExecutionRepository) MarkStaleFailed(ctx context.Context, olderThan time.Time, reason string) (int64, error) {
	all, err := er.loadAll(ctx)
	if err != nil {
		return 0, err
	}

	var reconciled int64

	now := time.Now().UTC()

	for _, execution := range all {
		if execution.Status != models.ExecutionStatusRunning || !execution.StartedAt.Before(olderThan) {
			continue
		}

		execution.Status = models.ExecutionStatusFailed
		execution.ErrorMessage = reason
		execution.CompletedAt = &now

		if err := er.write(execution); err != nil {
			return reconciled, err
		}

		reconciled++
	}

	return reconciled, nil
}

func (er *ExecutionRepository) loadAll(ctx context.Context) ([]*models.Execution, error) {
	root := os.DirFS(path.Join(er.root, "executions"))

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list execution files: %w", err)
	}

	executions := make([]*models.Execution, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		execution, err := er.GetByID(ctx, file[:len(file)-5])
		if err != nil {
			return nil, err
		}

		if execution != nil {
			executions = append(executions, execution)
		}
	}

	return executions, nil
}

func (er *ExecutionRepository) write(execution *models.Execution) error {
	data, err := json.MarshalIndent(execution, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal execution %s: %w", execution.ID, err)
	}

	filePath := path.Join(er.root, "executions", execution.ID+".json")

	return os.WriteFile(filePath, data, 0600)
}
