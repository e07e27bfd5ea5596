// Package persistence provides the data storage abstraction for workflows,
// execution records, and CRM entities.
package persistence

import (
	"context"
	"time"

	"github.com/hivecrm/flowline/pkg/models"
)

type Persistence interface {
	WorkflowRepository() WorkflowRepository
	ExecutionRepository() ExecutionRepository
	LeadRepository() LeadRepository
	ContactRepository() ContactRepository
	ActivityRepository() ActivityRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// WorkflowRepository stores workflow definitions. The engine reads definitions
// and touches only the run counters.
type WorkflowRepository interface {
	GetAll(ctx context.Context, tenantID string) ([]*models.Workflow, error)
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	Save(ctx context.Context, workflow *models.Workflow) error
	Delete(ctx context.Context, id string) error

	// RecordRun bumps execution_count and stamps last_executed. Callers treat
	// failure as best-effort: a lost counter update never fails a run.
	RecordRun(ctx context.Context, id string, at time.Time) error
}

// ExecutionRepository stores durable run records.
type ExecutionRepository interface {
	Create(ctx context.Context, execution *models.Execution) error
	Update(ctx context.Context, execution *models.Execution) error
	GetByID(ctx context.Context, id string) (*models.Execution, error)
	ListByWorkflow(ctx context.Context, workflowID string, limit int) ([]*models.Execution, error)

	// MarkStaleFailed finalizes running records older than the cutoff as
	// failed. It exists for the reconciliation sweeper, not for the engine.
	MarkStaleFailed(ctx context.Context, olderThan time.Time, reason string) (int64, error)
}

// LeadRepository gives node executors tenant-scoped access to leads.
type LeadRepository interface {
	FindByField(ctx context.Context, tenantID, field, value string) (*models.Lead, error)
	Create(ctx context.Context, lead *models.Lead) error
	Update(ctx context.Context, tenantID, id string, fields map[string]any) (*models.Lead, error)
}

// ContactRepository gives node executors tenant-scoped access to contacts.
type ContactRepository interface {
	FindByField(ctx context.Context, tenantID, field, value string) (*models.Contact, error)
	Create(ctx context.Context, contact *models.Contact) error
	Update(ctx context.Context, tenantID, id string, fields map[string]any) (*models.Contact, error)
}

// ActivityRepository records CRM activities created by workflow runs.
type ActivityRepository interface {
	Create(ctx context.Context, activity *models.Activity) error
	ListByLead(ctx context.Context, tenantID, leadID string) ([]*models.Activity, error)
}
