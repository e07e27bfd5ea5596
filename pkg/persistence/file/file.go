// Package file provides file-based persistence for workflows, execution
// records, and CRM entities. Intended for development and tests; the
// postgresql package is the production store.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/hivecrm/flowline/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface on top of a
// directory of JSON files.
type Persistence struct {
	root          string
	workflowRepo  *WorkflowRepository
	executionRepo *ExecutionRepository
	leadRepo      *LeadRepository
	contactRepo   *ContactRepository
	activityRepo  *ActivityRepository
}

// NewPersistence creates a file persistence rooted at the given directory.
// Accepts a plain path or a file:// URL.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:          cleanRoot,
		workflowRepo:  NewWorkflowRepository(cleanRoot),
		executionRepo: NewExecutionRepository(cleanRoot),
		leadRepo:      NewLeadRepository(cleanRoot),
		contactRepo:   NewContactRepository(cleanRoot),
		activityRepo:  NewActivityRepository(cleanRoot),
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is
// nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return fp.workflowRepo
}

func (fp *Persistence) ExecutionRepository() persistence.ExecutionRepository {
	return fp.executionRepo
}

func (fp *Persistence) LeadRepository() persistence.LeadRepository {
	return fp.leadRepo
}

func (fp *Persistence) ContactRepository() persistence.ContactRepository {
	return fp.contactRepo
}

func (fp *Persistence) ActivityRepository() persistence.ActivityRepository {
	return fp.activityRepo
}
