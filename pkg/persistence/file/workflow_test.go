package file

import (
	"context"
	"testing"
	"time"

	"github.com/hivecrm/flowline/pkg/models"
	"github.com/hivecrm/flowline/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleWorkflow(id, tenantID string) *models.Workflow {
	return &models.Workflow{
		ID:          id,
		TenantID:    tenantID,
		Name:        "Inbound lead intake",
		TriggerType: "webhook",
		IsActive:    true,
		Nodes: []*models.WorkflowNode{
			{ID: "start", Type: "webhook_trigger"},
			{ID: "check", Type: "condition", Config: map[string]any{"field": "{{plan}}"}},
		},
		Connections: []*models.Connection{{From: "start", To: "check"}},
	}
}

func TestWorkflowRepositoryRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewWorkflowRepository(t.TempDir())

	original := sampleWorkflow("wf-1", "tenant-1")
	require.NoError(t, repo.Save(ctx, original))
	assert.False(t, original.CreatedAt.IsZero())

	loaded, err := repo.GetByID(ctx, "wf-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "tenant-1", loaded.TenantID)
	assert.Equal(t, "Inbound lead intake", loaded.Name)
	require.Len(t, loaded.Nodes, 2)
	assert.Equal(t, "webhook_trigger", loaded.Nodes[0].Type)
	require.Len(t, loaded.Connections, 1)
	assert.Equal(t, "check", loaded.Connections[0].To)
}

func TestWorkflowRepositoryGetByIDMissing(t *testing.T) {
	t.Parallel()

	repo := NewWorkflowRepository(t.TempDir())

	workflow, err := repo.GetByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, workflow)
}

func TestWorkflowRepositoryGetAllFiltersTenant(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewWorkflowRepository(t.TempDir())

	require.NoError(t, repo.Save(ctx, sampleWorkflow("wf-a", "tenant-1")))
	require.NoError(t, repo.Save(ctx, sampleWorkflow("wf-b", "tenant-2")))
	require.NoError(t, repo.Save(ctx, sampleWorkflow("wf-c", "tenant-1")))

	workflows, err := repo.GetAll(ctx, "tenant-1")
	require.NoError(t, err)
	require.Len(t, workflows, 2)

	for _, workflow := range workflows {
		assert.Equal(t, "tenant-1", workflow.TenantID)
	}
}

func TestWorkflowRepositoryDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewWorkflowRepository(t.TempDir())

	require.NoError(t, repo.Save(ctx, sampleWorkflow("wf-1", "tenant-1")))
	require.NoError(t, repo.Delete(ctx, "wf-1"))

	workflow, err := repo.GetByID(ctx, "wf-1")
	require.NoError(t, err)
	assert.Nil(t, workflow)

	// Deleting again is a no-op.
	assert.NoError(t, repo.Delete(ctx, "wf-1"))
}

func TestWorkflowRepositoryRecordRun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewWorkflowRepository(t.TempDir())

	require.NoError(t, repo.Save(ctx, sampleWorkflow("wf-1", "tenant-1")))

	ranAt := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.RecordRun(ctx, "wf-1", ranAt))
	require.NoError(t, repo.RecordRun(ctx, "wf-1", ranAt.Add(time.Minute)))

	workflow, err := repo.GetByID(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), workflow.ExecutionCount)
	require.NotNil(t, workflow.LastExecuted)
	assert.Equal(t, ranAt.Add(time.Minute), workflow.LastExecuted.UTC())
}

func TestWorkflowRepositoryRecordRunMissing(t *testing.T) {
	t.Parallel()

	repo := NewWorkflowRepository(t.TempDir())

	err := repo.RecordRun(context.Background(), "nope", time.Now().UTC())
	assert.True(t, persistence.IsWorkflowNotFound(err))
}
