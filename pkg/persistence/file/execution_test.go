package file

import (
	"context"
	"testing"
	"time"

	"github.com/hivecrm/flowline/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleExecution(id, workflowID string, startedAt time.Time) *models.Execution {
	return &models.Execution{
		ID:          id,
		WorkflowID:  workflowID,
		TenantID:    "tenant-1",
		Status:      models.ExecutionStatusRunning,
		TriggerData: map[string]any{"email": "a@b.com"},
		Log:         []models.NodeLogEntry{},
		StartedAt:   startedAt,
	}
}

func TestExecutionRepositoryRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewExecutionRepository(t.TempDir())

	started := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.Create(ctx, sampleExecution("exec-1", "wf-1", started)))

	loaded, err := repo.GetByID(ctx, "exec-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, models.ExecutionStatusRunning, loaded.Status)
	assert.Equal(t, "a@b.com", loaded.TriggerData["email"])
	assert.Nil(t, loaded.CompletedAt)

	now := time.Now().UTC()
	loaded.Status = models.ExecutionStatusSuccess
	loaded.CompletedAt = &now
	loaded.Log = append(loaded.Log, models.NodeLogEntry{
		NodeID: "start", NodeType: "webhook_trigger",
		Timestamp: now, Status: models.NodeStatusSuccess,
	})
	require.NoError(t, repo.Update(ctx, loaded))

	final, err := repo.GetByID(ctx, "exec-1")
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusSuccess, final.Status)
	require.NotNil(t, final.CompletedAt)
	require.Len(t, final.Log, 1)
	assert.Equal(t, "start", final.Log[0].NodeID)
}

func TestExecutionRepositoryUpdateMissing(t *testing.T) {
	t.Parallel()

	repo := NewExecutionRepository(t.TempDir())

	err := repo.Update(context.Background(), sampleExecution("exec-x", "wf-1", time.Now().UTC()))
	assert.Error(t, err)
}

func TestExecutionRepositoryListByWorkflow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewExecutionRepository(t.TempDir())

	base := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.Create(ctx, sampleExecution("exec-old", "wf-1", base.Add(-2*time.Hour))))
	require.NoError(t, repo.Create(ctx, sampleExecution("exec-new", "wf-1", base)))
	require.NoError(t, repo.Create(ctx, sampleExecution("exec-other", "wf-2", base)))

	executions, err := repo.ListByWorkflow(ctx, "wf-1", 10)
	require.NoError(t, err)
	require.Len(t, executions, 2)
	assert.Equal(t, "exec-new", executions[0].ID)
	assert.Equal(t, "exec-old", executions[1].ID)

	capped, err := repo.ListByWorkflow(ctx, "wf-1", 1)
	require.NoError(t, err)
	require.Len(t, capped, 1)
	assert.Equal(t, "exec-new", capped[0].ID)
}

func TestExecutionRepositoryMarkStaleFailed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewExecutionRepository(t.TempDir())

	now := time.Now().UTC()
	stale := sampleExecution("exec-stale", "wf-1", now.Add(-2*time.Hour))
	fresh := sampleExecution("exec-fresh", "wf-1", now.Add(-time.Minute))

	finished := sampleExecution("exec-done", "wf-1", now.Add(-3*time.Hour))
	finished.Status = models.ExecutionStatusSuccess

	require.NoError(t, repo.Create(ctx, stale))
	require.NoError(t, repo.Create(ctx, fresh))
	require.NoError(t, repo.Create(ctx, finished))

	reconciled, err := repo.MarkStaleFailed(ctx, now.Add(-time.Hour), "abandoned by crashed engine")
	require.NoError(t, err)
	assert.Equal(t, int64(1), reconciled)

	reloaded, err := repo.GetByID(ctx, "exec-stale")
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusFailed, reloaded.Status)
	assert.Equal(t, "abandoned by crashed engine", reloaded.ErrorMessage)
	require.NotNil(t, reloaded.CompletedAt)

	// Fresh running and already-finished records are untouched.
	untouched, err := repo.GetByID(ctx, "exec-fresh")
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusRunning, untouched.Status)

	done, err := repo.GetByID(ctx, "exec-done")
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusSuccess, done.Status)
}
