package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/hivecrm/flowline/pkg/mocks"
	"github.com/hivecrm/flowline/pkg/models"
	"github.com/hivecrm/flowline/pkg/persistence/file"
	"github.com/hivecrm/flowline/pkg/registry"
	"github.com/hivecrm/flowline/pkg/web"
	"github.com/hivecrm/flowline/pkg/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T) (*fiber.App, *file.Persistence) {
	t.Helper()

	p := file.NewPersistence(t.TempDir())

	reg := registry.NewRegistry(slog.Default())
	reg.RegisterDefaultNodes(p)

	runner := workflow.NewRunner(p, reg, mocks.NewRecordingEventBus(), slog.Default())
	handlers := web.NewAPIHandlers(p, runner, validator.New(validator.WithRequiredStructEnabled()))

	app := fiber.New()
	app.Get("/health", handlers.HealthCheck)

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Post("/:id/execute", handlers.ExecuteWorkflow)
	w.Get("/:id/executions", handlers.GetWorkflowExecutions)

	app.Get("/executions/:id", handlers.GetExecution)

	return app, p
}

func saveWorkflow(t *testing.T, p *file.Persistence, wf *models.Workflow) {
	t.Helper()
	require.NoError(t, p.WorkflowRepository().Save(context.Background(), wf))
}

func intakeWorkflow(id string, active bool) *models.Workflow {
	return &models.Workflow{
		ID:          id,
		TenantID:    "tenant-1",
		Name:        "Inbound lead intake",
		TriggerType: "webhook",
		IsActive:    active,
		Nodes: []*models.WorkflowNode{
			{ID: "start", Type: "webhook_trigger"},
			{ID: "lookup", Type: "find_lead", Config: map[string]any{
				"search_field": "email",
				"search_value": "{{email}}",
			}},
		},
		Connections: []*models.Connection{{From: "start", To: "lookup"}},
	}
}

func postJSON(t *testing.T, app *fiber.App, path string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, raw
}

func getJSON(t *testing.T, app *fiber.App, path string, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, raw
}

func TestExecuteWorkflow_Success(t *testing.T) {
	t.Parallel()

	app, p := setupTestApp(t)
	saveWorkflow(t, p, intakeWorkflow("wf-1", true))

	require.NoError(t, p.LeadRepository().Create(context.Background(), &models.Lead{
		ID: "lead-1", TenantID: "tenant-1", Name: "Alice", Email: "a@b.com",
	}))

	resp, raw := postJSON(t, app, "/workflows/wf-1/execute",
		map[string]any{"payload": map[string]any{"email": "a@b.com"}}, nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body web.ExecuteWorkflowResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "success", body.Status)
	assert.NotEmpty(t, body.Data.ExecutionID)
	require.Len(t, body.Data.ExecutionLog, 2)
	assert.Equal(t, "lookup", body.Data.ExecutionLog[1].NodeID)
	assert.GreaterOrEqual(t, body.Data.DurationMS, int64(0))

	// The record is durable and readable afterward.
	resp, raw = getJSON(t, app, "/executions/"+body.Data.ExecutionID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var execution models.Execution
	require.NoError(t, json.Unmarshal(raw, &execution))
	assert.Equal(t, models.ExecutionStatusSuccess, execution.Status)
	assert.Equal(t, "wf-1", execution.WorkflowID)
}

func TestExecuteWorkflow_InputDataSynonym(t *testing.T) {
	t.Parallel()

	app, p := setupTestApp(t)
	saveWorkflow(t, p, intakeWorkflow("wf-1", true))

	require.NoError(t, p.LeadRepository().Create(context.Background(), &models.Lead{
		ID: "lead-1", TenantID: "tenant-1", Email: "a@b.com",
	}))

	resp, raw := postJSON(t, app, "/workflows/wf-1/execute",
		map[string]any{"input_data": map[string]any{"email": "a@b.com"}}, nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body web.ExecuteWorkflowResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "success", body.Status)
}

func TestExecuteWorkflow_LookupMissIsFailedRun(t *testing.T) {
	t.Parallel()

	app, p := setupTestApp(t)
	saveWorkflow(t, p, intakeWorkflow("wf-1", true))

	resp, raw := postJSON(t, app, "/workflows/wf-1/execute",
		map[string]any{"payload": map[string]any{"email": "a@b.com"}}, nil)

	// Domain failure is HTTP 200 with status failed in the body.
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body web.ExecuteWorkflowResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "failed", body.Status)
	require.Len(t, body.Data.ExecutionLog, 2)
	assert.Equal(t, models.NodeStatusError, body.Data.ExecutionLog[1].Status)
	assert.Contains(t, body.Data.ExecutionLog[1].Error, "email = a@b.com")
}

func TestExecuteWorkflow_Preconditions(t *testing.T) {
	t.Parallel()

	app, p := setupTestApp(t)

	inactive := intakeWorkflow("wf-inactive", false)
	saveWorkflow(t, p, inactive)

	empty := intakeWorkflow("wf-empty", true)
	empty.Nodes = nil
	empty.Connections = nil
	saveWorkflow(t, p, empty)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"unknown workflow", "/workflows/nope/execute", http.StatusNotFound},
		{"inactive workflow", "/workflows/wf-inactive/execute", http.StatusBadRequest},
		{"empty workflow", "/workflows/wf-empty/execute", http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			resp, _ := postJSON(t, app, tc.path, map[string]any{}, nil)
			assert.Equal(t, tc.wantStatus, resp.StatusCode)
		})
	}
}

func TestExecuteWorkflow_EmptyBodyDefaultsPayload(t *testing.T) {
	t.Parallel()

	app, p := setupTestApp(t)

	wf := intakeWorkflow("wf-1", true)
	wf.Nodes = []*models.WorkflowNode{{ID: "start", Type: "webhook_trigger"}}
	wf.Connections = nil
	saveWorkflow(t, p, wf)

	req := httptest.NewRequest(http.MethodPost, "/workflows/wf-1/execute", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateAndGetWorkflow(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	resp, raw := postJSON(t, app, "/workflows/", web.CreateWorkflowRequest{
		TenantID:    "tenant-1",
		Name:        "Signup follow-up",
		TriggerType: "form",
		IsActive:    true,
		Nodes:       []*models.WorkflowNode{{ID: "start", Type: "form_trigger"}},
	}, nil)

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Workflow
	require.NoError(t, json.Unmarshal(raw, &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Signup follow-up", created.Name)

	resp, raw = getJSON(t, app, "/workflows/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var loaded models.Workflow
	require.NoError(t, json.Unmarshal(raw, &loaded))
	assert.Equal(t, created.ID, loaded.ID)

	// Validation: name too short
	resp, _ = postJSON(t, app, "/workflows/", web.CreateWorkflowRequest{
		TenantID: "tenant-1",
		Name:     "ab",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Validation: missing tenant
	resp, _ = postJSON(t, app, "/workflows/", web.CreateWorkflowRequest{
		Name: "No tenant given",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetWorkflows_RequiresTenantHeader(t *testing.T) {
	t.Parallel()

	app, p := setupTestApp(t)
	saveWorkflow(t, p, intakeWorkflow("wf-1", true))

	resp, _ := getJSON(t, app, "/workflows/", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, raw := getJSON(t, app, "/workflows/", map[string]string{web.TenantHeader: "tenant-1"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Workflows []*models.Workflow `json:"workflows"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Len(t, body.Workflows, 1)

	resp, raw = getJSON(t, app, "/workflows/", map[string]string{web.TenantHeader: "tenant-2"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Empty(t, body.Workflows)
}

func TestTenantHeaderScopesReads(t *testing.T) {
	t.Parallel()

	app, p := setupTestApp(t)
	saveWorkflow(t, p, intakeWorkflow("wf-1", true))

	// Other tenants cannot see the workflow.
	resp, _ := getJSON(t, app, "/workflows/wf-1", map[string]string{web.TenantHeader: "tenant-2"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = getJSON(t, app, "/workflows/wf-1", map[string]string{web.TenantHeader: "tenant-1"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetWorkflowExecutions(t *testing.T) {
	t.Parallel()

	app, p := setupTestApp(t)
	saveWorkflow(t, p, intakeWorkflow("wf-1", true))

	// Two runs, both lookup misses.
	for range 2 {
		resp, _ := postJSON(t, app, "/workflows/wf-1/execute",
			map[string]any{"payload": map[string]any{"email": "missing@b.com"}}, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, raw := getJSON(t, app, "/workflows/wf-1/executions", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Executions []*models.Execution `json:"executions"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	require.Len(t, body.Executions, 2)
	assert.Equal(t, models.ExecutionStatusFailed, body.Executions[0].Status)

	resp, raw = getJSON(t, app, "/workflows/wf-1/executions?limit=1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Len(t, body.Executions, 1)

	resp, _ = getJSON(t, app, "/workflows/wf-1/executions?limit=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = getJSON(t, app, "/workflows/nope/executions", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetExecution_Missing(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	resp, _ := getJSON(t, app, "/executions/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	resp, raw := getJSON(t, app, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "healthy", body["status"])
}
