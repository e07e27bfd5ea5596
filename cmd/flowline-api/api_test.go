package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hivecrm/flowline/pkg/mocks"
	"github.com/hivecrm/flowline/pkg/models"
	"github.com/hivecrm/flowline/pkg/persistence/file"
	"github.com/hivecrm/flowline/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gofiber/fiber/v3"
)

func setupTestApp(tempDir string) *fiber.App {
	persistence := file.NewPersistence(tempDir)
	reg := registry.NewRegistry(slog.Default())
	reg.RegisterDefaultNodes(persistence)

	app := NewAPI(
		slog.Default(),
		persistence,
		reg,
		mocks.NewRecordingEventBus(),
	)

	return app.App()
}

func TestAPI_RootEndpoint(t *testing.T) {
	tempDir := t.TempDir()
	app := setupTestApp(tempDir)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Flowline API", string(body))
}

func TestAPI_LivenessEndpoint(t *testing.T) {
	tempDir := t.TempDir()
	app := setupTestApp(tempDir)

	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_GetWorkflows_Empty(t *testing.T) {
	tempDir := t.TempDir()
	app := setupTestApp(tempDir)

	req := httptest.NewRequest(http.MethodGet, "/workflows", nil)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Tenant-ID", "tenant-1")
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var workflows []models.Workflow

	err = json.NewDecoder(resp.Body).Decode(&workflows)
	require.NoError(t, err)
	assert.Empty(t, workflows)
}

func TestAPI_GetWorkflows_WithData(t *testing.T) {
	tempDir := t.TempDir()
	persistence := file.NewPersistence(tempDir)

	wf := &models.Workflow{
		ID:          "wf-1",
		TenantID:    "tenant-1",
		Name:        "Lead Intake",
		TriggerType: "webhook",
		IsActive:    true,
		Nodes: []*models.WorkflowNode{
			{ID: "start", Type: "webhook_trigger", Config: map[string]any{}},
		},
	}
	require.NoError(t, persistence.WorkflowRepository().Save(t.Context(), wf))

	reg := registry.NewRegistry(slog.Default())
	reg.RegisterDefaultNodes(persistence)
	app := NewAPI(slog.Default(), persistence, reg, mocks.NewRecordingEventBus()).App()

	req := httptest.NewRequest(http.MethodGet, "/workflows", nil)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Tenant-ID", "tenant-1")
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var workflows []models.Workflow

	err = json.NewDecoder(resp.Body).Decode(&workflows)
	require.NoError(t, err)
	require.Len(t, workflows, 1)
	assert.Equal(t, "Lead Intake", workflows[0].Name)
}

func TestAPI_ExecuteRouteIsRegistered(t *testing.T) {
	tempDir := t.TempDir()
	app := setupTestApp(tempDir)

	req := httptest.NewRequest(http.MethodPost, "/workflows/missing/execute", nil)
	req.Header.Set("Accept", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
