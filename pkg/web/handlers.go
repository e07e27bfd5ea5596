// Package web provides the HTTP surface for running workflows and reading
// execution records.
package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/hivecrm/flowline/pkg/models"
	"github.com/hivecrm/flowline/pkg/persistence"
	"github.com/hivecrm/flowline/pkg/workflow"
)

// TenantHeader scopes list and read endpoints to one tenant.
const TenantHeader = "X-Tenant-ID"

type APIHandlers struct {
	persistence persistence.Persistence
	runner      *workflow.Runner
	validator   *validator.Validate
}

func NewAPIHandlers(p persistence.Persistence, runner *workflow.Runner, validator *validator.Validate) *APIHandlers {
	return &APIHandlers{
		persistence: p,
		runner:      runner,
		validator:   validator,
	}
}

// ExecuteWorkflow runs a workflow synchronously against a trigger payload.
// The HTTP status distinguishes precondition and infrastructure problems; a
// domain-failed run is still HTTP 200 with status "failed" in the body.
func (h *APIHandlers) ExecuteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req ExecuteWorkflowRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	result, err := h.runner.Run(c.Context(), id, req.EffectivePayload())
	if err != nil {
		switch {
		case persistence.IsWorkflowNotFound(err):
			return notFound(c, "Workflow not found")
		case persistence.IsWorkflowInactive(err):
			return badRequest(c, "Workflow is not active")
		case persistence.IsWorkflowEmpty(err):
			return internalError(c, err)
		}

		// Infrastructure failure mid-run: return the partial log alongside
		// the error message.
		response := RunErrorResponse{
			Status:  "error",
			Message: err.Error(),
		}
		if result != nil {
			response.Data.ExecutionLog = result.Log
		}

		return c.Status(fiber.StatusInternalServerError).JSON(response)
	}

	return c.JSON(ExecuteWorkflowResponse{
		Status: string(result.Status),
		Data: ExecutionOutcome{
			ExecutionID:  result.ExecutionID,
			ExecutionLog: result.Log,
			DurationMS:   result.Duration.Milliseconds(),
		},
	})
}

// GetWorkflows lists the requesting tenant's workflows.
func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	tenantID := c.Get(TenantHeader)
	if tenantID == "" {
		return badRequest(c, TenantHeader+" header is required")
	}

	workflows, err := h.persistence.WorkflowRepository().GetAll(c.Context(), tenantID)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"workflows": workflows})
}

// GetWorkflow returns one workflow definition.
func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	wf, err := h.persistence.WorkflowRepository().GetByID(c.Context(), id)
	if err != nil {
		return internalError(c, err)
	}

	if wf == nil || !tenantMatches(c, wf.TenantID) {
		return notFound(c, "Workflow not found")
	}

	return c.JSON(wf)
}

// CreateWorkflow stores a new workflow definition.
func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req CreateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	wf := &models.Workflow{
		ID:          uuid.New().String(),
		TenantID:    req.TenantID,
		Name:        req.Name,
		TriggerType: req.TriggerType,
		IsActive:    req.IsActive,
		Nodes:       req.Nodes,
		Connections: req.Connections,
	}

	if err := h.persistence.WorkflowRepository().Save(c.Context(), wf); err != nil {
		return internalError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(wf)
}

// GetExecution returns one execution record with its full node log.
func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Execution ID is required")
	}

	execution, err := h.persistence.ExecutionRepository().GetByID(c.Context(), id)
	if err != nil {
		return internalError(c, err)
	}

	if execution == nil || !tenantMatches(c, execution.TenantID) {
		return notFound(c, "Execution not found")
	}

	return c.JSON(execution)
}

// GetWorkflowExecutions lists a workflow's execution records, newest first.
func (h *APIHandlers) GetWorkflowExecutions(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	wf, err := h.persistence.WorkflowRepository().GetByID(c.Context(), id)
	if err != nil {
		return internalError(c, err)
	}

	if wf == nil || !tenantMatches(c, wf.TenantID) {
		return notFound(c, "Workflow not found")
	}

	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			return badRequest(c, "Invalid limit parameter")
		}
	}

	executions, err := h.persistence.ExecutionRepository().ListByWorkflow(c.Context(), id, limit)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"executions": executions})
}

// HealthCheck reports store reachability.
func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	status := "healthy"
	httpStatus := http.StatusOK

	if err := h.persistence.HealthCheck(c.Context()); err != nil {
		status = "unhealthy"
		httpStatus = http.StatusInternalServerError
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":    status,
		"timestamp": time.Now().UTC(),
	})
}

// tenantMatches enforces the tenant header when present. Requests without
// the header are trusted, for deployments fronted by a gateway doing tenant
// routing.
func tenantMatches(c fiber.Ctx, tenantID string) bool {
	header := c.Get(TenantHeader)

	return header == "" || header == tenantID
}
