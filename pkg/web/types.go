package web

import "github.com/hivecrm/flowline/pkg/models"

// ExecuteWorkflowRequest is the body of POST /workflows/:id/execute. Payload
// and input_data are accepted as synonyms; payload wins when both are set.
type ExecuteWorkflowRequest struct {
	Payload   map[string]any `json:"payload"`
	InputData map[string]any `json:"input_data"`
}

// EffectivePayload returns the trigger payload, defaulting to an empty map.
func (r *ExecuteWorkflowRequest) EffectivePayload() map[string]any {
	if r.Payload != nil {
		return r.Payload
	}

	if r.InputData != nil {
		return r.InputData
	}

	return map[string]any{}
}

// ExecuteWorkflowResponse is the success-path response. Status reflects the
// run outcome; a failed run still returns HTTP 200.
type ExecuteWorkflowResponse struct {
	Status string           `json:"status"`
	Data   ExecutionOutcome `json:"data"`
}

// ExecutionOutcome carries the run's identity, full node log, and duration.
type ExecutionOutcome struct {
	ExecutionID  string                `json:"execution_id"`
	ExecutionLog []models.NodeLogEntry `json:"execution_log"`
	DurationMS   int64                 `json:"duration_ms"`
}

// RunErrorResponse is returned when infrastructure failed mid-run. The
// partial log accumulated before the failure is included.
type RunErrorResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    PartialData `json:"data"`
}

// PartialData holds whatever node log existed when the run aborted.
type PartialData struct {
	ExecutionLog []models.NodeLogEntry `json:"execution_log"`
}

// CreateWorkflowRequest is the body of POST /workflows.
type CreateWorkflowRequest struct {
	TenantID    string                 `json:"tenant_id"    validate:"required"`
	Name        string                 `json:"name"         validate:"required,min=3"`
	TriggerType string                 `json:"trigger_type"`
	IsActive    bool                   `json:"is_active"`
	Nodes       []*models.WorkflowNode `json:"nodes"`
	Connections []*models.Connection   `json:"connections"`
}
