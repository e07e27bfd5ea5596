package models

// Well-known variable names written by entity nodes and read by later nodes.
const (
	VarFoundLead    = "found_lead"
	VarFoundContact = "found_contact"
)

// RunContext is the in-memory, run-scoped state threaded through node
// executors during one walk. It is never persisted and never shared across
// runs. Payload is the immutable trigger payload; Variables accumulate the
// most recent entity fetched or mutated under well-known names.
type RunContext struct {
	ExecutionID string
	WorkflowID  string
	TenantID    string
	Payload     map[string]any
	Variables   map[string]any

	// LastConditionResult is transient branch state: written only by condition
	// nodes, read only by the runner's edge selection immediately afterward.
	LastConditionResult bool
}

// NewRunContext builds a run context with a non-nil payload and variable bag.
func NewRunContext(executionID, workflowID, tenantID string, payload map[string]any) *RunContext {
	if payload == nil {
		payload = make(map[string]any)
	}

	return &RunContext{
		ExecutionID: executionID,
		WorkflowID:  workflowID,
		TenantID:    tenantID,
		Payload:     payload,
		Variables:   make(map[string]any),
	}
}
