package models

import "time"

// ExecutionStatus represents the lifecycle state of a single workflow run.
type ExecutionStatus string

const (
	ExecutionStatusRunning ExecutionStatus = "running"
	ExecutionStatusSuccess ExecutionStatus = "success"
	ExecutionStatusFailed  ExecutionStatus = "failed"
)

// NodeStatus defines the possible outcomes of a node execution.
type NodeStatus string

const (
	NodeStatusSuccess NodeStatus = "success"
	NodeStatusError   NodeStatus = "error"
)

// Execution is the durable audit record of one workflow run. It is inserted in
// running state before any node executes and finalized exactly once. A row left
// in running state (process death mid-walk) is reconciled by the sweeper.
type Execution struct {
	ID           string          `json:"id"`
	WorkflowID   string          `json:"workflow_id"`
	TenantID     string          `json:"tenant_id"`
	Status       ExecutionStatus `json:"status"`
	TriggerData  map[string]any  `json:"trigger_data,omitempty"`
	Log          []NodeLogEntry  `json:"execution_log"`
	ErrorMessage string          `json:"error_message,omitempty"`
	StartedAt    time.Time       `json:"started_at"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
}

// NodeLogEntry records the outcome of one visited node. Exactly one entry is
// written per node visited per run; aborted runs carry a trailing entry naming
// the abort reason.
type NodeLogEntry struct {
	NodeID    string         `json:"node_id"`
	NodeType  string         `json:"node_type"`
	Timestamp time.Time      `json:"timestamp"`
	Status    NodeStatus     `json:"status"`
	Output    map[string]any `json:"output,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// NodeResult is what a node executor hands back to the runner. Domain failures
// (lookup miss, missing mapping) come back as Status error; infrastructure
// failures are returned as Go errors alongside a nil result.
type NodeResult struct {
	Status NodeStatus     `json:"status"`
	Output map[string]any `json:"output,omitempty"`
	Error  string         `json:"error,omitempty"`
}
