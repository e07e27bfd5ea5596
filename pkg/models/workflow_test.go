package models

import "testing"

func TestWorkflow_StartNode_PrefersTrigger(t *testing.T) {
	workflow := &Workflow{
		Nodes: []*WorkflowNode{
			{ID: "lookup", Type: "find_lead"},
			{ID: "start", Type: "webhook_trigger"},
		},
	}

	start := workflow.StartNode()
	if start == nil || start.ID != "start" {
		t.Fatalf("expected trigger node to be selected as start, got %+v", start)
	}
}

func TestWorkflow_StartNode_FallsBackToFirstNode(t *testing.T) {
	workflow := &Workflow{
		Nodes: []*WorkflowNode{
			{ID: "lookup", Type: "find_lead"},
			{ID: "note", Type: "create_activity"},
		},
	}

	start := workflow.StartNode()
	if start == nil || start.ID != "lookup" {
		t.Fatalf("expected first node in definition order, got %+v", start)
	}
}

func TestWorkflow_StartNode_Empty(t *testing.T) {
	workflow := &Workflow{}
	if workflow.StartNode() != nil {
		t.Fatal("expected nil start node for empty workflow")
	}
}

func TestWorkflow_OutgoingConnections_PreservesDeclarationOrder(t *testing.T) {
	workflow := &Workflow{
		Connections: []*Connection{
			{From: "cond", To: "true-branch"},
			{From: "other", To: "elsewhere"},
			{From: "cond", To: "false-branch"},
		},
	}

	edges := workflow.OutgoingConnections("cond")
	if len(edges) != 2 {
		t.Fatalf("expected 2 outgoing edges, got %d", len(edges))
	}

	if edges[0].To != "true-branch" || edges[1].To != "false-branch" {
		t.Errorf("edges out of declaration order: %v, %v", edges[0].To, edges[1].To)
	}
}

func TestWorkflowNode_IsTriggerNode(t *testing.T) {
	cases := map[string]bool{
		"webhook_trigger": true,
		"form_trigger":    true,
		"manual_trigger":  true,
		"trigger":         true,
		"find_lead":       false,
		"condition":       false,
	}

	for nodeType, want := range cases {
		node := &WorkflowNode{Type: nodeType}
		if node.IsTriggerNode() != want {
			t.Errorf("IsTriggerNode(%q) = %v, want %v", nodeType, !want, want)
		}
	}
}
