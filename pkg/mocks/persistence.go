package mocks

import (
	"context"

	"github.com/hivecrm/flowline/pkg/persistence"
)

// MockPersistence bundles the repository mocks behind the persistence.Persistence
// interface so components taking the aggregate can be tested directly.
type MockPersistence struct {
	Workflows  *MockWorkflowRepository
	Executions *MockExecutionRepository
	Leads      *MockLeadRepository
	Contacts   *MockContactRepository
	Activities *MockActivityRepository
}

func NewMockPersistence() *MockPersistence {
	return &MockPersistence{
		Workflows:  &MockWorkflowRepository{},
		Executions: &MockExecutionRepository{},
		Leads:      &MockLeadRepository{},
		Contacts:   &MockContactRepository{},
		Activities: &MockActivityRepository{},
	}
}

func (p *MockPersistence) WorkflowRepository() persistence.WorkflowRepository {
	return p.Workflows
}

func (p *MockPersistence) ExecutionRepository() persistence.ExecutionRepository {
	return p.Executions
}

func (p *MockPersistence) LeadRepository() persistence.LeadRepository {
	return p.Leads
}

func (p *MockPersistence) ContactRepository() persistence.ContactRepository {
	return p.Contacts
}

func (p *MockPersistence) ActivityRepository() persistence.ActivityRepository {
	return p.Activities
}

func (p *MockPersistence) HealthCheck(_ context.Context) error {
	return nil
}

func (p *MockPersistence) Close(_ context.Context) error {
	return nil
}
