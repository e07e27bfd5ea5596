package postgresql

// migrations returns the versioned schema migrations for the flowline
// database. Nodes and connections live inside the workflows metadata column;
// execution logs inside the executions execution_log column.
func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE IF NOT EXISTS workflows (
				id VARCHAR(255) PRIMARY KEY,
				tenant_id VARCHAR(255) NOT NULL,
				name VARCHAR(255) NOT NULL,
				trigger_type VARCHAR(100),
				is_active BOOLEAN NOT NULL DEFAULT FALSE,
				metadata JSONB,
				execution_count BIGINT NOT NULL DEFAULT 0,
				last_executed TIMESTAMP WITH TIME ZONE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_workflows_tenant ON workflows(tenant_id);

			CREATE TABLE IF NOT EXISTS executions (
				id VARCHAR(255) PRIMARY KEY,
				workflow_id VARCHAR(255) NOT NULL REFERENCES workflows(id),
				tenant_id VARCHAR(255) NOT NULL,
				status VARCHAR(50) NOT NULL,
				trigger_data JSONB,
				execution_log JSONB,
				error_message TEXT,
				started_at TIMESTAMP WITH TIME ZONE NOT NULL,
				completed_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX IF NOT EXISTS idx_executions_workflow ON executions(workflow_id, started_at DESC);
			CREATE INDEX IF NOT EXISTS idx_executions_status ON executions(status) WHERE status = 'running';
		`,
		2: `
			CREATE TABLE IF NOT EXISTS leads (
				id VARCHAR(255) PRIMARY KEY,
				tenant_id VARCHAR(255) NOT NULL,
				name VARCHAR(255),
				email VARCHAR(255),
				phone VARCHAR(100),
				company VARCHAR(255),
				status VARCHAR(100),
				source VARCHAR(100),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_leads_tenant_email ON leads(tenant_id, email);

			CREATE TABLE IF NOT EXISTS contacts (
				id VARCHAR(255) PRIMARY KEY,
				tenant_id VARCHAR(255) NOT NULL,
				first_name VARCHAR(255),
				last_name VARCHAR(255),
				email VARCHAR(255),
				phone VARCHAR(100),
				title VARCHAR(255),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_contacts_tenant_email ON contacts(tenant_id, email);

			CREATE TABLE IF NOT EXISTS activities (
				id VARCHAR(255) PRIMARY KEY,
				tenant_id VARCHAR(255) NOT NULL,
				subject TEXT NOT NULL,
				description TEXT,
				lead_id VARCHAR(255),
				contact_id VARCHAR(255),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_activities_tenant_lead ON activities(tenant_id, lead_id);
		`,
	}
}
