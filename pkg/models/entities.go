package models

import "time"

// Lead is a tenant-scoped CRM lead row.
type Lead struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Company   string    `json:"company,omitempty"`
	Status    string    `json:"status,omitempty"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Map returns the lead in the map form stored in run variables, so templates
// can descend into fields like found_lead.email.
func (l *Lead) Map() map[string]any {
	return map[string]any{
		"id":         l.ID,
		"tenant_id":  l.TenantID,
		"name":       l.Name,
		"email":      l.Email,
		"phone":      l.Phone,
		"company":    l.Company,
		"status":     l.Status,
		"source":     l.Source,
		"created_at": l.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at": l.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// Contact is a tenant-scoped CRM contact row.
type Contact struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Title     string    `json:"title,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Map returns the contact in the map form stored in run variables.
func (c *Contact) Map() map[string]any {
	return map[string]any{
		"id":         c.ID,
		"tenant_id":  c.TenantID,
		"first_name": c.FirstName,
		"last_name":  c.LastName,
		"email":      c.Email,
		"phone":      c.Phone,
		"title":      c.Title,
		"created_at": c.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at": c.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// Activity is a tenant-scoped CRM activity row, optionally linked to a lead or
// a contact.
type Activity struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	Subject     string    `json:"subject"`
	Description string    `json:"description,omitempty"`
	LeadID      string    `json:"lead_id,omitempty"`
	ContactID   string    `json:"contact_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Map returns the activity in the map form stored in node output.
func (a *Activity) Map() map[string]any {
	return map[string]any{
		"id":          a.ID,
		"tenant_id":   a.TenantID,
		"subject":     a.Subject,
		"description": a.Description,
		"lead_id":     a.LeadID,
		"contact_id":  a.ContactID,
		"created_at":  a.CreatedAt.UTC().Format(time.RFC3339),
	}
}
