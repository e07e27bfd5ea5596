package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hivecrm/flowline/pkg/models"
	"github.com/hivecrm/flowline/pkg/persistence"
)

// Searchable and updatable columns per entity. Field names arriving from
// workflow configs are checked against these before being interpolated as
// identifiers; values always travel as bind parameters.
var (
	leadColumns    = map[string]bool{"name": true, "email": true, "phone": true, "company": true, "status": true, "source": true}
	contactColumns = map[string]bool{"first_name": true, "last_name": true, "email": true, "phone": true, "title": true}
)

// LeadRepository handles lead database operations.
type LeadRepository struct {
	db *sql.DB
}

// NewLeadRepository creates a new lead repository.
func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// FindByField returns the tenant's first lead whose column matches the value
// exactly.
func (r *LeadRepository) FindByField(ctx context.Context, tenantID, field, value string) (*models.Lead, error) {
	if !leadColumns[field] {
		return nil, fmt.Errorf("lead field %q: %w", field, persistence.ErrUnknownField)
	}

	query := `
		SELECT id, tenant_id, name, email, phone, company, status, source, created_at, updated_at
		FROM leads
		WHERE tenant_id = $1 AND ` + field + ` = $2
		ORDER BY created_at
		LIMIT 1
	`

	lead, err := scanLead(r.db.QueryRowContext(ctx, query, tenantID, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrLeadNotFound
		}

		return nil, fmt.Errorf("failed to query lead: %w", err)
	}

	return lead, nil
}

// Create inserts a new lead.
func (r *LeadRepository) Create(ctx context.Context, lead *models.Lead) error {
	now := time.Now().UTC()
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = now
	}

	lead.UpdatedAt = now

	query := `
		INSERT INTO leads (id, tenant_id, name, email, phone, company, status, source, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		lead.ID, lead.TenantID, lead.Name, lead.Email, lead.Phone,
		lead.Company, lead.Status, lead.Source, lead.CreatedAt, lead.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert lead: %w", err)
	}

	return nil
}

// Update applies the given columns to the tenant's lead and returns the
// updated row.
func (r *LeadRepository) Update(ctx context.Context, tenantID, id string, fields map[string]any) (*models.Lead, error) {
	setClause, args, err := buildUpdate(leadColumns, "lead", fields)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE leads
		SET ` + setClause + `, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2
		RETURNING id, tenant_id, name, email, phone, company, status, source, created_at, updated_at
	`

	lead, err := scanLead(r.db.QueryRowContext(ctx, query, append([]any{tenantID, id}, args...)...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrLeadNotFound
		}

		return nil, fmt.Errorf("failed to update lead: %w", err)
	}

	return lead, nil
}

// ContactRepository handles contact database operations.
type ContactRepository struct {
	db *sql.DB
}

// NewContactRepository creates a new contact repository.
func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// FindByField returns the tenant's first contact whose column matches the
// value exactly.
func (r *ContactRepository) FindByField(ctx context.Context, tenantID, field, value string) (*models.Contact, error) {
	if !contactColumns[field] {
		return nil, fmt.Errorf("contact field %q: %w", field, persistence.ErrUnknownField)
	}

	query := `
		SELECT id, tenant_id, first_name, last_name, email, phone, title, created_at, updated_at
		FROM contacts
		WHERE tenant_id = $1 AND ` + field + ` = $2
		ORDER BY created_at
		LIMIT 1
	`

	contact, err := scanContact(r.db.QueryRowContext(ctx, query, tenantID, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrContactNotFound
		}

		return nil, fmt.Errorf("failed to query contact: %w", err)
	}

	return contact, nil
}

// Create inserts a new contact.
func (r *ContactRepository) Create(ctx context.Context, contact *models.Contact) error {
	now := time.Now().UTC()
	if contact.CreatedAt.IsZero() {
		contact.CreatedAt = now
	}

	contact.UpdatedAt = now

	query := `
		INSERT INTO contacts (id, tenant_id, first_name, last_name, email, phone, title, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		contact.ID, contact.TenantID, contact.FirstName, contact.LastName,
		contact.Email, contact.Phone, contact.Title, contact.CreatedAt, contact.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert contact: %w", err)
	}

	return nil
}

// Update applies the given columns to the tenant's contact and returns the
// updated row.
func (r *ContactRepository) Update(ctx context.Context, tenantID, id string, fields map[string]any) (*models.Contact, error) {
	setClause, args, err := buildUpdate(contactColumns, "contact", fields)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE contacts
		SET ` + setClause + `, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2
		RETURNING id, tenant_id, first_name, last_name, email, phone, title, created_at, updated_at
	`

	contact, err := scanContact(r.db.QueryRowContext(ctx, query, append([]any{tenantID, id}, args...)...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrContactNotFound
		}

		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	return contact, nil
}

// ActivityRepository handles activity database operations.
type ActivityRepository struct {
	db *sql.DB
}

// NewActivityRepository creates a new activity repository.
func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create inserts a new activity.
func (r *ActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO activities (id, tenant_id, subject, description, lead_id, contact_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		activity.ID, activity.TenantID, activity.Subject, activity.Description,
		nullableString(activity.LeadID), nullableString(activity.ContactID), activity.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}

	return nil
}

// ListByLead returns the tenant's activities linked to the lead, newest
// first.
func (r *ActivityRepository) ListByLead(ctx context.Context, tenantID, leadID string) ([]*models.Activity, error) {
	query := `
		SELECT id, tenant_id, subject, description, lead_id, contact_id, created_at
		FROM activities
		WHERE tenant_id = $1 AND lead_id = $2
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}

	defer func() {
		_ = rows.Close()
	}()

	activities := make([]*models.Activity, 0)

	for rows.Next() {
		var (
			activity    models.Activity
			description sql.NullString
			leadRef     sql.NullString
			contactRef  sql.NullString
		)

		err := rows.Scan(&activity.ID, &activity.TenantID, &activity.Subject,
			&description, &leadRef, &contactRef, &activity.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}

		activity.Description = description.String
		activity.LeadID = leadRef.String
		activity.ContactID = contactRef.String

		activities = append(activities, &activity)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating activities: %w", err)
	}

	return activities, nil
}

// buildUpdate renders a SET clause from the whitelisted fields. Placeholders
// start at $3; $1 and $2 are tenant and row id.
func buildUpdate(allowed map[string]bool, entity string, fields map[string]any) (string, []any, error) {
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("%s update: no fields given", entity)
	}

	assignments := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields))

	for field, value := range fields {
		if !allowed[field] {
			return "", nil, fmt.Errorf("%s field %q: %w", entity, field, persistence.ErrUnknownField)
		}

		assignments = append(assignments, field+" = $"+strconv.Itoa(len(args)+3))
		args = append(args, fmt.Sprintf("%v", value))
	}

	return strings.Join(assignments, ", "), args, nil
}

func scanLead(row rowScanner) (*models.Lead, error) {
	var (
		lead    models.Lead
		name    sql.NullString
		email   sql.NullString
		phone   sql.NullString
		company sql.NullString
		status  sql.NullString
		source  sql.NullString
	)

	err := row.Scan(&lead.ID, &lead.TenantID, &name, &email, &phone,
		&company, &status, &source, &lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		return nil, err
	}

	lead.Name = name.String
	lead.Email = email.String
	lead.Phone = phone.String
	lead.Company = company.String
	lead.Status = status.String
	lead.Source = source.String

	return &lead, nil
}

func scanContact(row rowScanner) (*models.Contact, error) {
	var (
		contact   models.Contact
		firstName sql.NullString
		lastName  sql.NullString
		email     sql.NullString
		phone     sql.NullString
		title     sql.NullString
	)

	err := row.Scan(&contact.ID, &contact.TenantID, &firstName, &lastName,
		&email, &phone, &title, &contact.CreatedAt, &contact.UpdatedAt)
	if err != nil {
		return nil, err
	}

	contact.FirstName = firstName.String
	contact.LastName = lastName.String
	contact.Email = email.String
	contact.Phone = phone.String
	contact.Title = title.String

	return &contact, nil
}
