package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/hivecrm/flowline/pkg/models"
	"github.com/hivecrm/flowline/pkg/persistence"
)

// The entity repositories store one JSON file per row under <root>/leads/,
// <root>/contacts/, and <root>/activities/. Lookups scan the directory;
// acceptable for the dev store.

// LeadRepository is the file-backed lead store.
type LeadRepository struct {
	root string
}

// NewLeadRepository creates a new lead repository.
func NewLeadRepository(root string) *LeadRepository {
	return &LeadRepository{root: root}
}

var leadFields = map[string]bool{
	"name": true, "email": true, "phone": true,
	"company": true, "status": true, "source": true,
}

// FindByField returns the tenant's first lead whose field matches the value
// exactly.
func (lr *LeadRepository) FindByField(_ context.Context, tenantID, field, value string) (*models.Lead, error) {
	if !leadFields[field] {
		return nil, fmt.Errorf("lead field %q: %w", field, persistence.ErrUnknownField)
	}

	var found *models.Lead

	err := scanEntities(lr.root, "leads", func(lead *models.Lead) bool {
		if lead.TenantID == tenantID && fmt.Sprintf("%v", lead.Map()[field]) == value {
			found = lead

			return false
		}

		return true
	})
	if err != nil {
		return nil, err
	}

	if found == nil {
		return nil, persistence.ErrLeadNotFound
	}

	return found, nil
}

// Create persists a new lead.
func (lr *LeadRepository) Create(_ context.Context, lead *models.Lead) error {
	now := time.Now().UTC()
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = now
	}

	lead.UpdatedAt = now

	return writeEntity(lr.root, "leads", lead.ID, lead)
}

// Update applies the given fields to the tenant's lead and returns the
// updated row.
func (lr *LeadRepository) Update(_ context.Context, tenantID, id string, fields map[string]any) (*models.Lead, error) {
	lead, err := readEntity[models.Lead](lr.root, "leads", id)
	if err != nil {
		return nil, err
	}

	if lead == nil || lead.TenantID != tenantID {
		return nil, persistence.ErrLeadNotFound
	}

	for field, value := range fields {
		text := fmt.Sprintf("%v", value)

		switch field {
		case "name":
			lead.Name = text
		case "email":
			lead.Email = text
		case "phone":
			lead.Phone = text
		case "company":
			lead.Company = text
		case "status":
			lead.Status = text
		case "source":
			lead.Source = text
		default:
			return nil, fmt.Errorf("lead field %q: %w", field, persistence.ErrUnknownField)
		}
	}

	lead.UpdatedAt = time.Now().UTC()

	if err := writeEntity(lr.root, "leads", lead.ID, lead); err != nil {
		return nil, err
	}

	return lead, nil
}

// ContactRepository is the file-backed contact store.
type ContactRepository struct {
	root string
}

// NewContactRepository creates a new contact repository.
func NewContactRepository(root string) *ContactRepository {
	return &ContactRepository{root: root}
}

var contactFields = map[string]bool{
	"first_name": true, "last_name": true, "email": true,
	"phone": true, "title": true,
}

// FindByField returns the tenant's first contact whose field matches the
// value exactly.
func (cr *ContactRepository) FindByField(_ context.Context, tenantID, field, value string) (*models.Contact, error) {
	if !contactFields[field] {
		return nil, fmt.Errorf("contact field %q: %w", field, persistence.ErrUnknownField)
	}

	var found *models.Contact

	err := scanEntities(cr.root, "contacts", func(contact *models.Contact) bool {
		if contact.TenantID == tenantID && fmt.Sprintf("%v", contact.Map()[field]) == value {
			found = contact

			return false
		}

		return true
	})
	if err != nil {
		return nil, err
	}

	if found == nil {
		return nil, persistence.ErrContactNotFound
	}

	return found, nil
}

// Create persists a new contact.
func (cr *ContactRepository) Create(_ context.Context, contact *models.Contact) error {
	now := time.Now().UTC()
	if contact.CreatedAt.IsZero() {
		contact.CreatedAt = now
	}

	contact.UpdatedAt = now

	return writeEntity(cr.root, "contacts", contact.ID, contact)
}

// Update applies the given fields to the tenant's contact and returns the
// updated row.
func (cr *ContactRepository) Update(_ context.Context, tenantID, id string, fields map[string]any) (*models.Contact, error) {
	contact, err := readEntity[models.Contact](cr.root, "contacts", id)
	if err != nil {
		return nil, err
	}

	if contact == nil || contact.TenantID != tenantID {
		return nil, persistence.ErrContactNotFound
	}

	for field, value := range fields {
		text := fmt.Sprintf("%v", value)

		switch field {
		case "first_name":
			contact.FirstName = text
		case "last_name":
			contact.LastName = text
		case "email":
			contact.Email = text
		case "phone":
			contact.Phone = text
		case "title":
			contact.Title = text
		default:
			return nil, fmt.Errorf("contact field %q: %w", field, persistence.ErrUnknownField)
		}
	}

	contact.UpdatedAt = time.Now().UTC()

	if err := writeEntity(cr.root, "contacts", contact.ID, contact); err != nil {
		return nil, err
	}

	return contact, nil
}

// ActivityRepository is the file-backed activity store.
type ActivityRepository struct {
	root string
}

// NewActivityRepository creates a new activity repository.
func NewActivityRepository(root string) *ActivityRepository {
	return &ActivityRepository{root: root}
}

// Create persists a new activity.
func (ar *ActivityRepository) Create(_ context.Context, activity *models.Activity) error {
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}

	return writeEntity(ar.root, "activities", activity.ID, activity)
}

// ListByLead returns the tenant's activities linked to the lead, newest
// first.
func (ar *ActivityRepository) ListByLead(_ context.Context, tenantID, leadID string) ([]*models.Activity, error) {
	activities := make([]*models.Activity, 0)

	err := scanEntities(ar.root, "activities", func(activity *models.Activity) bool {
		if activity.TenantID == tenantID && activity.LeadID == leadID {
			activities = append(activities, activity)
		}

		return true
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(activities, func(i, j int) bool {
		return activities[i].CreatedAt.After(activities[j].CreatedAt)
	})

	return activities, nil
}

func readEntity[T any](root, kind, id string) (*T, error) {
	filePath := filepath.Clean(path.Join(root, kind, id+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to fetch %s %s: %w", kind, id, err)
	}

	var entity T

	if err := json.Unmarshal(body, &entity); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s %s: %w", kind, id, err)
	}

	return &entity, nil
}

func writeEntity(root, kind, id string, entity any) error {
	if err := os.MkdirAll(path.Join(root, kind), 0750); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", kind, err)
	}

	data, err := json.MarshalIndent(entity, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s %s: %w", kind, id, err)
	}

	return os.WriteFile(path.Join(root, kind, id+".json"), data, 0600)
}

// scanEntities walks every JSON file of the kind, stopping early when visit
// returns false.
func scanEntities[T any](root, kind string, visit func(*T) bool) error {
	dir := os.DirFS(path.Join(root, kind))

	jsonFiles, err := fs.Glob(dir, "*.json")
	if err != nil {
		return fmt.Errorf("failed to list %s files: %w", kind, err)
	}

	for _, file := range jsonFiles {
		entity, err := readEntity[T](root, kind, file[:len(file)-5])
		if err != nil {
			return err
		}

		if entity == nil {
			continue
		}

		if !visit(entity) {
			return nil
		}
	}

	return nil
}
