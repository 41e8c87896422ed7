package memory

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ecocity/waste-api/internal/models"
)

// ComplaintRepository is the in-memory complaint store.
type ComplaintRepository struct {
	store *Store
}

// NewComplaintRepository creates a complaint repository backed by the shared store.
func NewComplaintRepository(store *Store) *ComplaintRepository {
	return &ComplaintRepository{store: store}
}

// Create inserts a new complaint with status pending.
func (r *ComplaintRepository) Create(_ context.Context, complaint *models.Complaint) error {
	if complaint.ID == "" {
		complaint.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if complaint.CreatedAt.IsZero() {
		complaint.CreatedAt = now
	}
	complaint.UpdatedAt = now
	if complaint.Status == "" {
		complaint.Status = models.ComplaintPending
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	clone := *complaint
	r.store.complaints[complaint.ID] = &clone
	return nil
}

// FindByID returns a complaint by identifier.
func (r *ComplaintRepository) FindByID(_ context.Context, id string) (*models.Complaint, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	c, ok := r.store.complaints[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *c
	return &clone, nil
}

// List returns complaints matching the filter, newest first.
func (r *ComplaintRepository) List(_ context.Context, filter models.ComplaintFilter) ([]models.Complaint, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var complaints []models.Complaint
	for _, c := range r.store.complaints {
		if filter.UserID != nil && c.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		complaints = append(complaints, *c)
	}

	sort.Slice(complaints, func(i, j int) bool {
		return complaints[i].CreatedAt.After(complaints[j].CreatedAt)
	})
	return complaints, nil
}

// Assign patches the complaint with the worker's current contact details and
// moves it to status assigned.
func (r *ComplaintRepository) Assign(_ context.Context, id string, worker *models.Worker) (*models.Complaint, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	c, ok := r.store.complaints[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	workerID, workerName, workerPhone := worker.ID, worker.Name, worker.Phone
	c.Status = models.ComplaintAssigned
	c.AssignedWorkerID = &workerID
	c.AssignedWorkerName = &workerName
	c.AssignedWorkerPhone = &workerPhone
	c.UpdatedAt = time.Now().UTC()

	clone := *c
	return &clone, nil
}

// UpdateStatus patches the status field and stamps updated_at.
func (r *ComplaintRepository) UpdateStatus(_ context.Context, id string, status models.ComplaintStatus) (*models.Complaint, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	c, ok := r.store.complaints[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	c.Status = status
	c.UpdatedAt = time.Now().UTC()

	clone := *c
	return &clone, nil
}
