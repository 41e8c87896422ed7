package memory

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ecocity/waste-api/internal/models"
)

// ReportRepository is the in-memory misconduct report store.
type ReportRepository struct {
	store *Store
}

// NewReportRepository creates a report repository backed by the shared store.
func NewReportRepository(store *Store) *ReportRepository {
	return &ReportRepository{store: store}
}

// Create inserts a new report with status pending.
func (r *ReportRepository) Create(_ context.Context, report *models.Report) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if report.CreatedAt.IsZero() {
		report.CreatedAt = now
	}
	report.UpdatedAt = now
	if report.Status == "" {
		report.Status = models.ReportPending
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	clone := *report
	r.store.reports[report.ID] = &clone
	return nil
}

// FindByID returns a report by identifier.
func (r *ReportRepository) FindByID(_ context.Context, id string) (*models.Report, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rep, ok := r.store.reports[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *rep
	return &clone, nil
}

// List returns reports matching the filter, newest first.
func (r *ReportRepository) List(_ context.Context, filter models.ReportFilter) ([]models.Report, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var reports []models.Report
	for _, rep := range r.store.reports {
		if filter.UserID != nil && rep.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && rep.Status != *filter.Status {
			continue
		}
		reports = append(reports, *rep)
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
	return reports, nil
}

// UpdateStatus patches the review status and stamps updated_at.
func (r *ReportRepository) UpdateStatus(_ context.Context, id string, status models.ReportStatus) (*models.Report, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rep, ok := r.store.reports[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	rep.Status = status
	rep.UpdatedAt = time.Now().UTC()

	clone := *rep
	return &clone, nil
}
