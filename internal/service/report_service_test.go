package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ecocity/waste-api/internal/models"
	appErrors "github.com/ecocity/waste-api/pkg/errors"
)

type mockReportRepo struct {
	reports map[string]models.Report
	created *models.Report
}

func (m *mockReportRepo) Create(_ context.Context, report *models.Report) error {
	if m.reports == nil {
		m.reports = make(map[string]models.Report)
	}
	if report.ID == "" {
		report.ID = "new-report"
	}
	m.reports[report.ID] = *report
	m.created = report
	return nil
}

func (m *mockReportRepo) FindByID(_ context.Context, id string) (*models.Report, error) {
	if r, ok := m.reports[id]; ok {
		return &r, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockReportRepo) List(_ context.Context, filter models.ReportFilter) ([]models.Report, error) {
	var list []models.Report
	for _, r := range m.reports {
		if filter.UserID != nil && r.UserID != *filter.UserID {
			continue
		}
		list = append(list, r)
	}
	return list, nil
}

func (m *mockReportRepo) UpdateStatus(_ context.Context, id string, status models.ReportStatus) (*models.Report, error) {
	r, ok := m.reports[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	r.Status = status
	m.reports[id] = r
	return &r, nil
}

type mockComplaintReader struct {
	complaints map[string]*models.Complaint
}

func (m *mockComplaintReader) FindByID(_ context.Context, id string) (*models.Complaint, error) {
	if c, ok := m.complaints[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

func newReportService(repo *mockReportRepo, complaints *mockComplaintReader) *ReportService {
	if complaints == nil {
		complaints = &mockComplaintReader{}
	}
	return NewReportService(repo, complaints, validator.New(), zap.NewNop())
}

func TestReportServiceCreateRequiresAssignedComplaint(t *testing.T) {
	workerID := "w1"
	complaints := &mockComplaintReader{complaints: map[string]*models.Complaint{
		"assigned":   {ID: "assigned", Status: models.ComplaintAssigned, AssignedWorkerID: &workerID},
		"unassigned": {ID: "unassigned", Status: models.ComplaintPending},
		"completed":  {ID: "completed", Status: models.ComplaintCompleted, AssignedWorkerID: &workerID},
	}}
	repo := &mockReportRepo{}
	svc := newReportService(repo, complaints)

	// Dangling reference rejected.
	_, err := svc.Create(context.Background(), "u1", models.CreateReportRequest{ComplaintID: "ghost", Description: "worker skipped pickup"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	// No assigned worker means nobody to report.
	_, err = svc.Create(context.Background(), "u1", models.CreateReportRequest{ComplaintID: "unassigned", Description: "worker skipped pickup"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	// A completed complaint keeps its worker fields but is closed to reports.
	_, err = svc.Create(context.Background(), "u1", models.CreateReportRequest{ComplaintID: "completed", Description: "worker skipped pickup"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	report, err := svc.Create(context.Background(), "u1", models.CreateReportRequest{ComplaintID: "assigned", Description: "worker skipped pickup"})
	require.NoError(t, err)
	assert.Equal(t, models.ReportPending, report.Status)
	assert.Equal(t, "assigned", report.ComplaintID)
}

func TestReportServiceListScopesCitizens(t *testing.T) {
	repo := &mockReportRepo{reports: map[string]models.Report{
		"r1": {ID: "r1", UserID: "u1"},
		"r2": {ID: "r2", UserID: "u2"},
	}}
	svc := newReportService(repo, nil)

	mine, err := svc.List(context.Background(), citizenClaims("u1"), nil)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "r1", mine[0].ID)

	all, err := svc.List(context.Background(), adminClaims(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestReportServiceStatusOnlyAdvances(t *testing.T) {
	repo := &mockReportRepo{reports: map[string]models.Report{
		"pending":  {ID: "pending", Status: models.ReportPending},
		"resolved": {ID: "resolved", Status: models.ReportResolved},
	}}
	svc := newReportService(repo, nil)

	// Reviewed may be skipped.
	report, err := svc.UpdateStatus(context.Background(), "pending", models.UpdateReportStatusRequest{Status: models.ReportResolved})
	require.NoError(t, err)
	assert.Equal(t, models.ReportResolved, report.Status)

	_, err = svc.UpdateStatus(context.Background(), "resolved", models.UpdateReportStatusRequest{Status: models.ReportPending})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
}
