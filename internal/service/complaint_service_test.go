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

type mockComplaintRepo struct {
	complaints map[string]models.Complaint
	created    *models.Complaint
	lastFilter models.ComplaintFilter
}

func (m *mockComplaintRepo) Create(_ context.Context, complaint *models.Complaint) error {
	if m.complaints == nil {
		m.complaints = make(map[string]models.Complaint)
	}
	if complaint.ID == "" {
		complaint.ID = "new-complaint"
	}
	m.complaints[complaint.ID] = *complaint
	m.created = complaint
	return nil
}

func (m *mockComplaintRepo) FindByID(_ context.Context, id string) (*models.Complaint, error) {
	if c, ok := m.complaints[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockComplaintRepo) List(_ context.Context, filter models.ComplaintFilter) ([]models.Complaint, error) {
	m.lastFilter = filter
	var list []models.Complaint
	for _, c := range m.complaints {
		if filter.UserID != nil && c.UserID != *filter.UserID {
			continue
		}
		list = append(list, c)
	}
	return list, nil
}

func (m *mockComplaintRepo) Assign(_ context.Context, id string, worker *models.Worker) (*models.Complaint, error) {
	c, ok := m.complaints[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	workerID, workerName, workerPhone := worker.ID, worker.Name, worker.Phone
	c.Status = models.ComplaintAssigned
	c.AssignedWorkerID = &workerID
	c.AssignedWorkerName = &workerName
	c.AssignedWorkerPhone = &workerPhone
	m.complaints[id] = c
	return &c, nil
}

func (m *mockComplaintRepo) UpdateStatus(_ context.Context, id string, status models.ComplaintStatus) (*models.Complaint, error) {
	c, ok := m.complaints[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	c.Status = status
	m.complaints[id] = c
	return &c, nil
}

type mockWorkerReader struct {
	workers map[string]*models.Worker
}

func (m *mockWorkerReader) FindByID(_ context.Context, id string) (*models.Worker, error) {
	if w, ok := m.workers[id]; ok {
		return w, nil
	}
	return nil, sql.ErrNoRows
}

func newComplaintService(repo *mockComplaintRepo, workers *mockWorkerReader) *ComplaintService {
	if workers == nil {
		workers = &mockWorkerReader{}
	}
	return NewComplaintService(repo, workers, validator.New(), zap.NewNop())
}

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin}
}

func citizenClaims(userID string) *models.JWTClaims {
	return &models.JWTClaims{UserID: userID, Role: models.RoleUser}
}

func TestComplaintServiceCreateDefaultsToPending(t *testing.T) {
	repo := &mockComplaintRepo{}
	svc := newComplaintService(repo, nil)

	complaint, err := svc.Create(context.Background(), "u1", models.CreateComplaintRequest{
		Name:        "Overflowing bin",
		Location:    "5th Street",
		Description: "Bin has not been emptied in a week",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ComplaintPending, complaint.Status)
	assert.Equal(t, "u1", complaint.UserID)
	assert.Nil(t, complaint.AssignedWorkerID)
}

func TestComplaintServiceListScopesCitizens(t *testing.T) {
	repo := &mockComplaintRepo{complaints: map[string]models.Complaint{
		"c1": {ID: "c1", UserID: "u1"},
		"c2": {ID: "c2", UserID: "u2"},
	}}
	svc := newComplaintService(repo, nil)

	mine, err := svc.List(context.Background(), citizenClaims("u1"), nil)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "c1", mine[0].ID)

	all, err := svc.List(context.Background(), adminClaims(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Nil(t, repo.lastFilter.UserID)
}

func TestComplaintServiceAssignCopiesWorkerContact(t *testing.T) {
	repo := &mockComplaintRepo{complaints: map[string]models.Complaint{
		"c1": {ID: "c1", UserID: "u1", Status: models.ComplaintPending},
	}}
	workers := &mockWorkerReader{workers: map[string]*models.Worker{
		"w1": {ID: "w1", Name: "Alpha Recyclers", Phone: "555-0100"},
	}}
	svc := newComplaintService(repo, workers)

	complaint, err := svc.Assign(context.Background(), "c1", models.AssignComplaintRequest{WorkerID: "w1"})
	require.NoError(t, err)
	assert.Equal(t, models.ComplaintAssigned, complaint.Status)
	require.NotNil(t, complaint.AssignedWorkerPhone)
	assert.Equal(t, "555-0100", *complaint.AssignedWorkerPhone)
	require.NotNil(t, complaint.AssignedWorkerName)
	assert.Equal(t, "Alpha Recyclers", *complaint.AssignedWorkerName)

	// Completing it afterwards needs no further fields.
	done, err := svc.UpdateStatus(context.Background(), "c1", models.UpdateComplaintStatusRequest{Status: models.ComplaintCompleted})
	require.NoError(t, err)
	assert.Equal(t, models.ComplaintCompleted, done.Status)
}

func TestComplaintServiceReassignOverwritesWorker(t *testing.T) {
	workerID := "w1"
	repo := &mockComplaintRepo{complaints: map[string]models.Complaint{
		"c1": {ID: "c1", Status: models.ComplaintAssigned, AssignedWorkerID: &workerID},
	}}
	workers := &mockWorkerReader{workers: map[string]*models.Worker{
		"w2": {ID: "w2", Name: "Beta Waste Co", Phone: "555-0200"},
	}}
	svc := newComplaintService(repo, workers)

	complaint, err := svc.Assign(context.Background(), "c1", models.AssignComplaintRequest{WorkerID: "w2"})
	require.NoError(t, err)
	assert.Equal(t, models.ComplaintAssigned, complaint.Status)
	assert.Equal(t, "w2", *complaint.AssignedWorkerID)
}

func TestComplaintServiceAssignGuards(t *testing.T) {
	repo := &mockComplaintRepo{complaints: map[string]models.Complaint{
		"done": {ID: "done", Status: models.ComplaintCompleted},
	}}
	workers := &mockWorkerReader{workers: map[string]*models.Worker{"w1": {ID: "w1"}}}
	svc := newComplaintService(repo, workers)

	_, err := svc.Assign(context.Background(), "done", models.AssignComplaintRequest{WorkerID: "w1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	_, err = svc.Assign(context.Background(), "missing", models.AssignComplaintRequest{WorkerID: "w1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	repo.complaints["c1"] = models.Complaint{ID: "c1", Status: models.ComplaintPending}
	_, err = svc.Assign(context.Background(), "c1", models.AssignComplaintRequest{WorkerID: "ghost"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestComplaintServiceStatusOnlyAdvances(t *testing.T) {
	workerID := "w1"
	repo := &mockComplaintRepo{complaints: map[string]models.Complaint{
		"assigned": {ID: "assigned", Status: models.ComplaintAssigned, AssignedWorkerID: &workerID},
		"pending":  {ID: "pending", Status: models.ComplaintPending},
	}}
	svc := newComplaintService(repo, nil)

	// Backwards transition rejected.
	_, err := svc.UpdateStatus(context.Background(), "assigned", models.UpdateComplaintStatusRequest{Status: models.ComplaintPending})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)

	// Completing an unassigned complaint rejected.
	_, err = svc.UpdateStatus(context.Background(), "pending", models.UpdateComplaintStatusRequest{Status: models.ComplaintCompleted})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	// Forward transition allowed.
	complaint, err := svc.UpdateStatus(context.Background(), "assigned", models.UpdateComplaintStatusRequest{Status: models.ComplaintCompleted})
	require.NoError(t, err)
	assert.Equal(t, models.ComplaintCompleted, complaint.Status)
}

func TestComplaintServiceGetEnforcesOwnership(t *testing.T) {
	repo := &mockComplaintRepo{complaints: map[string]models.Complaint{
		"c1": {ID: "c1", UserID: "u1"},
	}}
	svc := newComplaintService(repo, nil)

	_, err := svc.Get(context.Background(), citizenClaims("u2"), "c1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	complaint, err := svc.Get(context.Background(), adminClaims(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", complaint.ID)
}
