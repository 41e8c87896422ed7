package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ecocity/waste-api/internal/middleware"
	"github.com/ecocity/waste-api/internal/models"
	"github.com/ecocity/waste-api/internal/service"
	"github.com/ecocity/waste-api/pkg/response"
)

type complaintRepoStub struct {
	complaints map[string]models.Complaint
}

func (m *complaintRepoStub) Create(_ context.Context, complaint *models.Complaint) error {
	if m.complaints == nil {
		m.complaints = make(map[string]models.Complaint)
	}
	if complaint.ID == "" {
		complaint.ID = "c-new"
	}
	m.complaints[complaint.ID] = *complaint
	return nil
}

func (m *complaintRepoStub) FindByID(_ context.Context, id string) (*models.Complaint, error) {
	if c, ok := m.complaints[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *complaintRepoStub) List(_ context.Context, filter models.ComplaintFilter) ([]models.Complaint, error) {
	var list []models.Complaint
	for _, c := range m.complaints {
		if filter.UserID != nil && c.UserID != *filter.UserID {
			continue
		}
		list = append(list, c)
	}
	return list, nil
}

func (m *complaintRepoStub) Assign(_ context.Context, id string, worker *models.Worker) (*models.Complaint, error) {
	c := m.complaints[id]
	workerID := worker.ID
	c.Status = models.ComplaintAssigned
	c.AssignedWorkerID = &workerID
	m.complaints[id] = c
	return &c, nil
}

func (m *complaintRepoStub) UpdateStatus(_ context.Context, id string, status models.ComplaintStatus) (*models.Complaint, error) {
	c := m.complaints[id]
	c.Status = status
	m.complaints[id] = c
	return &c, nil
}

type workerReaderStub struct {
	workers map[string]*models.Worker
}

func (m *workerReaderStub) FindByID(_ context.Context, id string) (*models.Worker, error) {
	if w, ok := m.workers[id]; ok {
		return w, nil
	}
	return nil, sql.ErrNoRows
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func newComplaintHandler(repo *complaintRepoStub, workers *workerReaderStub) *ComplaintHandler {
	if workers == nil {
		workers = &workerReaderStub{}
	}
	svc := service.NewComplaintService(repo, workers, validator.New(), zap.NewNop())
	return NewComplaintHandler(svc)
}

func TestComplaintHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &complaintRepoStub{}
	handler := newComplaintHandler(repo, nil)

	payload, _ := json.Marshal(models.CreateComplaintRequest{
		Name:        "Overflowing bin",
		Location:    "5th Street",
		Description: "Bin has not been emptied in a week",
	})
	c, w := newGinContext(http.MethodPost, "/api/complaints", payload)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1", Role: models.RoleUser})

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Data)
	assert.Len(t, repo.complaints, 1)
}

func TestComplaintHandlerCreateInvalidPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newComplaintHandler(&complaintRepoStub{}, nil)

	c, w := newGinContext(http.MethodPost, "/api/complaints", []byte(`{"name":""}`))
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1", Role: models.RoleUser})

	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestComplaintHandlerListScopesCitizens(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &complaintRepoStub{complaints: map[string]models.Complaint{
		"c1": {ID: "c1", UserID: "u1"},
		"c2": {ID: "c2", UserID: "u2"},
	}}
	handler := newComplaintHandler(repo, nil)

	c, w := newGinContext(http.MethodGet, "/api/complaints", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1", Role: models.RoleUser})

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []models.Complaint `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "c1", envelope.Data[0].ID)
}

func TestComplaintHandlerAssignConflictOnCompleted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &complaintRepoStub{complaints: map[string]models.Complaint{
		"done": {ID: "done", Status: models.ComplaintCompleted},
	}}
	workers := &workerReaderStub{workers: map[string]*models.Worker{"w1": {ID: "w1"}}}
	handler := newComplaintHandler(repo, workers)

	payload, _ := json.Marshal(models.AssignComplaintRequest{WorkerID: "w1"})
	c, w := newGinContext(http.MethodPut, "/api/complaints/done/assign", payload)
	c.Params = gin.Params{{Key: "id", Value: "done"}}

	handler.Assign(c)
	require.Equal(t, http.StatusConflict, w.Code)
}
