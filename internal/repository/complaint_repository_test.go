package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecocity/waste-api/internal/models"
)

func complaintRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "name", "location", "description", "image_url", "status", "assigned_worker_id", "assigned_worker_name", "assigned_worker_phone", "created_at", "updated_at"})
}

func TestComplaintRepositoryCreateDefaults(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewComplaintRepository(db)

	mock.ExpectExec("INSERT INTO complaints").
		WillReturnResult(sqlmock.NewResult(0, 1))

	complaint := &models.Complaint{UserID: "u1", Name: "Overflowing bin", Location: "5th Street", Description: "Bin full"}
	require.NoError(t, repo.Create(context.Background(), complaint))
	assert.NotEmpty(t, complaint.ID)
	assert.Equal(t, models.ComplaintPending, complaint.Status)
	assert.False(t, complaint.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintRepositoryAssignDenormalizesWorker(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewComplaintRepository(db)

	mock.ExpectQuery("UPDATE complaints").
		WithArgs("c1", string(models.ComplaintAssigned), "w1", "Alpha Recyclers", "555-0100", sqlmock.AnyArg()).
		WillReturnRows(complaintRows().
			AddRow("c1", "u1", "Overflowing bin", "5th Street", "Bin full", nil, "assigned", "w1", "Alpha Recyclers", "555-0100", time.Now(), time.Now()))

	worker := &models.Worker{ID: "w1", Name: "Alpha Recyclers", Phone: "555-0100"}
	complaint, err := repo.Assign(context.Background(), "c1", worker)
	require.NoError(t, err)
	assert.Equal(t, models.ComplaintAssigned, complaint.Status)
	require.NotNil(t, complaint.AssignedWorkerPhone)
	assert.Equal(t, "555-0100", *complaint.AssignedWorkerPhone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintRepositoryListByUserAndStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewComplaintRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, name, location, description, image_url, status, assigned_worker_id, assigned_worker_name, assigned_worker_phone, created_at, updated_at FROM complaints WHERE 1=1 AND user_id = $1 AND status = $2 ORDER BY created_at DESC")).
		WithArgs("u1", "pending").
		WillReturnRows(complaintRows().
			AddRow("c1", "u1", "Overflowing bin", "5th Street", "Bin full", nil, "pending", nil, nil, nil, time.Now(), time.Now()))

	userID := "u1"
	status := models.ComplaintPending
	complaints, err := repo.List(context.Background(), models.ComplaintFilter{UserID: &userID, Status: &status})
	require.NoError(t, err)
	require.Len(t, complaints, 1)
	assert.Equal(t, "c1", complaints[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewComplaintRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE complaints SET status = $2, updated_at = $3 WHERE id = $1 RETURNING")).
		WithArgs("c1", string(models.ComplaintCompleted), sqlmock.AnyArg()).
		WillReturnRows(complaintRows().
			AddRow("c1", "u1", "Overflowing bin", "5th Street", "Bin full", nil, "completed", "w1", "Alpha Recyclers", "555-0100", time.Now(), time.Now()))

	complaint, err := repo.UpdateStatus(context.Background(), "c1", models.ComplaintCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.ComplaintCompleted, complaint.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
