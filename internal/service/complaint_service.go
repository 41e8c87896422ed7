package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ecocity/waste-api/internal/models"
	appErrors "github.com/ecocity/waste-api/pkg/errors"
)

type complaintRepository interface {
	Create(ctx context.Context, complaint *models.Complaint) error
	FindByID(ctx context.Context, id string) (*models.Complaint, error)
	List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, error)
	Assign(ctx context.Context, id string, worker *models.Worker) (*models.Complaint, error)
	UpdateStatus(ctx context.Context, id string, status models.ComplaintStatus) (*models.Complaint, error)
}

type complaintWorkerRepository interface {
	FindByID(ctx context.Context, id string) (*models.Worker, error)
}

// ComplaintService drives the complaint workflow.
type ComplaintService struct {
	complaints complaintRepository
	workers    complaintWorkerRepository
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewComplaintService constructs a ComplaintService instance.
func NewComplaintService(complaints complaintRepository, workers complaintWorkerRepository, validate *validator.Validate, logger *zap.Logger) *ComplaintService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ComplaintService{complaints: complaints, workers: workers, validator: validate, logger: logger}
}

// Create files a new complaint for the given user with status pending.
func (s *ComplaintService) Create(ctx context.Context, userID string, req models.CreateComplaintRequest) (*models.Complaint, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid complaint payload")
	}

	complaint := &models.Complaint{
		UserID:      userID,
		Name:        req.Name,
		Location:    req.Location,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Status:      models.ComplaintPending,
	}
	if err := s.complaints.Create(ctx, complaint); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create complaint")
	}

	s.logger.Info("complaint created",
		zap.String("complaint_id", complaint.ID),
		zap.String("user_id", userID))
	return complaint, nil
}

// List returns complaints visible to the session: admins see everything,
// citizens only their own rows.
func (s *ComplaintService) List(ctx context.Context, claims *models.JWTClaims, status *models.ComplaintStatus) ([]models.Complaint, error) {
	filter := models.ComplaintFilter{Status: status}
	if claims.Role != models.RoleAdmin {
		filter.UserID = &claims.UserID
	}

	complaints, err := s.complaints.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list complaints")
	}
	return complaints, nil
}

// Get returns a single complaint; citizens may only read their own.
func (s *ComplaintService) Get(ctx context.Context, claims *models.JWTClaims, id string) (*models.Complaint, error) {
	complaint, err := s.complaints.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load complaint")
	}

	if claims.Role != models.RoleAdmin && complaint.UserID != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "complaint belongs to another user")
	}
	return complaint, nil
}

// Assign copies the worker's current contact details onto the complaint and
// moves it to assigned. Re-assignment of an assigned complaint overwrites the
// worker fields; a completed complaint can no longer be assigned.
func (s *ComplaintService) Assign(ctx context.Context, id string, req models.AssignComplaintRequest) (*models.Complaint, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	complaint, err := s.complaints.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load complaint")
	}
	if complaint.Status == models.ComplaintCompleted {
		return nil, appErrors.Clone(appErrors.ErrConflict, "completed complaints cannot be reassigned")
	}

	worker, err := s.workers.FindByID(ctx, req.WorkerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "worker not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load worker")
	}

	updated, err := s.complaints.Assign(ctx, id, worker)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign complaint")
	}

	s.logger.Info("complaint assigned",
		zap.String("complaint_id", id),
		zap.String("worker_id", worker.ID))
	return updated, nil
}

// UpdateStatus transitions the workflow status. Transitions only advance
// forward, and completion requires an assigned worker.
func (s *ComplaintService) UpdateStatus(ctx context.Context, id string, req models.UpdateComplaintStatusRequest) (*models.Complaint, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}

	complaint, err := s.complaints.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load complaint")
	}

	if !complaint.Status.CanAdvanceTo(req.Status) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "")
	}
	if req.Status == models.ComplaintCompleted && complaint.AssignedWorkerID == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "complaint has no assigned worker")
	}

	updated, err := s.complaints.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update complaint status")
	}

	s.logger.Info("complaint status updated",
		zap.String("complaint_id", id),
		zap.String("status", string(req.Status)))
	return updated, nil
}
