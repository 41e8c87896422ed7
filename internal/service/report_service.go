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

type reportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	FindByID(ctx context.Context, id string) (*models.Report, error)
	List(ctx context.Context, filter models.ReportFilter) ([]models.Report, error)
	UpdateStatus(ctx context.Context, id string, status models.ReportStatus) (*models.Report, error)
}

type reportComplaintRepository interface {
	FindByID(ctx context.Context, id string) (*models.Complaint, error)
}

// ReportService drives the misconduct report workflow.
type ReportService struct {
	reports    reportRepository
	complaints reportComplaintRepository
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewReportService constructs a ReportService instance.
func NewReportService(reports reportRepository, complaints reportComplaintRepository, validate *validator.Validate, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ReportService{reports: reports, complaints: complaints, validator: validate, logger: logger}
}

// Create files a misconduct report. The referenced complaint must exist and
// be in assigned status, since the report is against the worker currently on
// the job. Pending complaints have nobody to report; completed ones are
// closed.
func (s *ReportService) Create(ctx context.Context, userID string, req models.CreateReportRequest) (*models.Report, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report payload")
	}

	complaint, err := s.complaints.FindByID(ctx, req.ComplaintID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "referenced complaint not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load complaint")
	}
	if complaint.Status != models.ComplaintAssigned || complaint.AssignedWorkerID == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "complaint is not assigned to a worker")
	}

	report := &models.Report{
		UserID:      userID,
		ComplaintID: req.ComplaintID,
		Description: req.Description,
		Status:      models.ReportPending,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create report")
	}

	s.logger.Info("report created",
		zap.String("report_id", report.ID),
		zap.String("complaint_id", req.ComplaintID))
	return report, nil
}

// List returns reports visible to the session: admins see everything,
// citizens only their own rows.
func (s *ReportService) List(ctx context.Context, claims *models.JWTClaims, status *models.ReportStatus) ([]models.Report, error) {
	filter := models.ReportFilter{Status: status}
	if claims.Role != models.RoleAdmin {
		filter.UserID = &claims.UserID
	}

	reports, err := s.reports.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reports")
	}
	return reports, nil
}

// UpdateStatus advances the review status. Reviewed may be skipped, but the
// status never moves backwards. Resolving a report never touches the
// underlying complaint.
func (s *ReportService) UpdateStatus(ctx context.Context, id string, req models.UpdateReportStatusRequest) (*models.Report, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}

	report, err := s.reports.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report")
	}

	if !report.Status.CanAdvanceTo(req.Status) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "")
	}

	updated, err := s.reports.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update report status")
	}

	s.logger.Info("report status updated",
		zap.String("report_id", id),
		zap.String("status", string(req.Status)))
	return updated, nil
}
