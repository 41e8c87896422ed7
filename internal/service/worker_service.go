package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ecocity/waste-api/internal/models"
	appErrors "github.com/ecocity/waste-api/pkg/errors"
)

type workerRepository interface {
	List(ctx context.Context) ([]models.Worker, error)
	Create(ctx context.Context, worker *models.Worker) error
}

// WorkerService maintains the collector directory.
type WorkerService struct {
	workers   workerRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewWorkerService constructs a WorkerService instance.
func NewWorkerService(workers workerRepository, validate *validator.Validate, logger *zap.Logger) *WorkerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &WorkerService{workers: workers, validator: validate, logger: logger}
}

// List returns the directory with per-material prices.
func (s *WorkerService) List(ctx context.Context) ([]models.Worker, error) {
	workers, err := s.workers.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list workers")
	}
	return workers, nil
}

// Create adds a collector to the directory.
func (s *WorkerService) Create(ctx context.Context, req models.CreateWorkerRequest) (*models.Worker, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid worker payload")
	}

	worker := &models.Worker{
		Name:         req.Name,
		Phone:        req.Phone,
		Area:         req.Area,
		PriceSteel:   req.PriceSteel,
		PricePlastic: req.PricePlastic,
		PricePaper:   req.PricePaper,
	}
	if err := s.workers.Create(ctx, worker); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create worker")
	}

	s.logger.Info("worker created", zap.String("worker_id", worker.ID))
	return worker, nil
}
