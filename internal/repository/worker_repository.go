package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ecocity/waste-api/internal/models"
)

// WorkerRepository provides database access for the collector directory.
type WorkerRepository struct {
	db *sqlx.DB
}

// NewWorkerRepository creates a new instance of WorkerRepository.
func NewWorkerRepository(db *sqlx.DB) *WorkerRepository {
	return &WorkerRepository{db: db}
}

const workerColumns = `id, name, phone, area, price_steel, price_plastic, price_paper, created_at`

// List returns the full worker directory ordered by name.
func (r *WorkerRepository) List(ctx context.Context) ([]models.Worker, error) {
	query := fmt.Sprintf(`SELECT %s FROM workers ORDER BY name ASC`, workerColumns)
	var workers []models.Worker
	if err := r.db.SelectContext(ctx, &workers, query); err != nil {
		return nil, fmt.Errorf("list workers: %w", err)
	}
	return workers, nil
}

// FindByID returns a worker by identifier.
func (r *WorkerRepository) FindByID(ctx context.Context, id string) (*models.Worker, error) {
	query := fmt.Sprintf(`SELECT %s FROM workers WHERE id = $1 LIMIT 1`, workerColumns)
	var worker models.Worker
	if err := r.db.GetContext(ctx, &worker, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find worker by id: %w", err)
	}
	return &worker, nil
}

// Create inserts a new directory entry.
func (r *WorkerRepository) Create(ctx context.Context, worker *models.Worker) error {
	if worker.ID == "" {
		worker.ID = uuid.NewString()
	}
	if worker.CreatedAt.IsZero() {
		worker.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO workers (id, name, phone, area, price_steel, price_plastic, price_paper, created_at)
		VALUES (:id, :name, :phone, :area, :price_steel, :price_plastic, :price_paper, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, worker); err != nil {
		return fmt.Errorf("create worker: %w", err)
	}
	return nil
}
