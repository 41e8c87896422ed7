package memory

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ecocity/waste-api/internal/models"
)

// WorkerRepository is the in-memory collector directory.
type WorkerRepository struct {
	store *Store
}

// NewWorkerRepository creates a worker repository backed by the shared store.
func NewWorkerRepository(store *Store) *WorkerRepository {
	return &WorkerRepository{store: store}
}

// List returns the full worker directory ordered by name.
func (r *WorkerRepository) List(_ context.Context) ([]models.Worker, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var workers []models.Worker
	for _, w := range r.store.workers {
		workers = append(workers, *w)
	}

	sort.Slice(workers, func(i, j int) bool {
		return workers[i].Name < workers[j].Name
	})
	return workers, nil
}

// FindByID returns a worker by identifier.
func (r *WorkerRepository) FindByID(_ context.Context, id string) (*models.Worker, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	w, ok := r.store.workers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *w
	return &clone, nil
}

// Create inserts a new directory entry.
func (r *WorkerRepository) Create(_ context.Context, worker *models.Worker) error {
	if worker.ID == "" {
		worker.ID = uuid.NewString()
	}
	if worker.CreatedAt.IsZero() {
		worker.CreatedAt = time.Now().UTC()
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	clone := *worker
	r.store.workers[worker.ID] = &clone
	return nil
}
