package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ecocity/waste-api/internal/models"
)

// Driver-neutral store contracts. Both the Postgres repositories and the
// in-memory package satisfy these, letting the entrypoint pick the backend
// from STORE_DRIVER without touching the service wiring.

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

type ProfileStore interface {
	FindByUserID(ctx context.Context, userID string) (*models.Profile, error)
	GetOrCreate(ctx context.Context, profile *models.Profile) (*models.Profile, error)
	UpdateRole(ctx context.Context, userID string, role models.ProfileRole) error
	AddCredits(ctx context.Context, userID string, delta int) (*models.Profile, error)
	List(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, error)
	TopByCredits(ctx context.Context) (*models.Profile, error)
}

type ComplaintStore interface {
	Create(ctx context.Context, complaint *models.Complaint) error
	FindByID(ctx context.Context, id string) (*models.Complaint, error)
	List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, error)
	Assign(ctx context.Context, id string, worker *models.Worker) (*models.Complaint, error)
	UpdateStatus(ctx context.Context, id string, status models.ComplaintStatus) (*models.Complaint, error)
}

type WorkerStore interface {
	List(ctx context.Context) ([]models.Worker, error)
	FindByID(ctx context.Context, id string) (*models.Worker, error)
	Create(ctx context.Context, worker *models.Worker) error
}

type ReportStore interface {
	Create(ctx context.Context, report *models.Report) error
	FindByID(ctx context.Context, id string) (*models.Report, error)
	List(ctx context.Context, filter models.ReportFilter) ([]models.Report, error)
	UpdateStatus(ctx context.Context, id string, status models.ReportStatus) (*models.Report, error)
}

type RedeemStore interface {
	Redeem(ctx context.Context, userID string, cost int, code string) (*models.RedeemCode, error)
	List(ctx context.Context, userID *string) ([]models.RedeemCode, error)
	FindByCode(ctx context.Context, code string) (*models.RedeemCode, error)
	MarkRedeemed(ctx context.Context, code string) (*models.RedeemCode, error)
}

// Stores bundles the driver-selected repositories for wiring.
type Stores struct {
	Users      UserStore
	Profiles   ProfileStore
	Complaints ComplaintStore
	Workers    WorkerStore
	Reports    ReportStore
	Codes      RedeemStore
}

// NewPostgresStores builds the sqlx-backed repository set.
func NewPostgresStores(db *sqlx.DB) Stores {
	return Stores{
		Users:      NewUserRepository(db),
		Profiles:   NewProfileRepository(db),
		Complaints: NewComplaintRepository(db),
		Workers:    NewWorkerRepository(db),
		Reports:    NewReportRepository(db),
		Codes:      NewRedeemRepository(db),
	}
}
