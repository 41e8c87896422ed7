// Package memory provides a mutex-guarded in-memory implementation of the
// repository layer, selected with STORE_DRIVER=memory. It backs local
// development and the test suite without a running Postgres instance.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ecocity/waste-api/internal/models"
)

// Store is the shared data holder for the per-entity repositories. All access
// goes through its mutex so concurrent handlers observe consistent state.
type Store struct {
	mu sync.RWMutex

	users      map[string]*models.User
	profiles   map[string]*models.Profile // keyed by profile id
	complaints map[string]*models.Complaint
	workers    map[string]*models.Worker
	reports    map[string]*models.Report
	codes      map[string]*models.RedeemCode
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		users:      make(map[string]*models.User),
		profiles:   make(map[string]*models.Profile),
		complaints: make(map[string]*models.Complaint),
		workers:    make(map[string]*models.Worker),
		reports:    make(map[string]*models.Report),
		codes:      make(map[string]*models.RedeemCode),
	}
}

// seedAccount describes one demo login created by Seed.
type seedAccount struct {
	email   string
	name    string
	role    models.ProfileRole
	credits int
}

// Seed loads the demo fixtures: five accounts (one admin) and five collectors
// covering the city districts. Credentials all use the given password.
func (s *Store) Seed(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	accounts := []seedAccount{
		{email: "john@example.com", name: "John Doe", role: models.RoleUser, credits: 75},
		{email: "jane@example.com", name: "Jane Smith", role: models.RoleUser, credits: 120},
		{email: "admin@example.com", name: "Admin User", role: models.RoleAdmin, credits: 0},
		{email: "alice@example.com", name: "Alice Johnson", role: models.RoleUser, credits: 95},
		{email: "bob@example.com", name: "Bob Wilson", role: models.RoleUser, credits: 50},
	}

	workers := []models.Worker{
		{Name: "Worker Alpha", Phone: "123-456-7890", Area: "North District", PriceSteel: 15, PricePlastic: 8, PricePaper: 5},
		{Name: "Worker Beta", Phone: "234-567-8901", Area: "South District", PriceSteel: 12, PricePlastic: 10, PricePaper: 4},
		{Name: "Worker Gamma", Phone: "345-678-9012", Area: "East District", PriceSteel: 18, PricePlastic: 7, PricePaper: 6},
		{Name: "Worker Delta", Phone: "456-789-0123", Area: "West District", PriceSteel: 14, PricePlastic: 9, PricePaper: 5},
		{Name: "Worker Epsilon", Phone: "567-890-1234", Area: "Central District", PriceSteel: 16, PricePlastic: 8, PricePaper: 7},
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for i, acc := range accounts {
		// Stagger created_at so ordering (and champion tie-breaks) is stable.
		createdAt := now.Add(time.Duration(i) * time.Second)
		user := &models.User{
			ID:           uuid.NewString(),
			Email:        acc.email,
			PasswordHash: string(hash),
			Name:         acc.name,
			CreatedAt:    createdAt,
		}
		s.users[user.ID] = user

		profile := &models.Profile{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			Name:      acc.name,
			Email:     acc.email,
			Role:      acc.role,
			Credits:   acc.credits,
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		}
		s.profiles[profile.ID] = profile
	}

	for i := range workers {
		w := workers[i]
		w.ID = uuid.NewString()
		w.CreatedAt = now
		s.workers[w.ID] = &w
	}

	return nil
}

func (s *Store) profileByUserID(userID string) *models.Profile {
	for _, p := range s.profiles {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}
