package memory

import "github.com/ecocity/waste-api/internal/repository"

// NewStores builds the in-memory repository set over one shared store.
func NewStores(store *Store) repository.Stores {
	return repository.Stores{
		Users:      NewUserRepository(store),
		Profiles:   NewProfileRepository(store),
		Complaints: NewComplaintRepository(store),
		Workers:    NewWorkerRepository(store),
		Reports:    NewReportRepository(store),
		Codes:      NewRedeemRepository(store),
	}
}
