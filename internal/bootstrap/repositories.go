package bootstrap

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/PullBot_Go/internal/database/postgres"
	"github.com/osse101/PullBot_Go/internal/eventlog"
	"github.com/osse101/PullBot_Go/internal/repository"
)

// Repositories holds all repository implementations used by the application.
type Repositories struct {
	Allowance   repository.Allowance
	Inventory   repository.Inventory
	Progression repository.Progression
	Audit       repository.Audit
	Burn        repository.Burn
	EventLog    eventlog.Repository
}

// InitializeRepositories creates the Postgres-backed repositories
func InitializeRepositories(dbPool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Allowance:   postgres.NewAllowanceRepository(dbPool),
		Inventory:   postgres.NewInventoryRepository(dbPool),
		Progression: postgres.NewProgressionRepository(dbPool),
		Audit:       postgres.NewAuditRepository(dbPool),
		Burn:        postgres.NewBurnRepository(dbPool),
		EventLog:    postgres.NewEventLogRepository(dbPool),
	}
}
