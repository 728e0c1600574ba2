package bootstrap

import (
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/osse101/PullBot_Go/internal/burn"
	"github.com/osse101/PullBot_Go/internal/clock"
	"github.com/osse101/PullBot_Go/internal/concurrency"
	"github.com/osse101/PullBot_Go/internal/config"
	"github.com/osse101/PullBot_Go/internal/draw"
	"github.com/osse101/PullBot_Go/internal/event"
	"github.com/osse101/PullBot_Go/internal/eventlog"
	"github.com/osse101/PullBot_Go/internal/inventory"
	"github.com/osse101/PullBot_Go/internal/ledger"
	"github.com/osse101/PullBot_Go/internal/pull"
	"github.com/osse101/PullBot_Go/internal/quota"
)

// Services holds the domain services shared by the HTTP server and workers
type Services struct {
	Quota     quota.Service
	Inventory inventory.Service
	Ledger    ledger.Service
	Pull      pull.Service
	Burn      burn.Service
	EventLog  eventlog.Service
}

// ServiceDependencies groups everything InitializeServices needs
type ServiceDependencies struct {
	Repos     *Repositories
	Game      *config.Game
	Assets    fs.FS
	Publisher event.Publisher
	Clock     clock.Clock
}

// InitializeServices builds the draw engine and the domain services. Pull and
// burn share one lock manager so a user's pulls and conversions serialize.
func InitializeServices(deps ServiceDependencies) (*Services, error) {
	engine, err := draw.NewEngine(deps.Game.Draw, deps.Assets)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedCreateEngine, err)
	}
	slog.Info(LogMsgDrawEngineLoaded,
		"slots", len(deps.Game.Draw.Slots),
		"cohorts", len(deps.Game.Draw.Cohorts))

	locks := concurrency.NewLockManager()

	quotaService := quota.NewService(deps.Repos.Allowance, deps.Game.Quota, deps.Clock)
	inventoryService := inventory.NewService(deps.Repos.Inventory, deps.Clock)
	ledgerService := ledger.NewService(deps.Repos.Progression, deps.Game.Growth)

	pullService := pull.NewService(quotaService, engine, inventoryService, deps.Repos.Audit, deps.Publisher, locks, deps.Clock)

	burnService, err := burn.NewService(burn.Deps{
		Repo:      deps.Repos.Burn,
		Inventory: inventoryService,
		Ledger:    ledgerService,
		Quota:     quotaService,
		Drawer:    engine,
		Publisher: deps.Publisher,
		Locks:     locks,
		Clock:     deps.Clock,
	}, deps.Game.Burn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedCreateBurn, err)
	}

	slog.Info(LogMsgServicesInitialized)

	return &Services{
		Quota:     quotaService,
		Inventory: inventoryService,
		Ledger:    ledgerService,
		Pull:      pullService,
		Burn:      burnService,
		EventLog:  eventlog.NewService(deps.Repos.EventLog),
	}, nil
}
