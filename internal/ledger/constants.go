package ledger

import "time"

// Growth defaults: xpToNext(level) = floor(DefaultGrowthBase * DefaultGrowthFactor^(level-1))
const (
	DefaultGrowthBase   = 10.0
	DefaultGrowthFactor = 1.1

	// MaxCascadeIterations caps level-ups resolved by one experience application
	MaxCascadeIterations = 1000

	// StartingLevel is the level of a freshly created progression row
	StartingLevel = 1
)

// Catalog cache settings
const (
	CatalogCacheSize = 64
	CatalogCacheTTL  = 5 * time.Minute
	HistoryLimit     = 20
	allCharactersKey = "\x00all"
)

// Log messages
const (
	LogMsgCascadeResolved  = "Experience cascade resolved"
	LogMsgMilestonesSynced = "Milestone catalog synced"
	LogMsgCatalogCacheMiss = "Milestone catalog cache miss"
)

// Error messages
const (
	ErrMsgLoadCatalogFailed     = "failed to load milestone catalog"
	ErrMsgLoadProgressionFailed = "failed to load progression"
)
