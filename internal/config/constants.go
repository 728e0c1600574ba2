package config

const (
	// Configuration file paths
	ConfigPathGame = "configs/game.json"

	// MaxPort is the highest valid TCP port
	MaxPort = 65535

	EnvironmentProduction = "prod"
)

// Error messages
const (
	ErrMsgParseEnv            = "failed to parse environment"
	ErrMsgAPIKeyRequired      = "API_KEY environment variable must be set for security"
	ErrMsgInvalidPort         = "invalid PORT value"
	ErrMsgInvalidMaxConns     = "DB_MAX_CONNS must be positive"
	ErrMsgInvalidWorkers      = "WORKER_COUNT and WORKER_QUEUE_SIZE must be positive"
	ErrMsgInvalidDailyCredits = "DAILY_GRANT_CREDITS must not be negative"
	ErrMsgInvalidRateLimit    = "PULL_RATE_CAPACITY and PULL_RATE_INTERVAL must be positive when REDIS_ADDR is set"
	ErrMsgLoadGameConfig      = "failed to load game config"
	ErrMsgInvalidGameConfig   = "invalid game config"
	ErrMsgInvalidDuration     = "invalid duration"
)
