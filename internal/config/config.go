package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"pullbot"`
	Version     string `env:"VERSION" envDefault:"dev"`
	Port        int    `env:"PORT" envDefault:"8080"`
	APIKey      string `env:"API_KEY"` // API key for authentication
	// TrustedProxies lists proxy IPs whose X-Forwarded-For header is honored
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	LogDir    string `env:"LOG_DIR" envDefault:"logs"`

	DBUser            string        `env:"DB_USER" envDefault:"postgres"`
	DBPassword        string        `env:"DB_PASSWORD" envDefault:"postgres"`
	DBHost            string        `env:"DB_HOST" envDefault:"localhost"`
	DBPort            string        `env:"DB_PORT" envDefault:"5432"`
	DBName            string        `env:"DB_NAME" envDefault:"pullbot"`
	DBMaxConns        int           `env:"DB_MAX_CONNS" envDefault:"20"`
	DBMaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"5m"`
	DBMaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"30m"`

	GameConfigPath string `env:"GAME_CONFIG_PATH" envDefault:"configs/game.json"`
	// AssetRoot overrides the card asset directory named in the game config
	AssetRoot string `env:"ASSET_ROOT"`

	EventMaxRetries     int           `env:"EVENT_MAX_RETRIES" envDefault:"5"`
	EventRetryDelay     time.Duration `env:"EVENT_RETRY_DELAY" envDefault:"2s"`
	EventDeadLetterPath string        `env:"EVENT_DEADLETTER_PATH" envDefault:"logs/event_deadletter.jsonl"`
	EventRetentionDays  int           `env:"EVENT_RETENTION_DAYS" envDefault:"30"`
	EventCleanupEvery   time.Duration `env:"EVENT_CLEANUP_INTERVAL" envDefault:"24h"`

	WorkerCount     int `env:"WORKER_COUNT" envDefault:"2"`
	WorkerQueueSize int `env:"WORKER_QUEUE_SIZE" envDefault:"16"`

	// Redis backs the per-user pull rate limiter; an empty address disables it
	RedisAddr          string        `env:"REDIS_ADDR"`
	RedisPassword      string        `env:"REDIS_PASSWORD"`
	RedisDB            int           `env:"REDIS_DB" envDefault:"0"`
	PullRateCapacity   int           `env:"PULL_RATE_CAPACITY" envDefault:"5"`
	PullRateInterval   time.Duration `env:"PULL_RATE_INTERVAL" envDefault:"2s"`
	DailyGrantCredits  int           `env:"DAILY_GRANT_CREDITS" envDefault:"0"`
	DailyGrantTarget   string        `env:"DAILY_GRANT_TARGET" envDefault:"*"`
	DailyGrantInterval time.Duration `env:"DAILY_GRANT_INTERVAL" envDefault:"1h"`
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgParseEnv, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values the environment parser cannot
func (c *Config) Validate() error {
	var errs []error
	if c.APIKey == "" {
		errs = append(errs, errors.New(ErrMsgAPIKeyRequired))
	}
	if c.Port <= 0 || c.Port > MaxPort {
		errs = append(errs, fmt.Errorf("%s: %d", ErrMsgInvalidPort, c.Port))
	}
	if c.DBMaxConns <= 0 {
		errs = append(errs, fmt.Errorf("%s: %d", ErrMsgInvalidMaxConns, c.DBMaxConns))
	}
	if c.WorkerCount <= 0 || c.WorkerQueueSize <= 0 {
		errs = append(errs, errors.New(ErrMsgInvalidWorkers))
	}
	if c.DailyGrantCredits < 0 {
		errs = append(errs, fmt.Errorf("%s: %d", ErrMsgInvalidDailyCredits, c.DailyGrantCredits))
	}
	if c.RedisAddr != "" && (c.PullRateCapacity <= 0 || c.PullRateInterval <= 0) {
		errs = append(errs, errors.New(ErrMsgInvalidRateLimit))
	}
	return errors.Join(errs...)
}

// RateLimitEnabled reports whether pulls are rate limited through Redis
func (c *Config) RateLimitEnabled() bool {
	return c.RedisAddr != ""
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}
