package quota

import (
	"time"

	"github.com/osse101/PullBot_Go/internal/clock"
	"github.com/osse101/PullBot_Go/internal/domain"
)

// Config bounds the timed pool
type Config struct {
	MaxStock       int
	RefillInterval time.Duration
}

// DefaultConfig returns the standard allowance settings
func DefaultConfig() Config {
	return Config{MaxStock: DefaultMaxStock, RefillInterval: DefaultRefillInterval}
}

// NewRecord returns a fresh allowance with a full timed pool and no credits
func NewRecord(userID string, now time.Time, cfg Config) *domain.AllowanceRecord {
	return &domain.AllowanceRecord{
		UserID:       userID,
		TimedStock:   cfg.MaxStock,
		LastRefillAt: now,
		NamedCredits: map[string]int{},
		UpdatedAt:    now,
	}
}

// Replenish converts whole elapsed refill intervals into timed units.
// LastRefillAt advances by exactly the intervals consumed so fractional
// progress toward the next unit is kept. A full pool is left untouched.
// It reports whether rec changed.
func Replenish(rec *domain.AllowanceRecord, now time.Time, cfg Config) bool {
	if rec.TimedStock >= cfg.MaxStock {
		return false
	}
	k, _ := clock.ElapsedIntervals(rec.LastRefillAt, now, cfg.RefillInterval)
	if k <= 0 {
		return false
	}
	rec.TimedStock = min(cfg.MaxStock, rec.TimedStock+k)
	rec.LastRefillAt = rec.LastRefillAt.Add(time.Duration(k) * cfg.RefillInterval)
	return true
}

// NextRefillIn is the wait until the next timed unit accrues; zero when full
func NextRefillIn(rec *domain.AllowanceRecord, now time.Time, cfg Config) time.Duration {
	if rec.TimedStock >= cfg.MaxStock {
		return 0
	}
	_, progress := clock.ElapsedIntervals(rec.LastRefillAt, now, cfg.RefillInterval)
	if now.Before(rec.LastRefillAt) {
		return rec.LastRefillAt.Sub(now) + cfg.RefillInterval
	}
	return cfg.RefillInterval - progress
}
