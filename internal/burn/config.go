package burn

import (
	"fmt"
	"time"

	"github.com/osse101/PullBot_Go/internal/domain"
)

// Config holds conversion values and the confirmation window
type Config struct {
	XPPerRarity    map[string]int `json:"xp_per_rarity"`
	ConfirmTimeout time.Duration  `json:"-"`
	SampleSize     int            `json:"sample_size"`
	MaxPreviews    int            `json:"max_previews"`
}

// DefaultConfig returns the standard conversion table
func DefaultConfig() Config {
	return Config{
		XPPerRarity: map[string]int{
			domain.RarityCommon:    1,
			domain.RarityUncommon:  2,
			domain.RarityRare:      5,
			domain.RarityLegendary: 20,
		},
		ConfirmTimeout: DefaultConfirmTimeout,
		SampleSize:     DefaultSampleSize,
		MaxPreviews:    DefaultMaxPreviews,
	}
}

// XPFor returns the experience one card of rarity is worth
func (c Config) XPFor(rarity string) int {
	if xp, ok := c.XPPerRarity[rarity]; ok {
		return xp
	}
	return DefaultXP
}

// Validate rejects negative values and fills zero values with defaults
func (c *Config) Validate() error {
	for rarity, xp := range c.XPPerRarity {
		if xp < 0 {
			return fmt.Errorf("%w: negative xp for %q", domain.ErrConfigurationDefect, rarity)
		}
	}
	if c.ConfirmTimeout <= 0 {
		c.ConfirmTimeout = DefaultConfirmTimeout
	}
	if c.SampleSize <= 0 {
		c.SampleSize = DefaultSampleSize
	}
	if c.MaxPreviews <= 0 {
		c.MaxPreviews = DefaultMaxPreviews
	}
	return nil
}
