package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/osse101/PullBot_Go/internal/burn"
	"github.com/osse101/PullBot_Go/internal/domain"
	"github.com/osse101/PullBot_Go/internal/draw"
	"github.com/osse101/PullBot_Go/internal/ledger"
	"github.com/osse101/PullBot_Go/internal/quota"
	"github.com/osse101/PullBot_Go/internal/utils"
)

// Game is the immutable game data loaded once at startup
type Game struct {
	Quota      quota.Config
	Draw       draw.Config
	Burn       burn.Config
	Growth     ledger.Growth
	Milestones []domain.Milestone
}

type gameFile struct {
	Quota      quotaFile          `json:"quota"`
	Draw       draw.Config        `json:"draw"`
	Burn       burnFile           `json:"burn"`
	Growth     growthFile         `json:"growth"`
	Milestones []domain.Milestone `json:"milestones"`
}

type quotaFile struct {
	MaxStock       int    `json:"max_stock" validate:"gt=0"`
	RefillInterval string `json:"refill_interval" validate:"required"`
}

type burnFile struct {
	XPPerRarity    map[string]int `json:"xp_per_rarity" validate:"dive,gte=0"`
	ConfirmTimeout string         `json:"confirm_timeout,omitempty"`
	SampleSize     int            `json:"sample_size,omitempty" validate:"gte=0"`
	MaxPreviews    int            `json:"max_previews,omitempty" validate:"gte=0"`
}

type growthFile struct {
	Base   float64 `json:"base" validate:"gte=1"`
	Factor float64 `json:"factor" validate:"gte=1"`
}

// LoadGame loads and validates the game data file at path.
// Any defect is reported before the service starts taking traffic.
func LoadGame(path string) (*Game, error) {
	var raw gameFile
	if err := utils.LoadJSON(path, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgLoadGameConfig, err)
	}
	return raw.toGame()
}

func (f gameFile) toGame() (*Game, error) {
	if err := validator.New().Struct(f); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgInvalidGameConfig, err)
	}

	refill, err := parseDuration("quota.refill_interval", f.Quota.RefillInterval)
	if err != nil {
		return nil, err
	}
	var confirm time.Duration
	if f.Burn.ConfirmTimeout != "" {
		if confirm, err = parseDuration("burn.confirm_timeout", f.Burn.ConfirmTimeout); err != nil {
			return nil, err
		}
	}

	g := &Game{
		Quota: quota.Config{MaxStock: f.Quota.MaxStock, RefillInterval: refill},
		Draw:  f.Draw,
		Burn: burn.Config{
			XPPerRarity:    f.Burn.XPPerRarity,
			ConfirmTimeout: confirm,
			SampleSize:     f.Burn.SampleSize,
			MaxPreviews:    f.Burn.MaxPreviews,
		},
		Growth:     ledger.Growth{Base: f.Growth.Base, Factor: f.Growth.Factor},
		Milestones: f.Milestones,
	}
	if len(g.Burn.XPPerRarity) == 0 {
		g.Burn.XPPerRarity = burn.DefaultConfig().XPPerRarity
	}

	if err := errors.Join(
		g.Draw.Validate(),
		g.Burn.Validate(),
		g.Growth.Validate(),
		validateMilestones(g.Milestones),
	); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgInvalidGameConfig, err)
	}
	return g, nil
}

func parseDuration(field, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", ErrMsgInvalidDuration, field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s %s: must be positive", ErrMsgInvalidDuration, field)
	}
	return d, nil
}

func validateMilestones(ms []domain.Milestone) error {
	seen := make(map[string]bool, len(ms))
	for _, m := range ms {
		if m.ID == "" {
			return fmt.Errorf("%w: milestone without id", domain.ErrConfigurationDefect)
		}
		if seen[m.ID] {
			return fmt.Errorf("%w: duplicate milestone id %q", domain.ErrConfigurationDefect, m.ID)
		}
		seen[m.ID] = true
		if m.TriggerLevel < ledger.StartingLevel || m.RepeatEvery < 0 {
			return fmt.Errorf("%w: milestone %q has an invalid trigger", domain.ErrConfigurationDefect, m.ID)
		}
	}
	return nil
}
