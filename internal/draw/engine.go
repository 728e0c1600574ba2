package draw

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"slices"

	"github.com/osse101/PullBot_Go/internal/domain"
	"github.com/osse101/PullBot_Go/internal/logger"
)

// Drawer produces packets of cards. The pull and burn services depend on
// this rather than on *Engine.
type Drawer interface {
	Draw(ctx context.Context, userID, cohortOverride string) ([]domain.Card, error)
	MintFromPool(ctx context.Context, pool string, count int) ([]domain.Card, error)
}

// Engine is the immutable weighted draw engine. All fields are read-only
// after NewEngine, so a single Engine is shared across requests.
type Engine struct {
	cfg     Config
	cohorts []Cohort
	members map[string]map[string]bool
	pools   map[string]*AssetPool
	rnd     func() float64
}

// Option configures an Engine
type Option func(*Engine)

// WithRandom overrides the random source; rnd must return values in [0,1)
func WithRandom(rnd func() float64) Option {
	return func(e *Engine) { e.rnd = rnd }
}

// NewEngine validates cfg and scans the asset directories in fsys
func NewEngine(cfg Config, fsys fs.FS, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pools, err := LoadAssetPools(fsys, cfg)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:     cfg,
		cohorts: cfg.orderedCohorts(),
		members: make(map[string]map[string]bool, len(cfg.Cohorts)),
		pools:   pools,
		rnd:     rand.Float64,
	}
	for _, co := range e.cohorts {
		set := make(map[string]bool, len(co.Members))
		for _, m := range co.Members {
			set[m] = true
		}
		e.members[co.Name] = set
	}
	for _, opt := range opts {
		opt(e)
	}

	counts := make([]any, 0, len(pools)*2)
	for dir, p := range pools {
		counts = append(counts, slog.Int(dir, len(p.Files)))
	}
	slog.Default().Info(LogMsgAssetPoolsLoaded, counts...)
	return e, nil
}

// ResolveCohort returns the cohort applying to userID, or nil for the base
// tables. A non-empty override must name a configured cohort.
func (e *Engine) ResolveCohort(userID, override string) (*Cohort, error) {
	if override != "" {
		for i := range e.cohorts {
			if e.cohorts[i].Name == override {
				return &e.cohorts[i], nil
			}
		}
		return nil, fmt.Errorf("%w: unknown cohort %q", domain.ErrInvalidInput, override)
	}
	for i := range e.cohorts {
		if e.members[e.cohorts[i].Name][userID] {
			return &e.cohorts[i], nil
		}
	}
	return nil, nil
}

// Draw runs every configured slot in order and returns the packet.
// A configuration defect fails the whole draw.
func (e *Engine) Draw(ctx context.Context, userID, cohortOverride string) ([]domain.Card, error) {
	log := logger.FromContext(ctx)

	cohort, err := e.ResolveCohort(userID, cohortOverride)
	if err != nil {
		return nil, err
	}

	cards := make([]domain.Card, 0, e.packetSize())
	for _, slot := range e.cfg.Slots {
		if slot.Chance > 0 && slot.Chance < 1 && e.rnd() >= slot.Chance {
			log.Debug(LogMsgExtraSlotSkipped, "slot", slot.Name)
			continue
		}
		table := e.tableFor(slot, cohort)
		for i := 0; i < slot.Count; i++ {
			card, err := e.drawSlot(slot, table, cohort)
			if err != nil {
				var defect *domain.ConfigurationDefectError
				if errors.As(err, &defect) {
					log.Error(LogMsgConfigDefect, "user_id", userID, "slot", defect.Slot, "category", defect.Category, "cohort", defect.Cohort, "reason", defect.Reason)
				}
				return nil, err
			}
			cards = append(cards, card)
		}
	}

	log.Debug(LogMsgPacketDrawn, "user_id", userID, "cohort", cohortName(cohort), "cards", len(cards))
	return cards, nil
}

// MintFromPool samples count cards uniformly from a category's default pool
func (e *Engine) MintFromPool(ctx context.Context, pool string, count int) ([]domain.Card, error) {
	if count <= 0 {
		return nil, nil
	}
	dir, ok := e.cfg.Categories[pool]
	if !ok {
		return nil, fmt.Errorf("%w: unknown card pool %q", domain.ErrConfigurationDefect, pool)
	}
	cards := make([]domain.Card, 0, count)
	for i := 0; i < count; i++ {
		file, err := e.pools[dir].Sample(pool, e.rnd())
		if err != nil {
			logger.FromContext(ctx).Error(LogMsgConfigDefect, "pool", pool, "error", err)
			return nil, err
		}
		cards = append(cards, newCard(pool, file))
	}
	return cards, nil
}

// Categories returns the configured category names in sorted order
func (e *Engine) Categories() []string {
	names := make([]string, 0, len(e.cfg.Categories))
	for name := range e.cfg.Categories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (e *Engine) tableFor(slot Slot, cohort *Cohort) Table {
	if cohort != nil {
		if t, ok := cohort.Tables[slot.Name]; ok {
			return t
		}
	}
	return e.cfg.Tables[slot.Table]
}

func (e *Engine) drawSlot(slot Slot, table Table, cohort *Cohort) (domain.Card, error) {
	idx, err := Pick(table, e.rnd())
	if err != nil {
		return domain.Card{}, &domain.ConfigurationDefectError{Slot: slot.Name, Cohort: cohortName(cohort), Reason: err.Error()}
	}
	category := table[idx].Category

	dir := e.cfg.Categories[category]
	if cohort != nil {
		if d, ok := cohort.Assets[category]; ok {
			dir = d
		}
	}

	file, err := e.pools[dir].Sample(category, e.rnd())
	if err != nil {
		var defect *domain.ConfigurationDefectError
		if errors.As(err, &defect) {
			defect.Slot = slot.Name
			defect.Cohort = cohortName(cohort)
		}
		return domain.Card{}, err
	}
	return newCard(category, file), nil
}

func (e *Engine) packetSize() int {
	n := 0
	for _, s := range e.cfg.Slots {
		n += s.Count
	}
	return n
}

func newCard(category, file string) domain.Card {
	return domain.Card{Rarity: category, File: file, Name: DisplayName(file)}
}

func cohortName(c *Cohort) string {
	if c == nil {
		return ""
	}
	return c.Name
}
