package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/osse101/PullBot_Go/internal/domain"
	"github.com/osse101/PullBot_Go/internal/logger"
	"github.com/osse101/PullBot_Go/internal/repository"
)

// Service exposes progression reads and the cached milestone catalog
type Service interface {
	GetProgression(ctx context.Context, userID, character string) (*domain.ProgressionState, error)
	// Catalog returns the enabled milestones that apply to character, in catalog order
	Catalog(ctx context.Context, character string) ([]domain.Milestone, error)
	SyncMilestones(ctx context.Context, milestones []domain.Milestone) error
	Growth() Growth
}

type service struct {
	repo   repository.Progression
	growth Growth
	cache  *expirable.LRU[string, []domain.Milestone]
}

// NewService creates a new ledger service
func NewService(repo repository.Progression, growth Growth) Service {
	return &service{
		repo:   repo,
		growth: growth,
		cache:  expirable.NewLRU[string, []domain.Milestone](CatalogCacheSize, nil, CatalogCacheTTL),
	}
}

func (s *service) Growth() Growth {
	return s.growth
}

// GetProgression returns the stored state or a fresh level-1 state
func (s *service) GetProgression(ctx context.Context, userID, character string) (*domain.ProgressionState, error) {
	state, err := s.repo.GetProgression(ctx, userID, character, HistoryLimit)
	if errors.Is(err, domain.ErrProgressionNotFound) {
		fresh := s.growth.NewState(userID, character)
		return &fresh, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgLoadProgressionFailed, err)
	}
	return state, nil
}

func (s *service) Catalog(ctx context.Context, character string) ([]domain.Milestone, error) {
	if cached, ok := s.cache.Get(character); ok {
		return cached, nil
	}

	all, ok := s.cache.Get(allCharactersKey)
	if !ok {
		logger.FromContext(ctx).Debug(LogMsgCatalogCacheMiss)
		loaded, err := s.repo.ListMilestones(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgLoadCatalogFailed, err)
		}
		all = loaded
		s.cache.Add(allCharactersKey, all)
	}

	scoped := make([]domain.Milestone, 0, len(all))
	for _, m := range all {
		if m.Enabled && m.AppliesTo(character) {
			scoped = append(scoped, m)
		}
	}
	s.cache.Add(character, scoped)
	return scoped, nil
}

// SyncMilestones replaces the stored catalog with the configured one and drops cached views
func (s *service) SyncMilestones(ctx context.Context, milestones []domain.Milestone) error {
	if err := s.repo.ReplaceMilestones(ctx, milestones); err != nil {
		return err
	}
	s.cache.Purge()
	logger.FromContext(ctx).Info(LogMsgMilestonesSynced, "count", len(milestones))
	return nil
}
