package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/osse101/PullBot_Go/internal/clock"
	"github.com/osse101/PullBot_Go/internal/domain"
	"github.com/osse101/PullBot_Go/internal/logger"
	"github.com/osse101/PullBot_Go/internal/repository"
)

// Service defines the inventory operations
type Service interface {
	AddCards(ctx context.Context, userID string, cards []domain.Card) error
	ApplyDelta(ctx context.Context, userID string, key domain.StackKey, delta int) (int, error)
	ListStacks(ctx context.Context, userID string, filter domain.StackFilter) ([]domain.InventoryStack, error)
	SetLocked(ctx context.Context, userID string, key domain.StackKey, locked bool) error
}

type service struct {
	repo  repository.Inventory
	clock clock.Clock
}

// NewService creates a new inventory service
func NewService(repo repository.Inventory, clk clock.Clock) Service {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &service{repo: repo, clock: clk}
}

func (s *service) AddCards(ctx context.Context, userID string, cards []domain.Card) error {
	if len(cards) == 0 {
		return nil
	}
	if err := s.repo.AddCards(ctx, userID, cards, s.clock.Now()); err != nil {
		return fmt.Errorf("%s: %w: %w", ErrMsgAddCardsFailed, domain.ErrPersistence, err)
	}
	logger.FromContext(ctx).Debug(LogMsgCardsAdded, "user_id", userID, "count", len(cards))
	return nil
}

func (s *service) ApplyDelta(ctx context.Context, userID string, key domain.StackKey, delta int) (int, error) {
	if delta == 0 {
		return 0, fmt.Errorf("%w: delta must be non-zero", domain.ErrInvalidInput)
	}
	n, err := s.repo.ApplyDelta(ctx, userID, key, delta, domain.StackMeta{At: s.clock.Now()})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgApplyDeltaFailed, err)
	}
	return n, nil
}

// ListStacks returns matching stacks, rarest-first then by name
func (s *service) ListStacks(ctx context.Context, userID string, filter domain.StackFilter) ([]domain.InventoryStack, error) {
	stacks, err := s.repo.ListStacks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgListStacksFailed, err)
	}
	// listings always show locked stacks
	filter.IncludeLocked = true
	out, err := Filter(stacks, filter)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := rarityRank(out[i].Rarity), rarityRank(out[j].Rarity)
		if ri != rj {
			return ri > rj
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *service) SetLocked(ctx context.Context, userID string, key domain.StackKey, locked bool) error {
	if err := s.repo.SetLocked(ctx, userID, key, locked); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgSetLockedFailed, err)
	}
	logger.FromContext(ctx).Info(LogMsgStackLockToggle, "user_id", userID, "name", key.Name, "rarity", key.Rarity, "locked", locked)
	return nil
}

// rarityRank orders the built-in rarities; unknown categories sort last
func rarityRank(r string) int {
	switch r {
	case domain.RarityLegendary:
		return 4
	case domain.RarityRare:
		return 3
	case domain.RarityUncommon:
		return 2
	case domain.RarityCommon:
		return 1
	default:
		return 0
	}
}
