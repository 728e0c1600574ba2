package burn

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/osse101/PullBot_Go/internal/clock"
	"github.com/osse101/PullBot_Go/internal/concurrency"
	"github.com/osse101/PullBot_Go/internal/domain"
	"github.com/osse101/PullBot_Go/internal/draw"
	"github.com/osse101/PullBot_Go/internal/event"
	"github.com/osse101/PullBot_Go/internal/inventory"
	"github.com/osse101/PullBot_Go/internal/ledger"
	"github.com/osse101/PullBot_Go/internal/logger"
	"github.com/osse101/PullBot_Go/internal/quota"
	"github.com/osse101/PullBot_Go/internal/repository"
)

// Service runs bulk conversions of cards into experience
type Service interface {
	Preview(ctx context.Context, req domain.BurnRequest) (*domain.BurnPreview, error)
	Confirm(ctx context.Context, userID, token string) (*domain.BurnResult, error)
	Cancel(ctx context.Context, userID, token string) error
}

type service struct {
	repo      repository.Burn
	inventory inventory.Service
	ledger    ledger.Service
	quota     quota.Service
	drawer    draw.Drawer
	publisher event.Publisher
	locks     *concurrency.LockManager
	clock     clock.Clock
	cfg       Config
	previews  *expirable.LRU[string, *domain.BurnPreview]
}

// Deps groups the collaborators of the burn service
type Deps struct {
	Repo      repository.Burn
	Inventory inventory.Service
	Ledger    ledger.Service
	Quota     quota.Service
	Drawer    draw.Drawer
	Publisher event.Publisher
	Locks     *concurrency.LockManager
	Clock     clock.Clock
}

// NewService creates a new burn service
func NewService(deps Deps, cfg Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Locks == nil {
		deps.Locks = concurrency.NewLockManager()
	}
	if deps.Clock == nil {
		deps.Clock = clock.NewRealClock()
	}
	s := &service{
		repo:      deps.Repo,
		inventory: deps.Inventory,
		ledger:    deps.Ledger,
		quota:     deps.Quota,
		drawer:    deps.Drawer,
		publisher: deps.Publisher,
		locks:     deps.Locks,
		clock:     deps.Clock,
		cfg:       cfg,
	}
	s.previews = expirable.NewLRU[string, *domain.BurnPreview](cfg.MaxPreviews, s.onEvict, cfg.ConfirmTimeout)
	return s, nil
}

func (s *service) onEvict(token string, p *domain.BurnPreview) {
	logger.FromContext(context.Background()).Debug(LogMsgPreviewExpired, "user_id", p.UserID, "token", token)
}

// take removes and returns the preview so that it can be confirmed at most once
func (s *service) take(userID, token string) (*domain.BurnPreview, error) {
	p, ok := s.previews.Peek(token)
	if !ok || p.UserID != userID {
		return nil, domain.ErrPreviewNotFound
	}
	if !s.previews.Remove(token) {
		return nil, domain.ErrPreviewNotFound
	}
	if !s.clock.Now().Before(p.ExpiresAt) {
		return nil, domain.ErrPreviewNotFound
	}
	return p, nil
}

// Confirm commits a preview in a single transaction: stack removals,
// experience cascade, milestone awards and the audit record.
func (s *service) Confirm(ctx context.Context, userID, token string) (*domain.BurnResult, error) {
	p, err := s.take(userID, token)
	if err != nil {
		return nil, err
	}

	release, err := s.locks.Acquire(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	catalog, err := s.ledger.Catalog(ctx, p.Character)
	if err != nil {
		return nil, err
	}

	res, events, err := s.commit(ctx, p, catalog)
	if err != nil {
		logger.FromContext(ctx).Warn(LogMsgBurnAborted, "user_id", userID, "token", token, "error", err)
		return nil, err
	}

	logger.FromContext(ctx).Info(LogMsgBurnCommitted,
		"user_id", userID,
		"character", p.Character,
		"cards", res.CardsRemoved,
		"xp", res.XPGained,
		"level", res.NewLevel,
		"milestones", len(res.Milestones))

	s.publish(ctx, event.NewBurnCommittedEvent(userID, p.Character, res))
	for _, ev := range events {
		s.publish(ctx, event.NewMilestoneAwardedEvent(userID, p.Character, ev))
	}
	return res, nil
}

func (s *service) commit(ctx context.Context, p *domain.BurnPreview, catalog []domain.Milestone) (*domain.BurnResult, []domain.CascadeEvent, error) {
	tx, err := s.repo.BeginBurnTx(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w: %w", ErrMsgBeginTxFailed, domain.ErrPersistence, err)
	}
	defer repository.SafeRollback(ctx, tx)

	now := s.clock.Now()

	keys := make([]domain.StackKey, len(p.Removals))
	for i, r := range p.Removals {
		keys[i] = r.Key()
	}
	held, err := tx.GetStacksForUpdate(ctx, p.UserID, keys)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", ErrMsgLockStacksFailed, err)
	}
	// Holdings may have changed since the preview; every line is checked
	// before the first removal.
	if err := inventory.ValidateRemovals(held, p.Removals); err != nil {
		return nil, nil, err
	}
	if !p.AllowLocked {
		if err := rejectLocked(held, p.Removals); err != nil {
			return nil, nil, err
		}
	}
	for _, r := range p.Removals {
		if _, err := tx.RemoveFromStack(ctx, p.UserID, r.Key(), r.Count); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", ErrMsgRemoveFailed, err)
		}
	}

	growth := s.ledger.Growth()
	state, err := tx.GetProgressionForUpdate(ctx, growth.NewState(p.UserID, p.Character))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", ErrMsgProgressionFailed, err)
	}
	before := *state

	cascade, err := ledger.ApplyExperience(*state, p.TotalXP, catalog, growth, now)
	if err != nil {
		if errors.Is(err, domain.ErrCascadeLimit) {
			logger.FromContext(ctx).Error(LogMsgCascadeDefect, "user_id", p.UserID, "character", p.Character, "level", before.Level, "xp_delta", p.TotalXP, "error", err)
		}
		return nil, nil, err
	}

	res := &domain.BurnResult{
		CardsRemoved:  p.TotalCount,
		XPGained:      p.TotalXP,
		PreviousLevel: before.Level,
		NewLevel:      cascade.State.Level,
		LevelsGained:  cascade.LevelsGained,
		XP:            cascade.State.XP,
		XPToNext:      cascade.State.XPToNext,
	}

	for _, ev := range cascade.Events {
		res.Milestones = append(res.Milestones, domain.MilestoneGrant{MilestoneID: ev.MilestoneID, Level: ev.Level, Description: ev.Description})
		switch award := ev.Award.(type) {
		case domain.CreditAward:
			res.CreditsGranted += award.Amount
		case domain.CardAward:
			minted, err := s.drawer.MintFromPool(ctx, award.Pool, award.Count)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: %w", ErrMsgMintFailed, err)
			}
			res.CardsMinted = append(res.CardsMinted, minted...)
		}
	}

	if res.CreditsGranted > 0 {
		if err := tx.AddEventCredits(ctx, *s.quota.NewRecord(p.UserID), res.CreditsGranted); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", ErrMsgCreditFailed, err)
		}
	}
	if len(res.CardsMinted) > 0 {
		if err := tx.AddCards(ctx, p.UserID, res.CardsMinted, now); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", ErrMsgMintFailed, err)
		}
	}
	if err := tx.SaveProgression(ctx, &cascade.State, cascade.NewAwards); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", ErrMsgSaveFailed, err)
	}

	audit := &domain.AuditRecord{
		ID:           uuid.NewString(),
		UserID:       p.UserID,
		Kind:         domain.AuditKindBurn,
		Character:    p.Character,
		Removed:      p.Removals,
		Added:        res.CardsMinted,
		CreditsAdded: res.CreditsGranted,
		XPGained:     p.TotalXP,
		LevelBefore:  before.Level,
		LevelAfter:   cascade.State.Level,
		CreatedAt:    now,
	}
	if err := tx.InsertAudit(ctx, audit); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", ErrMsgAuditFailed, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("%s: %w: %w", ErrMsgCommitFailed, domain.ErrPersistence, err)
	}
	res.AuditID = audit.ID
	return res, cascade.Events, nil
}

func (s *service) publish(ctx context.Context, evt event.Event) {
	if s.publisher != nil {
		s.publisher.PublishWithRetry(ctx, evt)
	}
}
