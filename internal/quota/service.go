package quota

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/osse101/PullBot_Go/internal/clock"
	"github.com/osse101/PullBot_Go/internal/domain"
	"github.com/osse101/PullBot_Go/internal/logger"
	"github.com/osse101/PullBot_Go/internal/repository"
)

// Service defines the allowance operations
type Service interface {
	GetCurrentAllowance(ctx context.Context, userID string) (*domain.AllowanceView, error)
	Consume(ctx context.Context, userID string, amount int, policy Policy) (*domain.ConsumeResult, error)
	Refund(ctx context.Context, userID string, debit domain.Debit) error

	CreateGrant(ctx context.Context, grant domain.NamedGrant) (*domain.NamedGrant, error)
	DeactivateGrant(ctx context.Context, label string) error
	ListActiveGrants(ctx context.Context) ([]domain.NamedGrant, error)

	GrantForDate(ctx context.Context, dateKey, target string, credits int) (*domain.DateGrantResult, error)
	GrantBirthday(ctx context.Context, userID string, year, credits int) (bool, error)

	// NewRecord returns the record a user without one would start from
	NewRecord(userID string) *domain.AllowanceRecord
}

type service struct {
	repo  repository.Allowance
	cfg   Config
	clock clock.Clock
}

// NewService creates a new allowance service
func NewService(repo repository.Allowance, cfg Config, clk clock.Clock) Service {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &service{repo: repo, cfg: cfg, clock: clk}
}

func (s *service) NewRecord(userID string) *domain.AllowanceRecord {
	return NewRecord(userID, s.clock.Now(), s.cfg)
}

// load returns the user's record, creating a full one on first access
func (s *service) load(ctx context.Context, userID string) (*domain.AllowanceRecord, error) {
	rec, err := s.repo.GetAllowance(ctx, userID)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, domain.ErrAllowanceNotFound) {
		return nil, fmt.Errorf("%s: %w", ErrMsgGetAllowanceFailed, err)
	}
	rec, err = s.repo.CreateAllowance(ctx, s.NewRecord(userID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgCreateAllowanceFailed, err)
	}
	logger.FromContext(ctx).Info(LogMsgAllowanceCreated, "user_id", userID)
	return rec, nil
}

// mutate runs fn against a fresh read and writes the result conditionally on
// the version it read, retrying once with a new read when the write loses a race.
func (s *service) mutate(ctx context.Context, userID string, fn func(rec *domain.AllowanceRecord, now time.Time) (bool, error)) (*domain.AllowanceRecord, error) {
	log := logger.FromContext(ctx)
	for attempt := 1; ; attempt++ {
		rec, err := s.load(ctx, userID)
		if err != nil {
			return nil, err
		}
		now := s.clock.Now()
		changed, err := fn(rec, now)
		if err != nil {
			return rec, err
		}
		if !changed {
			return rec, nil
		}
		err = s.repo.UpdateAllowance(ctx, rec)
		if err == nil {
			return rec, nil
		}
		if errors.Is(err, domain.ErrConcurrencyConflict) && attempt < MaxWriteAttempts {
			log.Warn(LogMsgAllowanceConflict, "user_id", userID, "attempt", attempt)
			continue
		}
		if errors.Is(err, domain.ErrConcurrencyConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w: %w", ErrMsgUpdateAllowanceFailed, domain.ErrPersistence, err)
	}
}

// GetCurrentAllowance replenishes lazily and persists only when stock changed
func (s *service) GetCurrentAllowance(ctx context.Context, userID string) (*domain.AllowanceView, error) {
	rec, err := s.mutate(ctx, userID, func(rec *domain.AllowanceRecord, now time.Time) (bool, error) {
		return Replenish(rec, now, s.cfg), nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, rec)
}

// Consume debits amount units following policy, all-or-nothing
func (s *service) Consume(ctx context.Context, userID string, amount int, policy Policy) (*domain.ConsumeResult, error) {
	var grant *domain.NamedGrant
	policy.GrantLabel = NormalizeLabel(policy.GrantLabel)
	if policy.usesNamed() && policy.GrantLabel != "" {
		g, err := s.repo.GetGrant(ctx, policy.GrantLabel)
		switch {
		case err == nil:
			grant = g
		case errors.Is(err, domain.ErrGrantNotFound):
			if policy.namedOnly() {
				return nil, fmt.Errorf("%w: %q", domain.ErrNoActiveGrant, policy.GrantLabel)
			}
		default:
			return nil, fmt.Errorf("%s: %w", ErrMsgGetGrantFailed, err)
		}
	}

	var debit domain.Debit
	rec, err := s.mutate(ctx, userID, func(rec *domain.AllowanceRecord, now time.Time) (bool, error) {
		Replenish(rec, now, s.cfg)
		d, err := PlanDebit(rec, amount, policy, grant, now, s.cfg)
		if err != nil {
			return false, err
		}
		ApplyDebit(rec, d, grant, now, s.cfg)
		debit = d
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info(LogMsgAllowanceConsumed,
		"user_id", userID,
		"policy", policy.Name,
		"timed", debit.Timed,
		"event", debit.Event,
		"named", debit.Named,
		"grant", debit.GrantLabel)

	view, err := s.view(ctx, rec)
	if err != nil {
		return nil, err
	}
	return &domain.ConsumeResult{Debit: debit, Allowance: *view}, nil
}

// Refund reverses a debit exactly
func (s *service) Refund(ctx context.Context, userID string, debit domain.Debit) error {
	if debit.IsZero() {
		return nil
	}
	_, err := s.mutate(ctx, userID, func(rec *domain.AllowanceRecord, now time.Time) (bool, error) {
		Replenish(rec, now, s.cfg)
		ApplyRefund(rec, debit, now, s.cfg)
		return true, nil
	})
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Info(LogMsgAllowanceRefunded,
		"user_id", userID,
		"timed", debit.Timed,
		"event", debit.Event,
		"named", debit.Named,
		"grant", debit.GrantLabel)
	return nil
}

func (s *service) view(ctx context.Context, rec *domain.AllowanceRecord) (*domain.AllowanceView, error) {
	now := s.clock.Now()
	next := NextRefillIn(rec, now, s.cfg)
	v := &domain.AllowanceView{
		UserID:       rec.UserID,
		TimedStock:   rec.TimedStock,
		MaxStock:     s.cfg.MaxStock,
		EventCredits: rec.EventCredits,
		NextRefillIn: next,
		NextRefillMS: next.Milliseconds(),
	}

	grants, err := s.repo.ListGrants(ctx, &now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgListGrantsFailed, err)
	}
	for i := range grants {
		g := &grants[i]
		v.Named = append(v.Named, domain.NamedBalance{
			Label:        g.Label,
			DisplayLabel: g.DisplayLabel,
			Remaining:    namedBalance(rec, g),
			ExpiresAt:    g.ExpiresAt,
		})
	}
	sort.Slice(v.Named, func(i, j int) bool { return v.Named[i].ExpiresAt.Before(v.Named[j].ExpiresAt) })
	return v, nil
}
