package pull

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/osse101/PullBot_Go/internal/clock"
	"github.com/osse101/PullBot_Go/internal/concurrency"
	"github.com/osse101/PullBot_Go/internal/domain"
	"github.com/osse101/PullBot_Go/internal/draw"
	"github.com/osse101/PullBot_Go/internal/event"
	"github.com/osse101/PullBot_Go/internal/inventory"
	"github.com/osse101/PullBot_Go/internal/logger"
	"github.com/osse101/PullBot_Go/internal/metrics"
	"github.com/osse101/PullBot_Go/internal/quota"
	"github.com/osse101/PullBot_Go/internal/repository"
)

// Service runs a single draw: debit, draw, persist, refund on failure
type Service interface {
	Pull(ctx context.Context, req domain.PullRequest) (*domain.PullResult, error)
}

type service struct {
	quota     quota.Service
	drawer    draw.Drawer
	inventory inventory.Service
	audit     repository.Audit
	publisher event.Publisher
	locks     *concurrency.LockManager
	clock     clock.Clock
}

// NewService creates a new pull service. publisher may be nil.
func NewService(q quota.Service, d draw.Drawer, inv inventory.Service, audit repository.Audit, publisher event.Publisher, locks *concurrency.LockManager, clk clock.Clock) Service {
	if locks == nil {
		locks = concurrency.NewLockManager()
	}
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &service{
		quota:     q,
		drawer:    d,
		inventory: inv,
		audit:     audit,
		publisher: publisher,
		locks:     locks,
		clock:     clk,
	}
}

func (s *service) Pull(ctx context.Context, req domain.PullRequest) (*domain.PullResult, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgUserIDRequired)
	}
	policy, err := quota.ParsePolicy(req.Policy, req.GrantLabel)
	if err != nil {
		return nil, err
	}

	// Serializes draws for one user inside this process; the conditional
	// allowance write covers concurrent processes.
	release, err := s.locks.Acquire(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	defer release()

	consumed, err := s.quota.Consume(ctx, req.UserID, UnitsPerPull, policy)
	if err != nil {
		return nil, err
	}

	cards, err := s.drawer.Draw(ctx, req.UserID, req.CohortOverride)
	if err != nil {
		err = fmt.Errorf("%s: %w", ErrMsgDrawFailed, err)
		s.refund(ctx, req.UserID, consumed.Debit, err)
		return nil, err
	}

	if err := s.inventory.AddCards(ctx, req.UserID, cards); err != nil {
		err = fmt.Errorf("%s: %w", ErrMsgPersistFailed, err)
		s.refund(ctx, req.UserID, consumed.Debit, err)
		return nil, err
	}

	logger.FromContext(ctx).Info(LogMsgPullCompleted,
		"user_id", req.UserID,
		"cards", len(cards),
		"timed", consumed.Debit.Timed,
		"event", consumed.Debit.Event,
		"named", consumed.Debit.Named)

	s.publish(ctx, event.NewPullCompletedEvent(req.UserID, cards, consumed.Debit, req.Source))

	return &domain.PullResult{
		Cards:     cards,
		Debit:     consumed.Debit,
		Allowance: consumed.Allowance,
	}, nil
}

// refund returns a debit after a later stage failed. It runs detached from
// the request's cancellation and never fails the caller; a lost refund is
// recorded as refund_failed instead.
func (s *service) refund(ctx context.Context, userID string, debit domain.Debit, cause error) {
	ctx = context.WithoutCancel(ctx)
	log := logger.FromContext(ctx)
	log.Warn(LogMsgPullFailed, "user_id", userID, "error", cause)

	rec := &domain.AuditRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		Debit:     &debit,
		Note:      cause.Error(),
		CreatedAt: s.clock.Now(),
	}

	if err := s.quota.Refund(ctx, userID, debit); err != nil {
		log.Error(LogMsgRefundFailed,
			"user_id", userID,
			"timed", debit.Timed,
			"event", debit.Event,
			"named", debit.Named,
			"grant", debit.GrantLabel,
			"cause", cause,
			"error", err)
		rec.Kind = domain.AuditKindRefundFailed
		rec.Note = fmt.Sprintf("%s; refund error: %v", cause, err)
		s.writeAudit(ctx, rec)
		s.publish(ctx, event.NewRefundFailedEvent(userID, debit, cause, err))
		return
	}

	metrics.RefundsTotal.WithLabelValues(metrics.OutcomeRefunded).Inc()
	log.Info(LogMsgRefundApplied, "user_id", userID, "units", debit.Total())
	rec.Kind = domain.AuditKindPullRefund
	rec.Reversal = true
	s.writeAudit(ctx, rec)
}

func (s *service) writeAudit(ctx context.Context, rec *domain.AuditRecord) {
	if s.audit == nil {
		return
	}
	if err := s.audit.InsertAudit(ctx, rec); err != nil {
		logger.FromContext(ctx).Error(LogMsgAuditWriteFailed, "user_id", rec.UserID, "kind", rec.Kind, "error", err)
	}
}

func (s *service) publish(ctx context.Context, evt event.Event) {
	if s.publisher != nil {
		s.publisher.PublishWithRetry(ctx, evt)
	}
}
