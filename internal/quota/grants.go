package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/osse101/PullBot_Go/internal/domain"
	"github.com/osse101/PullBot_Go/internal/logger"
)

// CreateGrant registers a new time-boxed named grant
func (s *service) CreateGrant(ctx context.Context, grant domain.NamedGrant) (*domain.NamedGrant, error) {
	now := s.clock.Now()
	grant.Label = NormalizeLabel(grant.Label)
	if grant.Label == "" {
		return nil, fmt.Errorf("%w: grant label is required", domain.ErrInvalidInput)
	}
	if grant.CreditsPerUser <= 0 {
		return nil, fmt.Errorf("%w: credits per user must be positive", domain.ErrInvalidInput)
	}
	if !grant.ExpiresAt.After(now) {
		return nil, fmt.Errorf("%w: grant must expire in the future", domain.ErrInvalidInput)
	}
	if grant.DisplayLabel == "" {
		grant.DisplayLabel = grant.Label
	}
	grant.CreatedAt = now
	grant.Active = true

	if err := s.repo.CreateGrant(ctx, &grant); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info(LogMsgGrantCreated,
		"label", grant.Label,
		"credits_per_user", grant.CreditsPerUser,
		"expires_at", grant.ExpiresAt,
		"created_by", grant.CreatedBy)
	return &grant, nil
}

// DeactivateGrant stops further consumption of a grant
func (s *service) DeactivateGrant(ctx context.Context, label string) error {
	label = NormalizeLabel(label)
	if err := s.repo.DeactivateGrant(ctx, label); err != nil {
		return err
	}
	logger.FromContext(ctx).Info(LogMsgGrantDeactivated, "label", label)
	return nil
}

// ListActiveGrants returns grants that are active and unexpired right now
func (s *service) ListActiveGrants(ctx context.Context) ([]domain.NamedGrant, error) {
	now := s.clock.Now()
	grants, err := s.repo.ListGrants(ctx, &now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgListGrantsFailed, err)
	}
	return grants, nil
}

// GrantForDate adds credits to target's event pool once per dateKey. Repeated
// calls with the same (dateKey, target) are no-ops. target may be
// domain.WildcardTarget to credit every existing record.
func (s *service) GrantForDate(ctx context.Context, dateKey, target string, credits int) (*domain.DateGrantResult, error) {
	if dateKey == "" || target == "" {
		return nil, fmt.Errorf("%w: date key and target are required", domain.ErrInvalidInput)
	}
	if credits <= 0 {
		return nil, fmt.Errorf("%w: credits must be positive", domain.ErrInvalidInput)
	}

	now := s.clock.Now()
	claim := domain.GrantClaim{DateKey: dateKey, Target: target, Credits: credits, ClaimedAt: now}
	fresh := NewRecord(target, now, s.cfg)

	claimed, affected, err := s.repo.ClaimDateGrant(ctx, claim, *fresh)
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)
	if claimed {
		log.Info(LogMsgDateGrantClaimed, "date_key", dateKey, "target", target, "credits", credits, "records", affected)
	} else {
		log.Info(LogMsgDateGrantAlreadyTaken, "date_key", dateKey, "target", target)
	}
	return &domain.DateGrantResult{DateKey: dateKey, Target: target, Claimed: claimed, RecordsAffected: affected}, nil
}

// GrantBirthday adds credits at most once per calendar year per user
func (s *service) GrantBirthday(ctx context.Context, userID string, year, credits int) (bool, error) {
	if credits <= 0 {
		return false, fmt.Errorf("%w: credits must be positive", domain.ErrInvalidInput)
	}
	granted := false
	_, err := s.mutate(ctx, userID, func(rec *domain.AllowanceRecord, now time.Time) (bool, error) {
		granted = false
		if rec.LastBirthdayGrantYear != nil && *rec.LastBirthdayGrantYear >= year {
			return false, nil
		}
		y := year
		rec.LastBirthdayGrantYear = &y
		rec.EventCredits += credits
		rec.UpdatedAt = now
		granted = true
		return true, nil
	})
	if err != nil {
		return false, err
	}
	if granted {
		logger.FromContext(ctx).Info(LogMsgBirthdayGranted, "user_id", userID, "year", year, "credits", credits)
	}
	return granted, nil
}
