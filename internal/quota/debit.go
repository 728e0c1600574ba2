package quota

import (
	"fmt"
	"time"

	"github.com/osse101/PullBot_Go/internal/domain"
)

// namedBalance returns the user's remaining credits under grant, lazily
// treating a missing key as the grant's full per-user allotment.
func namedBalance(rec *domain.AllowanceRecord, grant *domain.NamedGrant) int {
	if grant == nil {
		return 0
	}
	if v, ok := rec.NamedCredits[grant.Label]; ok {
		return v
	}
	return grant.CreditsPerUser
}

func available(rec *domain.AllowanceRecord, kind domain.PoolKind, grant *domain.NamedGrant, now time.Time) int {
	switch kind {
	case domain.PoolTimed:
		return rec.TimedStock
	case domain.PoolEvent:
		return rec.EventCredits
	case domain.PoolNamed:
		if !grant.IsLive(now) {
			return 0
		}
		return namedBalance(rec, grant)
	default:
		return 0
	}
}

func addToDebit(d *domain.Debit, kind domain.PoolKind, n int) {
	switch kind {
	case domain.PoolTimed:
		d.Timed += n
	case domain.PoolEvent:
		d.Event += n
	case domain.PoolNamed:
		d.Named += n
	}
}

// PlanDebit decides how amount is split across pools without mutating rec.
// grant may be nil when the policy has no named pool or the label is unknown.
func PlanDebit(rec *domain.AllowanceRecord, amount int, policy Policy, grant *domain.NamedGrant, now time.Time, cfg Config) (domain.Debit, error) {
	if amount <= 0 {
		return domain.Debit{}, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidInput)
	}
	if len(policy.Order) == 0 {
		return domain.Debit{}, fmt.Errorf("%w: empty pool order", domain.ErrUnknownPolicy)
	}
	if policy.namedOnly() && !grant.IsLive(now) {
		return domain.Debit{}, fmt.Errorf("%w: %q", domain.ErrNoActiveGrant, policy.GrantLabel)
	}

	debit := domain.Debit{}
	if policy.usesNamed() && grant.IsLive(now) {
		debit.GrantLabel = grant.Label
	}

	if policy.AllowSplit {
		remaining := amount
		for _, kind := range policy.Order {
			take := min(available(rec, kind, grant, now), remaining)
			if take > 0 {
				addToDebit(&debit, kind, take)
				remaining -= take
			}
			if remaining == 0 {
				return debit, nil
			}
		}
		return domain.Debit{}, insufficient(rec, amount, remaining, grant, now, cfg)
	}

	best := 0
	for _, kind := range policy.Order {
		avail := available(rec, kind, grant, now)
		if avail >= amount {
			addToDebit(&debit, kind, amount)
			return debit, nil
		}
		best = max(best, avail)
	}
	return domain.Debit{}, insufficient(rec, amount, amount-best, grant, now, cfg)
}

func insufficient(rec *domain.AllowanceRecord, requested, shortfall int, grant *domain.NamedGrant, now time.Time, cfg Config) error {
	return &domain.InsufficientBalanceError{
		Requested:    requested,
		Shortfall:    shortfall,
		Timed:        rec.TimedStock,
		Event:        rec.EventCredits,
		Named:        available(rec, domain.PoolNamed, grant, now),
		NextRefillIn: NextRefillIn(rec, now, cfg),
	}
}

// ApplyDebit subtracts a planned debit. Draining the timed pool from full
// restarts the refill clock at now.
func ApplyDebit(rec *domain.AllowanceRecord, d domain.Debit, grant *domain.NamedGrant, now time.Time, cfg Config) {
	if d.Timed > 0 {
		if rec.TimedStock >= cfg.MaxStock {
			rec.LastRefillAt = now
		}
		rec.TimedStock -= d.Timed
	}
	rec.EventCredits -= d.Event
	if d.Named > 0 {
		if rec.NamedCredits == nil {
			rec.NamedCredits = map[string]int{}
		}
		rec.NamedCredits[d.GrantLabel] = namedBalance(rec, grant) - d.Named
	}
	rec.UpdatedAt = now
}

// ApplyRefund restores exactly the debited amounts, capping the timed pool.
func ApplyRefund(rec *domain.AllowanceRecord, d domain.Debit, now time.Time, cfg Config) {
	rec.TimedStock = min(cfg.MaxStock, rec.TimedStock+d.Timed)
	rec.EventCredits += d.Event
	if d.Named > 0 && d.GrantLabel != "" {
		if rec.NamedCredits == nil {
			rec.NamedCredits = map[string]int{}
		}
		rec.NamedCredits[d.GrantLabel] += d.Named
	}
	rec.UpdatedAt = now
}
