package quota

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/PullBot_Go/internal/domain"
)

func liveGrant(now time.Time) *domain.NamedGrant {
	return &domain.NamedGrant{
		Label:          "summer",
		CreditsPerUser: 3,
		Active:         true,
		ExpiresAt:      now.Add(24 * time.Hour),
	}
}

func TestPlanDebit_EventThenTimed(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rec := &domain.AllowanceRecord{TimedStock: 0, EventCredits: 3, LastRefillAt: now}

	d, err := PlanDebit(rec, 1, EventThenTimed(), nil, now, testCfg)
	require.NoError(t, err)
	ApplyDebit(rec, d, nil, now, testCfg)

	assert.Equal(t, domain.Debit{Event: 1}, d)
	assert.Equal(t, 2, rec.EventCredits)
	assert.Equal(t, 0, rec.TimedStock)
}

func TestPlanDebit_SplitAcrossPools(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rec := &domain.AllowanceRecord{TimedStock: 5, EventCredits: 2, LastRefillAt: now}

	d, err := PlanDebit(rec, 4, EventThenTimed(), nil, now, testCfg)
	require.NoError(t, err)
	assert.Equal(t, domain.Debit{Event: 2, Timed: 2}, d)
}

func TestPlanDebit_AllOrNothing(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rec := &domain.AllowanceRecord{TimedStock: 1, EventCredits: 1, LastRefillAt: now}
	before := *rec

	_, err := PlanDebit(rec, 3, EventThenTimed(), nil, now, testCfg)

	var insufficient *domain.InsufficientBalanceError
	require.ErrorAs(t, err, &insufficient)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.Equal(t, 1, insufficient.Shortfall)
	assert.Equal(t, before, *rec)
}

func TestPlanDebit_NoSplitNeedsSinglePool(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rec := &domain.AllowanceRecord{TimedStock: 1, EventCredits: 1, LastRefillAt: now}

	_, err := PlanDebit(rec, 2, BestAvailable(""), nil, now, testCfg)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	d, err := PlanDebit(rec, 1, BestAvailable(""), nil, now, testCfg)
	require.NoError(t, err)
	assert.Equal(t, domain.Debit{Event: 1}, d, "event credits are preferred over timed stock")
}

func TestPlanDebit_NamedGrant(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("lazily initialised balance", func(t *testing.T) {
		rec := &domain.AllowanceRecord{NamedCredits: map[string]int{}}
		grant := liveGrant(now)

		d, err := PlanDebit(rec, 1, NamedOnly("summer"), grant, now, testCfg)
		require.NoError(t, err)
		ApplyDebit(rec, d, grant, now, testCfg)

		assert.Equal(t, domain.Debit{Named: 1, GrantLabel: "summer"}, d)
		assert.Equal(t, 2, rec.NamedCredits["summer"])
	})

	t.Run("expired grant is not consumable even if active", func(t *testing.T) {
		rec := &domain.AllowanceRecord{TimedStock: 12}
		grant := liveGrant(now)
		grant.ExpiresAt = now.Add(-time.Second)

		_, err := PlanDebit(rec, 1, NamedOnly("summer"), grant, now, testCfg)
		assert.ErrorIs(t, err, domain.ErrNoActiveGrant)
		assert.False(t, errors.Is(err, domain.ErrInsufficientBalance))
	})

	t.Run("inactive grant", func(t *testing.T) {
		grant := liveGrant(now)
		grant.Active = false
		_, err := PlanDebit(&domain.AllowanceRecord{}, 1, NamedOnly("summer"), grant, now, testCfg)
		assert.ErrorIs(t, err, domain.ErrNoActiveGrant)
	})

	t.Run("exhausted balance is insufficient", func(t *testing.T) {
		rec := &domain.AllowanceRecord{NamedCredits: map[string]int{"summer": 0}}
		_, err := PlanDebit(rec, 1, NamedOnly("summer"), liveGrant(now), now, testCfg)
		assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	})

	t.Run("best available falls through a dead grant", func(t *testing.T) {
		rec := &domain.AllowanceRecord{TimedStock: 4, LastRefillAt: now}
		d, err := PlanDebit(rec, 1, BestAvailable("summer"), nil, now, testCfg)
		require.NoError(t, err)
		assert.Equal(t, domain.Debit{Timed: 1}, d)
	})
}

func TestRefund_RestoresExactAmounts(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	grant := liveGrant(now)
	rec := &domain.AllowanceRecord{TimedStock: 6, EventCredits: 2, NamedCredits: map[string]int{}, LastRefillAt: now}

	d, err := PlanDebit(rec, 5, Policy{Order: []domain.PoolKind{domain.PoolNamed, domain.PoolEvent, domain.PoolTimed}, GrantLabel: "summer", AllowSplit: true}, grant, now, testCfg)
	require.NoError(t, err)
	assert.Equal(t, domain.Debit{Named: 3, Event: 2, GrantLabel: "summer"}, d)

	ApplyDebit(rec, d, grant, now, testCfg)
	ApplyRefund(rec, d, now, testCfg)

	assert.Equal(t, 6, rec.TimedStock)
	assert.Equal(t, 2, rec.EventCredits)
	assert.Equal(t, 3, rec.NamedCredits["summer"])
}

func TestRefund_CapsTimedStock(t *testing.T) {
	rec := &domain.AllowanceRecord{TimedStock: 11}
	ApplyRefund(rec, domain.Debit{Timed: 3}, time.Now(), testCfg)
	assert.Equal(t, 12, rec.TimedStock)
}

// Random debit/refund sequences never push a pool outside its bounds.
func TestDebitRefund_BoundsHold(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rec := &domain.AllowanceRecord{TimedStock: 12, EventCredits: 4, LastRefillAt: now}
	policies := []Policy{TimedOnly(), EventOnly(), EventThenTimed(), BestAvailable("")}

	var history []domain.Debit
	for i := 0; i < 2000; i++ {
		now = now.Add(time.Duration(rng.Intn(40)) * time.Minute)
		Replenish(rec, now, testCfg)

		if rng.Intn(3) > 0 || len(history) == 0 {
			d, err := PlanDebit(rec, 1+rng.Intn(3), policies[rng.Intn(len(policies))], nil, now, testCfg)
			if err == nil {
				ApplyDebit(rec, d, nil, now, testCfg)
				history = append(history, d)
			}
		} else {
			last := history[len(history)-1]
			history = history[:len(history)-1]
			ApplyRefund(rec, last, now, testCfg)
		}

		require.GreaterOrEqual(t, rec.TimedStock, 0)
		require.LessOrEqual(t, rec.TimedStock, testCfg.MaxStock)
		require.GreaterOrEqual(t, rec.EventCredits, 0)
	}
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("", "")
	require.NoError(t, err)
	assert.Equal(t, PolicyNameBest, p.Name)

	p, err = ParsePolicy("EVENT_THEN_TIMED", "")
	require.NoError(t, err)
	assert.True(t, p.AllowSplit)

	_, err = ParsePolicy("named", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = ParsePolicy("named", "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	p, err = ParsePolicy("named", " Summer ")
	require.NoError(t, err)
	assert.Equal(t, "summer", p.GrantLabel)

	p, err = ParsePolicy("best", "Summer")
	require.NoError(t, err)
	assert.Equal(t, "summer", p.GrantLabel)

	_, err = ParsePolicy("bogus", "")
	assert.ErrorIs(t, err, domain.ErrUnknownPolicy)
}
