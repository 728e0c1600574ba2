package ledger

import (
	"fmt"
	"time"

	"github.com/osse101/PullBot_Go/internal/domain"
)

// Result is the outcome of one experience application
type Result struct {
	State        domain.ProgressionState
	Events       []domain.CascadeEvent
	NewAwards    []domain.AwardHistoryEntry
	LevelsGained int
}

// Eligible reports whether m fires when character reaches level
func Eligible(m domain.Milestone, level int, character string) bool {
	if !m.Enabled || !m.AppliesTo(character) {
		return false
	}
	if level == m.TriggerLevel {
		return true
	}
	return m.RepeatEvery > 0 && level >= m.TriggerLevel && (level-m.TriggerLevel)%m.RepeatEvery == 0
}

// ApplyExperience adds xpDelta to state and resolves every level-up it causes,
// one level per iteration. Milestones are evaluated at each new level in
// catalog order. A one-time milestone already in AwardedOneTime never fires
// again. The input state is not modified.
func ApplyExperience(state domain.ProgressionState, xpDelta int, catalog []domain.Milestone, growth Growth, now time.Time) (Result, error) {
	if xpDelta < 0 {
		return Result{}, fmt.Errorf("%w: negative experience %d", domain.ErrInvalidInput, xpDelta)
	}

	next := state.Clone()
	if next.AwardedOneTime == nil {
		next.AwardedOneTime = map[string]bool{}
	}
	if next.AwardCounts == nil {
		next.AwardCounts = map[string]int{}
	}
	if next.Level < StartingLevel {
		next.Level = StartingLevel
	}
	if next.XPToNext <= 0 {
		next.XPToNext = growth.XPToNext(next.Level)
	}

	res := Result{}
	next.XP += xpDelta

	for iterations := 0; next.XP >= next.XPToNext; iterations++ {
		if iterations >= MaxCascadeIterations {
			return Result{}, fmt.Errorf("%w: exceeded %d level-ups (level=%d xp=%d)", domain.ErrCascadeLimit, MaxCascadeIterations, next.Level, next.XP)
		}
		if next.XPToNext <= 0 {
			return Result{}, fmt.Errorf("%w: non-positive xpToNext %d at level %d", domain.ErrCascadeLimit, next.XPToNext, next.Level)
		}

		next.XP -= next.XPToNext
		next.Level++
		next.XPToNext = growth.XPToNext(next.Level)
		res.LevelsGained++

		for _, m := range catalog {
			if !Eligible(m, next.Level, next.Character) {
				continue
			}
			if m.OneTime && next.AwardedOneTime[m.ID] {
				continue
			}

			entry := domain.AwardHistoryEntry{MilestoneID: m.ID, Level: next.Level, GrantedAt: now, Award: m.Award}
			next.AwardHistory = append(next.AwardHistory, entry)
			next.AwardCounts[m.ID]++
			if m.OneTime {
				next.AwardedOneTime[m.ID] = true
			}

			res.NewAwards = append(res.NewAwards, entry)
			res.Events = append(res.Events, domain.CascadeEvent{
				MilestoneID: m.ID,
				Level:       next.Level,
				Award:       m.Award,
				Description: describe(m),
			})
		}
	}

	next.UpdatedAt = now
	res.State = next
	return res, nil
}

func describe(m domain.Milestone) string {
	switch {
	case m.Description != "":
		return m.Description
	case m.Award != nil:
		return m.Award.Describe()
	default:
		return m.ID
	}
}
