package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Award kinds as they appear in configuration and storage
const (
	AwardKindCredit = "experience-credit"
	AwardKindCard   = "card"
)

// MilestoneAward is the closed set of things a milestone can grant:
// CreditAward or CardAward.
type MilestoneAward interface {
	Kind() string
	Describe() string
	isMilestoneAward()
}

// CreditAward adds pull credits to the owner's event pool
type CreditAward struct {
	Amount int
}

func (CreditAward) Kind() string { return AwardKindCredit }

func (a CreditAward) Describe() string {
	return fmt.Sprintf("%d pull credit(s)", a.Amount)
}

func (CreditAward) isMilestoneAward() {}

// CardAward mints Count cards sampled from the named asset pool
type CardAward struct {
	Pool  string
	Count int
}

func (CardAward) Kind() string { return AwardKindCard }

func (a CardAward) Describe() string {
	return fmt.Sprintf("%d %s card(s)", a.Count, a.Pool)
}

func (CardAward) isMilestoneAward() {}

// awardWire is the tagged JSON shape of a MilestoneAward
type awardWire struct {
	Kind   string `json:"kind"`
	Amount int    `json:"amount,omitempty"`
	Pool   string `json:"pool,omitempty"`
	Count  int    `json:"count,omitempty"`
}

// EncodeAward serializes an award into its tagged JSON form
func EncodeAward(a MilestoneAward) ([]byte, error) {
	switch v := a.(type) {
	case CreditAward:
		return json.Marshal(awardWire{Kind: AwardKindCredit, Amount: v.Amount})
	case CardAward:
		return json.Marshal(awardWire{Kind: AwardKindCard, Pool: v.Pool, Count: v.Count})
	default:
		return nil, fmt.Errorf("%w: unsupported award type %T", ErrInvalidInput, a)
	}
}

// DecodeAward parses the tagged JSON form produced by EncodeAward
func DecodeAward(data []byte) (MilestoneAward, error) {
	var w awardWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: award: %v", ErrInvalidInput, err)
	}
	switch w.Kind {
	case AwardKindCredit:
		if w.Amount <= 0 {
			return nil, fmt.Errorf("%w: credit award amount must be positive", ErrInvalidInput)
		}
		return CreditAward{Amount: w.Amount}, nil
	case AwardKindCard:
		if w.Pool == "" || w.Count <= 0 {
			return nil, fmt.Errorf("%w: card award needs a pool and a positive count", ErrInvalidInput)
		}
		return CardAward{Pool: w.Pool, Count: w.Count}, nil
	default:
		return nil, fmt.Errorf("%w: unknown award kind %q", ErrInvalidInput, w.Kind)
	}
}

// Milestone is a catalog rule granting an award when a level condition holds.
// Priority is carried as metadata only; it does not order or filter firings.
type Milestone struct {
	ID           string         `json:"id"`
	TriggerLevel int            `json:"trigger_level"`
	Character    *string        `json:"character,omitempty"`
	Award        MilestoneAward `json:"-"`
	RepeatEvery  int            `json:"repeat_every"`
	OneTime      bool           `json:"one_time"`
	Enabled      bool           `json:"enabled"`
	Priority     int            `json:"priority"`
	Description  string         `json:"description,omitempty"`
}

type milestoneAlias Milestone

type milestoneWire struct {
	milestoneAlias
	Award json.RawMessage `json:"award"`
}

func (m Milestone) MarshalJSON() ([]byte, error) {
	award, err := EncodeAward(m.Award)
	if err != nil {
		return nil, err
	}
	return json.Marshal(milestoneWire{milestoneAlias: milestoneAlias(m), Award: award})
}

func (m *Milestone) UnmarshalJSON(data []byte) error {
	var w milestoneWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	award, err := DecodeAward(w.Award)
	if err != nil {
		return fmt.Errorf("milestone %q: %w", w.ID, err)
	}
	*m = Milestone(w.milestoneAlias)
	m.Award = award
	return nil
}

// AppliesTo reports whether the milestone's character scope covers character
func (m Milestone) AppliesTo(character string) bool {
	return m.Character == nil || *m.Character == character
}

// AwardHistoryEntry is one append-only record of a milestone firing
type AwardHistoryEntry struct {
	MilestoneID string         `json:"milestone_id"`
	Level       int            `json:"level"`
	GrantedAt   time.Time      `json:"granted_at"`
	Award       MilestoneAward `json:"-"`
}

type historyAlias AwardHistoryEntry

type historyWire struct {
	historyAlias
	Award json.RawMessage `json:"award"`
}

func (h AwardHistoryEntry) MarshalJSON() ([]byte, error) {
	award, err := EncodeAward(h.Award)
	if err != nil {
		return nil, err
	}
	return json.Marshal(historyWire{historyAlias: historyAlias(h), Award: award})
}

func (h *AwardHistoryEntry) UnmarshalJSON(data []byte) error {
	var w historyWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	award, err := DecodeAward(w.Award)
	if err != nil {
		return err
	}
	*h = AwardHistoryEntry(w.historyAlias)
	h.Award = award
	return nil
}

// ProgressionState is the leveling record for one (user, character) pair
type ProgressionState struct {
	UserID         string              `json:"user_id"`
	Character      string              `json:"character"`
	Level          int                 `json:"level"`
	XP             int                 `json:"xp"`
	XPToNext       int                 `json:"xp_to_next"`
	AwardedOneTime map[string]bool     `json:"awarded_one_time"`
	AwardCounts    map[string]int      `json:"award_counts"`
	AwardHistory   []AwardHistoryEntry `json:"award_history,omitempty"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// Clone returns a deep copy of the state
func (p ProgressionState) Clone() ProgressionState {
	c := p
	c.AwardedOneTime = make(map[string]bool, len(p.AwardedOneTime))
	for k, v := range p.AwardedOneTime {
		c.AwardedOneTime[k] = v
	}
	c.AwardCounts = make(map[string]int, len(p.AwardCounts))
	for k, v := range p.AwardCounts {
		c.AwardCounts[k] = v
	}
	c.AwardHistory = append([]AwardHistoryEntry(nil), p.AwardHistory...)
	return c
}

// CascadeEvent is a side-effect instruction emitted by the ledger.
// The ledger never applies these itself.
type CascadeEvent struct {
	MilestoneID string         `json:"milestone_id"`
	Level       int            `json:"level"`
	Award       MilestoneAward `json:"-"`
	Description string         `json:"description"`
}
