package domain

import "time"

// PoolKind identifies one of the independent allowance sources
type PoolKind string

const (
	PoolTimed PoolKind = "timed"
	PoolEvent PoolKind = "event"
	PoolNamed PoolKind = "named"
)

// WildcardTarget addresses every allowance record in a date-keyed grant
const WildcardTarget = "*"

// AllowanceRecord is the per-user multi-pool allowance.
// Version is the optimistic concurrency token used by conditional writes.
type AllowanceRecord struct {
	UserID                string         `json:"user_id"`
	TimedStock            int            `json:"timed_stock"`
	LastRefillAt          time.Time      `json:"last_refill_at"`
	EventCredits          int            `json:"event_credits"`
	NamedCredits          map[string]int `json:"named_credits"`
	LastBirthdayGrantYear *int           `json:"last_birthday_grant_year,omitempty"`
	Version               int64          `json:"-"`
	UpdatedAt             time.Time      `json:"updated_at"`
}

// Clone returns a deep copy so callers can mutate without aliasing the named map
func (r *AllowanceRecord) Clone() *AllowanceRecord {
	c := *r
	c.NamedCredits = make(map[string]int, len(r.NamedCredits))
	for k, v := range r.NamedCredits {
		c.NamedCredits[k] = v
	}
	if r.LastBirthdayGrantYear != nil {
		y := *r.LastBirthdayGrantYear
		c.LastBirthdayGrantYear = &y
	}
	return &c
}

// NamedGrant is a time-boxed special allowance definition
type NamedGrant struct {
	Label          string    `json:"label"`
	DisplayLabel   string    `json:"display_label"`
	CreditsPerUser int       `json:"credits_per_user"`
	CreatedBy      string    `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	Active         bool      `json:"active"`
}

// IsLive reports whether the grant can still be consumed at now.
// Expiry is checked independently of the active flag.
func (g *NamedGrant) IsLive(now time.Time) bool {
	return g != nil && g.Active && now.Before(g.ExpiresAt)
}

// Debit records exactly how many units were taken from each pool
type Debit struct {
	Timed      int    `json:"timed"`
	Event      int    `json:"event"`
	Named      int    `json:"named"`
	GrantLabel string `json:"grant_label,omitempty"`
}

// Total returns the number of units debited across all pools
func (d Debit) Total() int {
	return d.Timed + d.Event + d.Named
}

// IsZero reports whether nothing was debited
func (d Debit) IsZero() bool {
	return d.Total() == 0
}

// NamedBalance is one user's remaining credits under a live grant
type NamedBalance struct {
	Label        string    `json:"label"`
	DisplayLabel string    `json:"display_label"`
	Remaining    int       `json:"remaining"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AllowanceView is the read model returned for inquiries and after debits
type AllowanceView struct {
	UserID       string         `json:"user_id"`
	TimedStock   int            `json:"timed_stock"`
	MaxStock     int            `json:"max_stock"`
	EventCredits int            `json:"event_credits"`
	Named        []NamedBalance `json:"named,omitempty"`
	NextRefillIn time.Duration  `json:"-"`
	NextRefillMS int64          `json:"next_refill_in_ms"`
}

// ConsumeResult is returned by a successful debit
type ConsumeResult struct {
	Debit     Debit         `json:"debit"`
	Allowance AllowanceView `json:"allowance"`
}

// GrantClaim is the uniqueness record behind an idempotent date-keyed grant
type GrantClaim struct {
	DateKey   string    `json:"date_key"`
	Target    string    `json:"target"`
	Credits   int       `json:"credits"`
	ClaimedAt time.Time `json:"claimed_at"`
}

// DateGrantResult reports whether a date-keyed grant was applied by this call
type DateGrantResult struct {
	DateKey         string `json:"date_key"`
	Target          string `json:"target"`
	Claimed         bool   `json:"claimed"`
	RecordsAffected int64  `json:"records_affected"`
}
