package domain

import (
	"fmt"
	"time"
)

// CompareOp is a stack-size comparison operator used by burn filters
type CompareOp string

const (
	OpGreaterThan    CompareOp = "gt"
	OpGreaterOrEqual CompareOp = "gte"
	OpLessThan       CompareOp = "lt"
	OpLessOrEqual    CompareOp = "lte"
	OpEqual          CompareOp = "eq"
)

// Compare applies the operator to (count, threshold)
func (op CompareOp) Compare(count, threshold int) (bool, error) {
	switch op {
	case OpGreaterThan:
		return count > threshold, nil
	case OpGreaterOrEqual:
		return count >= threshold, nil
	case OpLessThan:
		return count < threshold, nil
	case OpLessOrEqual:
		return count <= threshold, nil
	case OpEqual:
		return count == threshold, nil
	default:
		return false, fmt.Errorf("%w: unknown comparison operator %q", ErrInvalidInput, op)
	}
}

// StackFilter selects stacks for listing and bulk conversion.
// A zero value matches every unlocked stack.
type StackFilter struct {
	Rarities      []string  `json:"rarities,omitempty"`
	Op            CompareOp `json:"op,omitempty"`
	Threshold     int       `json:"threshold,omitempty"`
	IncludeLocked bool      `json:"include_locked,omitempty"`
}

// BurnRequest describes a bulk conversion. Either Items names explicit
// removals, or Filter selects stacks and Keep copies of each are retained.
type BurnRequest struct {
	UserID    string         `json:"user_id"`
	Character string         `json:"character"`
	Filter    StackFilter    `json:"filter"`
	Keep      int            `json:"keep"`
	Items     []StackRemoval `json:"items,omitempty"`
}

// BurnPreview is the uncommitted result of a bulk-conversion request
type BurnPreview struct {
	Token       string         `json:"token"`
	UserID      string         `json:"user_id"`
	Character   string         `json:"character"`
	Removals    []StackRemoval `json:"-"`
	AllowLocked bool           `json:"-"`
	TotalCount  int            `json:"total_count"`
	TotalXP     int            `json:"total_xp"`
	Sample      []StackRemoval `json:"sample"`
	CreatedAt   time.Time      `json:"created_at"`
	ExpiresAt   time.Time      `json:"expires_at"`
}

// MilestoneGrant describes one milestone that fired during a burn
type MilestoneGrant struct {
	MilestoneID string `json:"milestone_id"`
	Level       int    `json:"level"`
	Description string `json:"description"`
}

// BurnResult is the committed outcome of a bulk conversion
type BurnResult struct {
	AuditID        string           `json:"audit_id"`
	CardsRemoved   int              `json:"cards_removed"`
	XPGained       int              `json:"xp_gained"`
	PreviousLevel  int              `json:"previous_level"`
	NewLevel       int              `json:"new_level"`
	LevelsGained   int              `json:"levels_gained"`
	XP             int              `json:"xp"`
	XPToNext       int              `json:"xp_to_next"`
	CardsMinted    []Card           `json:"cards_minted,omitempty"`
	CreditsGranted int              `json:"credits_granted"`
	Milestones     []MilestoneGrant `json:"milestones,omitempty"`
}

// Audit kinds
const (
	AuditKindBurn         = "burn"
	AuditKindPullRefund   = "pull_refund"
	AuditKindRefundFailed = "refund_failed"
)

// AuditRecord is an append-only record of a committed conversion or a
// compensating action. Reversal marks records that undo an earlier effect.
type AuditRecord struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	Kind         string         `json:"kind"`
	Character    string         `json:"character,omitempty"`
	Removed      []StackRemoval `json:"removed,omitempty"`
	Added        []Card         `json:"added,omitempty"`
	CreditsAdded int            `json:"credits_added"`
	XPGained     int            `json:"xp_gained"`
	LevelBefore  int            `json:"level_before"`
	LevelAfter   int            `json:"level_after"`
	Debit        *Debit         `json:"debit,omitempty"`
	Reversal     bool           `json:"reversal"`
	Note         string         `json:"note,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}
