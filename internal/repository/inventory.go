package repository

import (
	"context"
	"time"

	"github.com/osse101/PullBot_Go/internal/domain"
)

// Inventory defines the data access interface for card stacks
type Inventory interface {
	// ApplyDelta adds delta to the stack, creating it if absent. Negative deltas
	// fail with domain.ErrInsufficientQuantity rather than going below zero and
	// delete the stack when it reaches zero.
	ApplyDelta(ctx context.Context, userID string, key domain.StackKey, delta int, meta domain.StackMeta) (int, error)
	// AddCards folds a whole draw into the user's stacks in one transaction
	AddCards(ctx context.Context, userID string, cards []domain.Card, at time.Time) error
	ListStacks(ctx context.Context, userID string) ([]domain.InventoryStack, error)
	SetLocked(ctx context.Context, userID string, key domain.StackKey, locked bool) error
}
