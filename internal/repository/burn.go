package repository

import (
	"context"
	"time"

	"github.com/osse101/PullBot_Go/internal/domain"
)

// Burn opens the single transaction a bulk conversion runs in
type Burn interface {
	BeginBurnTx(ctx context.Context) (BurnTx, error)
}

// BurnTx is every write a bulk conversion needs, bound to one transaction
type BurnTx interface {
	Tx
	// GetStacksForUpdate locks and returns the requested stacks that exist
	GetStacksForUpdate(ctx context.Context, userID string, keys []domain.StackKey) ([]domain.InventoryStack, error)
	RemoveFromStack(ctx context.Context, userID string, key domain.StackKey, count int) (int, error)
	AddCards(ctx context.Context, userID string, cards []domain.Card, at time.Time) error
	// GetProgressionForUpdate locks the row, creating it from fresh when absent
	GetProgressionForUpdate(ctx context.Context, fresh domain.ProgressionState) (*domain.ProgressionState, error)
	SaveProgression(ctx context.Context, state *domain.ProgressionState, newAwards []domain.AwardHistoryEntry) error
	// AddEventCredits credits the event pool, creating the allowance from fresh when absent
	AddEventCredits(ctx context.Context, fresh domain.AllowanceRecord, amount int) error
	InsertAudit(ctx context.Context, rec *domain.AuditRecord) error
}
