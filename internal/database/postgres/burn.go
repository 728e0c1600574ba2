package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/PullBot_Go/internal/domain"
	"github.com/osse101/PullBot_Go/internal/repository"
)

// BurnRepository implements repository.Burn for PostgreSQL
type BurnRepository struct {
	db *pgxpool.Pool
}

// NewBurnRepository creates a new BurnRepository
func NewBurnRepository(db *pgxpool.Pool) *BurnRepository {
	return &BurnRepository{db: db}
}

// BeginBurnTx opens the transaction a conversion commits in
func (r *BurnRepository) BeginBurnTx(ctx context.Context) (repository.BurnTx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToBeginTransaction, err)
	}
	return &burnTx{tx: tx}, nil
}

type burnTx struct {
	tx pgx.Tx
}

func (t *burnTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *burnTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

func (t *burnTx) GetStacksForUpdate(ctx context.Context, userID string, keys []domain.StackKey) ([]domain.InventoryStack, error) {
	return lockStacks(ctx, t.tx, userID, keys)
}

func (t *burnTx) RemoveFromStack(ctx context.Context, userID string, key domain.StackKey, count int) (int, error) {
	return applyDelta(ctx, t.tx, userID, key, -count, domain.StackMeta{})
}

func (t *burnTx) AddCards(ctx context.Context, userID string, cards []domain.Card, at time.Time) error {
	return addCards(ctx, t.tx, userID, cards, at)
}

func (t *burnTx) GetProgressionForUpdate(ctx context.Context, fresh domain.ProgressionState) (*domain.ProgressionState, error) {
	return lockProgression(ctx, t.tx, fresh)
}

func (t *burnTx) SaveProgression(ctx context.Context, state *domain.ProgressionState, newAwards []domain.AwardHistoryEntry) error {
	return saveProgression(ctx, t.tx, state, newAwards)
}

func (t *burnTx) AddEventCredits(ctx context.Context, fresh domain.AllowanceRecord, amount int) error {
	if amount <= 0 {
		return nil
	}
	if err := insertAllowance(ctx, t.tx, &fresh, amount); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToAddEventCredits, err)
	}
	return nil
}

func (t *burnTx) InsertAudit(ctx context.Context, rec *domain.AuditRecord) error {
	return insertAudit(ctx, t.tx, rec)
}
