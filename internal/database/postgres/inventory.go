package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/PullBot_Go/internal/domain"
	"github.com/osse101/PullBot_Go/internal/utils"
)

const stackColumns = `user_id, name, rarity, count, file, locked, first_acquired_at, last_acquired_at`

// InventoryRepository implements repository.Inventory for PostgreSQL
type InventoryRepository struct {
	db *pgxpool.Pool
}

// NewInventoryRepository creates a new InventoryRepository
func NewInventoryRepository(db *pgxpool.Pool) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// ApplyDelta changes one stack inside its own transaction
func (r *InventoryRepository) ApplyDelta(ctx context.Context, userID string, key domain.StackKey, delta int, meta domain.StackMeta) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToBeginTransaction, err)
	}
	defer SafeRollback(ctx, tx)

	count, err := applyDelta(ctx, tx, userID, key, delta, meta)
	if err != nil {
		return count, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToCommitTransaction, err)
	}
	return count, nil
}

// AddCards folds cards into stacks and writes them in one transaction
func (r *InventoryRepository) AddCards(ctx context.Context, userID string, cards []domain.Card, at time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToBeginTransaction, err)
	}
	defer SafeRollback(ctx, tx)

	if err := addCards(ctx, tx, userID, cards, at); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToCommitTransaction, err)
	}
	return nil
}

// ListStacks returns all of the user's stacks
func (r *InventoryRepository) ListStacks(ctx context.Context, userID string) ([]domain.InventoryStack, error) {
	query := `SELECT ` + stackColumns + ` FROM inventory_stacks WHERE user_id = $1 ORDER BY rarity, name`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListStacks, err)
	}
	return collectStacks(rows)
}

// SetLocked toggles the lock flag on one stack
func (r *InventoryRepository) SetLocked(ctx context.Context, userID string, key domain.StackKey, locked bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE inventory_stacks SET locked = $4 WHERE user_id = $1 AND name = $2 AND rarity = $3`,
		userID, key.Name, key.Rarity, locked)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToSetLocked, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStackNotFound
	}
	return nil
}

func collectStacks(rows pgx.Rows) ([]domain.InventoryStack, error) {
	defer rows.Close()
	var stacks []domain.InventoryStack
	for rows.Next() {
		var s domain.InventoryStack
		if err := rows.Scan(
			&s.UserID,
			&s.Name,
			&s.Rarity,
			&s.Count,
			&s.File,
			&s.Locked,
			&s.FirstAcquiredAt,
			&s.LastAcquiredAt,
		); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToScanStackRow, err)
		}
		stacks = append(stacks, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListStacks, err)
	}
	return stacks, nil
}

// applyDelta is the single-row stack mutation. Positive deltas upsert;
// negative deltas lock the row, refuse to go below zero and delete at zero.
func applyDelta(ctx context.Context, q querier, userID string, key domain.StackKey, delta int, meta domain.StackMeta) (int, error) {
	if delta == 0 {
		return 0, fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgZeroDelta)
	}
	if delta > 0 {
		at := meta.At
		if at.IsZero() {
			at = time.Now()
		}
		var count int
		err := q.QueryRow(ctx, `
			INSERT INTO inventory_stacks (user_id, name, rarity, count, file, first_acquired_at, last_acquired_at)
			VALUES ($1, $2, $3, $4, $5, $6, $6)
			ON CONFLICT (user_id, name, rarity) DO UPDATE
			SET count = inventory_stacks.count + EXCLUDED.count,
			    file = CASE WHEN inventory_stacks.file = '' THEN EXCLUDED.file ELSE inventory_stacks.file END,
			    last_acquired_at = EXCLUDED.last_acquired_at
			RETURNING count
		`, userID, key.Name, key.Rarity, delta, meta.File, at).Scan(&count)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", ErrMsgFailedToUpsertStack, err)
		}
		return count, nil
	}

	var have int
	err := q.QueryRow(ctx,
		`SELECT count FROM inventory_stacks WHERE user_id = $1 AND name = $2 AND rarity = $3 FOR UPDATE`,
		userID, key.Name, key.Rarity).Scan(&have)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s/%s", domain.ErrStackNotFound, key.Rarity, key.Name)
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToReadStack, err)
	}

	next := have + delta
	switch {
	case next < 0:
		return have, fmt.Errorf("%w: %s/%s has %d, need %d", domain.ErrInsufficientQuantity, key.Rarity, key.Name, have, -delta)
	case next == 0:
		if _, err := q.Exec(ctx,
			`DELETE FROM inventory_stacks WHERE user_id = $1 AND name = $2 AND rarity = $3`,
			userID, key.Name, key.Rarity); err != nil {
			return have, fmt.Errorf("%s: %w", ErrMsgFailedToDeleteStack, err)
		}
	default:
		if _, err := q.Exec(ctx,
			`UPDATE inventory_stacks SET count = $4 WHERE user_id = $1 AND name = $2 AND rarity = $3`,
			userID, key.Name, key.Rarity, next); err != nil {
			return have, fmt.Errorf("%s: %w", ErrMsgFailedToUpdateStack, err)
		}
	}
	return next, nil
}

func addCards(ctx context.Context, q querier, userID string, cards []domain.Card, at time.Time) error {
	for _, fs := range utils.FoldCards(cards) {
		if _, err := applyDelta(ctx, q, userID, fs.Key, fs.Count, domain.StackMeta{File: fs.File, At: at}); err != nil {
			return err
		}
	}
	return nil
}

// lockStacks returns the requested stacks that exist, locked for update.
// Rows are locked in key order so concurrent burns cannot deadlock.
func lockStacks(ctx context.Context, q querier, userID string, keys []domain.StackKey) ([]domain.InventoryStack, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	names := make([]string, len(keys))
	rarities := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.Name
		rarities[i] = k.Rarity
	}
	rows, err := q.Query(ctx, `
		SELECT `+stackColumns+`
		FROM inventory_stacks
		WHERE user_id = $1
		  AND (name, rarity) IN (SELECT * FROM unnest($2::text[], $3::text[]))
		ORDER BY name, rarity
		FOR UPDATE
	`, userID, names, rarities)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToLockStacks, err)
	}
	return collectStacks(rows)
}
