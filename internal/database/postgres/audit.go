package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/PullBot_Go/internal/domain"
)

// AuditRepository implements repository.Audit for PostgreSQL
type AuditRepository struct {
	db *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(db *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{db: db}
}

// InsertAudit appends one audit record
func (r *AuditRepository) InsertAudit(ctx context.Context, rec *domain.AuditRecord) error {
	return insertAudit(ctx, r.db, rec)
}

// ListAudits returns the user's most recent audit records, newest first
func (r *AuditRepository) ListAudits(ctx context.Context, userID string, limit int) ([]domain.AuditRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT audit_id::text, user_id, kind, character, removed, added, credits_added, xp_gained,
		       level_before, level_after, debit, reversal, note, created_at
		FROM audit_log
		WHERE user_id = $1
		ORDER BY created_at DESC, audit_id
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListAudits, err)
	}
	defer rows.Close()

	var out []domain.AuditRecord
	for rows.Next() {
		var rec domain.AuditRecord
		var removed, added, debit []byte
		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.Kind,
			&rec.Character,
			&removed,
			&added,
			&rec.CreditsAdded,
			&rec.XPGained,
			&rec.LevelBefore,
			&rec.LevelAfter,
			&debit,
			&rec.Reversal,
			&rec.Note,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListAudits, err)
		}
		if err := json.Unmarshal(removed, &rec.Removed); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToDecodeAudit, err)
		}
		if err := json.Unmarshal(added, &rec.Added); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToDecodeAudit, err)
		}
		if len(debit) > 0 {
			rec.Debit = &domain.Debit{}
			if err := json.Unmarshal(debit, rec.Debit); err != nil {
				return nil, fmt.Errorf("%s: %w", ErrMsgFailedToDecodeAudit, err)
			}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListAudits, err)
	}
	return out, nil
}

func insertAudit(ctx context.Context, q querier, rec *domain.AuditRecord) error {
	removed, err := jsonParam(nonNilSlice(rec.Removed))
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToEncodeAudit, err)
	}
	added, err := jsonParam(nonNilSlice(rec.Added))
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToEncodeAudit, err)
	}
	var debit any
	if rec.Debit != nil {
		raw, err := jsonParam(rec.Debit)
		if err != nil {
			return fmt.Errorf("%s: %w", ErrMsgFailedToEncodeAudit, err)
		}
		debit = raw
	}

	_, err = q.Exec(ctx, `
		INSERT INTO audit_log (audit_id, user_id, kind, character, removed, added, credits_added, xp_gained,
		                       level_before, level_after, debit, reversal, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`,
		rec.ID,
		rec.UserID,
		rec.Kind,
		rec.Character,
		removed,
		added,
		rec.CreditsAdded,
		rec.XPGained,
		rec.LevelBefore,
		rec.LevelAfter,
		debit,
		rec.Reversal,
		rec.Note,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToInsertAudit, err)
	}
	return nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
