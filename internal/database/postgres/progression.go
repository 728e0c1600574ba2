package postgres

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/PullBot_Go/internal/domain"
)

const progressionColumns = `user_id, character, level, xp, xp_to_next, awarded_one_time, award_counts, updated_at`

// ProgressionRepository implements repository.Progression for PostgreSQL
type ProgressionRepository struct {
	db *pgxpool.Pool
}

// NewProgressionRepository creates a new ProgressionRepository
func NewProgressionRepository(db *pgxpool.Pool) *ProgressionRepository {
	return &ProgressionRepository{db: db}
}

func scanProgression(row pgx.Row) (*domain.ProgressionState, error) {
	var p domain.ProgressionState
	var oneTime, counts []byte
	if err := row.Scan(&p.UserID, &p.Character, &p.Level, &p.XP, &p.XPToNext, &oneTime, &counts, &p.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if p.AwardedOneTime, err = decodeMap[bool](oneTime); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToDecodeProgression, err)
	}
	if p.AwardCounts, err = decodeMap[int](counts); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToDecodeProgression, err)
	}
	return &p, nil
}

// GetProgression loads the state and its most recent award history, oldest first
func (r *ProgressionRepository) GetProgression(ctx context.Context, userID, character string, historyLimit int) (*domain.ProgressionState, error) {
	query := `SELECT ` + progressionColumns + ` FROM progression WHERE user_id = $1 AND character = $2`
	p, err := scanProgression(r.db.QueryRow(ctx, query, userID, character))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrProgressionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetProgression, err)
	}

	if historyLimit <= 0 {
		return p, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT milestone_id, level, award, granted_at
		FROM progression_awards
		WHERE user_id = $1 AND character = $2
		ORDER BY id DESC
		LIMIT $3
	`, userID, character, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToLoadAwardHistory, err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry domain.AwardHistoryEntry
		var award []byte
		if err := rows.Scan(&entry.MilestoneID, &entry.Level, &award, &entry.GrantedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToLoadAwardHistory, err)
		}
		if entry.Award, err = domain.DecodeAward(award); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToLoadAwardHistory, err)
		}
		p.AwardHistory = append(p.AwardHistory, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToLoadAwardHistory, err)
	}
	slices.Reverse(p.AwardHistory)
	return p, nil
}

// ListMilestones returns the full catalog in configured order
func (r *ProgressionRepository) ListMilestones(ctx context.Context) ([]domain.Milestone, error) {
	rows, err := r.db.Query(ctx, `
		SELECT milestone_id, trigger_level, character, award, repeat_every, one_time, enabled, priority, description
		FROM milestones
		ORDER BY position, milestone_id
	`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListMilestones, err)
	}
	defer rows.Close()

	var out []domain.Milestone
	for rows.Next() {
		var m domain.Milestone
		var award []byte
		if err := rows.Scan(&m.ID, &m.TriggerLevel, &m.Character, &award, &m.RepeatEvery, &m.OneTime, &m.Enabled, &m.Priority, &m.Description); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListMilestones, err)
		}
		if m.Award, err = domain.DecodeAward(award); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListMilestones, err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListMilestones, err)
	}
	return out, nil
}

// ReplaceMilestones makes the stored catalog exactly milestones, keeping list
// order as catalog order. Rows missing from milestones are deleted.
func (r *ProgressionRepository) ReplaceMilestones(ctx context.Context, milestones []domain.Milestone) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToBeginTransaction, err)
	}
	defer SafeRollback(ctx, tx)

	ids := make([]string, 0, len(milestones))
	for i, m := range milestones {
		ids = append(ids, m.ID)
		award, err := domain.EncodeAward(m.Award)
		if err != nil {
			return fmt.Errorf("%s %q: %w", ErrMsgFailedToUpsertMilestone, m.ID, err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO milestones (milestone_id, trigger_level, character, award, repeat_every,
			                        one_time, enabled, priority, description, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (milestone_id) DO UPDATE
			SET trigger_level = EXCLUDED.trigger_level,
			    character = EXCLUDED.character,
			    award = EXCLUDED.award,
			    repeat_every = EXCLUDED.repeat_every,
			    one_time = EXCLUDED.one_time,
			    enabled = EXCLUDED.enabled,
			    priority = EXCLUDED.priority,
			    description = EXCLUDED.description,
			    position = EXCLUDED.position
		`, m.ID, m.TriggerLevel, m.Character, award, m.RepeatEvery, m.OneTime, m.Enabled, m.Priority, m.Description, i)
		if err != nil {
			return fmt.Errorf("%s %q: %w", ErrMsgFailedToUpsertMilestone, m.ID, err)
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM milestones WHERE NOT (milestone_id = ANY($1))`, ids); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToPruneMilestones, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToCommitTransaction, err)
	}
	return nil
}

// lockProgression creates the row from fresh when absent and locks it
func lockProgression(ctx context.Context, q querier, fresh domain.ProgressionState) (*domain.ProgressionState, error) {
	oneTime, err := jsonParam(fresh.AwardedOneTime)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToEncodeProgression, err)
	}
	counts, err := jsonParam(fresh.AwardCounts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToEncodeProgression, err)
	}
	_, err = q.Exec(ctx, `
		INSERT INTO progression (user_id, character, level, xp, xp_to_next, awarded_one_time, award_counts, updated_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6::jsonb, '{}'::jsonb), COALESCE($7::jsonb, '{}'::jsonb), NOW())
		ON CONFLICT (user_id, character) DO NOTHING
	`, fresh.UserID, fresh.Character, fresh.Level, fresh.XP, fresh.XPToNext, nullJSON(oneTime), nullJSON(counts))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToInitProgression, err)
	}

	query := `SELECT ` + progressionColumns + ` FROM progression WHERE user_id = $1 AND character = $2 FOR UPDATE`
	p, err := scanProgression(q.QueryRow(ctx, query, fresh.UserID, fresh.Character))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetProgression, err)
	}
	return p, nil
}

// saveProgression writes the state and appends the new history entries
func saveProgression(ctx context.Context, q querier, state *domain.ProgressionState, newAwards []domain.AwardHistoryEntry) error {
	oneTime, err := jsonParam(state.AwardedOneTime)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToEncodeProgression, err)
	}
	counts, err := jsonParam(state.AwardCounts)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToEncodeProgression, err)
	}
	_, err = q.Exec(ctx, `
		UPDATE progression
		SET level = $3, xp = $4, xp_to_next = $5,
		    awarded_one_time = COALESCE($6::jsonb, '{}'::jsonb),
		    award_counts = COALESCE($7::jsonb, '{}'::jsonb),
		    updated_at = $8
		WHERE user_id = $1 AND character = $2
	`, state.UserID, state.Character, state.Level, state.XP, state.XPToNext, nullJSON(oneTime), nullJSON(counts), state.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToSaveProgression, err)
	}

	for _, entry := range newAwards {
		award, err := domain.EncodeAward(entry.Award)
		if err != nil {
			return fmt.Errorf("%s: %w", ErrMsgFailedToInsertAward, err)
		}
		if _, err := q.Exec(ctx, `
			INSERT INTO progression_awards (user_id, character, milestone_id, level, award, granted_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, state.UserID, state.Character, entry.MilestoneID, entry.Level, award, entry.GrantedAt); err != nil {
			return fmt.Errorf("%s: %w", ErrMsgFailedToInsertAward, err)
		}
	}
	return nil
}

// nullJSON maps the JSON literal null to a SQL NULL so COALESCE can default it
func nullJSON(raw []byte) any {
	if string(raw) == "null" {
		return nil
	}
	return raw
}
