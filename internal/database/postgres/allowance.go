package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/PullBot_Go/internal/domain"
)

const allowanceColumns = `user_id, timed_stock, last_refill_at, event_credits, named_credits,
		       last_birthday_grant_year, version, updated_at`

const grantColumns = `label, display_label, credits_per_user, created_by, created_at, expires_at, active`

// AllowanceRepository implements repository.Allowance for PostgreSQL
type AllowanceRepository struct {
	db *pgxpool.Pool
}

// NewAllowanceRepository creates a new AllowanceRepository
func NewAllowanceRepository(db *pgxpool.Pool) *AllowanceRepository {
	return &AllowanceRepository{db: db}
}

func scanAllowance(row pgx.Row) (*domain.AllowanceRecord, error) {
	var rec domain.AllowanceRecord
	var named []byte
	if err := row.Scan(
		&rec.UserID,
		&rec.TimedStock,
		&rec.LastRefillAt,
		&rec.EventCredits,
		&named,
		&rec.LastBirthdayGrantYear,
		&rec.Version,
		&rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	credits, err := decodeMap[int](named)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToDecodeNamed, err)
	}
	rec.NamedCredits = credits
	return &rec, nil
}

// GetAllowance returns the user's record or domain.ErrAllowanceNotFound
func (r *AllowanceRepository) GetAllowance(ctx context.Context, userID string) (*domain.AllowanceRecord, error) {
	query := `SELECT ` + allowanceColumns + ` FROM allowances WHERE user_id = $1`
	rec, err := scanAllowance(r.db.QueryRow(ctx, query, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAllowanceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetAllowance, err)
	}
	return rec, nil
}

// CreateAllowance inserts rec when absent and returns whatever row is stored
func (r *AllowanceRepository) CreateAllowance(ctx context.Context, rec *domain.AllowanceRecord) (*domain.AllowanceRecord, error) {
	if err := insertAllowance(ctx, r.db, rec, 0); err != nil {
		return nil, err
	}
	return r.GetAllowance(ctx, rec.UserID)
}

// insertAllowance creates rec with extra event credits unless the user
// already has a record, in which case the extra credits are added to it.
func insertAllowance(ctx context.Context, q querier, rec *domain.AllowanceRecord, extraCredits int) error {
	named, err := jsonParam(nonNilCredits(rec.NamedCredits))
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToEncodeNamed, err)
	}
	query := `
		INSERT INTO allowances (user_id, timed_stock, last_refill_at, event_credits, named_credits,
		                        last_birthday_grant_year, version, updated_at)
		VALUES ($1, $2, $3, $4::int + $8::int, $5, $6, 1, $7)
		ON CONFLICT (user_id) DO UPDATE
		SET event_credits = allowances.event_credits + $8::int,
		    version = allowances.version + 1,
		    updated_at = EXCLUDED.updated_at
		WHERE $8::int > 0
	`
	_, err = q.Exec(ctx, query,
		rec.UserID,
		rec.TimedStock,
		rec.LastRefillAt,
		rec.EventCredits,
		named,
		rec.LastBirthdayGrantYear,
		rec.UpdatedAt,
		extraCredits,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToCreateAllowance, err)
	}
	return nil
}

func nonNilCredits(m map[string]int) map[string]int {
	if m == nil {
		return map[string]int{}
	}
	return m
}

// UpdateAllowance writes rec if the stored version still matches
func (r *AllowanceRepository) UpdateAllowance(ctx context.Context, rec *domain.AllowanceRecord) error {
	named, err := jsonParam(nonNilCredits(rec.NamedCredits))
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToEncodeNamed, err)
	}
	query := `
		UPDATE allowances
		SET timed_stock = $2, last_refill_at = $3, event_credits = $4, named_credits = $5,
		    last_birthday_grant_year = $6, updated_at = $7, version = version + 1
		WHERE user_id = $1 AND version = $8
	`
	tag, err := r.db.Exec(ctx, query,
		rec.UserID,
		rec.TimedStock,
		rec.LastRefillAt,
		rec.EventCredits,
		named,
		rec.LastBirthdayGrantYear,
		rec.UpdatedAt,
		rec.Version,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToUpdateAllowance, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConcurrencyConflict
	}
	rec.Version++
	return nil
}

func scanGrant(row pgx.Row) (*domain.NamedGrant, error) {
	var g domain.NamedGrant
	err := row.Scan(&g.Label, &g.DisplayLabel, &g.CreditsPerUser, &g.CreatedBy, &g.CreatedAt, &g.ExpiresAt, &g.Active)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// GetGrant returns a named grant by label
func (r *AllowanceRepository) GetGrant(ctx context.Context, label string) (*domain.NamedGrant, error) {
	query := `SELECT ` + grantColumns + ` FROM named_grants WHERE label = $1`
	g, err := scanGrant(r.db.QueryRow(ctx, query, label))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrGrantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetGrant, err)
	}
	return g, nil
}

// ListGrants returns every grant, or only those live at liveAt when it is set
func (r *AllowanceRepository) ListGrants(ctx context.Context, liveAt *time.Time) ([]domain.NamedGrant, error) {
	query := `
		SELECT ` + grantColumns + `
		FROM named_grants
		WHERE $1::timestamptz IS NULL OR (active AND expires_at > $1::timestamptz)
		ORDER BY created_at, label
	`
	rows, err := r.db.Query(ctx, query, liveAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListGrants, err)
	}
	defer rows.Close()

	var grants []domain.NamedGrant
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListGrants, err)
		}
		grants = append(grants, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListGrants, err)
	}
	return grants, nil
}

// CreateGrant inserts a new named grant
func (r *AllowanceRepository) CreateGrant(ctx context.Context, grant *domain.NamedGrant) error {
	query := `
		INSERT INTO named_grants (label, display_label, credits_per_user, created_by, created_at, expires_at, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		grant.Label,
		grant.DisplayLabel,
		grant.CreditsPerUser,
		grant.CreatedBy,
		grant.CreatedAt,
		grant.ExpiresAt,
		grant.Active,
	)
	if isUniqueViolation(err) {
		return domain.ErrGrantExists
	}
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToCreateGrant, err)
	}
	return nil
}

// DeactivateGrant clears the active flag
func (r *AllowanceRepository) DeactivateGrant(ctx context.Context, label string) error {
	tag, err := r.db.Exec(ctx, `UPDATE named_grants SET active = FALSE WHERE label = $1`, label)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToDeactivateGrant, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGrantNotFound
	}
	return nil
}

// ClaimDateGrant inserts the (date, target) claim and credits the target in
// one transaction. The primary key on grant_claims makes a repeat a no-op.
func (r *AllowanceRepository) ClaimDateGrant(ctx context.Context, claim domain.GrantClaim, fresh domain.AllowanceRecord) (bool, int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, 0, fmt.Errorf("%s: %w", ErrMsgFailedToBeginTransaction, err)
	}
	defer SafeRollback(ctx, tx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO grant_claims (date_key, target, credits, claimed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (date_key, target) DO NOTHING
	`, claim.DateKey, claim.Target, claim.Credits, claim.ClaimedAt)
	if err != nil {
		return false, 0, fmt.Errorf("%s: %w", ErrMsgFailedToClaimGrant, err)
	}
	if tag.RowsAffected() == 0 {
		return false, 0, nil
	}

	var affected int64
	if claim.Target == domain.WildcardTarget {
		tag, err := tx.Exec(ctx, `
			UPDATE allowances
			SET event_credits = event_credits + $1, version = version + 1, updated_at = $2
		`, claim.Credits, claim.ClaimedAt)
		if err != nil {
			return false, 0, fmt.Errorf("%s: %w", ErrMsgFailedToCreditGrant, err)
		}
		affected = tag.RowsAffected()
	} else {
		if err := insertAllowance(ctx, tx, &fresh, claim.Credits); err != nil {
			return false, 0, fmt.Errorf("%s: %w", ErrMsgFailedToCreditGrant, err)
		}
		affected = 1
	}

	if err := tx.Commit(ctx); err != nil {
		return false, 0, fmt.Errorf("%s: %w", ErrMsgFailedToCommitTransaction, err)
	}
	return true, affected, nil
}
