package repository

import (
	"context"
	"time"

	"github.com/osse101/PullBot_Go/internal/domain"
)

// Allowance defines the data access interface for allowance records and named grants
type Allowance interface {
	// GetAllowance returns domain.ErrAllowanceNotFound when the user has no record
	GetAllowance(ctx context.Context, userID string) (*domain.AllowanceRecord, error)
	// CreateAllowance inserts rec unless a record already exists and returns the stored row
	CreateAllowance(ctx context.Context, rec *domain.AllowanceRecord) (*domain.AllowanceRecord, error)
	// UpdateAllowance writes rec only if the stored version still equals rec.Version.
	// It returns domain.ErrConcurrencyConflict when another writer got there first
	// and bumps rec.Version on success.
	UpdateAllowance(ctx context.Context, rec *domain.AllowanceRecord) error

	GetGrant(ctx context.Context, label string) (*domain.NamedGrant, error)
	ListGrants(ctx context.Context, liveAt *time.Time) ([]domain.NamedGrant, error)
	CreateGrant(ctx context.Context, grant *domain.NamedGrant) error
	DeactivateGrant(ctx context.Context, label string) error

	// ClaimDateGrant records the (date, target) claim and credits the target in
	// one transaction. claimed is false when the claim already existed.
	ClaimDateGrant(ctx context.Context, claim domain.GrantClaim, fresh domain.AllowanceRecord) (claimed bool, affected int64, err error)
}
