package repository

import (
	"context"

	"github.com/osse101/PullBot_Go/internal/domain"
)

// Progression defines the data access interface for leveling state and the milestone catalog
type Progression interface {
	// GetProgression returns domain.ErrProgressionNotFound when no row exists
	GetProgression(ctx context.Context, userID, character string, historyLimit int) (*domain.ProgressionState, error)
	ListMilestones(ctx context.Context) ([]domain.Milestone, error)
	ReplaceMilestones(ctx context.Context, milestones []domain.Milestone) error
}

// Audit defines the append-only audit log
type Audit interface {
	InsertAudit(ctx context.Context, rec *domain.AuditRecord) error
	ListAudits(ctx context.Context, userID string, limit int) ([]domain.AuditRecord, error)
}
