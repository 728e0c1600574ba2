package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/osse101/PullBot_Go/internal/config"
	"github.com/osse101/PullBot_Go/internal/ledger"
)

// SyncMilestones writes the milestone catalog from the loaded game config to
// the database so catalog edits take effect on restart. Milestones removed
// from the file keep their rows; disable them instead.
func SyncMilestones(ctx context.Context, ledgerService ledger.Service, game *config.Game) error {
	slog.Info(LogMsgSyncingMilestones, "count", len(game.Milestones))

	if err := ledgerService.SyncMilestones(ctx, game.Milestones); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedSyncCatalog, err)
	}

	slog.Info(LogMsgMilestonesSynced)
	return nil
}
