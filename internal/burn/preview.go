package burn

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/osse101/PullBot_Go/internal/domain"
	"github.com/osse101/PullBot_Go/internal/inventory"
	"github.com/osse101/PullBot_Go/internal/logger"
	"github.com/osse101/PullBot_Go/internal/utils"
)

// Preview computes what a conversion would remove and grant. Nothing is
// written; the preview is held until confirmed, cancelled or expired.
func (s *service) Preview(ctx context.Context, req domain.BurnRequest) (*domain.BurnPreview, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgUserIDRequired)
	}
	if req.Character == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgCharacterRequired)
	}

	stacks, err := s.inventory.ListStacks(ctx, req.UserID, domain.StackFilter{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgListStacksFailed, err)
	}

	removals, err := s.selectRemovals(stacks, req)
	if err != nil {
		return nil, err
	}
	if len(removals) == 0 {
		return nil, domain.ErrNothingToBurn
	}

	now := s.clock.Now()
	p := &domain.BurnPreview{
		Token:       uuid.NewString(),
		UserID:      req.UserID,
		Character:   req.Character,
		Removals:    removals,
		AllowLocked: req.Filter.IncludeLocked,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.cfg.ConfirmTimeout),
	}
	for _, r := range removals {
		p.TotalCount += r.Count
		p.TotalXP += r.Count * s.cfg.XPFor(r.Rarity)
	}
	p.Sample = sample(removals, s.cfg.SampleSize)

	s.previews.Add(p.Token, p)
	logger.FromContext(ctx).Info(LogMsgPreviewCreated,
		"user_id", req.UserID,
		"token", p.Token,
		"cards", p.TotalCount,
		"xp", p.TotalXP)
	return p, nil
}

// Cancel drops a pending preview
func (s *service) Cancel(ctx context.Context, userID, token string) error {
	p, ok := s.previews.Peek(token)
	if !ok || p.UserID != userID {
		return domain.ErrPreviewNotFound
	}
	s.previews.Remove(token)
	logger.FromContext(ctx).Info(LogMsgPreviewCancelled, "user_id", userID, "token", token)
	return nil
}

func (s *service) selectRemovals(stacks []domain.InventoryStack, req domain.BurnRequest) ([]domain.StackRemoval, error) {
	if len(req.Items) == 0 {
		return inventory.SelectRemovals(stacks, req.Filter, req.Keep)
	}

	items := utils.FoldRemovals(req.Items)
	if err := inventory.ValidateRemovals(stacks, items); err != nil {
		return nil, err
	}
	if !req.Filter.IncludeLocked {
		if err := rejectLocked(stacks, items); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func rejectLocked(stacks []domain.InventoryStack, removals []domain.StackRemoval) error {
	locked := make(map[domain.StackKey]bool)
	for _, st := range stacks {
		if st.Locked {
			locked[st.Key()] = true
		}
	}
	for _, r := range removals {
		if locked[r.Key()] {
			return fmt.Errorf("%w: %s: %s/%s", domain.ErrInvalidInput, ErrMsgStackLocked, r.Rarity, r.Name)
		}
	}
	return nil
}

// sample returns up to n removal lines, largest first
func sample(removals []domain.StackRemoval, n int) []domain.StackRemoval {
	out := append([]domain.StackRemoval(nil), removals...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
