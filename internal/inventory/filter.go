package inventory

import (
	"fmt"
	"slices"

	"github.com/osse101/PullBot_Go/internal/domain"
)

// Match reports whether stack passes filter. Locked stacks only match when
// the filter asks for them.
func Match(stack domain.InventoryStack, f domain.StackFilter) (bool, error) {
	if stack.Locked && !f.IncludeLocked {
		return false, nil
	}
	if len(f.Rarities) > 0 && !slices.Contains(f.Rarities, stack.Rarity) {
		return false, nil
	}
	if f.Op == "" {
		return true, nil
	}
	return f.Op.Compare(stack.Count, f.Threshold)
}

// Filter returns the stacks matching f, preserving order
func Filter(stacks []domain.InventoryStack, f domain.StackFilter) ([]domain.InventoryStack, error) {
	out := make([]domain.InventoryStack, 0, len(stacks))
	for _, s := range stacks {
		ok, err := Match(s, f)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// SelectRemovals turns a filter into removal lines: every matching stack
// gives up all copies beyond keep.
func SelectRemovals(stacks []domain.InventoryStack, f domain.StackFilter, keep int) ([]domain.StackRemoval, error) {
	if keep < 0 {
		return nil, fmt.Errorf("%w: keep must not be negative", domain.ErrInvalidInput)
	}
	matched, err := Filter(stacks, f)
	if err != nil {
		return nil, err
	}
	out := make([]domain.StackRemoval, 0, len(matched))
	for _, s := range matched {
		if n := s.Count - keep; n > 0 {
			out = append(out, domain.StackRemoval{Name: s.Name, Rarity: s.Rarity, Count: n})
		}
	}
	return out, nil
}

// ValidateRemovals checks every removal against held stacks before anything
// is mutated. The first shortfall fails the whole batch.
func ValidateRemovals(held []domain.InventoryStack, removals []domain.StackRemoval) error {
	counts := make(map[domain.StackKey]int, len(held))
	for _, s := range held {
		counts[s.Key()] = s.Count
	}
	for _, r := range removals {
		if r.Count <= 0 {
			return fmt.Errorf("%w: removal count for %s/%s must be positive", domain.ErrInvalidInput, r.Rarity, r.Name)
		}
		have, ok := counts[r.Key()]
		if !ok {
			return fmt.Errorf("%w: %s/%s", domain.ErrStackNotFound, r.Rarity, r.Name)
		}
		if have < r.Count {
			return fmt.Errorf("%w: %s/%s has %d, need %d", domain.ErrInsufficientQuantity, r.Rarity, r.Name, have, r.Count)
		}
	}
	return nil
}
