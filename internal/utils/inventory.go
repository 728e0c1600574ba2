package utils

import "github.com/osse101/PullBot_Go/internal/domain"

// FoldedStack is the net increment a batch of cards applies to one stack
type FoldedStack struct {
	Key   domain.StackKey
	File  string
	Count int
}

// FoldCards groups cards by (name, rarity), keeping first-seen order so that
// stacks are always written in a deterministic order. The first card's file
// becomes the stack's representative asset.
func FoldCards(cards []domain.Card) []FoldedStack {
	if len(cards) == 0 {
		return nil
	}
	index := make(map[domain.StackKey]int, len(cards))
	out := make([]FoldedStack, 0, len(cards))
	for _, c := range cards {
		key := c.Key()
		if i, ok := index[key]; ok {
			out[i].Count++
			continue
		}
		index[key] = len(out)
		out = append(out, FoldedStack{Key: key, File: c.File, Count: 1})
	}
	return out
}

// FoldRemovals merges removal lines that name the same stack and drops
// non-positive counts
func FoldRemovals(items []domain.StackRemoval) []domain.StackRemoval {
	index := make(map[domain.StackKey]int, len(items))
	out := make([]domain.StackRemoval, 0, len(items))
	for _, r := range items {
		if r.Count <= 0 {
			continue
		}
		if i, ok := index[r.Key()]; ok {
			out[i].Count += r.Count
			continue
		}
		index[r.Key()] = len(out)
		out = append(out, r)
	}
	return out
}
