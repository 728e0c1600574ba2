package inventory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/PullBot_Go/internal/clock"
	"github.com/osse101/PullBot_Go/internal/domain"
	"github.com/osse101/PullBot_Go/internal/utils"
)

// fakeInventoryRepo is an in-memory repository.Inventory keyed like the real table
type fakeInventoryRepo struct {
	mu     sync.Mutex
	stacks map[string]map[domain.StackKey]*domain.InventoryStack
	order  map[string][]domain.StackKey
}

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{
		stacks: map[string]map[domain.StackKey]*domain.InventoryStack{},
		order:  map[string][]domain.StackKey{},
	}
}

func (f *fakeInventoryRepo) applyLocked(userID string, key domain.StackKey, delta int, meta domain.StackMeta) (int, error) {
	user, ok := f.stacks[userID]
	if !ok {
		user = map[domain.StackKey]*domain.InventoryStack{}
		f.stacks[userID] = user
	}
	s, ok := user[key]
	if delta < 0 {
		if !ok {
			return 0, domain.ErrStackNotFound
		}
		if s.Count+delta < 0 {
			return s.Count, domain.ErrInsufficientQuantity
		}
		s.Count += delta
		if s.Count == 0 {
			delete(user, key)
		}
		return s.Count, nil
	}
	if !ok {
		s = &domain.InventoryStack{UserID: userID, Name: key.Name, Rarity: key.Rarity, File: meta.File, FirstAcquiredAt: meta.At}
		user[key] = s
		f.order[userID] = append(f.order[userID], key)
	}
	s.Count += delta
	s.LastAcquiredAt = meta.At
	return s.Count, nil
}

func (f *fakeInventoryRepo) ApplyDelta(_ context.Context, userID string, key domain.StackKey, delta int, meta domain.StackMeta) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.applyLocked(userID, key, delta, meta)
}

func (f *fakeInventoryRepo) AddCards(_ context.Context, userID string, cards []domain.Card, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, fs := range utils.FoldCards(cards) {
		if _, err := f.applyLocked(userID, fs.Key, fs.Count, domain.StackMeta{File: fs.File, At: at}); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeInventoryRepo) ListStacks(_ context.Context, userID string) ([]domain.InventoryStack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.InventoryStack
	for _, key := range f.order[userID] {
		if s, ok := f.stacks[userID][key]; ok {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeInventoryRepo) SetLocked(_ context.Context, userID string, key domain.StackKey, locked bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stacks[userID][key]
	if !ok {
		return domain.ErrStackNotFound
	}
	s.Locked = locked
	return nil
}

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestAddCards_FoldsIntoStacks(t *testing.T) {
	repo := newFakeInventoryRepo()
	clk := clock.NewSimulatedClock(t0)
	svc := NewService(repo, clk)
	ctx := context.Background()

	cards := []domain.Card{
		{Rarity: domain.RarityCommon, File: "common/slime.png", Name: "Slime"},
		{Rarity: domain.RarityCommon, File: "common/slime.png", Name: "Slime"},
		{Rarity: domain.RarityRare, File: "rare/dragon.png", Name: "Dragon"},
	}
	require.NoError(t, svc.AddCards(ctx, "u-1", cards))
	clk.Advance(time.Hour)
	require.NoError(t, svc.AddCards(ctx, "u-1", cards[:1]))

	stacks, err := svc.ListStacks(ctx, "u-1", domain.StackFilter{})
	require.NoError(t, err)
	require.Len(t, stacks, 2)

	assert.Equal(t, "Dragon", stacks[0].Name, "rarest first")
	assert.Equal(t, 1, stacks[0].Count)
	assert.Equal(t, "Slime", stacks[1].Name)
	assert.Equal(t, 3, stacks[1].Count)
	assert.Equal(t, t0, stacks[1].FirstAcquiredAt)
	assert.Equal(t, t0.Add(time.Hour), stacks[1].LastAcquiredAt)
}

func TestAddCards_ConcurrentWritersShareOneStack(t *testing.T) {
	repo := newFakeInventoryRepo()
	svc := NewService(repo, clock.NewSimulatedClock(t0))
	ctx := context.Background()
	card := domain.Card{Rarity: domain.RarityCommon, File: "common/slime.png", Name: "Slime"}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.AddCards(ctx, "u-1", []domain.Card{card}))
		}()
	}
	wg.Wait()

	stacks, err := svc.ListStacks(ctx, "u-1", domain.StackFilter{})
	require.NoError(t, err)
	require.Len(t, stacks, 1)
	assert.Equal(t, 20, stacks[0].Count)
}

func TestApplyDelta(t *testing.T) {
	repo := newFakeInventoryRepo()
	svc := NewService(repo, clock.NewSimulatedClock(t0))
	ctx := context.Background()
	key := domain.StackKey{Name: "Slime", Rarity: domain.RarityCommon}

	n, err := svc.ApplyDelta(ctx, "u-1", key, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = svc.ApplyDelta(ctx, "u-1", key, -5)
	assert.ErrorIs(t, err, domain.ErrInsufficientQuantity)

	n, err = svc.ApplyDelta(ctx, "u-1", key, -3)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	stacks, err := svc.ListStacks(ctx, "u-1", domain.StackFilter{})
	require.NoError(t, err)
	assert.Empty(t, stacks, "stack at zero is deleted")

	_, err = svc.ApplyDelta(ctx, "u-1", key, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSetLocked(t *testing.T) {
	repo := newFakeInventoryRepo()
	svc := NewService(repo, clock.NewSimulatedClock(t0))
	ctx := context.Background()
	key := domain.StackKey{Name: "Dragon", Rarity: domain.RarityRare}

	_, err := svc.ApplyDelta(ctx, "u-1", key, 2)
	require.NoError(t, err)
	require.NoError(t, svc.SetLocked(ctx, "u-1", key, true))

	stacks, err := svc.ListStacks(ctx, "u-1", domain.StackFilter{})
	require.NoError(t, err)
	require.Len(t, stacks, 1)
	assert.True(t, stacks[0].Locked, "listing includes locked stacks")

	err = svc.SetLocked(ctx, "u-1", domain.StackKey{Name: "Ghost", Rarity: domain.RarityRare}, true)
	assert.ErrorIs(t, err, domain.ErrStackNotFound)
}
