package burn

import (
	"context"
	"sync"
	"time"

	"github.com/osse101/PullBot_Go/internal/domain"
	"github.com/osse101/PullBot_Go/internal/repository"
	"github.com/osse101/PullBot_Go/internal/utils"
)

type progressionKey struct{ user, character string }

// storeState is everything a burn touches; transactions work on a copy
type storeState struct {
	stacks      map[string]map[domain.StackKey]domain.InventoryStack
	progression map[progressionKey]domain.ProgressionState
	credits     map[string]int
	audits      []domain.AuditRecord
}

func (s storeState) clone() storeState {
	c := storeState{
		stacks:      map[string]map[domain.StackKey]domain.InventoryStack{},
		progression: map[progressionKey]domain.ProgressionState{},
		credits:     map[string]int{},
		audits:      append([]domain.AuditRecord(nil), s.audits...),
	}
	for u, m := range s.stacks {
		c.stacks[u] = map[domain.StackKey]domain.InventoryStack{}
		for k, v := range m {
			c.stacks[u][k] = v
		}
	}
	for k, v := range s.progression {
		c.progression[k] = v.Clone()
	}
	for k, v := range s.credits {
		c.credits[k] = v
	}
	return c
}

// fakeStore implements the inventory, progression and burn repositories
type fakeStore struct {
	mu         sync.Mutex
	state      storeState
	milestones []domain.Milestone
	writes     int
	commits    int
	rollbacks  int
	failCommit error
}

func newFakeStore() *fakeStore {
	return &fakeStore{state: storeState{}.clone()}
}

func (f *fakeStore) seed(userID string, stacks ...domain.InventoryStack) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state.stacks[userID] == nil {
		f.state.stacks[userID] = map[domain.StackKey]domain.InventoryStack{}
	}
	for _, s := range stacks {
		s.UserID = userID
		f.state.stacks[userID][s.Key()] = s
	}
}

func (f *fakeStore) snapshot() storeState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.clone()
}

// repository.Inventory

func (f *fakeStore) ApplyDelta(_ context.Context, userID string, key domain.StackKey, delta int, meta domain.StackMeta) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return applyDelta(&f.state, userID, key, delta, meta)
}

func (f *fakeStore) AddCards(_ context.Context, userID string, cards []domain.Card, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return addCards(&f.state, userID, cards, at)
}

func (f *fakeStore) ListStacks(_ context.Context, userID string) ([]domain.InventoryStack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.InventoryStack
	for _, s := range f.state.stacks[userID] {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeStore) SetLocked(_ context.Context, userID string, key domain.StackKey, locked bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.state.stacks[userID][key]
	if !ok {
		return domain.ErrStackNotFound
	}
	s.Locked = locked
	f.state.stacks[userID][key] = s
	return nil
}

// repository.Progression

func (f *fakeStore) GetProgression(_ context.Context, userID, character string, _ int) (*domain.ProgressionState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.state.progression[progressionKey{userID, character}]
	if !ok {
		return nil, domain.ErrProgressionNotFound
	}
	c := p.Clone()
	return &c, nil
}

func (f *fakeStore) ListMilestones(context.Context) ([]domain.Milestone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Milestone(nil), f.milestones...), nil
}

func (f *fakeStore) ReplaceMilestones(_ context.Context, ms []domain.Milestone) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.milestones = append([]domain.Milestone(nil), ms...)
	return nil
}

// repository.Burn

func (f *fakeStore) BeginBurnTx(context.Context) (repository.BurnTx, error) {
	f.mu.Lock()
	return &fakeTx{store: f, work: f.state.clone()}, nil
}

// fakeTx holds the store lock for its lifetime, standing in for row locks
type fakeTx struct {
	store *fakeStore
	work  storeState
	done  bool
}

func (t *fakeTx) Commit(context.Context) error {
	if t.done {
		return errTxClosed
	}
	t.done = true
	defer t.store.mu.Unlock()
	if t.store.failCommit != nil {
		t.store.rollbacks++
		return t.store.failCommit
	}
	t.store.state = t.work
	t.store.commits++
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if t.done {
		return errTxClosed
	}
	t.done = true
	t.store.rollbacks++
	t.store.mu.Unlock()
	return nil
}

type txClosedError struct{}

func (txClosedError) Error() string { return domain.ErrMsgTxClosed }

var errTxClosed = txClosedError{}

func (t *fakeTx) GetStacksForUpdate(_ context.Context, userID string, keys []domain.StackKey) ([]domain.InventoryStack, error) {
	var out []domain.InventoryStack
	for _, k := range keys {
		if s, ok := t.work.stacks[userID][k]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (t *fakeTx) RemoveFromStack(_ context.Context, userID string, key domain.StackKey, count int) (int, error) {
	t.store.writes++
	return applyDelta(&t.work, userID, key, -count, domain.StackMeta{})
}

func (t *fakeTx) AddCards(_ context.Context, userID string, cards []domain.Card, at time.Time) error {
	t.store.writes++
	return addCards(&t.work, userID, cards, at)
}

func (t *fakeTx) GetProgressionForUpdate(_ context.Context, fresh domain.ProgressionState) (*domain.ProgressionState, error) {
	key := progressionKey{fresh.UserID, fresh.Character}
	p, ok := t.work.progression[key]
	if !ok {
		p = fresh.Clone()
		t.work.progression[key] = p
	}
	c := p.Clone()
	return &c, nil
}

func (t *fakeTx) SaveProgression(_ context.Context, state *domain.ProgressionState, _ []domain.AwardHistoryEntry) error {
	t.store.writes++
	t.work.progression[progressionKey{state.UserID, state.Character}] = state.Clone()
	return nil
}

func (t *fakeTx) AddEventCredits(_ context.Context, fresh domain.AllowanceRecord, amount int) error {
	t.store.writes++
	t.work.credits[fresh.UserID] += amount
	return nil
}

func (t *fakeTx) InsertAudit(_ context.Context, rec *domain.AuditRecord) error {
	t.store.writes++
	t.work.audits = append(t.work.audits, *rec)
	return nil
}

func applyDelta(st *storeState, userID string, key domain.StackKey, delta int, meta domain.StackMeta) (int, error) {
	if st.stacks[userID] == nil {
		st.stacks[userID] = map[domain.StackKey]domain.InventoryStack{}
	}
	s, ok := st.stacks[userID][key]
	if delta < 0 {
		if !ok {
			return 0, domain.ErrStackNotFound
		}
		if s.Count+delta < 0 {
			return s.Count, domain.ErrInsufficientQuantity
		}
	}
	if !ok {
		s = domain.InventoryStack{UserID: userID, Name: key.Name, Rarity: key.Rarity, File: meta.File, FirstAcquiredAt: meta.At}
	}
	s.Count += delta
	if delta > 0 {
		s.LastAcquiredAt = meta.At
	}
	if s.Count <= 0 {
		delete(st.stacks[userID], key)
		return 0, nil
	}
	st.stacks[userID][key] = s
	return s.Count, nil
}

func addCards(st *storeState, userID string, cards []domain.Card, at time.Time) error {
	for _, fs := range utils.FoldCards(cards) {
		if _, err := applyDelta(st, userID, fs.Key, fs.Count, domain.StackMeta{File: fs.File, At: at}); err != nil {
			return err
		}
	}
	return nil
}
