package handler

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/osse101/PullBot_Go/internal/domain"
	"github.com/osse101/PullBot_Go/internal/event"
	"github.com/osse101/PullBot_Go/internal/eventlog"
	"github.com/osse101/PullBot_Go/internal/ledger"
	"github.com/osse101/PullBot_Go/internal/quota"
)

// MockDBPool mocks the database.Pool interface
type MockDBPool struct {
	mock.Mock
}

func (m *MockDBPool) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockDBPool) Close() {
	m.Called()
}

type MockPullService struct {
	mock.Mock
}

func (m *MockPullService) Pull(ctx context.Context, req domain.PullRequest) (*domain.PullResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PullResult), args.Error(1)
}

type MockQuotaService struct {
	mock.Mock
}

func (m *MockQuotaService) GetCurrentAllowance(ctx context.Context, userID string) (*domain.AllowanceView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AllowanceView), args.Error(1)
}

func (m *MockQuotaService) Consume(ctx context.Context, userID string, amount int, policy quota.Policy) (*domain.ConsumeResult, error) {
	args := m.Called(ctx, userID, amount, policy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConsumeResult), args.Error(1)
}

func (m *MockQuotaService) Refund(ctx context.Context, userID string, debit domain.Debit) error {
	return m.Called(ctx, userID, debit).Error(0)
}

func (m *MockQuotaService) CreateGrant(ctx context.Context, grant domain.NamedGrant) (*domain.NamedGrant, error) {
	args := m.Called(ctx, grant)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.NamedGrant), args.Error(1)
}

func (m *MockQuotaService) DeactivateGrant(ctx context.Context, label string) error {
	return m.Called(ctx, label).Error(0)
}

func (m *MockQuotaService) ListActiveGrants(ctx context.Context) ([]domain.NamedGrant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.NamedGrant), args.Error(1)
}

func (m *MockQuotaService) GrantForDate(ctx context.Context, dateKey, target string, credits int) (*domain.DateGrantResult, error) {
	args := m.Called(ctx, dateKey, target, credits)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DateGrantResult), args.Error(1)
}

func (m *MockQuotaService) GrantBirthday(ctx context.Context, userID string, year, credits int) (bool, error) {
	args := m.Called(ctx, userID, year, credits)
	return args.Bool(0), args.Error(1)
}

func (m *MockQuotaService) NewRecord(userID string) *domain.AllowanceRecord {
	return m.Called(userID).Get(0).(*domain.AllowanceRecord)
}

type MockInventoryService struct {
	mock.Mock
}

func (m *MockInventoryService) AddCards(ctx context.Context, userID string, cards []domain.Card) error {
	return m.Called(ctx, userID, cards).Error(0)
}

func (m *MockInventoryService) ApplyDelta(ctx context.Context, userID string, key domain.StackKey, delta int) (int, error) {
	args := m.Called(ctx, userID, key, delta)
	return args.Int(0), args.Error(1)
}

func (m *MockInventoryService) ListStacks(ctx context.Context, userID string, filter domain.StackFilter) ([]domain.InventoryStack, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InventoryStack), args.Error(1)
}

func (m *MockInventoryService) SetLocked(ctx context.Context, userID string, key domain.StackKey, locked bool) error {
	return m.Called(ctx, userID, key, locked).Error(0)
}

type MockBurnService struct {
	mock.Mock
}

func (m *MockBurnService) Preview(ctx context.Context, req domain.BurnRequest) (*domain.BurnPreview, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BurnPreview), args.Error(1)
}

func (m *MockBurnService) Confirm(ctx context.Context, userID, token string) (*domain.BurnResult, error) {
	args := m.Called(ctx, userID, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BurnResult), args.Error(1)
}

func (m *MockBurnService) Cancel(ctx context.Context, userID, token string) error {
	return m.Called(ctx, userID, token).Error(0)
}

type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) GetProgression(ctx context.Context, userID, character string) (*domain.ProgressionState, error) {
	args := m.Called(ctx, userID, character)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProgressionState), args.Error(1)
}

func (m *MockLedgerService) Catalog(ctx context.Context, character string) ([]domain.Milestone, error) {
	args := m.Called(ctx, character)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Milestone), args.Error(1)
}

func (m *MockLedgerService) SyncMilestones(ctx context.Context, milestones []domain.Milestone) error {
	return m.Called(ctx, milestones).Error(0)
}

func (m *MockLedgerService) Growth() ledger.Growth {
	return m.Called().Get(0).(ledger.Growth)
}

type MockEventlogService struct {
	mock.Mock
}

func (m *MockEventlogService) Subscribe(bus event.Bus) error {
	return m.Called(bus).Error(0)
}

func (m *MockEventlogService) ListEvents(ctx context.Context, filter eventlog.EventFilter) ([]eventlog.Event, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]eventlog.Event), args.Error(1)
}

func (m *MockEventlogService) CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error) {
	args := m.Called(ctx, retentionDays)
	return args.Get(0).(int64), args.Error(1)
}

// capturePublisher records published events
type capturePublisher struct {
	mu     sync.Mutex
	events []event.Event
}

func (p *capturePublisher) PublishWithRetry(_ context.Context, evt event.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *capturePublisher) Events() []event.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]event.Event(nil), p.events...)
}
