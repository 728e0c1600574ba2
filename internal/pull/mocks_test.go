package pull

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/osse101/PullBot_Go/internal/domain"
	"github.com/osse101/PullBot_Go/internal/event"
	"github.com/osse101/PullBot_Go/internal/quota"
)

type MockQuota struct {
	mock.Mock
}

func (m *MockQuota) GetCurrentAllowance(ctx context.Context, userID string) (*domain.AllowanceView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AllowanceView), args.Error(1)
}

func (m *MockQuota) Consume(ctx context.Context, userID string, amount int, policy quota.Policy) (*domain.ConsumeResult, error) {
	args := m.Called(ctx, userID, amount, policy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConsumeResult), args.Error(1)
}

func (m *MockQuota) Refund(ctx context.Context, userID string, debit domain.Debit) error {
	return m.Called(ctx, userID, debit).Error(0)
}

func (m *MockQuota) CreateGrant(ctx context.Context, grant domain.NamedGrant) (*domain.NamedGrant, error) {
	args := m.Called(ctx, grant)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.NamedGrant), args.Error(1)
}

func (m *MockQuota) DeactivateGrant(ctx context.Context, label string) error {
	return m.Called(ctx, label).Error(0)
}

func (m *MockQuota) ListActiveGrants(ctx context.Context) ([]domain.NamedGrant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.NamedGrant), args.Error(1)
}

func (m *MockQuota) GrantForDate(ctx context.Context, dateKey, target string, credits int) (*domain.DateGrantResult, error) {
	args := m.Called(ctx, dateKey, target, credits)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DateGrantResult), args.Error(1)
}

func (m *MockQuota) GrantBirthday(ctx context.Context, userID string, year, credits int) (bool, error) {
	args := m.Called(ctx, userID, year, credits)
	return args.Bool(0), args.Error(1)
}

func (m *MockQuota) NewRecord(userID string) *domain.AllowanceRecord {
	return m.Called(userID).Get(0).(*domain.AllowanceRecord)
}

type MockDrawer struct {
	mock.Mock
}

func (m *MockDrawer) Draw(ctx context.Context, userID, cohortOverride string) ([]domain.Card, error) {
	args := m.Called(ctx, userID, cohortOverride)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Card), args.Error(1)
}

func (m *MockDrawer) MintFromPool(ctx context.Context, pool string, count int) ([]domain.Card, error) {
	args := m.Called(ctx, pool, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Card), args.Error(1)
}

type MockInventory struct {
	mock.Mock
}

func (m *MockInventory) AddCards(ctx context.Context, userID string, cards []domain.Card) error {
	return m.Called(ctx, userID, cards).Error(0)
}

func (m *MockInventory) ApplyDelta(ctx context.Context, userID string, key domain.StackKey, delta int) (int, error) {
	args := m.Called(ctx, userID, key, delta)
	return args.Int(0), args.Error(1)
}

func (m *MockInventory) ListStacks(ctx context.Context, userID string, filter domain.StackFilter) ([]domain.InventoryStack, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InventoryStack), args.Error(1)
}

func (m *MockInventory) SetLocked(ctx context.Context, userID string, key domain.StackKey, locked bool) error {
	return m.Called(ctx, userID, key, locked).Error(0)
}

type MockAudit struct {
	mock.Mock
}

func (m *MockAudit) InsertAudit(ctx context.Context, rec *domain.AuditRecord) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *MockAudit) ListAudits(ctx context.Context, userID string, limit int) ([]domain.AuditRecord, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditRecord), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishWithRetry(ctx context.Context, evt event.Event) {
	m.Called(ctx, evt)
}
