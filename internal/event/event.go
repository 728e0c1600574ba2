package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/osse101/PullBot_Go/internal/domain"
)

// Type represents the type of an event
type Type string

// Metadata defines the type for event metadata
type Metadata interface{}

// Event represents a generic event in the system
type Event struct {
	Version  string      `json:"version"` // Event schema version (e.g., "1.0")
	Type     Type        `json:"type"`
	Payload  interface{} `json:"payload"`
	Metadata Metadata    `json:"metadata"`
}

// GetMetadataValue extracts a value from the event metadata safely
func (e Event) GetMetadataValue(key string) interface{} {
	if m, ok := e.Metadata.(map[string]interface{}); ok {
		return m[key]
	}
	return nil
}

// Event types published by the gacha services
const (
	PullCompleted    Type = Type(domain.EventTypePullCompleted)
	BurnCommitted    Type = Type(domain.EventTypeBurnCommitted)
	MilestoneAwarded Type = Type(domain.EventTypeMilestoneAwarded)
	RefundFailed     Type = Type(domain.EventTypeRefundFailed)
	DateGrantApplied Type = Type(domain.EventTypeDateGrantApplied)
)

// PullCompletedPayloadV1 is the typed payload for pull events
type PullCompletedPayloadV1 struct {
	UserID    string         `json:"user_id"`
	Cards     int            `json:"cards"`
	Rarities  map[string]int `json:"rarities"`
	Debit     domain.Debit   `json:"debit"`
	Timestamp int64          `json:"timestamp"`
}

// BurnCommittedPayloadV1 is the typed payload for committed bulk conversions
type BurnCommittedPayloadV1 struct {
	UserID       string `json:"user_id"`
	Character    string `json:"character"`
	AuditID      string `json:"audit_id"`
	CardsRemoved int    `json:"cards_removed"`
	XPGained     int    `json:"xp_gained"`
	LevelBefore  int    `json:"level_before"`
	LevelAfter   int    `json:"level_after"`
	Timestamp    int64  `json:"timestamp"`
}

// MilestoneAwardedPayloadV1 is published once per milestone firing
type MilestoneAwardedPayloadV1 struct {
	UserID      string `json:"user_id"`
	Character   string `json:"character"`
	MilestoneID string `json:"milestone_id"`
	Level       int    `json:"level"`
	AwardKind   string `json:"award_kind"`
	Description string `json:"description"`
}

// RefundFailedPayloadV1 reports a debit that could not be returned
type RefundFailedPayloadV1 struct {
	UserID    string       `json:"user_id"`
	Debit     domain.Debit `json:"debit"`
	Cause     string       `json:"cause"`
	Error     string       `json:"error"`
	Timestamp int64        `json:"timestamp"`
}

// DateGrantAppliedPayloadV1 is the typed payload for date-keyed grant claims
type DateGrantAppliedPayloadV1 struct {
	DateKey         string `json:"date_key"`
	Target          string `json:"target"`
	Credits         int    `json:"credits"`
	RecordsAffected int64  `json:"records_affected"`
}

func withSource(source string) Metadata {
	if source == "" {
		return nil
	}
	return map[string]interface{}{"source": source}
}

// NewPullCompletedEvent creates a pull completed event
func NewPullCompletedEvent(userID string, cards []domain.Card, debit domain.Debit, source string) Event {
	rarities := make(map[string]int)
	for _, c := range cards {
		rarities[c.Rarity]++
	}
	return Event{
		Version: EventSchemaVersion,
		Type:    PullCompleted,
		Payload: PullCompletedPayloadV1{
			UserID:    userID,
			Cards:     len(cards),
			Rarities:  rarities,
			Debit:     debit,
			Timestamp: time.Now().Unix(),
		},
		Metadata: withSource(source),
	}
}

// NewBurnCommittedEvent creates a burn committed event
func NewBurnCommittedEvent(userID, character string, res *domain.BurnResult) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    BurnCommitted,
		Payload: BurnCommittedPayloadV1{
			UserID:       userID,
			Character:    character,
			AuditID:      res.AuditID,
			CardsRemoved: res.CardsRemoved,
			XPGained:     res.XPGained,
			LevelBefore:  res.PreviousLevel,
			LevelAfter:   res.NewLevel,
			Timestamp:    time.Now().Unix(),
		},
	}
}

// NewMilestoneAwardedEvent creates a milestone awarded event
func NewMilestoneAwardedEvent(userID, character string, ev domain.CascadeEvent) Event {
	kind := ""
	if ev.Award != nil {
		kind = ev.Award.Kind()
	}
	return Event{
		Version: EventSchemaVersion,
		Type:    MilestoneAwarded,
		Payload: MilestoneAwardedPayloadV1{
			UserID:      userID,
			Character:   character,
			MilestoneID: ev.MilestoneID,
			Level:       ev.Level,
			AwardKind:   kind,
			Description: ev.Description,
		},
	}
}

// NewRefundFailedEvent creates a refund failed event
func NewRefundFailedEvent(userID string, debit domain.Debit, cause, refundErr error) Event {
	p := RefundFailedPayloadV1{UserID: userID, Debit: debit, Timestamp: time.Now().Unix()}
	if cause != nil {
		p.Cause = cause.Error()
	}
	if refundErr != nil {
		p.Error = refundErr.Error()
	}
	return Event{Version: EventSchemaVersion, Type: RefundFailed, Payload: p}
}

// NewDateGrantAppliedEvent creates a date grant event
func NewDateGrantAppliedEvent(res *domain.DateGrantResult, credits int, source string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    DateGrantApplied,
		Payload: DateGrantAppliedPayloadV1{
			DateKey:         res.DateKey,
			Target:          res.Target,
			Credits:         credits,
			RecordsAffected: res.RecordsAffected,
		},
		Metadata: withSource(source),
	}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// Publisher is the fire-and-forget side used by services
type Publisher interface {
	PublishWithRetry(ctx context.Context, event Event)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish publishes an event to all subscribers
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers, ok := b.handlers[event.Type]
	b.mu.RUnlock()

	if !ok {
		return nil
	}

	// Handlers run synchronously on the publisher's goroutine
	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s: %s: %w", ErrMsgHandlersFailed, event.Type, errors.Join(errs...))
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
