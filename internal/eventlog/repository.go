package eventlog

import (
	"context"
	"time"
)

// Event is one row of the audit event log. UserID is nil for events that
// are not about a single user, such as a date grant.
type Event struct {
	ID        int64                  `json:"id"`
	EventType string                 `json:"event_type"`
	UserID    *string                `json:"user_id,omitempty"`
	Payload   map[string]interface{} `json:"payload"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// EventFilter narrows ListEvents. Nil fields match everything.
type EventFilter struct {
	UserID    *string
	EventType *string
	Since     *time.Time
	Until     *time.Time
	Limit     int
}

// Repository persists logged events
type Repository interface {
	LogEvent(ctx context.Context, eventType string, userID *string, payload, metadata map[string]interface{}) error
	// GetEvents returns matching events, newest first
	GetEvents(ctx context.Context, filter EventFilter) ([]Event, error)
	// CleanupOldEvents deletes events older than retentionDays and reports how many
	CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error)
}
