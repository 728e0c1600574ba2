package eventlog

import (
	"context"
	"encoding/json"

	"github.com/osse101/PullBot_Go/internal/event"
	"github.com/osse101/PullBot_Go/internal/logger"
)

// LoggedEventTypes are persisted by the event logger
var LoggedEventTypes = []event.Type{
	event.PullCompleted,
	event.BurnCommitted,
	event.MilestoneAwarded,
	event.RefundFailed,
	event.DateGrantApplied,
}

// Service handles event logging business logic
type Service interface {
	// Subscribe registers the event logger for every logged event type
	Subscribe(bus event.Bus) error

	// ListEvents returns stored events, newest first
	ListEvents(ctx context.Context, filter EventFilter) ([]Event, error)

	// CleanupOldEvents removes events older than retention period
	CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error)
}

type service struct {
	repo Repository
}

// NewService creates a new event logging service
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Subscribe(bus event.Bus) error {
	for _, eventType := range LoggedEventTypes {
		bus.Subscribe(eventType, s.handleEvent)
	}
	return nil
}

// handleEvent flattens the typed payload into a JSON object and stores it
func (s *service) handleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	payload, err := toMap(evt.Payload)
	if err != nil || payload == nil {
		log.Debug(LogMsgEventPayloadNotObject, LogFieldType, evt.Type)
		return nil
	}

	var userID *string
	if uid, ok := payload[PayloadKeyUserID].(string); ok && uid != "" {
		userID = &uid
	}
	metadata, _ := evt.Metadata.(map[string]interface{})

	if err := s.repo.LogEvent(ctx, string(evt.Type), userID, payload, metadata); err != nil {
		log.Error(LogMsgFailedToLogEvent, LogFieldError, err, LogFieldType, evt.Type)
		return err
	}

	log.Debug(LogMsgEventLogged, LogFieldType, evt.Type, LogFieldUserID, userID)
	return nil
}

func (s *service) ListEvents(ctx context.Context, filter EventFilter) ([]Event, error) {
	if filter.Limit <= 0 || filter.Limit > MaxQueryLimit {
		filter.Limit = DefaultQueryLimit
	}
	return s.repo.GetEvents(ctx, filter)
}

func (s *service) CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error) {
	return s.repo.CleanupOldEvents(ctx, retentionDays)
}

func toMap(payload interface{}) (map[string]interface{}, error) {
	if m, ok := payload.(map[string]interface{}); ok {
		return m, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
