package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/PullBot_Go/internal/eventlog"
)

// EventLogRepository implements eventlog.Repository for PostgreSQL
type EventLogRepository struct {
	db *pgxpool.Pool
}

// NewEventLogRepository creates a new PostgreSQL event log repository
func NewEventLogRepository(db *pgxpool.Pool) *EventLogRepository {
	return &EventLogRepository{db: db}
}

// LogEvent stores an event in the database
func (r *EventLogRepository) LogEvent(ctx context.Context, eventType string, userID *string, payload, metadata map[string]interface{}) error {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	payloadJSON, err := jsonParam(payload)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToEncodeEvent, err)
	}
	var metadataJSON any
	if metadata != nil {
		raw, err := jsonParam(metadata)
		if err != nil {
			return fmt.Errorf("%s: %w", ErrMsgFailedToEncodeEvent, err)
		}
		metadataJSON = raw
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO events (event_type, user_id, payload, metadata)
		VALUES ($1, $2, $3, $4)
	`, eventType, userID, payloadJSON, metadataJSON)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToLogEvent, err)
	}
	return nil
}

// GetEvents retrieves events matching filter, newest first
func (r *EventLogRepository) GetEvents(ctx context.Context, filter eventlog.EventFilter) ([]eventlog.Event, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = eventlog.DefaultQueryLimit
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, event_type, user_id, payload, metadata, created_at
		FROM events
		WHERE ($1::text IS NULL OR user_id = $1)
		  AND ($2::text IS NULL OR event_type = $2)
		  AND ($3::timestamptz IS NULL OR created_at >= $3)
		  AND ($4::timestamptz IS NULL OR created_at <= $4)
		ORDER BY created_at DESC, id DESC
		LIMIT $5
	`, filter.UserID, filter.EventType, filter.Since, filter.Until, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryEvents, err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// CleanupOldEvents removes events older than the specified number of days
func (r *EventLogRepository) CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM events
		WHERE created_at < NOW() - INTERVAL '1 day' * $1
	`, retentionDays)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToCleanupEvents, err)
	}
	return tag.RowsAffected(), nil
}

func scanEvents(rows pgx.Rows) ([]eventlog.Event, error) {
	var out []eventlog.Event
	for rows.Next() {
		var e eventlog.Event
		var payload, metadata []byte
		if err := rows.Scan(&e.ID, &e.EventType, &e.UserID, &payload, &metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryEvents, err)
		}
		var err error
		if e.Payload, err = decodeMap[interface{}](payload); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryEvents, err)
		}
		if len(metadata) > 0 {
			if e.Metadata, err = decodeMap[interface{}](metadata); err != nil {
				return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryEvents, err)
			}
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryEvents, err)
	}
	return out, nil
}
