package eventlog

// JSON payload field keys
const (
	PayloadKeyUserID = "user_id"
)

// Query limits
const (
	DefaultQueryLimit    = 50
	MaxQueryLimit        = 500
	DefaultRetentionDays = 30
)

// JobNameCleanup names the retention job in scheduler logs
const JobNameCleanup = "event_log_cleanup"

// Log messages - service events
const (
	LogMsgEventPayloadNotObject = "Event payload is not a JSON object, skipping log"
	LogMsgFailedToLogEvent      = "Failed to log event to database"
	LogMsgEventLogged           = "Event logged to database"
)

// Log messages - cleanup job
const (
	LogMsgCleanupJobStarting  = "Starting event log cleanup job"
	LogMsgCleanupJobFailed    = "Event log cleanup failed"
	LogMsgCleanupJobCompleted = "Event log cleanup completed"
)

// Log field keys - structured logging fields
const (
	LogFieldType          = "type"
	LogFieldUserID        = "user_id"
	LogFieldError         = "error"
	LogFieldRetentionDays = "retention_days"
	LogFieldDuration      = "duration"
	LogFieldDeletedCount  = "deleted_count"
)
