package event

import "time"

// EventSchemaVersion is stamped on every event built by this package
const EventSchemaVersion = "1.0"

// DeadLetterSchemaVersion versions the dead-letter line format
const DeadLetterSchemaVersion = "1.0"

const (
	// RetryQueueBufferSize bounds the events waiting for a retry. Overflow
	// is dead-lettered immediately.
	RetryQueueBufferSize = 1000

	deadLetterFileMode = 0o644
)

const (
	LogMsgEventPublishFailed    = "Event publish failed, queuing for retry"
	LogMsgRetryQueueFull        = "Retry queue full, event dropped to dead-letter"
	LogMsgDeadLetterWriteFailed = "Failed to write to dead letter"
	LogMsgEventRetryExhausted   = "Event retry exhausted, writing to dead-letter"
	LogMsgEventRetryFailed      = "Event retry failed, scheduling next attempt"
	LogMsgEventRetrySucceeded   = "Event retry succeeded"
	LogMsgEventDroppedShutdown  = "Event still failing at shutdown"
	LogMsgQueueDrainedShutdown  = "Drained retry queue during shutdown"
	LogMsgShutdownTimeout       = "Resilient publisher shutdown timed out"
	LogMsgEventDeadLettered     = "Event dead-lettered"

	ErrMsgHandlersFailed = "event handlers failed"
)

// CalculateRetryDelay doubles baseDelay for every attempt after the first
func CalculateRetryDelay(baseDelay time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return baseDelay << (attempt - 1)
}
