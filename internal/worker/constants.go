package worker

// Job names used in logs
const (
	JobNameDailyGrant = "daily_grant"
)

// ============================================================================
// Log Messages - Worker Pool
// ============================================================================

const (
	// LogMsgWorkerJobFailed is logged when a worker fails to process a job
	LogMsgWorkerJobFailed = "Worker job failed"
	// LogMsgWorkerQueueFull is logged when a non-blocking enqueue finds the queue full
	LogMsgWorkerQueueFull = "Worker queue full, job dropped"
)

// ============================================================================
// Log Messages - Daily Grant Worker
// ============================================================================

const (
	LogMsgDailyGrantApplied        = "Daily grant applied"
	LogMsgDailyGrantAlreadyClaimed = "Daily grant already claimed"
	LogMsgDailyGrantFailed         = "Daily grant failed"
	LogMsgPublishFailed            = "Failed to publish event"

	ErrMsgDailyGrantFailed = "daily grant failed for"
)

// ============================================================================
// Test Configuration
// ============================================================================

// Test pool configuration values used in pool_test.go
const (
	TestWorkerCount           = 2
	TestQueueSize             = 10
	TestExpectedJobCount      = 2
	TestWorkerProcessWaitTime = 100 // milliseconds
)
