package pull

// Cards debited per pull
const UnitsPerPull = 1

// Log messages
const (
	LogMsgPullCompleted    = "Pull completed"
	LogMsgPullFailed       = "Pull failed after debit, refunding"
	LogMsgRefundApplied    = "Pull refund applied"
	LogMsgRefundFailed     = "Pull refund failed, allowance lost"
	LogMsgAuditWriteFailed = "Failed to write refund audit record"
)

// Error messages
const (
	ErrMsgUserIDRequired = "user id is required"
	ErrMsgDrawFailed     = "draw failed"
	ErrMsgPersistFailed  = "failed to persist drawn cards"
)
