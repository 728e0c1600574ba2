package burn

import "time"

// Defaults for bulk conversion
const (
	DefaultConfirmTimeout = 60 * time.Second
	DefaultSampleSize     = 10
	DefaultMaxPreviews    = 1024

	// DefaultXP applies to categories without a configured value
	DefaultXP = 1
)

// Log messages
const (
	LogMsgPreviewCreated   = "Burn preview created"
	LogMsgPreviewExpired   = "Burn preview dropped"
	LogMsgPreviewCancelled = "Burn preview cancelled"
	LogMsgBurnCommitted    = "Burn committed"
	LogMsgBurnAborted      = "Burn aborted, transaction rolled back"
	LogMsgCascadeDefect    = "Experience cascade defect"
	LogMsgRollbackFailed   = "Failed to roll back burn transaction"
)

// Error messages
const (
	ErrMsgBeginTxFailed     = "failed to begin burn transaction"
	ErrMsgLockStacksFailed  = "failed to lock stacks"
	ErrMsgRemoveFailed      = "failed to remove cards"
	ErrMsgProgressionFailed = "failed to load progression"
	ErrMsgSaveFailed        = "failed to save progression"
	ErrMsgCreditFailed      = "failed to grant credits"
	ErrMsgMintFailed        = "failed to mint award cards"
	ErrMsgAuditFailed       = "failed to write audit record"
	ErrMsgCommitFailed      = "failed to commit burn"
	ErrMsgListStacksFailed  = "failed to list stacks"
	ErrMsgStackLocked       = "stack is locked"
	ErrMsgCharacterRequired = "character is required"
	ErrMsgUserIDRequired    = "user id is required"
)
