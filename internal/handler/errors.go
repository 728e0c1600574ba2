package handler

// Generic HTTP error messages for client responses.
// These messages intentionally do not expose internal error details.
// Both handlers and tests should reference these constants.
const (
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"
	ErrMsgMissingQueryParam     = "Missing %s query parameter"
	ErrMsgInvalidQueryParam     = "Invalid %s query parameter"
	ErrMsgMissingPathParam      = "Missing %s path parameter"

	// Operation failures, logged alongside the underlying error
	ErrMsgPullFailed             = "Failed to pull packet"
	ErrMsgGetAllowanceFailed     = "Failed to get allowance"
	ErrMsgGetInventoryFailed     = "Failed to get inventory"
	ErrMsgLockStackFailed        = "Failed to update stack lock"
	ErrMsgBurnPreviewFailed      = "Failed to preview burn"
	ErrMsgBurnConfirmFailed      = "Failed to confirm burn"
	ErrMsgBurnCancelFailed       = "Failed to cancel burn"
	ErrMsgGetProgressionFailed   = "Failed to get progression"
	ErrMsgCreateGrantFailed      = "Failed to create grant"
	ErrMsgDeactivateGrantFailed  = "Failed to deactivate grant"
	ErrMsgListGrantsFailed       = "Failed to list grants"
	ErrMsgDateGrantFailed        = "Failed to apply date grant"
	ErrMsgBirthdayGrantFailed    = "Failed to apply birthday grant"
	ErrMsgListEventsFailed       = "Failed to list events"
	ErrMsgInvalidTimestampFormat = "Invalid %s timestamp, expected RFC3339"
)

// Success messages for API responses
const (
	MsgBurnCancelled       = "Burn preview cancelled"
	MsgGrantDeactivated    = "Grant deactivated"
	MsgStackLocked         = "Stack locked"
	MsgStackUnlocked       = "Stack unlocked"
	MsgDateGrantApplied    = "Date grant applied"
	MsgDateGrantDuplicate  = "Date grant already applied"
	MsgBirthdayGranted     = "Birthday grant applied"
	MsgBirthdayAlreadyDone = "Birthday grant already applied this year"
)

// Log messages
const (
	LogMsgPullCompleted     = "Pull completed"
	LogMsgBurnPreviewed     = "Burn previewed"
	LogMsgBurnConfirmed     = "Burn confirmed"
	LogMsgBurnCancelled     = "Burn cancelled"
	LogMsgGrantCreated      = "Grant created via API"
	LogMsgGrantDeactivated  = "Grant deactivated via API"
	LogMsgDateGrantApplied  = "Date grant applied via API"
	LogMsgBirthdayGrant     = "Birthday grant processed via API"
	LogMsgStackLockChanged  = "Stack lock changed"
	LogMsgServiceError      = "Service call failed"
	LogMsgEncodeFailed      = "Failed to encode JSON response"
	LogMsgWriteFailed       = "Failed to write response buffer"
	LogMsgReadinessFailed   = "Readiness check failed"
	LogMsgMissingQueryParam = "Missing query parameter"
)

// Query and path parameter names
const (
	ParamUserID    = "user_id"
	ParamCharacter = "character"
	ParamRarity    = "rarity"
	ParamOp        = "op"
	ParamThreshold = "threshold"
	ParamLocked    = "include_locked"
	ParamLabel     = "label"
	ParamEventType = "event_type"
	ParamSince     = "since"
	ParamUntil     = "until"
	ParamLimit     = "limit"
)
