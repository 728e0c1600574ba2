package inventory

// Log messages
const (
	LogMsgCardsAdded      = "Cards added to inventory"
	LogMsgStackLockToggle = "Stack lock updated"
)

// Error messages
const (
	ErrMsgAddCardsFailed   = "failed to add cards"
	ErrMsgApplyDeltaFailed = "failed to apply stack delta"
	ErrMsgListStacksFailed = "failed to list stacks"
	ErrMsgSetLockedFailed  = "failed to update stack lock"
)
