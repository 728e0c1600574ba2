package quota

import "time"

// Default allowance settings
const (
	DefaultMaxStock       = 12
	DefaultRefillInterval = 2 * time.Hour

	// MaxWriteAttempts bounds the optimistic read-modify-write loop: the first
	// attempt plus one retry with a fresh read.
	MaxWriteAttempts = 2
)

// Policy names accepted from callers
const (
	PolicyNameBest           = "best"
	PolicyNameNamed          = "named"
	PolicyNameEventThenTimed = "event_then_timed"
	PolicyNameTimed          = "timed"
	PolicyNameEvent          = "event"
)

// Log messages
const (
	LogMsgAllowanceCreated      = "Allowance record created"
	LogMsgAllowanceConflict     = "Allowance write lost a race, retrying with fresh read"
	LogMsgAllowanceConsumed     = "Allowance consumed"
	LogMsgAllowanceRefunded     = "Allowance refunded"
	LogMsgGrantCreated          = "Named grant created"
	LogMsgGrantDeactivated      = "Named grant deactivated"
	LogMsgDateGrantClaimed      = "Date-keyed grant claimed"
	LogMsgDateGrantAlreadyTaken = "Date-keyed grant already claimed"
	LogMsgBirthdayGranted       = "Birthday grant applied"
)

// Error messages
const (
	ErrMsgGetAllowanceFailed    = "failed to load allowance"
	ErrMsgCreateAllowanceFailed = "failed to create allowance"
	ErrMsgUpdateAllowanceFailed = "failed to update allowance"
	ErrMsgGetGrantFailed        = "failed to load grant"
	ErrMsgListGrantsFailed      = "failed to list grants"
)
