package postgres

// PostgreSQL Error Codes
const (
	// PgErrorCodeUniqueViolation is the PostgreSQL error code for unique constraint violations
	PgErrorCodeUniqueViolation = "23505"
)

// Error Messages - Transaction Operations
const (
	ErrMsgFailedToBeginTransaction  = "failed to begin transaction"
	ErrMsgFailedToCommitTransaction = "failed to commit transaction"
)

// Error Messages - Allowance Operations
const (
	ErrMsgFailedToGetAllowance    = "failed to get allowance"
	ErrMsgFailedToCreateAllowance = "failed to create allowance"
	ErrMsgFailedToUpdateAllowance = "failed to update allowance"
	ErrMsgFailedToEncodeNamed     = "failed to encode named credits"
	ErrMsgFailedToDecodeNamed     = "failed to decode named credits"
	ErrMsgFailedToGetGrant        = "failed to get grant"
	ErrMsgFailedToListGrants      = "failed to list grants"
	ErrMsgFailedToCreateGrant     = "failed to create grant"
	ErrMsgFailedToDeactivateGrant = "failed to deactivate grant"
	ErrMsgFailedToClaimGrant      = "failed to record grant claim"
	ErrMsgFailedToCreditGrant     = "failed to credit date grant"
	ErrMsgFailedToAddEventCredits = "failed to add event credits"
)

// Error Messages - Inventory Operations
const (
	ErrMsgFailedToReadStack    = "failed to read stack"
	ErrMsgFailedToUpsertStack  = "failed to upsert stack"
	ErrMsgFailedToUpdateStack  = "failed to update stack"
	ErrMsgFailedToDeleteStack  = "failed to delete stack"
	ErrMsgFailedToListStacks   = "failed to list stacks"
	ErrMsgFailedToLockStacks   = "failed to lock stacks"
	ErrMsgFailedToSetLocked    = "failed to set stack lock"
	ErrMsgZeroDelta            = "stack delta must be non-zero"
	ErrMsgFailedToScanStackRow = "failed to scan stack row"
)

// Error Messages - Progression Operations
const (
	ErrMsgFailedToGetProgression    = "failed to get progression"
	ErrMsgFailedToInitProgression   = "failed to initialise progression"
	ErrMsgFailedToSaveProgression   = "failed to save progression"
	ErrMsgFailedToLoadAwardHistory  = "failed to load award history"
	ErrMsgFailedToInsertAward       = "failed to insert award history"
	ErrMsgFailedToListMilestones    = "failed to list milestones"
	ErrMsgFailedToUpsertMilestone   = "failed to upsert milestone"
	ErrMsgFailedToPruneMilestones   = "failed to delete dropped milestones"
	ErrMsgFailedToEncodeProgression = "failed to encode progression maps"
	ErrMsgFailedToDecodeProgression = "failed to decode progression maps"
)

// Error Messages - Audit Operations
const (
	ErrMsgFailedToInsertAudit = "failed to insert audit record"
	ErrMsgFailedToListAudits  = "failed to list audit records"
	ErrMsgFailedToEncodeAudit = "failed to encode audit record"
	ErrMsgFailedToDecodeAudit = "failed to decode audit record"
)

// Error Messages - Event Log Operations
const (
	ErrMsgFailedToEncodeEvent   = "failed to encode event"
	ErrMsgFailedToLogEvent      = "failed to log event"
	ErrMsgFailedToQueryEvents   = "failed to query events"
	ErrMsgFailedToCleanupEvents = "failed to clean up events"
)
