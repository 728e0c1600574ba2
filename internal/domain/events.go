package domain

// Event type constants used for event bus subscriptions and metrics tracking.
//
// Event types follow the pattern: <entity>.<action> (e.g., "pull.completed")
const (
	// EventTypePullCompleted is published after a pull's cards are persisted
	EventTypePullCompleted = "pull.completed"

	// EventTypeBurnCommitted is published after a bulk conversion commits
	EventTypeBurnCommitted = "burn.committed"

	// EventTypeMilestoneAwarded is published once per milestone firing
	EventTypeMilestoneAwarded = "milestone.awarded"

	// EventTypeRefundFailed is published when a compensating refund could not be applied
	EventTypeRefundFailed = "refund.failed"

	// EventTypeDateGrantApplied is published when a date-keyed grant is claimed
	EventTypeDateGrantApplied = "grant.date_applied"
)
