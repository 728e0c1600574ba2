package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
	MetricNameRateLimited          = "http_rate_limited_total"
)

// Event metric names
const (
	MetricNameEventsPublished    = "events_published_total"
	MetricNameEventHandlerErrors = "event_handler_errors_total"
)

// Business metric names
const (
	MetricNamePullsTotal        = "pulls_total"
	MetricNameCardsDrawn        = "cards_drawn_total"
	MetricNameAllowanceDebited  = "allowance_debited_total"
	MetricNameBurnsTotal        = "burns_total"
	MetricNameCardsBurned       = "cards_burned_total"
	MetricNameExperienceGained  = "experience_gained_total"
	MetricNameLevelsGained      = "levels_gained_total"
	MetricNameMilestonesAwarded = "milestones_awarded_total"
	MetricNameRefundsTotal      = "refunds_total"
	MetricNameDateGrantsClaimed = "date_grants_claimed_total"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
	HelpTextRateLimited          = "Requests refused by a rate limiter"
)

// Event metric help text
const (
	HelpTextEventsPublished    = "Total number of events published"
	HelpTextEventHandlerErrors = "Total number of event handler errors"
)

// Business metric help text
const (
	HelpTextPullsTotal        = "Total number of completed pulls"
	HelpTextCardsDrawn        = "Total number of cards drawn by rarity"
	HelpTextAllowanceDebited  = "Total allowance units debited by pool"
	HelpTextBurnsTotal        = "Total number of committed bulk conversions"
	HelpTextCardsBurned       = "Total number of cards converted to experience"
	HelpTextExperienceGained  = "Total experience granted by conversions"
	HelpTextLevelsGained      = "Total levels gained through conversions"
	HelpTextMilestonesAwarded = "Total milestone firings by milestone"
	HelpTextRefundsTotal      = "Compensating refunds by outcome"
	HelpTextDateGrantsClaimed = "Date-keyed grants claimed"
)

// ============================================================================
// Metric Label Names
// ============================================================================

// Common label names used across metrics
const (
	LabelMethod    = "method"
	LabelPath      = "path"
	LabelStatus    = "status"
	LabelType      = "type"
	LabelRarity    = "rarity"
	LabelPool      = "pool"
	LabelMilestone = "milestone"
	LabelOutcome   = "outcome"
	LabelLimiter   = "limiter"
)

// Refund outcomes
const (
	OutcomeRefunded = "refunded"
	OutcomeFailed   = "failed"
)

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds, from 1ms to 10s
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// Debug log messages
const (
	LogMsgEventPayloadUnknown = "Event payload could not be decoded"
	LogMsgMetricsRecorded     = "Metrics recorded for event"
)
