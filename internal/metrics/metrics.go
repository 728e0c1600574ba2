package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)

	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameRateLimited,
			Help: HelpTextRateLimited,
		},
		[]string{LabelLimiter},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventHandlerErrors,
			Help: HelpTextEventHandlerErrors,
		},
		[]string{LabelType},
	)
)

// Business Metrics
var (
	PullsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNamePullsTotal,
			Help: HelpTextPullsTotal,
		},
	)

	CardsDrawn = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameCardsDrawn,
			Help: HelpTextCardsDrawn,
		},
		[]string{LabelRarity},
	)

	AllowanceDebited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameAllowanceDebited,
			Help: HelpTextAllowanceDebited,
		},
		[]string{LabelPool},
	)

	BurnsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameBurnsTotal,
			Help: HelpTextBurnsTotal,
		},
	)

	CardsBurned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameCardsBurned,
			Help: HelpTextCardsBurned,
		},
	)

	ExperienceGained = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameExperienceGained,
			Help: HelpTextExperienceGained,
		},
	)

	LevelsGained = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameLevelsGained,
			Help: HelpTextLevelsGained,
		},
	)

	MilestonesAwarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameMilestonesAwarded,
			Help: HelpTextMilestonesAwarded,
		},
		[]string{LabelMilestone},
	)

	RefundsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameRefundsTotal,
			Help: HelpTextRefundsTotal,
		},
		[]string{LabelOutcome},
	)

	DateGrantsClaimed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameDateGrantsClaimed,
			Help: HelpTextDateGrantsClaimed,
		},
	)
)
