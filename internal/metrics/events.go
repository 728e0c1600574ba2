package metrics

import (
	"context"

	"github.com/osse101/PullBot_Go/internal/domain"
	"github.com/osse101/PullBot_Go/internal/event"
	"github.com/osse101/PullBot_Go/internal/logger"
)

// EventMetricsCollector subscribes to events and records metrics
type EventMetricsCollector struct{}

// NewEventMetricsCollector creates a new event metrics collector
func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{}
}

// Register subscribes to all events
func (e *EventMetricsCollector) Register(bus event.Bus) error {
	eventTypes := []event.Type{
		event.PullCompleted,
		event.BurnCommitted,
		event.MilestoneAwarded,
		event.RefundFailed,
		event.DateGrantApplied,
	}

	for _, eventType := range eventTypes {
		bus.Subscribe(eventType, e.HandleEvent)
	}

	return nil
}

// HandleEvent processes events and updates metrics
func (e *EventMetricsCollector) HandleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	EventsPublished.WithLabelValues(string(evt.Type)).Inc()

	var err error
	switch evt.Type {
	case event.PullCompleted:
		var p event.PullCompletedPayloadV1
		if p, err = event.DecodePayload[event.PullCompletedPayloadV1](evt.Payload); err == nil {
			PullsTotal.Inc()
			for rarity, n := range p.Rarities {
				CardsDrawn.WithLabelValues(rarity).Add(float64(n))
			}
			recordDebit(p.Debit)
		}

	case event.BurnCommitted:
		var p event.BurnCommittedPayloadV1
		if p, err = event.DecodePayload[event.BurnCommittedPayloadV1](evt.Payload); err == nil {
			BurnsTotal.Inc()
			CardsBurned.Add(float64(p.CardsRemoved))
			ExperienceGained.Add(float64(p.XPGained))
			if gained := p.LevelAfter - p.LevelBefore; gained > 0 {
				LevelsGained.Add(float64(gained))
			}
		}

	case event.MilestoneAwarded:
		var p event.MilestoneAwardedPayloadV1
		if p, err = event.DecodePayload[event.MilestoneAwardedPayloadV1](evt.Payload); err == nil {
			MilestonesAwarded.WithLabelValues(p.MilestoneID).Inc()
		}

	case event.RefundFailed:
		RefundsTotal.WithLabelValues(OutcomeFailed).Inc()

	case event.DateGrantApplied:
		DateGrantsClaimed.Inc()
	}

	if err != nil {
		EventHandlerErrors.WithLabelValues(string(evt.Type)).Inc()
		log.Debug(LogMsgEventPayloadUnknown, "type", evt.Type, "error", err)
		return nil
	}

	log.Debug(LogMsgMetricsRecorded, "type", evt.Type)
	return nil
}

func recordDebit(d domain.Debit) {
	if d.Timed > 0 {
		AllowanceDebited.WithLabelValues(string(domain.PoolTimed)).Add(float64(d.Timed))
	}
	if d.Event > 0 {
		AllowanceDebited.WithLabelValues(string(domain.PoolEvent)).Add(float64(d.Event))
	}
	if d.Named > 0 {
		AllowanceDebited.WithLabelValues(string(domain.PoolNamed)).Add(float64(d.Named))
	}
}
