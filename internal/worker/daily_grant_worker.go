package worker

import (
	"context"
	"fmt"

	"github.com/osse101/PullBot_Go/internal/clock"
	"github.com/osse101/PullBot_Go/internal/domain"
	"github.com/osse101/PullBot_Go/internal/event"
	"github.com/osse101/PullBot_Go/internal/logger"
	"github.com/osse101/PullBot_Go/internal/quota"
)

// DailyGrantWorker credits today's date-keyed grant. It is scheduled on an
// interval; every run after the first one of a day is a no-op because the
// (date key, target) claim is recorded once.
type DailyGrantWorker struct {
	quota     quota.Service
	publisher event.Publisher
	clock     clock.Clock
	target    string
	credits   int
}

// NewDailyGrantWorker creates a new DailyGrantWorker. publisher may be nil.
func NewDailyGrantWorker(q quota.Service, publisher event.Publisher, clk clock.Clock, target string, credits int) *DailyGrantWorker {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	if target == "" {
		target = domain.WildcardTarget
	}
	return &DailyGrantWorker{
		quota:     q,
		publisher: publisher,
		clock:     clk,
		target:    target,
		credits:   credits,
	}
}

// Name identifies the job in pool logs
func (w *DailyGrantWorker) Name() string {
	return JobNameDailyGrant
}

// Process claims today's grant
func (w *DailyGrantWorker) Process(ctx context.Context) error {
	log := logger.FromContext(ctx)
	dateKey := clock.DateKey(w.clock.Now())

	res, err := w.quota.GrantForDate(ctx, dateKey, w.target, w.credits)
	if err != nil {
		log.Error(LogMsgDailyGrantFailed, "date_key", dateKey, "target", w.target, "error", err)
		return fmt.Errorf("%s %s: %w", ErrMsgDailyGrantFailed, dateKey, err)
	}
	if !res.Claimed {
		log.Debug(LogMsgDailyGrantAlreadyClaimed, "date_key", dateKey, "target", w.target)
		return nil
	}

	log.Info(LogMsgDailyGrantApplied,
		"date_key", dateKey,
		"target", w.target,
		"credits", w.credits,
		"records_affected", res.RecordsAffected)

	if w.publisher != nil {
		if err := w.publisher.Publish(ctx, event.NewDateGrantAppliedEvent(res, w.credits, JobNameDailyGrant)); err != nil {
			log.Warn(LogMsgPublishFailed, "error", err)
		}
	}
	return nil
}
