package event

import (
	"context"
	"sync"
	"time"

	"github.com/osse101/PullBot_Go/internal/logger"
)

type retryEntry struct {
	event     Event
	attempt   int
	nextAt    time.Time
	lastError error
}

// ResilientPublisher wraps a Bus with asynchronous exponential-backoff
// retries. Events that exhaust their retries, overflow the queue or are
// still failing at shutdown go to the dead-letter file.
type ResilientPublisher struct {
	bus        Bus
	retryQueue chan retryEntry
	maxRetries int
	retryDelay time.Duration
	deadLetter *DeadLetterWriter
	shutdown   chan struct{}
	once       sync.Once
	wg         sync.WaitGroup
}

// NewResilientPublisher starts the retry worker
func NewResilientPublisher(bus Bus, maxRetries int, retryDelay time.Duration, deadLetterPath string) (*ResilientPublisher, error) {
	dl, err := NewDeadLetterWriter(deadLetterPath)
	if err != nil {
		return nil, err
	}
	p := &ResilientPublisher{
		bus:        bus,
		retryQueue: make(chan retryEntry, RetryQueueBufferSize),
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		deadLetter: dl,
		shutdown:   make(chan struct{}),
	}
	p.wg.Add(1)
	go p.retryWorker()
	return p, nil
}

// PublishWithRetry publishes synchronously once and queues a retry on failure.
// It never returns an error to the caller.
func (p *ResilientPublisher) PublishWithRetry(ctx context.Context, event Event) {
	err := p.bus.Publish(ctx, event)
	if err == nil {
		return
	}
	logger.FromContext(ctx).Warn(LogMsgEventPublishFailed, "event_type", event.Type, "error", err)
	p.enqueue(retryEntry{
		event:     event,
		attempt:   1,
		nextAt:    time.Now().Add(CalculateRetryDelay(p.retryDelay, 1)),
		lastError: err,
	})
}

// Publish satisfies Bus so the publisher can stand in for the raw bus
func (p *ResilientPublisher) Publish(ctx context.Context, event Event) error {
	p.PublishWithRetry(ctx, event)
	return nil
}

// Subscribe delegates to the inner bus
func (p *ResilientPublisher) Subscribe(eventType Type, handler Handler) {
	p.bus.Subscribe(eventType, handler)
}

func (p *ResilientPublisher) enqueue(entry retryEntry) {
	select {
	case p.retryQueue <- entry:
	default:
		logger.FromContext(context.Background()).Error(LogMsgRetryQueueFull, "event_type", entry.event.Type)
		p.writeDeadLetter(entry)
	}
}

func (p *ResilientPublisher) writeDeadLetter(entry retryEntry) {
	if err := p.deadLetter.Write(entry.event, entry.attempt, entry.lastError); err != nil {
		logger.FromContext(context.Background()).Error(LogMsgDeadLetterWriteFailed, "event_type", entry.event.Type, "error", err)
	}
}

func (p *ResilientPublisher) retryWorker() {
	defer p.wg.Done()
	ctx := context.Background()
	log := logger.FromContext(ctx)

	for {
		select {
		case <-p.shutdown:
			p.drain()
			return
		case entry := <-p.retryQueue:
			if wait := time.Until(entry.nextAt); wait > 0 {
				timer := time.NewTimer(wait)
				select {
				case <-timer.C:
				case <-p.shutdown:
					timer.Stop()
					p.finalAttempt(entry)
					p.drain()
					return
				}
			}

			err := p.bus.Publish(ctx, entry.event)
			if err == nil {
				log.Info(LogMsgEventRetrySucceeded, "event_type", entry.event.Type, "attempt", entry.attempt)
				continue
			}
			entry.lastError = err
			if entry.attempt >= p.maxRetries {
				log.Error(LogMsgEventRetryExhausted, "event_type", entry.event.Type, "attempts", entry.attempt)
				p.writeDeadLetter(entry)
				continue
			}
			entry.attempt++
			entry.nextAt = time.Now().Add(CalculateRetryDelay(p.retryDelay, entry.attempt))
			log.Warn(LogMsgEventRetryFailed, "event_type", entry.event.Type, "attempt", entry.attempt-1, "error", err)
			p.enqueue(entry)
		}
	}
}

// finalAttempt publishes once more without waiting and dead-letters on failure
func (p *ResilientPublisher) finalAttempt(entry retryEntry) {
	if err := p.bus.Publish(context.Background(), entry.event); err != nil {
		entry.lastError = err
		logger.FromContext(context.Background()).Warn(LogMsgEventDroppedShutdown, "event_type", entry.event.Type)
		p.writeDeadLetter(entry)
	}
}

func (p *ResilientPublisher) drain() {
	drained := 0
	for {
		select {
		case entry := <-p.retryQueue:
			p.finalAttempt(entry)
			drained++
		default:
			if drained > 0 {
				logger.FromContext(context.Background()).Info(LogMsgQueueDrainedShutdown, "count", drained)
			}
			return
		}
	}
}

// Shutdown stops the worker, giving queued events one last attempt
func (p *ResilientPublisher) Shutdown(ctx context.Context) error {
	p.once.Do(func() { close(p.shutdown) })

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return p.deadLetter.Close()
	case <-ctx.Done():
		logger.FromContext(ctx).Warn(LogMsgShutdownTimeout)
		return ctx.Err()
	}
}
