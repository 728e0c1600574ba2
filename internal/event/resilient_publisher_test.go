package event

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/PullBot_Go/internal/domain"
)

// flakyBus fails the first failures publishes and records every attempt
type flakyBus struct {
	mu       sync.Mutex
	attempts []time.Time
	failures int
	delay    time.Duration
}

func (b *flakyBus) Publish(_ context.Context, _ Event) error {
	b.mu.Lock()
	b.attempts = append(b.attempts, time.Now())
	n := len(b.attempts)
	b.mu.Unlock()

	if b.delay > 0 {
		time.Sleep(b.delay)
	}
	if b.failures < 0 || n <= b.failures {
		return errors.New("bus unavailable")
	}
	return nil
}

func (b *flakyBus) Subscribe(Type, Handler) {}

func (b *flakyBus) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.attempts)
}

func (b *flakyBus) gaps() []time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []time.Duration
	for i := 1; i < len(b.attempts); i++ {
		out = append(out, b.attempts[i].Sub(b.attempts[i-1]))
	}
	return out
}

func newPublisher(t *testing.T, bus Bus, retries int, delay time.Duration) (*ResilientPublisher, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deadletter.jsonl")
	rp, err := NewResilientPublisher(bus, retries, delay, path)
	require.NoError(t, err)
	return rp, path
}

func deadLetters(t *testing.T, path string) []DeadLetterEntry {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	entries, err := ReadDeadLetters(f)
	require.NoError(t, err)
	return entries
}

func pullEvent() Event {
	return NewPullCompletedEvent("u-1", []domain.Card{{Rarity: domain.RarityRare, Name: "Dragon"}}, domain.Debit{Timed: 1}, "test")
}

func TestCalculateRetryDelay(t *testing.T) {
	base := 100 * time.Millisecond
	assert.Equal(t, base, CalculateRetryDelay(base, 0))
	assert.Equal(t, base, CalculateRetryDelay(base, 1))
	assert.Equal(t, 2*base, CalculateRetryDelay(base, 2))
	assert.Equal(t, 8*base, CalculateRetryDelay(base, 4))
}

func TestResilientPublisher_DeliversFirstTime(t *testing.T) {
	bus := &flakyBus{}
	rp, path := newPublisher(t, bus, 3, 20*time.Millisecond)

	rp.PublishWithRetry(context.Background(), pullEvent())
	require.NoError(t, rp.Shutdown(context.Background()))

	assert.Equal(t, 1, bus.count())
	assert.Empty(t, deadLetters(t, path))
}

func TestResilientPublisher_RetriesWithBackoff(t *testing.T) {
	bus := &flakyBus{failures: 2}
	rp, path := newPublisher(t, bus, 5, 40*time.Millisecond)

	rp.PublishWithRetry(context.Background(), pullEvent())

	require.Eventually(t, func() bool { return bus.count() == 3 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, rp.Shutdown(context.Background()))

	gaps := bus.gaps()
	require.Len(t, gaps, 2)
	assert.GreaterOrEqual(t, gaps[0], 40*time.Millisecond)
	assert.GreaterOrEqual(t, gaps[1], 80*time.Millisecond)
	assert.Empty(t, deadLetters(t, path))
}

func TestResilientPublisher_ExhaustedRetriesAreDeadLettered(t *testing.T) {
	bus := &flakyBus{failures: -1}
	rp, path := newPublisher(t, bus, 2, 10*time.Millisecond)

	rp.PublishWithRetry(context.Background(), pullEvent())

	// One synchronous publish plus two retries
	require.Eventually(t, func() bool { return bus.count() == 3 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, rp.Shutdown(context.Background()))

	entries := deadLetters(t, path)
	require.Len(t, entries, 1)
	assert.Equal(t, PullCompleted, entries[0].Event.Type)
	assert.Equal(t, 2, entries[0].Attempts)
	assert.Equal(t, "bus unavailable", entries[0].LastError)
	assert.Equal(t, DeadLetterSchemaVersion, entries[0].SchemaVersion)

	payload, err := DecodePayload[PullCompletedPayloadV1](entries[0].Event.Payload)
	require.NoError(t, err)
	assert.Equal(t, "u-1", payload.UserID)
}

func TestResilientPublisher_OverflowGoesStraightToDeadLetter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deadletter.jsonl")
	dl, err := NewDeadLetterWriter(path)
	require.NoError(t, err)

	// No worker: the queue never drains
	rp := &ResilientPublisher{
		bus:        &flakyBus{failures: -1},
		retryQueue: make(chan retryEntry, 2),
		maxRetries: 3,
		retryDelay: time.Hour,
		deadLetter: dl,
		shutdown:   make(chan struct{}),
	}

	for i := 0; i < 5; i++ {
		rp.PublishWithRetry(context.Background(), pullEvent())
	}
	require.NoError(t, dl.Close())

	assert.Len(t, deadLetters(t, path), 3)
	assert.Len(t, rp.retryQueue, 2)
}

func TestResilientPublisher_ShutdownFlushesQueue(t *testing.T) {
	bus := &flakyBus{failures: 1}
	rp, path := newPublisher(t, bus, 3, time.Hour)

	rp.PublishWithRetry(context.Background(), pullEvent())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, rp.Shutdown(ctx))

	// The hour-long backoff is skipped: the queued event gets a final attempt
	assert.Equal(t, 2, bus.count())
	assert.Empty(t, deadLetters(t, path))
}

func TestResilientPublisher_ShutdownTimeout(t *testing.T) {
	bus := &flakyBus{failures: 1, delay: 200 * time.Millisecond}
	rp, _ := newPublisher(t, bus, 3, time.Millisecond)

	go rp.PublishWithRetry(context.Background(), pullEvent())
	require.Eventually(t, func() bool { return bus.count() >= 1 }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return bus.count() >= 2 }, 2*time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := rp.Shutdown(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, rp.Shutdown(context.Background()))
}

func TestReadDeadLetters_ReportsBadLine(t *testing.T) {
	input := `{"schema_version":"1.0","event":{"type":"pull.completed"},"attempts":1}` + "\n\nnot json\n"

	entries, err := ReadDeadLetters(strings.NewReader(input))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
	require.Len(t, entries, 1)
	assert.Equal(t, PullCompleted, entries[0].Event.Type)
}
