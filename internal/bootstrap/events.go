package bootstrap

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/osse101/PullBot_Go/internal/config"
	"github.com/osse101/PullBot_Go/internal/event"
)

// InitializeEventSystem creates the in-process bus and the resilient
// publisher that pull, burn and the daily grant worker publish through.
// Zero-valued retry settings fall back to the package defaults.
func InitializeEventSystem(cfg *config.Config) (event.Bus, *event.ResilientPublisher, error) {
	eventBus := event.NewMemoryBus()

	maxRetries := cfg.EventMaxRetries
	if maxRetries == 0 {
		maxRetries = EventDefaultMaxRetries
	}

	retryDelay := cfg.EventRetryDelay
	if retryDelay == 0 {
		retryDelay = EventDefaultRetryDelay
	}

	deadLetterPath := cfg.EventDeadLetterPath
	if deadLetterPath == "" {
		deadLetterPath = EventDefaultDeadLetterPath
	}

	if err := os.MkdirAll(filepath.Dir(deadLetterPath), DirPermission); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", ErrMsgFailedCreateDeadLetterDir, err)
	}
	reportDeadLetters(deadLetterPath)

	resilientPublisher, err := event.NewResilientPublisher(eventBus, maxRetries, retryDelay, deadLetterPath)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", ErrMsgFailedCreateResilientPublisher, err)
	}

	slog.Info(LogMsgEventSystemInitialized,
		"max_retries", maxRetries,
		"retry_delay", retryDelay,
		"deadletter_path", deadLetterPath)

	return eventBus, resilientPublisher, nil
}

// reportDeadLetters warns about events left undelivered by earlier runs
func reportDeadLetters(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	entries, err := event.ReadDeadLetters(f)
	if err != nil {
		slog.Warn(LogMsgDeadLetterUnreadable, "path", path, "error", err)
	}
	if len(entries) == 0 {
		return
	}
	byType := make(map[event.Type]int)
	for _, e := range entries {
		byType[e.Event.Type]++
	}
	slog.Warn(LogMsgDeadLettersPending, "path", path, "count", len(entries), "by_type", byType)
}
