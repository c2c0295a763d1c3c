package middleware

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/idgrid/user-service/internal/domain/model"
	"github.com/idgrid/user-service/internal/logger"
	"github.com/idgrid/user-service/internal/service"
)

// AsyncLoggerConfig holds configuration for the async event logger.
type AsyncLoggerConfig struct {
	// BufferSize is the size of the event channel buffer.
	BufferSize int
	// NumWorkers is the number of worker goroutines writing events.
	NumWorkers int
	// WriteTimeout is the timeout for writing an event to the store.
	WriteTimeout time.Duration
}

// DefaultAsyncLoggerConfig returns sensible defaults for the async logger.
func DefaultAsyncLoggerConfig() AsyncLoggerConfig {
	return AsyncLoggerConfig{
		BufferSize:   1000,
		NumWorkers:   4,
		WriteTimeout: 5 * time.Second,
	}
}

// AsyncLogger provides buffered, worker-pool based async event recording.
// This prevents unbounded goroutine creation under high load.
type AsyncLogger struct {
	events       service.EventService
	eventCh      chan *model.Event
	wg           sync.WaitGroup
	stopCh       chan struct{}
	writeTimeout time.Duration

	// Metrics
	enqueued int64
	dropped  int64
	written  int64
	errors   int64
}

// NewAsyncLogger creates a new async logger with the given configuration.
func NewAsyncLogger(events service.EventService, cfg AsyncLoggerConfig) *AsyncLogger {
	if events == nil {
		return nil
	}

	al := &AsyncLogger{
		events:       events,
		eventCh:      make(chan *model.Event, cfg.BufferSize),
		stopCh:       make(chan struct{}),
		writeTimeout: cfg.WriteTimeout,
	}

	// Start worker pool
	for i := 0; i < cfg.NumWorkers; i++ {
		al.wg.Add(1)
		go al.worker()
	}

	return al
}

// worker processes events from the channel.
func (al *AsyncLogger) worker() {
	defer al.wg.Done()

	for {
		select {
		case event, ok := <-al.eventCh:
			if !ok {
				return // Channel closed
			}
			al.writeEvent(event)
		case <-al.stopCh:
			// Drain remaining events before stopping
			for {
				select {
				case event := <-al.eventCh:
					al.writeEvent(event)
				default:
					return
				}
			}
		}
	}
}

// writeEvent records a single event through the event service.
func (al *AsyncLogger) writeEvent(event *model.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), al.writeTimeout)
	defer cancel()

	if err := al.events.Record(ctx, event); err != nil {
		atomic.AddInt64(&al.errors, 1)
		// Log the error locally but don't propagate
		log := logger.Logger()
		log.Warn().Err(err).Msg("Failed to write async audit event")
	} else {
		atomic.AddInt64(&al.written, 1)
	}
}

// Log enqueues an event for async processing.
// Returns true if the event was enqueued, false if the buffer is full.
func (al *AsyncLogger) Log(event *model.Event) bool {
	select {
	case al.eventCh <- event:
		atomic.AddInt64(&al.enqueued, 1)
		return true
	default:
		// Buffer full, drop the event
		atomic.AddInt64(&al.dropped, 1)
		return false
	}
}

// Stop gracefully shuts down the async logger.
// It waits for all pending events to be processed.
func (al *AsyncLogger) Stop() {
	close(al.stopCh)
	al.wg.Wait()
	close(al.eventCh)
}

// Stats returns current async logger statistics.
func (al *AsyncLogger) Stats() (enqueued, dropped, written, errors int64) {
	return atomic.LoadInt64(&al.enqueued),
		atomic.LoadInt64(&al.dropped),
		atomic.LoadInt64(&al.written),
		atomic.LoadInt64(&al.errors)
}

// globalAsyncLogger is the singleton async logger instance.
var (
	globalAsyncLogger   *AsyncLogger
	globalAsyncLoggerMu sync.RWMutex
)

// InitAsyncLogger initializes the global async logger.
// Should be called once during application startup.
func InitAsyncLogger(events service.EventService, cfg AsyncLoggerConfig) {
	globalAsyncLoggerMu.Lock()
	defer globalAsyncLoggerMu.Unlock()

	if globalAsyncLogger != nil {
		globalAsyncLogger.Stop()
	}
	globalAsyncLogger = NewAsyncLogger(events, cfg)
}

// GetAsyncLogger returns the global async logger instance.
func GetAsyncLogger() *AsyncLogger {
	globalAsyncLoggerMu.RLock()
	defer globalAsyncLoggerMu.RUnlock()
	return globalAsyncLogger
}

// StopAsyncLogger gracefully shuts down the global async logger.
func StopAsyncLogger() {
	globalAsyncLoggerMu.Lock()
	defer globalAsyncLoggerMu.Unlock()

	if globalAsyncLogger != nil {
		globalAsyncLogger.Stop()
		globalAsyncLogger = nil
	}
}
