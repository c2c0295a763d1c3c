package middleware

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/idgrid/user-service/internal/domain/model"
)

// MockEventService is a mock implementation of the EventService interface.
type MockEventService struct {
	mock.Mock
	recordCalls int64
	recordDelay time.Duration
}

func (m *MockEventService) Record(ctx context.Context, event *model.Event) error {
	atomic.AddInt64(&m.recordCalls, 1)
	if m.recordDelay > 0 {
		time.Sleep(m.recordDelay)
	}
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventService) RecordBatch(ctx context.Context, events []*model.Event) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

func (m *MockEventService) Query(ctx context.Context, opts model.EventQueryOptions) ([]model.Event, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	events := args.Get(0).([]model.Event) //nolint:errcheck // args.Get doesn't return error
	err := args.Error(1)
	return events, err
}

func (m *MockEventService) Count(ctx context.Context, opts model.EventQueryOptions) (int64, error) {
	args := m.Called(ctx, opts)
	count := args.Get(0).(int64) //nolint:errcheck // args.Get doesn't return error
	err := args.Error(1)
	return count, err
}

func TestDefaultAsyncLoggerConfig(t *testing.T) {
	cfg := DefaultAsyncLoggerConfig()

	assert.Equal(t, 1000, cfg.BufferSize)
	assert.Equal(t, 4, cfg.NumWorkers)
	assert.Equal(t, 5*time.Second, cfg.WriteTimeout)
}

func TestNewAsyncLogger(t *testing.T) {
	tests := []struct {
		name    string
		events  *MockEventService
		cfg     AsyncLoggerConfig
		wantNil bool
	}{
		{
			name:    "nil event service returns nil",
			events:  nil,
			cfg:     DefaultAsyncLoggerConfig(),
			wantNil: true,
		},
		{
			name:    "valid event service creates logger",
			events:  &MockEventService{},
			cfg:     DefaultAsyncLoggerConfig(),
			wantNil: false,
		},
		{
			name:   "custom config",
			events: &MockEventService{},
			cfg: AsyncLoggerConfig{
				BufferSize:   100,
				NumWorkers:   2,
				WriteTimeout: time.Second,
			},
			wantNil: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var al *AsyncLogger
			if tt.events != nil {
				al = NewAsyncLogger(tt.events, tt.cfg)
			} else {
				al = NewAsyncLogger(nil, tt.cfg)
			}

			if tt.wantNil {
				assert.Nil(t, al)
			} else {
				assert.NotNil(t, al)
				al.Stop()
			}
		})
	}
}

func TestAsyncLogger_Log(t *testing.T) {
	t.Run("logs within buffer size", func(t *testing.T) {
		mockService := &MockEventService{}
		mockService.On("Record", mock.Anything, mock.Anything).Return(nil)

		cfg := AsyncLoggerConfig{
			BufferSize:   10,
			NumWorkers:   1,
			WriteTimeout: time.Second,
		}

		al := NewAsyncLogger(mockService, cfg)

		enqueued := 0
		for i := 0; i < 5; i++ {
			event := &model.Event{
				Level:   "info",
				Message: "test",
			}
			if al.Log(event) {
				enqueued++
			}
		}

		assert.Equal(t, 5, enqueued)
		al.Stop()
	})

	t.Run("logs can be dropped when buffer full", func(t *testing.T) {
		// Use a channel to block the worker, ensuring buffer fills completely
		blockCh := make(chan struct{})
		mockService := &MockEventService{}
		mockService.On("Record", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			<-blockCh // Block until we signal
		}).Return(nil)

		cfg := AsyncLoggerConfig{
			BufferSize:   3,
			NumWorkers:   1,
			WriteTimeout: time.Second,
		}

		al := NewAsyncLogger(mockService, cfg)

		// First event goes to worker (blocks), next 3 fill the buffer
		// Any additional should be dropped
		dropped := 0
		for i := 0; i < 10; i++ {
			event := &model.Event{
				Level:   "info",
				Message: "test",
			}
			if !al.Log(event) {
				dropped++
			}
		}

		// At least some events should have been dropped
		assert.Greater(t, dropped, 0, "some events should be dropped when buffer is full")

		// Unblock the worker and stop
		close(blockCh)
		al.Stop()
	})
}

func TestAsyncLogger_Stats(t *testing.T) {
	mockService := &MockEventService{}
	mockService.On("Record", mock.Anything, mock.Anything).Return(nil)

	cfg := AsyncLoggerConfig{
		BufferSize:   100,
		NumWorkers:   2,
		WriteTimeout: time.Second,
	}

	al := NewAsyncLogger(mockService, cfg)

	// Log some events
	for i := 0; i < 5; i++ {
		al.Log(&model.Event{Level: "info", Message: "test"})
	}

	// Wait for processing
	time.Sleep(100 * time.Millisecond)

	enqueued, dropped, written, errors := al.Stats()
	assert.Equal(t, int64(5), enqueued)
	assert.Equal(t, int64(0), dropped)
	assert.Equal(t, int64(5), written)
	assert.Equal(t, int64(0), errors)

	al.Stop()
}

func TestAsyncLogger_ErrorHandling(t *testing.T) {
	mockService := &MockEventService{}
	mockService.On("Record", mock.Anything, mock.Anything).Return(errors.New("db error"))

	cfg := AsyncLoggerConfig{
		BufferSize:   100,
		NumWorkers:   2,
		WriteTimeout: time.Second,
	}

	al := NewAsyncLogger(mockService, cfg)

	// Log some events
	for i := 0; i < 3; i++ {
		al.Log(&model.Event{Level: "info", Message: "test"})
	}

	// Wait for processing
	time.Sleep(100 * time.Millisecond)

	_, _, _, errCount := al.Stats()
	assert.Equal(t, int64(3), errCount)

	al.Stop()
}

func TestAsyncLogger_Stop(t *testing.T) {
	mockService := &MockEventService{}
	mockService.On("Record", mock.Anything, mock.Anything).Return(nil)

	cfg := AsyncLoggerConfig{
		BufferSize:   100,
		NumWorkers:   4,
		WriteTimeout: time.Second,
	}

	al := NewAsyncLogger(mockService, cfg)

	// Log some events
	for i := 0; i < 10; i++ {
		al.Log(&model.Event{Level: "info", Message: "test"})
	}

	// Stop should drain remaining events
	al.Stop()

	// All events should be processed
	_, _, written, _ := al.Stats()
	assert.Equal(t, int64(10), written)
}

func TestGlobalAsyncLogger(t *testing.T) {
	// Initially should be nil
	assert.Nil(t, GetAsyncLogger())

	mockService := &MockEventService{}
	mockService.On("Record", mock.Anything, mock.Anything).Return(nil)

	// Initialize
	InitAsyncLogger(mockService, DefaultAsyncLoggerConfig())
	assert.NotNil(t, GetAsyncLogger())

	// Can log
	GetAsyncLogger().Log(&model.Event{Level: "info", Message: "test"})

	// Stop
	StopAsyncLogger()
	assert.Nil(t, GetAsyncLogger())

	// Calling stop again should be safe
	StopAsyncLogger()
}

func TestInitAsyncLogger_ReplacesExisting(t *testing.T) {
	mockService1 := &MockEventService{}
	mockService2 := &MockEventService{}
	mockService1.On("Record", mock.Anything, mock.Anything).Return(nil)
	mockService2.On("Record", mock.Anything, mock.Anything).Return(nil)

	// Initialize first
	InitAsyncLogger(mockService1, DefaultAsyncLoggerConfig())
	first := GetAsyncLogger()
	assert.NotNil(t, first)

	// Initialize second (should replace first)
	InitAsyncLogger(mockService2, DefaultAsyncLoggerConfig())
	second := GetAsyncLogger()
	assert.NotNil(t, second)
	assert.NotSame(t, first, second)

	StopAsyncLogger()
}
