package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/idgrid/user-service/internal/domain/model"
	"github.com/idgrid/user-service/internal/idgen"
	"github.com/idgrid/user-service/internal/repository"
)

// ErrRepositoryNotConfigured is returned when an operation needs a backing
// repository and none is configured.
var ErrRepositoryNotConfigured = errors.New("repository not configured")

// EventService records and queries audit events such as user creation,
// login and logout. Records are always mirrored to the application log;
// they are persisted only when an event repository is configured.
type EventService interface {
	// Record stores a single audit event.
	Record(ctx context.Context, event *model.Event) error

	// RecordBatch stores multiple audit events in bulk.
	RecordBatch(ctx context.Context, events []*model.Event) error

	// Query retrieves audit events matching the query options, newest first.
	Query(ctx context.Context, opts model.EventQueryOptions) ([]model.Event, error)

	// Count returns the count of audit events matching the query options.
	Count(ctx context.Context, opts model.EventQueryOptions) (int64, error)
}

// EventServiceImpl implements the EventService interface.
type EventServiceImpl struct {
	repo repository.EventRepositoryInterface
	ids  *idgen.Generator
}

// NewEventService creates a new audit event service. A nil repository is
// allowed; events are then logged but not stored, and queries fail with
// ErrRepositoryNotConfigured.
func NewEventService(repo repository.EventRepositoryInterface, ids *idgen.Generator) EventService {
	if ids == nil {
		ids = idgen.New()
	}
	return &EventServiceImpl{
		repo: repo,
		ids:  ids,
	}
}

// Record stores a single audit event.
func (s *EventServiceImpl) Record(ctx context.Context, event *model.Event) error {
	logEvent(event)

	if s.repo == nil {
		return nil
	}
	return s.repo.Create(ctx, s.modelToDocument(event))
}

// RecordBatch stores multiple audit events in bulk.
func (s *EventServiceImpl) RecordBatch(ctx context.Context, events []*model.Event) error {
	if len(events) == 0 {
		return nil
	}

	for _, event := range events {
		logEvent(event)
	}

	if s.repo == nil {
		return nil
	}

	docs := make([]*repository.EventDocument, len(events))
	for i, event := range events {
		docs[i] = s.modelToDocument(event)
	}

	return s.repo.CreateMany(ctx, docs)
}

// Query retrieves audit events matching the query options.
func (s *EventServiceImpl) Query(ctx context.Context, opts model.EventQueryOptions) ([]model.Event, error) {
	if s.repo == nil {
		return nil, ErrRepositoryNotConfigured
	}

	docs, err := s.repo.Query(ctx, repositoryEventOptions(opts))
	if err != nil {
		return nil, err
	}

	events := make([]model.Event, len(docs))
	for i, doc := range docs {
		events[i] = documentToEvent(doc)
	}

	return events, nil
}

// Count returns the count of audit events matching the query options.
func (s *EventServiceImpl) Count(ctx context.Context, opts model.EventQueryOptions) (int64, error) {
	if s.repo == nil {
		return 0, ErrRepositoryNotConfigured
	}

	return s.repo.Count(ctx, repositoryEventOptions(opts))
}

// logEvent mirrors an audit event to the application log.
func logEvent(event *model.Event) {
	var e *zerolog.Event
	switch event.Level {
	case "error":
		e = log.Error()
	case "warn":
		e = log.Warn()
	default:
		e = log.Info()
	}

	e = e.Str("action", event.Action)
	if event.UserID != 0 {
		e = e.Uint64("user_id", event.UserID)
	}
	if event.RequestID != "" {
		e = e.Str("request_id", event.RequestID)
	}
	e.Msg(event.Message)
}

// modelToDocument converts a domain event to a repository document,
// assigning an identifier and timestamp when missing.
func (s *EventServiceImpl) modelToDocument(event *model.Event) *repository.EventDocument {
	if event.ID == 0 {
		event.ID = s.ids.NextID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	return &repository.EventDocument{
		ID:        event.ID,
		Timestamp: event.Timestamp,
		Level:     event.Level,
		Message:   event.Message,
		Action:    event.Action,
		UserID:    event.UserID,
		UserEmail: event.UserEmail,
		RequestID: event.RequestID,
		Method:    event.Method,
		Path:      event.Path,
		IP:        event.IP,
		UserAgent: event.UserAgent,
		Error:     event.Error,
		Fields:    event.Fields,
	}
}

// documentToEvent converts a repository document to a domain event.
func documentToEvent(doc *repository.EventDocument) model.Event {
	return model.Event{
		ID:        doc.ID,
		Timestamp: doc.Timestamp,
		Level:     doc.Level,
		Message:   doc.Message,
		Action:    doc.Action,
		UserID:    doc.UserID,
		UserEmail: doc.UserEmail,
		RequestID: doc.RequestID,
		Method:    doc.Method,
		Path:      doc.Path,
		IP:        doc.IP,
		UserAgent: doc.UserAgent,
		Error:     doc.Error,
		Fields:    doc.Fields,
	}
}

// repositoryEventOptions maps domain query options to repository options.
func repositoryEventOptions(opts model.EventQueryOptions) repository.EventQueryOptions {
	return repository.EventQueryOptions{
		Action:    opts.Action,
		UserID:    opts.UserID,
		RequestID: opts.RequestID,
		Level:     opts.Level,
		StartTime: opts.StartTime,
		EndTime:   opts.EndTime,
		Limit:     opts.Limit,
		Skip:      opts.Skip,
	}
}
