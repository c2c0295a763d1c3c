// Package repository provides data access layer for MongoDB.
package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EventDocument represents an audit event document in MongoDB.
// This is the repository-level structure that maps directly to MongoDB.
type EventDocument struct {
	ID        uint64                 `bson:"_id" json:"id"`
	Timestamp time.Time              `bson:"timestamp" json:"timestamp"`
	Level     string                 `bson:"level" json:"level"`
	Message   string                 `bson:"message" json:"message"`
	Action    string                 `bson:"action,omitempty" json:"action,omitempty"`
	UserID    uint64                 `bson:"user_id,omitempty" json:"user_id,omitempty"`
	UserEmail string                 `bson:"user_email,omitempty" json:"user_email,omitempty"`
	RequestID string                 `bson:"request_id,omitempty" json:"request_id,omitempty"`
	Method    string                 `bson:"method,omitempty" json:"method,omitempty"`
	Path      string                 `bson:"path,omitempty" json:"path,omitempty"`
	IP        string                 `bson:"ip,omitempty" json:"ip,omitempty"`
	UserAgent string                 `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	Error     string                 `bson:"error,omitempty" json:"error,omitempty"`
	Fields    map[string]interface{} `bson:"fields,omitempty" json:"fields,omitempty"`
}

// Identity returns the document's numeric identifier.
func (d EventDocument) Identity() uint64 {
	return d.ID
}

// EventQueryOptions provides options for querying audit events.
type EventQueryOptions struct {
	Action    string
	UserID    uint64
	RequestID string
	Level     string
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int
	Skip      int
}

// MongoEventRepository provides audit event operations backed by MongoDB.
type MongoEventRepository struct {
	collection *mongo.Collection
}

// NewMongoEventRepository creates a new MongoDB-backed event repository.
func NewMongoEventRepository(db *MongoDB) *MongoEventRepository {
	return &MongoEventRepository{
		collection: db.Events,
	}
}

// Create inserts a new event document.
func (r *MongoEventRepository) Create(ctx context.Context, event *EventDocument) error {
	if event == nil {
		return ErrNilEntity
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, event)
	return err
}

// CreateMany inserts multiple event documents in bulk.
func (r *MongoEventRepository) CreateMany(ctx context.Context, events []*EventDocument) error {
	if len(events) == 0 {
		return nil
	}

	docs := make([]interface{}, len(events))
	for i, event := range events {
		if event.Timestamp.IsZero() {
			event.Timestamp = time.Now()
		}
		docs[i] = event
	}

	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

// Query queries event documents with filters, newest first.
func (r *MongoEventRepository) Query(ctx context.Context, opts EventQueryOptions) ([]*EventDocument, error) {
	filter := eventFilter(opts)

	findOptions := options.Find().SetSort(bson.M{"timestamp": -1})
	if opts.Limit > 0 {
		findOptions.SetLimit(int64(opts.Limit))
	}
	if opts.Skip > 0 {
		findOptions.SetSkip(int64(opts.Skip))
	}

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var events []*EventDocument
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}

	return events, nil
}

// Count returns the count of event documents matching the filter.
func (r *MongoEventRepository) Count(ctx context.Context, opts EventQueryOptions) (int64, error) {
	return r.collection.CountDocuments(ctx, eventFilter(opts))
}

// MaxID returns the highest assigned event identifier, or zero when the
// collection is empty. Startup seeds the event identifier sequence from it.
func (r *MongoEventRepository) MaxID(ctx context.Context) (uint64, error) {
	opts := options.FindOne().SetSort(bson.M{"_id": -1}).SetProjection(bson.M{"_id": 1})

	var doc struct {
		ID uint64 `bson:"_id"`
	}
	err := r.collection.FindOne(ctx, bson.M{}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return doc.ID, nil
}

// eventFilter builds the bson filter for the given query options.
func eventFilter(opts EventQueryOptions) bson.M {
	filter := bson.M{}

	if opts.Action != "" {
		filter["action"] = opts.Action
	}
	if opts.UserID != 0 {
		filter["user_id"] = opts.UserID
	}
	if opts.RequestID != "" {
		filter["request_id"] = opts.RequestID
	}
	if opts.Level != "" {
		filter["level"] = opts.Level
	}
	if opts.StartTime != nil || opts.EndTime != nil {
		timeFilter := bson.M{}
		if opts.StartTime != nil {
			timeFilter["$gte"] = *opts.StartTime
		}
		if opts.EndTime != nil {
			timeFilter["$lte"] = *opts.EndTime
		}
		filter["timestamp"] = timeFilter
	}

	return filter
}
