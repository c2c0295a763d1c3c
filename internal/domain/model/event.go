// Package model provides domain models for the user service.
package model

import (
	"time"
)

// Event represents an audit record of a user-facing action.
// Use the Fields map to store any additional context-specific data.
type Event struct {
	ID        uint64                 `bson:"_id" json:"id"`
	Timestamp time.Time              `bson:"timestamp" json:"timestamp"`
	Level     string                 `bson:"level" json:"level"`
	Message   string                 `bson:"message" json:"message"`
	Action    string                 `bson:"action" json:"action"` // e.g. "user_create", "login", "user_delete"
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

// WithField adds a field to the event's Fields map.
// If Fields is nil, it will be initialized.
func (e *Event) WithField(key string, value interface{}) *Event {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// WithFields adds multiple fields to the event's Fields map.
// If Fields is nil, it will be initialized.
func (e *Event) WithFields(fields map[string]interface{}) *Event {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	for k, v := range fields {
		e.Fields[k] = v
	}
	return e
}

// Identity returns the event's numeric identifier.
func (e Event) Identity() uint64 {
	return e.ID
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
