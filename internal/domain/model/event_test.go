package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvent_WithField(t *testing.T) {
	tests := []struct {
		name   string
		event  *Event
		key    string
		value  interface{}
		verify func(*testing.T, *Event)
	}{
		{
			name:  "add field to event without fields map",
			event: &Event{},
			key:   "attempts",
			value: 3,
			verify: func(t *testing.T, e *Event) {
				assert.Equal(t, 3, e.Fields["attempts"])
			},
		},
		{
			name: "add field to event with existing fields",
			event: &Event{
				Fields: map[string]interface{}{
					"existing": "value",
				},
			},
			key:   "source",
			value: "api",
			verify: func(t *testing.T, e *Event) {
				assert.Equal(t, "value", e.Fields["existing"])
				assert.Equal(t, "api", e.Fields["source"])
			},
		},
		{
			name: "overwrite existing field",
			event: &Event{
				Fields: map[string]interface{}{
					"source": "cli",
				},
			},
			key:   "source",
			value: "api",
			verify: func(t *testing.T, e *Event) {
				assert.Equal(t, "api", e.Fields["source"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.event.WithField(tt.key, tt.value)
			assert.Equal(t, tt.event, result)
			tt.verify(t, result)
		})
	}
}

func TestEvent_WithFields(t *testing.T) {
	e := &Event{}
	result := e.WithFields(map[string]interface{}{
		"name":  "alice",
		"email": "alice@example.com",
	})

	assert.Equal(t, e, result)
	assert.Equal(t, "alice", e.Fields["name"])
	assert.Equal(t, "alice@example.com", e.Fields["email"])
}

func TestEvent_Identity(t *testing.T) {
	e := Event{ID: 12, Action: "user_create"}

	assert.Equal(t, uint64(12), e.Identity())
}
