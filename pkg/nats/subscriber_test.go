package nats

import (
	"testing"
	"time"

	"edu-assistant-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name     string
		subject  string
		data     string
		wantType string
		wantErr  bool
		wantTime time.Time
	}{
		{
			name:     "typed subject with timestamp",
			subject:  "events.CONTENT_INDEXED",
			data:     `{"content_id":"abc","occurred_at":"2026-01-02T03:04:05Z"}`,
			wantType: events.TypeContentIndexed,
			wantTime: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		},
		{
			name:     "missing timestamp falls back to now",
			subject:  "events.ASSISTANT_REPLIED",
			data:     `{"succeeded":true}`,
			wantType: events.TypeAssistantReplied,
		},
		{
			name:    "invalid json",
			subject: "events.CONTENT_CREATED",
			data:    `not-json`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := DecodeEvent(tt.subject, []byte(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, event.EventType())
			if tt.wantTime.IsZero() {
				assert.WithinDuration(t, time.Now(), event.Timestamp(), time.Minute)
			} else {
				assert.True(t, tt.wantTime.Equal(event.Timestamp()))
			}
		})
	}
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "events.CONTENT_CREATED", Subject(events.TypeContentCreated))
}
