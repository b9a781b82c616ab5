package events

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	contentId := uuid.New()
	userId := uuid.New()

	tests := []struct {
		name     string
		event    BaseEvent
		wantType string
		wantKey  string
	}{
		{name: "created", event: ContentCreated(contentId, userId, "Physics"), wantType: TypeContentCreated, wantKey: "name"},
		{name: "indexed", event: ContentIndexed(contentId, userId, 3), wantType: TypeContentIndexed, wantKey: "total_chunks"},
		{name: "failed", event: ContentIndexFailed(contentId, userId, "boom"), wantType: TypeContentFailed, wantKey: "reason"},
		{name: "replied", event: AssistantReplied(contentId, userId, true), wantType: TypeAssistantReplied, wantKey: "succeeded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.event.EventType())
			assert.Contains(t, tt.event.Payload(), tt.wantKey)
			assert.Contains(t, tt.event.Payload(), "occurred_at")
			assert.WithinDuration(t, time.Now(), tt.event.Timestamp(), time.Minute)
		})
	}
}
