package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeContentCreated   = "CONTENT_CREATED"
	TypeContentIndexed   = "CONTENT_INDEXED"
	TypeContentFailed    = "CONTENT_INDEX_FAILED"
	TypeAssistantReplied = "ASSISTANT_REPLIED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CONTENT_CREATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

func newEvent(eventType string, data map[string]interface{}) BaseEvent {
	now := time.Now().UTC()
	data["occurred_at"] = now.Format(time.RFC3339)
	return BaseEvent{Type: eventType, Data: data, OccurredAt: now}
}

func ContentCreated(contentId, userId uuid.UUID, name string) BaseEvent {
	return newEvent(TypeContentCreated, map[string]interface{}{
		"content_id": contentId.String(),
		"user_id":    userId.String(),
		"name":       name,
	})
}

func ContentIndexed(contentId, userId uuid.UUID, chunks int) BaseEvent {
	return newEvent(TypeContentIndexed, map[string]interface{}{
		"content_id":   contentId.String(),
		"user_id":      userId.String(),
		"total_chunks": chunks,
	})
}

func ContentIndexFailed(contentId, userId uuid.UUID, reason string) BaseEvent {
	return newEvent(TypeContentFailed, map[string]interface{}{
		"content_id": contentId.String(),
		"user_id":    userId.String(),
		"reason":     reason,
	})
}

// AssistantReplied is emitted once per generated reply, including apology replies
func AssistantReplied(sessionId, messageId uuid.UUID, succeeded bool) BaseEvent {
	return newEvent(TypeAssistantReplied, map[string]interface{}{
		"session_id": sessionId.String(),
		"message_id": messageId.String(),
		"succeeded":  succeeded,
	})
}
