package history

import (
	"context"

	"edu-assistant-be/internal/constant"
	"edu-assistant-be/internal/entity"
	"edu-assistant-be/pkg/llm"

	"github.com/google/uuid"
)

const DefaultWindow = 5

// MessageSource returns up to n of the most recent messages of a session, oldest first.
type MessageSource interface {
	RecentMessages(ctx context.Context, sessionID uuid.UUID, n int) ([]*entity.ChatMessage, error)
}

// Loader handles short-term conversation history for prompts
type Loader struct {
	source MessageSource
	window int
}

// NewLoader creates a history loader reading the last window messages of a session.
func NewLoader(source MessageSource, window int) *Loader {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Loader{source: source, window: window}
}

// Load returns the last window messages in chronological order with the triggering message removed. The
// window is taken before exclusion, so at most window-1 messages come back when the trigger is among them.
func (l *Loader) Load(ctx context.Context, sessionID uuid.UUID, excludeID uuid.UUID) ([]llm.Message, error) {
	recent, err := l.source.RecentMessages(ctx, sessionID, l.window)
	if err != nil {
		return nil, err
	}

	messages := make([]llm.Message, 0, len(recent))
	for _, m := range recent {
		if m == nil || m.Id == excludeID {
			continue
		}
		role := constant.ChatMessageRoleUser
		if m.Role == constant.ChatMessageRoleAssistant {
			role = constant.ChatMessageRoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: m.Content})
	}
	return messages, nil
}
