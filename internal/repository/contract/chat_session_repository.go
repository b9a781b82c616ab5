package contract

import (
	"context"

	"edu-assistant-be/internal/entity"
	"edu-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatSessionRepository interface {
	Create(ctx context.Context, session *entity.ChatSession) error
	Update(ctx context.Context, session *entity.ChatSession) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error)
	// FindAllWithMessageCount lists a user's sessions, most recently updated first
	FindAllWithMessageCount(ctx context.Context, userId uuid.UUID) ([]*entity.ChatSession, error)
}
