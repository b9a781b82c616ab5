package service

import (
	"context"

	"edu-assistant-be/internal/constant"
	"edu-assistant-be/internal/entity"
	"edu-assistant-be/internal/repository/specification"
	"edu-assistant-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// ConversationStore gives the assistant pipeline access to sessions and messages
type ConversationStore struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewConversationStore(uowFactory unitofwork.RepositoryFactory) *ConversationStore {
	return &ConversationStore{uowFactory: uowFactory}
}

func (s *ConversationStore) FindSession(ctx context.Context, sessionID uuid.UUID) (*entity.ChatSession, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionID})
}

func (s *ConversationStore) FindMessage(ctx context.Context, sessionID, messageID uuid.UUID) (*entity.ChatMessage, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ChatMessageRepository().FindOne(ctx,
		specification.ByID{ID: messageID},
		specification.ByChatSessionID{ChatSessionID: sessionID},
	)
}

func (s *ConversationStore) RecentMessages(ctx context.Context, sessionID uuid.UUID, n int) ([]*entity.ChatMessage, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ChatMessageRepository().FindRecent(ctx, sessionID, n)
}

func (s *ConversationStore) AppendAssistantMessage(ctx context.Context, sessionID uuid.UUID, content string, tokenCount *int) (*entity.ChatMessage, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	msg := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: sessionID,
		Role:          constant.ChatMessageRoleAssistant,
		Content:       content,
		TokenCount:    tokenCount,
	}
	if err := uow.ChatMessageRepository().Create(ctx, msg); err != nil {
		return nil, err
	}

	// bump updated_at so session listings surface recent conversations first
	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionID})
	if err != nil {
		return nil, err
	}
	if session != nil {
		if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return msg, nil
}
