package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"edu-assistant-be/internal/constant"
	"edu-assistant-be/internal/dto"
	"edu-assistant-be/internal/entity"
	"edu-assistant-be/internal/pkg/logger"
	"edu-assistant-be/internal/pkg/serverutils"
	"edu-assistant-be/internal/repository/specification"
	"edu-assistant-be/internal/repository/unitofwork"
	"edu-assistant-be/pkg/events"
	"edu-assistant-be/pkg/rag/response"
	"edu-assistant-be/pkg/rag/telemetry"
	"edu-assistant-be/pkg/utils"

	"github.com/google/uuid"
)

type ReplyGenerator interface {
	Generate(ctx context.Context, sessionID, userMessageID uuid.UUID) (*entity.ChatMessage, error)
}

type DebugLoader interface {
	Load(ctx context.Context, sessionID string) (*telemetry.DebugInfo, error)
}

type IChatService interface {
	CreateSession(ctx context.Context, userId uuid.UUID, req *dto.CreateSessionRequest) (*dto.SessionResponse, error)
	ListSessions(ctx context.Context, userId uuid.UUID) ([]*dto.SessionResponse, error)
	DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error
	SendMessage(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	ListMessages(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, limit int) (*dto.MessageHistoryResponse, error)
	// HandleReplyJob is the JobHandler for the reply topic
	HandleReplyJob(ctx context.Context, payload []byte) error
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  IPublisherService
	generator  ReplyGenerator
	debug      DebugLoader
	events     *EventEmitter
	replyTopic string
	logger     logger.ILogger
	now        func() time.Time
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	publisher IPublisherService,
	generator ReplyGenerator,
	debug DebugLoader,
	emitter *EventEmitter,
	replyTopic string,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory: uowFactory,
		publisher:  publisher,
		generator:  generator,
		debug:      debug,
		events:     emitter,
		replyTopic: replyTopic,
		logger:     log,
		now:        time.Now,
	}
}

func (c *chatService) CreateSession(ctx context.Context, userId uuid.UUID, req *dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	title := utils.StripControlChars(req.Title)
	if title == "" {
		title = DefaultSessionTitle(c.now())
	}

	session := &entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     title,
		CreatedAt: c.now(),
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return sessionToResponse(session), nil
}

func (c *chatService) ListSessions(ctx context.Context, userId uuid.UUID) ([]*dto.SessionResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.ChatSessionRepository().FindAllWithMessageCount(ctx, userId)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		res = append(res, sessionToResponse(s))
	}
	return res, nil
}

func (c *chatService) DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error {
	if _, err := c.findOwnedSession(ctx, userId, sessionId); err != nil {
		return err
	}
	uow := c.uowFactory.NewUnitOfWork(ctx)
	return uow.ChatSessionRepository().Delete(ctx, sessionId)
}

func (c *chatService) SendMessage(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	text := strings.TrimSpace(utils.StripControlChars(req.Content))
	if text == "" {
		return nil, serverutils.BadRequest("message content is required")
	}
	if len([]rune(text)) > constant.MaxMessageLength {
		return nil, serverutils.BadRequest(fmt.Sprintf("message must be at most %d characters", constant.MaxMessageLength))
	}

	if _, err := c.findOwnedSession(ctx, userId, sessionId); err != nil {
		return nil, err
	}

	tokens := utils.EstimateTokenCount(text)
	msg := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: sessionId,
		Role:          constant.ChatMessageRoleUser,
		Content:       text,
		TokenCount:    &tokens,
		CreatedAt:     c.now(),
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatMessageRepository().Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	if err := c.publisher.Publish(ctx, c.replyTopic, dto.GenerateReplyMessage{SessionId: sessionId, MessageId: msg.Id}); err != nil {
		c.logger.Error("CHAT", "Failed to enqueue reply job", map[string]interface{}{
			"session_id": sessionId.String(),
			"message_id": msg.Id.String(),
			"error":      err.Error(),
		})
	}

	return &dto.SendMessageResponse{
		SessionId: sessionId,
		Sent:      messageToResponse(msg),
		Status:    "processing",
		Reply:     constant.AssistantProcessingReply,
	}, nil
}

func (c *chatService) ListMessages(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, limit int) (*dto.MessageHistoryResponse, error) {
	if _, err := c.findOwnedSession(ctx, userId, sessionId); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = constant.DefaultMessagePageSize
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	messages, err := uow.ChatMessageRepository().FindRecent(ctx, sessionId, limit)
	if err != nil {
		return nil, err
	}

	res := &dto.MessageHistoryResponse{
		SessionId: sessionId,
		Messages:  make([]*dto.MessageResponse, 0, len(messages)),
	}
	for _, m := range messages {
		res.Messages = append(res.Messages, messageToResponse(m))
	}

	if c.debug != nil {
		info, err := c.debug.Load(ctx, sessionId.String())
		if err != nil {
			c.logger.Warn("CHAT", "Failed to load debug info", map[string]interface{}{
				"session_id": sessionId.String(),
				"error":      err.Error(),
			})
		}
		res.DebugInfo = info
	}
	return res, nil
}

func (c *chatService) HandleReplyJob(ctx context.Context, payload []byte) error {
	var job dto.GenerateReplyMessage
	if err := json.Unmarshal(payload, &job); err != nil {
		c.logger.Error("CHAT", "Failed to unmarshal reply job", map[string]interface{}{"error": err.Error()})
		return nil
	}

	reply, err := c.generator.Generate(ctx, job.SessionId, job.MessageId)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			c.logger.Warn("CHAT", "Reply job for missing session or message", map[string]interface{}{
				"session_id": job.SessionId.String(),
				"message_id": job.MessageId.String(),
			})
		}
		return err
	}

	succeeded := reply.Content != constant.AssistantErrorReply
	c.events.Emit(ctx, events.AssistantReplied(job.SessionId, reply.Id, succeeded))
	return nil
}

func (c *chatService) findOwnedSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*entity.ChatSession, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.SessionOwnedByUser{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.NotFound("session")
	}
	return session, nil
}

// DefaultSessionTitle is used when a session is created without a title
func DefaultSessionTitle(t time.Time) string {
	return constant.DefaultSessionTitlePrefix + t.Format(constant.SessionTitleTimeLayout)
}

func sessionToResponse(s *entity.ChatSession) *dto.SessionResponse {
	return &dto.SessionResponse{
		Id:           s.Id,
		Title:        s.Title,
		MessageCount: s.MessageCount,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func messageToResponse(m *entity.ChatMessage) *dto.MessageResponse {
	return &dto.MessageResponse{
		Id:         m.Id,
		Role:       m.Role,
		Content:    m.Content,
		TokenCount: m.TokenCount,
		CreatedAt:  m.CreatedAt,
	}
}
