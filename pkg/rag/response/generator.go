package response

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"edu-assistant-be/internal/constant"
	"edu-assistant-be/internal/entity"
	"edu-assistant-be/internal/pkg/logger"
	"edu-assistant-be/pkg/llm"
	"edu-assistant-be/pkg/metrics"
	"edu-assistant-be/pkg/rag/capability"
	"edu-assistant-be/pkg/rag/prompt"
	"edu-assistant-be/pkg/rag/search"
	"edu-assistant-be/pkg/rag/telemetry"
	"edu-assistant-be/pkg/store"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var ErrNotFound = errors.New("session or message not found")

// ConversationStore is the persistence the generator needs. Finders return nil without error when the
// record does not exist.
type ConversationStore interface {
	FindSession(ctx context.Context, sessionID uuid.UUID) (*entity.ChatSession, error)
	FindMessage(ctx context.Context, sessionID, messageID uuid.UUID) (*entity.ChatMessage, error)
	AppendAssistantMessage(ctx context.Context, sessionID uuid.UUID, content string, tokenCount *int) (*entity.ChatMessage, error)
}

type Searcher interface {
	Search(ctx context.Context, q search.Query) ([]store.Document, *telemetry.DebugInfo)
}

type HistoryLoader interface {
	Load(ctx context.Context, sessionID uuid.UUID, excludeID uuid.UUID) ([]llm.Message, error)
}

type DebugSaver interface {
	Save(ctx context.Context, sessionID string, info *telemetry.DebugInfo) error
}

type Config struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Generator produces the assistant reply for a user message, grounded on retrieved content
type Generator struct {
	conversations ConversationStore
	searcher      Searcher
	history       HistoryLoader
	provider      capability.Provider
	debug         DebugSaver
	cfg           Config
	logger        logger.ILogger
	metrics       *metrics.RetrievalMetrics
}

// NewGenerator creates a new answer generator
func NewGenerator(
	conversations ConversationStore,
	searcher Searcher,
	history HistoryLoader,
	provider capability.Provider,
	debug DebugSaver,
	cfg Config,
	log logger.ILogger,
	m *metrics.RetrievalMetrics,
) *Generator {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Generator{
		conversations: conversations,
		searcher:      searcher,
		history:       history,
		provider:      provider,
		debug:         debug,
		cfg:           cfg,
		logger:        log,
		metrics:       m,
	}
}

// Generate appends exactly one assistant message to the session. ErrNotFound is returned when the session
// or the triggering message does not exist and lookup failures are returned as is; every later failure is
// answered with an apology message.
func (g *Generator) Generate(ctx context.Context, sessionID, userMessageID uuid.UUID) (*entity.ChatMessage, error) {
	ctx, span := otel.Tracer("rag.response").Start(ctx, "Generator.Generate")
	defer span.End()
	span.SetAttributes(attribute.String("session_id", sessionID.String()))

	session, err := g.conversations.FindSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, ErrNotFound
	}
	userMessage, err := g.conversations.FindMessage(ctx, sessionID, userMessageID)
	if err != nil {
		return nil, fmt.Errorf("failed to load message: %w", err)
	}
	if userMessage == nil {
		return nil, ErrNotFound
	}

	reply, err := g.answer(ctx, session, userMessage)
	if err != nil {
		g.logger.Error("ASSISTANT", "Failed to generate reply", map[string]interface{}{
			"session_id": sessionID.String(),
			"message_id": userMessageID.String(),
			"error":      err.Error(),
		})
		g.metrics.Reply("error")
		return g.conversations.AppendAssistantMessage(ctx, sessionID, constant.AssistantErrorReply, nil)
	}

	g.metrics.Reply("ok")
	return reply, nil
}

func (g *Generator) answer(ctx context.Context, session *entity.ChatSession, userMessage *entity.ChatMessage) (reply *entity.ChatMessage, err error) {
	defer func() {
		if r := recover(); r != nil {
			reply, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()

	start := time.Now()
	processing := &telemetry.ProcessingInfo{Model: g.cfg.Model}

	docs, debugInfo := g.searcher.Search(ctx, search.Query{
		Text:         userMessage.Content,
		UserID:       session.UserId,
		Limit:        prompt.ContextItemLimit,
		IncludeDebug: true,
	})
	if debugInfo == nil {
		debugInfo = telemetry.NewDebugInfo(userMessage.Content, "")
	}
	debugInfo.ProcessingInfo = processing

	history, err := g.history.Load(ctx, session.Id, userMessage.Id)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	builder := prompt.NewContextualBuilder(docs, userMessage.Content, history)
	processing.ContextLength = len([]rune(builder.Context()))

	if g.provider == nil || !g.provider.IsAvailable(capability.Completion) {
		return nil, capability.ErrUnavailable
	}

	completion, err := g.provider.Complete(ctx, capability.CompletionRequest{
		Messages:    builder.Build(),
		Model:       g.cfg.Model,
		Temperature: g.cfg.Temperature,
		MaxTokens:   g.cfg.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("completion failed: %w", err)
	}

	processing.TokensUsed = completion.TokensUsed
	processing.GenerationTimeMs = math.Round(float64(time.Since(start).Microseconds())/10) / 100

	if g.debug != nil {
		if err := g.debug.Save(ctx, session.Id.String(), debugInfo); err != nil {
			g.logger.Warn("ASSISTANT", "Failed to store debug info", map[string]interface{}{"error": err.Error()})
		}
	}

	reply, err = g.conversations.AppendAssistantMessage(ctx, session.Id, completion.Content, completion.TokensUsed)
	if err != nil {
		return nil, fmt.Errorf("failed to persist reply: %w", err)
	}
	return reply, nil
}
