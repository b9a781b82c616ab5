package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"edu-assistant-be/internal/constant"
	"edu-assistant-be/internal/dto"
	"edu-assistant-be/internal/entity"
	"edu-assistant-be/internal/pkg/logger"
	"edu-assistant-be/internal/repository/specification"
	"edu-assistant-be/internal/repository/unitofwork"
	"edu-assistant-be/pkg/events"
	"edu-assistant-be/pkg/rag/capability"
	"edu-assistant-be/pkg/utils"
	"edu-assistant-be/pkg/vectorindex"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

type IIndexingService interface {
	EnsureCollection(ctx context.Context) error
	IndexContent(ctx context.Context, contentId uuid.UUID) error
	// HandleIndexJob is the JobHandler for the index topic
	HandleIndexJob(ctx context.Context, payload []byte) error
}

type IndexingConfig struct {
	Collection   string
	Dimensions   int
	ChunkSize    int
	ChunkOverlap int
}

type indexingService struct {
	uowFactory unitofwork.RepositoryFactory
	indexer    capability.Indexer
	events     *EventEmitter
	cfg        IndexingConfig
	logger     logger.ILogger
}

func NewIndexingService(
	uowFactory unitofwork.RepositoryFactory,
	indexer capability.Indexer,
	emitter *EventEmitter,
	cfg IndexingConfig,
	log logger.ILogger,
) IIndexingService {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = utils.DefaultChunkSize
	}
	if cfg.ChunkOverlap <= 0 {
		cfg.ChunkOverlap = utils.DefaultChunkOverlap
	}
	return &indexingService{
		uowFactory: uowFactory,
		indexer:    indexer,
		events:     emitter,
		cfg:        cfg,
		logger:     log,
	}
}

func (s *indexingService) vectorsEnabled() bool {
	return s.indexer != nil &&
		s.indexer.IsAvailable(capability.Embedding) &&
		s.indexer.IsAvailable(capability.VectorSearch)
}

func (s *indexingService) EnsureCollection(ctx context.Context) error {
	if s.indexer == nil || !s.indexer.IsAvailable(capability.VectorSearch) {
		return nil
	}
	return s.indexer.EnsureCollection(ctx, s.cfg.Collection, s.cfg.Dimensions)
}

func (s *indexingService) HandleIndexJob(ctx context.Context, payload []byte) error {
	var msg dto.IndexContentMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		// malformed jobs are dropped
		s.logger.Error("INDEXING", "Failed to unmarshal index job", map[string]interface{}{"error": err.Error()})
		return nil
	}
	return s.IndexContent(ctx, msg.ContentId)
}

func (s *indexingService) IndexContent(ctx context.Context, contentId uuid.UUID) error {
	ctx, span := otel.Tracer("service.indexing").Start(ctx, "IndexContent")
	defer span.End()
	span.SetAttributes(attribute.String("content_id", contentId.String()))

	uow := s.uowFactory.NewUnitOfWork(ctx)
	content, err := uow.ContentRepository().FindOne(ctx, specification.ByID{ID: contentId})
	if err != nil {
		return fmt.Errorf("failed to load content %s: %w", contentId, err)
	}
	if content == nil {
		s.logger.Warn("INDEXING", "Content vanished before indexing", map[string]interface{}{"content_id": contentId.String()})
		return nil
	}

	if err := uow.ContentRepository().UpdateStatus(ctx, contentId, constant.ContentStatusProcessing, false); err != nil {
		return fmt.Errorf("failed to mark content processing: %w", err)
	}

	total, err := s.index(ctx, content)
	if err != nil {
		s.logger.Error("INDEXING", "Indexing failed", map[string]interface{}{
			"content_id": contentId.String(),
			"error":      err.Error(),
		})
		if serr := uow.ContentRepository().UpdateStatus(ctx, contentId, constant.ContentStatusFailed, false); serr != nil {
			s.logger.Error("INDEXING", "Failed to mark content failed", map[string]interface{}{"error": serr.Error()})
		}
		s.events.Emit(ctx, events.ContentIndexFailed(contentId, content.UserId, err.Error()))
		return err
	}

	if err := uow.ContentRepository().UpdateStatus(ctx, contentId, constant.ContentStatusCompleted, true); err != nil {
		return fmt.Errorf("failed to mark content completed: %w", err)
	}

	s.logger.Info("INDEXING", "Content indexed", map[string]interface{}{
		"content_id":   contentId.String(),
		"total_chunks": total,
	})
	s.events.Emit(ctx, events.ContentIndexed(contentId, content.UserId, total))
	return nil
}

// index replaces the chunks and vector points of one content item and returns the chunk count
func (s *indexingService) index(ctx context.Context, content *entity.Content) (int, error) {
	vectors := s.vectorsEnabled()
	if vectors {
		if err := s.indexer.DeletePoints(ctx, s.cfg.Collection, content.Id); err != nil {
			return 0, fmt.Errorf("failed to delete old points: %w", err)
		}
	} else {
		s.logger.Warn("INDEXING", "Embedding or vector index unavailable, storing chunks only", map[string]interface{}{
			"content_id": content.Id.String(),
		})
	}

	pieces := utils.SplitText(content.Content, s.cfg.ChunkSize, s.cfg.ChunkOverlap)
	chunks := make([]*entity.ContentChunk, 0, len(pieces))
	for _, p := range pieces {
		if p.Text == "" {
			continue
		}
		chunks = append(chunks, &entity.ContentChunk{
			Id:         uuid.New(),
			ContentId:  content.Id,
			ChunkIndex: len(chunks),
			Text:       p.Text,
			StartChar:  p.StartChar,
			EndChar:    p.EndChar,
		})
	}

	var points []vectorindex.Point
	if vectors {
		points = make([]vectorindex.Point, 0, len(chunks))
		for _, c := range chunks {
			vec, err := s.indexer.EmbedDocument(ctx, c.Text)
			if err != nil {
				return 0, fmt.Errorf("failed to embed chunk %d: %w", c.ChunkIndex, err)
			}
			points = append(points, vectorindex.Point{
				ID:      uuid.NewString(),
				Vector:  vec,
				Payload: chunkPayload(content, c, len(chunks)),
			})
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}
	defer uow.Rollback()

	if err := uow.ContentChunkRepository().DeleteByContentId(ctx, content.Id); err != nil {
		return 0, fmt.Errorf("failed to delete old chunks: %w", err)
	}
	if err := uow.ContentChunkRepository().CreateBatch(ctx, chunks); err != nil {
		return 0, fmt.Errorf("failed to store chunks: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return 0, err
	}

	if vectors && len(points) > 0 {
		if err := s.indexer.UpsertPoints(ctx, s.cfg.Collection, points); err != nil {
			return 0, fmt.Errorf("failed to upsert points: %w", err)
		}
	}
	return len(chunks), nil
}

func chunkPayload(content *entity.Content, chunk *entity.ContentChunk, total int) map[string]any {
	keyConcepts := content.KeyConcepts
	if keyConcepts == nil {
		keyConcepts = []string{}
	}
	return map[string]any{
		"content_id":           content.Id.String(),
		"chunk_id":             fmt.Sprintf("%s_%d", content.Id, chunk.ChunkIndex),
		"chunk_index":          chunk.ChunkIndex,
		"total_chunks":         total,
		"user_id":              content.UserId.String(),
		"name":                 content.Name,
		"content":              chunk.Text,
		"full_content_preview": utils.Preview(content.Content, constant.PayloadPreviewLength),
		"key_concepts":         keyConcepts,
		"difficulty_level":     content.DifficultyLevel,
		"estimated_study_time": content.EstimatedStudyTime,
		"created_at":           content.CreatedAt.UTC().Format(time.RFC3339),
		"start_char":           chunk.StartChar,
		"end_char":             chunk.EndChar,
	}
}
