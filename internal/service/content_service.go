package service

import (
	"context"
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
	"edu-assistant-be/pkg/rag/capability"
	"edu-assistant-be/pkg/utils"

	"github.com/google/uuid"
)

type IContentService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateContentRequest) (*dto.CreateContentResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ContentResponse, error)
	List(ctx context.Context, userId uuid.UUID, req *dto.ListContentRequest) (*dto.ContentListResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	Status(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ContentStatusResponse, error)
	Reindex(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ContentStatusResponse, error)
}

type contentService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  IPublisherService
	indexer    capability.Indexer
	events     *EventEmitter
	indexTopic string
	collection string
	logger     logger.ILogger
}

func NewContentService(
	uowFactory unitofwork.RepositoryFactory,
	publisher IPublisherService,
	indexer capability.Indexer,
	emitter *EventEmitter,
	indexTopic string,
	collection string,
	log logger.ILogger,
) IContentService {
	return &contentService{
		uowFactory: uowFactory,
		publisher:  publisher,
		indexer:    indexer,
		events:     emitter,
		indexTopic: indexTopic,
		collection: collection,
		logger:     log,
	}
}

// ContentFeaturesOf summarises a text for the create response
func ContentFeaturesOf(text string) dto.ContentFeatures {
	return dto.ContentFeatures{
		TokenCount:    utils.EstimateTokenCount(text),
		ContentLength: len([]rune(text)),
		Preview:       utils.Preview(text, constant.ContentPreviewLength),
	}
}

func (c *contentService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateContentRequest) (*dto.CreateContentResponse, error) {
	name := utils.StripControlChars(req.Name)
	text := utils.StripControlChars(req.Content)
	if name == "" {
		return nil, serverutils.BadRequest("name is required")
	}
	if len([]rune(name)) > constant.MaxContentNameLength {
		return nil, serverutils.BadRequest(fmt.Sprintf("name must be at most %d characters", constant.MaxContentNameLength))
	}
	if text == "" {
		return nil, serverutils.BadRequest("content is required")
	}
	if len(req.KeyConcepts) > constant.MaxKeyConcepts {
		return nil, serverutils.BadRequest(fmt.Sprintf("at most %d key concepts are allowed", constant.MaxKeyConcepts))
	}

	concepts := make([]string, 0, len(req.KeyConcepts))
	for _, kc := range req.KeyConcepts {
		if kc = utils.StripControlChars(kc); kc != "" {
			concepts = append(concepts, kc)
		}
	}

	content := &entity.Content{
		Id:                 uuid.New(),
		UserId:             userId,
		Name:               name,
		Content:            text,
		KeyConcepts:        concepts,
		DifficultyLevel:    strings.ToLower(req.DifficultyLevel),
		EstimatedStudyTime: req.EstimatedStudyTime,
		ProcessingStatus:   constant.ContentStatusPending,
		CreatedAt:          time.Now(),
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ContentRepository().Create(ctx, content); err != nil {
		return nil, fmt.Errorf("failed to create content: %w", err)
	}

	c.logger.Info("CONTENT", "Content created", map[string]interface{}{
		"content_id": content.Id.String(),
		"user_id":    userId.String(),
	})
	c.events.Emit(ctx, events.ContentCreated(content.Id, userId, content.Name))
	c.enqueueIndex(ctx, content.Id)

	return &dto.CreateContentResponse{
		Content:  contentToResponse(content),
		Features: ContentFeaturesOf(content.Content),
	}, nil
}

func (c *contentService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ContentResponse, error) {
	content, err := c.findOwned(ctx, userId, id)
	if err != nil {
		return nil, err
	}
	return contentToResponse(content), nil
}

func (c *contentService) List(ctx context.Context, userId uuid.UUID, req *dto.ListContentRequest) (*dto.ContentListResponse, error) {
	limit, offset := ClampPage(req.Limit, req.Offset, constant.DefaultContentPageSize, constant.MaxContentPageSize)

	uow := c.uowFactory.NewUnitOfWork(ctx)
	filters := []specification.Specification{specification.ContentOwnedByUser{UserID: userId}}
	if req.Status != "" {
		filters = append(filters, specification.ByProcessingStatus{Status: req.Status})
	}
	contents, err := uow.ContentRepository().FindAll(ctx, append(filters,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)...)
	if err != nil {
		return nil, err
	}
	total, err := uow.ContentRepository().Count(ctx, filters...)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.ContentSummaryResponse, 0, len(contents))
	for _, content := range contents {
		items = append(items, &dto.ContentSummaryResponse{
			Id:               content.Id,
			Name:             content.Name,
			Preview:          utils.Preview(content.Content, constant.ContentPreviewLength),
			KeyConcepts:      content.KeyConcepts,
			DifficultyLevel:  content.DifficultyLevel,
			Processed:        content.Processed,
			ProcessingStatus: content.ProcessingStatus,
			CreatedAt:        content.CreatedAt,
		})
	}

	return &dto.ContentListResponse{
		Items:  items,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

func (c *contentService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	if _, err := c.findOwned(ctx, userId, id); err != nil {
		return err
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ContentChunkRepository().DeleteByContentId(ctx, id); err != nil {
		return err
	}
	if err := uow.ContentRepository().Delete(ctx, id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	if c.indexer != nil && c.indexer.IsAvailable(capability.VectorSearch) {
		if err := c.indexer.DeletePoints(ctx, c.collection, id); err != nil {
			// the row is gone; orphaned points are filtered out at hydration
			c.logger.Warn("CONTENT", "Failed to delete vector points", map[string]interface{}{
				"content_id": id.String(),
				"error":      err.Error(),
			})
		}
	}
	return nil
}

func (c *contentService) Status(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ContentStatusResponse, error) {
	content, err := c.findOwned(ctx, userId, id)
	if err != nil {
		return nil, err
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	chunks, err := uow.ContentChunkRepository().FindByContentId(ctx, id)
	if err != nil {
		return nil, err
	}

	return &dto.ContentStatusResponse{
		Id:               content.Id,
		Processed:        content.Processed,
		ProcessingStatus: content.ProcessingStatus,
		TotalChunks:      len(chunks),
	}, nil
}

func (c *contentService) Reindex(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ContentStatusResponse, error) {
	content, err := c.findOwned(ctx, userId, id)
	if err != nil {
		return nil, err
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ContentRepository().UpdateStatus(ctx, id, constant.ContentStatusPending, false); err != nil {
		return nil, err
	}
	c.enqueueIndex(ctx, id)

	return &dto.ContentStatusResponse{
		Id:               content.Id,
		Processed:        false,
		ProcessingStatus: constant.ContentStatusPending,
	}, nil
}

func (c *contentService) findOwned(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*entity.Content, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	content, err := uow.ContentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.ContentOwnedByUser{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, serverutils.NotFound("content")
	}
	return content, nil
}

// enqueueIndex never fails the request; the content stays pending and can be reindexed
func (c *contentService) enqueueIndex(ctx context.Context, id uuid.UUID) {
	if err := c.publisher.Publish(ctx, c.indexTopic, dto.IndexContentMessage{ContentId: id}); err != nil {
		c.logger.Error("CONTENT", "Failed to enqueue index job", map[string]interface{}{
			"content_id": id.String(),
			"error":      err.Error(),
		})
	}
}

// ClampPage applies the default for a non-positive limit, caps it at max and floors offset at zero
func ClampPage(limit, offset, def, max int) (int, int) {
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func contentToResponse(c *entity.Content) *dto.ContentResponse {
	keyConcepts := c.KeyConcepts
	if keyConcepts == nil {
		keyConcepts = []string{}
	}
	return &dto.ContentResponse{
		Id:                 c.Id,
		Name:               c.Name,
		Content:            c.Content,
		KeyConcepts:        keyConcepts,
		DifficultyLevel:    c.DifficultyLevel,
		EstimatedStudyTime: c.EstimatedStudyTime,
		Processed:          c.Processed,
		ProcessingStatus:   c.ProcessingStatus,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}
