package implementation

import (
	"context"

	"edu-assistant-be/internal/entity"
	"edu-assistant-be/internal/mapper"
	"edu-assistant-be/internal/model"
	"edu-assistant-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContentChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ContentMapper
}

func NewContentChunkRepository(db *gorm.DB) contract.ContentChunkRepository {
	return &ContentChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewContentMapper(),
	}
}

func (r *ContentChunkRepositoryImpl) CreateBatch(ctx context.Context, chunks []*entity.ContentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	models := make([]*model.ContentChunk, len(chunks))
	for i, c := range chunks {
		models[i] = r.mapper.ContentChunkToModel(c)
	}
	if err := r.db.WithContext(ctx).CreateInBatches(models, 100).Error; err != nil {
		return err
	}
	for i, m := range models {
		*chunks[i] = *r.mapper.ContentChunkToEntity(m)
	}
	return nil
}

func (r *ContentChunkRepositoryImpl) DeleteByContentId(ctx context.Context, contentId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("content_id = ?", contentId).Delete(&model.ContentChunk{}).Error
}

func (r *ContentChunkRepositoryImpl) FindByContentId(ctx context.Context, contentId uuid.UUID) ([]*entity.ContentChunk, error) {
	var models []*model.ContentChunk
	if err := r.db.WithContext(ctx).Where("content_id = ?", contentId).Order("chunk_index ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	result := make([]*entity.ContentChunk, len(models))
	for i, m := range models {
		result[i] = r.mapper.ContentChunkToEntity(m)
	}
	return result, nil
}
