package contract

import (
	"context"

	"edu-assistant-be/internal/entity"

	"github.com/google/uuid"
)

type ContentChunkRepository interface {
	CreateBatch(ctx context.Context, chunks []*entity.ContentChunk) error
	DeleteByContentId(ctx context.Context, contentId uuid.UUID) error
	FindByContentId(ctx context.Context, contentId uuid.UUID) ([]*entity.ContentChunk, error)
}
