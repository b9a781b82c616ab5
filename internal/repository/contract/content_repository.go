package contract

import (
	"context"

	"edu-assistant-be/internal/entity"
	"edu-assistant-be/internal/repository/specification"
	"edu-assistant-be/pkg/store"

	"github.com/google/uuid"
)

type ContentRepository interface {
	Create(ctx context.Context, content *entity.Content) error
	Update(ctx context.Context, content *entity.Content) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, processed bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Content, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Content, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// FindDocuments returns matches in the retrieval pipeline's shape
	FindDocuments(ctx context.Context, specs ...specification.Specification) ([]store.Document, error)
	// FullTextSearch ranks the user's content against OR'd tokens with ts_rank
	FullTextSearch(ctx context.Context, userId uuid.UUID, tokens []string, limit int) ([]store.Document, error)
}
