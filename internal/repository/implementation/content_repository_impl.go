package implementation

import (
	"context"
	"errors"
	"strings"

	"edu-assistant-be/internal/entity"
	"edu-assistant-be/internal/mapper"
	"edu-assistant-be/internal/model"
	"edu-assistant-be/internal/repository/contract"
	"edu-assistant-be/internal/repository/specification"
	"edu-assistant-be/pkg/store"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const contentDocument = "to_tsvector('english', coalesce(name, '') || ' ' || coalesce(content, '') || ' ' || coalesce(key_concepts::text, ''))"

type ContentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ContentMapper
}

func NewContentRepository(db *gorm.DB) contract.ContentRepository {
	return &ContentRepositoryImpl{
		db:     db,
		mapper: mapper.NewContentMapper(),
	}
}

func (r *ContentRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ContentRepositoryImpl) Create(ctx context.Context, content *entity.Content) error {
	m := r.mapper.ContentToModel(content)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*content = *r.mapper.ContentToEntity(m)
	return nil
}

func (r *ContentRepositoryImpl) Update(ctx context.Context, content *entity.Content) error {
	m := r.mapper.ContentToModel(content)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*content = *r.mapper.ContentToEntity(m)
	return nil
}

func (r *ContentRepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status string, processed bool) error {
	return r.db.WithContext(ctx).
		Model(&model.Content{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"processing_status": status, "processed": processed}).Error
}

func (r *ContentRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Content{}, id).Error
}

func (r *ContentRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Content, error) {
	var m model.Content
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ContentToEntity(&m), nil
}

func (r *ContentRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Content, error) {
	var models []*model.Content
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	result := make([]*entity.Content, len(models))
	for i, m := range models {
		result[i] = r.mapper.ContentToEntity(m)
	}
	return result, nil
}

func (r *ContentRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Content{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ContentRepositoryImpl) FindDocuments(ctx context.Context, specs ...specification.Specification) ([]store.Document, error) {
	var models []*model.Content
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.toDocuments(models), nil
}

func (r *ContentRepositoryImpl) FullTextSearch(ctx context.Context, userId uuid.UUID, tokens []string, limit int) ([]store.Document, error) {
	if len(tokens) == 0 {
		return []store.Document{}, nil
	}
	tsQuery := strings.Join(tokens, " | ")

	var models []*model.Content
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userId).
		Where(contentDocument+" @@ to_tsquery('english', ?)", tsQuery).
		Order(clause.OrderBy{Expression: clause.Expr{
			SQL:  "ts_rank(" + contentDocument + ", to_tsquery('english', ?)) DESC",
			Vars: []interface{}{tsQuery},
		}}).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.toDocuments(models), nil
}

func (r *ContentRepositoryImpl) toDocuments(models []*model.Content) []store.Document {
	docs := make([]store.Document, 0, len(models))
	for _, m := range models {
		docs = append(docs, r.mapper.ContentToDocument(m))
	}
	return docs
}
