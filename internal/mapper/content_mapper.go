package mapper

import (
	"time"

	"edu-assistant-be/internal/entity"
	"edu-assistant-be/internal/model"
	"edu-assistant-be/pkg/store"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ContentMapper struct{}

func NewContentMapper() *ContentMapper {
	return &ContentMapper{}
}

func (m *ContentMapper) ContentToEntity(c *model.Content) *entity.Content {
	if c == nil {
		return nil
	}

	var deletedAt *time.Time
	if c.DeletedAt.Valid {
		t := c.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	keyConcepts := []string(c.KeyConcepts)
	if keyConcepts == nil {
		keyConcepts = []string{}
	}

	return &entity.Content{
		Id:                 c.Id,
		UserId:             c.UserId,
		Name:               c.Name,
		Content:            c.Content,
		KeyConcepts:        keyConcepts,
		DifficultyLevel:    c.DifficultyLevel,
		EstimatedStudyTime: c.EstimatedStudyTime,
		Processed:          c.Processed,
		ProcessingStatus:   c.ProcessingStatus,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          updatedAt,
		DeletedAt:          deletedAt,
		IsDeleted:          c.DeletedAt.Valid,
	}
}

func (m *ContentMapper) ContentToModel(c *entity.Content) *model.Content {
	if c == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if c.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *c.DeletedAt, Valid: true}
	} else if c.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.Content{
		Id:                 c.Id,
		UserId:             c.UserId,
		Name:               c.Name,
		Content:            c.Content,
		KeyConcepts:        datatypes.NewJSONSlice(c.KeyConcepts),
		DifficultyLevel:    c.DifficultyLevel,
		EstimatedStudyTime: c.EstimatedStudyTime,
		Processed:          c.Processed,
		ProcessingStatus:   c.ProcessingStatus,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          updatedAt,
		DeletedAt:          deletedAt,
	}
}

// ContentToDocument projects a content row into the retrieval pipeline's document shape
func (m *ContentMapper) ContentToDocument(c *model.Content) store.Document {
	keyConcepts := []string(c.KeyConcepts)
	if keyConcepts == nil {
		keyConcepts = []string{}
	}
	return store.Document{
		ID:                 c.Id,
		UserID:             c.UserId,
		Name:               c.Name,
		Content:            c.Content,
		KeyConcepts:        keyConcepts,
		DifficultyLevel:    c.DifficultyLevel,
		EstimatedStudyTime: c.EstimatedStudyTime,
		CreatedAt:          c.CreatedAt,
	}
}

func (m *ContentMapper) ContentChunkToEntity(c *model.ContentChunk) *entity.ContentChunk {
	if c == nil {
		return nil
	}
	return &entity.ContentChunk{
		Id:         c.Id,
		ContentId:  c.ContentId,
		ChunkIndex: c.ChunkIndex,
		Text:       c.Text,
		StartChar:  c.StartChar,
		EndChar:    c.EndChar,
		CreatedAt:  c.CreatedAt,
	}
}

func (m *ContentMapper) ContentChunkToModel(c *entity.ContentChunk) *model.ContentChunk {
	if c == nil {
		return nil
	}
	return &model.ContentChunk{
		Id:         c.Id,
		ContentId:  c.ContentId,
		ChunkIndex: c.ChunkIndex,
		Text:       c.Text,
		StartChar:  c.StartChar,
		EndChar:    c.EndChar,
		CreatedAt:  c.CreatedAt,
	}
}
