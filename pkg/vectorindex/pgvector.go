package vectorindex

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type vectorPoint struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey"`
	Collection string            `gorm:"type:varchar(128);not null;index:idx_vector_points_scope"`
	UserID     uuid.UUID         `gorm:"type:uuid;not null;index:idx_vector_points_scope"`
	ContentID  uuid.UUID         `gorm:"type:uuid;not null;index"`
	Embedding  pgvector.Vector   `gorm:"type:vector"`
	Payload    datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt  time.Time         `gorm:"autoCreateTime"`
}

func (vectorPoint) TableName() string {
	return "vector_points"
}

// PgvectorIndex keeps points in Postgres next to the corpus. Collections share one table.
type PgvectorIndex struct {
	db *gorm.DB
}

func NewPgvectorIndex(db *gorm.DB) *PgvectorIndex {
	return &PgvectorIndex{db: db}
}

func (p *PgvectorIndex) EnsureCollection(ctx context.Context, collection string, dimensions int) error {
	if err := p.db.WithContext(ctx).Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("failed to enable pgvector: %w", err)
	}
	if err := p.db.WithContext(ctx).AutoMigrate(&vectorPoint{}); err != nil {
		return fmt.Errorf("failed to migrate vector_points: %w", err)
	}
	return nil
}

func (p *PgvectorIndex) Upsert(ctx context.Context, collection string, points []Point) error {
	if len(points) == 0 {
		return nil
	}

	rows := make([]*vectorPoint, 0, len(points))
	for _, point := range points {
		id, err := uuid.Parse(point.ID)
		if err != nil {
			return fmt.Errorf("invalid point id %q: %w", point.ID, err)
		}
		userID, err := payloadUUID(point.Payload, "user_id")
		if err != nil {
			return err
		}
		contentID, err := payloadUUID(point.Payload, "content_id")
		if err != nil {
			return err
		}
		rows = append(rows, &vectorPoint{
			ID:         id,
			Collection: collection,
			UserID:     userID,
			ContentID:  contentID,
			Embedding:  pgvector.NewVector(point.Vector),
			Payload:    datatypes.JSONMap(point.Payload),
		})
	}

	return p.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(&rows).Error
}

func (p *PgvectorIndex) Search(ctx context.Context, q Query) ([]ScoredPoint, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}

	type result struct {
		ID      uuid.UUID
		Payload datatypes.JSONMap
		Score   float64
	}
	var results []result

	// Cosine distance in pgvector is 1 - cosine_similarity
	queryVector := pgvector.NewVector(q.Vector)
	err := p.db.WithContext(ctx).
		Table("vector_points").
		Select("id, payload, 1 - (embedding <=> ?) AS score", queryVector).
		Where("collection = ? AND user_id = ?", q.Collection, q.Filter.UserID).
		Order("score DESC").
		Limit(q.TopK).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	points := make([]ScoredPoint, len(results))
	for i, r := range results {
		sp := ScoredPoint{ID: r.ID.String(), Score: float32(r.Score)}
		if q.WithPayload {
			sp.Payload = map[string]any(r.Payload)
		}
		points[i] = sp
	}
	return points, nil
}

func (p *PgvectorIndex) DeleteByContent(ctx context.Context, collection string, contentID uuid.UUID) error {
	return p.db.WithContext(ctx).
		Where("collection = ? AND content_id = ?", collection, contentID).
		Delete(&vectorPoint{}).Error
}

func payloadUUID(payload map[string]any, key string) (uuid.UUID, error) {
	switch v := payload[key].(type) {
	case uuid.UUID:
		return v, nil
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			return uuid.Nil, fmt.Errorf("payload %s: %w", key, err)
		}
		return id, nil
	default:
		return uuid.Nil, fmt.Errorf("payload %s missing", key)
	}
}
