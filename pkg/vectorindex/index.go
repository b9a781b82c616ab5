package vectorindex

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrInvalidQuery = errors.New("vectorindex: invalid query")

// Point is one embedded chunk. ID must be a UUID string.
type Point struct {
	ID      string
	Vector  []float32
	Payload map[string]any
}

type Filter struct {
	UserID uuid.UUID
}

type Query struct {
	Collection  string
	Vector      []float32
	Filter      Filter
	TopK        int
	WithPayload bool
}

type ScoredPoint struct {
	ID      string
	Score   float32
	Payload map[string]any
}

// Index is a similarity index over embedded content chunks. Points carry user_id and content_id in their
// payload; Search must only return points whose user_id matches the filter.
type Index interface {
	EnsureCollection(ctx context.Context, collection string, dimensions int) error
	Upsert(ctx context.Context, collection string, points []Point) error
	Search(ctx context.Context, q Query) ([]ScoredPoint, error)
	DeleteByContent(ctx context.Context, collection string, contentID uuid.UUID) error
}

func (q Query) validate() error {
	if q.Collection == "" || len(q.Vector) == 0 || q.TopK <= 0 {
		return ErrInvalidQuery
	}
	return nil
}
