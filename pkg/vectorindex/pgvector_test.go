package vectorindex

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	return db, mock
}

func TestPgvectorIndexSearchScopesByUserAndCollection(t *testing.T) {
	db, mock := newMockDB(t)
	idx := NewPgvectorIndex(db)

	pointID := uuid.New()
	contentID := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "payload", "score"}).
		AddRow(pointID.String(), []byte(`{"content_id":"`+contentID.String()+`","chunk_index":0}`), 0.91)

	mock.ExpectQuery(`SELECT id, payload, 1 - \(embedding <=> .+\) AS score FROM "vector_points" WHERE collection = .+ AND user_id = .+ ORDER BY score DESC LIMIT .+`).
		WillReturnRows(rows)

	got, err := idx.Search(context.Background(), Query{
		Collection:  "content_embeddings",
		Vector:      []float32{0.1, 0.2},
		Filter:      Filter{UserID: uuid.New()},
		TopK:        6,
		WithPayload: true,
	})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, pointID.String(), got[0].ID)
	assert.InDelta(t, 0.91, got[0].Score, 1e-6)
	assert.Equal(t, contentID.String(), got[0].Payload["content_id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgvectorIndexSearchRejectsInvalidQuery(t *testing.T) {
	db, _ := newMockDB(t)
	idx := NewPgvectorIndex(db)

	tests := []struct {
		name  string
		query Query
	}{
		{name: "no collection", query: Query{Vector: []float32{1}, TopK: 1}},
		{name: "no vector", query: Query{Collection: "c", TopK: 1}},
		{name: "zero topK", query: Query{Collection: "c", Vector: []float32{1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := idx.Search(context.Background(), tt.query)
			assert.ErrorIs(t, err, ErrInvalidQuery)
		})
	}
}

func TestPgvectorIndexDeleteByContent(t *testing.T) {
	db, mock := newMockDB(t)
	idx := NewPgvectorIndex(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "vector_points" WHERE collection = .+ AND content_id = .+`).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	require.NoError(t, idx.DeleteByContent(context.Background(), "content_embeddings", uuid.New()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgvectorIndexUpsertRequiresScopeInPayload(t *testing.T) {
	db, _ := newMockDB(t)
	idx := NewPgvectorIndex(db)

	err := idx.Upsert(context.Background(), "content_embeddings", []Point{{
		ID:      uuid.NewString(),
		Vector:  []float32{1},
		Payload: map[string]any{"content_id": uuid.NewString()},
	}})
	assert.ErrorContains(t, err, "user_id")

	err = idx.Upsert(context.Background(), "content_embeddings", []Point{{ID: "not-a-uuid"}})
	assert.ErrorContains(t, err, "invalid point id")
}
