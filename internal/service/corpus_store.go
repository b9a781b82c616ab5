package service

import (
	"context"

	"edu-assistant-be/internal/repository/specification"
	"edu-assistant-be/internal/repository/unitofwork"
	"edu-assistant-be/pkg/rag/lexical"
	"edu-assistant-be/pkg/store"

	"github.com/google/uuid"
)

// CorpusStore serves the retrieval stages from the contents table. Every query is scoped to one user;
// soft-deleted rows are excluded by gorm.
type CorpusStore struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewCorpusStore(uowFactory unitofwork.RepositoryFactory) *CorpusStore {
	return &CorpusStore{uowFactory: uowFactory}
}

func (s *CorpusStore) RankedSearch(ctx context.Context, userID uuid.UUID, tokens []string, limit int) ([]store.Document, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ContentRepository().FullTextSearch(ctx, userID, tokens, limit)
}

func (s *CorpusStore) SubstringSearch(ctx context.Context, userID uuid.UUID, terms []string, fields []lexical.Field, limit int) ([]store.Document, error) {
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = string(f)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ContentRepository().FindDocuments(ctx,
		specification.ContentOwnedByUser{UserID: userID},
		specification.ContentTextSearch{Terms: terms, Fields: columns},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit},
	)
}

// FindByIDs returns the user's documents in the order of ids; unknown ids are skipped
func (s *CorpusStore) FindByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]store.Document, error) {
	if len(ids) == 0 {
		return []store.Document{}, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	found, err := uow.ContentRepository().FindDocuments(ctx,
		specification.ContentOwnedByUser{UserID: userID},
		specification.ByIDs{IDs: ids},
	)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]store.Document, len(found))
	for _, d := range found {
		byID[d.ID] = d
	}
	docs := make([]store.Document, 0, len(ids))
	for _, id := range ids {
		if d, ok := byID[id]; ok {
			docs = append(docs, d)
		}
	}
	return docs, nil
}
