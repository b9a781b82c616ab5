package service

import (
	"context"
	"strings"

	"edu-assistant-be/internal/dto"
	"edu-assistant-be/internal/pkg/logger"
	"edu-assistant-be/internal/pkg/serverutils"
	"edu-assistant-be/pkg/rag/response"
	"edu-assistant-be/pkg/rag/search"
	"edu-assistant-be/pkg/store"

	"github.com/google/uuid"
)

type ISearchService interface {
	Search(ctx context.Context, userId uuid.UUID, req *dto.SearchRequest) (*dto.SearchResponse, error)
}

type searchService struct {
	searcher     response.Searcher
	defaultLimit int
	logger       logger.ILogger
}

func NewSearchService(searcher response.Searcher, defaultLimit int, log logger.ILogger) ISearchService {
	if defaultLimit <= 0 {
		defaultLimit = search.DefaultLimit
	}
	return &searchService{
		searcher:     searcher,
		defaultLimit: defaultLimit,
		logger:       log,
	}
}

func (s *searchService) Search(ctx context.Context, userId uuid.UUID, req *dto.SearchRequest) (*dto.SearchResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, serverutils.BadRequest("query is required")
	}
	limit := req.Limit
	if limit <= 0 {
		limit = s.defaultLimit
	}

	results, info := s.searcher.Search(ctx, search.Query{
		Text:         query,
		UserID:       userId,
		Limit:        limit,
		IncludeDebug: req.Debug,
	})
	if results == nil {
		results = []store.Document{}
	}

	s.logger.Debug("SEARCH", "Search served", map[string]interface{}{
		"user_id": userId.String(),
		"results": len(results),
	})

	res := &dto.SearchResponse{Query: query, Results: results}
	if req.Debug {
		res.DebugInfo = info
	}
	return res, nil
}
