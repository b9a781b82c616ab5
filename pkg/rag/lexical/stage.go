package lexical

import (
	"context"
	"time"

	"edu-assistant-be/internal/pkg/logger"
	"edu-assistant-be/pkg/metrics"
	"edu-assistant-be/pkg/store"

	"github.com/google/uuid"
)

// Field names a searchable content field.
type Field string

const (
	FieldName        Field = "name"
	FieldContent     Field = "content"
	FieldKeyConcepts Field = "key_concepts"
)

// CorpusStore runs the lexical queries. Implementations must only return the given user's non-deleted content.
type CorpusStore interface {
	RankedSearch(ctx context.Context, userID uuid.UUID, tokens []string, limit int) ([]store.Document, error)
	SubstringSearch(ctx context.Context, userID uuid.UUID, terms []string, fields []Field, limit int) ([]store.Document, error)
}

// Query is the input shared by every strategy.
type Query struct {
	Keywords      []string
	OriginalQuery string
	UserID        uuid.UUID
	Limit         int
}

// Strategy is one step of the lexical fallback cascade.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, q Query) ([]store.Document, error)
}

// Stage tries each strategy in order and keeps the first non-empty result.
type Stage struct {
	strategies []Strategy
	logger     logger.ILogger
	metrics    *metrics.RetrievalMetrics
}

// NewStage creates a lexical stage with the full-text, keyword substring and raw query strategies.
func NewStage(corpus CorpusStore, log logger.ILogger, m *metrics.RetrievalMetrics) *Stage {
	return NewStageWithStrategies(log, m,
		FullTextStrategy{corpus: corpus},
		KeywordSubstringStrategy{corpus: corpus},
		RawQuerySubstringStrategy{corpus: corpus},
	)
}

// NewStageWithStrategies creates a lexical stage with a custom strategy cascade.
func NewStageWithStrategies(log logger.ILogger, m *metrics.RetrievalMetrics, strategies ...Strategy) *Stage {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Stage{strategies: strategies, logger: log, metrics: m}
}

// Search returns at most candidateLimit documents from the first strategy with hits. Strategy errors count
// as zero hits.
func (s *Stage) Search(ctx context.Context, keywords []string, originalQuery string, userID uuid.UUID, candidateLimit int) []store.Document {
	if candidateLimit <= 0 {
		return []store.Document{}
	}
	q := Query{Keywords: keywords, OriginalQuery: originalQuery, UserID: userID, Limit: candidateLimit}

	for _, strategy := range s.strategies {
		start := time.Now()
		docs, err := strategy.Attempt(ctx, q)
		if err != nil {
			s.logger.Warn("LEXICAL", "Strategy failed, treating as zero hits", map[string]interface{}{
				"strategy": strategy.Name(),
				"error":    err.Error(),
			})
			s.metrics.StrategyAttempt(strategy.Name(), "error")
			continue
		}
		if len(docs) == 0 {
			s.metrics.StrategyAttempt(strategy.Name(), "miss")
			continue
		}

		s.metrics.StrategyAttempt(strategy.Name(), "hit")
		s.logger.Debug("LEXICAL", "Strategy matched", map[string]interface{}{
			"strategy":    strategy.Name(),
			"hits":        len(docs),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		if len(docs) > candidateLimit {
			docs = docs[:candidateLimit]
		}
		return docs
	}
	return []store.Document{}
}
