package search

import (
	"context"
	"fmt"
	"math"
	"runtime/debug"
	"time"

	"edu-assistant-be/internal/pkg/logger"
	"edu-assistant-be/pkg/metrics"
	"edu-assistant-be/pkg/rag/fusion"
	"edu-assistant-be/pkg/rag/telemetry"
	"edu-assistant-be/pkg/rag/vector"
	"edu-assistant-be/pkg/store"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const DefaultLimit = 3

// KeywordExtractor turns a question into search keywords. It never fails.
type KeywordExtractor interface {
	Extract(ctx context.Context, query string) []string
}

// LexicalSearcher is the keyword-based stage.
type LexicalSearcher interface {
	Search(ctx context.Context, keywords []string, originalQuery string, userID uuid.UUID, candidateLimit int) []store.Document
}

// VectorSearcher is the embedding-based stage.
type VectorSearcher interface {
	Search(ctx context.Context, query string, userID uuid.UUID, limit int) vector.Result
}

// Query is a user-scoped search request. Limit defaults to DefaultLimit.
type Query struct {
	Text         string
	UserID       uuid.UUID
	Limit        int
	IncludeDebug bool
}

// Orchestrator runs hybrid retrieval: keyword extraction and lexical search alongside vector search, merged
// by rank fusion.
type Orchestrator struct {
	keywords       KeywordExtractor
	lexical        LexicalSearcher
	vector         VectorSearcher
	embeddingModel string
	logger         logger.ILogger
	metrics        *metrics.RetrievalMetrics
}

// NewOrchestrator creates a new search orchestrator
func NewOrchestrator(
	keywords KeywordExtractor,
	lexical LexicalSearcher,
	vectorStage VectorSearcher,
	embeddingModel string,
	log logger.ILogger,
	m *metrics.RetrievalMetrics,
) *Orchestrator {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Orchestrator{
		keywords:       keywords,
		lexical:        lexical,
		vector:         vectorStage,
		embeddingModel: embeddingModel,
		logger:         log,
		metrics:        m,
	}
}

// Search never fails. On any error or panic it returns an empty list and records the error in the debug
// info, which is only returned when q.IncludeDebug is set.
func (o *Orchestrator) Search(ctx context.Context, q Query) (results []store.Document, info *telemetry.DebugInfo) {
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}

	ctx, span := otel.Tracer("rag.search").Start(ctx, "Orchestrator.Search")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", q.UserID.String()), attribute.Int("limit", q.Limit))

	debugInfo := telemetry.NewDebugInfo(q.Text, o.embeddingModel)
	totalStart := time.Now()

	defer func() {
		if r := recover(); r != nil {
			o.fail(debugInfo, fmt.Errorf("panic: %v", r), debug.Stack())
			results = []store.Document{}
		}
		debugInfo.QueryAnalysis.SearchTimeMs = elapsedMs(totalStart)
		o.metrics.ObserveStage("total", time.Since(totalStart))
		span.SetAttributes(attribute.Int("results", len(results)))
		if q.IncludeDebug {
			info = debugInfo
		}
	}()

	var (
		keywords   []string
		lexicalHit []store.Document
		vectorRes  vector.Result
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		defer recoverInto(&err)
		keywords = o.keywords.Extract(gctx, q.Text)

		start := time.Now()
		lexicalHit = o.lexical.Search(gctx, keywords, q.Text, q.UserID, q.Limit*2)
		debugInfo.QueryAnalysis.KeywordSearchTimeMs = elapsedMs(start)
		o.metrics.ObserveStage("lexical", time.Since(start))
		return nil
	})
	g.Go(func() (err error) {
		defer recoverInto(&err)
		start := time.Now()
		vectorRes = o.vector.Search(gctx, q.Text, q.UserID, q.Limit)
		if !vectorRes.Skipped {
			debugInfo.QueryAnalysis.VectorSearchTimeMs = elapsedMs(start)
			o.metrics.ObserveStage("vector", time.Since(start))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		o.fail(debugInfo, err, nil)
		return []store.Document{}, nil
	}

	if keywords == nil {
		keywords = []string{}
	}
	debugInfo.QueryAnalysis.ExtractedKeywords = keywords
	if vectorRes.Err != nil {
		debugInfo.QueryAnalysis.Error = vectorRes.Err.Error()
	}
	if vectorRes.Passages != nil {
		debugInfo.RelevantPassages = vectorRes.Passages
	}

	merged := fusion.Merge(lexicalHit, vectorRes.Documents)
	debugInfo.QueryAnalysis.TotalIndexedContents = len(merged)

	results = fusion.Fuse(lexicalHit, vectorRes.Documents, q.Limit)

	o.logger.Info("SEARCH", "Hybrid search completed", map[string]interface{}{
		"user_id":      q.UserID.String(),
		"keywords":     len(keywords),
		"lexical_hits": len(lexicalHit),
		"vector_hits":  len(vectorRes.Documents),
		"vector_skip":  vectorRes.Skipped,
		"results":      len(results),
	})
	return results, nil
}

func (o *Orchestrator) fail(info *telemetry.DebugInfo, err error, stack []byte) {
	info.QueryAnalysis.Error = err.Error()
	details := map[string]interface{}{"error": err.Error()}
	if stack != nil {
		details["stack"] = string(stack)
	}
	o.logger.Error("SEARCH", "Hybrid search failed", details)
}

func recoverInto(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("panic: %v", r)
	}
}

func elapsedMs(start time.Time) float64 {
	return math.Round(float64(time.Since(start).Microseconds())/10) / 100
}
