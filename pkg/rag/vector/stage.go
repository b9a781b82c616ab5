package vector

import (
	"context"
	"fmt"
	"math"

	"edu-assistant-be/internal/pkg/logger"
	"edu-assistant-be/pkg/rag/capability"
	"edu-assistant-be/pkg/rag/telemetry"
	"edu-assistant-be/pkg/resilience"
	"edu-assistant-be/pkg/store"
	"edu-assistant-be/pkg/vectorindex"

	"github.com/google/uuid"
)

const Collection = "content_embeddings"

// ContentLookup hydrates content ids. Results must be scoped to the user and exclude deleted content; order
// of the returned slice does not matter.
type ContentLookup interface {
	FindByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]store.Document, error)
}

// Result carries the hydrated documents, the raw top passages and any failure for telemetry.
type Result struct {
	Documents []store.Document
	Passages  []telemetry.Passage
	Skipped   bool
	Err       error
}

type Stage struct {
	provider   capability.Provider
	lookup     ContentLookup
	collection string
	logger     logger.ILogger
}

// NewStage creates a new vector search stage
func NewStage(provider capability.Provider, lookup ContentLookup, collection string, log logger.ILogger) *Stage {
	if collection == "" {
		collection = Collection
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Stage{provider: provider, lookup: lookup, collection: collection, logger: log}
}

// Search never fails; a failure is reported in Result.Err with an empty result.
func (s *Stage) Search(ctx context.Context, query string, userID uuid.UUID, limit int) Result {
	if s.provider == nil || !s.provider.IsAvailable(capability.Embedding) || !s.provider.IsAvailable(capability.VectorSearch) {
		return Result{Documents: []store.Document{}, Passages: []telemetry.Passage{}, Skipped: true}
	}
	if limit <= 0 {
		return Result{Documents: []store.Document{}, Passages: []telemetry.Passage{}}
	}

	vec, err := s.provider.Embed(ctx, query)
	if err != nil {
		return s.failed(fmt.Errorf("embedding failed: %w", err))
	}

	hits, err := s.provider.VectorSearch(ctx, vectorindex.Query{
		Collection:  s.collection,
		Vector:      vec,
		Filter:      vectorindex.Filter{UserID: userID},
		TopK:        limit * 2,
		WithPayload: true,
	})
	if err != nil {
		return s.failed(fmt.Errorf("vector search failed: %w", err))
	}

	passages := make([]telemetry.Passage, 0, limit)
	for i, hit := range hits {
		if i == limit {
			break
		}
		passages = append(passages, passageFromHit(hit))
	}

	ids := uniqueContentIDs(hits)
	docs := s.hydrate(ctx, userID, ids, hits)

	return Result{Documents: docs, Passages: passages}
}

func (s *Stage) failed(err error) Result {
	s.logger.Warn("VECTOR", "Vector stage failed", map[string]interface{}{
		"error":        err.Error(),
		"circuit_open": resilience.IsCircuitOpen(err),
	})
	return Result{Documents: []store.Document{}, Passages: []telemetry.Passage{}, Err: err}
}

// hydrate loads the documents and orders them by first appearance in the hits.
func (s *Stage) hydrate(ctx context.Context, userID uuid.UUID, ids []uuid.UUID, hits []vectorindex.ScoredPoint) []store.Document {
	if len(ids) == 0 {
		return []store.Document{}
	}
	if s.lookup == nil {
		return documentsFromPayload(userID, ids, hits)
	}

	found, err := s.lookup.FindByIDs(ctx, userID, ids)
	if err != nil {
		s.logger.Warn("VECTOR", "Hydration failed, using payload", map[string]interface{}{"error": err.Error()})
		return documentsFromPayload(userID, ids, hits)
	}

	byID := make(map[uuid.UUID]store.Document, len(found))
	for _, d := range found {
		if d.UserID != userID {
			continue
		}
		byID[d.ID] = d
	}

	docs := make([]store.Document, 0, len(ids))
	for _, id := range ids {
		if d, ok := byID[id]; ok {
			docs = append(docs, d)
		}
	}
	return docs
}

func uniqueContentIDs(hits []vectorindex.ScoredPoint) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(hits))
	ids := make([]uuid.UUID, 0, len(hits))
	for _, hit := range hits {
		id, err := uuid.Parse(payloadString(hit.Payload, "content_id"))
		if err != nil {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func documentsFromPayload(userID uuid.UUID, ids []uuid.UUID, hits []vectorindex.ScoredPoint) []store.Document {
	first := make(map[string]vectorindex.ScoredPoint, len(ids))
	for _, hit := range hits {
		cid := payloadString(hit.Payload, "content_id")
		if _, ok := first[cid]; !ok {
			first[cid] = hit
		}
	}

	docs := make([]store.Document, 0, len(ids))
	for _, id := range ids {
		hit := first[id.String()]
		docs = append(docs, store.Document{
			ID:              id,
			UserID:          userID,
			Name:            payloadString(hit.Payload, "name"),
			Content:         payloadString(hit.Payload, "full_content_preview"),
			KeyConcepts:     payloadStrings(hit.Payload, "key_concepts"),
			DifficultyLevel: payloadString(hit.Payload, "difficulty_level"),
		})
	}
	return docs
}

func passageFromHit(hit vectorindex.ScoredPoint) telemetry.Passage {
	difficulty := payloadString(hit.Payload, "difficulty_level")
	if difficulty == "" {
		difficulty = "unknown"
	}
	totalChunks := payloadInt(hit.Payload, "total_chunks")
	if totalChunks == 0 {
		totalChunks = 1
	}
	return telemetry.Passage{
		ContentID:       payloadString(hit.Payload, "content_id"),
		ChunkID:         payloadString(hit.Payload, "chunk_id"),
		ChunkIndex:      payloadInt(hit.Payload, "chunk_index"),
		TotalChunks:     totalChunks,
		Name:            payloadString(hit.Payload, "name"),
		Content:         payloadString(hit.Payload, "content"),
		Score:           roundScore(hit.Score),
		KeyConcepts:     payloadStrings(hit.Payload, "key_concepts"),
		DifficultyLevel: difficulty,
	}
}

func roundScore(score float32) float64 {
	return math.Round(float64(score)*10000) / 10000
}

func payloadString(payload map[string]any, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}

func payloadInt(payload map[string]any, key string) int {
	switch v := payload[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func payloadStrings(payload map[string]any, key string) []string {
	switch v := payload[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}
