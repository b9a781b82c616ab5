package telemetry

// Passage is one raw vector hit reported for debugging.
type Passage struct {
	ContentID       string   `json:"content_id"`
	ChunkID         string   `json:"chunk_id"`
	ChunkIndex      int      `json:"chunk_index"`
	TotalChunks     int      `json:"total_chunks"`
	Name            string   `json:"name"`
	Content         string   `json:"content"`
	Score           float64  `json:"score"`
	KeyConcepts     []string `json:"key_concepts"`
	DifficultyLevel string   `json:"difficulty_level"`
}

type QueryAnalysis struct {
	OriginalQuery        string   `json:"original_query"`
	ExtractedKeywords    []string `json:"extracted_keywords"`
	EmbeddingModel       string   `json:"embedding_model"`
	SearchTimeMs         float64  `json:"search_time_ms"`
	KeywordSearchTimeMs  float64  `json:"keyword_search_time_ms"`
	VectorSearchTimeMs   float64  `json:"vector_search_time_ms"`
	TotalIndexedContents int      `json:"total_indexed_contents"`
	Error                string   `json:"error,omitempty"`
}

type ProcessingInfo struct {
	GenerationTimeMs float64 `json:"generation_time_ms"`
	Model            string  `json:"model"`
	TokensUsed       *int    `json:"tokens_used"`
	ContextLength    int     `json:"context_length"`
}

// DebugInfo is the diagnostics record of one retrieval, optionally extended with generation details.
type DebugInfo struct {
	QueryAnalysis    QueryAnalysis   `json:"query_analysis"`
	RelevantPassages []Passage       `json:"relevant_passages"`
	ProcessingInfo   *ProcessingInfo `json:"processing_info,omitempty"`
}

func NewDebugInfo(query, embeddingModel string) *DebugInfo {
	return &DebugInfo{
		QueryAnalysis: QueryAnalysis{
			OriginalQuery:     query,
			ExtractedKeywords: []string{},
			EmbeddingModel:    embeddingModel,
		},
		RelevantPassages: []Passage{},
	}
}

// Key is the cache key debug info is stored under for a session.
func Key(sessionID string) string {
	return "debug_info_" + sessionID
}
