package keyword

import (
	"context"
	"fmt"
	"strings"

	"edu-assistant-be/internal/pkg/logger"
	"edu-assistant-be/pkg/llm"
	"edu-assistant-be/pkg/rag/capability"
)

const MaxKeywords = 10

const extractionPrompt = `Extract the most important keywords and search terms from this query for educational content search.
Include:
- Main topics and concepts
- Technical terms
- Subject areas
- Related synonyms that might appear in educational content

Query: %s

Return only the keywords as a comma-separated list, no explanation needed.`

type Config struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Extractor turns a free-form question into search keywords via the completion capability.
type Extractor struct {
	provider capability.Provider
	cfg      Config
	logger   logger.ILogger
}

// NewExtractor creates a new keyword extractor
func NewExtractor(provider capability.Provider, cfg Config, log logger.ILogger) *Extractor {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Extractor{provider: provider, cfg: cfg, logger: log}
}

// Extract never fails; any problem yields an empty list.
func (e *Extractor) Extract(ctx context.Context, query string) []string {
	if e.provider == nil || !e.provider.IsAvailable(capability.Completion) {
		e.logger.Debug("KEYWORD", "Completion unavailable, skipping keyword extraction", nil)
		return []string{}
	}

	res, err := e.provider.Complete(ctx, capability.CompletionRequest{
		Messages:    []llm.Message{{Role: "user", Content: fmt.Sprintf(extractionPrompt, query)}},
		Model:       e.cfg.Model,
		Temperature: e.cfg.Temperature,
		MaxTokens:   e.cfg.MaxTokens,
	})
	if err != nil {
		e.logger.Warn("KEYWORD", "Keyword extraction failed", map[string]interface{}{"error": err.Error()})
		return []string{}
	}
	if res == nil {
		return []string{}
	}

	return ParseKeywords(res.Content)
}

// ParseKeywords splits a comma separated completion into at most MaxKeywords trimmed terms.
func ParseKeywords(text string) []string {
	keywords := make([]string, 0, MaxKeywords)
	for _, part := range strings.Split(strings.TrimSpace(text), ",") {
		k := strings.TrimSpace(part)
		if k == "" {
			continue
		}
		keywords = append(keywords, k)
		if len(keywords) == MaxKeywords {
			break
		}
	}
	return keywords
}
