package capability

import (
	"context"
	"errors"

	"edu-assistant-be/pkg/embedding"
	"edu-assistant-be/pkg/llm"
	"edu-assistant-be/pkg/resilience"
	"edu-assistant-be/pkg/vectorindex"

	"github.com/google/uuid"
)

type Capability string

const (
	Embedding    Capability = "embedding"
	Completion   Capability = "completion"
	VectorSearch Capability = "vector_search"
)

var ErrUnavailable = errors.New("capability unavailable")

type CompletionRequest struct {
	Messages    []llm.Message
	Model       string
	Temperature float64
	MaxTokens   int
}

// CompletionResult is a chat completion. TokensUsed is nil when the backend does not report usage.
type CompletionResult struct {
	Content    string
	Model      string
	TokensUsed *int
}

// Provider is the retrieval pipeline's view of the outside world. Callers check IsAvailable before
// calling; a call on an unavailable capability returns ErrUnavailable.
type Provider interface {
	IsAvailable(c Capability) bool
	EmbeddingModel() string
	Embed(ctx context.Context, text string) ([]float32, error)
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error)
	VectorSearch(ctx context.Context, q vectorindex.Query) ([]vectorindex.ScoredPoint, error)
}

// Registry composes the configured clients. Any of them may be nil.
type Registry struct {
	embedder       embedding.EmbeddingProvider
	embeddingModel string
	llm            llm.LLMProvider
	index          vectorindex.Index
	executor       *resilience.Executor
}

var _ Provider = (*Registry)(nil)

type Option func(*Registry)

func WithEmbedder(p embedding.EmbeddingProvider, model string) Option {
	return func(r *Registry) {
		r.embedder = p
		r.embeddingModel = model
	}
}

func WithLLM(p llm.LLMProvider) Option {
	return func(r *Registry) {
		r.llm = p
	}
}

func WithVectorIndex(idx vectorindex.Index) Option {
	return func(r *Registry) {
		r.index = idx
	}
}

// NewRegistry creates a registry over the given clients. A nil executor gets the default retry and breaker policy.
func NewRegistry(executor *resilience.Executor, opts ...Option) *Registry {
	r := &Registry{executor: executor}
	for _, opt := range opts {
		opt(r)
	}
	if r.executor == nil {
		r.executor = resilience.NewExecutor(resilience.DefaultConfig(), nil)
	}
	return r
}

// IsAvailable reports whether the client behind c is configured.
func (r *Registry) IsAvailable(c Capability) bool {
	switch c {
	case Embedding:
		return r.embedder != nil
	case Completion:
		return r.llm != nil
	case VectorSearch:
		return r.index != nil
	default:
		return false
	}
}

func (r *Registry) EmbeddingModel() string {
	return r.embeddingModel
}

func (r *Registry) Embed(ctx context.Context, text string) ([]float32, error) {
	return r.embed(ctx, text, embedding.TaskRetrievalQuery)
}

// EmbedDocument embeds a chunk for indexing rather than a search query
func (r *Registry) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return r.embed(ctx, text, embedding.TaskRetrievalDocument)
}

func (r *Registry) embed(ctx context.Context, text, taskType string) ([]float32, error) {
	if r.embedder == nil {
		return nil, ErrUnavailable
	}

	var values []float32
	err := r.executor.Execute(ctx, "embedding.generate", func(ctx context.Context) error {
		res, err := r.embedder.Generate(ctx, text, taskType)
		if err != nil {
			return err
		}
		values = res.Embedding.Values
		return nil
	}, nil)
	if err != nil {
		return nil, err
	}
	return values, nil
}

// Complete runs a chat completion through the resilience executor.
func (r *Registry) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	if r.llm == nil {
		return nil, ErrUnavailable
	}

	opts := []llm.Option{llm.WithTemperature(req.Temperature)}
	if req.Model != "" {
		opts = append(opts, llm.WithModel(req.Model))
	}
	if req.MaxTokens > 0 {
		opts = append(opts, llm.WithMaxTokens(req.MaxTokens))
	}

	var out *CompletionResult
	err := r.executor.Execute(ctx, "llm.chat", func(ctx context.Context) error {
		res, err := r.llm.Chat(ctx, req.Messages, opts...)
		if err != nil {
			return err
		}
		out = &CompletionResult{Content: res.Content, Model: res.Model, TokensUsed: res.TokensUsed}
		return nil
	}, nil)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Registry) VectorSearch(ctx context.Context, q vectorindex.Query) ([]vectorindex.ScoredPoint, error) {
	if r.index == nil {
		return nil, ErrUnavailable
	}

	var points []vectorindex.ScoredPoint
	err := r.executor.Execute(ctx, "vector.search", func(ctx context.Context) error {
		res, err := r.index.Search(ctx, q)
		if err != nil {
			return err
		}
		points = res
		return nil
	}, nil)
	if err != nil {
		return nil, err
	}
	return points, nil
}

// Indexer is the write side used by the indexing job
type Indexer interface {
	IsAvailable(c Capability) bool
	EmbedDocument(ctx context.Context, text string) ([]float32, error)
	EnsureCollection(ctx context.Context, collection string, dimensions int) error
	UpsertPoints(ctx context.Context, collection string, points []vectorindex.Point) error
	DeletePoints(ctx context.Context, collection string, contentID uuid.UUID) error
}

// EnsureCollection creates the vector collection when it is missing.
func (r *Registry) EnsureCollection(ctx context.Context, collection string, dimensions int) error {
	if r.index == nil {
		return ErrUnavailable
	}
	return r.executor.Execute(ctx, "vector.ensure_collection", func(ctx context.Context) error {
		return r.index.EnsureCollection(ctx, collection, dimensions)
	}, nil)
}

func (r *Registry) UpsertPoints(ctx context.Context, collection string, points []vectorindex.Point) error {
	if r.index == nil {
		return ErrUnavailable
	}
	return r.executor.Execute(ctx, "vector.upsert", func(ctx context.Context) error {
		return r.index.Upsert(ctx, collection, points)
	}, nil)
}

// DeletePoints removes every point of one content item.
func (r *Registry) DeletePoints(ctx context.Context, collection string, contentID uuid.UUID) error {
	if r.index == nil {
		return ErrUnavailable
	}
	return r.executor.Execute(ctx, "vector.delete", func(ctx context.Context) error {
		return r.index.DeleteByContent(ctx, collection, contentID)
	}, nil)
}
